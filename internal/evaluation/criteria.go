package evaluation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// defaultMaxScore is the per-criterion score ceiling when the source
// document does not specify one.
const defaultMaxScore = 4

// Criterion is the canonical, shape-independent representation of one
// evaluation dimension.
type Criterion struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	MaxScore    int      `json:"maxScore"`
	Weight      float64  `json:"weight"`
	Indicators  []string `json:"indicators"`
}

// shapeParser attempts to read one historical criteria-document shape.
// It returns false when the document does not match, never an error.
type shapeParser func(doc any) ([]Criterion, bool)

// Shapes are tried in priority order; the first match wins and no merging
// happens across shapes.
var criteriaShapes = []shapeParser{
	parseEvaluationCriteriaField,
	parseTopLevelArray,
	parseCategories,
	parseCriteriaField,
	parsePlainObject,
}

// NormalizeCriteria reconciles a raw criteria document into the canonical
// form. It never fails: any malformed or unrecognized input yields nil, which
// callers substitute with FallbackCriteria.
func NormalizeCriteria(raw []byte) []Criterion {
	if len(raw) == 0 {
		return nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	for _, parse := range criteriaShapes {
		if items, ok := parse(doc); ok {
			return finalizeCriteria(items)
		}
	}
	return nil
}

// FallbackCriteria is the fixed set substituted when a scenario's criteria
// document yields nothing usable.
func FallbackCriteria() []Criterion {
	return []Criterion{
		{ID: "communication", Name: "Communication", Description: "Clarity, structure and adaptation of the exchange with the patient", MaxScore: defaultMaxScore, Weight: 1, Indicators: []string{}},
		{ID: "clinical_reasoning", Name: "Clinical reasoning", Description: "Relevance of questions, hypothesis building and diagnostic approach", MaxScore: defaultMaxScore, Weight: 1, Indicators: []string{}},
		{ID: "empathy", Name: "Empathy", Description: "Recognition of and response to the patient's emotions and concerns", MaxScore: defaultMaxScore, Weight: 1, Indicators: []string{}},
		{ID: "professionalism", Name: "Professionalism", Description: "Respectful, ethical and appropriate professional conduct", MaxScore: defaultMaxScore, Weight: 1, Indicators: []string{}},
	}
}

func parseEvaluationCriteriaField(doc any) ([]Criterion, bool) {
	m, ok := asMap(doc)
	if !ok {
		return nil, false
	}
	items, ok := asSlice(m["evaluation_criteria"])
	if !ok {
		return nil, false
	}
	return criteriaFromElements(items), true
}

func parseTopLevelArray(doc any) ([]Criterion, bool) {
	items, ok := asSlice(doc)
	if !ok {
		return nil, false
	}
	return criteriaFromElements(items), true
}

func parseCategories(doc any) ([]Criterion, bool) {
	m, ok := asMap(doc)
	if !ok {
		return nil, false
	}
	items, ok := asSlice(m["categories"])
	if !ok {
		return nil, false
	}
	out := make([]Criterion, 0, len(items))
	for _, item := range items {
		c := criterionFromElement(item)
		if c.Description == "" && len(c.Indicators) > 0 {
			c.Description = strings.Join(c.Indicators, " ; ")
		}
		out = append(out, c)
	}
	return out, true
}

func parseCriteriaField(doc any) ([]Criterion, bool) {
	m, ok := asMap(doc)
	if !ok {
		return nil, false
	}
	items, ok := asSlice(m["criteria"])
	if !ok {
		return nil, false
	}
	return criteriaFromElements(items), true
}

// parsePlainObject handles the oldest shape: a bare object whose keys are the
// criteria themselves. Keys are sorted so the result is deterministic.
func parsePlainObject(doc any) ([]Criterion, bool) {
	m, ok := asMap(doc)
	if !ok {
		return nil, false
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Criterion, 0, len(keys))
	for _, key := range keys {
		c := Criterion{ID: slugify(key), Name: key}
		switch v := m[key].(type) {
		case string:
			c.Description = v
		case map[string]any:
			c.Description = firstString(v, "description", "desc", "details")
			c.Indicators = stringList(firstValue(v, "indicators", "elements"))
			if w, ok := firstNumber(v, "weight", "poids"); ok {
				c.Weight = w
			}
			if max, ok := firstNumber(v, "maxScore", "max_score", "max"); ok {
				c.MaxScore = int(max)
			}
		}
		out = append(out, c)
	}
	return out, true
}

func criteriaFromElements(items []any) []Criterion {
	out := make([]Criterion, 0, len(items))
	for _, item := range items {
		out = append(out, criterionFromElement(item))
	}
	return out
}

func criterionFromElement(item any) Criterion {
	if s, ok := item.(string); ok {
		return Criterion{Name: strings.TrimSpace(s)}
	}
	m, ok := asMap(item)
	if !ok {
		return Criterion{}
	}
	c := Criterion{
		ID:          firstString(m, "id", "slug", "key"),
		Name:        firstString(m, "name", "title", "label", "criterion"),
		Description: firstString(m, "description", "desc", "details"),
		Indicators:  stringList(firstValue(m, "indicators", "elements")),
	}
	if w, ok := firstNumber(m, "weight", "poids"); ok {
		c.Weight = w
	}
	if max, ok := firstNumber(m, "maxScore", "max_score", "max"); ok {
		c.MaxScore = int(max)
	}
	return c
}

// finalizeCriteria applies defaults and the id invariant: lower-cased,
// whitespace collapsed to underscores, non-empty, unique within the set.
func finalizeCriteria(items []Criterion) []Criterion {
	out := make([]Criterion, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, c := range items {
		if c.Name == "" && c.ID == "" && c.Description == "" && len(c.Indicators) == 0 {
			continue
		}
		if c.Name == "" {
			if c.ID != "" {
				c.Name = c.ID
			} else {
				c.Name = fmt.Sprintf("Criterion %d", i+1)
			}
		}
		id := slugify(c.ID)
		if id == "" {
			id = slugify(c.Name)
		}
		if id == "" {
			id = fmt.Sprintf("criterion_%d", i+1)
		}
		if seen[id] {
			id = fmt.Sprintf("%s_%d", id, i+1)
		}
		seen[id] = true
		c.ID = id
		if c.MaxScore < 1 {
			c.MaxScore = defaultMaxScore
		}
		if c.Weight <= 0 {
			c.Weight = 1
		}
		if c.Indicators == nil {
			c.Indicators = []string{}
		}
		out = append(out, c)
	}
	return out
}

func slugify(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), "_")
}
