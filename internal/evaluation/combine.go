package evaluation

import (
	"math"
	"strings"
)

const (
	// defaultRawScore is the neutral midpoint given to criteria the grading
	// capability did not score.
	defaultRawScore = 2

	// maxNarrativeItems caps each aggregated narrative list.
	maxNarrativeItems = 3
)

// Combine merges canonical criteria, a grading result (nil when the grading
// call failed) and the evidence sample into a complete report. It is a pure
// function: identical inputs produce identical output.
func Combine(criteria []Criterion, result *GradingResult, evidence []Excerpt) Report {
	matched := matchScores(criteria, result)
	pcts := weightPercents(criteria)

	var weightedSum, weightTotal float64
	crits := make([]CriterionReport, 0, len(criteria))
	for i, c := range criteria {
		maxScore := c.MaxScore
		if maxScore < 1 {
			maxScore = defaultMaxScore
		}
		rawWeight := c.Weight
		if rawWeight <= 0 {
			rawWeight = 1
		}
		cr := CriterionReport{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Indicators:  c.Indicators,
			Weight:      pcts[i],
			RawWeight:   rawWeight,
			MaxScore:    maxScore,
			Strengths:   []string{},
			Weaknesses:  []string{},
			Actions:     []string{},
			Evidence:    evidence,
		}
		score := defaultRawScore
		if entry := matched[i]; entry != nil {
			if entry.Score != nil {
				score = clampScore(*entry.Score, maxScore)
			}
			cr.Strengths = cleanStrings(entry.Strengths)
			cr.Weaknesses = cleanStrings(entry.Weaknesses)
			cr.Actions = cleanStrings(entry.Actions)
			cr.Justification = entry.Justification
		}
		cr.RawScore = score
		cr.Score = score
		crits = append(crits, cr)

		weightedSum += float64(score) / float64(maxScore) * rawWeight
		weightTotal += rawWeight
	}

	weighted := 0
	if weightTotal > 0 {
		weighted = int(math.Round(weightedSum / weightTotal * 100))
	}
	overall := weighted
	if result != nil && result.OverallScorePercent != nil {
		overall = clampPercent(math.Round(*result.OverallScorePercent))
	}

	report := Report{
		OverallScorePercent:  overall,
		LLMScorePercent:      overall,
		WeightedScorePercent: weighted,
		Criteria:             crits,
		Summary:              "",
	}
	var topStrengths, topWeaknesses, topRecs []string
	if result != nil {
		topStrengths = result.Strengths
		topWeaknesses = result.Weaknesses
		topRecs = result.Recommendations
		report.Summary = strings.TrimSpace(result.Summary)
	}
	report.Strengths = aggregateNarrative(topStrengths, crits, func(c CriterionReport) []string { return c.Strengths })
	report.Weaknesses = aggregateNarrative(topWeaknesses, crits, func(c CriterionReport) []string { return c.Weaknesses })
	report.Recommendations = aggregateNarrative(topRecs, crits, func(c CriterionReport) []string { return c.Actions })
	return report
}

// matchScores pairs each canonical criterion with its grading-result entry:
// by id when present, else by case-insensitive name. Unmatched criteria get
// nil and later receive the neutral default score.
func matchScores(criteria []Criterion, result *GradingResult) []*CriterionScore {
	matched := make([]*CriterionScore, len(criteria))
	if result == nil {
		return matched
	}
	byID := make(map[string]*CriterionScore, len(result.Criteria))
	byName := make(map[string]*CriterionScore, len(result.Criteria))
	for i := range result.Criteria {
		entry := &result.Criteria[i]
		if entry.ID != "" {
			if _, dup := byID[entry.ID]; !dup {
				byID[entry.ID] = entry
			}
		}
		if name := strings.ToLower(strings.TrimSpace(entry.Name)); name != "" {
			if _, dup := byName[name]; !dup {
				byName[name] = entry
			}
		}
	}
	for i, c := range criteria {
		if entry, ok := byID[c.ID]; ok {
			matched[i] = entry
			continue
		}
		if entry, ok := byName[strings.ToLower(c.Name)]; ok {
			matched[i] = entry
		}
	}
	return matched
}

// weightPercents normalizes raw criterion weights to a percentage
// distribution, 2 decimals, regardless of what the source weights summed to.
func weightPercents(criteria []Criterion) []float64 {
	var total float64
	for _, c := range criteria {
		w := c.Weight
		if w <= 0 {
			w = 1
		}
		total += w
	}
	out := make([]float64, len(criteria))
	if total == 0 {
		return out
	}
	for i, c := range criteria {
		w := c.Weight
		if w <= 0 {
			w = 1
		}
		out[i] = math.Round(w/total*100*100) / 100
	}
	return out
}

// aggregateNarrative builds one top-level narrative list: overall entries
// first, then per-criterion entries, deduplicated by exact trimmed match in
// first-seen order and capped. All three narrative lists use this path.
func aggregateNarrative(top []string, crits []CriterionReport, pick func(CriterionReport) []string) []string {
	out := make([]string, 0, maxNarrativeItems)
	seen := make(map[string]bool)
	add := func(items []string) {
		for _, item := range items {
			t := strings.TrimSpace(item)
			if t == "" || seen[t] || len(out) >= maxNarrativeItems {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	add(top)
	for _, c := range crits {
		add(pick(c))
	}
	return out
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if t := strings.TrimSpace(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func clampScore(v float64, maxScore int) int {
	score := int(math.Round(v))
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

func clampPercent(v float64) int {
	p := int(v)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
