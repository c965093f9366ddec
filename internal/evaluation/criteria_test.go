package evaluation

import (
	"strings"
	"testing"
)

func TestNormalizeEvaluationCriteriaField(t *testing.T) {
	raw := []byte(`{"evaluation_criteria":[
		{"name":"History taking","weight":2,"indicators":["asks onset","asks duration"]},
		{"name":"Examen clinique","poids":3}
	]}`)
	got := NormalizeCriteria(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 criteria, got %d", len(got))
	}
	if got[0].ID != "history_taking" {
		t.Fatalf("expected id history_taking, got %q", got[0].ID)
	}
	if got[0].Weight != 2 {
		t.Fatalf("expected weight 2, got %v", got[0].Weight)
	}
	if len(got[0].Indicators) != 2 {
		t.Fatalf("expected 2 indicators, got %v", got[0].Indicators)
	}
	if got[1].ID != "examen_clinique" {
		t.Fatalf("expected id examen_clinique, got %q", got[1].ID)
	}
	if got[1].Weight != 3 {
		t.Fatalf("expected poids alias to yield weight 3, got %v", got[1].Weight)
	}
	if got[1].MaxScore != 4 {
		t.Fatalf("expected default maxScore 4, got %d", got[1].MaxScore)
	}
}

func TestNormalizeTopLevelArray(t *testing.T) {
	raw := []byte(`[{"name":"Communication","maxScore":5},"Empathy"]`)
	got := NormalizeCriteria(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 criteria, got %d", len(got))
	}
	if got[0].MaxScore != 5 {
		t.Fatalf("expected maxScore 5, got %d", got[0].MaxScore)
	}
	if got[1].ID != "empathy" || got[1].Name != "Empathy" {
		t.Fatalf("expected string element to become a criterion, got %+v", got[1])
	}
}

func TestNormalizeCategories(t *testing.T) {
	raw := []byte(`{"categories":[
		{"title":"Anamnèse","indicators":[{"description":"écoute"},{"description":"questions ouvertes"}]},
		{"title":"Conclusion","description":"already described","indicators":["summarizes"]}
	]}`)
	got := NormalizeCriteria(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 criteria, got %d", len(got))
	}
	if got[0].Description != "écoute ; questions ouvertes" {
		t.Fatalf("expected joined indicator description, got %q", got[0].Description)
	}
	if len(got[0].Indicators) != 2 {
		t.Fatalf("expected indicators kept, got %v", got[0].Indicators)
	}
	if got[1].Description != "already described" {
		t.Fatalf("explicit description must win, got %q", got[1].Description)
	}
}

func TestNormalizeCriteriaField(t *testing.T) {
	raw := []byte(`{"criteria":[{"id":"exam","name":"Physical exam","max_score":10}]}`)
	got := NormalizeCriteria(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 criterion, got %d", len(got))
	}
	if got[0].ID != "exam" || got[0].MaxScore != 10 {
		t.Fatalf("unexpected criterion %+v", got[0])
	}
}

func TestNormalizePlainObjectFrenchWeights(t *testing.T) {
	raw := []byte(`{"communication": {"weight": 20, "elements": ["écoute active"]}, "examen": {"weight": 80}}`)
	got := NormalizeCriteria(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 criteria, got %d", len(got))
	}
	// plain-object keys are sorted for determinism
	if got[0].ID != "communication" || got[1].ID != "examen" {
		t.Fatalf("unexpected ids %q, %q", got[0].ID, got[1].ID)
	}
	if got[0].Weight != 20 || got[1].Weight != 80 {
		t.Fatalf("expected weights 20 and 80, got %v and %v", got[0].Weight, got[1].Weight)
	}
	if len(got[0].Indicators) != 1 || got[0].Indicators[0] != "écoute active" {
		t.Fatalf("expected elements alias to fill indicators, got %v", got[0].Indicators)
	}
	pcts := weightPercents(got)
	if pcts[0] != 20 || pcts[1] != 80 {
		t.Fatalf("expected normalized weights 20 and 80, got %v", pcts)
	}
}

func TestNormalizePlainObjectStringValues(t *testing.T) {
	raw := []byte(`{"Professional conduct": "behaves respectfully"}`)
	got := NormalizeCriteria(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 criterion, got %d", len(got))
	}
	if got[0].ID != "professional_conduct" {
		t.Fatalf("expected slugified id, got %q", got[0].ID)
	}
	if got[0].Description != "behaves respectfully" {
		t.Fatalf("expected string value as description, got %q", got[0].Description)
	}
}

func TestNormalizeUnrecognizedShapes(t *testing.T) {
	for _, raw := range []string{"", "null", "{}", "42", `"text"`, "{not json"} {
		if got := NormalizeCriteria([]byte(raw)); len(got) != 0 {
			t.Fatalf("expected empty result for %q, got %v", raw, got)
		}
	}
}

func TestNormalizeIDCollisionSuffixing(t *testing.T) {
	raw := []byte(`[{"name":"Empathy"},{"name":"empathy"}]`)
	got := NormalizeCriteria(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 criteria, got %d", len(got))
	}
	if got[0].ID != "empathy" {
		t.Fatalf("expected first id empathy, got %q", got[0].ID)
	}
	if got[1].ID != "empathy_2" {
		t.Fatalf("expected suffixed id empathy_2, got %q", got[1].ID)
	}
}

func TestNormalizeInvariantsAcrossShapes(t *testing.T) {
	shapes := map[string]string{
		"evaluation_criteria": `{"evaluation_criteria":[{"name":"A","maxScore":"bad","weight":"bad"}]}`,
		"array":               `[{"name":"A"},{"name":"B"}]`,
		"categories":          `{"categories":[{"title":"A"}]}`,
		"criteria":            `{"criteria":[{"name":"A"}]}`,
		"object":              `{"a":{"poids":2},"b":"desc"}`,
	}
	for name, raw := range shapes {
		got := NormalizeCriteria([]byte(raw))
		if len(got) == 0 {
			t.Fatalf("%s: expected non-empty result", name)
		}
		for _, c := range got {
			if strings.TrimSpace(c.ID) == "" {
				t.Fatalf("%s: empty id in %+v", name, c)
			}
			if c.MaxScore < 1 {
				t.Fatalf("%s: maxScore %d < 1", name, c.MaxScore)
			}
			if c.Weight <= 0 {
				t.Fatalf("%s: weight %v not positive", name, c.Weight)
			}
			if c.Indicators == nil {
				t.Fatalf("%s: indicators must not be nil", name)
			}
		}
	}
}

func TestFallbackCriteria(t *testing.T) {
	got := FallbackCriteria()
	if len(got) != 4 {
		t.Fatalf("expected 4 fallback criteria, got %d", len(got))
	}
	ids := map[string]bool{}
	for _, c := range got {
		if c.MaxScore != 4 || c.Weight != 1 {
			t.Fatalf("unexpected defaults in %+v", c)
		}
		ids[c.ID] = true
	}
	for _, id := range []string{"communication", "clinical_reasoning", "empathy", "professionalism"} {
		if !ids[id] {
			t.Fatalf("missing fallback criterion %s", id)
		}
	}
}
