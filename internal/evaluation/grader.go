package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

const gradeTimeout = 45 * time.Second

// Completer is the external grading capability: one text-in, text-out call.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// CriterionScore is one per-criterion entry of a grading result, as returned
// by the model. Score is unbounded as received; the combiner clamps it.
type CriterionScore struct {
	ID            string
	Name          string
	Score         *float64
	MaxScore      *float64
	Strengths     []string
	Weaknesses    []string
	Actions       []string
	Justification string
}

// GradingResult is the parsed output of one grading call.
type GradingResult struct {
	Criteria            []CriterionScore
	Strengths           []string
	Weaknesses          []string
	Recommendations     []string
	Summary             string
	OverallScorePercent *float64
}

// Grade runs one grading call against the external capability and parses its
// output. Grading failure is an expected condition, not a fatal error: any
// network failure, malformed JSON or unusable schema is logged and converted
// to a nil result, which the combiner turns into neutral default scores.
func Grade(ctx context.Context, llm Completer, scenarioTitle string, criteria []Criterion, transcript []Message) *GradingResult {
	if llm == nil {
		return nil
	}
	ctx, cancel := withGradeTimeout(ctx)
	defer cancel()
	raw, err := llm.Complete(ctx, buildSystemPrompt(), buildUserPrompt(scenarioTitle, criteria, transcript))
	if err != nil {
		log.Printf("grading call: %v", err)
		return nil
	}
	out, err := parseGradingResult(raw)
	if err != nil {
		log.Printf("grading parse: %v", err)
		return nil
	}
	return out
}

func withGradeTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, gradeTimeout)
}

// stripFences removes a leading/trailing markdown code fence. The model is
// told to return bare JSON but occasionally wraps it anyway.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// parseGradingResult reads the model output defensively: every field is
// optional with a safe default, and field-name aliases from older prompt
// revisions are accepted. A result with no criteria entries is rejected so it
// falls back the same way as a failed call.
func parseGradingResult(raw string) (*GradingResult, error) {
	var doc any
	if err := json.Unmarshal([]byte(stripFences(raw)), &doc); err != nil {
		return nil, fmt.Errorf("invalid grading JSON output")
	}
	m, ok := asMap(doc)
	if !ok {
		return nil, fmt.Errorf("grading output is not a JSON object")
	}
	items, _ := asSlice(m["criteria"])
	if len(items) == 0 {
		return nil, fmt.Errorf("grading output has no criteria")
	}
	out := &GradingResult{Criteria: make([]CriterionScore, 0, len(items))}
	for _, item := range items {
		em, ok := asMap(item)
		if !ok {
			continue
		}
		entry := CriterionScore{
			ID:            firstString(em, "id", "slug", "key"),
			Name:          firstString(em, "name", "title", "criterion"),
			Strengths:     stringList(em["strengths"]),
			Weaknesses:    stringList(em["weaknesses"]),
			Actions:       stringList(firstValue(em, "actions", "recommendations")),
			Justification: firstString(em, "justification", "rationale", "comment"),
		}
		if v, ok := firstNumber(em, "score", "note"); ok {
			entry.Score = &v
		}
		if v, ok := firstNumber(em, "maxScore", "max_score", "max"); ok {
			entry.MaxScore = &v
		}
		out.Criteria = append(out.Criteria, entry)
	}
	if len(out.Criteria) == 0 {
		return nil, fmt.Errorf("grading output has no criteria")
	}
	if overall, ok := asMap(m["overall"]); ok {
		out.Strengths = stringList(overall["strengths"])
		out.Weaknesses = stringList(overall["weaknesses"])
		out.Recommendations = stringList(firstValue(overall, "recommendations", "actions"))
		out.Summary = firstString(overall, "summary", "comment")
	}
	if v, ok := firstNumber(m, "overall_score_percent", "overallScorePercent"); ok {
		out.OverallScorePercent = &v
	}
	return out, nil
}
