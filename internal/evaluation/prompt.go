package evaluation

import (
	"bytes"
	"fmt"
	"strings"
)

func buildSystemPrompt() string {
	return strings.TrimSpace(`
You are a strict examiner grading a student's simulated clinical consultation.
Score each rubric criterion on an integer scale from 0 to 4:
0 = none of the criterion's indicators addressed
1 = fewer than 25% of indicators addressed
2 = 25-50% of indicators addressed
3 = 50-75% of indicators addressed
4 = more than 75% of indicators addressed, with quality execution
Ground every score in evidence quoted from the transcript.
Return ONLY a single valid JSON object. No prose, no markdown, no extra keys.
	`)
}

func buildUserPrompt(scenarioTitle string, criteria []Criterion, transcript []Message) string {
	var buf bytes.Buffer
	if scenarioTitle != "" {
		fmt.Fprintf(&buf, "Scenario: %s\n\n", scenarioTitle)
	}
	buf.WriteString("Evaluation rubric:\n")
	pcts := weightPercents(criteria)
	for i, c := range criteria {
		fmt.Fprintf(&buf, "- %s (%s) [%.2f%%] — max %d\n", c.Name, c.ID, pcts[i], c.MaxScore)
		for _, ind := range c.Indicators {
			fmt.Fprintf(&buf, "    - %s\n", ind)
		}
	}
	buf.WriteString("\nRespond with one JSON object shaped as:\n")
	buf.WriteString(`{"criteria":[{"id":"...","score":0,"strengths":[],"weaknesses":[],"actions":[],"justification":"..."}],"overall":{"strengths":[],"weaknesses":[],"recommendations":[],"summary":"..."},"overall_score_percent":0}`)
	buf.WriteString("\nInclude one criteria entry per rubric id.\n")
	buf.WriteString("\nTranscript:\n")
	for _, m := range transcript {
		fmt.Fprintf(&buf, "%s: %s\n", speakerLabel(m.Role), m.Text)
	}
	return buf.String()
}
