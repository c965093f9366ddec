package evaluation

import "time"

const (
	// maxEvidenceExcerpts is the default evidence sample size.
	maxEvidenceExcerpts = 3

	// maxExcerptChars bounds the quoted text of one excerpt.
	maxExcerptChars = 220
)

// Excerpt is a short verbatim transcript snippet attached to a report as
// justification. Excerpts are chosen by position, not by content matching;
// the same sample is attached to every criterion.
type Excerpt struct {
	Role      string     `json:"role"`
	Speaker   string     `json:"speaker"`
	Excerpt   string     `json:"excerpt"`
	Timestamp *time.Time `json:"timestamp"`
}

// SampleEvidence picks representative excerpts from a transcript. Transcripts
// of maxExcerpts messages or fewer are returned whole, in order; longer ones
// are sampled at the first, middle and last message, covering opening,
// mid-conversation and closing behavior.
func SampleEvidence(transcript []Message, maxExcerpts int) []Excerpt {
	if maxExcerpts <= 0 {
		maxExcerpts = maxEvidenceExcerpts
	}
	n := len(transcript)
	if n <= maxExcerpts {
		out := make([]Excerpt, 0, n)
		for _, m := range transcript {
			out = append(out, excerptFromMessage(m))
		}
		return out
	}
	return []Excerpt{
		excerptFromMessage(transcript[0]),
		excerptFromMessage(transcript[n/2]),
		excerptFromMessage(transcript[n-1]),
	}
}

func excerptFromMessage(m Message) Excerpt {
	return Excerpt{
		Role:      m.Role,
		Speaker:   speakerLabel(m.Role),
		Excerpt:   truncate(m.Text, maxExcerptChars),
		Timestamp: m.Timestamp,
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
