package evaluation

import (
	"strings"
	"time"
)

// MessageRecord is one transcript row as supplied by the messaging
// collaborator. Payload carries the message fields as stored, under whichever
// legacy field names the session was recorded with.
type MessageRecord struct {
	Role    string
	Payload map[string]any
	SentAt  *time.Time
}

// Message is a normalized transcript entry.
type Message struct {
	Role      string
	Text      string
	Timestamp *time.Time
}

// MessagesFromRecords extracts readable messages from raw transcript rows.
// Rows with no recoverable text are dropped.
func MessagesFromRecords(records []MessageRecord) []Message {
	out := make([]Message, 0, len(records))
	for _, rec := range records {
		text := messageText(rec.Payload)
		if text == "" {
			continue
		}
		out = append(out, Message{
			Role:      rec.Role,
			Text:      text,
			Timestamp: messageTime(rec.Payload, rec.SentAt),
		})
	}
	return out
}

// messageText resolves the message body across the legacy field names used
// by older session recordings.
func messageText(p map[string]any) string {
	if p == nil {
		return ""
	}
	return firstString(p, "content", "question", "response")
}

// messageTime returns the best-effort message timestamp: the first parseable
// of timestamp/created/updated in the payload, else the row time.
func messageTime(p map[string]any, fallback *time.Time) *time.Time {
	for _, key := range []string{"timestamp", "created", "updated"} {
		switch v := p[key].(type) {
		case string:
			if ts, err := time.Parse(time.RFC3339, v); err == nil {
				return &ts
			}
		case float64:
			ts := time.Unix(int64(v), 0).UTC()
			if v > 1e12 { // unix milliseconds
				ts = time.UnixMilli(int64(v)).UTC()
			}
			return &ts
		}
	}
	return fallback
}

// speakerLabel maps a stored role to the display label used in prompts and
// evidence excerpts.
func speakerLabel(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "user", "student":
		return "Student"
	case "assistant", "patient", "model", "ai":
		return "Patient"
	case "":
		return "Participant"
	}
	role = strings.TrimSpace(role)
	return strings.ToUpper(role[:1]) + role[1:]
}
