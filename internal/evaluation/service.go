package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log"

	"simclinic/internal/config"
)

var (
	// ErrNotFound is returned by Store implementations for missing rows.
	ErrNotFound = errors.New("not found")

	// ErrEmptyTranscript rejects grading of a session with no recorded
	// exchanges. Nothing to grade is distinct from grading having broken.
	ErrEmptyTranscript = errors.New("transcript has no gradable messages")
)

// ScenarioInfo is the scenario data the pipeline needs: the display title and
// the raw criteria document exactly as authored (may be nil).
type ScenarioInfo struct {
	ID       uint
	Title    string
	Criteria []byte
}

// SessionInfo identifies one training session and its owners.
type SessionInfo struct {
	ID         uint
	ScenarioID uint
	StudentID  uint
}

// EvaluationRecord is the persisted form of a computed report.
type EvaluationRecord struct {
	SessionID  uint
	ScenarioID uint
	StudentID  uint
	Report     Report
}

// Store is the persistence collaborator contract.
type Store interface {
	Session(ctx context.Context, sessionID uint) (SessionInfo, error)
	Scenario(ctx context.Context, scenarioID uint) (ScenarioInfo, error)
	Transcript(ctx context.Context, sessionID uint) ([]MessageRecord, error)
	SaveEvaluation(ctx context.Context, rec EvaluationRecord) error
	LoadEvaluation(ctx context.Context, sessionID uint) (EvaluationRecord, error)
}

// Outcome carries a computed report plus the persistence result. Stored is
// false when the write failed; the report is complete either way.
type Outcome struct {
	Report   Report
	Stored   bool
	StoreErr error
}

// Service runs the evaluation pipeline for training sessions.
type Service struct {
	store Store
	llm   Completer
}

func NewService(store Store, llm Completer) *Service {
	return &Service{store: store, llm: llm}
}

// EvaluateSession grades one completed session: normalize the scenario's
// criteria, grade the transcript, combine scores, persist. The computed
// report is returned even when persistence fails, flagged via Outcome.Stored.
// Concurrent re-grades of one session are not serialized; SaveEvaluation
// upserts by session id, so the later write wins.
func (s *Service) EvaluateSession(ctx context.Context, sessionID uint) (Outcome, error) {
	sess, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load session: %w", err)
	}
	scen, err := s.store.Scenario(ctx, sess.ScenarioID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load scenario: %w", err)
	}
	records, err := s.store.Transcript(ctx, sessionID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load transcript: %w", err)
	}
	transcript := MessagesFromRecords(records)
	if len(transcript) == 0 {
		return Outcome{}, ErrEmptyTranscript
	}

	criteria := NormalizeCriteria(scen.Criteria)
	if len(criteria) == 0 {
		criteria = FallbackCriteria()
	}
	evidence := SampleEvidence(transcript, maxEvidenceExcerpts)
	result := Grade(ctx, s.llm, scen.Title, criteria, promptWindow(transcript, config.PromptMessagesLimit()))
	report := Combine(criteria, result, evidence)
	report.ScenarioTitle = scen.Title

	out := Outcome{Report: report, Stored: true}
	rec := EvaluationRecord{
		SessionID:  sessionID,
		ScenarioID: sess.ScenarioID,
		StudentID:  sess.StudentID,
		Report:     report,
	}
	if err := s.store.SaveEvaluation(ctx, rec); err != nil {
		log.Printf("save evaluation: %v", err)
		out.Stored = false
		out.StoreErr = err
	}
	return out, nil
}

// Report reconstructs a stored report for repeat viewing. The scenario title
// is re-resolved at read time so renames are reflected; evidence comes from
// the stored detail, never from a live transcript.
func (s *Service) Report(ctx context.Context, sessionID uint) (Report, error) {
	rec, err := s.store.LoadEvaluation(ctx, sessionID)
	if err != nil {
		return Report{}, err
	}
	report := rec.Report
	scen, err := s.store.Scenario(ctx, rec.ScenarioID)
	switch {
	case err == nil:
		report.ScenarioTitle = scen.Title
	case errors.Is(err, ErrNotFound):
		report.ScenarioTitle = ""
	default:
		log.Printf("resolve scenario title: %v", err)
	}
	return report, nil
}

// promptWindow keeps the most recent messages when a transcript exceeds the
// prompt limit. Evidence sampling still sees the full transcript.
func promptWindow(transcript []Message, limit int) []Message {
	if limit <= 0 || len(transcript) <= limit {
		return transcript
	}
	return transcript[len(transcript)-limit:]
}
