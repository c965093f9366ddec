package evaluation

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakeStore struct {
	session       SessionInfo
	sessionErr    error
	scenario      ScenarioInfo
	scenarioErr   error
	records       []MessageRecord
	transcriptErr error
	saveErr       error
	saved         []EvaluationRecord
	loadRec       EvaluationRecord
	loadErr       error
}

func (f *fakeStore) Session(ctx context.Context, sessionID uint) (SessionInfo, error) {
	return f.session, f.sessionErr
}

func (f *fakeStore) Scenario(ctx context.Context, scenarioID uint) (ScenarioInfo, error) {
	return f.scenario, f.scenarioErr
}

func (f *fakeStore) Transcript(ctx context.Context, sessionID uint) ([]MessageRecord, error) {
	return f.records, f.transcriptErr
}

func (f *fakeStore) SaveEvaluation(ctx context.Context, rec EvaluationRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeStore) LoadEvaluation(ctx context.Context, sessionID uint) (EvaluationRecord, error) {
	return f.loadRec, f.loadErr
}

func recordsOf(texts ...string) []MessageRecord {
	out := make([]MessageRecord, 0, len(texts))
	for i, text := range texts {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		out = append(out, MessageRecord{Role: role, Payload: map[string]any{"content": text}})
	}
	return out
}

func baseStore() *fakeStore {
	return &fakeStore{
		session:  SessionInfo{ID: 7, ScenarioID: 3, StudentID: 12},
		scenario: ScenarioInfo{ID: 3, Title: "Chest pain"},
		records:  recordsOf("Hello, what brings you in?", "Chest pain since this morning."),
	}
}

func TestEvaluateSessionInsufficientContent(t *testing.T) {
	store := baseStore()
	store.records = nil
	svc := NewService(store, &fakeCompleter{})
	_, err := svc.EvaluateSession(context.Background(), 7)
	if !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("expected ErrEmptyTranscript, got %v", err)
	}
}

func TestEvaluateSessionSkipsUnreadableMessages(t *testing.T) {
	store := baseStore()
	store.records = []MessageRecord{
		{Role: "user", Payload: map[string]any{}},
		{Role: "user", Payload: nil},
	}
	svc := NewService(store, &fakeCompleter{})
	_, err := svc.EvaluateSession(context.Background(), 7)
	if !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("expected ErrEmptyTranscript when no message has text, got %v", err)
	}
}

func TestEvaluateSessionGradingFailureFallsBack(t *testing.T) {
	store := baseStore()
	svc := NewService(store, &fakeCompleter{err: fmt.Errorf("network down")})
	out, err := svc.EvaluateSession(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if !out.Stored {
		t.Fatalf("expected report stored")
	}
	if len(out.Report.Criteria) != 4 {
		t.Fatalf("expected 4 fallback criteria, got %d", len(out.Report.Criteria))
	}
	if out.Report.OverallScorePercent != 50 {
		t.Fatalf("expected neutral overall 50, got %d", out.Report.OverallScorePercent)
	}
	if out.Report.ScenarioTitle != "Chest pain" {
		t.Fatalf("expected scenario title set, got %q", out.Report.ScenarioTitle)
	}
	if len(store.saved) != 1 || store.saved[0].SessionID != 7 || store.saved[0].StudentID != 12 {
		t.Fatalf("expected one saved record keyed by session, got %+v", store.saved)
	}
}

func TestEvaluateSessionPersistFailureKeepsReport(t *testing.T) {
	store := baseStore()
	store.saveErr = fmt.Errorf("connection reset")
	svc := NewService(store, &fakeCompleter{err: fmt.Errorf("network down")})
	out, err := svc.EvaluateSession(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected report despite save failure, got %v", err)
	}
	if out.Stored {
		t.Fatalf("expected Stored=false")
	}
	if out.StoreErr == nil {
		t.Fatalf("expected StoreErr surfaced")
	}
	if out.Report.OverallScorePercent != 50 || len(out.Report.Criteria) != 4 {
		t.Fatalf("expected computed report untouched by failure, got %+v", out.Report)
	}
}

func TestEvaluateSessionUsesGradingResult(t *testing.T) {
	store := baseStore()
	store.scenario.Criteria = []byte(`{"communication": {"weight": 20}, "examen": {"weight": 80}}`)
	llm := &fakeCompleter{resp: `{
		"criteria":[
			{"id":"communication","score":4,"strengths":["good rapport"]},
			{"id":"examen","score":2}
		],
		"overall":{"summary":"Decent consultation."},
		"overall_score_percent":55
	}`}
	svc := NewService(store, llm)
	out, err := svc.EvaluateSession(context.Background(), 7)
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}
	if llm.calls != 1 {
		t.Fatalf("expected one grading call, got %d", llm.calls)
	}
	if out.Report.OverallScorePercent != 55 {
		t.Fatalf("expected model overall 55, got %d", out.Report.OverallScorePercent)
	}
	// weighted: (4/4*20 + 2/4*80) / 100 * 100 = 60
	if out.Report.WeightedScorePercent != 60 {
		t.Fatalf("expected weighted 60, got %d", out.Report.WeightedScorePercent)
	}
	if out.Report.Summary != "Decent consultation." {
		t.Fatalf("expected summary, got %q", out.Report.Summary)
	}
}

func TestEvaluateSessionSessionMissing(t *testing.T) {
	store := baseStore()
	store.sessionErr = ErrNotFound
	svc := NewService(store, &fakeCompleter{})
	_, err := svc.EvaluateSession(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReportResolvesScenarioTitleLive(t *testing.T) {
	store := baseStore()
	store.scenario.Title = "Chest pain (revised)"
	store.loadRec = EvaluationRecord{
		SessionID:  7,
		ScenarioID: 3,
		Report:     Report{ScenarioTitle: "Chest pain", OverallScorePercent: 50},
	}
	svc := NewService(store, &fakeCompleter{})
	report, err := svc.Report(context.Background(), 7)
	if err != nil {
		t.Fatalf("report error: %v", err)
	}
	if report.ScenarioTitle != "Chest pain (revised)" {
		t.Fatalf("expected re-resolved title, got %q", report.ScenarioTitle)
	}
}

func TestReportDeletedScenarioClearsTitle(t *testing.T) {
	store := baseStore()
	store.scenarioErr = ErrNotFound
	store.loadRec = EvaluationRecord{
		SessionID:  7,
		ScenarioID: 3,
		Report:     Report{ScenarioTitle: "Chest pain"},
	}
	svc := NewService(store, &fakeCompleter{})
	report, err := svc.Report(context.Background(), 7)
	if err != nil {
		t.Fatalf("report error: %v", err)
	}
	if report.ScenarioTitle != "" {
		t.Fatalf("expected empty title for deleted scenario, got %q", report.ScenarioTitle)
	}
}

func TestReportMissingEvaluation(t *testing.T) {
	store := baseStore()
	store.loadErr = ErrNotFound
	svc := NewService(store, &fakeCompleter{})
	if _, err := svc.Report(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPromptWindowKeepsMostRecent(t *testing.T) {
	transcript := messagesOf("m0", "m1", "m2", "m3")
	got := promptWindow(transcript, 2)
	if len(got) != 2 || got[0].Text != "m2" || got[1].Text != "m3" {
		t.Fatalf("expected last two messages, got %v", got)
	}
	if got := promptWindow(transcript, 0); len(got) != 4 {
		t.Fatalf("expected full transcript when limit disabled, got %d", len(got))
	}
}
