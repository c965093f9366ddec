package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"simclinic/internal/evaluation"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements evaluation.Store on Postgres.
type Store struct {
	db *gorm.DB
}

// Connect opens the database and runs migrations.
func Connect(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(
		&Scenario{},
		&TrainingSession{},
		&SessionMessage{},
		&Evaluation{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing gorm connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Session(ctx context.Context, sessionID uint) (evaluation.SessionInfo, error) {
	var row TrainingSession
	if err := s.db.WithContext(ctx).First(&row, sessionID).Error; err != nil {
		return evaluation.SessionInfo{}, notFoundOr(err)
	}
	return evaluation.SessionInfo{
		ID:         row.ID,
		ScenarioID: row.ScenarioID,
		StudentID:  row.StudentID,
	}, nil
}

func (s *Store) Scenario(ctx context.Context, scenarioID uint) (evaluation.ScenarioInfo, error) {
	var row Scenario
	if err := s.db.WithContext(ctx).First(&row, scenarioID).Error; err != nil {
		return evaluation.ScenarioInfo{}, notFoundOr(err)
	}
	return evaluation.ScenarioInfo{
		ID:       row.ID,
		Title:    row.Title,
		Criteria: row.Criteria,
	}, nil
}

func (s *Store) Transcript(ctx context.Context, sessionID uint) ([]evaluation.MessageRecord, error) {
	var rows []SessionMessage
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]evaluation.MessageRecord, 0, len(rows))
	for _, row := range rows {
		payload := map[string]any{}
		if len(row.Payload) > 0 {
			// Unreadable payloads become empty messages and are dropped
			// downstream rather than failing the whole transcript.
			_ = json.Unmarshal(row.Payload, &payload)
		}
		sentAt := row.CreatedAt
		out = append(out, evaluation.MessageRecord{
			Role:    row.Role,
			Payload: payload,
			SentAt:  &sentAt,
		})
	}
	return out, nil
}

// SaveEvaluation writes a report, replacing any previous evaluation for the
// same session.
func (s *Store) SaveEvaluation(ctx context.Context, rec evaluation.EvaluationRecord) error {
	row, err := evaluationRow(rec)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"scenario_id", "student_id",
			"overall_score_percent", "llm_score_percent", "weighted_score_percent",
			"strengths", "weaknesses", "recommendations", "summary", "details",
			"updated_at",
		}),
	}).Create(&row).Error
}

func (s *Store) LoadEvaluation(ctx context.Context, sessionID uint) (evaluation.EvaluationRecord, error) {
	var row Evaluation
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&row).Error
	if err != nil {
		return evaluation.EvaluationRecord{}, notFoundOr(err)
	}
	return recordFromRow(row)
}

func evaluationRow(rec evaluation.EvaluationRecord) (Evaluation, error) {
	strengths, err := json.Marshal(rec.Report.Strengths)
	if err != nil {
		return Evaluation{}, fmt.Errorf("encode strengths: %w", err)
	}
	weaknesses, err := json.Marshal(rec.Report.Weaknesses)
	if err != nil {
		return Evaluation{}, fmt.Errorf("encode weaknesses: %w", err)
	}
	recommendations, err := json.Marshal(rec.Report.Recommendations)
	if err != nil {
		return Evaluation{}, fmt.Errorf("encode recommendations: %w", err)
	}
	details, err := json.Marshal(rec.Report.Criteria)
	if err != nil {
		return Evaluation{}, fmt.Errorf("encode criteria detail: %w", err)
	}
	return Evaluation{
		SessionID:            rec.SessionID,
		ScenarioID:           rec.ScenarioID,
		StudentID:            rec.StudentID,
		OverallScorePercent:  rec.Report.OverallScorePercent,
		LLMScorePercent:      rec.Report.LLMScorePercent,
		WeightedScorePercent: rec.Report.WeightedScorePercent,
		Strengths:            strengths,
		Weaknesses:           weaknesses,
		Recommendations:      recommendations,
		Summary:              rec.Report.Summary,
		Details:              details,
	}, nil
}

func recordFromRow(row Evaluation) (evaluation.EvaluationRecord, error) {
	rec := evaluation.EvaluationRecord{
		SessionID:  row.SessionID,
		ScenarioID: row.ScenarioID,
		StudentID:  row.StudentID,
		Report: evaluation.Report{
			OverallScorePercent:  row.OverallScorePercent,
			LLMScorePercent:      row.LLMScorePercent,
			WeightedScorePercent: row.WeightedScorePercent,
			Summary:              row.Summary,
			Strengths:            []string{},
			Weaknesses:           []string{},
			Recommendations:      []string{},
			Criteria:             []evaluation.CriterionReport{},
		},
	}
	if err := decodeList(row.Strengths, &rec.Report.Strengths); err != nil {
		return rec, fmt.Errorf("decode strengths: %w", err)
	}
	if err := decodeList(row.Weaknesses, &rec.Report.Weaknesses); err != nil {
		return rec, fmt.Errorf("decode weaknesses: %w", err)
	}
	if err := decodeList(row.Recommendations, &rec.Report.Recommendations); err != nil {
		return rec, fmt.Errorf("decode recommendations: %w", err)
	}
	if len(row.Details) > 0 {
		if err := json.Unmarshal(row.Details, &rec.Report.Criteria); err != nil {
			return rec, fmt.Errorf("decode criteria detail: %w", err)
		}
	}
	return rec, nil
}

func decodeList(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return evaluation.ErrNotFound
	}
	return err
}
