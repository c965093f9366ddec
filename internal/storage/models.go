package storage

import "gorm.io/gorm"

// Scenario holds a simulated-patient case. Criteria is the evaluation
// criteria document exactly as authored, in whatever historical shape it was
// written; normalization happens at grading time, not here.
type Scenario struct {
	gorm.Model
	Title    string `gorm:"size:255;not null"`
	Criteria []byte `gorm:"type:jsonb"`
}

// TrainingSession is one student/scenario conversation.
type TrainingSession struct {
	gorm.Model
	ScenarioID uint   `gorm:"index;not null"`
	StudentID  uint   `gorm:"index;not null"`
	Status     string `gorm:"size:50;not null;default:'active'"` // active, completed
}

// SessionMessage is one transcript entry. Payload keeps the message fields as
// recorded; older sessions stored the text under question or response rather
// than content.
type SessionMessage struct {
	gorm.Model
	SessionID uint   `gorm:"index;not null"`
	Role      string `gorm:"size:32;not null"`
	Payload   []byte `gorm:"type:jsonb"`
}

// Evaluation is the stored competency report, at most one per session.
type Evaluation struct {
	gorm.Model
	SessionID            uint `gorm:"uniqueIndex;not null"`
	ScenarioID           uint `gorm:"index"`
	StudentID            uint `gorm:"index"`
	OverallScorePercent  int
	LLMScorePercent      int
	WeightedScorePercent int
	Strengths            []byte `gorm:"type:jsonb"`
	Weaknesses           []byte `gorm:"type:jsonb"`
	Recommendations      []byte `gorm:"type:jsonb"`
	Summary              string `gorm:"type:text"`
	Details              []byte `gorm:"type:jsonb"` // per-criterion detail blocks, evidence included
}
