package entities

import (
	"time"

	"sessioncore/server/seedwork/domain"
)

// TaskStatus is the fixed lifecycle vocabulary from spec §3.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskStarted   TaskStatus = "started"
	TaskSuccess   TaskStatus = "success"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// IsTerminal reports whether status is one a Task never transitions out of
// (spec §8: "A task never transitions out of a terminal state").
func (s TaskStatus) IsTerminal() bool {
	return s == TaskSuccess || s == TaskFailed || s == TaskCancelled
}

// Progress is the published progress marker for a running task (spec §4.E).
type Progress struct {
	Step    string `json:"step"`
	Percent int    `json:"percent"`
}

// Task is a named, pollable record of background work (GLOSSARY). It is
// created by the controller handing off to the retranscription executor
// and mutated only by that executor.
type Task struct {
	domain.BaseEntity
	SessionID string      `json:"session_id" gorm:"column:session_id;not null;index"`
	OwnerID   string      `json:"owner_id" gorm:"column:owner_id;not null;index"`
	Status    TaskStatus  `json:"status" gorm:"column:status;not null"`
	Step      string      `json:"-" gorm:"column:step"`
	Percent   int         `json:"-" gorm:"column:percent"`
	Result    string      `json:"result,omitempty" gorm:"column:result;type:jsonb"`
	Error     string      `json:"error,omitempty" gorm:"column:error;type:text"`
}

// NewTask allocates a fresh task in the `pending` status.
func NewTask(sessionID, ownerID string) Task {
	t := Task{
		SessionID: sessionID,
		OwnerID:   ownerID,
		Status:    TaskPending,
		Step:      "initializing",
		Percent:   0,
	}
	t.SetID(domain.GenerateID())
	return t
}

// Progress returns the current progress marker.
func (t *Task) Progress() Progress {
	return Progress{Step: t.Step, Percent: t.Percent}
}

// TableName sets the table name for GORM.
func (Task) TableName() string {
	return "tasks"
}
