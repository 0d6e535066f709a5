package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskData is one named field's payload plus its content type.
type TaskData struct {
	Data []byte
	Type FieldType
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskFinished   TaskStatus = "finished"
	TaskFailed     TaskStatus = "failed"
)

// Task is one unit of work accepted from an engine. Data holds the input
// fields; Result the output fields once the task finishes.
type Task struct {
	ID          uuid.UUID
	CallbackURL string
	Data        map[string]TaskData
	Status      TaskStatus
	Result      map[string]TaskData
	Error       string
	SubmittedAt time.Time
	FinishedAt  time.Time
}
