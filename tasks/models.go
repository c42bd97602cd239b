package tasks

import "time"

// Task asks the worker to (re-)anchor every evidence row of one document.
// Attempts counts prior failures.
type Task struct {
	DocumentID int64
	Reason     string
	Attempts   int
	NextRunAt  time.Time
	StartedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
