package domain

import "time"

// JobStatus enumerates production job lifecycle states.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobMatching   JobStatus = "matching"
	JobGenerating JobStatus = "generating"
	JobAssembling JobStatus = "assembling"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// IsTerminal reports whether the status admits no further transitions.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

// ProductionJob tracks one end-to-end storyboard production. Mutated only by
// the state machine; terminal once completed or failed.
type ProductionJob struct {
	ID           string
	StoryboardID string
	Status       JobStatus
	Progress     float64
	OutputPath   string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
