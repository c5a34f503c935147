package registry

import (
	"time"
)

// Status represents the lifecycle state of a job.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
)

// IsActive reports whether a job in this status blocks new job creation.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusRunning
}

// IsTerminal reports whether the status is final.
func (s Status) IsTerminal() bool {
	return s == StatusFinished || s == StatusFailed
}

// Request is the validated input that spawned a job. Immutable after creation.
type Request struct {
	URL    string `json:"url"`
	IMDBID string `json:"imdbid"`
	Name   string `json:"name"`
	Season int    `json:"season"`
}

// Job is one download-and-convert workflow instance.
//
// Progress fields are pointers so "not reported yet" is distinguishable from
// a zero value: a pending job has no progress_percent at all, a freshly
// started one has 0.
type Job struct {
	ID         string     `json:"job_id"`
	Status     Status     `json:"status"`
	Request    Request    `json:"request"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	ProgressPercent *int   `json:"progress_percent,omitempty"`
	CurrentTitle    string `json:"current_title,omitempty"`
	Speed           string `json:"speed,omitempty"`
	CurrentEpisode  *int   `json:"current_episode,omitempty"`

	ResultPath string `json:"result_path,omitempty"` // set only on finished
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"` // set only on failed
}

// Update is a partial job mutation. Nil fields are left untouched; non-nil
// fields are merged into the record in a single atomic call.
type Update struct {
	Status          *Status
	StartedAt       *time.Time
	FinishedAt      *time.Time
	ProgressPercent *int
	CurrentTitle    *string
	Speed           *string
	CurrentEpisode  *int
	ResultPath      *string
	Message         *string
	Error           *string
}

// Ptr returns a pointer to v. Convenience for building partial updates.
func Ptr[T any](v T) *T {
	return &v
}
