// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// JobID is the opaque identity of a conversion job.
type JobID string

// JobStatus is the lifecycle state of a conversion job. Completed and Failed
// are terminal.
type JobStatus string

const (
	JobWaiting    JobStatus = "waiting"
	JobConverting JobStatus = "converting"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether s is a terminal status.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is a read-only snapshot of one file's conversion request. The queue
// that owns a job hands out copies; mutating a snapshot has no effect.
type Job struct {
	ID        JobID     `json:"id" yaml:"id"`
	InputPath string    `json:"input_path" yaml:"input_path"`
	Status    JobStatus `json:"status" yaml:"status"`

	// Progress is in [0, 1] and never decreases while the job is converting.
	Progress float64 `json:"progress" yaml:"progress"`

	// OutputPath is set only when Status is JobCompleted. For multi-page
	// raster output it names the directory holding the page files.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	// ErrorKind and Error describe the failure when Status is JobFailed.
	ErrorKind string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`

	SubmittedAt time.Time `json:"submitted_at" yaml:"submitted_at"`
	FinishedAt  time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}
