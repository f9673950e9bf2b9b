package models

import "time"

// Animation status lifecycle. Transitions are monotonic within a traversal;
// terminal states are re-entered only through an explicit regeneration, which
// starts a fresh pending→running traversal on the same record.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Animation is one request to render a script into a video, tracked through
// its status lifecycle. Exactly one of Result/Error is populated once the
// status is terminal; both are absent while pending or running.
type Animation struct {
	ID          string         `json:"id"`
	Title       string         `json:"title,omitempty"`
	Prompt      string         `json:"prompt,omitempty"`
	Description string         `json:"description,omitempty"`
	Script      string         `json:"script,omitempty"`
	Quality     string         `json:"quality"`
	Status      string         `json:"status"`
	Error       string         `json:"error,omitempty"`
	Result      *RenderOutcome `json:"result,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`
}

// RenderOutcome is the persisted result of a completed traversal.
type RenderOutcome struct {
	VideoObjectKey  string  `json:"video_object_key"`
	VideoURL        string  `json:"video_url,omitempty"`
	ThumbObjectKey  string  `json:"thumb_object_key,omitempty"`
	ThumbURL        string  `json:"thumbnail_url,omitempty"`
	SizeBytes       int64   `json:"size_bytes"`
	Resolution      string  `json:"resolution,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	RenderMs        int64   `json:"render_ms,omitempty"`
}
