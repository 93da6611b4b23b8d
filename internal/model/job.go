package model

import (
	"fmt"
	"time"
)

// JobStatus is the lifecycle state of an enrichment or analytics job.
// Transitions are queued -> running -> {completed, failed}; a terminal status
// is never left.
type JobStatus string

// Job lifecycle states.
const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// StageStatus is the per-stage outcome within one enrichment job. A skipped
// stage lacked its prerequisite (coordinates, country code) and is distinct
// from a failed one.
type StageStatus string

// Stage outcome states.
const (
	StagePending   StageStatus = "pending"
	StageRunning   StageStatus = "running"
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// Stage names, in fixed execution order: cheapest first so partial progress is
// observable early.
const (
	StageTemporal = "temporal"
	StageWeather  = "weather"
	StageHoliday  = "holiday"
)

// StageProgress tracks rows enriched versus total for one stage.
type StageProgress struct {
	Status   StageStatus `json:"status"`
	Enriched int         `json:"enriched"`
	Total    int         `json:"total"`
}

// EnrichmentJob is the durable record of one pipeline execution for one
// property. Its existence in the store, written before the task is queued, is
// the durability boundary that survives a process reload.
type EnrichmentJob struct {
	ID         string        `json:"id"`
	PropertyID string        `json:"property_id"`
	Status     JobStatus     `json:"status"`
	Temporal   StageProgress `json:"temporal"`
	Weather    StageProgress `json:"weather"`
	Holiday    StageProgress `json:"holiday"`
	Error      *string       `json:"error,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// NewEnrichmentJobID derives the job handle from the property ID and the
// creation instant. Nanosecond resolution keeps back-to-back requests for the
// same property distinct. This exact string is the only token accepted by
// status lookups; a bare property ID will not resolve.
func NewEnrichmentJobID(propertyID string, createdAt time.Time) string {
	return fmt.Sprintf("%s-%d", propertyID, createdAt.UTC().UnixNano())
}

// AnalyticsJob is the downstream job chained onto a completed enrichment job.
// TriggeredBy carries the enrichment job ID and is unique, which makes
// dispatching idempotent per completed job.
type AnalyticsJob struct {
	ID          string    `json:"id"`
	PropertyID  string    `json:"property_id"`
	TriggeredBy string    `json:"triggered_by"`
	Status      JobStatus `json:"status"`
	Error       *string   `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
