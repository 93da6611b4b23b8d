package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPropertyNotFound indicates that a property with the given ID does not exist.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrJobNotFound indicates that no enrichment job record exists for the given
	// job ID. Terminal records are garbage-collected, so not-found may also mean
	// the job completed and its record has since expired.
	ErrJobNotFound = errors.New("enrichment job not found")

	// ErrAnalyticsNotFound indicates that no analytics summary exists for the property.
	ErrAnalyticsNotFound = errors.New("analytics summary not found")

	// ErrCredentialNotFound indicates no stored API key for the provider.
	ErrCredentialNotFound = errors.New("provider credential not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrNoRows indicates that enrichment was requested for a property that has
	// no pricing rows to enrich.
	ErrNoRows = errors.New("property has no pricing rows")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrTerminalJob indicates an attempt to mutate a job that already reached a
	// terminal status. Terminal jobs are immutable; a new request creates a new job.
	ErrTerminalJob = errors.New("job already reached a terminal status")

	// ErrQueueFull indicates the in-process job queue cannot accept more work.
	ErrQueueFull = errors.New("enrichment queue is full")

	// ErrQueueClosed indicates the queue is shutting down and no longer accepts
	// tasks. Rejected tasks are picked up by boot recovery on the next start.
	ErrQueueClosed = errors.New("enrichment queue is closed")
)

// Provider errors represent failures of the external feature sources. They are
// recorded as stage-level failures on the job record, never propagated upward.
var (
	// ErrProviderUnavailable indicates the external source could not be reached
	// or returned a non-2xx response after retries.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrMissingCoordinates indicates the weather stage cannot run because the
	// property has no latitude/longitude. Recorded as skipped, not failed.
	ErrMissingCoordinates = errors.New("property has no coordinates")

	// ErrMissingCountry indicates the holiday stage cannot run because the
	// property has no country code. Recorded as skipped, not failed.
	ErrMissingCountry = errors.New("property has no country code")
)
