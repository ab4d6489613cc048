// Package audit emits read-audit events for completed OMH reads.
package audit

import "time"

// EventTypeReadCompleted labels the event emitted after every read,
// including reads that short-circuited on an unlinked owner.
const EventTypeReadCompleted = "omh.read.completed"

// ReadCompleted describes one completed OMH read.
type ReadCompleted struct {
	RequestID    string    `json:"request_id"`
	TenantID     string    `json:"tenant_id"`
	Requester    string    `json:"requester"`
	Owner        string    `json:"owner"`
	PayloadID    string    `json:"payload_id"`
	PointCount   int       `json:"point_count"`
	VendorCalled bool      `json:"vendor_called"`
	DurationMS   int64     `json:"duration_ms"`
	OccurredAt   time.Time `json:"occurred_at"`
}
