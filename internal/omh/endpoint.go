// Package omh implements the Open mHealth read contract: column-filtered
// point rendering, schema registry entries, and the read-request lifecycle.
package omh

import (
	"context"
	"time"
)

// Window bounds a read to points inside [Start, End]. Nil bounds are open.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls inside the window, inclusive of both bounds.
func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}

// Pagination carries the caller's skip/limit window over the
// reverse-chronological record stream.
type Pagination struct {
	Skip  int
	Limit int
}

// Metadata is the per-point metadata block.
type Metadata struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Point is one OMH data point: metadata plus the column-filtered data block.
type Point struct {
	Metadata Metadata       `json:"metadata"`
	Data     map[string]any `json:"data"`
}

// Endpoint is one readable vendor resource. Implementations fetch at most
// once; a second Fetch is a no-op.
type Endpoint interface {
	Path() string
	HasID() bool
	HasTimestamp() bool
	HasLocation() bool

	Fetch(ctx context.Context, bearer string, window Window, page Pagination) error
	PointCount() int
	Points(columns *Columns) []Point
	Definition() Definition
}
