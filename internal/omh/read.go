package omh

import (
	"context"
	"errors"
	"fmt"

	"example.com/runkeeper/internal/credentials"
)

var (
	// ErrWriteUnsupported rejects write requests; vendor data is read-only here.
	ErrWriteUnsupported = errors.New("cannot write to this payload id")
	// ErrNilEndpoint is returned when a request is constructed without an endpoint.
	ErrNilEndpoint = errors.New("endpoint is nil")
	// ErrAlreadyServiced guards against servicing a request twice.
	ErrAlreadyServiced = errors.New("read request already serviced")
	// ErrNotServiced is returned when responding before servicing.
	ErrNotServiced = errors.New("read request not serviced yet")
	// ErrAlreadyResponded guards against rendering a response twice.
	ErrAlreadyResponded = errors.New("read request already responded")
)

type readState int

const (
	stateConstructed readState = iota
	stateServiced
	stateResponded
)

// ReadRequest walks one OMH read through its lifecycle:
// constructed -> serviced -> responded.
type ReadRequest struct {
	domain       string
	endpoint     Endpoint
	creds        credentials.Source
	state        readState
	vendorCalled bool
}

// NewReadRequest constructs a read request for the given endpoint.
func NewReadRequest(domain string, endpoint Endpoint, creds credentials.Source) (*ReadRequest, error) {
	if endpoint == nil {
		return nil, ErrNilEndpoint
	}
	return &ReadRequest{domain: domain, endpoint: endpoint, creds: creds}, nil
}

// NewWriteRequest always fails: this integration only reads vendor data.
func NewWriteRequest(domain string, endpoint Endpoint) (*ReadRequest, error) {
	return nil, ErrWriteUnsupported
}

// Service resolves the owner's bearer token and performs the endpoint's
// single fetch. An owner with no stored token is not an error; the request
// completes with zero points and the vendor is never contacted.
func (r *ReadRequest) Service(ctx context.Context, owner string, window Window, page Pagination) error {
	if r.state != stateConstructed {
		return ErrAlreadyServiced
	}

	creds, err := r.creds.Credentials(ctx, r.domain)
	if err != nil {
		return fmt.Errorf("looking up %s credentials: %w", r.domain, err)
	}

	bearer, linked := creds[credentials.BearerKey(owner)]
	if !linked {
		r.state = stateServiced
		return nil
	}

	if err := r.endpoint.Fetch(ctx, bearer, window, page); err != nil {
		return fmt.Errorf("reading %s from vendor: %w", r.endpoint.Path(), err)
	}

	r.vendorCalled = true
	r.state = stateServiced
	return nil
}

// VendorCalled reports whether servicing reached the vendor.
func (r *ReadRequest) VendorCalled() bool {
	return r.vendorCalled
}

// PointCount returns the number of points the request will respond with.
func (r *ReadRequest) PointCount() int {
	if r.state == stateConstructed || !r.vendorCalled {
		return 0
	}
	return r.endpoint.PointCount()
}

// ReadResult is the rendered outcome of a serviced request.
type ReadResult struct {
	Count  int
	Points []Point
}

// Respond renders the fetched records with the caller's column selection.
// The request is spent afterwards; a second Respond fails.
func (r *ReadRequest) Respond(columns *Columns) (ReadResult, error) {
	switch r.state {
	case stateConstructed:
		return ReadResult{}, ErrNotServiced
	case stateResponded:
		return ReadResult{}, ErrAlreadyResponded
	}

	result := ReadResult{Points: []Point{}}
	if r.vendorCalled {
		result.Count = r.endpoint.PointCount()
		result.Points = r.endpoint.Points(columns)
	}
	r.state = stateResponded
	return result, nil
}
