// Package payload parses OMH payload identifiers and resolves them to
// Health Graph endpoints.
package payload

import (
	"errors"
	"fmt"
	"strings"

	"example.com/runkeeper/internal/healthgraph"
	"example.com/runkeeper/internal/omh"
)

// ErrInvalidID marks malformed or unresolvable payload identifiers.
var ErrInvalidID = errors.New("invalid payload id")

// endpointRegistry is the closed selector set. Adding a vendor resource
// means adding an endpoint type and an entry here; there is no runtime
// registration.
var endpointRegistry = map[string]func(*healthgraph.Client) omh.Endpoint{
	healthgraph.ProfilePath: func(c *healthgraph.Client) omh.Endpoint {
		return healthgraph.NewProfile(c)
	},
	healthgraph.FitnessActivitiesPath: func(c *healthgraph.Client) omh.Endpoint {
		return healthgraph.NewFitnessActivities(c)
	},
}

// Selectors returns the registered selectors in a fixed order.
func Selectors() []string {
	return []string{healthgraph.ProfilePath, healthgraph.FitnessActivitiesPath}
}

// ID is a validated three-part payload identifier,
// <namespace>:<domain>:<selector>. The first two parts are platform
// markers; the selector names one registered endpoint.
type ID struct {
	namespace string
	domain    string
	selector  string
}

// Parse validates a raw payload identifier. It fails unless the identifier
// has exactly three colon-delimited parts and the third resolves through
// the registry.
func Parse(raw string) (ID, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return ID{}, fmt.Errorf("%w: expected 3 colon-delimited parts, got %d", ErrInvalidID, len(parts))
	}
	if _, ok := endpointRegistry[parts[2]]; !ok {
		return ID{}, fmt.Errorf("%w: unknown selector %q", ErrInvalidID, parts[2])
	}
	return ID{namespace: parts[0], domain: parts[1], selector: parts[2]}, nil
}

// Selector returns the endpoint selector, e.g. "profile".
func (id ID) Selector() string { return id.selector }

// String reassembles the identifier.
func (id ID) String() string {
	return id.namespace + ":" + id.domain + ":" + id.selector
}

// Endpoint constructs a fresh endpoint instance for the identifier.
func (id ID) Endpoint(client *healthgraph.Client) omh.Endpoint {
	return endpointRegistry[id.selector](client)
}
