// Package lb selects a server endpoint for a client, given an optional
// geographic region hint, by delegating discovery to the registry and
// picking the first candidate.
package lb

import (
	"fmt"

	"github.com/meeting-platform/core/internal/domain"
)

// NodeLister is satisfied by *registry.Registry.
type NodeLister interface {
	List(region string) ([]domain.Node, error)
}

// Balancer picks one node per selection request.
type Balancer struct {
	registry NodeLister
}

// New constructs a Balancer backed by registry.
func New(registry NodeLister) *Balancer {
	return &Balancer{registry: registry}
}

// Select returns the first node the registry lists for region. An empty
// region is listed as the default region, and a region with no
// registrations yields every node across all regions (the registry's own
// fallback-to-all-nodes behavior).
func (b *Balancer) Select(region string) (domain.Node, error) {
	nodes, err := b.registry.List(region)
	if err != nil {
		return domain.Node{}, fmt.Errorf("list nodes: %w", err)
	}
	if len(nodes) == 0 {
		return domain.Node{}, fmt.Errorf("lb: no nodes available")
	}
	return nodes[0], nil
}
