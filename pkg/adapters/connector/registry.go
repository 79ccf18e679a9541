package connector

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fuseline-io/fuseline-engine/pkg/apperrors"
)

// Registry maps connector type names ("static", "file", "postgres", ...)
// to Connector implementations. It is an explicit instance handed to the
// engine rather than package-level state, so two engines can carry
// different connector sets.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{connectors: make(map[string]Connector)}
}

// Register adds or replaces a connector for the given type name.
func (r *Registry) Register(connType string, conn Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[connType] = conn
}

// Get returns the connector registered for the type name.
func (r *Registry) Get(connType string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.connectors[connType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrConnectorNotFound, connType)
	}
	return conn, nil
}

// Registered returns the registered type names, sorted.
func (r *Registry) Registered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.connectors))
	for name := range r.connectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
