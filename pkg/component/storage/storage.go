// Package storage provides a unified interface for storage backends.
//
// It defines the core abstractions all storage clients follow, plus a small
// registry used to health-check and close them together at shutdown.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// HealthChecker verifies that a storage backend is reachable.
type HealthChecker func() error

// Client is the base interface implemented by all storage clients.
type Client interface {
	// Name returns the storage type identifier.
	Name() string

	// Ping checks if the connection is alive.
	Ping(ctx context.Context) error

	// Close closes the connection gracefully.
	Close() error

	// Health returns a HealthChecker for this client.
	Health() HealthChecker
}

// HealthStatus is the result of a health check.
type HealthStatus struct {
	Healthy bool
	Latency time.Duration
	Error   error
}

// Manager is a registry for storage clients.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{clients: make(map[string]Client)}
}

// Register adds a client under its own name.
func (m *Manager) Register(client Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := client.Name()
	if _, ok := m.clients[name]; ok {
		return fmt.Errorf("storage client %q already registered", name)
	}
	m.clients[name] = client
	return nil
}

// MustRegister adds a client and panics on conflict.
func (m *Manager) MustRegister(client Client) {
	if err := m.Register(client); err != nil {
		panic(err)
	}
}

// HealthCheckAll pings every registered client.
func (m *Manager) HealthCheckAll(ctx context.Context) map[string]HealthStatus {
	m.mu.RLock()
	clients := make(map[string]Client, len(m.clients))
	for name, c := range m.clients {
		clients[name] = c
	}
	m.mu.RUnlock()

	statuses := make(map[string]HealthStatus, len(clients))
	for name, c := range clients {
		start := time.Now()
		err := c.Ping(ctx)
		statuses[name] = HealthStatus{
			Healthy: err == nil,
			Latency: time.Since(start),
			Error:   err,
		}
	}
	return statuses
}

// CloseAll closes every registered client, returning the first error seen.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, c := range m.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %q: %w", name, err)
		}
		delete(m.clients, name)
	}
	return firstErr
}
