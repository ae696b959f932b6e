package fhir

import (
	"fmt"
	"sync"
)

// Target holds the one FHIR server the application currently talks to.
// Replace swaps the whole connection; callers that already took a
// Connection from Current keep using the old server.
type Target struct {
	mu      sync.RWMutex
	conn    Connection
	connect Connector
}

// NewTarget opens the initial connection.
func NewTarget(connect Connector, cfg ServerConfig) (*Target, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.BaseURL, err)
	}
	return &Target{conn: conn, connect: connect}, nil
}

// Current returns the active connection.
func (t *Target) Current() Connection {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.conn
}

// Replace points the target at baseURL, keeping the application id. The URL
// is not validated beyond what the connector needs to build a client.
func (t *Target) Replace(baseURL string) (Connection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cfg := ServerConfig{AppID: t.conn.Config().AppID, BaseURL: baseURL}
	conn, err := t.connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", baseURL, err)
	}
	t.conn = conn
	return conn, nil
}
