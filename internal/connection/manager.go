package connection

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// ErrMaxConnectionsReached is returned when the registry is full
var ErrMaxConnectionsReached = errors.New("maximum connections reached")

// ClientInfo holds information about a connected site
type ClientInfo struct {
	ConnectionID  string
	SiteID        string
	District      string
	ConnectedAt   time.Time
	LastHeardFrom time.Time
	Conn          net.Conn
	mu            sync.RWMutex
}

// UpdateLastHeardFrom updates the last activity timestamp
func (c *ClientInfo) UpdateLastHeardFrom() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastHeardFrom = time.Now()
}

// GetLastHeardFrom returns the last activity timestamp
func (c *ClientInfo) GetLastHeardFrom() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LastHeardFrom
}

// Manager manages all active site connections
type Manager struct {
	clients  map[string]*ClientInfo // key: connection_id
	bySite   map[string][]string    // key: site_id, value: []connection_id
	mu       sync.RWMutex
	maxConns int
}

// NewManager creates a new connection manager
func NewManager(maxConnections int) *Manager {
	return &Manager{
		clients:  make(map[string]*ClientInfo),
		bySite:   make(map[string][]string),
		maxConns: maxConnections,
	}
}

// Register adds a new site connection
func (m *Manager) Register(connectionID, siteID, district string, conn net.Conn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.clients) >= m.maxConns {
		return ErrMaxConnectionsReached
	}

	if _, exists := m.clients[connectionID]; exists {
		return fmt.Errorf("connection ID %s already registered", connectionID)
	}

	now := time.Now()
	clientInfo := &ClientInfo{
		ConnectionID:  connectionID,
		SiteID:        siteID,
		District:      district,
		ConnectedAt:   now,
		LastHeardFrom: now,
		Conn:          conn,
	}

	m.clients[connectionID] = clientInfo
	m.bySite[siteID] = append(m.bySite[siteID], connectionID)

	return nil
}

// Unregister removes a site connection
func (m *Manager) Unregister(connectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, exists := m.clients[connectionID]
	if !exists {
		return fmt.Errorf("connection ID %s not found", connectionID)
	}

	siteID := client.SiteID
	if connIDs, ok := m.bySite[siteID]; ok {
		for i, id := range connIDs {
			if id == connectionID {
				m.bySite[siteID] = append(connIDs[:i], connIDs[i+1:]...)
				break
			}
		}
		if len(m.bySite[siteID]) == 0 {
			delete(m.bySite, siteID)
		}
	}

	delete(m.clients, connectionID)

	return nil
}

// Get retrieves client information by connection ID
func (m *Manager) Get(connectionID string) (*ClientInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	client, exists := m.clients[connectionID]
	return client, exists
}

// GetBySite retrieves all connection IDs for a site
func (m *Manager) GetBySite(siteID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	connIDs := m.bySite[siteID]
	// Return a copy to avoid race conditions
	result := make([]string, len(connIDs))
	copy(result, connIDs)
	return result
}

// UpdateActivity updates the last heard from timestamp for a connection
func (m *Manager) UpdateActivity(connectionID string) error {
	m.mu.RLock()
	client, exists := m.clients[connectionID]
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("connection ID %s not found", connectionID)
	}

	client.UpdateLastHeardFrom()
	return nil
}

// GetInactiveConnections returns connection IDs that haven't been heard
// from in the given duration
func (m *Manager) GetInactiveConnections(timeout time.Duration) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	var inactive []string

	for connID, client := range m.clients {
		lastHeard := client.GetLastHeardFrom()
		if now.Sub(lastHeard) > timeout {
			inactive = append(inactive, connID)
		}
	}

	return inactive
}

// Count returns the number of active connections
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// ManagerStats contains statistics about the connection manager
type ManagerStats struct {
	TotalConnections int
	MaxConnections   int
	UniqueSites      int
}

// Stats returns statistics about active connections
func (m *Manager) Stats() ManagerStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return ManagerStats{
		TotalConnections: len(m.clients),
		MaxConnections:   m.maxConns,
		UniqueSites:      len(m.bySite),
	}
}
