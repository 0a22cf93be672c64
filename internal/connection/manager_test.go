package connection

import (
	"net"
	"testing"
	"time"
)

type mockAddr struct{}

func (m *mockAddr) Network() string { return "tcp" }
func (m *mockAddr) String() string  { return "127.0.0.1:0" }

type mockConn struct{}

func (m *mockConn) Read(b []byte) (n int, err error)   { return 0, nil }
func (m *mockConn) Write(b []byte) (n int, err error)  { return len(b), nil }
func (m *mockConn) Close() error                       { return nil }
func (m *mockConn) LocalAddr() net.Addr                { return &mockAddr{} }
func (m *mockConn) RemoteAddr() net.Addr               { return &mockAddr{} }
func (m *mockConn) SetDeadline(t time.Time) error      { return nil }
func (m *mockConn) SetReadDeadline(t time.Time) error  { return nil }
func (m *mockConn) SetWriteDeadline(t time.Time) error { return nil }

func TestManager_Register(t *testing.T) {
	m := NewManager(10)
	conn := &mockConn{}

	err := m.Register("conn1", "PHC-001", "North District", conn)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if m.Count() != 1 {
		t.Errorf("Expected 1 connection, got %d", m.Count())
	}

	client, exists := m.Get("conn1")
	if !exists {
		t.Fatal("Client not found")
	}

	if client.SiteID != "PHC-001" {
		t.Errorf("Expected site PHC-001, got %s", client.SiteID)
	}
}

func TestManager_RegisterMaxConnections(t *testing.T) {
	m := NewManager(2)
	conn := &mockConn{}

	m.Register("conn1", "PHC-001", "North District", conn)
	m.Register("conn2", "PHC-002", "South District", conn)

	// Third connection should fail
	err := m.Register("conn3", "PHC-003", "East District", conn)
	if err != ErrMaxConnectionsReached {
		t.Errorf("Expected ErrMaxConnectionsReached, got %v", err)
	}
}

func TestManager_Unregister(t *testing.T) {
	m := NewManager(10)
	conn := &mockConn{}

	m.Register("conn1", "PHC-001", "North District", conn)

	if err := m.Unregister("conn1"); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}

	if m.Count() != 0 {
		t.Errorf("Expected 0 connections, got %d", m.Count())
	}

	if got := m.GetBySite("PHC-001"); len(got) != 0 {
		t.Errorf("Expected empty site index, got %v", got)
	}
}

func TestManager_GetBySite(t *testing.T) {
	m := NewManager(10)
	conn := &mockConn{}

	m.Register("conn1", "PHC-001", "North District", conn)
	m.Register("conn2", "PHC-001", "North District", conn)
	m.Register("conn3", "PHC-002", "South District", conn)

	connIDs := m.GetBySite("PHC-001")
	if len(connIDs) != 2 {
		t.Errorf("Expected 2 connections for PHC-001, got %d", len(connIDs))
	}
}

func TestManager_Stats(t *testing.T) {
	m := NewManager(5)
	conn := &mockConn{}

	m.Register("conn1", "PHC-001", "North District", conn)
	m.Register("conn2", "PHC-001", "North District", conn)
	m.Register("conn3", "PHC-002", "South District", conn)

	stats := m.Stats()
	if stats.TotalConnections != 3 {
		t.Errorf("Expected 3 connections, got %d", stats.TotalConnections)
	}
	if stats.MaxConnections != 5 {
		t.Errorf("Expected max 5, got %d", stats.MaxConnections)
	}
	if stats.UniqueSites != 2 {
		t.Errorf("Expected 2 unique sites, got %d", stats.UniqueSites)
	}
}

func TestManager_GetInactiveConnections(t *testing.T) {
	m := NewManager(10)
	conn := &mockConn{}

	m.Register("conn1", "PHC-001", "North District", conn)

	time.Sleep(20 * time.Millisecond)

	inactive := m.GetInactiveConnections(10 * time.Millisecond)
	if len(inactive) != 1 {
		t.Errorf("Expected 1 inactive connection, got %d", len(inactive))
	}

	m.UpdateActivity("conn1")
	inactive = m.GetInactiveConnections(10 * time.Millisecond)
	if len(inactive) != 0 {
		t.Errorf("Expected no inactive connections after activity, got %d", len(inactive))
	}
}
