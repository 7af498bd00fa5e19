package tcp

import (
	"log/slog"
	"sync"
)

// ConnectionManager tracks every live connection so shutdown can close them
type ConnectionManager struct {
	clients map[string]*ClientConnection // key: client ID
	mu      sync.RWMutex
	logger  *slog.Logger
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients: make(map[string]*ClientConnection),
		logger:  slog.Default(),
	}
}

func (m *ConnectionManager) AddConnection(client *ClientConnection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.ID()] = client
	m.logger.Debug("client_added",
		"client_id", client.ID(),
		"active_clients", len(m.clients),
	)
}

func (m *ConnectionManager) RemoveConnection(client *ClientConnection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, client.ID())
	m.logger.Debug("client_removed",
		"client_id", client.ID(),
		"active_clients", len(m.clients),
	)
}

// Count returns the number of live connections
func (m *ConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// CloseAllConnections closes every socket; each handler then exits its read loop
func (m *ConnectionManager) CloseAllConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, client := range m.clients {
		client.Close()
		m.logger.Info("client_connection_closed",
			"client_id", id,
		)
	}
	m.clients = make(map[string]*ClientConnection)
}
