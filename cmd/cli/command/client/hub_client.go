package client

// hub_client.go = TCP client used by the warehouse, worker and central nodes to talk to the hub.

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"warehub/internal/protocol"
)

var ErrNotConnected = errors.New("not connected")

// HubClient holds one connection to the hub
type HubClient struct {
	serverAddr string
	conn       net.Conn
	reader     *bufio.Reader
	connected  bool
	stats      ConnectionStats
	mu         sync.RWMutex
	writeMu    sync.Mutex
}

// ConnectionStats holds connection statistics
type ConnectionStats struct {
	Uptime           time.Duration
	MessagesSent     int
	MessagesReceived int
	LastSent         time.Time
	ConnectedAt      time.Time
}

// NewHubClient creates a new hub client
func NewHubClient(serverAddr string) *HubClient {
	return &HubClient{serverAddr: serverAddr}
}

// Connect establishes connection to the hub
func (c *HubClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := net.DialTimeout("tcp", c.serverAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.connected = true
	c.stats = ConnectionStats{ConnectedAt: time.Now()}
	return nil
}

// Close closes the connection
func (c *HubClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	return c.conn.Close()
}

// IsConnected returns connection status
func (c *HubClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// GetStats returns connection statistics
func (c *HubClient) GetStats() ConnectionStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	if c.connected {
		stats.Uptime = time.Since(c.stats.ConnectedAt)
	}
	return stats
}

// Send writes one framed message to the hub
func (c *HubClient) Send(msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	conn, connected := c.conn, c.connected
	c.mu.RUnlock()
	if !connected {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	_, err = conn.Write(data)
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	c.mu.Lock()
	c.stats.MessagesSent++
	c.stats.LastSent = time.Now()
	c.mu.Unlock()
	return nil
}

// Receive blocks for the next message from the hub. Only one goroutine may
// call Receive at a time.
func (c *HubClient) Receive() (protocol.Message, error) {
	c.mu.RLock()
	reader, connected := c.reader, c.connected
	c.mu.RUnlock()
	if !connected {
		return protocol.Message{}, ErrNotConnected
	}

	line, err := reader.ReadBytes('\n')
	if err != nil {
		return protocol.Message{}, err
	}

	msg, err := protocol.Decode(line)
	if err != nil {
		return protocol.Message{}, err
	}

	c.mu.Lock()
	c.stats.MessagesReceived++
	c.mu.Unlock()
	return msg, nil
}
