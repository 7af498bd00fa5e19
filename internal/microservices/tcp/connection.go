package tcp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"warehub/internal/inventory"
	"warehub/internal/protocol"
)

// ClientConnection is one accepted node connection. Its Listen loop runs in
// the goroutine that owns it; Send may be called from other handlers that
// forward work orders here.
type ClientConnection struct {
	id      string
	conn    net.Conn
	server  *TCPServer
	limiter *rate.Limiter
	logger  *slog.Logger

	writeMu sync.Mutex
	writer  *bufio.Writer

	// set only by the owning goroutine
	workerIdentity string
}

func NewClientConnection(conn net.Conn, server *TCPServer) *ClientConnection {
	id := uuid.NewString()
	limit := rate.Inf
	if server.opts.RateLimit > 0 {
		limit = rate.Limit(server.opts.RateLimit)
	}
	return &ClientConnection{
		id:      id,
		conn:    conn,
		server:  server,
		limiter: rate.NewLimiter(limit, server.opts.RateBurst),
		logger:  server.logger.With("client_id", id),
		writer:  bufio.NewWriter(conn),
	}
}

func (c *ClientConnection) ID() string { return c.id }

func (c *ClientConnection) RemoteAddr() string { return c.conn.RemoteAddr().String() }

// Listen reads frames until the peer disconnects, a frame fails to decode, or
// dispatch panics. Message-level failures are logged and the loop continues.
func (c *ClientConnection) Listen() {
	defer c.conn.Close()
	reader := bufio.NewReaderSize(c.conn, c.server.opts.ReadBufferSize)

	for {
		c.armDeadline()

		frame, err := reader.ReadSlice('\n')
		if err != nil {
			if errors.Is(err, bufio.ErrBufferFull) {
				c.logger.Warn("malformed_message",
					"error", "frame exceeds read buffer",
					"max_size", c.server.opts.ReadBufferSize,
				)
				return
			}
			if errors.Is(err, io.EOF) {
				// a last frame without its newline still counts
				if len(strings.TrimSpace(string(frame))) > 0 {
					c.handleFrame(frame)
				}
				c.logger.Info("client_disconnected")
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				c.logger.Warn("client_read_timeout",
					"idle_timeout", c.server.opts.IdleTimeout.String(),
				)
				return
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			c.logger.Error("client_read_error", "error", err)
			return
		}

		if !c.handleFrame(frame) {
			return
		}
	}
}

func (c *ClientConnection) armDeadline() {
	if c.server.opts.IdleTimeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.server.opts.IdleTimeout))
	}
}

// handleFrame returns false when the connection must be closed
func (c *ClientConnection) handleFrame(frame []byte) bool {
	msg, err := protocol.Decode(frame)
	if err != nil {
		c.logger.Warn("malformed_message",
			"error", err.Error(),
			"size", len(frame),
		)
		return false
	}

	if !c.limiter.Allow() {
		c.logger.Warn("rate_limit_exceeded",
			"kind", msg.Kind,
		)
		return true
	}

	return c.dispatch(msg)
}

func (c *ClientConnection) dispatch(msg protocol.Message) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("dispatch_panic",
				"kind", msg.Kind,
				"origin", msg.Origin,
				"panic", fmt.Sprint(r),
			)
			ok = false
		}
	}()

	// a worker message only declares the worker, whatever its kind
	if msg.Origin == protocol.OriginWorker {
		c.registerWorker(msg)
		return true
	}

	switch {
	case msg.Kind.IsInventoryUpdate():
		c.handleInventoryUpdate(msg)
	case msg.Kind == protocol.KindWorkOrder:
		c.handleWorkOrder(msg)
	default:
		c.logger.Warn("unrecognized_message",
			"kind", msg.Kind,
			"origin", msg.Origin,
			"payload", msg.Payload,
		)
	}
	return true
}

func (c *ClientConnection) registerWorker(msg protocol.Message) {
	identity := c.workerIdentity
	if msg.Kind == protocol.KindWorkOrder {
		if token := strings.TrimSpace(msg.Payload); token != "" {
			identity = token
		}
	}
	if identity == "" {
		identity = c.id
	}
	c.workerIdentity = identity
	c.server.Workers.Set(identity, c)
}

func (c *ClientConnection) handleInventoryUpdate(msg protocol.Message) {
	reading, err := msg.Reading()
	if err != nil {
		c.logger.Warn("inventory_payload_rejected",
			"payload", msg.Payload,
			"error", err.Error(),
		)
		return
	}

	if _, err := c.server.Inventory.Update(reading.Zone, reading.Quantity); err != nil {
		if errors.Is(err, inventory.ErrUnknownZone) {
			c.logger.Warn("unknown_zone",
				"zone", reading.Zone,
				"quantity", reading.Quantity,
			)
			return
		}
		c.logger.Error("inventory_update_failed",
			"zone", reading.Zone,
			"error", err.Error(),
		)
	}
}

func (c *ClientConnection) handleWorkOrder(msg protocol.Message) {
	target, _ := c.server.Workers.Get()
	err := Forward(target, msg)

	var sendErr *SendError
	switch {
	case err == nil:
		c.logger.Info("work_order_forwarded",
			"worker_client_id", target.ID(),
			"payload", msg.Payload,
		)
	case errors.Is(err, ErrNoTarget):
		c.logger.Warn("work_order_dropped",
			"reason", "no active worker",
			"payload", msg.Payload,
		)
	case errors.As(err, &sendErr):
		c.logger.Error("work_order_send_failed",
			"worker_client_id", sendErr.PeerID,
			"error", sendErr.Err.Error(),
		)
		// the worker's socket is unusable, free the slot for the next one
		c.server.Workers.Release(target)
	default:
		c.logger.Error("work_order_forward_failed", "error", err.Error())
	}
}

// Send writes one encoded frame. Safe for concurrent use.
func (c *ClientConnection) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.server.opts.IdleTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.server.opts.IdleTimeout))
	}
	if _, err := c.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := c.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}

func (c *ClientConnection) Close() {
	c.conn.Close()
}
