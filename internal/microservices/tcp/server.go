package tcp

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"warehub/internal/inventory"
)

// Options tune connection handling. The zero IdleTimeout and RateLimit mean
// "no read deadline" and "unlimited".
type Options struct {
	ReadBufferSize          int
	IdleTimeout             time.Duration
	RateLimit               float64 // messages per second per connection
	RateBurst               int
	EvictWorkerOnDisconnect bool
}

func DefaultOptions() Options {
	return Options{
		ReadBufferSize:          1024,
		RateBurst:               20,
		EvictWorkerOnDisconnect: true,
	}
}

// TCPServer is the hub: it accepts node connections and routes their messages
type TCPServer struct {
	Addr      string
	Manager   *ConnectionManager // every live connection
	Workers   *WorkerRegistry    // the active worker slot
	Inventory *inventory.Store

	opts     Options
	logger   *slog.Logger
	listener net.Listener
	mu       sync.Mutex // guards listener and stopped
	stopped  bool
	quitChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup // one per connection handler
}

func NewServer(addr string, store *inventory.Store, opts Options) *TCPServer {
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = DefaultOptions().ReadBufferSize
	}
	return &TCPServer{
		Addr:      addr,
		Manager:   NewConnectionManager(),
		Workers:   NewWorkerRegistry(),
		Inventory: store,
		opts:      opts,
		logger:    slog.Default(),
		quitChan:  make(chan struct{}),
	}
}

// Listen binds the port. Failing here is the one error that should end the process.
func (s *TCPServer) Listen() error {
	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to start TCP server, error: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("tcp_server_listening", "addr", listener.Addr().String())
	return nil
}

// ListenAddr returns the bound address, useful when Addr asked for port 0
func (s *TCPServer) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve runs the accept loop until Stop. Accept errors are logged and skipped.
func (s *TCPServer) Serve() error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return errors.New("tcp server is not listening")
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.quitChan:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("listener closed unexpectedly: %w", err)
			}
			s.logger.Error("accept_failed", "error", err)
			continue
		}

		if !s.trackHandler() {
			conn.Close()
			return nil
		}
		go func(conn net.Conn) {
			defer s.wg.Done()
			s.handleConnection(conn)
		}(conn)
	}
}

// trackHandler counts a new handler in the wait group unless Stop has begun.
// Both sides hold mu so no Add can follow Stop's Wait.
func (s *TCPServer) trackHandler() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.wg.Add(1)
	return true
}

// Start binds and serves
func (s *TCPServer) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// handle the lifecycle of a single client connection
func (s *TCPServer) handleConnection(conn net.Conn) {
	client := NewClientConnection(conn, s)

	remote := conn.RemoteAddr().String()
	loopback := false
	if tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		loopback = tcpAddr.IP.IsLoopback()
	}
	client.logger.Info("client_connected",
		"remote_addr", remote,
		"loopback", loopback,
	)

	s.Manager.AddConnection(client)
	select {
	case <-s.quitChan:
		// accepted while stopping, CloseAllConnections may already have run
		client.Close()
	default:
	}
	client.Listen()
	s.Manager.RemoveConnection(client)

	if s.opts.EvictWorkerOnDisconnect {
		s.Workers.Release(client)
	}
}

// Stop closes the listener and every connection, then waits for handlers to exit
func (s *TCPServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.quitChan)
		s.mu.Lock()
		s.stopped = true
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.Unlock()
		s.Manager.CloseAllConnections()
		s.wg.Wait()
		s.logger.Info("tcp_server_stopped")
	})
}

// ConnectionCount returns the number of live connections
func (s *TCPServer) ConnectionCount() int {
	return s.Manager.Count()
}

// ActiveWorker returns the current worker binding, for status reporting
func (s *TCPServer) ActiveWorker() (WorkerBinding, bool) {
	return s.Workers.Active()
}
