package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const mirrorQueueSize = 256

// RedisMirror copies zone snapshots into Redis hashes so dashboards can read
// them without talking to the hub. It is write-only: the hub never loads state
// back from Redis, a restart always starts every zone at 0.
//
// Publish only enqueues; a single writer goroutine (Run) drains the queue so
// Redis sees updates in the order the store accepted them.
type RedisMirror struct {
	client *redis.Client
	ttl    time.Duration
	queue  chan ZoneState
	logger *slog.Logger
	closed atomic.Bool
}

// NewRedisMirror connects and pings Redis
func NewRedisMirror(addr, password string, db int, ttl time.Duration) (*RedisMirror, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisMirror{
		client: rdb,
		ttl:    ttl,
		queue:  make(chan ZoneState, mirrorQueueSize),
		logger: slog.Default(),
	}, nil
}

func zoneKey(zone string) string {
	return fmt.Sprintf("inventory:zone:%s", zone)
}

// Publish queues a snapshot. A full queue drops it: the next update for the
// zone carries the newer value anyway.
func (m *RedisMirror) Publish(state ZoneState) {
	if m == nil || m.client == nil || m.closed.Load() {
		return
	}
	select {
	case m.queue <- state:
	default:
		m.logger.Warn("snapshot_queue_full",
			"zone", state.Zone,
			"queue_depth", len(m.queue),
		)
	}
}

// Run writes queued snapshots until ctx is cancelled, then flushes what is left
func (m *RedisMirror) Run(ctx context.Context) {
	if m == nil || m.client == nil {
		return
	}
	m.logger.Info("snapshot_writer_started", "queue_size", cap(m.queue))

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("snapshot_writer_shutting_down", "remaining", len(m.queue))
			for {
				select {
				case state := <-m.queue:
					m.write(state)
				default:
					return
				}
			}
		case state := <-m.queue:
			m.write(state)
		}
	}
}

func (m *RedisMirror) write(state ZoneState) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := m.Save(ctx, state); err != nil {
		m.logger.Error("snapshot_write_failed",
			"zone", state.Zone,
			"error", err,
		)
	}
}

// Save writes one snapshot synchronously
func (m *RedisMirror) Save(ctx context.Context, state ZoneState) error {
	if m == nil || m.client == nil {
		return nil
	}
	key := zoneKey(state.Zone)
	fields := map[string]any{
		"zone":       state.Zone,
		"quantity":   state.Quantity,
		"low_stock":  strconv.FormatBool(state.LowStock),
		"updated_at": state.UpdatedAt.Format(time.RFC3339Nano),
	}

	pipe := m.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	if m.ttl > 0 {
		pipe.Expire(ctx, key, m.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mirror zone %q: %w", state.Zone, err)
	}
	return nil
}

// Load reads a mirrored snapshot back, nil when the zone was never mirrored
func (m *RedisMirror) Load(ctx context.Context, zone string) (*ZoneState, error) {
	if m == nil || m.client == nil {
		return nil, nil
	}
	fields, err := m.client.HGetAll(ctx, zoneKey(zone)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	state := &ZoneState{Zone: fields["zone"]}
	if state.Quantity, err = strconv.Atoi(fields["quantity"]); err != nil {
		return nil, fmt.Errorf("invalid quantity in redis for zone %q: %w", zone, err)
	}
	state.LowStock, _ = strconv.ParseBool(fields["low_stock"])
	state.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields["updated_at"])
	return state, nil
}

// Close stops accepting snapshots and closes the client. Call it after Run returned.
func (m *RedisMirror) Close() error {
	if m == nil || m.client == nil {
		return nil
	}
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	return m.client.Close()
}
