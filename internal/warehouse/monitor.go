package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"warehub/internal/protocol"
)

// Source is one way of counting a zone: the shelf sensor or the manual tally
type Source interface {
	Read(zone string) (int, error)
}

// Sender delivers a message to the hub
type Sender interface {
	Send(msg protocol.Message) error
}

type readingPair struct {
	sensor int
	manual int
}

// Monitor compares sensor and manual counts per zone. When they disagree it
// reports the smaller count and asks for a worker to check the zone.
type Monitor struct {
	zones  []string
	sensor Source
	manual Source
	sender Sender
	logger *slog.Logger

	mu   sync.Mutex
	last map[string]readingPair // readings already acted on
}

func NewMonitor(zones []string, sensor, manual Source, sender Sender) *Monitor {
	return &Monitor{
		zones:  append([]string(nil), zones...),
		sensor: sensor,
		manual: manual,
		sender: sender,
		logger: slog.Default(),
		last:   make(map[string]readingPair),
	}
}

// MismatchOrder is the work order text sent for a zone whose counts disagree
func MismatchOrder(zone string) string {
	return fmt.Sprintf("%s zone mismatch", zone)
}

// Poll checks every zone once. Zones whose readings did not change since the
// last successful poll are skipped. A zone that failed is retried next poll.
func (m *Monitor) Poll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for _, zone := range m.zones {
		if err := m.pollZone(zone); err != nil {
			m.logger.Error("zone_poll_failed", "zone", zone, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *Monitor) pollZone(zone string) error {
	s, err := m.sensor.Read(zone)
	if err != nil {
		return fmt.Errorf("sensor read failed: %w", err)
	}
	man, err := m.manual.Read(zone)
	if err != nil {
		return fmt.Errorf("manual read failed: %w", err)
	}

	current := readingPair{sensor: s, manual: man}
	if prev, seen := m.last[zone]; seen && prev == current {
		return nil
	}

	if err := m.reconcile(zone, current); err != nil {
		return err
	}
	m.last[zone] = current
	return nil
}

func (m *Monitor) reconcile(zone string, r readingPair) error {
	if r.sensor == r.manual {
		m.logger.Info("zone_counts_match",
			"zone", zone,
			"quantity", r.sensor,
		)
		return nil
	}

	quantity := min(r.sensor, r.manual)
	if err := ReportInventory(m.sender, zone, quantity); err != nil {
		return err
	}
	if err := m.sender.Send(protocol.NewWorkOrder(protocol.OriginWarehouse, MismatchOrder(zone))); err != nil {
		return fmt.Errorf("failed to send work order: %w", err)
	}

	m.logger.Info("zone_mismatch_reported",
		"zone", zone,
		"sensor", r.sensor,
		"manual", r.manual,
		"reported", quantity,
	)
	return nil
}

// Run polls immediately and then every interval until ctx is done
func (m *Monitor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := m.Poll(); err != nil {
			m.logger.Warn("poll_incomplete", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ReportInventory sends one sensor-node update for zone
func ReportInventory(sender Sender, zone string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("cannot report negative quantity %d for zone %q", quantity, zone)
	}
	msg := protocol.NewInventoryUpdate(protocol.KindInventoryFromSensor, protocol.OriginWarehouse, zone, quantity)
	if err := sender.Send(msg); err != nil {
		return fmt.Errorf("failed to send inventory update: %w", err)
	}
	return nil
}
