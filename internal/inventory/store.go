package inventory

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"warehub/internal/hardware"
)

// DefaultLowStockThreshold: quantities strictly below it are low stock
const DefaultLowStockThreshold = 3

var (
	ErrUnknownZone      = errors.New("unknown zone")
	ErrNegativeQuantity = errors.New("negative quantity")
)

// ZoneState is a point-in-time view of one zone
type ZoneState struct {
	Zone      string    `json:"zone"`
	Quantity  int       `json:"quantity"`
	LowStock  bool      `json:"low_stock"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SnapshotMirror receives every accepted update. Publish must not block.
type SnapshotMirror interface {
	Publish(state ZoneState)
}

type zoneEntry struct {
	quantity  int
	updatedAt time.Time
}

// Store owns the zone -> quantity map. The set of zones is fixed at construction.
type Store struct {
	mu        sync.RWMutex
	zones     []string // configured order, for stable snapshots
	entries   map[string]*zoneEntry
	threshold int
	signal    hardware.Signal
	mirror    SnapshotMirror
	logger    *slog.Logger
}

// NewStore creates a store with every zone at quantity 0. The signal is not
// driven until the first update for a zone arrives.
func NewStore(zones []string, threshold int, signal hardware.Signal) *Store {
	s := &Store{
		zones:     make([]string, 0, len(zones)),
		entries:   make(map[string]*zoneEntry, len(zones)),
		threshold: threshold,
		signal:    signal,
		logger:    slog.Default(),
	}
	for _, z := range zones {
		if _, dup := s.entries[z]; dup {
			continue
		}
		s.zones = append(s.zones, z)
		s.entries[z] = &zoneEntry{}
	}
	return s
}

// SetMirror attaches a snapshot mirror; nil detaches it
func (s *Store) SetMirror(m SnapshotMirror) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirror = m
}

// Update replaces the quantity of zone and re-evaluates its low-stock signal.
// It returns the evaluated signal.
func (s *Store) Update(zone string, quantity int) (bool, error) {
	if quantity < 0 {
		return false, fmt.Errorf("%w: %d for zone %q", ErrNegativeQuantity, quantity, zone)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[zone]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}
	entry.quantity = quantity
	entry.updatedAt = time.Now()
	low := quantity < s.threshold

	// signal and mirror under the lock so their order matches the store's
	if s.signal != nil {
		s.signal.SetZoneLowStock(zone, low)
	}
	if s.mirror != nil {
		s.mirror.Publish(ZoneState{Zone: zone, Quantity: quantity, LowStock: low, UpdatedAt: entry.updatedAt})
	}

	s.logger.Info("zone_inventory_updated",
		"zone", zone,
		"quantity", quantity,
		"low_stock", low,
	)
	return low, nil
}

// Get returns the current quantity of zone
func (s *Store) Get(zone string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[zone]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}
	return entry.quantity, nil
}

// IsLow evaluates the threshold against the current quantity of zone
func (s *Store) IsLow(zone string) (bool, error) {
	q, err := s.Get(zone)
	if err != nil {
		return false, err
	}
	return q < s.threshold, nil
}

// Zone returns the full state of one zone
func (s *Store) Zone(zone string) (ZoneState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[zone]
	if !ok {
		return ZoneState{}, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}
	return s.stateLocked(zone, entry), nil
}

// Snapshot returns every zone in configured order
func (s *Store) Snapshot() []ZoneState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ZoneState, 0, len(s.zones))
	for _, z := range s.zones {
		out = append(out, s.stateLocked(z, s.entries[z]))
	}
	return out
}

func (s *Store) stateLocked(zone string, e *zoneEntry) ZoneState {
	return ZoneState{
		Zone:      zone,
		Quantity:  e.quantity,
		LowStock:  e.quantity < s.threshold,
		UpdatedAt: e.updatedAt,
	}
}

// Zones lists the configured zones
func (s *Store) Zones() []string {
	return append([]string(nil), s.zones...)
}

func (s *Store) Threshold() int {
	return s.threshold
}
