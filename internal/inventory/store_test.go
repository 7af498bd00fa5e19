package inventory

import (
	"fmt"
	"sync"
	"testing"

	"warehub/internal/hardware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureMirror struct {
	mu     sync.Mutex
	states []ZoneState
}

func (c *captureMirror) Publish(s ZoneState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = append(c.states, s)
}

func newTestStore() (*Store, *hardware.Recorder) {
	rec := hardware.NewRecorder()
	return NewStore([]string{"A", "B"}, DefaultLowStockThreshold, rec), rec
}

func TestStore_StartsAtZero(t *testing.T) {
	store, rec := newTestStore()

	for _, z := range []string{"A", "B"} {
		q, err := store.Get(z)
		require.NoError(t, err)
		assert.Equal(t, 0, q)

		_, set := rec.LowStock(z)
		assert.False(t, set, "signal is not driven before the first update")
	}
}

func TestStore_UpdateDrivesLowStockSignal(t *testing.T) {
	store, rec := newTestStore()

	low, err := store.Update("A", 2)
	require.NoError(t, err)
	assert.True(t, low)

	q, _ := store.Get("A")
	assert.Equal(t, 2, q)
	led, _ := rec.LowStock("A")
	assert.True(t, led)

	low, err = store.Update("A", 5)
	require.NoError(t, err)
	assert.False(t, low)
	led, _ = rec.LowStock("A")
	assert.False(t, led)

	// threshold is exclusive
	low, _ = store.Update("A", 3)
	assert.False(t, low)
	low, _ = store.Update("A", 0)
	assert.True(t, low)
}

func TestStore_IsLow(t *testing.T) {
	store, _ := newTestStore()

	low, err := store.IsLow("A")
	require.NoError(t, err)
	assert.True(t, low, "an empty zone is below the threshold")

	_, err = store.Update("A", DefaultLowStockThreshold)
	require.NoError(t, err)
	low, err = store.IsLow("A")
	require.NoError(t, err)
	assert.False(t, low, "the threshold itself is not low")

	_, err = store.IsLow("Z")
	assert.ErrorIs(t, err, ErrUnknownZone)
}

func TestStore_UnknownZoneLeavesStateUnchanged(t *testing.T) {
	store, rec := newTestStore()
	_, err := store.Update("A", 7)
	require.NoError(t, err)

	_, err = store.Update("C", 10)
	assert.ErrorIs(t, err, ErrUnknownZone)

	a, _ := store.Get("A")
	b, _ := store.Get("B")
	assert.Equal(t, 7, a)
	assert.Equal(t, 0, b)

	_, set := rec.LowStock("C")
	assert.False(t, set)

	_, err = store.Get("C")
	assert.ErrorIs(t, err, ErrUnknownZone)
}

func TestStore_RejectsNegativeQuantity(t *testing.T) {
	store, _ := newTestStore()
	_, err := store.Update("A", -1)
	assert.ErrorIs(t, err, ErrNegativeQuantity)
}

func TestStore_SnapshotOrderAndMirror(t *testing.T) {
	rec := hardware.NewRecorder()
	store := NewStore([]string{"B", "A", "B"}, 3, rec)
	mirror := &captureMirror{}
	store.SetMirror(mirror)

	store.Update("A", 1)
	store.Update("B", 9)

	snap := store.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "B", snap[0].Zone)
	assert.Equal(t, 9, snap[0].Quantity)
	assert.False(t, snap[0].LowStock)
	assert.Equal(t, "A", snap[1].Zone)
	assert.True(t, snap[1].LowStock)

	require.Len(t, mirror.states, 2)
	assert.Equal(t, "A", mirror.states[0].Zone)
	assert.Equal(t, "B", mirror.states[1].Zone)

	zs, err := store.Zone("A")
	require.NoError(t, err)
	assert.Equal(t, 1, zs.Quantity)
	assert.False(t, zs.UpdatedAt.IsZero())

	assert.Equal(t, []string{"B", "A"}, store.Zones())
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	store, rec := newTestStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			zone := []string{"A", "B"}[i%2]
			store.Update(zone, i)
			store.Get(zone)
			store.Snapshot()
		}(i)
	}
	wg.Wait()

	// whichever write landed last, the signal agrees with the stored value
	for _, z := range []string{"A", "B"} {
		q, _ := store.Get(z)
		led, _ := rec.LowStock(z)
		assert.Equal(t, q < 3, led, fmt.Sprintf("zone %s quantity %d", z, q))
	}
}
