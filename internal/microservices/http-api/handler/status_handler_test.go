package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"warehub/internal/inventory"
	"warehub/internal/microservices/http-api/dto"
	"warehub/internal/microservices/http-api/handler"
	"warehub/internal/microservices/http-api/router"
	"warehub/internal/microservices/tcp"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- MOCKS ---

type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) Snapshot() []inventory.ZoneState {
	args := m.Called()
	return args.Get(0).([]inventory.ZoneState)
}

func (m *MockInventory) Zone(zone string) (inventory.ZoneState, error) {
	args := m.Called(zone)
	return args.Get(0).(inventory.ZoneState), args.Error(1)
}

func (m *MockInventory) Threshold() int {
	return m.Called().Int(0)
}

type MockHub struct {
	mock.Mock
}

func (m *MockHub) ActiveWorker() (tcp.WorkerBinding, bool) {
	args := m.Called()
	return args.Get(0).(tcp.WorkerBinding), args.Bool(1)
}

func (m *MockHub) ConnectionCount() int {
	return m.Called().Int(0)
}

type stubPeer struct{}

func (stubPeer) ID() string          { return "client-42" }
func (stubPeer) RemoteAddr() string  { return "10.0.0.7:51234" }
func (stubPeer) Send(_ []byte) error { return nil }

// --- SETUP ---

func setupRouter(inv *MockInventory, hub *MockHub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return router.New(handler.NewStatusHandler(inv, hub))
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- TESTS ---

func TestStatusHandler_Health(t *testing.T) {
	inv, hub := new(MockInventory), new(MockHub)
	hub.On("ConnectionCount").Return(3).Once()

	w := get(setupRouter(inv, hub), "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Connections)
	hub.AssertExpectations(t)
}

func TestStatusHandler_ListZones(t *testing.T) {
	inv, hub := new(MockInventory), new(MockHub)
	updated := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	inv.On("Snapshot").Return([]inventory.ZoneState{
		{Zone: "A", Quantity: 2, LowStock: true, UpdatedAt: updated},
		{Zone: "B", Quantity: 0, LowStock: true},
	}).Once()
	inv.On("Threshold").Return(3).Once()

	w := get(setupRouter(inv, hub), "/zones")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.ZoneListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Threshold)
	require.Len(t, resp.Zones, 2)
	assert.Equal(t, "A", resp.Zones[0].Zone)
	require.NotNil(t, resp.Zones[0].UpdatedAt)
	assert.True(t, updated.Equal(*resp.Zones[0].UpdatedAt))
	assert.Nil(t, resp.Zones[1].UpdatedAt, "never-updated zones have no timestamp")
	inv.AssertExpectations(t)
}

func TestStatusHandler_GetZone(t *testing.T) {
	inv, hub := new(MockInventory), new(MockHub)
	r := setupRouter(inv, hub)

	t.Run("Found", func(t *testing.T) {
		inv.On("Zone", "A").Return(inventory.ZoneState{Zone: "A", Quantity: 5}, nil).Once()

		w := get(r, "/zones/A")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.ZoneResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 5, resp.Quantity)
		assert.False(t, resp.LowStock)
	})

	t.Run("Unknown zone", func(t *testing.T) {
		inv.On("Zone", "C").
			Return(inventory.ZoneState{}, fmt.Errorf("%w: %q", inventory.ErrUnknownZone, "C")).Once()

		w := get(r, "/zones/C")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "unknown zone")
	})

	inv.AssertExpectations(t)
}

func TestStatusHandler_GetWorker(t *testing.T) {
	inv, hub := new(MockInventory), new(MockHub)
	r := setupRouter(inv, hub)

	t.Run("No worker", func(t *testing.T) {
		hub.On("ActiveWorker").Return(tcp.WorkerBinding{}, false).Once()

		w := get(r, "/worker")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"registered":false}`, w.Body.String())
	})

	t.Run("Registered", func(t *testing.T) {
		since := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
		hub.On("ActiveWorker").
			Return(tcp.WorkerBinding{Identity: "terminal-1", Peer: stubPeer{}, Since: since}, true).Once()

		w := get(r, "/worker")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.WorkerResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Registered)
		assert.Equal(t, "terminal-1", resp.Identity)
		assert.Equal(t, "client-42", resp.ClientID)
		assert.Equal(t, "10.0.0.7:51234", resp.RemoteAddr)
	})

	hub.AssertExpectations(t)
}

// The real store and server satisfy the handler's interfaces
var (
	_ handler.InventoryReader = (*inventory.Store)(nil)
	_ handler.HubReader       = (*tcp.TCPServer)(nil)
)
