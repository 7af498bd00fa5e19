package handler

import (
	"errors"
	"net/http"

	"warehub/internal/inventory"
	"warehub/internal/microservices/http-api/dto"
	"warehub/internal/microservices/tcp"

	"github.com/gin-gonic/gin"
)

// InventoryReader is the read side of the inventory store
type InventoryReader interface {
	Snapshot() []inventory.ZoneState
	Zone(zone string) (inventory.ZoneState, error)
	Threshold() int
}

// HubReader exposes routing state of the running hub
type HubReader interface {
	ActiveWorker() (tcp.WorkerBinding, bool)
	ConnectionCount() int
}

// StatusHandler serves a read-only view of the hub. It never mutates state.
type StatusHandler struct {
	inv InventoryReader
	hub HubReader
}

func NewStatusHandler(inv InventoryReader, hub HubReader) *StatusHandler {
	return &StatusHandler{inv: inv, hub: hub}
}

func (h *StatusHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.GET("/zones", h.ListZones)
	r.GET("/zones/:zone", h.GetZone)
	r.GET("/worker", h.GetWorker)
}

func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:      "ok",
		Connections: h.hub.ConnectionCount(),
	})
}

func (h *StatusHandler) ListZones(c *gin.Context) {
	states := h.inv.Snapshot()
	resp := dto.ZoneListResponse{
		Threshold: h.inv.Threshold(),
		Zones:     make([]dto.ZoneResponse, 0, len(states)),
	}
	for _, s := range states {
		resp.Zones = append(resp.Zones, dto.ZoneFromState(s))
	}
	c.JSON(http.StatusOK, resp)
}

// GetZone handles GET /zones/:zone
func (h *StatusHandler) GetZone(c *gin.Context) {
	state, err := h.inv.Zone(c.Param("zone"))
	if err != nil {
		if errors.Is(err, inventory.ErrUnknownZone) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ZoneFromState(state))
}

func (h *StatusHandler) GetWorker(c *gin.Context) {
	c.JSON(http.StatusOK, dto.WorkerFromBinding(h.hub.ActiveWorker()))
}
