package dto

import (
	"time"

	"warehub/internal/inventory"
	"warehub/internal/microservices/tcp"
)

type ZoneResponse struct {
	Zone      string     `json:"zone"`
	Quantity  int        `json:"quantity"`
	LowStock  bool       `json:"low_stock"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"` // nil until the first update
}

type ZoneListResponse struct {
	Threshold int            `json:"threshold"`
	Zones     []ZoneResponse `json:"zones"`
}

type WorkerResponse struct {
	Registered bool       `json:"registered"`
	Identity   string     `json:"identity,omitempty"`
	ClientID   string     `json:"client_id,omitempty"`
	RemoteAddr string     `json:"remote_addr,omitempty"`
	Since      *time.Time `json:"since,omitempty"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

func ZoneFromState(s inventory.ZoneState) ZoneResponse {
	resp := ZoneResponse{Zone: s.Zone, Quantity: s.Quantity, LowStock: s.LowStock}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}

func WorkerFromBinding(b tcp.WorkerBinding, ok bool) WorkerResponse {
	if !ok {
		return WorkerResponse{Registered: false}
	}
	since := b.Since
	return WorkerResponse{
		Registered: true,
		Identity:   b.Identity,
		ClientID:   b.Peer.ID(),
		RemoteAddr: b.Peer.RemoteAddr(),
		Since:      &since,
	}
}
