package tcp

import (
	"errors"
	"fmt"

	"warehub/internal/protocol"
)

// ErrNoTarget is returned when a work order arrives and no worker is registered
var ErrNoTarget = errors.New("no active worker connection")

// SendError wraps a transport failure while delivering to a worker
type SendError struct {
	PeerID string
	Err    error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send to %s failed: %v", e.PeerID, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// Forward hands msg to target's transport. Success means the bytes were
// written, not that the worker processed them. Nothing is queued or retried.
func Forward(target Peer, msg protocol.Message) error {
	if target == nil {
		return ErrNoTarget
	}
	data, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("failed to encode work order: %w", err)
	}
	if err := target.Send(data); err != nil {
		return &SendError{PeerID: target.ID(), Err: err}
	}
	return nil
}
