package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"warehub/internal/protocol"
)

// DefaultToken identifies a worker terminal to the hub
const DefaultToken = "worker_management"

// Link is a message connection to the hub
type Link interface {
	Send(msg protocol.Message) error
	Receive() (protocol.Message, error)
	Close() error
}

// Terminal registers with the hub as the active worker and queues every work
// order it receives on the roster
type Terminal struct {
	link   Link
	token  string
	roster *Roster
	logger *slog.Logger
}

func NewTerminal(link Link, token string, roster *Roster) *Terminal {
	if token == "" {
		token = DefaultToken
	}
	return &Terminal{
		link:   link,
		token:  token,
		roster: roster,
		logger: slog.Default().With("token", token),
	}
}

func (t *Terminal) Register() error {
	if err := t.link.Send(protocol.NewWorkerRegistration(t.token)); err != nil {
		return fmt.Errorf("failed to register worker terminal: %w", err)
	}
	t.logger.Info("worker_terminal_registered")
	return nil
}

// Run registers and then receives until the link ends or ctx is done.
// A clean close by the hub returns nil.
func (t *Terminal) Run(ctx context.Context) error {
	if err := t.Register(); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() { _ = t.link.Close() })
	defer stop()

	for {
		msg, err := t.link.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				t.logger.Info("hub_closed_connection")
				return nil
			}
			return fmt.Errorf("receive failed: %w", err)
		}
		t.handle(msg)
	}
}

func (t *Terminal) handle(msg protocol.Message) {
	if msg.Kind != protocol.KindWorkOrder {
		t.logger.Warn("unexpected_message", "kind", msg.Kind, "origin", msg.Origin)
		return
	}
	if _, err := t.roster.Assign(msg.Payload); err != nil {
		t.logger.Error("assign_failed", "task", msg.Payload, "error", err)
	}
}
