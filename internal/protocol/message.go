package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind says what a message asks the hub to do
type Kind string

const (
	KindWorkOrder           Kind = "WORK_ORDER"
	KindInventoryFromSensor Kind = "INVENTORY_UPDATE_FROM_SENSOR_NODE"
	KindInventoryFromWorker Kind = "INVENTORY_UPDATE_FROM_WORKER_NODE"
)

// Origin declares the role of the sending node
type Origin string

const (
	OriginWarehouse Origin = "FROM_WAREHOUSE"
	OriginWorker    Origin = "FROM_WORKER"
	OriginCentral   Origin = "FROM_CENTRAL"
)

var (
	// ErrMalformedMessage means the bytes are not a message at all
	ErrMalformedMessage = errors.New("malformed message")
	// ErrMalformedPayload means the message decoded but its inventory reading did not
	ErrMalformedPayload = errors.New("malformed inventory payload")
)

// Reading is the structured form of an inventory update
type Reading struct {
	Zone     string `json:"zone"`
	Quantity int    `json:"quantity"`
}

// Message is the unit exchanged between nodes and the hub.
// Inventory is optional; older peers only send the "<zone>:<quantity>" payload.
type Message struct {
	Kind      Kind     `json:"kind"`
	Origin    Origin   `json:"origin"`
	Payload   string   `json:"payload"`
	Inventory *Reading `json:"inventory,omitempty"`
}

func (k Kind) Valid() bool {
	switch k {
	case KindWorkOrder, KindInventoryFromSensor, KindInventoryFromWorker:
		return true
	}
	return false
}

// IsInventoryUpdate reports whether the kind carries a zone reading
func (k Kind) IsInventoryUpdate() bool {
	return k == KindInventoryFromSensor || k == KindInventoryFromWorker
}

func (o Origin) Valid() bool {
	switch o {
	case OriginWarehouse, OriginWorker, OriginCentral:
		return true
	}
	return false
}

// Encode serializes a message as one newline-terminated JSON object
func Encode(m Message) ([]byte, error) {
	if !m.Kind.Valid() {
		return nil, fmt.Errorf("cannot encode message: unknown kind %q", m.Kind)
	}
	if !m.Origin.Valid() {
		return nil, fmt.Errorf("cannot encode message: unknown origin %q", m.Origin)
	}
	// JSON would silently replace invalid bytes with U+FFFD
	if !utf8.ValidString(m.Payload) {
		return nil, fmt.Errorf("cannot encode message: payload is not valid UTF-8")
	}
	if m.Inventory != nil && !utf8.ValidString(m.Inventory.Zone) {
		return nil, fmt.Errorf("cannot encode message: zone is not valid UTF-8")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("cannot encode message: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a single frame. Every failure, including empty or truncated
// input, is reported as ErrMalformedMessage.
func Decode(data []byte) (Message, error) {
	var m Message
	frame := strings.TrimSpace(string(data))
	if frame == "" {
		return m, fmt.Errorf("%w: empty frame", ErrMalformedMessage)
	}
	if err := json.Unmarshal([]byte(frame), &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if !m.Kind.Valid() {
		return Message{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedMessage, m.Kind)
	}
	if !m.Origin.Valid() {
		return Message{}, fmt.Errorf("%w: unknown origin %q", ErrMalformedMessage, m.Origin)
	}
	return m, nil
}

// Reading returns the zone reading carried by an inventory update,
// preferring the structured field over the text payload.
func (m Message) Reading() (Reading, error) {
	if m.Inventory == nil {
		return ParseInventoryPayload(m.Payload)
	}
	r := Reading{Zone: strings.TrimSpace(m.Inventory.Zone), Quantity: m.Inventory.Quantity}
	if r.Zone == "" {
		return Reading{}, fmt.Errorf("%w: empty zone", ErrMalformedPayload)
	}
	if r.Quantity < 0 {
		return Reading{}, fmt.Errorf("%w: negative quantity %d", ErrMalformedPayload, r.Quantity)
	}
	return r, nil
}

// ParseInventoryPayload parses "<zone>:<quantity>", ignoring whitespace around either part
func ParseInventoryPayload(payload string) (Reading, error) {
	zone, qty, ok := strings.Cut(payload, ":")
	if !ok {
		return Reading{}, fmt.Errorf("%w: %q has no ':' separator", ErrMalformedPayload, payload)
	}
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return Reading{}, fmt.Errorf("%w: %q has an empty zone", ErrMalformedPayload, payload)
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(qty))
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %q quantity is not an integer", ErrMalformedPayload, payload)
	}
	if quantity < 0 {
		return Reading{}, fmt.Errorf("%w: negative quantity %d", ErrMalformedPayload, quantity)
	}
	return Reading{Zone: zone, Quantity: quantity}, nil
}

// FormatInventoryPayload is the inverse of ParseInventoryPayload
func FormatInventoryPayload(zone string, quantity int) string {
	return fmt.Sprintf("%s:%d", zone, quantity)
}

// NewInventoryUpdate builds an update that carries the reading both ways,
// so hubs that only read the payload still understand it.
func NewInventoryUpdate(kind Kind, origin Origin, zone string, quantity int) Message {
	return Message{
		Kind:      kind,
		Origin:    origin,
		Payload:   FormatInventoryPayload(zone, quantity),
		Inventory: &Reading{Zone: zone, Quantity: quantity},
	}
}

// NewWorkOrder builds a free-text work order
func NewWorkOrder(origin Origin, description string) Message {
	return Message{Kind: KindWorkOrder, Origin: origin, Payload: description}
}

// NewWorkerRegistration is the first message a worker terminal sends; the
// payload is the terminal's identity token.
func NewWorkerRegistration(token string) Message {
	return Message{Kind: KindWorkOrder, Origin: OriginWorker, Payload: token}
}
