package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	messages := []Message{
		NewInventoryUpdate(KindInventoryFromSensor, OriginWarehouse, "A", 2),
		NewInventoryUpdate(KindInventoryFromWorker, OriginWorker, "B", 0),
		{Kind: KindInventoryFromSensor, Origin: OriginWarehouse, Payload: "  A : 7 "},
		NewWorkOrder(OriginWarehouse, "A zone mismatch"),
		NewWorkOrder(OriginCentral, ""),
		NewWorkerRegistration("terminal-1"),
		{Kind: KindWorkOrder, Origin: OriginCentral, Payload: "재고 불일치 \"quoted\"\n"},
	}

	for _, m := range messages {
		data, err := Encode(m)
		require.NoError(t, err)
		assert.True(t, bytes.HasSuffix(data, []byte("\n")), "frames are newline terminated")
		assert.Equal(t, 1, bytes.Count(data, []byte("\n")), "payload newlines must be escaped")

		got, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestEncode_RejectsUnknownEnums(t *testing.T) {
	_, err := Encode(Message{Kind: "PING", Origin: OriginCentral})
	assert.Error(t, err)

	_, err = Encode(Message{Kind: KindWorkOrder, Origin: "FROM_MARS"})
	assert.Error(t, err)
}

func TestEncode_RejectsInvalidUTF8(t *testing.T) {
	_, err := Encode(NewWorkOrder(OriginCentral, "zone \xff check"))
	assert.ErrorContains(t, err, "not valid UTF-8")

	_, err = Encode(NewInventoryUpdate(KindInventoryFromSensor, OriginWarehouse, "\xfe", 1))
	assert.Error(t, err)

	data, err := Encode(NewWorkOrder(OriginCentral, "zone ✓ check"))
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "zone ✓ check", got.Payload)
}

func TestDecode_TruncatedInputNeverPanics(t *testing.T) {
	data, err := Encode(NewInventoryUpdate(KindInventoryFromSensor, OriginWarehouse, "A", 2))
	require.NoError(t, err)

	// every strict prefix of a valid frame must fail cleanly
	for i := 0; i < len(data)-1; i++ {
		assert.NotPanics(t, func() {
			_, err := Decode(data[:i])
			assert.ErrorIs(t, err, ErrMalformedMessage, "prefix length %d", i)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	cases := map[string]string{
		"garbage":          "\x80\x03cbuiltins",
		"not an object":    `[1,2,3]`,
		"unknown kind":     `{"kind":"PING","origin":"FROM_WORKER","payload":""}`,
		"unknown origin":   `{"kind":"WORK_ORDER","origin":"FROM_MARS","payload":""}`,
		"missing kind":     `{"origin":"FROM_WORKER","payload":"x"}`,
		"two messages":     `{"kind":"WORK_ORDER","origin":"FROM_CENTRAL","payload":""}{"kind":"WORK_ORDER"}`,
		"whitespace only":  " \n\t",
		"wrong field type": `{"kind":"WORK_ORDER","origin":"FROM_CENTRAL","payload":5}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(input))
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}

func TestParseInventoryPayload(t *testing.T) {
	r, err := ParseInventoryPayload("  A :  12 ")
	require.NoError(t, err)
	assert.Equal(t, Reading{Zone: "A", Quantity: 12}, r)

	for _, bad := range []string{"A", "A:", ":3", "A:three", "A:1.5", "A:-1", ""} {
		_, err := ParseInventoryPayload(bad)
		assert.ErrorIs(t, err, ErrMalformedPayload, "payload %q", bad)
	}
}

func TestMessage_ReadingPrefersStructuredField(t *testing.T) {
	m := Message{
		Kind:      KindInventoryFromSensor,
		Origin:    OriginWarehouse,
		Payload:   "B:9",
		Inventory: &Reading{Zone: " A ", Quantity: 4},
	}
	r, err := m.Reading()
	require.NoError(t, err)
	assert.Equal(t, Reading{Zone: "A", Quantity: 4}, r)

	m.Inventory = &Reading{Zone: "A", Quantity: -2}
	_, err = m.Reading()
	assert.ErrorIs(t, err, ErrMalformedPayload)

	m.Inventory = nil
	r, err = m.Reading()
	require.NoError(t, err)
	assert.Equal(t, Reading{Zone: "B", Quantity: 9}, r)
}

func TestKind_IsInventoryUpdate(t *testing.T) {
	assert.True(t, KindInventoryFromSensor.IsInventoryUpdate())
	assert.True(t, KindInventoryFromWorker.IsInventoryUpdate())
	assert.False(t, KindWorkOrder.IsInventoryUpdate())
}
