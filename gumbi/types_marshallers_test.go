package gumbi

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypesMarshallers(t *testing.T) {
	b, err := json.Marshal(Faulted)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("\"%s\"", Faulted), string(b))

	b, err = json.Marshal(ModeGPIO)
	require.NoError(t, err)
	assert.Equal(t, `"GPIO"`, string(b))

	b, err = json.Marshal(Snapshot{State: Idle, Mode: ModePing})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"State":"Idle"`)
	assert.Contains(t, string(b), `"Mode":"Ping"`)
}

func TestUnmarshallers(t *testing.T) {
	var s State
	require.NoError(t, json.Unmarshal([]byte(`"AwaitingAck"`), &s))
	assert.Equal(t, AwaitingAck, s)
	require.NoError(t, s.UnmarshalText([]byte("1")))
	assert.Equal(t, Idle, s)
	assert.Error(t, s.UnmarshalText([]byte("Sleeping")))
	assert.Error(t, json.Unmarshal([]byte(`3`), &s))

	var m Mode
	require.NoError(t, json.Unmarshal([]byte(`"SPIEEPROM"`), &m))
	assert.Equal(t, ModeSPIEEPROM, m)
	require.NoError(t, m.UnmarshalText([]byte("9")))
	assert.Equal(t, ModeID, m)
	assert.Error(t, m.UnmarshalText([]byte("10")))
	assert.Error(t, m.UnmarshalText([]byte("265")))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "Nop", ModeNop.String())
	assert.Equal(t, "Mode(42)", Mode(42).String())
	assert.Equal(t, "PinLow", OpPinLow.String())
	assert.Equal(t, "Op(9)", Op(9).String())
	assert.Equal(t, "State(-1)", State(-1).String())
}
