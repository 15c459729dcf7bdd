package keyboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload, err := EncodeCallback(CallbackBuy, "auto_clicker")
	require.NoError(t, err)
	assert.Equal(t, "buy:auto_clicker", payload)

	unique, data, err := DecodeCallback(payload)
	require.NoError(t, err)
	assert.Equal(t, CallbackBuy, unique)
	assert.Equal(t, "auto_clicker", data)
}

func TestEncodeWithoutPayload(t *testing.T) {
	payload, err := EncodeCallback(CallbackTap, "")
	require.NoError(t, err)
	assert.Equal(t, CallbackTap, payload)

	unique, data, err := DecodeCallback(payload)
	require.NoError(t, err)
	assert.Equal(t, CallbackTap, unique)
	assert.Empty(t, data)
}

func TestEncodeRejectsOversizedData(t *testing.T) {
	_, err := EncodeCallback(CallbackBuy, strings.Repeat("x", CallbackDataLimitBytes))
	assert.Error(t, err)
}

func TestDecodeEmpty(t *testing.T) {
	_, _, err := DecodeCallback("")
	assert.Error(t, err)
}
