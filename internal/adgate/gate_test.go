package adgate

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/megaclicker/clicker-bot/internal/errors"
	"github.com/megaclicker/clicker-bot/pkg/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNoopAlwaysSucceeds(t *testing.T) {
	assert.NoError(t, Noop{}.Show(context.Background(), 42, "powerup"))
}

func TestSelect(t *testing.T) {
	gate := Select(config.AdsConfig{}, testLogger())
	_, ok := gate.(Noop)
	assert.True(t, ok, "absent provider selects the pass-through")

	gate = Select(config.AdsConfig{Enabled: true, ProviderURL: "http://ads.example"}, testLogger())
	_, ok = gate.(*HTTPGate)
	assert.True(t, ok)
}

func TestHTTPGateCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"completed":true}`))
	}))
	defer srv.Close()

	gate := NewHTTPGate(config.AdsConfig{Enabled: true, ProviderURL: srv.URL}, testLogger())
	assert.NoError(t, gate.Show(context.Background(), 7, "shop"))
}

func TestHTTPGateNotCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"completed":false}`))
	}))
	defer srv.Close()

	gate := NewHTTPGate(config.AdsConfig{Enabled: true, ProviderURL: srv.URL}, testLogger())
	err := gate.Show(context.Background(), 7, "shop")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeAdGate, appErr.Code)
	assert.True(t, appErr.Retryable)
}

func TestHTTPGateProviderDown(t *testing.T) {
	gate := NewHTTPGate(config.AdsConfig{Enabled: true, ProviderURL: "http://127.0.0.1:1"}, testLogger())

	err := gate.Show(context.Background(), 7, "powerup")
	require.Error(t, err)

	var appErr *apperrors.AppError
	assert.ErrorAs(t, err, &appErr)
}
