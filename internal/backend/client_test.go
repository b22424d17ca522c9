package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rohankatakam/chaindash/internal/config"
	"github.com/rohankatakam/chaindash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/dimensions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"title":"Operational Efficiency","quarter":"Q1 2026","kpi_actual":81.5}]`))
	})
	mux.HandleFunc("/outcomes", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"title":"Community Engagement","quarter":"Q4 2025","actual":64}]}`))
	})
	mux.HandleFunc("/initiatives", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(config.BackendConfig{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfig, errors.Classify(err))
}

func TestClient_FetchRows(t *testing.T) {
	srv := newTestServer(t)
	c, err := NewClient(config.BackendConfig{BaseURL: srv.URL + "/", Timeout: time.Second})
	require.NoError(t, err)

	dims, err := c.Dimensions(context.Background())
	require.NoError(t, err)
	require.Len(t, dims, 1)
	assert.Equal(t, "Operational Efficiency", Title(dims[0]))
	assert.Equal(t, 81.5, dims[0]["kpi_actual"])

	outcomes, err := c.Outcomes(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "Community Engagement", Title(outcomes[0]))
}

func TestClient_Non2xxIsExternalError(t *testing.T) {
	srv := newTestServer(t)
	c, err := NewClient(config.BackendConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Initiatives(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeExternal, errors.Classify(err))
	assert.Contains(t, err.Error(), "502")
}

func TestClient_CancelledContext(t *testing.T) {
	srv := newTestServer(t)
	c, err := NewClient(config.BackendConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Dimensions(ctx)
	assert.Error(t, err)
}
