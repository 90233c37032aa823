package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

func healthy(name string) HealthChecker {
	return NamedCheck{Label: name, Probe: func(context.Context) error { return nil }}
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler("1.2.3", NamedCheck{Label: "postgres", Probe: func(context.Context) error {
		t.Fatal("liveness must not probe dependencies")
		return nil
	}})
	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp LivenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestHealthHandler_Readiness(t *testing.T) {
	t.Run("no checkers", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHealthHandler("v").Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("all healthy", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHealthHandler("v", healthy("postgres"), healthy("redis")).
			Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ready", resp.Status)
		assert.Len(t, resp.Components, 2)
	})

	t.Run("one failing", func(t *testing.T) {
		down := NamedCheck{Label: "minio", Probe: func(context.Context) error {
			return errors.New(errors.ErrCodeStorageError, "bucket unreachable")
		}}
		w := httptest.NewRecorder()
		NewHealthHandler("v", healthy("postgres"), down).
			Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not_ready", resp.Status)
		assert.Equal(t, "unhealthy", resp.Components["minio"].Status)
		assert.Contains(t, resp.Components["minio"].Error, "bucket unreachable")
		assert.Equal(t, "healthy", resp.Components["postgres"].Status)
	})
}

func TestHealthHandler_Detailed(t *testing.T) {
	down := NamedCheck{Label: "kafka", Probe: func(context.Context) error {
		return errors.New(errors.ErrCodeMessageQueueError, "no brokers")
	}}
	w := httptest.NewRecorder()
	NewHealthHandler("v9", down).Detailed(w, httptest.NewRequest(http.MethodGet, "/healthz/detail", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp DetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "v9", resp.Version)
	assert.False(t, resp.CheckedAt.IsZero())
	assert.Equal(t, "unhealthy", resp.Components["kafka"].Status)
}

func TestHealthHandler_ProbeHonoursDeadline(t *testing.T) {
	slow := NamedCheck{Label: "redis", Probe: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	h := NewHealthHandler("v", slow, healthy("postgres"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := h.probe(ctx, time.Second)

	assert.False(t, report.healthy())
	assert.Equal(t, "unhealthy", report["redis"].Status)
	assert.Equal(t, "healthy", report["postgres"].Status)
}

//Personal.AI order the ending
