package obs

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetChecker() {
	checker.mu.Lock()
	defer checker.mu.Unlock()
	checker.components = make(map[string]componentHealth)
}

func TestReadinessFailsOnUnhealthyRequiredComponent(t *testing.T) {
	resetChecker()
	RegisterComponent("source.in", true, false, "")
	RegisterComponent("sink.out", false, false, "connection refused")

	readiness := GetReadiness()
	assert.Equal(t, "not_ready", readiness.Status)
	assert.Contains(t, readiness.Components["sink.out"], "not ready")
}

func TestReadinessIgnoresUnhealthyOptionalComponent(t *testing.T) {
	resetChecker()
	RegisterComponent("source.in", true, false, "")
	RegisterComponent("source.optional-tap", false, true, "not connected yet")

	readiness := GetReadiness()
	assert.Equal(t, "ready", readiness.Status)
	assert.Contains(t, readiness.Components["source.optional-tap"], "degraded")
}

func TestHealthHandlerReturns503WhenUnhealthy(t *testing.T) {
	resetChecker()
	RegisterComponent("sink.out", false, false, "boom")

	w := httptest.NewRecorder()
	HealthHandler()(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 503, w.Code)

	var got Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "unhealthy", got.Status)
}

func TestLivenessHandlerAlwaysReturns200(t *testing.T) {
	resetChecker()
	RegisterComponent("sink.out", false, false, "boom")

	w := httptest.NewRecorder()
	LivenessHandler()(w, httptest.NewRequest("GET", "/live", nil))
	assert.Equal(t, 200, w.Code)
}

func TestUpdateComponentMutatesExistingEntry(t *testing.T) {
	resetChecker()
	RegisterComponent("source.in", true, false, "")
	UpdateComponent("source.in", false, "adapter crashed")

	health := GetHealth()
	assert.Equal(t, "unhealthy", health.Status)
	assert.Contains(t, health.Components["source.in"], "adapter crashed")
}
