package monitoring

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveHealth(t *testing.T, h *HealthChecker) (int, HealthStatus) {
	t.Helper()
	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, httptest.NewRequest("GET", "/health", nil))

	var status HealthStatus
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&status))
	return recorder.Code, status
}

func TestHealthEndpointStatuses(t *testing.T) {
	h := NewHealthChecker()

	code, status := serveHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Status)

	h.SetEmergencyStop(true)
	code, status = serveHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", status.Status)
	assert.True(t, status.EmergencyStop)

	h.RecordError("persistence")
	code, status = serveHealth(t, h)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, []string{"persistence"}, status.Errors)
}

func TestRecordErrorKeepsRecentTen(t *testing.T) {
	h := NewHealthChecker()

	for i := 0; i < 15; i++ {
		h.RecordError(fmt.Sprintf("error-%d", i))
	}

	_, status := serveHealth(t, h)
	require.Len(t, status.Errors, 10)
	assert.Equal(t, "error-5", status.Errors[0])
	assert.Equal(t, "error-14", status.Errors[9])
}

// TestRecordErrorFeedsRegisteredChecker tests that the metric recorder
// surfaces errors in the registered health checker
func TestRecordErrorFeedsRegisteredChecker(t *testing.T) {
	h := NewHealthChecker()
	SetHealthChecker(h)
	t.Cleanup(func() { SetHealthChecker(nil) })

	RecordError("portfolio_value")

	_, status := serveHealth(t, h)
	assert.Equal(t, []string{"portfolio_value"}, status.Errors)
}

func TestRecordErrorWithoutRegisteredChecker(t *testing.T) {
	SetHealthChecker(nil)
	RecordError("persistence") // must not panic
}
