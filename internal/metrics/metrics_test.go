package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cluster-ledger-backend/internal/domain"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := Registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if matches(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(m *dto.Metric, labels map[string]string) bool {
	for _, lp := range m.GetLabel() {
		if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
			return false
		}
	}
	return true
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "rejected", Outcome(domain.NewNotFoundError("loan", 1)))
	assert.Equal(t, "error", Outcome(errors.New("db down")))
}

func TestObserveOperation(t *testing.T) {
	labels := map[string]string{"operation": "settle", "outcome": "success"}
	before := counterValue(t, "cluster_ledger_operations_total", labels)

	ObserveOperation("settle", nil)

	assert.Equal(t, before+1, counterValue(t, "cluster_ledger_operations_total", labels))
}

func TestNotificationFailed(t *testing.T) {
	before := counterValue(t, "cluster_ledger_notification_failures_total", nil)
	NotificationFailed()
	assert.Equal(t, before+1, counterValue(t, "cluster_ledger_notification_failures_total", nil))
}

func TestHandler(t *testing.T) {
	ObserveHTTP("Settle", http.MethodPut, http.StatusOK, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cluster_ledger_http_request_duration_seconds")
}
