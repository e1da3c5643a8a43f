package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsManager_Helpers(t *testing.T) {
	m := NewMetricsManager("board_test")

	m.ObserveRequest("ads.list", "ok", 0.01)
	m.ObserveRequest("ads.list", "ok", 0.02)
	m.StaleDiscarded("public")
	m.Submission("blocked")
	m.Notification("error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GatewayRequestsTotal.WithLabelValues("ads.list", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleResponsesDiscarded.WithLabelValues("public")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("blocked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("error")))
}

func TestMetricsManager_NilIsNoop(t *testing.T) {
	var m *MetricsManager
	assert.NotPanics(t, func() {
		m.ObserveRequest("ads.list", "ok", 0.01)
		m.StaleDiscarded("public")
		m.Submission("success")
		m.Notification("info")
	})
}
