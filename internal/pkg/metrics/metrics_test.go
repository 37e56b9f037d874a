package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var pb dto.Metric
	require.NoError(t, c.Write(&pb))
	return pb.GetCounter().GetValue()
}

func TestRecordQuotaDecision(t *testing.T) {
	m := NewMetrics()
	before := counterValue(t, quotaDecisions.WithLabelValues("consume", "rejected"))

	m.RecordQuotaDecision("consume", "rejected")
	m.RecordQuotaDecision("consume", "rejected")

	after := counterValue(t, quotaDecisions.WithLabelValues("consume", "rejected"))
	assert.Equal(t, before+2, after)
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.RecordHTTPRequest("GET", "/api/chat-limits/:userId", "200", 5*time.Millisecond)

	app := fiber.New()
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "haley_http_requests_total")
}
