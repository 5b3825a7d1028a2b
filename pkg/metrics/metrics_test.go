package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics() // 重复调用不应panic（重复注册）

	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsInProgress)
	assert.NotNil(t, BooksIngestedTotal)
	assert.NotNil(t, ShelfOperationsTotal)
	assert.NotNil(t, ReviewsTotal)
	assert.NotNil(t, CatalogRequestsTotal)
	assert.NotNil(t, CircuitBreakerState)
	assert.NotNil(t, EventsPublishedTotal)
}

func TestObserveShelfOp(t *testing.T) {
	InitMetrics()

	before := counterValue(t, ShelfOperationsTotal.WithLabelValues("favorite", "add"))
	ObserveShelfOp("favorite", "add")
	ObserveShelfOp("favorite", "add")
	ObserveShelfOp("read", "add")

	assert.Equal(t, before+2, counterValue(t, ShelfOperationsTotal.WithLabelValues("favorite", "add")))
}

func TestObservePublish(t *testing.T) {
	InitMetrics()

	ok := EventsPublishedTotal.WithLabelValues("review.created", "success")
	failed := EventsPublishedTotal.WithLabelValues("review.created", "failure")
	okBefore, failedBefore := counterValue(t, ok), counterValue(t, failed)

	ObservePublish("review.created", nil)
	ObservePublish("review.created", errors.New("channel closed"))

	assert.Equal(t, okBefore+1, counterValue(t, ok))
	assert.Equal(t, failedBefore+1, counterValue(t, failed))
}

func TestSetBreakerState(t *testing.T) {
	InitMetrics()

	SetBreakerState("google_books", 1)
	assert.Equal(t, float64(1), gaugeValue(t, CircuitBreakerState.WithLabelValues("google_books")))

	SetBreakerState("google_books", 0)
	assert.Equal(t, float64(0), gaugeValue(t, CircuitBreakerState.WithLabelValues("google_books")))
}

func TestObserveCatalogRequest(t *testing.T) {
	InitMetrics()

	c := CatalogRequestsTotal.WithLabelValues("search", "cache_hit")
	before := counterValue(t, c)
	ObserveCatalogRequest("search", "cache_hit", -1)
	assert.Equal(t, before+1, counterValue(t, c))
}
