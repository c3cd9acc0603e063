package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/panelkit/flyout/adapters/metrics"
)

func TestCollector_Observations(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewWithRegistry(reg)

	c.ObserveRender("edit-product", 5*time.Millisecond)
	c.ObserveRender("edit-product", 7*time.Millisecond)
	c.ObserveSubmit("edit-product", true)
	c.ObserveSubmit("edit-product", false)
	c.ObserveSearch("edit-product")

	if got := testutil.ToFloat64(c.RendersTotal.WithLabelValues("edit-product")); got != 2 {
		t.Errorf("renders_total = %v", got)
	}
	if got := testutil.ToFloat64(c.SubmitsTotal.WithLabelValues("edit-product", "ok")); got != 1 {
		t.Errorf("submits_total{ok} = %v", got)
	}
	if got := testutil.ToFloat64(c.SubmitsTotal.WithLabelValues("edit-product", "failed")); got != 1 {
		t.Errorf("submits_total{failed} = %v", got)
	}
	if got := testutil.ToFloat64(c.SearchesTotal.WithLabelValues("edit-product")); got != 1 {
		t.Errorf("searches_total = %v", got)
	}
}
