package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveRecorded(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry, "test-ring")

	c.ObserveRecorded()
	c.ObserveRecorded()

	require.Equal(t, float64(2), testutil.ToFloat64(c.recordedTotal))
}

func TestObserveDropped_LabelsByReason(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry, "test-ring")

	c.ObserveDropped(LabelOverflowExpire)
	c.ObserveDropped(LabelOverflowExpire)
	c.ObserveDropped(LabelOverflow4GB)

	require.Equal(t, float64(2), testutil.ToFloat64(c.droppedTotal.WithLabelValues(LabelOverflowExpire)))
	require.Equal(t, float64(1), testutil.ToFloat64(c.droppedTotal.WithLabelValues(LabelOverflow4GB)))
	require.Equal(t, float64(0), testutil.ToFloat64(c.droppedTotal.WithLabelValues(LabelMissingEvent)))
}

func TestObserveGap_AccumulatesSkippedEvents(t *testing.T) {
	c := NewCollector(nil, "test-ring")

	c.ObserveGap(0) // no-op: nothing was actually skipped
	c.ObserveGap(5)
	c.ObserveGap(3)

	require.Equal(t, float64(2), testutil.ToFloat64(c.gapsTotal))
	require.Equal(t, float64(8), testutil.ToFloat64(c.gapEventsTotal))
}

func TestObserveWindowAdvance(t *testing.T) {
	c := NewCollector(nil, "test-ring")
	c.ObserveWindowAdvance()
	c.ObserveWindowAdvance()
	c.ObserveWindowAdvance()
	require.Equal(t, float64(3), testutil.ToFloat64(c.windowAdvances))
}

func TestNilCollector_ObserveCallsAreNoOps(t *testing.T) {
	var c *Collector
	require.NotPanics(t, func() {
		c.ObserveRecorded()
		c.ObserveDropped(LabelOverflow4GB)
		c.ObserveWindowAdvance()
		c.ObserveGap(10)
	})
}

func TestCollector_RegistersDistinctMetricNames(t *testing.T) {
	registry := prometheus.NewRegistry()
	ringA := NewCollector(registry, "ring-a")
	ringB := NewCollector(registry, "ring-b")

	ringA.ObserveRecorded()
	ringB.ObserveRecorded()
	ringB.ObserveRecorded()

	require.Equal(t, float64(1), testutil.ToFloat64(ringA.recordedTotal))
	require.Equal(t, float64(2), testutil.ToFloat64(ringB.recordedTotal))
}
