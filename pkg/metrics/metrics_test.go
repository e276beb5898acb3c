package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingObserver records every observation made against it.
type capturingObserver struct {
	observed []float64
}

func (o *capturingObserver) Observe(value float64) {
	o.observed = append(o.observed, value)
}

func TestTimer_DurationGrowsMonotonically(t *testing.T) {
	timer := NewTimer()

	first := timer.Duration()
	time.Sleep(time.Millisecond)
	second := timer.Duration()

	assert.GreaterOrEqual(t, first, time.Duration(0))
	assert.Greater(t, second, first)
}

func TestTimer_ObserveDurationRecordsSeconds(t *testing.T) {
	observer := &capturingObserver{}
	timer := NewTimer()

	time.Sleep(time.Millisecond)
	timer.ObserveDuration(observer)

	require.Len(t, observer.observed, 1)
	assert.Greater(t, observer.observed[0], 0.0)
	assert.Less(t, observer.observed[0], 60.0)
}

func TestNewCollector_KeepsRegistriesIsolated(t *testing.T) {
	// Two collectors with the same namespace must not clash, every
	// collector carries its own registry
	first := NewCollector("test")
	second := NewCollector("test")

	assert.NotSame(t, first.GetRegistry(), second.GetRegistry())
}
