package database

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Anmirazik/ev-server/pkg/logging"
	"github.com/Anmirazik/ev-server/pkg/metrics"
)

// capturingCore records written log entries so query observations can
// be asserted on.
type capturingCore struct {
	zapcore.LevelEnabler

	mu      sync.Mutex
	entries []zapcore.Entry
}

func (c *capturingCore) With(_ []zapcore.Field) zapcore.Core { return c }

func (c *capturingCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *capturingCore) Write(entry zapcore.Entry, _ []zapcore.Field) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
	return nil
}

func (c *capturingCore) Sync() error { return nil }

func (c *capturingCore) all() []zapcore.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]zapcore.Entry(nil), c.entries...)
}

func newObservationEnv() (*logging.Logger, *capturingCore, *metrics.Collector) {
	core := &capturingCore{LevelEnabler: zapcore.DebugLevel}
	return &logging.Logger{Logger: zap.New(core)}, core, metrics.NewCollector("test")
}

func TestObserveQuery_LogsQueriesOverThreshold(t *testing.T) {
	logger, core, collector := newObservationEnv()

	start := time.Now().Add(-2 * slowQueryThreshold)
	observeQuery(logger, collector, "findOne", usersCollection, start)

	entries := core.all()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "Slow query detected", entries[0].Message)
}

func TestObserveQuery_StaysQuietUnderThreshold(t *testing.T) {
	logger, core, collector := newObservationEnv()

	observeQuery(logger, collector, "findOne", usersCollection, time.Now())

	assert.Empty(t, core.all())
}
