package logging

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// capturingCore records every entry written through it so log output
// can be asserted on.
type capturingCore struct {
	zapcore.LevelEnabler

	mu      sync.Mutex
	entries []capturedEntry
}

type capturedEntry struct {
	level   zapcore.Level
	message string
	fields  map[string]interface{}
}

func newCapturingCore() *capturingCore {
	return &capturingCore{LevelEnabler: zapcore.DebugLevel}
}

func (c *capturingCore) With(_ []zapcore.Field) zapcore.Core { return c }

func (c *capturingCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *capturingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(enc)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, capturedEntry{
		level:   entry.Level,
		message: entry.Message,
		fields:  enc.Fields,
	})
	return nil
}

func (c *capturingCore) Sync() error { return nil }

func (c *capturingCore) all() []capturedEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]capturedEntry(nil), c.entries...)
}

func newCapturedLogger() (*Logger, *capturingCore) {
	core := newCapturingCore()
	return &Logger{Logger: zap.New(core)}, core
}

func TestLogPerformance_EmitsOperationAndDuration(t *testing.T) {
	logger, core := newCapturedLogger()

	logger.LogPerformance("import_sweep", 1500*time.Millisecond, Int("tenants", 3))

	entries := core.all()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].level)
	assert.Equal(t, "Performance metric", entries[0].message)
	assert.Equal(t, "performance", entries[0].fields["event_type"])
	assert.Equal(t, "import_sweep", entries[0].fields["operation"])
	assert.Equal(t, 1500*time.Millisecond, entries[0].fields["duration"])
	assert.Equal(t, float64(1500), entries[0].fields["duration_ms"])
	assert.Equal(t, int64(3), entries[0].fields["tenants"])
}

func TestLogSlowQuery_WarnsWithQueryFields(t *testing.T) {
	logger, core := newCapturedLogger()

	logger.LogSlowQuery("findOne", 2*time.Second, String("collection", "users"))

	entries := core.all()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].level)
	assert.Equal(t, "Slow query detected", entries[0].message)
	assert.Equal(t, "slow_query", entries[0].fields["event_type"])
	assert.Equal(t, "findOne", entries[0].fields["query"])
	assert.Equal(t, 2*time.Second, entries[0].fields["duration"])
	assert.Equal(t, "users", entries[0].fields["collection"])
}
