package greenrt

import (
	"testing"

	"github.com/joeycumines/logiface"
)

// testEvent/testEventFactory/testEventWriter are minimal logiface test
// fixtures: a logiface.Event implementation plus the factory/writer pair
// needed to build a logiface.Logger for wrapping.
type testEvent struct {
	level  logiface.Level
	fields map[string]any
}

func (e *testEvent) Level() logiface.Level { return e.level }

func (e *testEvent) AddField(key string, val any) {
	if e.fields == nil {
		e.fields = make(map[string]any)
	}
	e.fields[key] = val
}

type testEventFactory struct{}

func (f *testEventFactory) NewEvent(level logiface.Level) *testEvent {
	return &testEvent{level: level}
}

type testEventWriter struct {
	onWrite func(*testEvent) error
}

func (w *testEventWriter) Write(event *testEvent) error {
	return w.onWrite(event)
}

// logifaceLogger adapts a *logiface.Logger[*testEvent] to this package's
// Logger interface, demonstrating that a host application's existing
// logiface setup can back greenrt's logging without greenrt depending on
// logiface directly.
type logifaceLogger struct {
	inner *logiface.Logger[*testEvent]
}

func (l *logifaceLogger) IsEnabled(level LogLevel) bool {
	return l.inner.Level() >= toLogifaceLevel(level)
}

func (l *logifaceLogger) Log(entry LogEntry) {
	b := l.inner.Build(toLogifaceLevel(entry.Level))
	if entry.RuntimeID != 0 {
		b = b.Int64("runtime", entry.RuntimeID)
	}
	if entry.ThreadID != 0 {
		b = b.Int64("thread", entry.ThreadID)
	}
	for k, v := range entry.Context {
		b = b.Any(k, v)
	}
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	b.Str("category", entry.Category).Log(entry.Message)
}

func toLogifaceLevel(l LogLevel) logiface.Level {
	switch l {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelInfo:
		return logiface.LevelInformational
	case LevelWarn:
		return logiface.LevelWarning
	case LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}

func TestLogifaceAdapterWritesEvents(t *testing.T) {
	var written []*testEvent
	writer := &testEventWriter{
		onWrite: func(event *testEvent) error {
			written = append(written, event)
			return nil
		},
	}
	factory := &testEventFactory{}

	typedLogger := logiface.New[*testEvent](
		logiface.WithEventFactory[*testEvent](factory),
		logiface.WithWriter[*testEvent](writer),
		logiface.WithLevel[*testEvent](logiface.LevelDebug),
	)

	adapter := &logifaceLogger{inner: typedLogger}
	if !adapter.IsEnabled(LevelInfo) {
		t.Fatal("IsEnabled(LevelInfo) = false, want true at debug level")
	}

	LogInfo(adapter, "spawn", "green thread spawned", map[string]interface{}{"name": "worker-1"})

	if len(written) != 1 {
		t.Fatalf("wrote %d events, want 1", len(written))
	}
	if got := written[0].level; got != logiface.LevelInformational {
		t.Fatalf("event level = %v, want LevelInformational", got)
	}
	if got := written[0].fields["name"]; got != "worker-1" {
		t.Fatalf("event field name = %v, want worker-1", got)
	}
}
