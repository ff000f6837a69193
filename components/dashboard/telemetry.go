package dashboard

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LogTelemetry writes dashboard events as structured log entries.
type LogTelemetry struct {
	logger logrus.FieldLogger
	level  logrus.Level
}

// NewLogTelemetry logs events at debug level. Provider failures are logged as
// warnings.
func NewLogTelemetry(logger logrus.FieldLogger) *LogTelemetry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogTelemetry{logger: logger, level: logrus.DebugLevel}
}

// WithLevel changes the level used for ordinary events.
func (t *LogTelemetry) WithLevel(level logrus.Level) *LogTelemetry {
	t.level = level
	return t
}

// Record implements Telemetry.
func (t *LogTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	entry := t.logger.WithField("event", event)
	if len(payload) > 0 {
		entry = entry.WithFields(logrus.Fields(payload))
	}
	if event == eventProviderError {
		entry.Warn("dashboard provider failed")
		return
	}
	switch t.level {
	case logrus.TraceLevel:
		entry.Trace("dashboard event")
	case logrus.InfoLevel:
		entry.Info("dashboard event")
	case logrus.WarnLevel:
		entry.Warn("dashboard event")
	default:
		entry.Debug("dashboard event")
	}
}
