package dashboard

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogTelemetryRecordsFields(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	telemetry := NewLogTelemetry(logger)

	telemetry.Record(context.Background(), "hub.htd.update", map[string]any{"lead_id": "LD-2003"})
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "hub.htd.update", entry.Data["event"])
	assert.Equal(t, "LD-2003", entry.Data["lead_id"])
}

func TestLogTelemetryWarnsOnProviderErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	telemetry := NewLogTelemetry(logger).WithLevel(logrus.InfoLevel)

	telemetry.Record(context.Background(), "dashboard.layout.resolve", nil)
	telemetry.Record(context.Background(), eventProviderError, map[string]any{"definition_id": WidgetAlerts})

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	assert.Equal(t, WidgetAlerts, entries[1].Data["definition_id"])
}

func TestNormalizeTelemetry(t *testing.T) {
	assert.IsType(t, noopTelemetry{}, normalizeTelemetry(nil))
	custom := &recordingTelemetry{}
	assert.Same(t, custom, normalizeTelemetry(custom))
}
