package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func withObserved(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zap.DebugLevel)
	log = zap.New(core).Sugar()
	t.Cleanup(func() { log = nil })
	return logs
}

func TestInit(t *testing.T) {
	Init()
	require.NotNil(t, log)
	log = nil
}

func TestInfoWithFields(t *testing.T) {
	logs := withObserved(t)

	Info("booking confirmed", "appointment_id", 42, "client_id", 7)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "booking confirmed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 42, fields["appointment_id"])
	assert.EqualValues(t, 7, fields["client_id"])
}

func TestErrorf(t *testing.T) {
	logs := withObserved(t)

	Errorf("failed after %d attempts", 3)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "failed after 3 attempts", entries[0].Message)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
}

func TestDebug(t *testing.T) {
	logs := withObserved(t)

	Debug("slot generation", "count", 18)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
}
