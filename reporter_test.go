package metagraph

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestReporter(t *testing.T) {
	require := require.New(t)
	core, logs := observer.New(zapcore.InfoLevel)
	rep := NewReporter(zap.New(core))

	rep.Warn(CategoryInverseNavigationAmbiguity, "ambiguous inverse", zap.String("entity", "manager"))
	rep.Info(CategoryUnreachableEntityTypeRemoved, "pruned", zap.String("entity", "stamp"))

	entries := logs.All()
	require.Len(entries, 2)

	warn := entries[0]
	require.Equal(zapcore.WarnLevel, warn.Level)
	require.Equal("ambiguous inverse", warn.Message)
	fields := warn.ContextMap()
	require.Equal(string(CategoryInverseNavigationAmbiguity), fields["category"])
	require.Equal("manager", fields["entity"])

	info := entries[1]
	require.Equal(zapcore.InfoLevel, info.Level)
	require.Equal(string(CategoryUnreachableEntityTypeRemoved), info.ContextMap()["category"])
}

func TestNopReporter(t *testing.T) {
	rep := NopReporter()
	rep.Warn(CategoryAmbiguousServiceProperty, "dropped")
	rep.Info(CategoryNavigationlessForeignKeyRemoved, "dropped", zap.Int("n", 1))
}
