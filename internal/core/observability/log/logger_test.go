package log

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type status string

func (s status) String() string { return string(s) }

func newObserved(level Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewFromZap(zap.New(core), level), logs
}

func TestLevelFiltering(t *testing.T) {
	l, logs := newObserved(LevelWarn)
	l.Info("hidden")
	l.Warn("shown")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)

	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())
	l.Debug("now visible")
	assert.Equal(t, 2, logs.Len())
}

func TestFieldsAreTyped(t *testing.T) {
	l, logs := newObserved(LevelDebug)
	l.With(Tree("patrol")).Info("exit",
		Node("chase"),
		State("state", status("Success")),
		Frame(7),
		Error(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "patrol", ctx["tree"])
	assert.Equal(t, "chase", ctx["node"])
	assert.Equal(t, "Success", ctx["state"])
	assert.Equal(t, uint64(7), ctx["frame"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestWithContextPicksUpFields(t *testing.T) {
	l, logs := newObserved(LevelDebug)
	ctx := ContextWith(context.Background(), Agent("npc-1"))
	l.WithContext(ctx).Info("tick")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "npc-1", logs.All()[0].ContextMap()["agent"])
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, lvl)
	assert.Equal(t, "warn", lvl.String())

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() { l.Error("ignored", Error(nil)) })
}
