package xlog

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestConsoleCore(t *testing.T) {
	lvlEnabler := zap.NewAtomicLevelAt(LogLevelDebug.zapLevel())
	var cc XLogCore = newConsoleCore(
		&lvlEnabler,
		JSON,
		nil,
		zapcore.CapitalLevelEncoder,
		zapcore.ISO8601TimeEncoder,
	)
	require.Nil(t, cc)

	buf := &zaptest.Buffer{}
	cc = newConsoleCore(
		&lvlEnabler,
		JSON,
		buf,
		zapcore.CapitalLevelEncoder,
		zapcore.ISO8601TimeEncoder,
	)
	require.NotNil(t, cc.outEncoder())
	require.NotNil(t, cc.writeSyncer())
	require.NotNil(t, cc.levelEncoder())
	require.NotNil(t, cc.timeEncoder())

	require.True(t, cc.Enabled(zapcore.DebugLevel))
	require.True(t, cc.Enabled(zapcore.ErrorLevel))

	lvlEnabler.SetLevel(zapcore.ErrorLevel)
	require.False(t, cc.Enabled(zapcore.DebugLevel))
	require.False(t, cc.Enabled(zapcore.WarnLevel))
	require.True(t, cc.Enabled(zapcore.ErrorLevel))
	require.Nil(t, cc.Check(zapcore.Entry{Level: zapcore.DebugLevel}, nil))

	lvlEnabler.SetLevel(zapcore.DebugLevel)
	require.NotNil(t, cc.With([]zap.Field{zap.String("key", "value")}))

	ce := cc.Check(zapcore.Entry{Level: zapcore.DebugLevel, Message: "checked"}, nil)
	require.NotNil(t, ce)
	ce.Write(zap.String("key", "value"))
	require.NoError(t, cc.Sync())
	require.Len(t, buf.Lines(), 1)
	require.Contains(t, buf.Lines()[0], `"key":"value"`)
}
