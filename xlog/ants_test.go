package xlog

import (
	"sync"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAntsXLogger(t *testing.T) {
	buf := &zaptest.Buffer{}
	logger := NewAntsXLogger(NewXLogger(WithXLoggerLevel(LogLevelDebug), WithXLoggerWriteSyncer(buf)))
	logger.Printf("pool %s", "ready")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	require.Equal(t, "pool ready", lines[0]["msg"])
	require.Equal(t, "Ants", lines[0]["component"])

	var nilLogger *AntsXLogger
	require.NotPanics(t, func() {
		nilLogger.Printf("ignored")
		NewAntsXLogger(nil).Printf("ignored")
	})
}

func TestAntsXLogger_Pool(t *testing.T) {
	buf := &zaptest.Buffer{}
	logger := NewAntsXLogger(NewXLogger(WithXLoggerLevel(LogLevelDebug), WithXLoggerWriteSyncer(buf)))
	pool, err := ants.NewPool(2, ants.WithLogger(logger))
	require.NoError(t, err)
	defer pool.Release()

	wg := sync.WaitGroup{}
	wg.Add(4)
	for i := 0; i < 4; i++ {
		require.NoError(t, pool.Submit(func() {
			wg.Done()
		}))
	}
	wg.Wait()
}

type namedXLogger struct {
	XLogger
}

func TestAntsXLogger_EmbeddedXLogger(t *testing.T) {
	buf := &zaptest.Buffer{}
	parent := namedXLogger{XLogger: NewXLogger(WithXLoggerLevel(LogLevelDebug), WithXLoggerWriteSyncer(buf))}

	var logger *AntsXLogger
	require.NotPanics(t, func() {
		logger = NewAntsXLogger(parent)
	})
	logger.Printf("pool %s", "ready")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	require.Equal(t, "pool ready", lines[0]["msg"])
	require.Equal(t, "Ants", lines[0]["component"])
	require.Equal(t, parent.Level(), logger.logger.Level())
}
