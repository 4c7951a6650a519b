package xlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func TestFxXLoggerLogEvent(t *testing.T) {
	w := &testMemOutWriter{}
	logger := NewFxXLogger(NewXLogger(
		WithXLoggerWriter(w),
		WithXLoggerLevel(LogLevelDebug),
	))

	events := []fxevent.Event{
		&fxevent.OnStartExecuting{FunctionName: "start", CallerName: "caller"},
		&fxevent.OnStartExecuted{FunctionName: "start", CallerName: "caller", Err: errors.New("fx error 1")},
		&fxevent.OnStopExecuting{FunctionName: "stop", CallerName: "caller"},
		&fxevent.OnStopExecuted{FunctionName: "stop", CallerName: "caller"},
		&fxevent.Supplied{TypeName: "config"},
		&fxevent.Provided{ConstructorName: "newTree", OutputTypeNames: []string{"tree"}},
		&fxevent.Invoking{FunctionName: "run"},
		&fxevent.Invoked{FunctionName: "run", Err: errors.New("fx error 2")},
		&fxevent.Stopping{},
		&fxevent.RollingBack{StartErr: errors.New("fx error 3")},
		&fxevent.Started{},
		&fxevent.LoggerInitialized{ConstructorName: "logger"},
	}
	for _, e := range events {
		logger.LogEvent(e)
	}

	lines := w.lines()
	require.Len(t, lines, len(events))
	for _, line := range lines {
		m := decodeLine(t, line)
		require.Equal(t, "Fx", m["component"])
		_, hasCaller := m["callAt"]
		require.False(t, hasCaller)
	}
	require.Equal(t, "fx error 1", decodeLine(t, lines[1])["error"])

	var nilLogger *FxXLogger
	nilLogger.LogEvent(&fxevent.Started{})
	NewFxXLogger(nil).LogEvent(&fxevent.Started{})
}

func TestFxXLoggerWithApp(t *testing.T) {
	w := &testMemOutWriter{}
	xl := NewXLogger(
		WithXLoggerWriter(w),
		WithXLoggerLevel(LogLevelDebug),
	)
	invoked := false
	app := fx.New(
		fx.WithLogger(func() fxevent.Logger { return NewFxXLogger(xl) }),
		fx.Supply(42),
		fx.Invoke(func(v int) {
			invoked = v == 42
		}),
	)
	require.NoError(t, app.Err())
	require.NoError(t, app.Start(context.Background()))
	require.NoError(t, app.Stop(context.Background()))
	require.True(t, invoked)
	require.NotEmpty(t, w.lines())
}
