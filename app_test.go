package di_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	di "github.com/0xalexb/hjarta-config"
	"github.com/0xalexb/hjarta-config/config"
	"github.com/0xalexb/hjarta-config/config/tree"
	"github.com/0xalexb/hjarta-config/logging"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestNewApp_CreatesAppWithDefaultLogLevel(t *testing.T) {
	t.Parallel()

	app := di.NewApp()
	require.NotNil(t, app)
}

func TestNewApp_WithLogLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		level string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			app := di.NewApp(di.WithLogLevel(tc.level))
			require.NotNil(t, app)
		})
	}
}

func TestNewApp_WithModules(t *testing.T) {
	t.Parallel()

	var invoked bool

	module := fx.Module("test",
		fx.Invoke(func() {
			invoked = true
		}),
	)

	app := di.NewApp(di.WithModules(module))
	require.NotNil(t, app)

	err := app.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Stop() })
	require.True(t, invoked)
}

func TestNewApp_LoggerIsAvailableInFxContainer(t *testing.T) {
	t.Parallel()

	var capturedLogger *slog.Logger

	module := fx.Module("test",
		fx.Invoke(func(logger *slog.Logger) {
			capturedLogger = logger
		}),
	)

	app := di.NewApp(
		di.WithLogLevel("debug"),
		di.WithModules(module),
	)
	require.NotNil(t, app)

	err := app.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Stop() })
	require.NotNil(t, capturedLogger)
}

// syncBuffer is written by the default slog logger from parallel tests.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

//nolint:paralleltest // replaces the default slog logger
func TestNewApp_LogOutputAndFormat(t *testing.T) {
	var output syncBuffer

	module := fx.Module("test",
		fx.Invoke(func(logger *slog.Logger) {
			logger.Warn("configured", slog.String("key", "value"))
		}),
	)

	app := di.NewApp(
		di.WithLogLevel("warn"),
		di.WithLogFormat("text"),
		di.WithLogOutput(&output),
		di.WithModules(module),
	)

	err := app.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Stop() })

	require.Contains(t, output.String(), "level=WARN msg=configured key=value")
}

func TestNewApp_LoggerConfigIsSupplied(t *testing.T) {
	t.Parallel()

	var capturedConfig logging.LoggerConfig

	module := fx.Module("test",
		fx.Invoke(func(loggerConfig logging.LoggerConfig) {
			capturedConfig = loggerConfig
		}),
	)

	app := di.NewApp(
		di.WithLogLevel("warn"),
		di.WithModules(module),
	)
	require.NotNil(t, app)

	err := app.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Stop() })
	require.Equal(t, "warn", capturedConfig.Level)
}

func TestApp_Stop(t *testing.T) {
	t.Parallel()

	var stopCalled bool

	module := fx.Module("test",
		fx.Invoke(func(lc fx.Lifecycle) {
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					stopCalled = true

					return nil
				},
			})
		}),
	)

	app := di.NewApp(di.WithModules(module))
	require.NotNil(t, app)

	err := app.Start()
	require.NoError(t, err)

	err = app.Stop()
	require.NoError(t, err)
	require.True(t, stopCalled, "OnStop hook should be called")
}

func TestApp_StopOnNilApp(t *testing.T) {
	t.Parallel()

	var app *di.App

	err := app.Stop()
	require.Error(t, err)
}

func TestApp_StartOnNilApp(t *testing.T) {
	t.Parallel()

	var app *di.App

	err := app.Start()
	require.Error(t, err)
}

func TestApp_RunOnNilApp(t *testing.T) {
	t.Parallel()

	var app *di.App

	require.NotPanics(t, func() {
		app.Run()
	})
}

func TestApp_Run(t *testing.T) {
	t.Parallel()

	module := fx.Module("test",
		fx.Invoke(func(shutdowner fx.Shutdowner) {
			go func() {
				_ = shutdowner.Shutdown()
			}()
		}),
	)

	app := di.NewApp(di.WithModules(module))
	require.NotNil(t, app)

	require.NotPanics(t, func() {
		app.Run()
	})
}

func TestNewApp_WithConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte("service:\n  port: 9000\n"), 0o600))

	var cfg *tree.Tree

	app := di.NewApp(
		di.WithLogLevel("error"),
		di.WithConfig(config.WithRootDir(dir), config.WithFiles("app.yaml")),
		di.WithModules(fx.Invoke(func(loaded *tree.Tree) {
			cfg = loaded
		})),
	)

	err := app.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Stop() })

	port, ok := cfg.Find("service", "port")
	require.True(t, ok)
	require.Equal(t, uint64(9000), port)
}

func TestNewApp_WithConfigFatalErrorFailsStart(t *testing.T) {
	t.Parallel()

	app := di.NewApp(
		di.WithLogLevel("error"),
		di.WithConfig(config.WithFileType(config.Format("ini"))),
		di.WithModules(fx.Invoke(func(*config.Result) {})),
	)

	err := app.Start()
	require.Error(t, err)
}

func TestApp_Config(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte("name: orders\n"), 0o600))

	app := di.NewApp(
		di.WithLogLevel("error"),
		di.WithConfig(config.WithRootDir(dir)),
		di.WithConfig(config.WithFiles("app.yaml", "app.local.yaml")),
	)

	err := app.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Stop() })

	result := app.Config()
	require.NotNil(t, result)
	require.Equal(t, []string{filepath.Join(dir, "app.yaml")}, result.Loaded)
	require.Equal(t, []string{filepath.Join(dir, "app.local.yaml")}, result.Missing)

	name, ok := result.Tree.Get("name")
	require.True(t, ok)
	require.Equal(t, "orders", name)
}

func TestApp_ConfigWithoutWithConfig(t *testing.T) {
	t.Parallel()

	var app *di.App

	require.Nil(t, app.Config())
	require.Nil(t, di.NewApp().Config())
}
