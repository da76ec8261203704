package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/0xalexb/hjarta-config/config"
	"github.com/0xalexb/hjarta-config/logging"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

var errAppNotInitialized = errors.New("app not initialized")

// App is an Fx application whose modules share one loaded configuration.
type App struct {
	app    *fx.App
	config *config.Result
}

// NewApp creates a new instance of App with Fx configured. With WithConfig
// the configuration is loaded here, before any module is started; a fatal
// load error is returned by Start.
func NewApp(opts ...Option) *App {
	var options Options

	for _, apply := range opts {
		apply(&options)
	}

	app := &App{}
	app.app = app.configure(&options)

	return app
}

func (app *App) configure(options *Options) *fx.App {
	loggerConfig := logging.LoggerConfig{Level: options.LogLevel, Format: options.LogFormat}

	output := options.LogOutput
	if output == nil {
		output = os.Stderr
	}

	logger := logging.NewLogger(loggerConfig, output)
	slog.SetDefault(logger)

	modules := []fx.Option{
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		fx.Supply(loggerConfig),
		fx.Supply(logger),
	}

	if options.LoadConfig {
		modules = append(modules,
			config.NewModule(options.Config...),
			fx.Populate(&app.config),
		)
	}

	return fx.New(append(modules, fx.Options(options.Modules...))...)
}

// Config returns the configuration loaded by NewApp, or nil when the app
// was built without WithConfig or the load failed.
func (app *App) Config() *config.Result {
	if app == nil {
		return nil
	}

	return app.config
}

// Start starts the Fx application.
func (app *App) Start() error {
	if app != nil && app.app != nil {
		err := app.app.Start(context.Background())
		if err != nil {
			return fmt.Errorf("failed to start app: %w", err)
		}

		return nil
	}

	return errAppNotInitialized
}

// Run starts the application and blocks until an OS signal is received, then shuts down gracefully.
func (app *App) Run() {
	if app == nil || app.app == nil {
		slog.Error("attempted to run an uninitialized app")

		return
	}

	app.app.Run()
}

// Stop stops the Fx application gracefully.
func (app *App) Stop() error {
	if app != nil && app.app != nil {
		err := app.app.Stop(context.Background())
		if err != nil {
			return fmt.Errorf("failed to stop app: %w", err)
		}

		return nil
	}

	return errAppNotInitialized
}
