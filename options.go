package di

import (
	"io"

	"github.com/0xalexb/hjarta-config/config"

	"go.uber.org/fx"
)

// Options holds configuration settings for the application.
type Options struct {
	Modules   []fx.Option
	LogLevel  string
	LogFormat string
	// LogOutput receives the application log. Defaults to os.Stderr.
	LogOutput io.Writer
	// LoadConfig installs the configuration module built from Config.
	LoadConfig bool
	Config     []config.Option
}

// Option defines a function type for applying configuration options.
type Option func(*Options)

// WithModules adds Fx modules to the application.
func WithModules(modules ...fx.Option) Option {
	return func(opts *Options) {
		opts.Modules = append(opts.Modules, modules...)
	}
}

// WithConfig loads and resolves the configuration while the container is
// built. Modules can then depend on *config.Result and *tree.Tree, and
// App.Config returns the result. Repeated calls add to the same load.
// The application logger is used unless config.WithLogger is passed.
func WithConfig(opts ...config.Option) Option {
	return func(o *Options) {
		o.LoadConfig = true
		o.Config = append(o.Config, opts...)
	}
}

// WithLogLevel sets the log level for the application.
// Valid levels are: "debug", "info", "warn", "error".
// If not set or invalid, defaults to "info".
func WithLogLevel(level string) Option {
	return func(opts *Options) {
		opts.LogLevel = level
	}
}

// WithLogFormat sets the log output format, "json" (default) or "text".
func WithLogFormat(format string) Option {
	return func(opts *Options) {
		opts.LogFormat = format
	}
}

// WithLogOutput sends the application log to w instead of os.Stderr.
func WithLogOutput(w io.Writer) Option {
	return func(opts *Options) {
		opts.LogOutput = w
	}
}
