package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	di "github.com/0xalexb/hjarta-config"
	"github.com/0xalexb/hjarta-config/config"
	"github.com/0xalexb/hjarta-config/config/fetcher/file"
	"github.com/0xalexb/hjarta-config/logging"

	"github.com/spf13/cobra"
)

// loadFlags are shared by every command that loads configuration.
type loadFlags struct {
	root        string
	files       []string
	fileType    string
	provider    string
	concurrency int
	maxFileSize int64
	logLevel    string
	logFormat   string
	backend     backendFlags
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hjarta-config",
		Short: "Load layered configuration and resolve secret references",
		Long: `hjarta-config merges YAML and JSON configuration files in order, later files
overriding earlier ones, and replaces secret references with values from
AWS Parameter Store, AWS Secrets Manager, Azure Key Vault, Google Secret
Manager or HashiCorp Vault.`,
		Version:       fmt.Sprintf("%s (engine: %s, built: %s)", di.Version, di.EngineVersion, di.CompiledAt),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newValidateCommand())

	return rootCmd
}

func (f *loadFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVarP(&f.root, "root", "r", "", "base directory for relative file names (default <app root>/config)")
	flags.StringSliceVarP(&f.files, "file", "f", nil, "configuration file, repeat in precedence order")
	flags.StringVar(&f.fileType, "type", "", "force the parser for every file: yaml or json")
	flags.StringVarP(&f.provider, "provider", "p", "", "secret backend: ssm, secretsmanager, keyvault, secretmanager or vault")
	flags.IntVar(&f.concurrency, "concurrency", 0, "maximum parallel secret lookups (default 8)")
	flags.Int64Var(&f.maxFileSize, "max-file-size", file.DefaultMaxSize, "largest configuration file read, in bytes")
	flags.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.StringVar(&f.logFormat, "log-format", logging.FormatText, "log format: json or text")
	f.backend.register(cmd)

	_ = cmd.MarkFlagRequired("file")
}

func (f *loadFlags) logger(w io.Writer) *slog.Logger {
	return logging.NewLogger(logging.LoggerConfig{Level: f.logLevel, Format: f.logFormat}, w)
}

// options builds the load options. The returned function releases backend
// clients and must be called once loading is done.
func (f *loadFlags) options(ctx context.Context, logger *slog.Logger) ([]config.Option, func(), error) {
	format, err := config.ParseFormat(f.fileType)
	if err != nil {
		return nil, nil, err
	}

	opts := []config.Option{
		config.WithRootDir(f.root),
		config.WithFiles(f.files...),
		config.WithFileType(format),
		config.WithConcurrency(f.concurrency),
		config.WithLogger(logger),
		config.WithMergerOptions(config.WithMaxFileSize(f.maxFileSize)),
	}

	if f.provider == "" {
		return opts, func() {}, nil
	}

	provider, closeFn, err := f.backend.provider(ctx, f.provider)
	if err != nil {
		return nil, nil, err
	}

	return append(opts, config.WithProvider(provider)), closeFn, nil
}
