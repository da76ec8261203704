package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/0xalexb/hjarta-config/config"
	"github.com/0xalexb/hjarta-config/config/tree"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

var (
	// ErrUnknownOutput is returned for an --output value other than json or yaml.
	ErrUnknownOutput = errors.New("unknown output format")

	// ErrIncomplete is returned when files failed to load or references stayed unresolved.
	ErrIncomplete = errors.New("configuration is incomplete")
)

type renderFlags struct {
	load   loadFlags
	output string
	strict bool
	watch  bool
}

func newRenderCommand() *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the merged and resolved configuration",
		Long: `Render merges the given files, resolves secret references and writes the
resulting tree to stdout. Resolved secret values are included in the output.`,
		Example: `  hjarta-config render -r ./config -f default.yaml -f production.yaml -p ssm
  hjarta-config render -f /etc/app/config.json --output yaml --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, flags)
		},
	}

	flags.load.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", outputJSON, "output format: json or yaml")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail when a file could not be loaded or a reference stayed unresolved")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-render whenever one of the files changes")

	return cmd
}

func runRender(cmd *cobra.Command, flags *renderFlags) error {
	output := strings.ToLower(flags.output)
	if output != outputJSON && output != outputYAML {
		return fmt.Errorf("%w: %q", ErrUnknownOutput, flags.output)
	}

	ctx := cmd.Context()
	logger := flags.load.logger(cmd.ErrOrStderr())

	opts, release, err := flags.load.options(ctx, logger)
	if err != nil {
		return err
	}
	defer release()

	loader := config.NewLoader(opts...)

	if flags.watch {
		watcher := config.NewWatcher(loader, config.WithOnChange(func(result *config.Result) {
			if err := writeTree(cmd.OutOrStdout(), result.Tree, output); err != nil {
				logger.Error("render failed", slog.Any("error", err))
			}
		}))

		return watcher.Run(ctx)
	}

	result, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	if flags.strict {
		if err := checkComplete(result); err != nil {
			return err
		}
	}

	return writeTree(cmd.OutOrStdout(), result.Tree, output)
}

func checkComplete(result *config.Result) error {
	var errs []error
	if err := result.Err(); err != nil {
		errs = append(errs, err)
	}

	if unresolved := result.Unresolved(nil); len(unresolved) > 0 {
		errs = append(errs, fmt.Errorf("unresolved references at %s", strings.Join(unresolved, ", ")))
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrIncomplete, errors.Join(errs...))
}

func writeTree(w io.Writer, cfg *tree.Tree, output string) error {
	var (
		data []byte
		err  error
	)

	if output == outputYAML {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	}

	if err != nil {
		return fmt.Errorf("encoding %s: %w", output, err)
	}

	_, err = w.Write(data)

	return err
}
