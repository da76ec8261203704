package commands

import (
	"fmt"
	"io"

	"github.com/0xalexb/hjarta-config/config"

	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	flags := &loadFlags{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that every file loads and every secret reference resolves",
		Long: `Validate runs the full load and prints a report of loaded, missing and
broken files and of references that could not be resolved. Secret values
are never printed. The command fails when the configuration is incomplete.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func runValidate(cmd *cobra.Command, flags *loadFlags) error {
	ctx := cmd.Context()
	logger := flags.logger(cmd.ErrOrStderr())

	opts, release, err := flags.options(ctx, logger)
	if err != nil {
		return err
	}
	defer release()

	result, err := config.NewLoader(opts...).Load(ctx)
	if err != nil {
		return err
	}

	report(cmd.OutOrStdout(), result)

	return checkComplete(result)
}

func report(w io.Writer, result *config.Result) {
	_, _ = fmt.Fprintf(w, "base directory: %s\n", result.BaseDir)

	for _, path := range result.Loaded {
		_, _ = fmt.Fprintf(w, "loaded   %s\n", path)
	}

	for _, path := range result.Missing {
		_, _ = fmt.Fprintf(w, "missing  %s\n", path)
	}

	for _, fileErr := range result.FileErrors {
		_, _ = fmt.Fprintf(w, "error    %s: %v\n", fileErr.Path, fileErr.Err)
	}

	if result.ProviderErr != nil {
		_, _ = fmt.Fprintf(w, "provider %v\n", result.ProviderErr)
	}

	for _, failure := range result.SecretFailures {
		_, _ = fmt.Fprintf(w, "secret   %s (%s): %v\n", failure.Path, failure.Reference, failure.Err)
	}

	_, _ = fmt.Fprintf(w, "%d loaded, %d missing, %d file errors, %d unresolved secrets\n",
		len(result.Loaded), len(result.Missing), len(result.FileErrors), len(result.SecretFailures))
}
