// Command hjarta-config loads layered configuration files, resolves their
// secret references and prints or checks the result.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/0xalexb/hjarta-config/cmd/hjarta-config/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := commands.Execute(ctx)

	stop()

	if err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
