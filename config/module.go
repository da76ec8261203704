package config

import (
	"context"
	"log/slog"

	"github.com/0xalexb/hjarta-config/config/tree"

	"go.uber.org/fx"
)

// ModuleName is the Fx module name used by NewModule.
const ModuleName = "config"

type moduleParams struct {
	fx.In

	Logger *slog.Logger `optional:"true"`
}

// NewModule creates an Fx module that loads the configuration once at
// construction and provides *Result and the resolved *tree.Tree.
// The application logger is used unless opts set one.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func NewModule(opts ...Option) fx.Option {
	return fx.Module(ModuleName,
		fx.Provide(
			func(params moduleParams) (*Result, error) {
				loadOpts := append([]Option{WithLogger(params.Logger)}, opts...)

				return Load(context.Background(), loadOpts...)
			},
			func(result *Result) *tree.Tree {
				return result.Tree
			},
		),
	)
}
