package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/modelc/compiler"
)

func newGenerateCmd() *cobra.Command {
	var (
		watchMode bool
		debounce  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the typed Go package of the declarations",
		Example: `  # Generate into ./modelc
  modelc generate --package example.com/app/modelc

  # Regenerate whenever a declaration changes
  modelc generate --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := envFrom(cmd)
			if cmd.Flags().Changed("debounce") {
				e.cfg.Watch.Debounce = debounce
			}
			return runGenerate(cmd.Context(), e, watchMode)
		},
	}
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "regenerate when declarations change")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "delay between a change and regeneration (default from config)")
	return cmd
}

func runGenerate(ctx context.Context, e *env, watchMode bool) error {
	generate := func(ctx context.Context) error {
		c, err := e.genConfig()
		if err != nil {
			return err
		}
		if err := compiler.Generate(ctx, e.cfg.Models, c); err != nil {
			return err
		}
		e.logger.Info("generated package", "models", e.cfg.Models, "target", e.cfg.Target)
		return nil
	}
	err := generate(ctx)
	if !watchMode {
		return err
	}
	if err != nil {
		e.logger.Error("generate failed", "error", err)
	}
	return watch(ctx, e.cfg.Models, e.cfg.Watch.Debounce, e.logger, generate)
}
