// Package cli implements the modelc command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler"
	"github.com/syssam/modelc/compiler/gen"
	"github.com/syssam/modelc/dialect/sql/schema"
	"github.com/syssam/modelc/internal/cli/config"
)

// Version is set at build time.
var Version = "0.1.0"

type envKey struct{}

// env is the loaded configuration and logger of a command run.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

func envFrom(cmd *cobra.Command) *env {
	if e, ok := cmd.Context().Value(envKey{}).(*env); ok {
		return e
	}
	return &env{cfg: &config.Config{Models: config.DefaultModels}, logger: slog.New(slog.DiscardHandler)}
}

// genConfig returns a compiler config registering models in a fresh
// registry, so repeated runs in one process never conflict.
func (e *env) genConfig() (*gen.Config, error) {
	return gen.NewConfig(e.cfg.GenOptions(e.logger, modelc.NewRegistry())...)
}

// load compiles the configured declarations.
func (e *env) load() (*gen.Graph, error) {
	c, err := e.genConfig()
	if err != nil {
		return nil, err
	}
	return compiler.Load(e.cfg.Models, c)
}

// snapshot reads the configured registry snapshot. It returns nil if the
// file does not exist.
func (e *env) snapshot() (*modelc.Snapshot, error) {
	data, err := os.ReadFile(e.cfg.Snapshot)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return modelc.DecodeSnapshot(data)
}

// snapshotTables returns the tables of the configured snapshot, or nil.
func (e *env) snapshotTables() ([]*schema.Table, error) {
	s, err := e.snapshot()
	if err != nil || s == nil {
		return nil, err
	}
	return schema.Tables(s.Models)
}

// NewRootCmd returns the modelc command.
func NewRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:   "modelc",
		Short: "modelc - declarative model schema compiler",
		Long: `modelc compiles declarative model schemas into field metadata, typed
accessors, primary key handling and a cross-model relationship graph.

Declarations are read from YAML or JSON files. Configuration is read from
modelc.yaml, MODELC_* environment variables and flags, in increasing order of
precedence.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger, err := cfg.Log.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cfg.File != "" {
				logger.Debug("using config file", "path", cfg.File)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, &env{cfg: cfg, logger: logger}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./modelc.yaml)")
	pf.String("models", "", "declaration file or directory")
	pf.String("target", "", "output directory of generated code")
	pf.String("package", "", "import path of the generated package")
	pf.String("header", "", "header of generated files")
	pf.String("storage", "", "storage backend (postgres|mysql|sqlite)")
	pf.Int("workers", 0, "files generated in parallel")
	pf.StringSlice("features", nil, "generator features to enable")
	pf.String("snapshot", "", "registry snapshot path")
	pf.String("log-level", "", "log level (debug|info|warn|error)")
	pf.String("log-format", "", "log format (text|json)")

	_ = root.RegisterFlagCompletionFunc("storage", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"postgres", "mysql", "sqlite"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newCheckCmd(),
		newGenerateCmd(),
		newDDLCmd(),
		newGraphQLCmd(),
		newSnapshotCmd(),
	)
	return root
}

// Execute runs the modelc command.
func Execute(ctx context.Context) error {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// writeOutput writes data to path, or to the command output if path is
// empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
