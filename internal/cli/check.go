package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/modelc/dialect/sql/schema"
)

func newCheckCmd() *cobra.Command {
	var allow struct {
		dropColumn, dropTable, dropIndex, nullToNotNull bool
	}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compile declarations and validate the resulting schema",
		Long: `Compile every declaration, validate the resulting tables and, when a
registry snapshot exists, the changes since the snapshot.

Changes that may lose data fail the check unless allowed by a flag.`,
		Example: `  # Validate the declarations in ./models
  modelc check

  # Allow dropping columns since the last snapshot
  modelc check --allow-drop-column`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts []schema.ValidateOption
			if allow.dropColumn {
				opts = append(opts, schema.AllowDropColumn())
			}
			if allow.dropTable {
				opts = append(opts, schema.AllowDropTable())
			}
			if allow.dropIndex {
				opts = append(opts, schema.AllowDropIndex())
			}
			if allow.nullToNotNull {
				opts = append(opts, schema.AllowNullToNotNull())
			}
			return runCheck(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&allow.dropColumn, "allow-drop-column", false, "allow dropped columns")
	cmd.Flags().BoolVar(&allow.dropTable, "allow-drop-table", false, "allow dropped tables")
	cmd.Flags().BoolVar(&allow.dropIndex, "allow-drop-index", false, "allow dropped indexes")
	cmd.Flags().BoolVar(&allow.nullToNotNull, "allow-null-to-not-null", false, "allow nullable columns to become NOT NULL")
	return cmd
}

func runCheck(cmd *cobra.Command, opts []schema.ValidateOption) error {
	e := envFrom(cmd)
	g, err := e.load()
	if err != nil {
		return err
	}
	models := g.Metadata()
	tables, err := schema.Tables(models)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d models compiled into %d tables\n", len(models), len(tables))

	result := schema.ValidateSchema(tables)
	fmt.Fprintln(out, result.String())
	failed := result.HasErrors()

	current, err := e.snapshotTables()
	if err != nil {
		return fmt.Errorf("reading snapshot %s: %w", e.cfg.Snapshot, err)
	}
	if current != nil {
		diff := schema.ValidateDiff(current, tables, opts...)
		fmt.Fprintf(out, "Changes since %s:\n%s\n", e.cfg.Snapshot, diff)
		failed = failed || diff.HasErrors()
	}
	e.logger.Debug("check finished", "models", len(models), "failed", failed)
	if failed {
		return errors.New("schema check failed")
	}
	return nil
}
