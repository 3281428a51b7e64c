package cli

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/modelc/dialect/sql/schema"
)

func newDDLCmd() *cobra.Command {
	var (
		fromSnapshot bool
		out          string
	)
	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Print the DDL of the declarations for the storage backend",
		Long: `Plan the DDL of the declarations for the configured storage backend.
Planning never connects to a database.

With --from-snapshot only the statements migrating the snapshot schema to
the current declarations are printed.`,
		Example: `  modelc ddl --storage postgres
  modelc ddl --storage sqlite --from-snapshot -o migrations/next.sql`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := envFrom(cmd)
			if e.cfg.Storage == "" {
				return errors.New("ddl requires a storage backend: set --storage or storage in modelc.yaml")
			}
			g, err := e.load()
			if err != nil {
				return err
			}
			tables, err := schema.Tables(g.Metadata())
			if err != nil {
				return err
			}
			var stmts []string
			if fromSnapshot {
				current, err := e.snapshotTables()
				switch {
				case err != nil:
					return fmt.Errorf("reading snapshot %s: %w", e.cfg.Snapshot, err)
				case current == nil:
					return fmt.Errorf("no snapshot at %s: run modelc snapshot first", e.cfg.Snapshot)
				}
				stmts, err = schema.PlanMigration(cmd.Context(), e.cfg.Storage, current, tables)
				if err != nil {
					return err
				}
			} else if stmts, err = schema.PlanDDL(cmd.Context(), e.cfg.Storage, tables); err != nil {
				return err
			}
			e.logger.Debug("planned ddl", "storage", e.cfg.Storage, "statements", len(stmts))
			var buf bytes.Buffer
			if len(stmts) == 0 {
				buf.WriteString("-- no changes\n")
			}
			for _, s := range stmts {
				fmt.Fprintf(&buf, "%s;\n", s)
			}
			return writeOutput(cmd, out, buf.Bytes())
		},
	}
	cmd.Flags().BoolVar(&fromSnapshot, "from-snapshot", false, "plan a migration from the registry snapshot")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}
