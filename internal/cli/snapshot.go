package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syssam/modelc"
)

func newSnapshotCmd() *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write the registry snapshot of the declarations",
		Long: `Compile and register every declaration, then write the registry as a
msgpack snapshot. check and ddl --from-snapshot compare the declarations
against it.

With --show the existing snapshot is listed instead.`,
		Example: `  modelc snapshot
  modelc snapshot --show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if show {
				return showSnapshot(cmd)
			}
			return writeSnapshot(cmd)
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "list the models of the existing snapshot")
	return cmd
}

func writeSnapshot(cmd *cobra.Command) error {
	e := envFrom(cmd)
	g, err := e.load()
	if err != nil {
		return err
	}
	if err := g.Register(); err != nil {
		return err
	}
	s := g.Registry.Snapshot()
	data, err := s.MarshalBinary()
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, e.cfg.Snapshot, data); err != nil {
		return err
	}
	e.logger.Info("wrote snapshot", "path", e.cfg.Snapshot, "models", len(s.Models))
	fmt.Fprintf(cmd.OutOrStdout(), "wrote snapshot of %d models to %s\n", len(s.Models), e.cfg.Snapshot)
	return nil
}

func showSnapshot(cmd *cobra.Command) error {
	e := envFrom(cmd)
	s, err := e.snapshot()
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("no snapshot at %s", e.cfg.Snapshot)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tTABLE\tFIELDS\tFINGERPRINT")
	for _, m := range s.Models {
		fp, err := modelc.Fingerprint(m)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", m.QualifiedName(), m.Table, len(m.Fields), fp[:12])
	}
	fmt.Fprintf(w, "\n%d relationships\n", len(s.Relationships))
	return w.Flush()
}
