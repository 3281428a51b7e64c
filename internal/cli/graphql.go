package cli

import (
	"github.com/spf13/cobra"

	"github.com/syssam/modelc/contrib/graphql"
)

func newGraphQLCmd() *cobra.Command {
	var (
		relay, inputs bool
		skip          []string
		out           string
	)
	cmd := &cobra.Command{
		Use:   "graphql",
		Short: "Print the GraphQL schema of the declarations",
		Example: `  modelc graphql --relay --inputs -o schema.graphql
  modelc graphql --skip AuditLog --skip Customer.password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := envFrom(cmd)
			g, err := e.load()
			if err != nil {
				return err
			}
			opts := []graphql.Option{graphql.Skip(skip...)}
			if relay {
				opts = append(opts, graphql.WithRelayConnection())
			}
			if inputs {
				opts = append(opts, graphql.WithMutationInputs())
			}
			sdl, err := graphql.SDL(g.Metadata(), opts...)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, []byte(sdl))
		},
	}
	cmd.Flags().BoolVar(&relay, "relay", false, "return Relay connections from list queries")
	cmd.Flags().BoolVar(&inputs, "inputs", false, "add create and update input types")
	cmd.Flags().StringArrayVar(&skip, "skip", nil, "model or Model.field to leave out")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}
