// Package graphql renders the GraphQL schema (SDL) of compiled models so API
// layers can expose them.
//
// Every model becomes an object type. Scalar fields map to GraphQL scalars by
// column kind; join columns are replaced by a field of the target type and
// reverse relationships get a field on the target model. Custom scalars
// (Decimal, Time, UUID, JSON, ...) are declared only when used.
//
// # Usage
//
//	g, err := compiler.Load("./models", cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sdl, err := graphql.SDL(g.Metadata(), graphql.WithRelayConnection(), graphql.WithMutationInputs())
//
// The document is built as a gqlparser AST, printed with the gqlparser
// formatter and loaded back to verify it before it is returned.
//
// # Options
//
//   - WithRelayConnection: list queries return <Model>Connection types with
//     edges, cursors and a shared PageInfo type.
//   - WithMutationInputs: Create<Model>Input and Update<Model>Input types for
//     the editable fields.
//   - Skip: leave models or fields out of the schema.
package graphql
