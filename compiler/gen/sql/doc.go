// Package sql implements the code generator of compiled models.
//
// This package renders typed Go code for the models of a gen.Graph using the
// Jennifer code generation library. It implements the gen.DialectGenerator
// interface (ModelGenerator, PackageGenerator and FeatureGenerator).
//
// # Generated Code Structure
//
// For each model of the graph, this package generates {model}.go with:
//
//   - the model struct, one unexported field per column
//   - a slice type ({Models})
//   - the New{Model} constructor taking the user supplied fields; relation
//     parameters accept a raw key or any modelc.PrimaryKeyer
//   - a getter per column and a setter per non auto-managed column
//   - PK, PrimaryKey and SetPrimaryKey
//   - {Model}CompositePK for models with a composite primary key
//   - the {Model}Fields selector, rebindable to a table alias with As
//   - the model metadata and an init function registering it
//   - Validate, when the validator feature is enabled
//
// The package file (modelc.go) lists the metadata of every model and
// registers them in a given registry. The schema/snapshot feature adds
// snapshot.go, holding the model fingerprints.
//
// # Usage
//
//	generator := gen.NewJenniferGenerator(graph, outDir)
//	generator.WithDialect(sql.NewDialect(generator))
//	err := generator.Generate(ctx)
package sql
