package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/modelc/compiler/gen"
)

// genPackage generates the package file (modelc.go).
func genPackage(h gen.GeneratorHelper) *jen.File {
	f := h.NewFile(h.Pkg())
	models := h.Graph().Models

	f.Comment("Model is implemented by every generated model.")
	f.Type().Id("Model").Interface(
		jen.Qual(h.ModelcPkg(), "PrimaryKeyer"),
		jen.Id("Metadata").Params().Op("*").Qual(h.ModelcPkg(), "ModelMetadata"),
	)
	if len(models) > 0 {
		f.Var().DefsFunc(func(g *jen.Group) {
			for _, m := range models {
				g.Id("_").Id("Model").Op("=").Parens(jen.Op("*").Id(m.Name)).Parens(jen.Nil())
			}
		})
	}

	f.Comment("Metadata returns the metadata of every model of the package, in")
	f.Comment("declaration order.")
	f.Func().Id("Metadata").Params().Index().Op("*").Qual(h.ModelcPkg(), "ModelMetadata").Block(
		jen.Return(jen.Index().Op("*").Qual(h.ModelcPkg(), "ModelMetadata").ValuesFunc(func(g *jen.Group) {
			for _, m := range models {
				g.Id(m.VarName() + "Meta")
			}
		})),
	)

	f.Comment("Register adds the models of the package to the registry r.")
	f.Func().Id("Register").Params(jen.Id("r").Op("*").Qual(h.ModelcPkg(), "Registry")).Error().Block(
		jen.Var().Id("errs").Index().Error(),
		jen.For(jen.List(jen.Id("_"), jen.Id("m")).Op(":=").Range().Id("Metadata").Call()).Block(
			jen.If(
				jen.List(jen.Id("_"), jen.Err()).Op(":=").Id("r").Dot("Register").Call(jen.Id("m")),
				jen.Err().Op("!=").Nil(),
			).Block(
				jen.Id("errs").Op("=").Append(jen.Id("errs"), jen.Err()),
			),
		),
		jen.Return(jen.Qual(h.ModelcPkg(), "NewAggregateError").Call(jen.Id("errs").Op("..."))),
	)
	return f
}
