package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/modelc/compiler/gen"
)

// genSnapshot generates snapshot.go, holding the fingerprint of every model
// at generation time.
func genSnapshot(h gen.GeneratorHelper) *jen.File {
	f := h.NewFile(h.Pkg())
	modelc := h.ModelcPkg()

	f.Comment("Fingerprints maps qualified model names to the fingerprint of their")
	f.Comment("metadata when the package was generated.")
	f.Var().Id("Fingerprints").Op("=").Map(jen.String()).String().Values(jen.DictFunc(func(d jen.Dict) {
		for _, m := range h.Graph().Models {
			d[jen.Lit(m.QualifiedName())] = jen.Lit(m.Fingerprint)
		}
	}))

	f.Comment("CheckDrift reports the models whose fingerprint in r differs from the")
	f.Comment("one recorded at generation time.")
	f.Func().Id("CheckDrift").Params(jen.Id("r").Op("*").Qual(modelc, "Registry")).Error().Block(
		jen.Var().Id("errs").Index().Error(),
		jen.For(jen.List(jen.Id("name"), jen.Id("want")).Op(":=").Range().Id("Fingerprints")).Block(
			jen.List(jen.Id("got"), jen.Id("ok")).Op(":=").Id("r").Dot("Fingerprint").Call(jen.Id("name")),
			jen.Switch().Block(
				jen.Case(jen.Op("!").Id("ok")).Block(
					jen.Id("errs").Op("=").Append(jen.Id("errs"), jen.Qual(modelc, "NewNotFoundError").Call(jen.Lit("model"), jen.Id("name"))),
				),
				jen.Case(jen.Id("got").Op("!=").Id("want")).Block(
					jen.Id("errs").Op("=").Append(jen.Id("errs"), jen.Qual("fmt", "Errorf").Call(
						jen.Lit("model %s drifted: fingerprint %s, generated %s"),
						jen.Id("name"), jen.Id("got"), jen.Id("want"),
					)),
				),
			),
		),
		jen.Return(jen.Qual(modelc, "NewAggregateError").Call(jen.Id("errs").Op("..."))),
	)
	return f
}
