package sql

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/modelc/compiler/gen"
)

// genModel generates the model file ({model}.go).
func genModel(h gen.GeneratorHelper, m *gen.Model) *jen.File {
	f := h.NewFile(h.Pkg())
	genModelStruct(h, f, m)
	genConstructor(h, f, m)
	genAccessors(h, f, m)
	genPrimaryKey(h, f, m)
	if m.HasCompositeKey() {
		genCompositeKey(h, f, m)
	}
	genSelector(h, f, m)
	genMetadata(h, f, m)
	if h.FeatureEnabled(gen.FeatureValidator.Name) {
		genValidate(h, f, m)
	}
	return f
}

// genModelStruct generates the model struct, its slice type and String.
func genModelStruct(h gen.GeneratorHelper, f *jen.File, m *gen.Model) {
	f.Commentf("%s is the model stored in the %q table.", m.Name, m.Table)
	f.Type().Id(m.Name).StructFunc(func(group *jen.Group) {
		for _, c := range m.Columns() {
			group.Id(c.Param()).Add(h.GoType(c))
		}
	})

	f.Commentf("%s is a parsable slice of %s.", m.SliceName(), m.Name)
	f.Type().Id(m.SliceName()).Index().Op("*").Id(m.Name)

	recv := m.Receiver()
	var (
		format []string
		args   = []jen.Code{nil}
	)
	for _, c := range m.Columns() {
		format = append(format, c.Name+"=%v")
		args = append(args, jen.Id(recv).Dot(c.Param()))
	}
	args[0] = jen.Lit(m.Name + "(" + strings.Join(format, ", ") + ")")
	f.Comment("String implements the fmt.Stringer.")
	f.Func().Params(jen.Id(recv).Op("*").Id(m.Name)).Id("String").Params().String().Block(
		jen.Return(jen.Qual("fmt", "Sprintf").Call(args...)),
	)
}

// genConstructor generates New{Model}. Auto-managed fields are populated by
// their default policy; relation parameters accept any value convertible to
// the key of the target.
func genConstructor(h gen.GeneratorHelper, f *jen.File, m *gen.Model) {
	recv := m.Receiver()
	params := m.Params()
	var (
		hasRel bool
		auto   []string
	)
	for _, p := range params {
		if p.Param() == recv {
			recv = "_" + recv
		}
		hasRel = hasRel || p.IsRelation()
	}
	for _, c := range m.Columns() {
		if _, ok := defaultValue(c); ok && c.Auto {
			auto = append(auto, c.Name)
		}
	}

	f.Commentf("New%s creates a %s from its user supplied fields.", m.Name, m.Name)
	if len(auto) > 0 {
		f.Commentf("%s populated automatically.", sentence(auto))
	}
	results := jen.Op("*").Id(m.Name)
	if hasRel {
		results = jen.Parens(jen.List(jen.Op("*").Id(m.Name), jen.Error()))
	}
	f.Func().Id("New" + m.Name).ParamsFunc(func(g *jen.Group) {
		for _, p := range params {
			if p.IsRelation() {
				g.Id(p.Param()).Any()
				continue
			}
			g.Id(p.Param()).Add(h.GoType(p))
		}
	}).Add(results).BlockFunc(func(g *jen.Group) {
		var late []jen.Code
		g.Id(recv).Op(":=").Op("&").Id(m.Name).Values(jen.DictFunc(func(d jen.Dict) {
			for _, p := range params {
				if !p.IsRelation() {
					d[jen.Id(p.Param())] = jen.Id(p.Param())
				}
			}
			for _, c := range m.Columns() {
				v, ok := defaultValue(c)
				if !ok || !c.Auto {
					continue
				}
				if !c.Optional {
					d[jen.Id(c.Param())] = v
					continue
				}
				name := c.Param() + "Default"
				late = append(late,
					jen.Id(name).Op(":=").Add(v),
					jen.Id(recv).Dot(c.Param()).Op("=").Op("&").Id(name),
				)
			}
		}))
		for _, c := range late {
			g.Add(c)
		}
		for _, p := range params {
			if !p.IsRelation() {
				continue
			}
			jc := p.Rel.JoinColumn
			conv := "KeyAs"
			if jc.Optional {
				conv = "OptionalKeyAs"
			}
			g.List(jen.Id(jc.Param()), jen.Err()).Op(":=").Qual(h.ModelcPkg(), conv).Types(h.BaseType(jc)).Call(jen.Id(p.Param()))
			g.If(jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Qual(h.ModelcPkg(), "NewFieldError").Call(
					jen.Lit(m.Name), jen.Lit(p.Name), jen.Err().Dot("Error").Call(),
				)),
			)
			g.Id(recv).Dot(jc.Param()).Op("=").Id(jc.Param())
		}
		if hasRel {
			g.Return(jen.Id(recv), jen.Nil())
			return
		}
		g.Return(jen.Id(recv))
	})
}

// sentence lists field names in a sentence.
func sentence(names []string) string {
	switch len(names) {
	case 1:
		return names[0] + " is"
	case 2:
		return names[0] + " and " + names[1] + " are"
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1] + " are"
}

// genAccessors generates a getter per column and a setter per column that
// is not auto-managed.
func genAccessors(h gen.GeneratorHelper, f *jen.File, m *gen.Model) {
	recv := m.Receiver()
	for _, c := range m.Columns() {
		switch {
		case c.IsJoinColumn() && c.Rel != nil:
			f.Commentf("%s returns the key of the %s relation.", getter(c), c.Rel.Field.Name)
		default:
			f.Commentf("%s returns the value of the %q field.", getter(c), c.Name)
		}
		f.Func().Params(jen.Id(recv).Op("*").Id(m.Name)).Id(getter(c)).Params().Add(h.GoType(c)).Block(
			jen.Return(jen.Id(recv).Dot(c.Param())),
		)
	}
	for _, c := range m.Setters() {
		f.Commentf("%s sets the value of the %q field.", setter(c), c.Name)
		f.Func().Params(jen.Id(recv).Op("*").Id(m.Name)).Id(setter(c)).Params(jen.Id("v").Add(h.GoType(c))).Block(
			jen.Id(recv).Dot(c.Param()).Op("=").Id("v"),
		)
	}
}

// genPrimaryKey generates PK, PrimaryKey and SetPrimaryKey.
func genPrimaryKey(h gen.GeneratorHelper, f *jen.File, m *gen.Model) {
	recv, k := m.Receiver(), "key"
	if recv == k {
		k = "pk"
	}
	field := func(c *gen.Field) func() *jen.Statement {
		return func() *jen.Statement { return jen.Id(recv).Dot(c.Param()) }
	}

	f.Comment("PK returns the primary key and reports if it is set.")
	f.Func().Params(jen.Id(recv).Op("*").Id(m.Name)).Id("PK").Params().Params(h.KeyType(m), jen.Bool()).BlockFunc(func(g *jen.Group) {
		if !m.HasCompositeKey() {
			pk := m.PrimaryKey[0]
			g.Return(field(pk)(), present(pk, field(pk)))
			return
		}
		g.Id(k).Op(":=").Id(m.CompositeKeyName()).Values(jen.DictFunc(func(d jen.Dict) {
			for _, c := range m.PrimaryKey {
				d[jen.Id(c.StructField())] = field(c)()
			}
		}))
		g.Return(jen.Id(k), jen.Id(k).Dot("Present").Call())
	})

	f.Comment("PrimaryKey implements modelc.PrimaryKeyer.")
	f.Func().Params(jen.Id(recv).Op("*").Id(m.Name)).Id("PrimaryKey").Params().Params(jen.Any(), jen.Bool()).Block(
		jen.Return(jen.Id(recv).Dot("PK").Call()),
	)

	f.Comment("SetPrimaryKey sets the primary key.")
	f.Func().Params(jen.Id(recv).Op("*").Id(m.Name)).Id("SetPrimaryKey").Params(jen.Id(k).Add(h.KeyType(m))).BlockFunc(func(g *jen.Group) {
		if !m.HasCompositeKey() {
			g.Add(field(m.PrimaryKey[0])()).Op("=").Id(k)
			return
		}
		for _, c := range m.PrimaryKey {
			g.Add(field(c)()).Op("=").Id(k).Dot(c.StructField())
		}
	})
}

// genCompositeKey generates the composite key type of the model.
func genCompositeKey(h gen.GeneratorHelper, f *jen.File, m *gen.Model) {
	name := m.CompositeKeyName()
	fieldsVar := m.VarName() + "KeyFields"
	key := func(c *gen.Field) func() *jen.Statement {
		return func() *jen.Statement { return jen.Id("k").Dot(c.StructField()) }
	}

	f.Var().Id(fieldsVar).Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
		for _, c := range m.PrimaryKey {
			g.Lit(c.Name)
		}
	})

	f.Commentf("%s is the composite primary key of %s.", name, m.Name)
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		for _, c := range m.PrimaryKey {
			g.Id(c.StructField()).Add(h.GoType(c))
		}
	})

	f.Comment("Present reports if every component of the key is set.")
	all := &jen.Statement{}
	for i, c := range m.PrimaryKey {
		if i > 0 {
			all.Op("&&")
		}
		all.Add(present(c, key(c)))
	}
	f.Func().Params(jen.Id("k").Id(name)).Id("Present").Params().Bool().Block(
		jen.Return(all),
	)

	f.Comment("Tuple returns the key components in key order.")
	f.Func().Params(jen.Id("k").Id(name)).Id("Tuple").Params().Index().Any().Block(
		jen.Return(jen.Index().Any().ValuesFunc(func(g *jen.Group) {
			for _, c := range m.PrimaryKey {
				g.Add(key(c)())
			}
		})),
	)

	f.Commentf("%sFromTuple is the inverse of %s.Tuple.", name, name)
	f.Func().Id(name+"FromTuple").Params(jen.Id("t").Index().Any()).Params(jen.Id(name), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Var().Id("k").Id(name)
		g.If(jen.Len(jen.Id("t")).Op("!=").Lit(len(m.PrimaryKey))).Block(
			jen.Return(jen.Id("k"), jen.Qual("fmt", "Errorf").Call(
				jen.Lit(fmt.Sprintf("%s: key tuple has %%d components, want %d", m.Name, len(m.PrimaryKey))),
				jen.Len(jen.Id("t")),
			)),
		)
		for i, c := range m.PrimaryKey {
			v := fmt.Sprintf("v%d", i)
			g.List(jen.Id(v), jen.Id("ok")).Op(":=").Id("t").Index(jen.Lit(i)).Assert(h.GoType(c))
			g.If(jen.Op("!").Id("ok")).Block(
				jen.Return(jen.Id("k"), jen.Qual("fmt", "Errorf").Call(
					jen.Lit(fmt.Sprintf("%s: unexpected type %%T for key field %s", m.Name, c.Name)),
					jen.Id("t").Index(jen.Lit(i)),
				)),
			)
			g.Id("k").Dot(c.StructField()).Op("=").Id(v)
		}
		g.Return(jen.Id("k"), jen.Nil())
	})

	f.Comment("PKValues returns the key as a field-name map.")
	f.Func().Params(jen.Id("k").Id(name)).Id("PKValues").Params().Map(jen.String()).Any().Block(
		jen.Return(jen.Map(jen.String()).Any().Values(jen.DictFunc(func(d jen.Dict) {
			for _, c := range m.PrimaryKey {
				d[jen.Lit(c.Name)] = key(c)()
			}
		}))),
	)

	f.Comment("Key returns the key as a modelc.CompositeKey.")
	f.Func().Params(jen.Id("k").Id(name)).Id("Key").Params().Qual(h.ModelcPkg(), "CompositeKey").Block(
		jen.Return(jen.Qual(h.ModelcPkg(), "MustCompositeKey").Call(jen.Id(fieldsVar), jen.Id("k").Dot("Tuple").Call().Op("..."))),
	)

	f.Comment("Hash returns a hash of the key. Equal keys have equal hashes.")
	f.Func().Params(jen.Id("k").Id(name)).Id("Hash").Params().Uint64().Block(
		jen.Return(jen.Id("k").Dot("Key").Call().Dot("Hash").Call()),
	)

	f.Comment("Equal reports if both keys have the same components.")
	same := &jen.Statement{}
	for i, c := range m.PrimaryKey {
		if i > 0 {
			same.Op("&&")
		}
		same.Add(equal(c, key(c), func() *jen.Statement { return jen.Id("o").Dot(c.StructField()) }))
	}
	f.Func().Params(jen.Id("k").Id(name)).Id("Equal").Params(jen.Id("o").Id(name)).Bool().Block(
		jen.Return(same),
	)

	f.Comment("String formats the key as (a=1, b=2).")
	f.Func().Params(jen.Id("k").Id(name)).Id("String").Params().String().Block(
		jen.Return(jen.Id("k").Dot("Key").Call().Dot("String").Call()),
	)
}

// genSelector generates the field selector of the model.
func genSelector(h gen.GeneratorHelper, f *jen.File, m *gen.Model) {
	name := m.SelectorName()
	fieldRef := jen.Qual(h.ModelcPkg(), "FieldRef")

	f.Commentf("%s references the columns of %s.", name, m.Name)
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		for _, c := range m.Columns() {
			g.Id(selectorField(c)).Add(fieldRef)
		}
	})

	f.Commentf("New%s returns the selector of the %q table.", name, m.Table)
	f.Func().Id("New" + name).Params().Id(name).Block(
		jen.Return(jen.Id(name).Values(jen.DictFunc(func(d jen.Dict) {
			for _, c := range m.Columns() {
				d[jen.Id(selectorField(c))] = jen.Qual(h.ModelcPkg(), "NewFieldRef").Call(
					jen.Lit(m.Table), jen.Lit(c.Name), jen.Lit(c.Column),
				)
			}
		}))),
	)

	f.Comment("As returns a copy of the selector bound to the given table alias.")
	f.Func().Params(jen.Id("s").Id(name)).Id("As").Params(jen.Id("alias").String()).Id(name).BlockFunc(func(g *jen.Group) {
		for _, c := range m.Columns() {
			g.Id("s").Dot(selectorField(c)).Op("=").Id("s").Dot(selectorField(c)).Dot("As").Call(jen.Id("alias"))
		}
		g.Return(jen.Id("s"))
	})
}

// genMetadata generates the metadata variable of the model, its accessor and
// the init function registering it.
func genMetadata(h gen.GeneratorHelper, f *jen.File, m *gen.Model) {
	meta := m.VarName() + "Meta"
	f.Var().Id(meta).Op("=").Add(metadata{pkg: h.ModelcPkg()}.model(m.Meta))

	f.Commentf("Metadata returns the compiled metadata of %s.", m.Name)
	f.Func().Params(jen.Op("*").Id(m.Name)).Id("Metadata").Params().Op("*").Qual(h.ModelcPkg(), "ModelMetadata").Block(
		jen.Return(jen.Id(meta)),
	)

	if h.FeatureEnabled(gen.FeatureRegister.Name) {
		f.Func().Id("init").Params().Block(
			jen.Qual(h.ModelcPkg(), "MustRegister").Call(jen.Id(meta)),
		)
	}
}

// genValidate generates Validate, checking every column that declares a
// validator.
func genValidate(h gen.GeneratorHelper, f *jen.File, m *gen.Model) {
	recv := m.Receiver()
	meta := m.VarName() + "Meta"
	f.Comment("Validate checks the fields against their declared validators.")
	f.Func().Params(jen.Id(recv).Op("*").Id(m.Name)).Id("Validate").Params().Error().BlockFunc(func(g *jen.Group) {
		g.Var().Id("errs").Index().Error()
		for _, c := range m.Columns() {
			if !validated(c) {
				continue
			}
			g.If(
				jen.Err().Op(":=").Qual(h.ModelcPkg(), "ValidateValue").Call(jen.Id(meta), jen.Lit(c.Name), jen.Id(recv).Dot(c.Param())),
				jen.Err().Op("!=").Nil(),
			).Block(
				jen.Id("errs").Op("=").Append(jen.Id("errs"), jen.Err()),
			)
		}
		g.Return(jen.Qual(h.ModelcPkg(), "NewAggregateError").Call(jen.Id("errs").Op("...")))
	})
}

// validated reports if a column has validators or may not be left blank.
func validated(c *gen.Field) bool {
	if c.IsJoinColumn() {
		return false
	}
	for _, attr := range []string{"min_length", "max_length", "email", "url", "min_value", "max_value"} {
		if _, ok := c.Attrs[attr]; ok {
			return true
		}
	}
	return c.ColumnType.Kind.Textual() && !c.Blank && !c.Optional && !c.Auto
}
