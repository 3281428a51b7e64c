package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/modelc"
)

var kindNames = map[modelc.TypeKind]string{
	modelc.KindInvalid:      "KindInvalid",
	modelc.KindInteger:      "KindInteger",
	modelc.KindBigInteger:   "KindBigInteger",
	modelc.KindSmallInteger: "KindSmallInteger",
	modelc.KindBoolean:      "KindBoolean",
	modelc.KindReal:         "KindReal",
	modelc.KindDouble:       "KindDouble",
	modelc.KindDecimal:      "KindDecimal",
	modelc.KindVarChar:      "KindVarChar",
	modelc.KindChar:         "KindChar",
	modelc.KindText:         "KindText",
	modelc.KindDate:         "KindDate",
	modelc.KindTime:         "KindTime",
	modelc.KindTimestamp:    "KindTimestamp",
	modelc.KindTimestampTZ:  "KindTimestampTZ",
	modelc.KindInterval:     "KindInterval",
	modelc.KindUUID:         "KindUUID",
	modelc.KindJSON:         "KindJSON",
	modelc.KindJSONB:        "KindJSONB",
	modelc.KindHStore:       "KindHStore",
	modelc.KindCIText:       "KindCIText",
	modelc.KindInt4Range:    "KindInt4Range",
	modelc.KindInt8Range:    "KindInt8Range",
	modelc.KindNumRange:     "KindNumRange",
	modelc.KindDateRange:    "KindDateRange",
	modelc.KindTsRange:      "KindTsRange",
	modelc.KindTsTzRange:    "KindTsTzRange",
	modelc.KindTsVector:     "KindTsVector",
	modelc.KindTsQuery:      "KindTsQuery",
	modelc.KindArray:        "KindArray",
}

var policyNames = map[modelc.DefaultPolicy]string{
	modelc.DefaultZero:     "DefaultZero",
	modelc.DefaultUUID:     "DefaultUUID",
	modelc.DefaultNow:      "DefaultNow",
	modelc.DefaultDatabase: "DefaultDatabase",
	modelc.DefaultEmpty:    "DefaultEmpty",
	modelc.DefaultStatic:   "DefaultStatic",
}

var relationNames = map[modelc.RelationshipType]string{
	modelc.ForeignKey: "ForeignKey",
	modelc.OneToOne:   "OneToOne",
	modelc.OneToMany:  "OneToMany",
	modelc.ManyToMany: "ManyToMany",
}

var constraintNames = map[modelc.ConstraintType]string{
	modelc.ConstraintCheck:  "ConstraintCheck",
	modelc.ConstraintUnique: "ConstraintUnique",
}

// metadata renders model metadata as a Go literal of the modelc package at
// pkg. Zero values are left out; nil and empty collections are kept apart
// so the literal has the fingerprint of the compiled metadata.
type metadata struct {
	pkg string
}

func (r metadata) qual(name string) *jen.Statement { return jen.Qual(r.pkg, name) }

func (r metadata) model(m *modelc.ModelMetadata) jen.Code {
	d := jen.Dict{}
	str(d, "AppLabel", m.AppLabel)
	str(d, "Name", m.Name)
	str(d, "Table", m.Table)
	str(d, "VerboseName", m.VerboseName)
	if m.Ordering != nil {
		d[jen.Id("Ordering")] = stringSlice(m.Ordering)
	}
	if m.Fields != nil {
		d[jen.Id("Fields")] = jen.Index().Op("*").Add(r.qual("FieldMetadata")).ValuesFunc(func(g *jen.Group) {
			for _, f := range m.Fields {
				g.Add(r.field(f))
			}
		})
	}
	if m.PrimaryKey != nil {
		d[jen.Id("PrimaryKey")] = stringSlice(m.PrimaryKey)
	}
	if m.Indexes != nil {
		d[jen.Id("Indexes")] = jen.Index().Op("*").Add(r.qual("IndexMetadata")).ValuesFunc(func(g *jen.Group) {
			for _, idx := range m.Indexes {
				v := jen.Dict{}
				str(v, "Name", idx.Name)
				if idx.Fields != nil {
					v[jen.Id("Fields")] = stringSlice(idx.Fields)
				}
				flag(v, "Unique", idx.Unique)
				g.Values(v)
			}
		})
	}
	if m.Constraints != nil {
		d[jen.Id("Constraints")] = jen.Index().Op("*").Add(r.qual("ConstraintMetadata")).ValuesFunc(func(g *jen.Group) {
			for _, c := range m.Constraints {
				v := jen.Dict{jen.Id("Type"): r.qual(constraintNames[c.Type])}
				str(v, "Name", c.Name)
				if c.Fields != nil {
					v[jen.Id("Fields")] = stringSlice(c.Fields)
				}
				str(v, "Definition", c.Definition)
				str(v, "Condition", c.Condition)
				g.Values(v)
			}
		})
	}
	if m.ManyToMany != nil {
		d[jen.Id("ManyToMany")] = jen.Index().Op("*").Add(r.qual("ManyToManyMetadata")).ValuesFunc(func(g *jen.Group) {
			for _, mm := range m.ManyToMany {
				v := jen.Dict{}
				str(v, "FieldName", mm.FieldName)
				str(v, "To", mm.To)
				str(v, "RelatedName", mm.RelatedName)
				str(v, "Through", mm.Through)
				str(v, "SourceField", mm.SourceField)
				str(v, "TargetField", mm.TargetField)
				g.Values(v)
			}
		})
	}
	if m.Relationships != nil {
		d[jen.Id("Relationships")] = jen.Index().Add(r.qual("RelationshipMetadata")).ValuesFunc(func(g *jen.Group) {
			for _, rel := range m.Relationships {
				g.Add(r.relationship(rel))
			}
		})
	}
	return jen.Op("&").Add(r.qual("ModelMetadata")).Values(d)
}

func (r metadata) field(f *modelc.FieldMetadata) jen.Code {
	d := jen.Dict{
		jen.Id("Type"):     r.columnType(f.Type),
		jen.Id("Editable"): jen.Lit(f.Editable),
		jen.Id("Default"):  r.qual(policyNames[f.Default]),
	}
	str(d, "Name", f.Name)
	str(d, "Column", f.Column)
	str(d, "Kind", f.Kind)
	str(d, "GoType", f.GoType)
	flag(d, "Optional", f.Optional)
	flag(d, "PrimaryKey", f.PrimaryKey)
	flag(d, "AutoIncrement", f.AutoIncrement)
	flag(d, "Nullable", f.Nullable)
	flag(d, "Unique", f.Unique)
	flag(d, "Index", f.Index)
	flag(d, "Blank", f.Blank)
	flag(d, "Auto", f.Auto)
	str(d, "DefaultValue", f.DefaultValue)
	flag(d, "JoinColumn", f.JoinColumn)
	str(d, "Relation", f.Relation)
	str(d, "References", f.References)
	if f.Attributes != nil {
		attrs := jen.Dict{}
		for k, v := range f.Attributes {
			attrs[jen.Lit(k)] = jen.Lit(v)
		}
		d[jen.Id("Attributes")] = jen.Map(jen.String()).String().Values(attrs)
	}
	return jen.Values(d)
}

func (r metadata) columnType(t modelc.ColumnType) jen.Code {
	d := jen.Dict{jen.Id("Kind"): r.qual(kindNames[t.Kind])}
	num(d, "Size", t.Size)
	num(d, "Precision", t.Precision)
	num(d, "Scale", t.Scale)
	if t.Elem != nil {
		d[jen.Id("Elem")] = jen.Op("&").Add(r.columnType(*t.Elem))
	}
	return r.qual("ColumnType").Values(d)
}

func (r metadata) relationship(rel modelc.RelationshipMetadata) jen.Code {
	d := jen.Dict{jen.Id("Type"): r.qual(relationNames[rel.Type])}
	str(d, "FromModel", rel.FromModel)
	str(d, "ToModel", rel.ToModel)
	str(d, "FieldName", rel.FieldName)
	str(d, "RelatedName", rel.RelatedName)
	str(d, "DBColumn", rel.DBColumn)
	str(d, "ThroughTable", rel.ThroughTable)
	str(d, "OnDelete", rel.OnDelete)
	str(d, "OnUpdate", rel.OnUpdate)
	flag(d, "Reverse", rel.Reverse)
	return jen.Values(d)
}

func str(d jen.Dict, key, v string) {
	if v != "" {
		d[jen.Id(key)] = jen.Lit(v)
	}
}

func flag(d jen.Dict, key string, v bool) {
	if v {
		d[jen.Id(key)] = jen.True()
	}
}

func num(d jen.Dict, key string, v int) {
	if v != 0 {
		d[jen.Id(key)] = jen.Lit(v)
	}
}

func stringSlice(s []string) jen.Code {
	return jen.Index().String().ValuesFunc(func(g *jen.Group) {
		for _, v := range s {
			g.Lit(v)
		}
	})
}
