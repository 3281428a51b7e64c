package sql

import (
	"strconv"
	"strings"
	"time"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/gen"
)

const (
	uuidPkg    = "github.com/google/uuid"
	decimalPkg = "github.com/shopspring/decimal"
)

// reserved holds the methods of generated models that getters must not shadow.
var reserved = map[string]bool{
	"Metadata":      true,
	"PrimaryKey":    true,
	"PK":            true,
	"SetPrimaryKey": true,
	"Validate":      true,
	"String":        true,
}

// getter returns the name of the read accessor of a column.
func getter(f *gen.Field) string {
	name := f.StructField()
	if reserved[name] {
		return "Get" + name
	}
	return name
}

// setter returns the name of the write accessor of a column.
func setter(f *gen.Field) string {
	name := f.Setter()
	if reserved[name] {
		return name + "Field"
	}
	return name
}

// selectorField returns the name of a column in the field selector.
func selectorField(f *gen.Field) string {
	name := f.StructField()
	if name == "As" {
		return "AsField"
	}
	return name
}

// present returns the expression reporting if a key component holds a
// value. Optional components are present when non-nil; others once they
// differ from the zero value of their type.
func present(f *gen.Field, v func() *jen.Statement) jen.Code {
	if f.Optional {
		return v().Op("!=").Nil()
	}
	switch f.GoType() {
	case "uuid.UUID":
		return v().Op("!=").Qual(uuidPkg, "Nil")
	case "time.Time", "decimal.Decimal":
		return jen.Op("!").Add(v()).Dot("IsZero").Call()
	case "string":
		return v().Op("!=").Lit("")
	case "bool":
		return v()
	case "int32", "int64", "float32", "float64", "time.Duration":
		return v().Op("!=").Lit(0)
	}
	return jen.Len(v()).Op(">").Lit(0)
}

// equal returns the expression reporting if two key components hold the
// same value. Optional components are equal when both are nil or both point
// to equal values.
func equal(f *gen.Field, a, b func() *jen.Statement) jen.Code {
	if f.Optional {
		return jen.Parens(a().Op("==").Nil()).Op("==").Parens(b().Op("==").Nil()).
			Op("&&").Parens(a().Op("==").Nil().Op("||").Add(equalValue(f.GoType(),
				func() *jen.Statement { return jen.Op("*").Add(a()) },
				func() *jen.Statement { return jen.Op("*").Add(b()) },
			)))
	}
	return equalValue(f.GoType(), a, b)
}

func equalValue(typ string, a, b func() *jen.Statement) jen.Code {
	switch {
	case typ == "time.Time", typ == "decimal.Decimal":
		return a().Dot("Equal").Call(b())
	case typ == "json.RawMessage", strings.HasPrefix(typ, "[]"):
		return jen.Qual("slices", "Equal").Call(a(), b())
	case strings.HasPrefix(typ, "map["):
		return jen.Qual("maps", "Equal").Call(a(), b())
	case typ == "any":
		return jen.Qual("reflect", "DeepEqual").Call(a(), b())
	}
	return a().Op("==").Add(b())
}

// defaultValue returns the expression populating an auto-managed field on
// construction, or false if the field keeps its zero value.
func defaultValue(f *gen.Field) (jen.Code, bool) {
	switch f.Default {
	case modelc.DefaultUUID:
		if f.GoType() == "uuid.UUID" {
			return jen.Qual(uuidPkg, "New").Call(), true
		}
	case modelc.DefaultNow:
		if f.GoType() == "time.Time" {
			return jen.Qual("time", "Now").Call(), true
		}
	case modelc.DefaultStatic:
		return staticValue(f)
	}
	return nil, false
}

// staticValue renders the declared default of a field as a Go literal.
func staticValue(f *gen.Field) (jen.Code, bool) {
	s := strings.Trim(f.DefaultValue, `"'`)
	switch f.GoType() {
	case "string":
		return jen.Lit(s), true
	case "bool":
		if b, err := strconv.ParseBool(s); err == nil {
			return jen.Lit(b), true
		}
	case "int32":
		if n, err := strconv.ParseInt(s, 10, 32); err == nil {
			return jen.Lit(int32(n)), true
		}
	case "int64":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return jen.Lit(n), true
		}
	case "float32":
		if n, err := strconv.ParseFloat(s, 32); err == nil {
			return jen.Lit(float32(n)), true
		}
	case "float64":
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return jen.Lit(n), true
		}
	case "decimal.Decimal":
		return jen.Qual(decimalPkg, "RequireFromString").Call(jen.Lit(s)), true
	case "uuid.UUID":
		return jen.Qual(uuidPkg, "MustParse").Call(jen.Lit(s)), true
	case "time.Duration":
		if d, err := time.ParseDuration(s); err == nil {
			return jen.Qual("time", "Duration").Call(jen.Lit(int64(d))), true
		}
	}
	return nil, false
}
