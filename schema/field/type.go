package field

import (
	"fmt"
	"strings"
	"unicode"
)

// A Type represents a declared field type.
type Type uint8

// List of declared field types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeString
	TypeText
	TypeDecimal
	TypeDate
	TypeClock
	TypeTimestamp
	TypeTime
	TypeUUID
	TypeJSON
	TypeMap
	TypeArray
	TypeForeignKey
	TypeOneToOne
	TypeOneToMany
	TypeManyToMany
	TypeOther
	endTypes
)

var typeNames = [...]string{
	TypeInvalid:    "invalid",
	TypeBool:       "bool",
	TypeInt32:      "int32",
	TypeInt64:      "int64",
	TypeFloat32:    "float32",
	TypeFloat64:    "float64",
	TypeString:     "string",
	TypeText:       "text",
	TypeDecimal:    "decimal",
	TypeDate:       "date",
	TypeClock:      "time",
	TypeTimestamp:  "timestamp",
	TypeTime:       "time.Time",
	TypeUUID:       "uuid.UUID",
	TypeJSON:       "json",
	TypeMap:        "map[string]string",
	TypeArray:      "array",
	TypeForeignKey: "ForeignKey",
	TypeOneToOne:   "OneToOne",
	TypeOneToMany:  "OneToMany",
	TypeManyToMany: "ManyToMany",
	TypeOther:      "other",
}

// String returns the canonical spelling of the type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Valid reports if the given type is a known type.
func (t Type) Valid() bool { return t > TypeInvalid && t < endTypes }

// Numeric reports if the given type is a numeric type.
func (t Type) Numeric() bool {
	return t == TypeInt32 || t == TypeInt64 || t == TypeFloat32 || t == TypeFloat64 || t == TypeDecimal
}

// Integer reports if the given type is an integer type.
func (t Type) Integer() bool { return t == TypeInt32 || t == TypeInt64 }

// Relation reports if the type is a relationship container.
func (t Type) Relation() bool {
	return t >= TypeForeignKey && t <= TypeManyToMany
}

// Temporal reports if the type holds a date, a time of day or a timestamp.
func (t Type) Temporal() bool {
	return t == TypeDate || t == TypeClock || t == TypeTimestamp || t == TypeTime
}

// TypeInfo holds the parsed form of a declared type expression.
type TypeInfo struct {
	Type     Type
	Ident    string    // declared expression, e.g. "*time.Time"
	Optional bool      // declared as *T
	Elem     *TypeInfo // element type of arrays
	Params   []string  // relationship container parameters
}

// String returns the declared expression.
func (t TypeInfo) String() string {
	if t.Ident != "" {
		return t.Ident
	}
	return t.Type.String()
}

// Target returns the related model named by a relationship container. For
// ManyToMany[S, T] it is T.
func (t TypeInfo) Target() string {
	if len(t.Params) == 0 {
		return ""
	}
	return t.Params[len(t.Params)-1]
}

// Comparable reports if values of the type support equality and hashing.
func (t TypeInfo) Comparable() bool {
	switch t.Type {
	case TypeJSON, TypeMap, TypeArray, TypeInvalid:
		return false
	}
	return !t.Type.Relation()
}

// GoType returns the Go type used to hold values of the declared type,
// without the optional pointer.
func (t TypeInfo) GoType() string {
	switch t.Type {
	case TypeText, TypeString:
		return "string"
	case TypeDecimal:
		return "decimal.Decimal"
	case TypeDate, TypeClock, TypeTimestamp, TypeTime:
		return "time.Time"
	case TypeJSON:
		return "json.RawMessage"
	case TypeArray:
		if t.Elem != nil {
			return "[]" + t.Elem.GoType()
		}
		return "[]any"
	case TypeOther:
		return strings.TrimPrefix(t.Ident, "*")
	default:
		return t.Type.String()
	}
}

var primitives = map[string]Type{
	"bool":              TypeBool,
	"int32":             TypeInt32,
	"int":               TypeInt64,
	"int64":             TypeInt64,
	"float32":           TypeFloat32,
	"float64":           TypeFloat64,
	"string":            TypeString,
	"text":              TypeText,
	"decimal":           TypeDecimal,
	"decimal.Decimal":   TypeDecimal,
	"date":              TypeDate,
	"time":              TypeClock,
	"timestamp":         TypeTimestamp,
	"time.Time":         TypeTime,
	"uuid":              TypeUUID,
	"uuid.UUID":         TypeUUID,
	"json":              TypeJSON,
	"json.RawMessage":   TypeJSON,
	"map[string]string": TypeMap,
}

var containers = map[string]Type{
	"ForeignKey": TypeForeignKey,
	"OneToOne":   TypeOneToOne,
	"OneToMany":  TypeOneToMany,
	"ManyToMany": TypeManyToMany,
}

// ParseType parses a declared type expression such as "int64", "*string",
// "[]uuid", "ForeignKey[shop.Customer]" or "ManyToMany[Post, Tag]".
func ParseType(expr string) (*TypeInfo, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty type expression")
	}
	info, err := parseType(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid type expression %q: %w", expr, err)
	}
	info.Ident = expr
	return info, nil
}

func parseType(expr string) (*TypeInfo, error) {
	switch {
	case strings.HasPrefix(expr, "*"):
		inner, err := parseType(strings.TrimSpace(expr[1:]))
		if err != nil {
			return nil, err
		}
		if inner.Optional {
			return nil, fmt.Errorf("double pointer")
		}
		if inner.Type.Relation() {
			return nil, fmt.Errorf("relationship containers cannot be optional")
		}
		inner.Optional = true
		return inner, nil
	case strings.HasPrefix(expr, "[]"):
		elem, err := parseType(strings.TrimSpace(expr[2:]))
		if err != nil {
			return nil, err
		}
		if elem.Type.Relation() {
			return nil, fmt.Errorf("arrays of relationship containers are not supported")
		}
		elem.Ident = strings.TrimSpace(expr[2:])
		return &TypeInfo{Type: TypeArray, Elem: elem}, nil
	}
	if t, ok := primitives[expr]; ok {
		return &TypeInfo{Type: t}, nil
	}
	if i := strings.IndexByte(expr, '['); i > 0 && strings.HasSuffix(expr, "]") {
		t, ok := containers[expr[:i]]
		if !ok {
			return nil, fmt.Errorf("unknown generic type %s", expr[:i])
		}
		params := strings.Split(expr[i+1:len(expr)-1], ",")
		for j := range params {
			params[j] = strings.TrimSpace(params[j])
			if !isQualifiedIdent(params[j]) {
				return nil, fmt.Errorf("invalid model reference %q", params[j])
			}
		}
		switch {
		case t == TypeManyToMany && len(params) > 2:
			return nil, fmt.Errorf("ManyToMany takes at most 2 parameters")
		case t != TypeManyToMany && len(params) != 1:
			return nil, fmt.Errorf("%s takes exactly 1 parameter", expr[:i])
		}
		return &TypeInfo{Type: t, Params: params}, nil
	}
	if !isQualifiedIdent(expr) {
		return nil, fmt.Errorf("malformed type")
	}
	return &TypeInfo{Type: TypeOther}, nil
}

// isQualifiedIdent reports if s is an identifier or a dotted sequence of them.
func isQualifiedIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if r != '_' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
				return false
			}
		}
	}
	return true
}
