package modelc

import (
	"fmt"
	"strings"
)

// TypeKind is the backend-neutral kind of a column.
type TypeKind uint8

// List of column kinds.
const (
	KindInvalid TypeKind = iota
	KindInteger
	KindBigInteger
	KindSmallInteger
	KindBoolean
	KindReal
	KindDouble
	KindDecimal
	KindVarChar
	KindChar
	KindText
	KindDate
	KindTime
	KindTimestamp
	KindTimestampTZ
	KindInterval
	KindUUID
	KindJSON
	KindJSONB
	KindHStore
	KindCIText
	KindInt4Range
	KindInt8Range
	KindNumRange
	KindDateRange
	KindTsRange
	KindTsTzRange
	KindTsVector
	KindTsQuery
	KindArray
	endKinds
)

var kindNames = [...]string{
	KindInvalid:      "INVALID",
	KindInteger:      "INTEGER",
	KindBigInteger:   "BIGINT",
	KindSmallInteger: "SMALLINT",
	KindBoolean:      "BOOLEAN",
	KindReal:         "REAL",
	KindDouble:       "DOUBLE PRECISION",
	KindDecimal:      "NUMERIC",
	KindVarChar:      "VARCHAR",
	KindChar:         "CHAR",
	KindText:         "TEXT",
	KindDate:         "DATE",
	KindTime:         "TIME",
	KindTimestamp:    "TIMESTAMP",
	KindTimestampTZ:  "TIMESTAMPTZ",
	KindInterval:     "INTERVAL",
	KindUUID:         "UUID",
	KindJSON:         "JSON",
	KindJSONB:        "JSONB",
	KindHStore:       "HSTORE",
	KindCIText:       "CITEXT",
	KindInt4Range:    "INT4RANGE",
	KindInt8Range:    "INT8RANGE",
	KindNumRange:     "NUMRANGE",
	KindDateRange:    "DATERANGE",
	KindTsRange:      "TSRANGE",
	KindTsTzRange:    "TSTZRANGE",
	KindTsVector:     "TSVECTOR",
	KindTsQuery:      "TSQUERY",
	KindArray:        "ARRAY",
}

// String returns the SQL spelling of the kind.
func (k TypeKind) String() string {
	if k < endKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("TypeKind(%d)", uint8(k))
}

// Valid reports if the kind is a known, non-invalid kind.
func (k TypeKind) Valid() bool { return k > KindInvalid && k < endKinds }

// Integer reports if the kind is one of the integer kinds.
func (k TypeKind) Integer() bool {
	return k == KindInteger || k == KindBigInteger || k == KindSmallInteger
}

// Float reports if the kind is a floating point kind.
func (k TypeKind) Float() bool { return k == KindReal || k == KindDouble }

// Textual reports if the kind stores character data.
func (k TypeKind) Textual() bool {
	return k == KindVarChar || k == KindChar || k == KindText || k == KindCIText
}

// Temporal reports if the kind stores a date, time or timestamp.
func (k TypeKind) Temporal() bool {
	switch k {
	case KindDate, KindTime, KindTimestamp, KindTimestampTZ:
		return true
	}
	return false
}

// ParseTypeKind returns the kind for a SQL type name, ignoring case,
// surrounding whitespace and a length or precision suffix.
func ParseTypeKind(s string) (TypeKind, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	for k := KindInteger; k < endKinds; k++ {
		if kindNames[k] == s {
			return k, true
		}
	}
	return KindInvalid, false
}

// ColumnType is the canonical column type of a field.
type ColumnType struct {
	Kind      TypeKind    `json:"kind"`
	Size      int         `json:"size,omitempty"`
	Precision int         `json:"precision,omitempty"`
	Scale     int         `json:"scale,omitempty"`
	Elem      *ColumnType `json:"elem,omitempty"`
}

// String renders the type the way it appears in DDL, e.g. VARCHAR(100),
// NUMERIC(10,2) or INTEGER[].
func (t ColumnType) String() string {
	switch t.Kind {
	case KindVarChar, KindChar:
		if t.Size > 0 {
			return fmt.Sprintf("%s(%d)", t.Kind, t.Size)
		}
	case KindDecimal:
		if t.Precision > 0 {
			return fmt.Sprintf("NUMERIC(%d,%d)", t.Precision, t.Scale)
		}
	case KindArray:
		if t.Elem != nil {
			return t.Elem.String() + "[]"
		}
	}
	return t.Kind.String()
}

// IsArray reports if the column holds an array.
func (t ColumnType) IsArray() bool { return t.Kind == KindArray }

// Comparable reports if values of the column can take part in a composite
// primary key. JSON documents, hstore maps and arrays cannot.
func (t ColumnType) Comparable() bool {
	switch t.Kind {
	case KindInvalid, KindJSON, KindJSONB, KindHStore, KindArray, KindTsVector, KindTsQuery:
		return false
	}
	return true
}
