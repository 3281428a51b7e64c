package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/load"
	"github.com/syssam/modelc/schema/field"
)

// scalars holds the canonical column kinds of the scalar declared types.
var scalars = map[field.Type]modelc.TypeKind{
	field.TypeBool:      modelc.KindBoolean,
	field.TypeInt32:     modelc.KindInteger,
	field.TypeInt64:     modelc.KindBigInteger,
	field.TypeFloat32:   modelc.KindReal,
	field.TypeFloat64:   modelc.KindDouble,
	field.TypeText:      modelc.KindText,
	field.TypeDate:      modelc.KindDate,
	field.TypeClock:     modelc.KindTime,
	field.TypeTimestamp: modelc.KindTimestamp,
	field.TypeTime:      modelc.KindTimestampTZ,
	field.TypeUUID:      modelc.KindUUID,
	field.TypeJSON:      modelc.KindJSONB,
	field.TypeMap:       modelc.KindHStore,
}

// overrides holds the column kinds selectable with the field_type attribute.
var overrides = map[string]modelc.TypeKind{
	"jsonb":             modelc.KindJSONB,
	"json":              modelc.KindJSON,
	"hstore":            modelc.KindHStore,
	"citext":            modelc.KindCIText,
	"int4range":         modelc.KindInt4Range,
	"integer_range":     modelc.KindInt4Range,
	"int8range":         modelc.KindInt8Range,
	"bigint_range":      modelc.KindInt8Range,
	"numrange":          modelc.KindNumRange,
	"decimal_range":     modelc.KindNumRange,
	"daterange":         modelc.KindDateRange,
	"date_range":        modelc.KindDateRange,
	"tsrange":           modelc.KindTsRange,
	"timestamp_range":   modelc.KindTsRange,
	"tstzrange":         modelc.KindTsTzRange,
	"timestamptz_range": modelc.KindTsTzRange,
	"tsvector":          modelc.KindTsVector,
	"tsquery":           modelc.KindTsQuery,
	"interval":          modelc.KindInterval,
	"uuid":              modelc.KindUUID,
	"text":              modelc.KindText,
}

// arrayBases holds the element kinds accepted by array_base_type.
var arrayBases = map[string]modelc.TypeKind{
	"VARCHAR":          modelc.KindVarChar,
	"CHAR":             modelc.KindChar,
	"INTEGER":          modelc.KindInteger,
	"INT":              modelc.KindInteger,
	"INT4":             modelc.KindInteger,
	"BIGINT":           modelc.KindBigInteger,
	"INT8":             modelc.KindBigInteger,
	"SMALLINT":         modelc.KindSmallInteger,
	"INT2":             modelc.KindSmallInteger,
	"TEXT":             modelc.KindText,
	"BOOLEAN":          modelc.KindBoolean,
	"BOOL":             modelc.KindBoolean,
	"REAL":             modelc.KindReal,
	"FLOAT4":           modelc.KindReal,
	"DOUBLE PRECISION": modelc.KindDouble,
	"FLOAT8":           modelc.KindDouble,
	"UUID":             modelc.KindUUID,
	"DATE":             modelc.KindDate,
	"TIME":             modelc.KindTime,
	"TIMESTAMP":        modelc.KindTimestamp,
	"TIMESTAMPTZ":      modelc.KindTimestampTZ,
	"JSONB":            modelc.KindJSONB,
	"JSON":             modelc.KindJSON,
}

// elements holds the element kinds inferred for arrays without array_base_type.
var elements = map[field.Type]modelc.TypeKind{
	field.TypeString:  modelc.KindText,
	field.TypeText:    modelc.KindText,
	field.TypeInt32:   modelc.KindInteger,
	field.TypeInt64:   modelc.KindBigInteger,
	field.TypeFloat32: modelc.KindReal,
	field.TypeFloat64: modelc.KindDouble,
	field.TypeBool:    modelc.KindBoolean,
	field.TypeUUID:    modelc.KindUUID,
}

// mapTypes assigns the canonical column type and kind label of every plain
// column. Join columns are typed by the relationship resolver.
func (m *Model) mapTypes() error {
	for _, f := range m.Fields {
		if f.Kind != PlainField {
			continue
		}
		t, err := columnType(f.Decl)
		if err != nil {
			return modelc.NewTypeMappingError(m.Name, f.Name, f.Decl.Type.String(), err.Error())
		}
		if s := m.config.Storage; t.IsArray() && s != nil && !s.SchemaMode.Support(Arrays) {
			return modelc.NewTypeMappingError(m.Name, f.Name, f.Decl.Type.String(),
				fmt.Sprintf("array columns are not supported by %s", s.IdentName))
		}
		f.ColumnType = t
		f.Label = kindLabel(f)
	}
	return nil
}

// columnType maps a declared field to its canonical column type. An explicit
// field_type takes priority over inference.
func columnType(fd *load.FieldDecl) (modelc.ColumnType, error) {
	if fd.FieldType != "" {
		k, ok := overrides[strings.ToLower(strings.TrimSpace(fd.FieldType))]
		if !ok {
			return modelc.ColumnType{}, fmt.Errorf("unsupported field_type %q", fd.FieldType)
		}
		return modelc.ColumnType{Kind: k}, nil
	}
	switch t := fd.Type; t.Type {
	case field.TypeString:
		if fd.MaxLength == nil {
			return modelc.ColumnType{}, fmt.Errorf("string fields require max_length; use text for unbounded strings")
		}
		return modelc.ColumnType{Kind: modelc.KindVarChar, Size: *fd.MaxLength}, nil
	case field.TypeDecimal:
		if fd.MaxDigits == nil || fd.DecimalPlaces == nil {
			return modelc.ColumnType{}, fmt.Errorf("decimal fields require max_digits and decimal_places")
		}
		if *fd.DecimalPlaces > *fd.MaxDigits {
			return modelc.ColumnType{}, fmt.Errorf("decimal_places (%d) exceeds max_digits (%d)", *fd.DecimalPlaces, *fd.MaxDigits)
		}
		return modelc.ColumnType{Kind: modelc.KindDecimal, Precision: *fd.MaxDigits, Scale: *fd.DecimalPlaces}, nil
	case field.TypeArray:
		elem, err := arrayElem(fd)
		if err != nil {
			return modelc.ColumnType{}, err
		}
		return modelc.ColumnType{Kind: modelc.KindArray, Elem: &elem}, nil
	default:
		if k, ok := scalars[t.Type]; ok {
			return modelc.ColumnType{Kind: k}, nil
		}
	}
	return modelc.ColumnType{}, fmt.Errorf("unsupported type; declare a supported type or set field_type")
}

// arrayElem returns the element type of an array field: array_base_type
// first, then the declared element type.
func arrayElem(fd *load.FieldDecl) (modelc.ColumnType, error) {
	if base := strings.ToUpper(strings.TrimSpace(fd.ArrayBaseType)); base != "" {
		name, size := base, 0
		if i := strings.IndexByte(base, '('); i > 0 && strings.HasSuffix(base, ")") {
			n, err := strconv.Atoi(strings.TrimSpace(base[i+1 : len(base)-1]))
			if err != nil || n <= 0 {
				return modelc.ColumnType{}, fmt.Errorf("invalid array_base_type %q", fd.ArrayBaseType)
			}
			name, size = strings.TrimSpace(base[:i]), n
		}
		k, ok := arrayBases[name]
		if !ok || size > 0 && k != modelc.KindVarChar && k != modelc.KindChar {
			return modelc.ColumnType{}, fmt.Errorf("unsupported array_base_type %q", fd.ArrayBaseType)
		}
		return modelc.ColumnType{Kind: k, Size: size}, nil
	}
	if e := fd.Type.Elem; e != nil && !e.Optional {
		if k, ok := elements[e.Type]; ok {
			return modelc.ColumnType{Kind: k}, nil
		}
	}
	return modelc.ColumnType{}, fmt.Errorf("cannot infer the element type of %s; set array_base_type (e.g. \"VARCHAR(100)\" or \"INTEGER\")", fd.Type)
}

var labels = map[modelc.TypeKind]string{
	modelc.KindInteger:      "IntegerField",
	modelc.KindBigInteger:   "BigIntegerField",
	modelc.KindSmallInteger: "SmallIntegerField",
	modelc.KindBoolean:      "BooleanField",
	modelc.KindReal:         "FloatField",
	modelc.KindDouble:       "FloatField",
	modelc.KindDecimal:      "DecimalField",
	modelc.KindVarChar:      "CharField",
	modelc.KindChar:         "CharField",
	modelc.KindText:         "TextField",
	modelc.KindCIText:       "CITextField",
	modelc.KindDate:         "DateField",
	modelc.KindTime:         "TimeField",
	modelc.KindTimestamp:    "DateTimeField",
	modelc.KindTimestampTZ:  "DateTimeField",
	modelc.KindInterval:     "DurationField",
	modelc.KindUUID:         "UUIDField",
	modelc.KindJSON:         "JSONField",
	modelc.KindJSONB:        "JSONField",
	modelc.KindHStore:       "HStoreField",
	modelc.KindInt4Range:    "IntegerRangeField",
	modelc.KindInt8Range:    "BigIntegerRangeField",
	modelc.KindNumRange:     "DecimalRangeField",
	modelc.KindDateRange:    "DateRangeField",
	modelc.KindTsRange:      "DateTimeRangeField",
	modelc.KindTsTzRange:    "DateTimeRangeField",
	modelc.KindTsVector:     "SearchVectorField",
	modelc.KindTsQuery:      "SearchQueryField",
	modelc.KindArray:        "ArrayField",
}

// kindLabel returns the metadata kind label of a plain column.
func kindLabel(f *Field) string {
	k := f.ColumnType.Kind
	switch {
	case f.PrimaryKey && f.AutoIncrement && k == modelc.KindInteger:
		return "AutoField"
	case f.PrimaryKey && f.AutoIncrement && k == modelc.KindBigInteger:
		return "BigAutoField"
	case k == modelc.KindVarChar && f.Decl.Email:
		return "EmailField"
	case k == modelc.KindVarChar && f.Decl.URL:
		return "URLField"
	}
	return labels[k]
}

// goTypes holds the Go types of column kinds that have no declared
// counterpart, used when field_type overrides a type.
var goTypes = map[modelc.TypeKind]string{
	modelc.KindInterval:  "time.Duration",
	modelc.KindHStore:    "map[string]string",
	modelc.KindJSON:      "json.RawMessage",
	modelc.KindJSONB:     "json.RawMessage",
	modelc.KindUUID:      "uuid.UUID",
	modelc.KindText:      "string",
	modelc.KindCIText:    "string",
	modelc.KindTsVector:  "string",
	modelc.KindTsQuery:   "string",
	modelc.KindInt4Range: "string",
	modelc.KindInt8Range: "string",
	modelc.KindNumRange:  "string",
	modelc.KindDateRange: "string",
	modelc.KindTsRange:   "string",
	modelc.KindTsTzRange: "string",
}

// GoType returns the Go type holding values of the field, without the
// optional pointer.
func (f *Field) GoType() string {
	if f.Type == nil {
		return "any"
	}
	if f.Type.Type == field.TypeOther {
		if t, ok := goTypes[f.ColumnType.Kind]; ok {
			return t
		}
	}
	return f.Type.GoType()
}
