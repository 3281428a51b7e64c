package modelc

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Record is a runtime instance of a compiled model. Field values are held by
// field name and coerced to the canonical Go type of their column on write.
type Record struct {
	meta   *ModelMetadata
	values map[string]any
}

// NewRecord creates a record of the given model. values holds the
// user-supplied fields; relationship fields are passed under the relation name
// and may be a raw key or any PrimaryKeyer. Fields that are not supplied are
// populated according to their default policy.
func NewRecord(meta *ModelMetadata, values map[string]any) (*Record, error) {
	r := &Record{meta: meta, values: make(map[string]any, len(meta.Fields))}
	used := make(map[string]struct{}, len(values))
	for _, f := range meta.Fields {
		switch {
		case f.JoinColumn:
			v, ok := values[f.Relation]
			if !ok {
				r.values[f.Name] = zeroValue(f)
				continue
			}
			used[f.Relation] = struct{}{}
			key, err := IntoPrimaryKey(v)
			if err != nil {
				return nil, NewFieldError(meta.Name, f.Relation, err.Error())
			}
			if key, err = coerce(f, key); err != nil {
				return nil, NewFieldError(meta.Name, f.Relation, err.Error())
			}
			r.values[f.Name] = key
		case f.Auto:
			if _, ok := values[f.Name]; ok {
				return nil, NewFieldError(meta.Name, f.Name, "field is auto-managed and cannot be supplied")
			}
			v, err := defaultValue(f)
			if err != nil {
				return nil, NewFieldError(meta.Name, f.Name, err.Error())
			}
			r.values[f.Name] = v
		default:
			v, ok := values[f.Name]
			if !ok {
				d, err := defaultValue(f)
				if err != nil {
					return nil, NewFieldError(meta.Name, f.Name, err.Error())
				}
				r.values[f.Name] = d
				continue
			}
			used[f.Name] = struct{}{}
			v, err := coerce(f, v)
			if err != nil {
				return nil, NewFieldError(meta.Name, f.Name, err.Error())
			}
			r.values[f.Name] = v
		}
	}
	for name := range values {
		if _, ok := used[name]; ok {
			continue
		}
		if f, ok := meta.Field(name); ok && f.JoinColumn {
			return nil, NewFieldError(meta.Name, name, "join column is set through "+f.Relation)
		}
		return nil, NewFieldError(meta.Name, name, "unknown field")
	}
	return r, nil
}

// Model returns the metadata of the record's model.
func (r *Record) Model() *ModelMetadata { return r.meta }

// Get returns the value of the named field.
func (r *Record) Get(name string) (any, error) {
	if _, ok := r.meta.Field(name); !ok {
		return nil, NewNotFoundError("field", r.meta.Name+"."+name)
	}
	return r.values[name], nil
}

// MustGet is like Get but panics if the field does not exist.
func (r *Record) MustGet(name string) any {
	v, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Set assigns the named field. Auto-managed fields have no setter.
func (r *Record) Set(name string, v any) error {
	f, ok := r.meta.Field(name)
	if !ok {
		return NewNotFoundError("field", r.meta.Name+"."+name)
	}
	if f.Auto {
		return NewFieldError(r.meta.Name, name, "field is auto-managed and has no setter")
	}
	v, err := coerce(f, v)
	if err != nil {
		return NewFieldError(r.meta.Name, name, err.Error())
	}
	if err := validateField(r.meta.Name, f, v); err != nil {
		return err
	}
	r.values[name] = v
	return nil
}

// Values returns a copy of all field values.
func (r *Record) Values() map[string]any { return maps.Clone(r.values) }

// Fields returns a selector over the record's columns.
func (r *Record) Fields() *FieldSelector { return NewFieldSelector(r.meta) }

// PrimaryKey returns the primary key and whether it is present. Composite
// keys are returned as a CompositeKey that is present only when every
// component is set.
func (r *Record) PrimaryKey() (any, bool) {
	if r.meta.HasCompositeKey() {
		return r.CompositeKey()
	}
	fields := r.meta.PrimaryKeyFields()
	if len(fields) == 0 {
		return nil, false
	}
	v := r.values[fields[0].Name]
	return v, hasValue(v, fields[0].Optional)
}

// CompositeKey returns the composite primary key of the record.
func (r *Record) CompositeKey() (CompositeKey, bool) {
	fields := r.meta.PrimaryKeyFields()
	tuple := make([]any, len(fields))
	present := len(fields) > 1
	for i, f := range fields {
		tuple[i] = r.values[f.Name]
		if !hasValue(tuple[i], f.Optional) {
			present = false
		}
	}
	k, err := NewCompositeKey(r.meta.PrimaryKey, tuple...)
	if err != nil {
		return CompositeKey{}, false
	}
	return k, present
}

// SetPrimaryKey assigns the primary key. Composite models accept a
// CompositeKey, a field-name map or a value tuple in key order.
func (r *Record) SetPrimaryKey(v any) error {
	fields := r.meta.PrimaryKeyFields()
	if len(fields) == 0 {
		return NewFieldError(r.meta.Name, "", "model has no primary key")
	}
	if len(fields) == 1 {
		c, err := coerce(fields[0], v)
		if err != nil {
			return NewFieldError(r.meta.Name, fields[0].Name, err.Error())
		}
		r.values[fields[0].Name] = c
		return nil
	}
	var (
		k   CompositeKey
		err error
	)
	switch v := v.(type) {
	case CompositeKey:
		k = v
	case map[string]any:
		k, err = CompositeKeyFromValues(r.meta.PrimaryKey, v)
	case []any:
		k, err = CompositeKeyFromTuple(r.meta.PrimaryKey, v)
	default:
		err = fmt.Errorf("unsupported composite key value %T", v)
	}
	if err != nil {
		return NewFieldError(r.meta.Name, strings.Join(r.meta.PrimaryKey, ","), err.Error())
	}
	coerced := make(map[string]any, len(fields))
	for _, f := range fields {
		c, ok := k.Get(f.Name)
		if !ok {
			return NewFieldError(r.meta.Name, f.Name, "missing composite key component")
		}
		if c, err = coerce(f, c); err != nil {
			return NewFieldError(r.meta.Name, f.Name, err.Error())
		}
		coerced[f.Name] = c
	}
	maps.Copy(r.values, coerced)
	return nil
}

// Validate checks every field against its declared validators.
func (r *Record) Validate() error {
	var errs []error
	for _, f := range r.meta.Fields {
		if err := validateField(r.meta.Name, f, r.values[f.Name]); err != nil {
			errs = append(errs, err)
		}
	}
	return NewAggregateError(errs...)
}

// ValidateValue checks a value of the named field against the field's
// declared validators.
func ValidateValue(meta *ModelMetadata, field string, v any) error {
	f, ok := meta.Field(field)
	if !ok {
		return NewNotFoundError("field", meta.Name+"."+field)
	}
	return validateField(meta.Name, f, v)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validateField(model string, f *FieldMetadata, v any) error {
	validateOnce.Do(func() { validate = validator.New() })
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		v = rv.Elem().Interface()
	}
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok && s == "" && f.Type.Kind.Textual() {
		if !f.Blank && !f.Optional && !f.Auto {
			return NewFieldError(model, f.Name, "field may not be blank")
		}
		return nil
	}
	tags := validationTags(f)
	if len(tags) == 0 {
		return nil
	}
	if err := validate.Var(v, strings.Join(tags, ",")); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return NewFieldError(model, f.Name, fmt.Sprintf("failed %q validation", verrs[0].ActualTag()))
		}
		return NewFieldError(model, f.Name, err.Error())
	}
	return nil
}

func validationTags(f *FieldMetadata) []string {
	var tags []string
	if f.Type.Kind.Textual() {
		if n, ok := f.Attr("min_length"); ok {
			tags = append(tags, "min="+n)
		}
		if n, ok := f.Attr("max_length"); ok {
			tags = append(tags, "max="+n)
		}
		if v, ok := f.Attr("email"); ok && v == "true" {
			tags = append(tags, "email")
		}
		if v, ok := f.Attr("url"); ok && v == "true" {
			tags = append(tags, "url")
		}
	}
	if f.Type.Kind.Integer() || f.Type.Kind.Float() {
		if n, ok := f.Attr("min_value"); ok {
			tags = append(tags, "gte="+n)
		}
		if n, ok := f.Attr("max_value"); ok {
			tags = append(tags, "lte="+n)
		}
	}
	return tags
}

func defaultValue(f *FieldMetadata) (any, error) {
	switch f.Default {
	case DefaultUUID:
		return uuid.New(), nil
	case DefaultNow:
		return time.Now(), nil
	case DefaultStatic:
		return parseLiteral(f, f.DefaultValue)
	default:
		return zeroValue(f), nil
	}
}

// zeroValue returns the generic zero value of a field.
func zeroValue(f *FieldMetadata) any {
	if f.Optional {
		return nil
	}
	return kindZero(f.Type)
}

func kindZero(t ColumnType) any {
	switch t.Kind {
	case KindInteger, KindSmallInteger:
		return int32(0)
	case KindBigInteger:
		return int64(0)
	case KindBoolean:
		return false
	case KindReal:
		return float32(0)
	case KindDouble:
		return float64(0)
	case KindDecimal:
		return "0"
	case KindVarChar, KindChar, KindText, KindCIText, KindTsVector, KindTsQuery:
		return ""
	case KindDate, KindTime, KindTimestamp, KindTimestampTZ:
		return time.Time{}
	case KindInterval:
		return time.Duration(0)
	case KindUUID:
		return uuid.Nil
	case KindHStore:
		return map[string]string{}
	case KindArray:
		return []any{}
	default:
		return nil
	}
}

// parseLiteral converts a declared default literal to the field's Go type.
func parseLiteral(f *FieldMetadata, s string) (any, error) {
	s = strings.Trim(s, `"'`)
	switch k := f.Type.Kind; {
	case k.Integer():
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer default %q", s)
		}
		return coerce(f, n)
	case k.Float():
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float default %q", s)
		}
		return coerce(f, n)
	case k == KindBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean default %q", s)
		}
		return b, nil
	default:
		return coerce(f, s)
	}
}

// coerce converts v to the canonical Go type of the field's column.
func coerce(f *FieldMetadata, v any) (any, error) {
	if v == nil {
		if f.Optional || f.Nullable {
			return nil, nil
		}
		return nil, errors.New("field is not nullable")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return coerce(f, nil)
		}
		v = rv.Elem().Interface()
	}
	switch k := f.Type.Kind; {
	case k == KindBigInteger:
		return toInt(v, math.MinInt64, math.MaxInt64, func(n int64) any { return n })
	case k == KindInteger || k == KindSmallInteger:
		return toInt(v, math.MinInt32, math.MaxInt32, func(n int64) any { return int32(n) })
	case k == KindReal:
		n, err := toFloat(v)
		return float32(n), err
	case k == KindDouble:
		return toFloat(v)
	case k == KindBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case k == KindDecimal:
		switch v := v.(type) {
		case string:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return nil, fmt.Errorf("invalid decimal %q", v)
			}
			return v, nil
		case fmt.Stringer:
			return v.String(), nil
		default:
			if n, err := toFloat(v); err == nil {
				return strconv.FormatFloat(n, 'f', -1, 64), nil
			}
		}
	case k.Textual() || k == KindTsVector || k == KindTsQuery:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case k.Temporal():
		return toTime(k, v)
	case k == KindInterval:
		switch v := v.(type) {
		case time.Duration:
			return v, nil
		case string:
			return time.ParseDuration(v)
		}
	case k == KindUUID:
		switch v := v.(type) {
		case uuid.UUID:
			return v, nil
		case string:
			return uuid.Parse(v)
		case [16]byte:
			return uuid.UUID(v), nil
		}
	case k == KindHStore:
		if m, ok := v.(map[string]string); ok {
			return m, nil
		}
	case k == KindArray:
		if reflect.TypeOf(v).Kind() == reflect.Slice {
			return v, nil
		}
	default:
		return v, nil
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, f.Type)
}

func toInt(v any, lo, hi int64, conv func(int64) any) (any, error) {
	var n int64
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of range", u)
		}
		n = int64(u)
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("%v is not an integer", f)
		}
		n = int64(f)
	default:
		return nil, fmt.Errorf("cannot use %T as an integer", v)
	}
	if n < lo || n > hi {
		return nil, fmt.Errorf("integer %d out of range", n)
	}
	return conv(n), nil
}

func toFloat(v any) (float64, error) {
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return 0, fmt.Errorf("cannot use %T as a number", v)
}

var timeLayouts = map[TypeKind]string{
	KindDate:        time.DateOnly,
	KindTime:        time.TimeOnly,
	KindTimestamp:   "2006-01-02T15:04:05",
	KindTimestampTZ: time.RFC3339Nano,
}

func toTime(k TypeKind, v any) (any, error) {
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case string:
		return time.Parse(timeLayouts[k], v)
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, k)
}
