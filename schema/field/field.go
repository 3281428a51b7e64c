package field

import (
	"fmt"
	"maps"
)

// A Descriptor for field configuration.
type Descriptor struct {
	Name  string         // field name.
	Type  string         // declared type expression.
	Attrs map[string]any // field attributes.
	Rel   map[string]any // relationship attributes.
}

// Builder is the builder for fields.
type Builder struct {
	desc *Descriptor
}

// New returns a builder for a field with an arbitrary type expression.
//
//	field.New("tags", "[]string").ArrayBaseType("VARCHAR(50)")
func New(name, typ string) *Builder {
	return &Builder{desc: &Descriptor{
		Name:  name,
		Type:  typ,
		Attrs: make(map[string]any),
	}}
}

// Bool returns a new Builder for a bool field.
func Bool(name string) *Builder { return New(name, "bool") }

// Int32 returns a new Builder for an int32 field.
func Int32(name string) *Builder { return New(name, "int32") }

// Int64 returns a new Builder for an int64 field.
func Int64(name string) *Builder { return New(name, "int64") }

// Float32 returns a new Builder for a float32 field.
func Float32(name string) *Builder { return New(name, "float32") }

// Float64 returns a new Builder for a float64 field.
func Float64(name string) *Builder { return New(name, "float64") }

// String returns a new Builder for a VARCHAR field. MaxLen is required.
func String(name string) *Builder { return New(name, "string") }

// Text returns a new Builder for an unbounded text field.
func Text(name string) *Builder { return New(name, "text") }

// Decimal returns a new Builder for a fixed-point field.
//
//	field.Decimal("total", 10, 2)
func Decimal(name string, digits, places int) *Builder {
	return New(name, "decimal").
		Attr("max_digits", digits).
		Attr("decimal_places", places)
}

// Date returns a new Builder for a calendar date field.
func Date(name string) *Builder { return New(name, "date") }

// Clock returns a new Builder for a time-of-day field.
func Clock(name string) *Builder { return New(name, "time") }

// Timestamp returns a new Builder for a timestamp without time zone.
func Timestamp(name string) *Builder { return New(name, "timestamp") }

// Time returns a new Builder for a time.Time field stored with time zone.
func Time(name string) *Builder { return New(name, "time.Time") }

// UUID returns a new Builder for a UUID field.
func UUID(name string) *Builder { return New(name, "uuid.UUID") }

// JSON returns a new Builder for a JSON document field.
func JSON(name string) *Builder { return New(name, "json") }

// HStore returns a new Builder for a map[string]string field.
func HStore(name string) *Builder { return New(name, "map[string]string") }

// Array returns a new Builder for an array field of the given element type.
func Array(name, elem string) *Builder { return New(name, "[]"+elem) }

// Attr sets a raw attribute.
func (b *Builder) Attr(key string, value any) *Builder {
	b.desc.Attrs[key] = value
	return b
}

// PrimaryKey marks the field as the primary key, or as a component of a
// composite primary key.
func (b *Builder) PrimaryKey() *Builder { return b.Attr("primary_key", true) }

// Optional declares the field as *T and nullable.
func (b *Builder) Optional() *Builder {
	if len(b.desc.Type) == 0 || b.desc.Type[0] != '*' {
		b.desc.Type = "*" + b.desc.Type
	}
	return b.Attr("null", true)
}

// Null sets the column nullability.
func (b *Builder) Null(null bool) *Builder { return b.Attr("null", null) }

// Blank allows empty values in validation.
func (b *Builder) Blank() *Builder { return b.Attr("blank", true) }

// Unique adds a unique constraint to the column.
func (b *Builder) Unique() *Builder { return b.Attr("unique", true) }

// Index adds a single-column index.
func (b *Builder) Index() *Builder { return b.Attr("index", true) }

// Editable sets whether the field is editable.
func (b *Builder) Editable(editable bool) *Builder { return b.Attr("editable", editable) }

// MaxLen sets the maximum length of a string field.
func (b *Builder) MaxLen(n int) *Builder { return b.Attr("max_length", n) }

// MinLen sets the minimum length of a string field.
func (b *Builder) MinLen(n int) *Builder { return b.Attr("min_length", n) }

// Min sets the minimum value of a numeric field.
func (b *Builder) Min(v int64) *Builder { return b.Attr("min_value", v) }

// Max sets the maximum value of a numeric field.
func (b *Builder) Max(v int64) *Builder { return b.Attr("max_value", v) }

// Range sets both the minimum and maximum value of a numeric field.
func (b *Builder) Range(lo, hi int64) *Builder { return b.Min(lo).Max(hi) }

// Email validates the value as an email address.
func (b *Builder) Email() *Builder { return b.Attr("email", true) }

// URL validates the value as a URL.
func (b *Builder) URL() *Builder { return b.Attr("url", true) }

// Default sets a static default value.
func (b *Builder) Default(v any) *Builder { return b.Attr("default", v) }

// StorageKey sets the column name.
func (b *Builder) StorageKey(column string) *Builder { return b.Attr("db_column", column) }

// Check adds a column check constraint.
func (b *Builder) Check(expr string) *Builder { return b.Attr("check", expr) }

// AutoNow refreshes the field with the current time on every save.
func (b *Builder) AutoNow() *Builder { return b.Attr("auto_now", true) }

// AutoNowAdd sets the field to the current time on creation.
func (b *Builder) AutoNowAdd() *Builder { return b.Attr("auto_now_add", true) }

// AutoIncrement marks an integer field as database-assigned.
func (b *Builder) AutoIncrement(on bool) *Builder { return b.Attr("auto_increment", on) }

// Generated declares a generated column. Stored or Virtual must follow.
func (b *Builder) Generated(expr string) *Builder { return b.Attr("generated", expr) }

// Stored stores a generated column.
func (b *Builder) Stored() *Builder { return b.Attr("generated_stored", true) }

// Virtual computes a generated column on read.
func (b *Builder) Virtual() *Builder { return b.Attr("generated_virtual", true) }

// Comment sets the column comment.
func (b *Builder) Comment(c string) *Builder { return b.Attr("comment", c) }

// Collate sets the column collation.
func (b *Builder) Collate(c string) *Builder { return b.Attr("collate", c) }

// IncludeInNew overrides whether the constructor accepts the field.
func (b *Builder) IncludeInNew(include bool) *Builder { return b.Attr("include_in_new", include) }

// FieldType overrides the inferred column type.
func (b *Builder) FieldType(t string) *Builder { return b.Attr("field_type", t) }

// ArrayBaseType sets the element column type of an array field.
func (b *Builder) ArrayBaseType(t string) *Builder { return b.Attr("array_base_type", t) }

// Descriptor implements the schema.Field interface by returning its descriptor.
func (b *Builder) Descriptor() *Descriptor {
	d := *b.desc
	d.Attrs = maps.Clone(b.desc.Attrs)
	if b.desc.Rel != nil {
		d.Rel = maps.Clone(b.desc.Rel)
	}
	return &d
}

// RelationBuilder returns a builder that shares the descriptor of a
// relationship field. It is used by package edge.
func RelationBuilder(name, typ string, rel map[string]any) *Builder {
	b := New(name, typ)
	b.desc.Rel = rel
	return b
}

// String implements fmt.Stringer.
func (d *Descriptor) String() string {
	return fmt.Sprintf("%s %s", d.Name, d.Type)
}
