package schema

import (
	"maps"
	"slices"

	"github.com/syssam/modelc/compiler/load"
	"github.com/syssam/modelc/schema/field"
)

// Field is implemented by the field and edge builders.
type Field interface {
	Descriptor() *field.Descriptor
}

// Mixin is a reusable set of fields.
type Mixin interface {
	Fields() []Field
}

// Builder builds the declaration of one model.
type Builder struct {
	name        string
	attrs       map[string]any
	fields      []Field
	constraints []any
}

// Model returns a builder for the named model.
//
//	schema.Model("Order").
//		Table("orders").
//		App("shop").
//		Fields(
//			field.UUID("id").PrimaryKey(),
//			field.Decimal("total", 10, 2),
//		)
func Model(name string) *Builder {
	return &Builder{name: name, attrs: make(map[string]any)}
}

// Attr sets a raw model attribute.
func (b *Builder) Attr(key string, value any) *Builder {
	b.attrs[key] = value
	return b
}

// Table sets the table name.
func (b *Builder) Table(name string) *Builder { return b.Attr("table_name", name) }

// App sets the application label. It defaults to "default".
func (b *Builder) App(label string) *Builder { return b.Attr("app_label", label) }

// VerboseName sets the human readable model name.
func (b *Builder) VerboseName(name string) *Builder { return b.Attr("verbose_name", name) }

// Ordering sets the default ordering. A "-" prefix sorts descending.
func (b *Builder) Ordering(fields ...string) *Builder { return b.Attr("ordering", slices.Clone(fields)) }

// Fields appends fields to the model.
func (b *Builder) Fields(fields ...Field) *Builder {
	b.fields = append(b.fields, fields...)
	return b
}

// Mixin appends the fields of the given mixins, in order.
func (b *Builder) Mixin(mixins ...Mixin) *Builder {
	for _, m := range mixins {
		b.fields = append(b.fields, m.Fields()...)
	}
	return b
}

// Unique adds a unique constraint over the given fields.
func (b *Builder) Unique(fields ...string) *Builder {
	return b.constraint("unique", map[string]any{"fields": slices.Clone(fields)})
}

// UniqueWhere adds a named partial unique constraint.
//
//	schema.Model("Post").UniqueWhere("posts_live_slug", "deleted_at IS NULL", "slug")
func (b *Builder) UniqueWhere(name, condition string, fields ...string) *Builder {
	return b.constraint("unique", map[string]any{
		"fields":    slices.Clone(fields),
		"name":      name,
		"condition": condition,
	})
}

// Check adds a model-level check constraint. An empty name is derived from
// the table name.
func (b *Builder) Check(expr, name string) *Builder {
	c := map[string]any{"expr": expr}
	if name != "" {
		c["name"] = name
	}
	return b.constraint("check", c)
}

func (b *Builder) constraint(kind string, body map[string]any) *Builder {
	b.constraints = append(b.constraints, map[string]any{kind: body})
	return b
}

// Spec returns the raw declaration of the model.
func (b *Builder) Spec() *load.Spec {
	s := &load.Spec{
		Name:   b.name,
		Attrs:  maps.Clone(b.attrs),
		Fields: make([]*load.FieldSpec, 0, len(b.fields)),
	}
	if len(b.constraints) > 0 {
		s.Attrs["constraints"] = slices.Clone(b.constraints)
	}
	for _, f := range b.fields {
		s.Fields = append(s.Fields, load.NewFieldSpec(f.Descriptor()))
	}
	return s
}
