package edge

import (
	"github.com/syssam/modelc/schema/field"
)

// Kind names a relationship kind, as accepted by the "kind" relationship attribute.
type Kind = string

// List of relationship kinds.
const (
	KindForeignKey            Kind = "foreign_key"
	KindOneToOne              Kind = "one_to_one"
	KindOneToMany             Kind = "one_to_many"
	KindManyToMany            Kind = "many_to_many"
	KindPolymorphic           Kind = "polymorphic"
	KindPolymorphicManyToMany Kind = "polymorphic_many_to_many"
	KindGenericRelation       Kind = "generic_relation"
	KindGenericForeignKey     Kind = "generic_foreign_key"
)

// Referential actions accepted by OnDelete and OnUpdate.
const (
	Cascade    = "CASCADE"
	SetNull    = "SET NULL"
	Restrict   = "RESTRICT"
	SetDefault = "SET DEFAULT"
	NoAction   = "NO ACTION"
)

// Builder is the builder for relationship fields.
type Builder struct {
	name string
	typ  string
	rel  map[string]any
	fb   *field.Builder
}

func newBuilder(name, typ string, kind Kind, to string) *Builder {
	rel := map[string]any{"kind": kind}
	if to != "" {
		rel["to"] = to
	}
	return &Builder{name: name, typ: typ, rel: rel, fb: field.RelationBuilder(name, typ, rel)}
}

// ForeignKey returns a many-to-one relationship to the target model. The
// model gets a join column named "{name}_id".
//
//	edge.ForeignKey("customer", "Customer").RelatedName("orders")
func ForeignKey(name, target string) *Builder {
	return newBuilder(name, "ForeignKey["+target+"]", KindForeignKey, "")
}

// OneToOne returns a one-to-one relationship. The join column is unique.
func OneToOne(name, target string) *Builder {
	return newBuilder(name, "OneToOne["+target+"]", KindOneToOne, "")
}

// OneToMany returns the collection side of a foreign key on the target model.
func OneToMany(name, target string) *Builder {
	return newBuilder(name, "OneToMany["+target+"]", KindOneToMany, "")
}

// ManyToMany returns a many-to-many relationship through a join table.
func ManyToMany(name, target string) *Builder {
	return newBuilder(name, "ManyToMany["+target+"]", KindManyToMany, "")
}

// Polymorphic returns a relationship whose target is resolved at runtime.
// An empty target accepts any model.
func Polymorphic(name, target string) *Builder {
	return newBuilder(name, "", KindPolymorphic, target)
}

// PolymorphicManyToMany returns a polymorphic many-to-many relationship.
func PolymorphicManyToMany(name, target string) *Builder {
	return newBuilder(name, "", KindPolymorphicManyToMany, target)
}

// GenericRelation returns the collection side of a generic foreign key.
func GenericRelation(name, target string) *Builder {
	return newBuilder(name, "", KindGenericRelation, target)
}

// GenericForeignKey returns a foreign key to any model.
func GenericForeignKey(name string) *Builder {
	return newBuilder(name, "", KindGenericForeignKey, "")
}

func (b *Builder) set(key string, v any) *Builder {
	b.rel[key] = v
	return b
}

// To overrides the target model.
func (b *Builder) To(target string) *Builder { return b.set("to", target) }

// RelatedName sets the name of the reverse accessor on the target model.
func (b *Builder) RelatedName(name string) *Builder { return b.set("related_name", name) }

// Through sets the join table of a many-to-many relationship.
func (b *Builder) Through(table string) *Builder { return b.set("through", table) }

// SourceField sets the join table column referencing the declaring model.
func (b *Builder) SourceField(column string) *Builder { return b.set("source_field", column) }

// TargetField sets the join table column referencing the target model.
func (b *Builder) TargetField(column string) *Builder { return b.set("target_field", column) }

// Field names the foreign key on the target model of a one-to-many relationship.
func (b *Builder) Field(name string) *Builder { return b.set("foreign_key", name) }

// StorageKey overrides the join column name.
func (b *Builder) StorageKey(column string) *Builder { return b.set("db_column", column) }

// OnDelete sets the referential action on delete.
func (b *Builder) OnDelete(action string) *Builder { return b.set("on_delete", action) }

// OnUpdate sets the referential action on update.
func (b *Builder) OnUpdate(action string) *Builder { return b.set("on_update", action) }

// Optional makes the join column nullable.
func (b *Builder) Optional() *Builder { return b.set("null", true) }

// PrimaryKey makes the join column part of the primary key.
func (b *Builder) PrimaryKey() *Builder {
	b.fb.PrimaryKey()
	return b
}

// Index toggles the join column index. It is on by default.
func (b *Builder) Index(on bool) *Builder { return b.set("db_index", on) }

// Descriptor implements the schema.Field interface by returning its descriptor.
func (b *Builder) Descriptor() *field.Descriptor {
	return b.fb.Descriptor()
}
