package load

import (
	"slices"

	"github.com/syssam/modelc/schema/field"
)

// Declaration is the parsed, validated form of a model spec.
type Declaration struct {
	Name        string
	Table       string
	AppLabel    string
	VerboseName string
	Ordering    []string
	Fields      []*FieldDecl
	Constraints []*Constraint
}

// Field returns the declared field with the given name.
func (d *Declaration) Field(name string) (*FieldDecl, bool) {
	i := slices.IndexFunc(d.Fields, func(f *FieldDecl) bool { return f.Name == name })
	if i < 0 {
		return nil, false
	}
	return d.Fields[i], true
}

// QualifiedName returns "app_label.Model".
func (d *Declaration) QualifiedName() string { return d.AppLabel + "." + d.Name }

// FieldDecl is a declared field.
type FieldDecl struct {
	Name string
	// Type is nil for generic relations declared without a container type.
	Type *field.TypeInfo

	PrimaryKey bool
	Null       bool
	Blank      bool
	Unique     bool
	Index      bool
	Editable   bool

	MaxLength     *int
	MinLength     *int
	MinValue      *int64
	MaxValue      *int64
	MaxDigits     *int
	DecimalPlaces *int
	Email         bool
	URL           bool

	// Default holds the declared static default, if HasDefault is set.
	Default    any
	HasDefault bool

	DBColumn string
	Check    string

	AutoNow    bool
	AutoNowAdd bool

	Generated        string
	GeneratedStored  bool
	GeneratedVirtual bool

	IdentityAlways    bool
	IdentityByDefault bool
	// AutoIncrement is nil when the attribute is not declared.
	AutoIncrement *bool
	Autoincrement bool

	// IncludeInNew is nil when the attribute is not declared.
	IncludeInNew *bool

	Collate                  string
	CharacterSet             string
	Comment                  string
	Storage                  string
	Compression              string
	OnUpdateCurrentTimestamp bool
	Invisible                bool
	Fulltext                 bool
	Unsigned                 bool
	Zerofill                 bool
	FieldType                string
	ArrayBaseType            string

	Rel *Relation

	// Attrs holds the attributes exactly as declared.
	Attrs map[string]any
}

// Declared reports if the attribute was present in the declaration.
func (f *FieldDecl) Declared(attr string) bool {
	_, ok := f.Attrs[attr]
	return ok
}

// RelationKind is the kind of a relationship attribute.
type RelationKind string

// List of relationship kinds.
const (
	ForeignKey            RelationKind = "foreign_key"
	OneToOne              RelationKind = "one_to_one"
	OneToMany             RelationKind = "one_to_many"
	ManyToMany            RelationKind = "many_to_many"
	Polymorphic           RelationKind = "polymorphic"
	PolymorphicManyToMany RelationKind = "polymorphic_many_to_many"
	GenericRelation       RelationKind = "generic_relation"
	GenericForeignKey     RelationKind = "generic_foreign_key"
)

// Valid reports if k is a known relationship kind.
func (k RelationKind) Valid() bool {
	switch k {
	case ForeignKey, OneToOne, OneToMany, ManyToMany,
		Polymorphic, PolymorphicManyToMany, GenericRelation, GenericForeignKey:
		return true
	}
	return false
}

// Generic reports if the relationship has no container type.
func (k RelationKind) Generic() bool {
	switch k {
	case Polymorphic, PolymorphicManyToMany, GenericRelation, GenericForeignKey:
		return true
	}
	return false
}

// Relation is a declared relationship attribute.
type Relation struct {
	Kind        RelationKind
	To          string
	RelatedName string
	Through     string
	SourceField string
	TargetField string
	ForeignKey  string
	DBColumn    string
	OnDelete    string
	OnUpdate    string
	Null        bool
	// DBIndex is nil when the attribute is not declared.
	DBIndex *bool
}

// ConstraintKind is the kind of a model-level constraint.
type ConstraintKind string

// List of constraint kinds.
const (
	UniqueConstraint ConstraintKind = "unique"
	CheckConstraint  ConstraintKind = "check"
)

// Constraint is a declared model-level constraint.
type Constraint struct {
	Kind      ConstraintKind
	Name      string
	Fields    []string
	Expr      string
	Condition string
}
