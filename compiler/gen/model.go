package gen

import (
	"slices"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/load"
	"github.com/syssam/modelc/schema/field"
)

// FieldKind classifies a declared field.
type FieldKind uint8

// List of field kinds.
const (
	// PlainField is an ordinary column.
	PlainField FieldKind = iota
	// JoinColumnField is the column holding the key of a foreign key or
	// one-to-one relation.
	JoinColumnField
	// RelationField is a relationship container. It has no column of its own.
	RelationField
)

// String returns the kind name.
func (k FieldKind) String() string {
	switch k {
	case PlainField:
		return "plain"
	case JoinColumnField:
		return "join_column"
	case RelationField:
		return "relation"
	}
	return "invalid"
}

// Model is a compiled model.
type Model struct {
	Name        string
	AppLabel    string
	Table       string
	VerboseName string
	Ordering    []string
	// Fields holds the declared fields in order. A synthesized join column
	// follows the relation field it belongs to.
	Fields      []*Field
	PrimaryKey  []*Field
	Relations   []*Relation
	Constraints []*load.Constraint

	// Meta is the emitted metadata of the model.
	Meta *modelc.ModelMetadata
	// Fingerprint is the sha256 digest of Meta.
	Fingerprint string

	decl   *load.Declaration
	config *Config
}

// Key returns the registry key of the model.
func (m *Model) Key() modelc.ModelKey {
	return modelc.ModelKey{AppLabel: m.AppLabel, Model: m.Name}
}

// QualifiedName returns "app_label.Model".
func (m *Model) QualifiedName() string { return m.Key().String() }

// Declaration returns the parsed declaration of the model.
func (m *Model) Declaration() *load.Declaration { return m.decl }

// Field returns the field with the given name.
func (m *Model) Field(name string) (*Field, bool) {
	i := slices.IndexFunc(m.Fields, func(f *Field) bool { return f.Name == name })
	if i < 0 {
		return nil, false
	}
	return m.Fields[i], true
}

// Columns returns the fields stored in the model table, in order.
func (m *Model) Columns() []*Field {
	var fs []*Field
	for _, f := range m.Fields {
		if f.Kind != RelationField {
			fs = append(fs, f)
		}
	}
	return fs
}

// Setters returns the columns that have a write accessor.
func (m *Model) Setters() []*Field {
	var fs []*Field
	for _, f := range m.Columns() {
		if !f.Auto {
			fs = append(fs, f)
		}
	}
	return fs
}

// Params returns the parameters of the model constructor, in order: every
// user supplied column and the key of every foreign key and one-to-one
// relation.
func (m *Model) Params() []*Field {
	var fs []*Field
	for _, f := range m.Fields {
		switch {
		case f.Kind == PlainField && !f.Auto:
			fs = append(fs, f)
		case f.Kind == RelationField && f.Rel.JoinColumn != nil:
			fs = append(fs, f)
		}
	}
	return fs
}

// HasCompositeKey reports if the model has more than one primary key field.
func (m *Model) HasCompositeKey() bool { return len(m.PrimaryKey) > 1 }

// New creates a runtime record of the model. values holds the user supplied
// fields; relations are passed under the relation name.
func (m *Model) New(values map[string]any) (*modelc.Record, error) {
	return modelc.NewRecord(m.Meta, values)
}

// Receiver returns the receiver name of the generated model type.
func (m *Model) Receiver() string { return receiver(m.Name) }

// CompositeKeyName returns the name of the generated composite key type.
func (m *Model) CompositeKeyName() string { return m.Name + "CompositePK" }

// VarName returns the prefix of unexported package-level identifiers of
// the model, e.g. orderLine.
func (m *Model) VarName() string { return camel(snake(m.Name)) }

// SliceName returns the name of the generated slice type, e.g. Orders.
func (m *Model) SliceName() string { return plural(m.Name) }

// SelectorName returns the name of the generated field selector type.
func (m *Model) SelectorName() string { return m.Name + "Fields" }

// FileName returns the name of the generated file of the model.
func (m *Model) FileName() string { return snake(m.Name) + ".go" }

// Field is a compiled field.
type Field struct {
	Name   string
	Column string
	Kind   FieldKind
	// Type is the declared type. Join columns carry the key type of the
	// relation target; generic relations have none.
	Type       *field.TypeInfo
	ColumnType modelc.ColumnType
	// Label is the metadata kind label, e.g. "CharField".
	Label string
	// Decl is nil for synthesized join columns.
	Decl *load.FieldDecl

	PrimaryKey    bool
	Optional      bool
	Nullable      bool
	Unique        bool
	Index         bool
	Blank         bool
	Editable      bool
	Auto          bool
	AutoIncrement bool
	Default       modelc.DefaultPolicy
	DefaultValue  string

	// Rel is the relation of relation fields and join columns.
	Rel *Relation
	// References is the qualified model a plain column points to.
	References string
	Attrs      map[string]string
}

// StructField returns the name of the generated struct field and getter.
func (f *Field) StructField() string { return pascal(f.Name) }

// Setter returns the name of the generated setter.
func (f *Field) Setter() string { return "Set" + pascal(f.Name) }

// Param returns the name of the constructor parameter.
func (f *Field) Param() string {
	p := camel(f.Name)
	if _, ok := importPkg[p]; ok || isKeyword(p) {
		p += "Value"
	}
	return p
}

// IsJoinColumn reports if the field is a synthesized or declared join column.
func (f *Field) IsJoinColumn() bool { return f.Kind == JoinColumnField }

// IsRelation reports if the field is a relationship container.
func (f *Field) IsRelation() bool { return f.Kind == RelationField }

// Relation is a compiled relationship.
type Relation struct {
	// Field is the declaring relation field.
	Field *Field
	Kind  load.RelationKind
	Type  modelc.RelationshipType
	// Target is the qualified name of the target model, or "*" for
	// generic relations that accept any model.
	Target      string
	RelatedName string
	Through     string
	SourceField string
	TargetField string
	ForeignKey  string
	OnDelete    string
	OnUpdate    string
	// JoinColumn is set for foreign key and one-to-one relations.
	JoinColumn *Field

	resolved bool
}

// AnyTarget is the target of generic relations declared without one.
const AnyTarget = "*"
