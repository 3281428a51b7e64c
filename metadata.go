package modelc

import (
	"fmt"
	"strings"
)

// DefaultAppLabel is the app label of models declared without one.
const DefaultAppLabel = "default"

// DefaultPolicy describes how a field is populated when a record is created.
type DefaultPolicy uint8

// List of default policies.
const (
	// DefaultZero populates the field with the zero value of its type.
	DefaultZero DefaultPolicy = iota
	// DefaultUUID populates the field with a fresh random UUID.
	DefaultUUID
	// DefaultNow populates the field with the current time.
	DefaultNow
	// DefaultDatabase leaves a placeholder that the database replaces on insert.
	DefaultDatabase
	// DefaultEmpty populates a relationship container with an empty value.
	DefaultEmpty
	// DefaultStatic populates the field with its declared default.
	DefaultStatic
)

var policyNames = [...]string{
	DefaultZero:     "zero",
	DefaultUUID:     "uuid",
	DefaultNow:      "now",
	DefaultDatabase: "database",
	DefaultEmpty:    "empty",
	DefaultStatic:   "static",
}

// String returns the policy name.
func (p DefaultPolicy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("DefaultPolicy(%d)", uint8(p))
}

// FieldMetadata describes one column of a model table.
type FieldMetadata struct {
	Name          string            `json:"name"`
	Column        string            `json:"column"`
	Kind          string            `json:"kind"`
	Type          ColumnType        `json:"type"`
	GoType        string            `json:"go_type,omitempty"`
	Optional      bool              `json:"optional,omitempty"`
	PrimaryKey    bool              `json:"primary_key,omitempty"`
	AutoIncrement bool              `json:"auto_increment,omitempty"`
	Nullable      bool              `json:"nullable,omitempty"`
	Unique        bool              `json:"unique,omitempty"`
	Index         bool              `json:"index,omitempty"`
	Blank         bool              `json:"blank,omitempty"`
	Editable      bool              `json:"editable"`
	Auto          bool              `json:"auto,omitempty"`
	Default       DefaultPolicy     `json:"default"`
	DefaultValue  string            `json:"default_value,omitempty"`
	JoinColumn    bool              `json:"join_column,omitempty"`
	Relation      string            `json:"relation,omitempty"`
	References    string            `json:"references,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

// Attr returns the attribute value stored under key.
func (f *FieldMetadata) Attr(key string) (string, bool) {
	v, ok := f.Attributes[key]
	return v, ok
}

// IndexMetadata describes a single-column or multi-column index.
type IndexMetadata struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
	Unique bool     `json:"unique,omitempty"`
}

// ConstraintType is the kind of a table constraint.
type ConstraintType string

// List of constraint types.
const (
	ConstraintCheck  ConstraintType = "check"
	ConstraintUnique ConstraintType = "unique"
)

// ConstraintMetadata describes a table constraint.
type ConstraintMetadata struct {
	Name       string         `json:"name"`
	Type       ConstraintType `json:"type"`
	Fields     []string       `json:"fields,omitempty"`
	Definition string         `json:"definition"`
	Condition  string         `json:"condition,omitempty"`
}

// ManyToManyMetadata describes the join table of a many-to-many field.
type ManyToManyMetadata struct {
	FieldName   string `json:"field_name"`
	To          string `json:"to"`
	RelatedName string `json:"related_name,omitempty"`
	Through     string `json:"through"`
	SourceField string `json:"source_field"`
	TargetField string `json:"target_field"`
}

// RelationshipType is the kind of a relationship entry.
type RelationshipType string

// List of relationship types.
const (
	ForeignKey RelationshipType = "foreign_key"
	OneToOne   RelationshipType = "one_to_one"
	OneToMany  RelationshipType = "one_to_many"
	ManyToMany RelationshipType = "many_to_many"
)

// Mirror returns the type of the reverse entry of a relationship.
func (t RelationshipType) Mirror() RelationshipType {
	if t == OneToMany {
		return ForeignKey
	}
	return t
}

// RelationshipMetadata is one entry of the relationship graph. Models are
// identified by their qualified name, e.g. "shop.Order".
type RelationshipMetadata struct {
	FromModel    string           `json:"from_model"`
	ToModel      string           `json:"to_model"`
	Type         RelationshipType `json:"type"`
	FieldName    string           `json:"field_name"`
	RelatedName  string           `json:"related_name,omitempty"`
	DBColumn     string           `json:"db_column,omitempty"`
	ThroughTable string           `json:"through_table,omitempty"`
	OnDelete     string           `json:"on_delete,omitempty"`
	OnUpdate     string           `json:"on_update,omitempty"`
	Reverse      bool             `json:"reverse,omitempty"`
}

// FromModelName returns the unqualified name of the source model.
func (r RelationshipMetadata) FromModelName() string { return unqualified(r.FromModel) }

// ToModelName returns the unqualified name of the target model.
func (r RelationshipMetadata) ToModelName() string { return unqualified(r.ToModel) }

// Mirrored returns the reverse entry of r. It panics if r has no related name.
func (r RelationshipMetadata) Mirrored() RelationshipMetadata {
	if r.RelatedName == "" {
		panic("modelc: mirroring relationship " + r.FromModel + "." + r.FieldName + " without related name")
	}
	return RelationshipMetadata{
		FromModel:    r.ToModel,
		ToModel:      r.FromModel,
		Type:         r.Type.Mirror(),
		FieldName:    r.RelatedName,
		RelatedName:  r.FieldName,
		ThroughTable: r.ThroughTable,
		Reverse:      true,
	}
}

func unqualified(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// ModelMetadata is the compiled description of a model.
type ModelMetadata struct {
	AppLabel      string                 `json:"app_label"`
	Name          string                 `json:"name"`
	Table         string                 `json:"table"`
	VerboseName   string                 `json:"verbose_name,omitempty"`
	Ordering      []string               `json:"ordering,omitempty"`
	Fields        []*FieldMetadata       `json:"fields"`
	PrimaryKey    []string               `json:"primary_key"`
	Indexes       []*IndexMetadata       `json:"indexes,omitempty"`
	Constraints   []*ConstraintMetadata  `json:"constraints,omitempty"`
	ManyToMany    []*ManyToManyMetadata  `json:"many_to_many,omitempty"`
	Relationships []RelationshipMetadata `json:"relationships,omitempty"`
}

// Key returns the registry key of the model.
func (m *ModelMetadata) Key() ModelKey {
	return ModelKey{AppLabel: m.AppLabel, Model: m.Name}
}

// QualifiedName returns "app_label.Model".
func (m *ModelMetadata) QualifiedName() string { return m.Key().String() }

// Field returns the field metadata with the given name.
func (m *ModelMetadata) Field(name string) (*FieldMetadata, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// FieldByColumn returns the field metadata stored in the given column.
func (m *ModelMetadata) FieldByColumn(column string) (*FieldMetadata, bool) {
	for _, f := range m.Fields {
		if f.Column == column {
			return f, true
		}
	}
	return nil, false
}

// Columns returns the column names of the table, in field order.
func (m *ModelMetadata) Columns() []string {
	columns := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		columns[i] = f.Column
	}
	return columns
}

// PrimaryKeyFields returns the metadata of the primary key fields, in key order.
func (m *ModelMetadata) PrimaryKeyFields() []*FieldMetadata {
	fields := make([]*FieldMetadata, 0, len(m.PrimaryKey))
	for _, name := range m.PrimaryKey {
		if f, ok := m.Field(name); ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// HasCompositeKey reports if the model has more than one primary key field.
func (m *ModelMetadata) HasCompositeKey() bool { return len(m.PrimaryKey) > 1 }

// ModelKey identifies a model by app label and name.
type ModelKey struct {
	AppLabel string `json:"app_label"`
	Model    string `json:"model"`
}

// ParseModelKey parses "app.Model" or "Model". Unqualified names get the
// given default app label.
func ParseModelKey(s, defaultApp string) ModelKey {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return ModelKey{AppLabel: s[:i], Model: s[i+1:]}
	}
	if defaultApp == "" {
		defaultApp = DefaultAppLabel
	}
	return ModelKey{AppLabel: defaultApp, Model: s}
}

// String returns "app_label.Model".
func (k ModelKey) String() string { return k.AppLabel + "." + k.Model }
