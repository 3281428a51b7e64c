package gen

import (
	"cmp"
	"fmt"
	"sort"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/load"
	"github.com/syssam/modelc/dialect"
	"github.com/syssam/modelc/schema/field"
)

// containers maps relationship kinds to the container type they are declared with.
var containers = map[load.RelationKind]field.Type{
	load.ForeignKey:            field.TypeForeignKey,
	load.OneToOne:              field.TypeOneToOne,
	load.OneToMany:             field.TypeOneToMany,
	load.ManyToMany:            field.TypeManyToMany,
	load.Polymorphic:           field.TypeForeignKey,
	load.GenericForeignKey:     field.TypeForeignKey,
	load.GenericRelation:       field.TypeOneToMany,
	load.PolymorphicManyToMany: field.TypeManyToMany,
}

// containerKinds maps container types to their canonical relationship kind.
var containerKinds = map[field.Type]load.RelationKind{
	field.TypeForeignKey: load.ForeignKey,
	field.TypeOneToOne:   load.OneToOne,
	field.TypeOneToMany:  load.OneToMany,
	field.TypeManyToMany: load.ManyToMany,
}

// relationTypes maps relationship kinds to registry entry types.
var relationTypes = map[load.RelationKind]modelc.RelationshipType{
	load.ForeignKey:            modelc.ForeignKey,
	load.Polymorphic:           modelc.ForeignKey,
	load.GenericForeignKey:     modelc.ForeignKey,
	load.OneToOne:              modelc.OneToOne,
	load.OneToMany:             modelc.OneToMany,
	load.GenericRelation:       modelc.OneToMany,
	load.ManyToMany:            modelc.ManyToMany,
	load.PolymorphicManyToMany: modelc.ManyToMany,
}

// hasJoinColumn reports if relations of the given kind store the target key
// in a column of the declaring table.
func hasJoinColumn(k load.RelationKind) bool {
	return k == load.ForeignKey || k == load.OneToOne
}

// structural attributes are stored on FieldMetadata itself, everything else
// goes into the attribute bag.
var structural = map[string]bool{
	"primary_key":    true,
	"null":           true,
	"blank":          true,
	"unique":         true,
	"index":          true,
	"editable":       true,
	"default":        true,
	"db_column":      true,
	"foreign_key":    true,
	"include_in_new": true,
}

// classify assigns every declared field its role and synthesizes the join
// columns of foreign key and one-to-one relations.
func (m *Model) classify() error {
	d := m.decl
	var pks int
	for _, fd := range d.Fields {
		if fd.PrimaryKey {
			pks++
		}
	}
	// joins maps a declared "{relation}_id" field to its relation.
	joins := make(map[string]string)
	for _, fd := range d.Fields {
		if rel := relationOf(fd); rel != nil && hasJoinColumn(rel.Kind) {
			if jc, ok := d.Field(fd.Name + "_id"); ok && relationOf(jc) == nil {
				joins[jc.Name] = fd.Name
			}
		}
	}
	declared := make(map[string]*Field)
	for _, fd := range d.Fields {
		if rel, ok := joins[fd.Name]; ok {
			f := m.joinColumn(fd.Name, fd)
			declared[rel] = f
			m.Fields = append(m.Fields, f)
			continue
		}
		if relationOf(fd) == nil {
			m.Fields = append(m.Fields, m.plainField(fd, pks))
			continue
		}
		f, err := m.relationField(fd)
		if err != nil {
			return err
		}
		m.Fields = append(m.Fields, f)
		if hasJoinColumn(f.Rel.Kind) {
			if _, ok := d.Field(fd.Name + "_id"); !ok {
				jc := m.joinColumn(fd.Name+"_id", nil)
				m.link(f, jc)
				m.Fields = append(m.Fields, jc)
			}
		}
	}
	for name, jc := range declared {
		f, _ := m.Field(name)
		m.link(f, jc)
	}
	return m.checkColumns()
}

// relationOf returns the relationship of a declared field, inferring it from
// a container type when no explicit relationship attribute is set. A
// foreign_key attribute on a scalar field only references the target table.
func relationOf(fd *load.FieldDecl) *load.Relation {
	if isReference(fd) {
		return nil
	}
	if fd.Rel != nil {
		return fd.Rel
	}
	if fd.Type != nil && fd.Type.Type.Relation() {
		return &load.Relation{Kind: containerKinds[fd.Type.Type]}
	}
	return nil
}

func isReference(fd *load.FieldDecl) bool {
	return fd.Declared("foreign_key") && fd.Type != nil && !fd.Type.Type.Relation()
}

func (m *Model) plainField(fd *load.FieldDecl, pks int) *Field {
	f := &Field{
		Name:       fd.Name,
		Column:     cmp.Or(fd.DBColumn, fd.Name),
		Kind:       PlainField,
		Type:       fd.Type,
		Decl:       fd,
		PrimaryKey: fd.PrimaryKey,
		Optional:   fd.Type.Optional,
		Nullable:   fd.Null || fd.Type.Optional,
		Unique:     fd.Unique,
		Index:      fd.Index,
		Blank:      fd.Blank,
		Editable:   fd.Editable,
		Attrs:      attrBag(fd),
	}
	if isReference(fd) {
		f.References = m.qualify(fd.Rel.To)
	}
	f.AutoIncrement = autoIncrement(fd, pks)
	f.Default, f.DefaultValue = defaultPolicy(fd, f.AutoIncrement)
	f.Auto = autoManaged(fd, f.AutoIncrement)
	return f
}

// autoIncrement reports if the database assigns the field value. A single
// integer primary key auto-increments unless auto_increment is false.
func autoIncrement(fd *load.FieldDecl, pks int) bool {
	switch {
	case fd.IdentityAlways, fd.IdentityByDefault, fd.Autoincrement:
		return true
	case fd.AutoIncrement != nil:
		return *fd.AutoIncrement
	}
	return fd.PrimaryKey && pks == 1 && fd.Type.Type.Integer()
}

// autoManaged reports if the field is excluded from the constructor.
func autoManaged(fd *load.FieldDecl, autoInc bool) bool {
	switch {
	case fd.IncludeInNew != nil:
		return !*fd.IncludeInNew
	case fd.AutoNow, fd.AutoNowAdd, fd.OnUpdateCurrentTimestamp:
		return true
	case fd.Generated != "":
		return true
	case autoInc:
		return true
	}
	return fd.PrimaryKey && fd.Type.Type == field.TypeUUID
}

// defaultPolicy returns how the field is populated when not supplied.
func defaultPolicy(fd *load.FieldDecl, autoInc bool) (modelc.DefaultPolicy, string) {
	switch {
	case fd.PrimaryKey && fd.Type.Type == field.TypeUUID:
		return modelc.DefaultUUID, ""
	case autoInc, fd.Generated != "":
		return modelc.DefaultDatabase, ""
	case fd.AutoNow, fd.AutoNowAdd, fd.OnUpdateCurrentTimestamp:
		// Only zoned timestamps get the current time, optional ones included.
		if fd.Type.Type == field.TypeTime {
			return modelc.DefaultNow, ""
		}
		return modelc.DefaultZero, ""
	case fd.HasDefault:
		return modelc.DefaultStatic, fmt.Sprint(fd.Default)
	}
	return modelc.DefaultZero, ""
}

// attrBag renders the non-structural attributes of a field as strings.
func attrBag(fd *load.FieldDecl) map[string]string {
	bag := make(map[string]string)
	for key, v := range fd.Attrs {
		if !structural[key] {
			bag[key] = attrString(v)
		}
	}
	if len(bag) == 0 {
		return nil
	}
	return bag
}

func attrString(v any) string {
	switch v := v.(type) {
	case nil:
		return "true"
	case string:
		if v == "" {
			return "true"
		}
		return v
	}
	return fmt.Sprint(v)
}

func (m *Model) relationField(fd *load.FieldDecl) (*Field, error) {
	rel := relationOf(fd)
	if fd.Type != nil {
		switch t := fd.Type.Type; {
		case !t.Relation():
			return nil, modelc.NewRelationshipError(m.Name, fd.Name, "",
				fmt.Sprintf("relationship kind %s requires a relationship container type, got %s", rel.Kind, fd.Type))
		case containers[rel.Kind] != t:
			return nil, modelc.NewRelationshipError(m.Name, fd.Name, "",
				fmt.Sprintf("%s field must use relationship kind %s", t, containerKinds[t]))
		}
	}
	if fd.PrimaryKey && !hasJoinColumn(rel.Kind) {
		return nil, modelc.NewDeclarationError(m.Name, fd.Name, "primary_key", "only foreign key and one-to-one relations can be part of the primary key")
	}
	target, err := m.target(fd, rel)
	if err != nil {
		return nil, err
	}
	f := &Field{
		Name:       fd.Name,
		Column:     fd.Name,
		Kind:       RelationField,
		Type:       fd.Type,
		Label:      relationLabel(rel.Kind),
		Decl:       fd,
		PrimaryKey: fd.PrimaryKey,
		Nullable:   fd.Null || rel.Null,
		Editable:   fd.Editable,
		Auto:       true,
		Default:    modelc.DefaultEmpty,
	}
	f.Rel = &Relation{
		Field:       f,
		Kind:        rel.Kind,
		Type:        relationTypes[rel.Kind],
		Target:      target,
		RelatedName: rel.RelatedName,
		Through:     rel.Through,
		SourceField: rel.SourceField,
		TargetField: rel.TargetField,
		ForeignKey:  rel.ForeignKey,
		OnDelete:    rel.OnDelete,
		OnUpdate:    rel.OnUpdate,
	}
	m.Relations = append(m.Relations, f.Rel)
	return f, nil
}

// target returns the qualified target of a relation. An explicit "to"
// must agree with the container type parameter.
func (m *Model) target(fd *load.FieldDecl, rel *load.Relation) (string, error) {
	var param string
	if fd.Type != nil {
		param = fd.Type.Target()
		if ps := fd.Type.Params; fd.Type.Type == field.TypeManyToMany && len(ps) == 2 {
			if src := m.qualify(ps[0]); src != m.QualifiedName() {
				return "", modelc.NewRelationshipError(m.Name, fd.Name, src,
					fmt.Sprintf("ManyToMany source must be %s", m.Name))
			}
		}
	}
	switch {
	case rel.To != "" && param != "" && m.qualify(rel.To) != m.qualify(param):
		return "", modelc.NewRelationshipError(m.Name, fd.Name, rel.To,
			fmt.Sprintf("target conflicts with container type %s", fd.Type))
	case rel.To != "":
		return m.qualify(rel.To), nil
	case param != "":
		return m.qualify(param), nil
	case rel.Kind.Generic():
		return AnyTarget, nil
	}
	return "", modelc.NewRelationshipError(m.Name, fd.Name, "", "missing relationship target")
}

// qualify prefixes unqualified model names with the app label of the model.
func (m *Model) qualify(name string) string {
	return modelc.ParseModelKey(name, m.AppLabel).String()
}

// joinColumn creates the join column of a relation. fd is nil for
// synthesized columns.
func (m *Model) joinColumn(name string, fd *load.FieldDecl) *Field {
	f := &Field{
		Name:     name,
		Column:   name,
		Kind:     JoinColumnField,
		Decl:     fd,
		Editable: true,
		Auto:     true,
		Default:  modelc.DefaultZero,
	}
	if fd != nil {
		f.Column = cmp.Or(fd.DBColumn, name)
		f.Type = fd.Type
		f.PrimaryKey = fd.PrimaryKey
		f.Optional = fd.Type != nil && fd.Type.Optional
		f.Nullable = fd.Null || f.Optional
		f.Unique = fd.Unique
		f.Index = fd.Index
		f.Editable = fd.Editable
		f.Attrs = attrBag(fd)
	}
	return f
}

// link attaches a join column to its relation field.
func (m *Model) link(rf, jc *Field) {
	rel, decl := rf.Rel, rf.Decl
	rel.JoinColumn = jc
	jc.Rel = rel
	jc.Label = joinLabel(rel.Kind)
	if jc.Decl == nil {
		var column string
		if decl.Rel != nil {
			column = decl.Rel.DBColumn
		}
		jc.Column = cmp.Or(column, decl.DBColumn, jc.Name)
		jc.PrimaryKey = rf.PrimaryKey
		jc.Editable = rf.Editable
		jc.Nullable = rf.Nullable
		jc.Optional = rf.Nullable
	}
	jc.Unique = jc.Unique || rel.Kind == load.OneToOne
	if rel := decl.Rel; rel == nil || rel.DBIndex == nil || *rel.DBIndex {
		jc.Index = true
	}
	// The relation itself owns the key.
	rf.PrimaryKey = false
}

func relationLabel(k load.RelationKind) string {
	switch k {
	case load.ForeignKey:
		return "ForeignKey"
	case load.OneToOne:
		return "OneToOneField"
	case load.ManyToMany:
		return "ManyToManyField"
	case load.OneToMany:
		return "OneToManyField"
	case load.GenericRelation:
		return "GenericRelation"
	case load.GenericForeignKey:
		return "GenericForeignKey"
	case load.Polymorphic:
		return "PolymorphicForeignKey"
	case load.PolymorphicManyToMany:
		return "PolymorphicManyToManyField"
	}
	return ""
}

func joinLabel(k load.RelationKind) string {
	if k == load.OneToOne {
		return "OneToOneField"
	}
	return "ForeignKey"
}

// checkColumns rejects two fields stored in the same column.
func (m *Model) checkColumns() error {
	seen := make(map[string]string)
	for _, f := range m.Columns() {
		if prev, ok := seen[f.Column]; ok {
			return modelc.NewDeclarationError(m.Name, f.Name, "db_column",
				fmt.Sprintf("column %q is already used by field %s", f.Column, prev))
		}
		seen[f.Column] = f.Name
	}
	return nil
}

// checkBackend rejects backend extensions the selected storage does not support.
func (m *Model) checkBackend() error {
	s := m.config.Storage
	if s == nil {
		return nil
	}
	for _, fd := range m.decl.Fields {
		keys := make([]string, 0, len(fd.Attrs))
		for key, v := range fd.Attrs {
			if len(dialect.Required(key)) > 0 && attrString(v) != "false" {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			if err := s.checkAttr(key); err != nil {
				return modelc.NewDeclarationError(m.Name, fd.Name, key, err.Error())
			}
		}
	}
	for _, c := range m.decl.Constraints {
		if c.Condition != "" && !s.SchemaMode.Support(PartialIndexes) {
			return modelc.NewDeclarationError(m.Name, "", "condition",
				fmt.Sprintf("conditional unique constraint %s is not supported by %s", c.Name, s.IdentName))
		}
	}
	return nil
}
