package gen

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/load"
)

// emit assembles the metadata of the model and its fingerprint.
func (m *Model) emit() error {
	meta := &modelc.ModelMetadata{
		AppLabel:    m.AppLabel,
		Name:        m.Name,
		Table:       m.Table,
		VerboseName: m.VerboseName,
		Ordering:    slices.Clone(m.Ordering),
		PrimaryKey:  m.KeyFields(),
	}
	for _, f := range m.Columns() {
		meta.Fields = append(meta.Fields, f.metadata())
		if f.Index && !f.PrimaryKey && !f.Unique {
			meta.Indexes = append(meta.Indexes, &modelc.IndexMetadata{
				Name:   m.Table + "_" + f.Name + "_idx",
				Fields: []string{f.Name},
			})
		}
		if f.Decl != nil && f.Decl.Check != "" {
			meta.Constraints = append(meta.Constraints, &modelc.ConstraintMetadata{
				Name:       f.Name + "_check",
				Type:       modelc.ConstraintCheck,
				Fields:     []string{f.Name},
				Definition: f.Decl.Check,
			})
		}
	}
	for _, c := range m.Constraints {
		meta.Constraints = append(meta.Constraints, m.constraint(c))
	}
	for _, rel := range m.Relations {
		if rel.Type == modelc.ManyToMany {
			meta.ManyToMany = append(meta.ManyToMany, &modelc.ManyToManyMetadata{
				FieldName:   rel.Field.Name,
				To:          rel.Target,
				RelatedName: rel.RelatedName,
				Through:     rel.Through,
				SourceField: rel.SourceField,
				TargetField: rel.TargetField,
			})
		}
		forward := rel.metadata(m.QualifiedName())
		meta.Relationships = append(meta.Relationships, forward)
		if rel.RelatedName != "" && rel.Target != AnyTarget {
			meta.Relationships = append(meta.Relationships, forward.Mirrored())
		}
	}
	fp, err := modelc.Fingerprint(meta)
	if err != nil {
		return NewGenerationError(m.QualifiedName(), "", StageFingerprint, err)
	}
	m.Meta, m.Fingerprint = meta, fp
	return nil
}

func (f *Field) metadata() *modelc.FieldMetadata {
	fm := &modelc.FieldMetadata{
		Name:          f.Name,
		Column:        f.Column,
		Kind:          f.Label,
		Type:          f.ColumnType,
		GoType:        f.GoType(),
		Optional:      f.Optional,
		PrimaryKey:    f.PrimaryKey,
		AutoIncrement: f.AutoIncrement,
		Nullable:      f.Nullable,
		Unique:        f.Unique,
		Index:         f.Index,
		Blank:         f.Blank,
		Editable:      f.Editable,
		Auto:          f.Auto,
		Default:       f.Default,
		DefaultValue:  f.DefaultValue,
		References:    f.References,
		Attributes:    maps.Clone(f.Attrs),
	}
	if f.IsJoinColumn() {
		fm.JoinColumn = true
		fm.Relation = f.Rel.Field.Name
		fm.References = f.Rel.Target
	}
	return fm
}

// constraint renders a model-level constraint. Unique definitions list the
// constrained columns.
func (m *Model) constraint(c *load.Constraint) *modelc.ConstraintMetadata {
	cm := &modelc.ConstraintMetadata{
		Name:      c.Name,
		Fields:    slices.Clone(c.Fields),
		Condition: c.Condition,
	}
	switch c.Kind {
	case load.CheckConstraint:
		cm.Type = modelc.ConstraintCheck
		cm.Definition = c.Expr
	default:
		cm.Type = modelc.ConstraintUnique
		columns := make([]string, len(c.Fields))
		for i, name := range c.Fields {
			columns[i] = m.column(name)
		}
		cm.Definition = fmt.Sprintf("UNIQUE (%s)", strings.Join(columns, ", "))
		if c.Condition != "" {
			cm.Definition += " WHERE " + c.Condition
		}
	}
	return cm
}

// column returns the column storing the named field. Relations resolve to
// their join column.
func (m *Model) column(name string) string {
	f, ok := m.Field(name)
	switch {
	case !ok:
		return name
	case f.IsRelation() && f.Rel.JoinColumn != nil:
		return f.Rel.JoinColumn.Column
	}
	return f.Column
}

func (r *Relation) metadata(from string) modelc.RelationshipMetadata {
	rm := modelc.RelationshipMetadata{
		FromModel:    from,
		ToModel:      r.Target,
		Type:         r.Type,
		FieldName:    r.Field.Name,
		RelatedName:  r.RelatedName,
		ThroughTable: r.Through,
		OnDelete:     r.OnDelete,
		OnUpdate:     r.OnUpdate,
	}
	switch {
	case r.JoinColumn != nil:
		rm.DBColumn = r.JoinColumn.Column
	case r.Type == modelc.OneToMany:
		rm.DBColumn = r.ForeignKey
	}
	return rm
}
