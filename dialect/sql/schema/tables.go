package schema

import (
	"fmt"
	"maps"

	"github.com/syssam/modelc"
)

// Tables returns the tables of the given models: one per model plus one per
// many-to-many join table. Every relationship target must be part of models.
func Tables(models []*modelc.ModelMetadata) ([]*Table, error) {
	var (
		tables []*Table
		byName = make(map[string]*Table, len(models))
		metas  = make(map[string]*modelc.ModelMetadata, len(models))
	)
	for _, m := range models {
		t := modelTable(m)
		tables = append(tables, t)
		byName[m.QualifiedName()] = t
		metas[m.QualifiedName()] = m
	}
	for _, m := range models {
		t := byName[m.QualifiedName()]
		if err := addForeignKeys(t, m, byName); err != nil {
			return nil, err
		}
	}
	seen := make(map[string]bool)
	for _, t := range tables {
		seen[t.Name] = true
	}
	for _, m := range models {
		for _, mm := range m.ManyToMany {
			if mm.To == "*" || seen[mm.Through] {
				continue
			}
			target, ok := metas[mm.To]
			if !ok {
				return nil, modelc.NewRelationshipError(m.Name, mm.FieldName, mm.To, "target model is not part of the schema")
			}
			jt, err := joinTable(mm, byName[m.QualifiedName()], byName[target.QualifiedName()])
			if err != nil {
				return nil, modelc.NewRelationshipError(m.Name, mm.FieldName, mm.To, err.Error())
			}
			seen[jt.Name] = true
			tables = append(tables, jt)
		}
	}
	return tables, nil
}

// modelTable returns the table of a model without its foreign keys.
func modelTable(m *modelc.ModelMetadata) *Table {
	t := &Table{Name: m.Table, Model: m.QualifiedName(), Comment: m.VerboseName}
	for _, f := range m.Fields {
		c := &Column{
			Name:      f.Column,
			Type:      f.Type,
			Nullable:  f.Nullable,
			Unique:    f.Unique && !f.PrimaryKey,
			Increment: f.AutoIncrement,
			Attrs:     maps.Clone(f.Attributes),
		}
		c.Comment, _ = f.Attr("comment")
		switch f.Default {
		case modelc.DefaultStatic:
			c.Default = f.DefaultValue
		case modelc.DefaultNow:
			c.DefaultExpr = "CURRENT_TIMESTAMP"
		}
		t.AddColumn(c)
		if f.PrimaryKey {
			t.PrimaryKey = append(t.PrimaryKey, c)
		}
	}
	for _, idx := range m.Indexes {
		t.AddIndex(idx.Name, idx.Unique, columnsOf(m, idx.Fields))
	}
	for _, c := range m.Constraints {
		switch c.Type {
		case modelc.ConstraintCheck:
			t.Checks = append(t.Checks, &Check{Name: c.Name, Expr: c.Definition})
		case modelc.ConstraintUnique:
			t.AddIndex(c.Name, true, columnsOf(m, c.Fields))
			t.Indexes[len(t.Indexes)-1].Where = c.Condition
		}
	}
	return t
}

// columnsOf maps field names to the columns storing them. Relations map to
// their join column.
func columnsOf(m *modelc.ModelMetadata, fields []string) []string {
	columns := make([]string, 0, len(fields))
	for _, name := range fields {
		if f, ok := m.Field(name); ok {
			columns = append(columns, f.Column)
			continue
		}
		for _, f := range m.Fields {
			if f.JoinColumn && f.Relation == name {
				columns = append(columns, f.Column)
				break
			}
		}
	}
	return columns
}

// addForeignKeys adds a foreign key per join column of the model.
func addForeignKeys(t *Table, m *modelc.ModelMetadata, tables map[string]*Table) error {
	for _, f := range m.Fields {
		if !f.JoinColumn {
			continue
		}
		ref, ok := tables[f.References]
		if !ok {
			return modelc.NewRelationshipError(m.Name, f.Relation, f.References, "target model is not part of the schema")
		}
		if len(ref.PrimaryKey) != 1 {
			return modelc.NewRelationshipError(m.Name, f.Relation, f.References,
				fmt.Sprintf("target table %s must have a single column primary key", ref.Name))
		}
		c, _ := t.Column(f.Column)
		fk := &ForeignKey{
			Symbol:     fmt.Sprintf("%s_%s_fkey", t.Name, c.Name),
			Columns:    []*Column{c},
			RefTable:   ref,
			RefColumns: []*Column{ref.PrimaryKey[0]},
		}
		for _, r := range m.Relationships {
			if !r.Reverse && r.FieldName == f.Relation {
				fk.OnDelete = ReferenceOption(r.OnDelete)
				fk.OnUpdate = ReferenceOption(r.OnUpdate)
			}
		}
		t.ForeignKeys = append(t.ForeignKeys, fk)
	}
	return nil
}

// joinTable returns the join table of a many-to-many field. Rows are
// removed with either side.
func joinTable(mm *modelc.ManyToManyMetadata, source, target *Table) (*Table, error) {
	if len(source.PrimaryKey) != 1 || len(target.PrimaryKey) != 1 {
		return nil, fmt.Errorf("join table %s requires single column primary keys on both sides", mm.Through)
	}
	t := NewTable(mm.Through)
	for _, side := range []struct {
		name string
		ref  *Table
	}{{mm.SourceField, source}, {mm.TargetField, target}} {
		pk := side.ref.PrimaryKey[0]
		c := &Column{Name: side.name, Type: pk.Type}
		t.AddColumn(c)
		t.PrimaryKey = append(t.PrimaryKey, c)
		t.ForeignKeys = append(t.ForeignKeys, &ForeignKey{
			Symbol:     fmt.Sprintf("%s_%s_fkey", t.Name, c.Name),
			Columns:    []*Column{c},
			RefTable:   side.ref,
			RefColumns: []*Column{pk},
			OnDelete:   Cascade,
		})
	}
	return t, nil
}
