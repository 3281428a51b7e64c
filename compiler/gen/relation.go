package gen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/schema/field"
)

// Target describes the model a relationship points to.
type Target struct {
	Key        modelc.ModelKey
	Table      string
	PrimaryKey []*TargetKey
}

// TargetKey is one primary key field of a relationship target.
type TargetKey struct {
	Name       string
	Column     string
	Type       *field.TypeInfo
	ColumnType modelc.ColumnType
}

// A Resolver looks up relationship targets. It returns a *modelc.NotFoundError
// for unknown models.
type Resolver func(modelc.ModelKey) (*Target, error)

// RegistryResolver resolves targets against the models of a registry.
func RegistryResolver(r *modelc.Registry) Resolver {
	return func(key modelc.ModelKey) (*Target, error) {
		meta, ok := r.Lookup(key)
		if !ok {
			return nil, modelc.NewNotFoundError("model", key.String())
		}
		return TargetOf(meta), nil
	}
}

// TargetOf returns the target description of registered model metadata.
func TargetOf(meta *modelc.ModelMetadata) *Target {
	t := &Target{Key: meta.Key(), Table: meta.Table}
	for _, f := range meta.PrimaryKeyFields() {
		k := &TargetKey{Name: f.Name, Column: f.Column, ColumnType: f.Type}
		if f.GoType != "" {
			k.Type, _ = field.ParseType(f.GoType)
		}
		if k.Type == nil || k.Type.Type == field.TypeOther {
			k.Type = typeInfoFor(f.Type)
		}
		t.PrimaryKey = append(t.PrimaryKey, k)
	}
	return t
}

// Target returns the target description of the model.
func (m *Model) Target() *Target {
	t := &Target{Key: m.Key(), Table: m.Table}
	for _, f := range m.PrimaryKey {
		t.PrimaryKey = append(t.PrimaryKey, &TargetKey{
			Name:       f.Name,
			Column:     f.Column,
			Type:       f.Type,
			ColumnType: f.ColumnType,
		})
	}
	return t
}

// typeInfoFor returns a declared type holding values of the column type.
func typeInfoFor(ct modelc.ColumnType) *field.TypeInfo {
	var t field.Type
	switch k := ct.Kind; {
	case k == modelc.KindInteger || k == modelc.KindSmallInteger:
		t = field.TypeInt32
	case k == modelc.KindBigInteger:
		t = field.TypeInt64
	case k.Textual():
		t = field.TypeString
	case k == modelc.KindUUID:
		t = field.TypeUUID
	case k == modelc.KindTimestampTZ:
		t = field.TypeTime
	case k == modelc.KindDecimal:
		t = field.TypeDecimal
	default:
		t = field.TypeUUID
	}
	return &field.TypeInfo{Type: t, Ident: t.String()}
}

// resolveRelations resolves the targets of every relation of the model.
// Unknown targets are an error in strict mode; otherwise join columns fall
// back to UUID keys.
func (m *Model) resolveRelations(resolve Resolver, strict bool) error {
	for _, rel := range m.Relations {
		if err := m.resolveRelation(rel, resolve, strict); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) resolveRelation(rel *Relation, resolve Resolver, strict bool) error {
	if rel.resolved {
		return nil
	}
	rel.resolved = true
	name := rel.Field.Name
	var target *Target
	if rel.Target != AnyTarget {
		key := modelc.ParseModelKey(rel.Target, m.AppLabel)
		t, err := resolve(key)
		switch {
		case err == nil:
			target = t
		case modelc.IsNotFound(err) && strict:
			return modelc.NewRelationshipError(m.Name, name, rel.Target, "unresolved relationship target")
		case !modelc.IsNotFound(err):
			var rerr *modelc.RelationshipError
			if errors.As(err, &rerr) {
				return err
			}
			return &modelc.RelationshipError{Model: m.Name, Field: name, Target: rel.Target, Message: "resolving target", Cause: err}
		}
	}
	switch rel.Type {
	case modelc.ManyToMany:
		m.resolveThrough(rel, target)
	case modelc.OneToMany:
		if rel.ForeignKey == "" {
			rel.ForeignKey = snake(m.Name) + "_id"
		}
	}
	if rel.JoinColumn == nil {
		return nil
	}
	if rel.OnDelete == "SET NULL" && !rel.JoinColumn.Nullable {
		return modelc.NewConstraintConflictError(m.Name, name, "on_delete SET NULL requires a nullable relation")
	}
	return m.typeJoinColumn(rel, target)
}

// resolveThrough fills the default join table and join fields of a
// many-to-many relation.
func (m *Model) resolveThrough(rel *Relation, target *Target) {
	if rel.Through == "" {
		rel.Through = m.Table + "_" + rel.Field.Name
	}
	source := snake(m.Name)
	dest := source
	switch {
	case target != nil:
		dest = snake(target.Key.Model)
	case rel.Target != AnyTarget:
		dest = snake(modelc.ParseModelKey(rel.Target, m.AppLabel).Model)
	default:
		dest = "object"
	}
	if source == dest {
		source, dest = "from_"+source, "to_"+dest
	}
	if rel.SourceField == "" {
		rel.SourceField = source + "_id"
	}
	if rel.TargetField == "" {
		rel.TargetField = dest + "_id"
	}
}

// typeJoinColumn types the join column of a relation after the primary key
// of its target. Unknown targets give UUID keys.
func (m *Model) typeJoinColumn(rel *Relation, target *Target) error {
	jc := rel.JoinColumn
	var (
		ti *field.TypeInfo
		ct modelc.ColumnType
	)
	switch {
	case target == nil:
		ti = &field.TypeInfo{Type: field.TypeUUID, Ident: field.TypeUUID.String()}
		ct = modelc.ColumnType{Kind: modelc.KindUUID}
	case len(target.PrimaryKey) != 1:
		return modelc.NewRelationshipError(m.Name, rel.Field.Name, rel.Target,
			fmt.Sprintf("target has a composite primary key (%d fields)", len(target.PrimaryKey)))
	default:
		pk := target.PrimaryKey[0]
		if pk.ColumnType.Kind == modelc.KindInvalid {
			return modelc.NewRelationshipError(m.Name, rel.Field.Name, rel.Target, "target primary key is not resolved")
		}
		ti, ct = pk.Type, pk.ColumnType
		if ti == nil {
			ti = typeInfoFor(ct)
		}
	}
	if jc.Decl != nil {
		declared, err := columnType(jc.Decl)
		if err != nil {
			return modelc.NewTypeMappingError(m.Name, jc.Name, jc.Decl.Type.String(), err.Error())
		}
		if target != nil && declared.Kind != ct.Kind {
			return modelc.NewRelationshipError(m.Name, jc.Name, rel.Target,
				fmt.Sprintf("join column type %s does not match the primary key type %s of the target", declared, ct))
		}
		ti, ct = jc.Decl.Type, declared
	}
	jc.Type = optionalType(ti, jc.Optional)
	jc.ColumnType = ct
	return nil
}

// optionalType returns a copy of t with the optional pointer set or cleared.
func optionalType(t *field.TypeInfo, optional bool) *field.TypeInfo {
	c := *t
	c.Optional = optional
	c.Ident = strings.TrimPrefix(c.Ident, "*")
	if optional {
		c.Ident = "*" + c.Ident
	}
	return &c
}
