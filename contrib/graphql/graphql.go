package graphql

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/gen"
)

// Option configures the rendered schema.
type Option func(*config)

type config struct {
	relay  bool
	inputs bool
	skip   map[string]bool
}

// WithRelayConnection makes list queries return Relay connections.
func WithRelayConnection() Option {
	return func(c *config) { c.relay = true }
}

// WithMutationInputs adds create and update input types per model.
func WithMutationInputs() Option {
	return func(c *config) { c.inputs = true }
}

// Skip leaves models ("Order") or fields and relations ("Order.total") out
// of the schema. Relations to a skipped model are left out too.
func Skip(names ...string) Option {
	return func(c *config) {
		for _, name := range names {
			c.skip[name] = true
		}
	}
}

// SDL renders the schema document of the models. The result is loaded with
// gqlparser before it is returned, so a nil error means a valid schema.
func SDL(models []*modelc.ModelMetadata, opts ...Option) (string, error) {
	doc, err := Document(models, opts...)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(doc)
	if _, err := gqlparser.LoadSchema(&ast.Source{Name: "modelc.graphql", Input: buf.String()}); err != nil {
		return "", fmt.Errorf("modelc/graphql: invalid schema: %w", err)
	}
	return buf.String(), nil
}

// Document returns the schema document of the models: the custom scalars,
// one object type per model, the connection and input types enabled by the
// options, and the Query type.
func Document(models []*modelc.ModelMetadata, opts ...Option) (*ast.SchemaDocument, error) {
	cfg := &config{skip: make(map[string]bool)}
	for _, opt := range opts {
		opt(cfg)
	}
	b := &builder{
		config:  cfg,
		types:   make(map[string]*ast.Definition),
		skipped: make(map[string]bool),
		scalars: make(map[string]bool),
	}
	names := make(map[string]string)
	for _, m := range models {
		q := m.QualifiedName()
		if cfg.skip[m.Name] {
			b.skipped[q] = true
			continue
		}
		if prev, ok := names[m.Name]; ok {
			return nil, fmt.Errorf("modelc/graphql: models %s and %s map to the same type %s", prev, q, m.Name)
		}
		names[m.Name] = q
		b.models = append(b.models, m)
		b.types[q] = &ast.Definition{Kind: ast.Object, Name: m.Name, Description: m.VerboseName}
	}
	if len(b.models) == 0 {
		return nil, errors.New("modelc/graphql: no models to render")
	}
	for _, m := range b.models {
		b.scalarFields(m)
	}
	for _, m := range b.models {
		if err := b.relations(m); err != nil {
			return nil, err
		}
	}
	return b.document(), nil
}

type builder struct {
	*config
	models  []*modelc.ModelMetadata
	types   map[string]*ast.Definition
	skipped map[string]bool
	scalars map[string]bool
	extra   ast.DefinitionList
}

// use records a custom scalar.
func (b *builder) use(name string) {
	if !builtin(name) {
		b.scalars[name] = true
	}
}

// scalarType returns the GraphQL type of a column field. A single primary
// key is exposed as ID.
func (b *builder) scalarType(m *modelc.ModelMetadata, f *modelc.FieldMetadata, nonNull bool) *ast.Type {
	if f.PrimaryKey && !m.HasCompositeKey() {
		return namedType("ID", nonNull)
	}
	t, name := scalarType(f.Type, nonNull)
	b.use(name)
	return t
}

func (b *builder) scalarFields(m *modelc.ModelMetadata) {
	def := b.types[m.QualifiedName()]
	for _, f := range m.Fields {
		if f.JoinColumn || b.skip[m.Name+"."+f.Name] {
			continue
		}
		comment, _ := f.Attr("comment")
		def.Fields = append(def.Fields, &ast.FieldDefinition{
			Name:        fieldName(f.Name),
			Description: comment,
			Type:        b.scalarType(m, f, !f.Nullable),
		})
	}
}

// relations adds the forward field of every relation of m and, when the
// relation has a related name, the reverse field on its target.
func (b *builder) relations(m *modelc.ModelMetadata) error {
	source := b.types[m.QualifiedName()]
	for _, r := range m.Relationships {
		if r.Reverse || r.ToModel == gen.AnyTarget || b.skipped[r.ToModel] {
			continue
		}
		target, ok := b.types[r.ToModel]
		if !ok {
			return modelc.NewRelationshipError(m.Name, r.FieldName, r.ToModel, "target model is not part of the schema")
		}
		if !b.skip[m.Name+"."+r.FieldName] {
			var t *ast.Type
			switch r.Type {
			case modelc.ForeignKey, modelc.OneToOne:
				t = namedType(target.Name, !joinNullable(m, r.FieldName))
			default:
				t = listOf(target.Name)
			}
			if err := addField(source, r.FieldName, t); err != nil {
				return err
			}
		}
		if r.RelatedName == "" || b.skip[target.Name+"."+r.RelatedName] {
			continue
		}
		var t *ast.Type
		switch r.Type {
		case modelc.ForeignKey, modelc.ManyToMany:
			t = listOf(source.Name)
		default:
			t = namedType(source.Name, false)
		}
		if err := addField(target, r.RelatedName, t); err != nil {
			return err
		}
	}
	return nil
}

// joinNullable reports if the join column of the named relation is
// nullable.
func joinNullable(m *modelc.ModelMetadata, relation string) bool {
	for _, f := range m.Fields {
		if f.JoinColumn && f.Relation == relation {
			return f.Nullable
		}
	}
	return true
}

func addField(def *ast.Definition, name string, t *ast.Type) error {
	name = fieldName(name)
	if def.Fields.ForName(name) != nil {
		return fmt.Errorf("modelc/graphql: field %s.%s is defined more than once", def.Name, name)
	}
	def.Fields = append(def.Fields, &ast.FieldDefinition{Name: name, Type: t})
	return nil
}

func (b *builder) document() *ast.SchemaDocument {
	query := &ast.Definition{Kind: ast.Object, Name: "Query"}
	var objects ast.DefinitionList
	for _, m := range b.models {
		def := b.types[m.QualifiedName()]
		objects = append(objects, def)
		query.Fields = append(query.Fields, b.lookup(m, def))
		query.Fields = append(query.Fields, b.list(def))
		if b.inputs {
			for _, in := range []*ast.Definition{b.input(m, "Create", false), b.input(m, "Update", true)} {
				if len(in.Fields) > 0 {
					b.extra = append(b.extra, in)
				}
			}
		}
	}
	if b.relay && len(b.models) > 0 {
		b.extra = append(b.extra, pageInfo())
		b.scalars[GQLScalarCursor] = true
	}
	doc := &ast.SchemaDocument{}
	names := make([]string, 0, len(b.scalars))
	for name := range b.scalars {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		doc.Definitions = append(doc.Definitions, &ast.Definition{Kind: ast.Scalar, Name: name})
	}
	doc.Definitions = append(doc.Definitions, objects...)
	doc.Definitions = append(doc.Definitions, b.extra...)
	doc.Definitions = append(doc.Definitions, query)
	return doc
}

// lookup returns the query field fetching one record by primary key.
func (b *builder) lookup(m *modelc.ModelMetadata, def *ast.Definition) *ast.FieldDefinition {
	fd := &ast.FieldDefinition{Name: fieldName(m.Name), Type: ast.NamedType(def.Name, nil)}
	for _, f := range m.PrimaryKeyFields() {
		fd.Arguments = append(fd.Arguments, &ast.ArgumentDefinition{
			Name: fieldName(f.Name),
			Type: b.scalarType(m, f, true),
		})
	}
	return fd
}

// list returns the query field listing records, as a connection when Relay
// connections are enabled.
func (b *builder) list(def *ast.Definition) *ast.FieldDefinition {
	fd := &ast.FieldDefinition{Name: listName(def.Name)}
	if !b.relay {
		fd.Type = listOf(def.Name)
		return fd
	}
	names := paginationNames(def.Name)
	fd.Type = ast.NonNullNamedType(names.Connection, nil)
	fd.Arguments = ast.ArgumentDefinitionList{
		{Name: "after", Type: ast.NamedType(GQLScalarCursor, nil)},
		{Name: "first", Type: ast.NamedType("Int", nil)},
		{Name: "before", Type: ast.NamedType(GQLScalarCursor, nil)},
		{Name: "last", Type: ast.NamedType("Int", nil)},
	}
	b.extra = append(b.extra,
		&ast.Definition{Kind: ast.Object, Name: names.Connection, Fields: ast.FieldList{
			{Name: "edges", Type: ast.ListType(ast.NamedType(names.Edge, nil), nil)},
			{Name: "pageInfo", Type: ast.NonNullNamedType(GQLTypePageInfo, nil)},
			{Name: "totalCount", Type: ast.NonNullNamedType("Int", nil)},
		}},
		&ast.Definition{Kind: ast.Object, Name: names.Edge, Fields: ast.FieldList{
			{Name: "node", Type: ast.NamedType(names.Node, nil)},
			{Name: "cursor", Type: ast.NonNullNamedType(GQLScalarCursor, nil)},
		}},
	)
	return fd
}

func pageInfo() *ast.Definition {
	return &ast.Definition{Kind: ast.Object, Name: GQLTypePageInfo, Fields: ast.FieldList{
		{Name: "hasNextPage", Type: ast.NonNullNamedType("Boolean", nil)},
		{Name: "hasPreviousPage", Type: ast.NonNullNamedType("Boolean", nil)},
		{Name: "startCursor", Type: ast.NamedType(GQLScalarCursor, nil)},
		{Name: "endCursor", Type: ast.NamedType(GQLScalarCursor, nil)},
	}}
}

// input returns the create or update input of a model. Inputs hold the
// editable fields the caller supplies; join columns are set by ID. Every
// update field is optional, and update inputs never change the primary key.
func (b *builder) input(m *modelc.ModelMetadata, verb string, update bool) *ast.Definition {
	def := &ast.Definition{Kind: ast.InputObject, Name: verb + m.Name + "Input"}
	for _, f := range m.Fields {
		if !f.Editable || (f.Auto && !f.JoinColumn) || (update && f.PrimaryKey) {
			continue
		}
		required := !update && !f.Nullable && !f.Blank && f.Default == modelc.DefaultZero
		if f.JoinColumn {
			if b.skip[m.Name+"."+f.Relation] || b.skipped[f.References] {
				continue
			}
			def.Fields = append(def.Fields, &ast.FieldDefinition{
				Name: fieldName(f.Relation) + "ID",
				Type: namedType("ID", required),
			})
			continue
		}
		if b.skip[m.Name+"."+f.Name] {
			continue
		}
		def.Fields = append(def.Fields, &ast.FieldDefinition{
			Name: fieldName(f.Name),
			Type: b.scalarType(m, f, required),
		})
	}
	return def
}
