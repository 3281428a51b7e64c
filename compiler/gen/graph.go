package gen

import (
	"fmt"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/load"
)

// Graph holds a set of models compiled together. Relationships between them
// may reference models declared later; every target must resolve to a model
// of the graph or of the configured registry.
type Graph struct {
	*Config
	// Models holds the compiled models in declaration order.
	Models []*Model
	models map[string]*Model
}

// NewGraph parses and compiles the given specs. Errors of distinct models
// are aggregated.
func NewGraph(c *Config, specs ...*load.Spec) (*Graph, error) {
	if c == nil {
		c = &Config{}
	}
	g := &Graph{Config: c, models: make(map[string]*Model, len(specs))}
	var errs []error
	for _, s := range specs {
		d, err := load.Parse(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := g.models[d.QualifiedName()]; ok {
			errs = append(errs, modelc.NewDeclarationError(d.Name, "", "",
				fmt.Sprintf("model %s is declared more than once", d.QualifiedName())))
			continue
		}
		m, err := NewModel(c, d)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		g.Models = append(g.Models, m)
		g.models[m.QualifiedName()] = m
	}
	if err := modelc.NewAggregateError(errs...); err != nil {
		return nil, err
	}
	for _, m := range g.Models {
		if err := m.finish(g.resolve, true); err != nil {
			errs = append(errs, err)
		}
	}
	if err := modelc.NewAggregateError(errs...); err != nil {
		return nil, err
	}
	c.logger().Info("compiled models", "count", len(g.Models))
	return g, nil
}

// Model returns the model with the given qualified name.
func (g *Graph) Model(name string) (*Model, bool) {
	m, ok := g.models[name]
	return m, ok
}

// resolve looks up targets in the graph first, then in the registry. The
// key of a graph target is typed before it is returned.
func (g *Graph) resolve(key modelc.ModelKey) (*Target, error) {
	m, ok := g.models[key.String()]
	if !ok {
		return RegistryResolver(g.registry())(key)
	}
	for _, f := range m.PrimaryKey {
		if f.IsJoinColumn() {
			if err := m.resolveRelation(f.Rel, g.resolve, true); err != nil {
				return nil, err
			}
		}
	}
	return m.Target(), nil
}

// Register adds every model of the graph to the configured registry.
func (g *Graph) Register() error {
	var errs []error
	for _, m := range g.Models {
		if err := m.Register(); err != nil {
			errs = append(errs, err)
		}
	}
	return modelc.NewAggregateError(errs...)
}

// Metadata returns the metadata of every model, in declaration order.
func (g *Graph) Metadata() []*modelc.ModelMetadata {
	metas := make([]*modelc.ModelMetadata, len(g.Models))
	for i, m := range g.Models {
		metas[i] = m.Meta
	}
	return metas
}
