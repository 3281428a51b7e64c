package gen

import (
	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/load"
)

// NewModel creates a model from a parsed declaration: it classifies the
// fields, maps their types, filters the raw SQL fragments and checks for
// conflicting settings. Relationship targets are left unresolved; Compile
// and NewGraph finish the model.
func NewModel(c *Config, d *load.Declaration) (*Model, error) {
	if c == nil {
		c = &Config{}
	}
	m := &Model{
		Name:        d.Name,
		AppLabel:    d.AppLabel,
		Table:       d.Table,
		VerboseName: d.VerboseName,
		Ordering:    d.Ordering,
		Constraints: d.Constraints,
		decl:        d,
		config:      c,
	}
	for _, step := range []func() error{
		m.classify,
		m.checkBackend,
		m.mapTypes,
		m.checkSafety,
		m.checkConflicts,
		m.resolvePrimaryKey,
	} {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// finish resolves the relationships of the model and emits its metadata.
func (m *Model) finish(resolve Resolver, strict bool) error {
	if err := m.resolveRelations(resolve, strict); err != nil {
		return err
	}
	if err := m.checkCompositeKey(); err != nil {
		return err
	}
	if err := m.emit(); err != nil {
		return err
	}
	m.config.logger().Debug("compiled model",
		"model", m.QualifiedName(),
		"fields", len(m.Meta.Fields),
		"relationships", len(m.Meta.Relationships),
		"fingerprint", m.Fingerprint[:12],
	)
	return nil
}

// Compile compiles a single declaration. Relationship targets are looked up
// in the configured registry; join columns of unknown targets get UUID keys.
func Compile(c *Config, d *load.Declaration) (*Model, error) {
	m, err := NewModel(c, d)
	if err != nil {
		return nil, err
	}
	registry := RegistryResolver(m.config.registry())
	resolve := func(key modelc.ModelKey) (*Target, error) {
		if key == m.Key() {
			return m.Target(), nil
		}
		return registry(key)
	}
	if err := m.finish(resolve, false); err != nil {
		return nil, err
	}
	return m, nil
}

// CompileSpec parses and compiles a single model spec.
func CompileSpec(c *Config, s *load.Spec) (*Model, error) {
	d, err := load.Parse(s)
	if err != nil {
		return nil, err
	}
	return Compile(c, d)
}

// Register adds the model metadata and its relationships to the configured
// registry. Registering an unchanged model again is a no-op.
func (m *Model) Register() error {
	added, err := m.config.registry().Register(m.Meta)
	if err != nil {
		return err
	}
	if added {
		m.config.logger().Debug("registered model", "model", m.QualifiedName())
	}
	return nil
}
