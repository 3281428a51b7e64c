package gen

import (
	"github.com/syssam/modelc"
)

// resolvePrimaryKey collects the primary key fields of the model in
// declaration order.
func (m *Model) resolvePrimaryKey() error {
	m.PrimaryKey = nil
	for _, f := range m.Columns() {
		if f.PrimaryKey {
			m.PrimaryKey = append(m.PrimaryKey, f)
		}
	}
	if len(m.PrimaryKey) == 0 {
		return modelc.NewDeclarationError(m.Name, "", "primary_key", "model must have at least one primary key field")
	}
	return nil
}

// checkCompositeKey requires comparable components of a composite key. It
// runs once join columns are typed.
func (m *Model) checkCompositeKey() error {
	if !m.HasCompositeKey() {
		return nil
	}
	for _, f := range m.PrimaryKey {
		if !f.ColumnType.Comparable() {
			return modelc.NewTypeMappingError(m.Name, f.Name, f.ColumnType.String(),
				"composite primary key components must have a comparable type")
		}
	}
	return nil
}

// KeyFields returns the names of the primary key fields, in key order.
func (m *Model) KeyFields() []string {
	names := make([]string, len(m.PrimaryKey))
	for i, f := range m.PrimaryKey {
		names[i] = f.Name
	}
	return names
}

// KeyType returns the Go type of a single field primary key, including the
// optional pointer. Composite keys use the generated CompositeKeyName type.
func (m *Model) KeyType() string {
	if len(m.PrimaryKey) != 1 {
		return m.CompositeKeyName()
	}
	pk := m.PrimaryKey[0]
	if pk.Optional {
		return "*" + pk.GoType()
	}
	return pk.GoType()
}
