package modelc

// FieldRef is a column reference bound to a table or to a table alias.
//
// Usage:
//
//	f := modelc.NewFieldRef("orders", "total", "total")
//	f.String()          // orders.total
//	f.As("o").String()  // o.total
type FieldRef struct {
	table  string
	alias  string
	field  string
	column string
}

// NewFieldRef returns a reference to column of table for the given field.
func NewFieldRef(table, field, column string) FieldRef {
	return FieldRef{table: table, field: field, column: column}
}

// Name returns the field name.
func (f FieldRef) Name() string { return f.field }

// Column returns the column name.
func (f FieldRef) Column() string { return f.column }

// Table returns the table the field belongs to.
func (f FieldRef) Table() string { return f.table }

// Alias returns the table alias, if any.
func (f FieldRef) Alias() string { return f.alias }

// As returns a copy of f bound to the given table alias.
func (f FieldRef) As(alias string) FieldRef {
	f.alias = alias
	return f
}

// Qualifier returns the alias if set, otherwise the table.
func (f FieldRef) Qualifier() string {
	if f.alias != "" {
		return f.alias
	}
	return f.table
}

// String returns "qualifier.column".
func (f FieldRef) String() string {
	if q := f.Qualifier(); q != "" {
		return q + "." + f.column
	}
	return f.column
}

// FieldSelector holds one FieldRef per column of a model.
type FieldSelector struct {
	model string
	alias string
	refs  []FieldRef
	index map[string]int
}

// NewFieldSelector returns a selector over the columns of m.
func NewFieldSelector(m *ModelMetadata) *FieldSelector {
	s := &FieldSelector{
		model: m.Name,
		refs:  make([]FieldRef, len(m.Fields)),
		index: make(map[string]int, len(m.Fields)),
	}
	for i, f := range m.Fields {
		s.refs[i] = NewFieldRef(m.Table, f.Name, f.Column)
		s.index[f.Name] = i
	}
	return s
}

// Model returns the model name of the selector.
func (s *FieldSelector) Model() string { return s.model }

// Alias returns the alias all fields are bound to, if any.
func (s *FieldSelector) Alias() string { return s.alias }

// Field returns the reference for the named field.
func (s *FieldSelector) Field(name string) (FieldRef, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldRef{}, false
	}
	return s.refs[i], true
}

// MustField is like Field but panics if the field does not exist.
func (s *FieldSelector) MustField(name string) FieldRef {
	f, ok := s.Field(name)
	if !ok {
		panic(NewNotFoundError("field", s.model+"."+name))
	}
	return f
}

// All returns every field reference, in field order.
func (s *FieldSelector) All() []FieldRef {
	return append([]FieldRef(nil), s.refs...)
}

// As returns a copy of the selector with every field bound to alias.
func (s *FieldSelector) As(alias string) *FieldSelector {
	c := &FieldSelector{
		model: s.model,
		alias: alias,
		refs:  make([]FieldRef, len(s.refs)),
		index: s.index,
	}
	for i, f := range s.refs {
		c.refs[i] = f.As(alias)
	}
	return c
}
