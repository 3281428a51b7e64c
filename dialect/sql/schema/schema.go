// Package schema turns compiled model metadata into table definitions,
// validates them and plans their DDL with atlas for a storage backend.
// Planning never opens a database connection.
package schema

import "github.com/syssam/modelc"

// ReferenceOption for foreign key actions.
type ReferenceOption string

// Reference options.
const (
	NoAction   ReferenceOption = "NO ACTION"
	Restrict   ReferenceOption = "RESTRICT"
	Cascade    ReferenceOption = "CASCADE"
	SetNull    ReferenceOption = "SET NULL"
	SetDefault ReferenceOption = "SET DEFAULT"
)

// ConstName returns the constant name of a reference option.
func (r ReferenceOption) ConstName() string {
	switch r {
	case NoAction:
		return "NoAction"
	case Restrict:
		return "Restrict"
	case Cascade:
		return "Cascade"
	case SetNull:
		return "SetNull"
	case SetDefault:
		return "SetDefault"
	}
	return ""
}

// Table is the table of a model or of a many-to-many join.
type Table struct {
	Name        string
	Model       string // qualified model name, empty for join tables
	Comment     string
	Columns     []*Column
	PrimaryKey  []*Column
	Indexes     []*Index
	ForeignKeys []*ForeignKey
	Checks      []*Check
}

// NewTable returns a new table with the given name.
func NewTable(name string) *Table { return &Table{Name: name} }

// AddColumn appends a column to the table.
func (t *Table) AddColumn(c *Column) *Table {
	t.Columns = append(t.Columns, c)
	return t
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// HasColumn reports if the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// AddIndex adds an index over the named columns. Unknown columns are
// skipped.
func (t *Table) AddIndex(name string, unique bool, columns []string) *Table {
	idx := &Index{Name: name, Unique: unique}
	for _, name := range columns {
		if c, ok := t.Column(name); ok {
			idx.Columns = append(idx.Columns, c)
		}
	}
	t.Indexes = append(t.Indexes, idx)
	return t
}

// Index returns the index with the given name.
func (t *Table) Index(name string) (*Index, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return nil, false
}

// Column is a table column.
type Column struct {
	Name      string
	Type      modelc.ColumnType
	Nullable  bool
	Unique    bool
	Increment bool
	// Default holds the literal default of the column. DefaultExpr holds a
	// database expression and wins over Default.
	Default     string
	DefaultExpr string
	Comment     string
	Attrs       map[string]string
}

// HasDefault reports if the column has a default value or expression.
func (c *Column) HasDefault() bool { return c.Default != "" || c.DefaultExpr != "" }

// Attr returns the backend attribute stored under key.
func (c *Column) Attr(key string) (string, bool) {
	v, ok := c.Attrs[key]
	return v, ok
}

// Index is a table index. Where holds the predicate of partial indexes.
type Index struct {
	Name    string
	Unique  bool
	Columns []*Column
	Where   string
}

// ForeignKey is a foreign key constraint.
type ForeignKey struct {
	Symbol     string
	Columns    []*Column
	RefTable   *Table
	RefColumns []*Column
	OnDelete   ReferenceOption
	OnUpdate   ReferenceOption
}

// Check is a table check constraint.
type Check struct {
	Name string
	Expr string
}
