package gen

import (
	"fmt"
	"strings"

	"github.com/syssam/modelc/dialect"
)

// A SchemaMode defines what type of schema feature a storage backend supports.
type SchemaMode uint

const (
	// Unique defines column and multi-column uniqueness support.
	Unique SchemaMode = 1 << iota

	// Indexes defines indexes support.
	Indexes

	// Cascade defines referential actions (e.g. cascade deletion).
	Cascade

	// PartialIndexes defines unique constraints with a WHERE condition.
	PartialIndexes

	// Arrays defines array column support.
	Arrays
)

// Support reports whether m supports the given mode.
func (m SchemaMode) Support(mode SchemaMode) bool { return m&mode != 0 }

// Storage is a storage backend that models compile for.
type Storage struct {
	Name       string     // dialect name.
	IdentName  string     // identifier name (logs and generated comments).
	SchemaMode SchemaMode // schema mode support.
}

var drivers = []*Storage{
	{
		Name:       dialect.Postgres,
		IdentName:  "PostgreSQL",
		SchemaMode: Unique | Indexes | Cascade | PartialIndexes | Arrays,
	},
	{
		Name:       dialect.MySQL,
		IdentName:  "MySQL",
		SchemaMode: Unique | Indexes | Cascade,
	},
	{
		Name:       dialect.SQLite,
		IdentName:  "SQLite",
		SchemaMode: Unique | Indexes | Cascade | PartialIndexes,
	},
}

// NewStorage returns the storage backend of the given dialect name.
func NewStorage(s string) (*Storage, error) {
	name, err := dialect.Parse(s)
	if err != nil {
		return nil, err
	}
	for _, d := range drivers {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("modelc/gen: invalid storage driver %q", s)
}

// String implements the fmt.Stringer interface.
func (s *Storage) String() string { return s.Name }

// checkAttr reports a backend specific attribute declared for another backend.
func (s *Storage) checkAttr(attr string) error {
	if s == nil || dialect.Supports(s.Name, attr) {
		return nil
	}
	return fmt.Errorf("requires %s backend (selected: %s)", strings.Join(dialect.Required(attr), " or "), s.Name)
}
