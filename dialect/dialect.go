package dialect

import (
	"fmt"
	"slices"
)

// Dialect names for external usage.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// All lists the supported dialects.
var All = []string{Postgres, MySQL, SQLite}

// backendAttrs maps backend specific field attributes to the dialects
// that understand them. Attributes missing from the map are portable.
var backendAttrs = map[string][]string{
	"identity_always":             {Postgres},
	"identity_by_default":         {Postgres},
	"storage":                     {Postgres},
	"compression":                 {Postgres},
	"field_type":                  {Postgres},
	"array_base_type":             {Postgres},
	"character_set":               {MySQL},
	"on_update_current_timestamp": {MySQL},
	"invisible":                   {MySQL},
	"unsigned":                    {MySQL},
	"zerofill":                    {MySQL},
	"generated_virtual":           {MySQL, SQLite},
	"comment":                     {Postgres, MySQL},
	"fulltext":                    {Postgres, MySQL},
	"autoincrement":               {SQLite},
}

// Valid reports if name is a supported dialect.
func Valid(name string) bool { return slices.Contains(All, name) }

// Parse validates the dialect name. Common aliases are accepted.
func Parse(name string) (string, error) {
	switch name {
	case Postgres, "postgresql", "pg":
		return Postgres, nil
	case MySQL, "mariadb":
		return MySQL, nil
	case SQLite, "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("dialect: unsupported dialect %q", name)
}

// Required returns the dialects that understand the given field attribute,
// or nil if every dialect does.
func Required(attr string) []string {
	return slices.Clone(backendAttrs[attr])
}

// Supports reports if the attribute may be declared for the dialect.
func Supports(name, attr string) bool {
	ds, ok := backendAttrs[attr]
	return !ok || slices.Contains(ds, name)
}
