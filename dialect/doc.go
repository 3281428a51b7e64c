// Package dialect identifies the storage backends that models compile for.
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL
//   - MySQL: MySQL/MariaDB
//   - SQLite: SQLite
//
// # Dialect Constants
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// Several field attributes are understood by only some backends. Supports
// reports if an attribute may be declared for a dialect:
//
//	dialect.Supports(dialect.MySQL, "unsigned")      // true
//	dialect.Supports(dialect.SQLite, "storage")      // false
//	dialect.Required("identity_always")              // [postgres]
package dialect
