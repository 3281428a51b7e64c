// Package field provides the field builders and the declared type system of
// model declarations.
//
// Every builder records raw attributes that the declaration parser validates:
//
//	field.String("email").MaxLen(120).Unique().Email()
//	field.Int64("id").PrimaryKey()
//	field.Decimal("total", 10, 2).Check("total >= 0")
//	field.Time("updated_at").AutoNow()
//	field.Text("note").Optional().Blank()
//
// # Type Expressions
//
// ParseType understands the declared type expressions:
//
//	int32, int64 (int), bool, float32, float64
//	string, text, decimal, date, time, timestamp, time.Time
//	uuid.UUID, json, map[string]string
//	*T                       optional (nullable) T
//	[]T                      array of T
//	ForeignKey[T]            many-to-one relationship
//	OneToOne[T]              one-to-one relationship
//	OneToMany[T]             reverse side of a foreign key
//	ManyToMany[S, T]         many-to-many relationship
//
// # Backend Attributes
//
// Attributes that only one storage backend understands are accepted by the
// parser and rejected by the compiler when the selected backend differs:
//
//	field.New("search", "text").FieldType("tsvector")        // PostgreSQL
//	field.Int64("counter").Attr("unsigned", true)             // MySQL
//	field.Int64("id").PrimaryKey().Attr("autoincrement", true) // SQLite
package field
