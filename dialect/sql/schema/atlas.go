package schema

import (
	"context"
	"fmt"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/dialect"
)

// backend holds the connection-free atlas differ and planner of a dialect.
type backend struct {
	name   string
	schema string
	diff   schema.Differ
	plan   migrate.PlanApplier
}

func backendOf(name string) (*backend, error) {
	d, err := dialect.Parse(name)
	if err != nil {
		return nil, err
	}
	switch d {
	case dialect.Postgres:
		return &backend{name: d, schema: "public", diff: postgres.DefaultDiff, plan: postgres.DefaultPlan}, nil
	case dialect.MySQL:
		return &backend{name: d, schema: "modelc", diff: mysql.DefaultDiff, plan: mysql.DefaultPlan}, nil
	default:
		return &backend{name: d, schema: "main", diff: sqlite.DefaultDiff, plan: sqlite.DefaultPlan}, nil
	}
}

// Atlas converts the tables into an atlas schema for the given dialect.
func Atlas(name string, tables []*Table) (*schema.Schema, error) {
	b, err := backendOf(name)
	if err != nil {
		return nil, err
	}
	return b.convert(tables)
}

// PlanDDL returns the statements creating the tables on an empty database.
func PlanDDL(ctx context.Context, name string, tables []*Table) ([]string, error) {
	return PlanMigration(ctx, name, nil, tables)
}

// PlanMigration returns the statements moving a database holding the current
// tables to the desired ones.
func PlanMigration(ctx context.Context, name string, current, desired []*Table) ([]string, error) {
	b, err := backendOf(name)
	if err != nil {
		return nil, err
	}
	from, err := b.convert(current)
	if err != nil {
		return nil, err
	}
	to, err := b.convert(desired)
	if err != nil {
		return nil, err
	}
	changes, err := b.diff.SchemaDiff(from, to)
	if err != nil {
		return nil, fmt.Errorf("schema: diff: %w", err)
	}
	if len(changes) == 0 {
		return nil, nil
	}
	plan, err := b.plan.PlanChanges(ctx, "modelc", changes, func(o *migrate.PlanOptions) {
		o.SchemaQualifier = new(string)
	})
	if err != nil {
		return nil, fmt.Errorf("schema: plan %s changes: %w", b.name, err)
	}
	stmts := make([]string, 0, len(plan.Changes))
	for _, c := range plan.Changes {
		stmts = append(stmts, c.Cmd)
	}
	return stmts, nil
}

func (b *backend) convert(tables []*Table) (*schema.Schema, error) {
	s := schema.New(b.schema)
	converted := make(map[*Table]*schema.Table, len(tables))
	for _, t := range tables {
		at, err := b.table(t)
		if err != nil {
			return nil, err
		}
		s.AddTables(at)
		converted[t] = at
	}
	for _, t := range tables {
		at := converted[t]
		for _, fk := range t.ForeignKeys {
			ref, ok := converted[fk.RefTable]
			if !ok {
				return nil, fmt.Errorf("schema: foreign key %s references table %s outside the schema", fk.Symbol, fk.RefTable.Name)
			}
			afk := schema.NewForeignKey(fk.Symbol).
				AddColumns(columns(at, fk.Columns)...).
				SetRefTable(ref).
				AddRefColumns(columns(ref, fk.RefColumns)...)
			if fk.OnDelete != "" {
				afk.SetOnDelete(schema.ReferenceOption(fk.OnDelete))
			}
			if fk.OnUpdate != "" {
				afk.SetOnUpdate(schema.ReferenceOption(fk.OnUpdate))
			}
			at.AddForeignKeys(afk)
		}
	}
	return s, nil
}

func (b *backend) table(t *Table) (*schema.Table, error) {
	at := schema.NewTable(t.Name)
	if t.Comment != "" && b.name != dialect.SQLite {
		at.AddAttrs(&schema.Comment{Text: t.Comment})
	}
	for _, c := range t.Columns {
		ac, err := b.column(c)
		if err != nil {
			return nil, fmt.Errorf("schema: %s.%s: %w", t.Name, c.Name, err)
		}
		at.AddColumns(ac)
	}
	if len(t.PrimaryKey) > 0 {
		at.SetPrimaryKey(schema.NewPrimaryKey(columns(at, t.PrimaryKey)...))
	}
	for _, c := range t.Columns {
		if c.Unique {
			at.AddIndexes(schema.NewUniqueIndex(t.Name + "_" + c.Name + "_key").AddColumns(columns(at, []*Column{c})...))
		}
	}
	for _, idx := range t.Indexes {
		ai := schema.NewIndex(idx.Name).SetUnique(idx.Unique).AddColumns(columns(at, idx.Columns)...)
		if idx.Where != "" {
			switch b.name {
			case dialect.Postgres:
				ai.AddAttrs(&postgres.IndexPredicate{P: idx.Where})
			case dialect.SQLite:
				ai.AddAttrs(&sqlite.IndexPredicate{P: idx.Where})
			default:
				return nil, fmt.Errorf("schema: partial index %s on %s is not supported by %s", idx.Name, t.Name, b.name)
			}
		}
		at.AddIndexes(ai)
	}
	for _, c := range t.Checks {
		at.AddChecks(schema.NewCheck().SetName(c.Name).SetExpr(c.Expr))
	}
	return at, nil
}

func (b *backend) column(c *Column) (*schema.Column, error) {
	typ, err := b.columnType(c)
	if err != nil {
		return nil, err
	}
	ac := schema.NewColumn(c.Name).SetType(typ).SetNull(c.Nullable)
	switch {
	case c.DefaultExpr != "":
		ac.SetDefault(&schema.RawExpr{X: c.DefaultExpr})
	case c.Default != "":
		ac.SetDefault(&schema.Literal{V: literal(c.Type, c.Default)})
	}
	if c.Increment {
		switch b.name {
		case dialect.MySQL:
			ac.AddAttrs(&mysql.AutoIncrement{})
		case dialect.SQLite:
			ac.AddAttrs(&sqlite.AutoIncrement{})
		}
	}
	if c.Comment != "" && b.name != dialect.SQLite {
		ac.AddAttrs(&schema.Comment{Text: c.Comment})
	}
	if v, ok := c.Attr("collate"); ok {
		ac.AddAttrs(&schema.Collation{V: v})
	}
	if v, ok := c.Attr("character_set"); ok && b.name == dialect.MySQL {
		ac.AddAttrs(&schema.Charset{V: v})
	}
	return ac, nil
}

// columnType returns the atlas type of a column for the backend.
func (b *backend) columnType(c *Column) (schema.Type, error) {
	ct := c.Type
	if ct.Kind == modelc.KindArray {
		if b.name != dialect.Postgres || ct.Elem == nil {
			return nil, fmt.Errorf("array columns are not supported by %s", b.name)
		}
		elem, err := b.scalarType(*ct.Elem, false)
		if err != nil {
			return nil, err
		}
		return &postgres.ArrayType{Type: elem, T: strings.ToLower(ct.Elem.String()) + "[]"}, nil
	}
	return b.scalarType(ct, c.Increment)
}

func (b *backend) scalarType(ct modelc.ColumnType, increment bool) (schema.Type, error) {
	switch b.name {
	case dialect.Postgres:
		return postgresType(ct, increment)
	case dialect.MySQL:
		return mysqlType(ct)
	default:
		return sqliteType(ct)
	}
}

func postgresType(ct modelc.ColumnType, increment bool) (schema.Type, error) {
	switch ct.Kind {
	case modelc.KindSmallInteger:
		if increment {
			return &postgres.SerialType{T: "smallserial"}, nil
		}
		return &schema.IntegerType{T: "smallint"}, nil
	case modelc.KindInteger:
		if increment {
			return &postgres.SerialType{T: "serial"}, nil
		}
		return &schema.IntegerType{T: "integer"}, nil
	case modelc.KindBigInteger:
		if increment {
			return &postgres.SerialType{T: "bigserial"}, nil
		}
		return &schema.IntegerType{T: "bigint"}, nil
	case modelc.KindBoolean:
		return &schema.BoolType{T: "boolean"}, nil
	case modelc.KindReal:
		return &schema.FloatType{T: "real"}, nil
	case modelc.KindDouble:
		return &schema.FloatType{T: "double precision"}, nil
	case modelc.KindDecimal:
		return &schema.DecimalType{T: "numeric", Precision: ct.Precision, Scale: ct.Scale}, nil
	case modelc.KindVarChar:
		return &schema.StringType{T: "character varying", Size: ct.Size}, nil
	case modelc.KindChar:
		return &schema.StringType{T: "character", Size: ct.Size}, nil
	case modelc.KindText:
		return &schema.StringType{T: "text"}, nil
	case modelc.KindDate:
		return &schema.TimeType{T: "date"}, nil
	case modelc.KindTime:
		return &schema.TimeType{T: "time without time zone"}, nil
	case modelc.KindTimestamp:
		return &schema.TimeType{T: "timestamp without time zone"}, nil
	case modelc.KindTimestampTZ:
		return &schema.TimeType{T: "timestamp with time zone"}, nil
	case modelc.KindUUID:
		return &schema.UUIDType{T: "uuid"}, nil
	case modelc.KindJSON:
		return &schema.JSONType{T: "json"}, nil
	case modelc.KindJSONB:
		return &schema.JSONType{T: "jsonb"}, nil
	case modelc.KindInterval, modelc.KindHStore, modelc.KindCIText,
		modelc.KindInt4Range, modelc.KindInt8Range, modelc.KindNumRange,
		modelc.KindDateRange, modelc.KindTsRange, modelc.KindTsTzRange,
		modelc.KindTsVector, modelc.KindTsQuery:
		return &schema.UnsupportedType{T: strings.ToLower(ct.Kind.String())}, nil
	}
	return nil, fmt.Errorf("unsupported column type %s", ct)
}

func mysqlType(ct modelc.ColumnType) (schema.Type, error) {
	switch ct.Kind {
	case modelc.KindSmallInteger:
		return &schema.IntegerType{T: "smallint"}, nil
	case modelc.KindInteger:
		return &schema.IntegerType{T: "int"}, nil
	case modelc.KindBigInteger:
		return &schema.IntegerType{T: "bigint"}, nil
	case modelc.KindBoolean:
		return &schema.BoolType{T: "bool"}, nil
	case modelc.KindReal:
		return &schema.FloatType{T: "float"}, nil
	case modelc.KindDouble:
		return &schema.FloatType{T: "double"}, nil
	case modelc.KindDecimal:
		return &schema.DecimalType{T: "decimal", Precision: ct.Precision, Scale: ct.Scale}, nil
	case modelc.KindVarChar:
		return &schema.StringType{T: "varchar", Size: ct.Size}, nil
	case modelc.KindChar:
		return &schema.StringType{T: "char", Size: ct.Size}, nil
	case modelc.KindText, modelc.KindCIText:
		return &schema.StringType{T: "longtext"}, nil
	case modelc.KindDate:
		return &schema.TimeType{T: "date"}, nil
	case modelc.KindTime:
		return &schema.TimeType{T: "time"}, nil
	case modelc.KindTimestamp, modelc.KindTimestampTZ:
		return &schema.TimeType{T: "timestamp"}, nil
	case modelc.KindUUID:
		return &schema.StringType{T: "char", Size: 36}, nil
	case modelc.KindJSON, modelc.KindJSONB:
		return &schema.JSONType{T: "json"}, nil
	}
	return nil, fmt.Errorf("column type %s is not supported by %s", ct, dialect.MySQL)
}

func sqliteType(ct modelc.ColumnType) (schema.Type, error) {
	switch k := ct.Kind; {
	case k.Integer():
		return &schema.IntegerType{T: "integer"}, nil
	case k == modelc.KindBoolean:
		return &schema.BoolType{T: "bool"}, nil
	case k.Float():
		return &schema.FloatType{T: "real"}, nil
	case k == modelc.KindDecimal:
		return &schema.DecimalType{T: "decimal", Precision: ct.Precision, Scale: ct.Scale}, nil
	case k == modelc.KindVarChar:
		return &schema.StringType{T: "varchar", Size: ct.Size}, nil
	case k.Textual(), k == modelc.KindUUID:
		return &schema.StringType{T: "text"}, nil
	case k.Temporal():
		return &schema.TimeType{T: "datetime"}, nil
	case k == modelc.KindJSON || k == modelc.KindJSONB:
		return &schema.JSONType{T: "json"}, nil
	}
	return nil, fmt.Errorf("column type %s is not supported by %s", ct, dialect.SQLite)
}

// literal renders a static default as SQL. Character data is quoted.
func literal(ct modelc.ColumnType, v string) string {
	switch k := ct.Kind; {
	case k.Integer(), k.Float(), k == modelc.KindDecimal, k == modelc.KindBoolean:
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// columns returns the atlas columns of t with the names of cs.
func columns(t *schema.Table, cs []*Column) []*schema.Column {
	out := make([]*schema.Column, 0, len(cs))
	for _, c := range cs {
		if ac, ok := t.Column(c.Name); ok {
			out = append(out, ac)
		}
	}
	return out
}
