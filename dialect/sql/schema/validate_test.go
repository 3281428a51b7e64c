package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelc"
)

var (
	bigint  = modelc.ColumnType{Kind: modelc.KindBigInteger}
	text    = modelc.ColumnType{Kind: modelc.KindText}
	varchar = func(n int) modelc.ColumnType { return modelc.ColumnType{Kind: modelc.KindVarChar, Size: n} }
)

func usersTable() *Table {
	id := &Column{Name: "id", Type: bigint, Increment: true}
	t := NewTable("users").
		AddColumn(id).
		AddColumn(&Column{Name: "name", Type: varchar(100)}).
		AddColumn(&Column{Name: "bio", Type: text, Nullable: true}).
		AddIndex("users_name_idx", false, []string{"name"})
	t.PrimaryKey = []*Column{id}
	return t
}

func TestValidateTable(t *testing.T) {
	assert.False(t, ValidateTable(usersTable()).HasErrors())

	tests := []struct {
		name   string
		mutate func(*Table)
		want   string
		warn   bool
	}{
		{"no primary key", func(t *Table) { t.PrimaryKey = nil }, "table has no primary key", true},
		{"duplicate column", func(t *Table) { t.AddColumn(&Column{Name: "name", Type: text}) }, "duplicate column name", false},
		{"untyped column", func(t *Table) { t.AddColumn(&Column{Name: "x"}) }, "column has no type", false},
		{"duplicate index", func(t *Table) { t.AddIndex("users_name_idx", false, []string{"bio"}) }, "duplicate index name: users_name_idx", false},
		{"empty index", func(t *Table) { t.AddIndex("users_none_idx", false, nil) }, `index "users_none_idx" has no columns`, false},
		{"missing index column", func(t *Table) {
			t.Indexes = append(t.Indexes, &Index{Name: "ghost", Columns: []*Column{{Name: "ghost"}}})
		}, `index "ghost" references non-existent column "ghost"`, false},
		{"unsafe predicate", func(t *Table) {
			t.Indexes[0].Where = "1=1; DROP TABLE users"
		}, `index "users_name_idx" predicate contains statement separator ";", blocked keyword DROP`, false},
		{"unsafe check", func(t *Table) {
			t.Checks = append(t.Checks, &Check{Name: "name_check", Expr: "name <> '' -- x"})
		}, `check "name_check" contains comment marker "--"`, false},
		{"set null on not null", func(t *Table) {
			name, _ := t.Column("name")
			t.ForeignKeys = append(t.ForeignKeys, &ForeignKey{Symbol: "users_name_fkey", Columns: []*Column{name}, RefTable: t, OnDelete: SetNull})
		}, "sets NULL on delete but the column is NOT NULL", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := usersTable()
			tt.mutate(tbl)
			result := ValidateTable(tbl)
			list := result.Errors
			if tt.warn {
				list = result.Warnings
			}
			require.Len(t, list, 1, result.String())
			assert.Contains(t, list[0].Error(), tt.want)
		})
	}
}

func TestValidateSchema(t *testing.T) {
	tables, err := Tables(shop(t))
	require.NoError(t, err)
	result := ValidateSchema(tables)
	assert.False(t, result.HasErrors(), result.String())
	require.NoError(t, result.Err())

	t.Run("duplicate table", func(t *testing.T) {
		result := ValidateSchema([]*Table{usersTable(), usersTable()})
		require.True(t, result.HasErrors())
		assert.Equal(t, "users: duplicate table name", result.Errors[0].Error())
		assert.ErrorIs(t, result.Err(), result.Errors[0])
	})

	t.Run("dangling foreign key", func(t *testing.T) {
		posts := NewTable("posts").AddColumn(&Column{Name: "user_id", Type: bigint})
		posts.ForeignKeys = []*ForeignKey{{
			Symbol:     "posts_user_id_fkey",
			Columns:    posts.Columns,
			RefTable:   usersTable(),
			RefColumns: []*Column{{Name: "id"}},
		}}
		result := ValidateSchema([]*Table{posts})
		require.True(t, result.HasErrors())
		assert.Contains(t, result.String(), `foreign key references non-existent table "users"`)
	})

	t.Run("type mismatch", func(t *testing.T) {
		users := usersTable()
		posts := NewTable("posts").AddColumn(&Column{Name: "user_id", Type: text})
		posts.ForeignKeys = []*ForeignKey{{
			Symbol:     "posts_user_id_fkey",
			Columns:    posts.Columns,
			RefTable:   users,
			RefColumns: users.PrimaryKey,
		}}
		result := ValidateSchema([]*Table{users, posts})
		require.True(t, result.HasErrors())
		assert.Contains(t, result.Errors[0].Error(), "column type TEXT does not match the referenced column users.id (BIGINT)")
	})
}

func TestValidateDiff(t *testing.T) {
	current := []*Table{usersTable()}

	t.Run("unchanged", func(t *testing.T) {
		result := ValidateDiff(current, []*Table{usersTable()})
		assert.False(t, result.HasErrors())
		assert.False(t, result.HasWarnings())
		assert.Equal(t, "No issues found", result.String())
	})

	t.Run("dropped table", func(t *testing.T) {
		result := ValidateDiff(current, nil)
		require.Len(t, result.Errors, 1)
		assert.True(t, result.HasBreakingChanges())
		assert.Contains(t, result.String(), "users: table will be dropped [BREAKING]")

		result = ValidateDiff(current, nil, AllowDropTable())
		assert.False(t, result.HasErrors())
		assert.True(t, result.HasBreakingChanges())
	})

	t.Run("column changes", func(t *testing.T) {
		desired := usersTable()
		desired.Columns = []*Column{
			desired.Columns[0],
			{Name: "name", Type: varchar(50), Unique: true},
			{Name: "bio", Type: text},
			{Name: "email", Type: varchar(120)},
		}
		result := ValidateDiff(current, []*Table{desired})
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "users.bio: column changing from NULL to NOT NULL may fail if column has NULL values", result.Errors[0].Error())

		var warnings []string
		for _, w := range result.Warnings {
			warnings = append(warnings, w.Error())
		}
		assert.ElementsMatch(t, []string{
			"users.name: column type changing from VARCHAR(100) to VARCHAR(50)",
			"users.name: column size reducing from 100 to 50 may truncate data",
			"users.name: adding UNIQUE constraint may fail if duplicate values exist",
			"users.email: new NOT NULL column without default value may fail if table has data",
		}, warnings)

		result = ValidateDiff(current, []*Table{desired}, AllowNullToNotNull())
		assert.False(t, result.HasErrors())
	})

	t.Run("dropped column and index", func(t *testing.T) {
		desired := NewTable("users").AddColumn(&Column{Name: "id", Type: bigint})
		result := ValidateDiff(current, []*Table{desired})
		assert.Len(t, result.Errors, 3, result.String())

		result = ValidateDiff(current, []*Table{desired}, AllowDropColumn(), AllowDropIndex())
		assert.False(t, result.HasErrors())
		assert.Len(t, result.Warnings, 3)
	})
}
