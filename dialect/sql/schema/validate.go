package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/gen"
)

// ValidationError is a problem found in a table definition or in the
// change between two schema versions.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking reports if applying the change may lose data.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the errors and warnings of a validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool { return len(r.Errors) > 0 }

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool { return len(r.Warnings) > 0 }

// HasBreakingChanges returns true if any error or warning is breaking.
func (r *ValidationResult) HasBreakingChanges() bool {
	breaking := func(e *ValidationError) bool { return e.Breaking }
	return slices.ContainsFunc(r.Errors, breaking) || slices.ContainsFunc(r.Warnings, breaking)
}

// Err returns the errors of the result as one error, or nil.
func (r *ValidationResult) Err() error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return modelc.NewAggregateError(errs...)
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	section := func(title string, list []*ValidationError) {
		if len(list) == 0 {
			return
		}
		sb.WriteString(title)
		sb.WriteString(":\n")
		for _, e := range list {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	section("Errors", r.Errors)
	section("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

func (r *ValidationResult) errorf(table, column, format string, args ...any) {
	r.Errors = append(r.Errors, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(table, column, format string, args ...any) {
	r.Warnings = append(r.Warnings, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

// breaking records a breaking change: a warning when allowed, an error
// otherwise.
func (r *ValidationResult) breaking(allowed bool, table, column, message string) {
	e := &ValidationError{Table: table, Column: column, Message: message, Breaking: true}
	if allowed {
		r.Warnings = append(r.Warnings, e)
	} else {
		r.Errors = append(r.Errors, e)
	}
}

func (r *ValidationResult) merge(o *ValidationResult) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// ValidateOption configures schema validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowDropColumn    bool
	allowDropTable     bool
	allowDropIndex     bool
	allowNullToNotNull bool
}

// AllowDropColumn reports dropped columns as warnings.
func AllowDropColumn() ValidateOption {
	return func(c *validateConfig) { c.allowDropColumn = true }
}

// AllowDropTable reports dropped tables as warnings.
func AllowDropTable() ValidateOption {
	return func(c *validateConfig) { c.allowDropTable = true }
}

// AllowDropIndex reports dropped indexes as warnings.
func AllowDropIndex() ValidateOption {
	return func(c *validateConfig) { c.allowDropIndex = true }
}

// AllowNullToNotNull reports nullable columns becoming NOT NULL as warnings.
func AllowNullToNotNull() ValidateOption {
	return func(c *validateConfig) { c.allowNullToNotNull = true }
}

// ValidateDiff validates the change from the current tables, usually read
// from a registry snapshot, to the desired ones. Changes that may lose data
// are errors unless allowed by an option.
//
// Example:
//
//	result := schema.ValidateDiff(current, desired, schema.AllowDropIndex())
//	if result.HasBreakingChanges() {
//	    log.Fatal("breaking changes detected:\n", result)
//	}
func ValidateDiff(current, desired []*Table, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	result := &ValidationResult{}
	wanted := make(map[string]*Table, len(desired))
	for _, t := range desired {
		wanted[t.Name] = t
	}
	for _, cur := range current {
		t, ok := wanted[cur.Name]
		if !ok {
			result.breaking(cfg.allowDropTable, cur.Name, "", "table will be dropped")
			continue
		}
		validateTableDiff(cur, t, cfg, result)
	}
	return result
}

func validateTableDiff(current, desired *Table, cfg *validateConfig, result *ValidationResult) {
	for _, c := range current.Columns {
		if !desired.HasColumn(c.Name) {
			result.breaking(cfg.allowDropColumn, current.Name, c.Name, "column will be dropped")
		}
	}
	for _, want := range desired.Columns {
		have, ok := current.Column(want.Name)
		if !ok {
			if !want.Nullable && !want.HasDefault() && !want.Increment {
				result.warnf(current.Name, want.Name, "new NOT NULL column without default value may fail if table has data")
			}
			continue
		}
		if from, to := have.Type.String(), want.Type.String(); from != to {
			result.warnf(current.Name, want.Name, "column type changing from %s to %s", from, to)
		}
		if have.Nullable && !want.Nullable {
			result.breaking(cfg.allowNullToNotNull, current.Name, want.Name,
				"column changing from NULL to NOT NULL may fail if column has NULL values")
		}
		if have.Type.Size > 0 && want.Type.Size > 0 && want.Type.Size < have.Type.Size {
			result.warnf(current.Name, want.Name, "column size reducing from %d to %d may truncate data", have.Type.Size, want.Type.Size)
		}
		if !have.Unique && want.Unique {
			result.warnf(current.Name, want.Name, "adding UNIQUE constraint may fail if duplicate values exist")
		}
	}
	for _, idx := range current.Indexes {
		if _, ok := desired.Index(idx.Name); !ok {
			e := &ValidationError{Table: current.Name, Message: fmt.Sprintf("index %q will be dropped", idx.Name)}
			if cfg.allowDropIndex {
				result.Warnings = append(result.Warnings, e)
			} else {
				result.Errors = append(result.Errors, e)
			}
		}
	}
}

// ValidateTable validates a single table definition.
func ValidateTable(t *Table) *ValidationResult {
	result := &ValidationResult{}
	if len(t.PrimaryKey) == 0 {
		result.warnf(t.Name, "", "table has no primary key")
	}
	columns := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if columns[c.Name] {
			result.errorf(t.Name, c.Name, "duplicate column name")
		}
		columns[c.Name] = true
		if c.Type.Kind == modelc.KindInvalid {
			result.errorf(t.Name, c.Name, "column has no type")
		}
	}
	indexes := make(map[string]bool, len(t.Indexes))
	for _, idx := range t.Indexes {
		if indexes[idx.Name] {
			result.errorf(t.Name, "", "duplicate index name: %s", idx.Name)
		}
		indexes[idx.Name] = true
		if len(idx.Columns) == 0 {
			result.errorf(t.Name, "", "index %q has no columns", idx.Name)
		}
		for _, c := range idx.Columns {
			if !columns[c.Name] {
				result.errorf(t.Name, "", "index %q references non-existent column %q", idx.Name, c.Name)
			}
		}
		if idx.Where != "" {
			if v := gen.UnsafeSQL(idx.Where); len(v) > 0 {
				result.errorf(t.Name, "", "index %q predicate contains %s", idx.Name, strings.Join(v, ", "))
			}
		}
	}
	for _, c := range t.Checks {
		if v := gen.UnsafeSQL(c.Expr); len(v) > 0 {
			result.errorf(t.Name, "", "check %q contains %s", c.Name, strings.Join(v, ", "))
		}
	}
	for _, fk := range t.ForeignKeys {
		for _, c := range fk.Columns {
			if !columns[c.Name] {
				result.errorf(t.Name, "", "foreign key references non-existent column %q", c.Name)
			}
		}
		if fk.OnDelete == SetNull {
			for _, c := range fk.Columns {
				if !c.Nullable {
					result.errorf(t.Name, c.Name, "foreign key %s sets NULL on delete but the column is NOT NULL", fk.Symbol)
				}
			}
		}
	}
	return result
}

// ValidateSchema validates all tables and the foreign keys between them.
func ValidateSchema(tables []*Table) *ValidationResult {
	result := &ValidationResult{}
	names := make(map[string]*Table, len(tables))
	for _, t := range tables {
		if _, ok := names[t.Name]; ok {
			result.errorf(t.Name, "", "duplicate table name")
		}
		names[t.Name] = t
		result.merge(ValidateTable(t))
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			ref, ok := names[fk.RefTable.Name]
			if !ok {
				result.errorf(t.Name, "", "foreign key references non-existent table %q", fk.RefTable.Name)
				continue
			}
			for i, c := range fk.Columns {
				if i >= len(fk.RefColumns) {
					break
				}
				rc, ok := ref.Column(fk.RefColumns[i].Name)
				if !ok {
					result.errorf(t.Name, c.Name, "foreign key references non-existent column %s.%s", ref.Name, fk.RefColumns[i].Name)
					continue
				}
				if c.Type.Kind != rc.Type.Kind {
					result.errorf(t.Name, c.Name, "column type %s does not match the referenced column %s.%s (%s)",
						c.Type, ref.Name, rc.Name, rc.Type)
				}
			}
		}
	}
	return result
}
