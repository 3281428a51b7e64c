package gen

import (
	"fmt"
	"strings"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/load"
	"github.com/syssam/modelc/schema/field"
)

// checkConflicts rejects mutually exclusive field settings and constraints
// naming unknown fields.
func (m *Model) checkConflicts() error {
	for _, f := range m.Fields {
		if f.Decl == nil || f.Kind == RelationField {
			continue
		}
		if msg := conflict(f.Decl); msg != "" {
			return modelc.NewConstraintConflictError(m.Name, f.Name, msg)
		}
		if f.PrimaryKey && f.Nullable {
			return modelc.NewConstraintConflictError(m.Name, f.Name, "primary key cannot be null")
		}
	}
	for _, c := range m.decl.Constraints {
		for _, name := range c.Fields {
			f, ok := m.Field(name)
			switch {
			case !ok:
				return modelc.NewConstraintConflictError(m.Name, name,
					fmt.Sprintf("constraint %s references unknown field", c.Name))
			case f.Kind == RelationField && f.Rel.JoinColumn == nil:
				return modelc.NewConstraintConflictError(m.Name, name,
					fmt.Sprintf("constraint %s cannot include relation %s without a column", c.Name, name))
			}
		}
	}
	return nil
}

// conflict returns a message describing the first conflict of a field
// declaration, or an empty string.
func conflict(fd *load.FieldDecl) string {
	var modes []string
	for _, mode := range []struct {
		name string
		on   bool
	}{
		{"identity_always", fd.IdentityAlways},
		{"identity_by_default", fd.IdentityByDefault},
		{"auto_increment", fd.AutoIncrement != nil && *fd.AutoIncrement},
		{"autoincrement", fd.Autoincrement},
	} {
		if mode.on {
			modes = append(modes, mode.name)
		}
	}
	t := fd.Type.Type
	switch {
	case len(modes) > 1:
		return "conflicting auto-increment modes: " + strings.Join(modes, ", ")
	case len(modes) == 1 && !t.Integer():
		return modes[0] + " requires an integer field"
	case fd.Generated != "" && fd.HasDefault:
		return "generated column cannot have a static default"
	case fd.Generated != "" && fd.GeneratedStored == fd.GeneratedVirtual:
		return "generated column must set exactly one of generated_stored or generated_virtual"
	case fd.Generated == "" && fd.GeneratedStored:
		return "generated_stored requires generated"
	case fd.Generated == "" && fd.GeneratedVirtual:
		return "generated_virtual requires generated"
	case fd.Generated != "" && len(modes) > 0:
		return "generated column cannot be " + modes[0]
	case fd.AutoNow && fd.AutoNowAdd:
		return "auto_now and auto_now_add are mutually exclusive"
	case (fd.AutoNow || fd.AutoNowAdd) && !t.Temporal():
		return "auto_now and auto_now_add require a date, time or timestamp field"
	case (fd.AutoNow || fd.AutoNowAdd) && fd.HasDefault:
		return "auto-now field cannot have a static default"
	case fd.MinLength != nil && fd.MaxLength != nil && *fd.MinLength > *fd.MaxLength:
		return fmt.Sprintf("min_length (%d) exceeds max_length (%d)", *fd.MinLength, *fd.MaxLength)
	case fd.MinValue != nil && fd.MaxValue != nil && *fd.MinValue > *fd.MaxValue:
		return fmt.Sprintf("min_value (%d) exceeds max_value (%d)", *fd.MinValue, *fd.MaxValue)
	case (fd.MinValue != nil || fd.MaxValue != nil) && !t.Numeric():
		return "min_value and max_value require a numeric field"
	case (fd.Email || fd.URL) && t != field.TypeString && t != field.TypeText:
		return "email and url validators require a string field"
	}
	return ""
}
