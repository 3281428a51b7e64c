package gen

import (
	"slices"
	"strings"
	"unicode"

	"github.com/syssam/modelc"
)

// blockedKeywords may not appear as a word in a raw SQL fragment.
var blockedKeywords = []string{
	"DROP", "DELETE", "INSERT", "UPDATE", "ALTER", "TRUNCATE",
	"EXEC", "EXECUTE", "CREATE", "GRANT", "REVOKE",
}

// UnsafeSQL returns the blocked patterns found in a raw SQL fragment, in
// check order: statement separators, blocked keywords, comment markers.
// A fragment is accepted when the result is empty. This is a pattern filter,
// not a parser.
func UnsafeSQL(expr string) []string {
	var violations []string
	if strings.Contains(expr, ";") {
		violations = append(violations, `statement separator ";"`)
	}
	words := strings.FieldsFunc(strings.ToUpper(expr), func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, kw := range blockedKeywords {
		if slices.Contains(words, kw) {
			violations = append(violations, "blocked keyword "+kw)
		}
	}
	for _, marker := range []string{"--", "/*"} {
		if strings.Contains(expr, marker) {
			violations = append(violations, `comment marker "`+marker+`"`)
		}
	}
	return violations
}

// checkSafety runs every raw SQL fragment of the model through UnsafeSQL.
func (m *Model) checkSafety() error {
	check := func(field, attr, expr string) error {
		if expr == "" {
			return nil
		}
		if v := UnsafeSQL(expr); len(v) > 0 {
			return modelc.NewUnsafeExpressionError(m.Name, field, attr, expr, v...)
		}
		return nil
	}
	for _, fd := range m.decl.Fields {
		if err := check(fd.Name, "check", fd.Check); err != nil {
			return err
		}
		if err := check(fd.Name, "generated", fd.Generated); err != nil {
			return err
		}
	}
	for _, c := range m.decl.Constraints {
		if err := check("", "condition", c.Condition); err != nil {
			return err
		}
		if err := check("", "expr", c.Expr); err != nil {
			return err
		}
	}
	return nil
}
