package load

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/schema/field"
)

// Parse validates the raw annotation data of a model and returns its
// declaration. Attributes are examined in sorted key order so the reported
// attribute is deterministic.
func Parse(s *Spec) (*Declaration, error) {
	if s == nil {
		return nil, modelc.NewDeclarationError("", "", "", "nil spec")
	}
	if s.Name == "" || !isIdent(s.Name) {
		return nil, modelc.NewDeclarationError(s.Name, "", "name", "model name must be a valid identifier")
	}
	d := &Declaration{Name: s.Name, AppLabel: modelc.DefaultAppLabel}
	if err := parseModelAttrs(d, s.Attrs); err != nil {
		return nil, err
	}
	if len(s.Fields) == 0 {
		return nil, modelc.NewDeclarationError(s.Name, "", "fields", "model must declare at least one field")
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, fs := range s.Fields {
		if fs == nil || fs.Name == "" {
			return nil, modelc.NewDeclarationError(s.Name, "", "name", "field name is required")
		}
		if _, ok := seen[fs.Name]; ok {
			return nil, modelc.NewDeclarationError(s.Name, fs.Name, "name", "duplicate field")
		}
		seen[fs.Name] = struct{}{}
		f, err := parseField(s.Name, fs)
		if err != nil {
			return nil, err
		}
		d.Fields = append(d.Fields, f)
	}
	nameConstraints(d)
	return d, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s *Spec) *Declaration {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ===== Model attributes =====

func parseModelAttrs(d *Declaration, attrs map[string]any) error {
	for _, key := range sortedKeys(attrs) {
		v := attrs[key]
		var err error
		switch key {
		case "table_name":
			d.Table, err = asString(v)
			if err == nil && d.Table == "" {
				err = fmt.Errorf("must not be empty")
			}
		case "app_label":
			d.AppLabel, err = asString(v)
			if err == nil && d.AppLabel == "" {
				d.AppLabel = modelc.DefaultAppLabel
			}
		case "verbose_name":
			d.VerboseName, err = asString(v)
		case "ordering":
			d.Ordering, err = asStrings(v)
		case "unique_together":
			var groups [][]string
			groups, err = asGroups(v)
			for _, fields := range groups {
				d.Constraints = append(d.Constraints, &Constraint{Kind: UniqueConstraint, Fields: fields})
			}
		case "constraints":
			err = parseConstraints(d, v)
		default:
			return modelc.NewDeclarationError(d.Name, "", key, "unsupported model attribute")
		}
		if err != nil {
			return &modelc.DeclarationError{Model: d.Name, Attr: key, Message: err.Error()}
		}
	}
	if d.Table == "" {
		return modelc.NewDeclarationError(d.Name, "", "table_name", "missing required attribute")
	}
	return nil
}

func parseConstraints(d *Declaration, v any) error {
	items, ok := v.([]any)
	if !ok {
		return fmt.Errorf("expects a list of constraints")
	}
	for i, item := range items {
		m, ok := asMap(item)
		if !ok || len(m) != 1 {
			return fmt.Errorf("constraint %d must have exactly one of unique or check", i)
		}
		for kind, body := range m {
			c, err := parseConstraint(ConstraintKind(kind), body)
			if err != nil {
				return fmt.Errorf("constraint %d: %w", i, err)
			}
			d.Constraints = append(d.Constraints, c)
		}
	}
	return nil
}

func parseConstraint(kind ConstraintKind, body any) (*Constraint, error) {
	m, ok := asMap(body)
	if !ok {
		return nil, fmt.Errorf("%s constraint expects a mapping", kind)
	}
	c := &Constraint{Kind: kind}
	var allowed []string
	switch kind {
	case UniqueConstraint:
		allowed = []string{"fields", "name", "condition"}
	case CheckConstraint:
		allowed = []string{"expr", "name"}
	default:
		return nil, fmt.Errorf("unknown constraint kind %q", kind)
	}
	for _, key := range sortedKeys(m) {
		if !slices.Contains(allowed, key) {
			return nil, fmt.Errorf("unsupported %s constraint attribute %q", kind, key)
		}
		var err error
		switch key {
		case "fields":
			c.Fields, err = asStrings(m[key])
		case "name":
			c.Name, err = asString(m[key])
		case "condition":
			c.Condition, err = asString(m[key])
		case "expr":
			c.Expr, err = asString(m[key])
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}
	switch {
	case kind == UniqueConstraint && len(c.Fields) == 0:
		return nil, fmt.Errorf("unique constraint requires fields")
	case kind == CheckConstraint && strings.TrimSpace(c.Expr) == "":
		return nil, fmt.Errorf("check constraint requires expr")
	}
	return c, nil
}

// nameConstraints assigns default names: "{table}_{fields}_uniq" for unique
// constraints and "{table}_check", "{table}_check_2", ... for checks.
func nameConstraints(d *Declaration) {
	checks := 0
	for _, c := range d.Constraints {
		switch c.Kind {
		case UniqueConstraint:
			if c.Name == "" {
				c.Name = d.Table + "_" + strings.Join(c.Fields, "_") + "_uniq"
			}
		case CheckConstraint:
			checks++
			if c.Name == "" {
				c.Name = d.Table + "_check"
				if checks > 1 {
					c.Name += "_" + strconv.Itoa(checks)
				}
			}
		}
	}
}

// ===== Field attributes =====

type fieldSetter func(*FieldDecl, any) error

var fieldAttrs = map[string]fieldSetter{
	"primary_key":                 flag(func(f *FieldDecl, b bool) { f.PrimaryKey = b }),
	"null":                        flag(func(f *FieldDecl, b bool) { f.Null = b }),
	"blank":                       flag(func(f *FieldDecl, b bool) { f.Blank = b }),
	"unique":                      flag(func(f *FieldDecl, b bool) { f.Unique = b }),
	"index":                       flag(func(f *FieldDecl, b bool) { f.Index = b }),
	"editable":                    flag(func(f *FieldDecl, b bool) { f.Editable = b }),
	"email":                       flag(func(f *FieldDecl, b bool) { f.Email = b }),
	"url":                         flag(func(f *FieldDecl, b bool) { f.URL = b }),
	"auto_now":                    flag(func(f *FieldDecl, b bool) { f.AutoNow = b }),
	"auto_now_add":                flag(func(f *FieldDecl, b bool) { f.AutoNowAdd = b }),
	"generated_stored":            flag(func(f *FieldDecl, b bool) { f.GeneratedStored = b }),
	"generated_virtual":           flag(func(f *FieldDecl, b bool) { f.GeneratedVirtual = b }),
	"identity_always":             flag(func(f *FieldDecl, b bool) { f.IdentityAlways = b }),
	"identity_by_default":         flag(func(f *FieldDecl, b bool) { f.IdentityByDefault = b }),
	"auto_increment":              flag(func(f *FieldDecl, b bool) { f.AutoIncrement = &b }),
	"autoincrement":               flag(func(f *FieldDecl, b bool) { f.Autoincrement = b }),
	"include_in_new":              flag(func(f *FieldDecl, b bool) { f.IncludeInNew = &b }),
	"on_update_current_timestamp": flag(func(f *FieldDecl, b bool) { f.OnUpdateCurrentTimestamp = b }),
	"invisible":                   flag(func(f *FieldDecl, b bool) { f.Invisible = b }),
	"fulltext":                    flag(func(f *FieldDecl, b bool) { f.Fulltext = b }),
	"unsigned":                    flag(func(f *FieldDecl, b bool) { f.Unsigned = b }),
	"zerofill":                    flag(func(f *FieldDecl, b bool) { f.Zerofill = b }),
	"max_length":                  size(func(f *FieldDecl, n int) { f.MaxLength = &n }),
	"min_length":                  size(func(f *FieldDecl, n int) { f.MinLength = &n }),
	"max_digits":                  size(func(f *FieldDecl, n int) { f.MaxDigits = &n }),
	"decimal_places":              size(func(f *FieldDecl, n int) { f.DecimalPlaces = &n }),
	"min_value":                   integer(func(f *FieldDecl, n int64) { f.MinValue = &n }),
	"max_value":                   integer(func(f *FieldDecl, n int64) { f.MaxValue = &n }),
	"db_column":                   text(func(f *FieldDecl, s string) { f.DBColumn = s }),
	"check":                       text(func(f *FieldDecl, s string) { f.Check = s }),
	"generated":                   text(func(f *FieldDecl, s string) { f.Generated = s }),
	"collate":                     text(func(f *FieldDecl, s string) { f.Collate = s }),
	"character_set":               text(func(f *FieldDecl, s string) { f.CharacterSet = s }),
	"comment":                     text(func(f *FieldDecl, s string) { f.Comment = s }),
	"field_type":                  text(func(f *FieldDecl, s string) { f.FieldType = s }),
	"array_base_type":             text(func(f *FieldDecl, s string) { f.ArrayBaseType = s }),
	"storage": oneOf([]string{"plain", "extended", "external", "main"},
		func(f *FieldDecl, s string) { f.Storage = s }),
	"compression": oneOf([]string{"pglz", "lz4"},
		func(f *FieldDecl, s string) { f.Compression = s }),
	"default": func(f *FieldDecl, v any) error {
		switch v.(type) {
		case nil, []any, map[string]any:
			return fmt.Errorf("expects a scalar value")
		}
		f.Default, f.HasDefault = v, true
		return nil
	},
	"foreign_key": func(f *FieldDecl, v any) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		if strings.Count(s, ".") > 1 || !isQualifiedIdent(s) {
			return fmt.Errorf("must be a model name or in 'app_label.model_name' format")
		}
		f.Rel = &Relation{Kind: ForeignKey, To: s}
		return nil
	},
}

func parseField(model string, fs *FieldSpec) (*FieldDecl, error) {
	f := &FieldDecl{Name: fs.Name, Editable: true, Attrs: fs.Attrs}
	if !isIdent(fs.Name) {
		return nil, modelc.NewDeclarationError(model, fs.Name, "name", "field name must be a valid identifier")
	}
	for _, key := range sortedKeys(fs.Attrs) {
		set, ok := fieldAttrs[key]
		if !ok {
			return nil, modelc.NewDeclarationError(model, fs.Name, key, "unsupported field attribute")
		}
		if err := set(f, fs.Attrs[key]); err != nil {
			return nil, modelc.NewDeclarationError(model, fs.Name, key, err.Error())
		}
	}
	if fs.Rel != nil {
		if f.Rel != nil {
			return nil, modelc.NewDeclarationError(model, fs.Name, "foreign_key", "foreign_key conflicts with rel")
		}
		rel, err := parseRelation(model, fs.Name, fs.Rel)
		if err != nil {
			return nil, err
		}
		f.Rel = rel
	}
	switch {
	case fs.Type != "":
		info, err := field.ParseType(fs.Type)
		if err != nil {
			return nil, &modelc.DeclarationError{Model: model, Field: fs.Name, Attr: "type", Message: "malformed type expression", Cause: err}
		}
		f.Type = info
	case f.Rel != nil && f.Rel.Kind.Generic():
	case f.Rel != nil && f.Rel.To != "":
		f.Type = containerFor(f.Rel)
	default:
		return nil, modelc.NewDeclarationError(model, fs.Name, "type", "missing required attribute")
	}
	if f.Rel != nil && f.Rel.Kind == "" {
		f.Rel.Kind = kindOf(f.Type)
		if f.Rel.Kind == "" {
			return nil, modelc.NewDeclarationError(model, fs.Name, "rel.kind", "missing relationship kind")
		}
	}
	return f, nil
}

// containerFor returns the container type of a relation declared without a type.
func containerFor(rel *Relation) *field.TypeInfo {
	var t field.Type
	switch rel.Kind {
	case OneToOne:
		t = field.TypeOneToOne
	case OneToMany:
		t = field.TypeOneToMany
	case ManyToMany:
		t = field.TypeManyToMany
	default:
		t = field.TypeForeignKey
	}
	return &field.TypeInfo{Type: t, Ident: t.String() + "[" + rel.To + "]", Params: []string{rel.To}}
}

func kindOf(t *field.TypeInfo) RelationKind {
	if t == nil {
		return ""
	}
	switch t.Type {
	case field.TypeForeignKey:
		return ForeignKey
	case field.TypeOneToOne:
		return OneToOne
	case field.TypeOneToMany:
		return OneToMany
	case field.TypeManyToMany:
		return ManyToMany
	}
	return ""
}

// ===== Relationship attributes =====

var referentialActions = []string{"CASCADE", "SET NULL", "RESTRICT", "SET DEFAULT", "NO ACTION"}

func parseRelation(model, name string, attrs map[string]any) (*Relation, error) {
	r := &Relation{}
	for _, key := range sortedKeys(attrs) {
		v := attrs[key]
		var err error
		switch key {
		case "kind":
			var s string
			if s, err = asString(v); err == nil {
				r.Kind = RelationKind(s)
				if !r.Kind.Valid() {
					err = fmt.Errorf("unknown relationship kind %q", s)
				}
			}
		case "to":
			if r.To, err = asString(v); err == nil && !isQualifiedIdent(r.To) {
				err = fmt.Errorf("invalid model reference %q", r.To)
			}
		case "related_name":
			if r.RelatedName, err = asString(v); err == nil && !isIdent(r.RelatedName) {
				err = fmt.Errorf("related_name must be a valid identifier")
			}
		case "through":
			r.Through, err = asString(v)
		case "source_field":
			r.SourceField, err = asString(v)
		case "target_field":
			r.TargetField, err = asString(v)
		case "foreign_key":
			r.ForeignKey, err = asString(v)
		case "db_column":
			r.DBColumn, err = asString(v)
		case "on_delete":
			r.OnDelete, err = asAction(v)
		case "on_update":
			r.OnUpdate, err = asAction(v)
		case "null":
			r.Null, err = asFlag(v)
		case "db_index":
			var b bool
			if b, err = asFlag(v); err == nil {
				r.DBIndex = &b
			}
		default:
			return nil, modelc.NewDeclarationError(model, name, "rel."+key, "unsupported relationship attribute")
		}
		if err != nil {
			return nil, modelc.NewDeclarationError(model, name, "rel."+key, err.Error())
		}
	}
	return r, nil
}

func asAction(v any) (string, error) {
	s, err := asString(v)
	if err != nil {
		return "", err
	}
	s = strings.ToUpper(strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " "))
	if !slices.Contains(referentialActions, s) {
		return "", fmt.Errorf("expects one of %s", strings.Join(referentialActions, ", "))
	}
	return s, nil
}

// ===== Value helpers =====

func flag(set func(*FieldDecl, bool)) fieldSetter {
	return func(f *FieldDecl, v any) error {
		b, err := asFlag(v)
		if err != nil {
			return err
		}
		set(f, b)
		return nil
	}
}

func size(set func(*FieldDecl, int)) fieldSetter {
	return func(f *FieldDecl, v any) error {
		n, err := asInt(v)
		if err != nil {
			return err
		}
		if n < 0 || n > math.MaxInt32 {
			return fmt.Errorf("expects a non-negative size")
		}
		set(f, int(n))
		return nil
	}
}

func integer(set func(*FieldDecl, int64)) fieldSetter {
	return func(f *FieldDecl, v any) error {
		n, err := asInt(v)
		if err != nil {
			return err
		}
		set(f, n)
		return nil
	}
}

func text(set func(*FieldDecl, string)) fieldSetter {
	return func(f *FieldDecl, v any) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		set(f, s)
		return nil
	}
}

func oneOf(values []string, set func(*FieldDecl, string)) fieldSetter {
	return func(f *FieldDecl, v any) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		s = strings.ToLower(s)
		if !slices.Contains(values, s) {
			return fmt.Errorf("must be one of: %s", strings.Join(values, ", "))
		}
		set(f, s)
		return nil
	}
}

// asFlag accepts true, false or an empty value meaning true.
func asFlag(v any) (bool, error) {
	switch v := v.(type) {
	case nil:
		return true, nil
	case bool:
		return v, nil
	case string:
		if v == "" {
			return true, nil
		}
	}
	return false, fmt.Errorf("expects true, false or an empty value")
}

func asInt(v any) (int64, error) {
	switch v := v.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), nil
		}
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v), nil
		}
	}
	return 0, fmt.Errorf("expects an integer")
}

func asString(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("expects a string")
}

func asStrings(v any) ([]string, error) {
	switch v := v.(type) {
	case []string:
		return slices.Clone(v), nil
	case []any:
		out := make([]string, len(v))
		for i, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("expects a list of strings")
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("expects a list of strings")
}

func asGroups(v any) ([][]string, error) {
	switch v := v.(type) {
	case [][]string:
		return v, nil
	case []any:
		groups := make([][]string, len(v))
		for i, g := range v {
			fields, err := asStrings(g)
			if err != nil || len(fields) == 0 {
				return nil, fmt.Errorf("expects a list of field lists")
			}
			groups[i] = fields
		}
		return groups, nil
	}
	return nil, fmt.Errorf("expects a list of field lists")
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func isIdent(s string) bool {
	return s != "" && !strings.Contains(s, ".") && isQualifiedIdent(s)
}

func isQualifiedIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			ok := r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || i > 0 && r >= '0' && r <= '9'
			if !ok {
				return false
			}
		}
	}
	return true
}
