package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		expr     string
		typ      Type
		optional bool
		goType   string
		params   []string
	}{
		{"bool", TypeBool, false, "bool", nil},
		{"int", TypeInt64, false, "int64", nil},
		{"int32", TypeInt32, false, "int32", nil},
		{"*int64", TypeInt64, true, "int64", nil},
		{"float32", TypeFloat32, false, "float32", nil},
		{"string", TypeString, false, "string", nil},
		{"text", TypeText, false, "string", nil},
		{"decimal.Decimal", TypeDecimal, false, "decimal.Decimal", nil},
		{"date", TypeDate, false, "time.Time", nil},
		{"time", TypeClock, false, "time.Time", nil},
		{"*time.Time", TypeTime, true, "time.Time", nil},
		{"uuid", TypeUUID, false, "uuid.UUID", nil},
		{"json.RawMessage", TypeJSON, false, "json.RawMessage", nil},
		{"map[string]string", TypeMap, false, "map[string]string", nil},
		{"[]int32", TypeArray, false, "[]int32", nil},
		{"[]uuid", TypeArray, false, "[]uuid.UUID", nil},
		{"net.IP", TypeOther, false, "net.IP", nil},
		{"ForeignKey[auth.User]", TypeForeignKey, false, "ForeignKey", []string{"auth.User"}},
		{"OneToOne[ Profile ]", TypeOneToOne, false, "OneToOne", []string{"Profile"}},
		{"OneToMany[Comment]", TypeOneToMany, false, "OneToMany", []string{"Comment"}},
		{"ManyToMany[Post, Tag]", TypeManyToMany, false, "ManyToMany", []string{"Post", "Tag"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			info, err := ParseType(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, info.Type)
			assert.Equal(t, tt.optional, info.Optional)
			assert.Equal(t, tt.goType, info.GoType())
			assert.Equal(t, tt.params, info.Params)
			assert.Equal(t, tt.expr, info.String())
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr string
	}{
		{"", "empty type expression"},
		{"**int", "double pointer"},
		{"*ForeignKey[User]", "cannot be optional"},
		{"[]ForeignKey[User]", "arrays of relationship containers"},
		{"HasMany[User]", "unknown generic type"},
		{"ForeignKey[User, Group]", "takes exactly 1 parameter"},
		{"ManyToMany[A, B, C]", "at most 2 parameters"},
		{"ForeignKey[]", "invalid model reference"},
		{"map[int]string", "malformed type"},
		{"two words", "malformed type"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := ParseType(tt.expr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTypeInfo(t *testing.T) {
	m2m, err := ParseType("ManyToMany[Post, Tag]")
	require.NoError(t, err)
	assert.Equal(t, "Tag", m2m.Target())
	assert.False(t, m2m.Comparable())

	fk, err := ParseType("ForeignKey[User]")
	require.NoError(t, err)
	assert.Equal(t, "User", fk.Target())

	for expr, want := range map[string]bool{
		"int64":             true,
		"uuid":              true,
		"*string":           true,
		"json":              false,
		"map[string]string": false,
		"[]int32":           false,
	} {
		info, err := ParseType(expr)
		require.NoError(t, err)
		assert.Equal(t, want, info.Comparable(), expr)
	}
	assert.Equal(t, "", TypeInfo{Type: TypeInt64}.Target())
	assert.Equal(t, "int64", TypeInfo{Type: TypeInt64}.String())
}

func TestType(t *testing.T) {
	assert.True(t, TypeInt32.Numeric())
	assert.True(t, TypeDecimal.Numeric())
	assert.False(t, TypeDecimal.Integer())
	assert.True(t, TypeInt64.Integer())
	assert.True(t, TypeManyToMany.Relation())
	assert.False(t, TypeArray.Relation())
	assert.True(t, TypeClock.Temporal())
	assert.False(t, TypeUUID.Temporal())
	assert.False(t, TypeInvalid.Valid())
	assert.True(t, TypeOther.Valid())
	assert.Equal(t, "Type(200)", Type(200).String())
}
