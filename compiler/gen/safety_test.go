package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/schema"
	"github.com/syssam/modelc/schema/field"
)

func TestUnsafeSQL(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{"price > 0", nil},
		{"deleted_at IS NULL", nil},
		{"updated_by <> created_by", nil},
		{"price > 0; DROP TABLE orders", []string{`statement separator ";"`, "blocked keyword DROP"}},
		{"status = 'x' -- trailing", []string{`comment marker "--"`}},
		{"a /* b */ = 1", []string{`comment marker "/*"`}},
		{"delete_flag = false", nil},
		{"exec(1)", []string{"blocked keyword EXEC"}},
		{"1 = 1 OR truncate", []string{"blocked keyword TRUNCATE"}},
		{"backdrop IS NOT NULL", nil},
		{"drop_count > 0", nil},
		{"status = 'created'", nil},
		{"name <> 'drop'", []string{"blocked keyword DROP"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, UnsafeSQL(tt.expr))
		})
	}
}

func TestCheckSafety(t *testing.T) {
	spec := schema.Model("Order").Table("orders").Fields(
		field.Int64("id").PrimaryKey(),
		field.Int64("price").Check("price > 0; DROP TABLE orders"),
	).Spec()
	_, err := CompileSpec(testConfig(t), spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, modelc.ErrUnsafeExpression)

	var uerr *modelc.UnsafeExpressionError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "check", uerr.Attr)
	assert.Len(t, uerr.Violations, 2)
	assert.Contains(t, err.Error(), ";")
	assert.Contains(t, err.Error(), "DROP")

	t.Run("model constraint", func(t *testing.T) {
		spec := schema.Model("Order").Table("orders").Fields(
			field.Int64("id").PrimaryKey(),
			field.String("code").MaxLen(10),
		).UniqueWhere("orders_live_code", "code <> '' /* live */", "code").Spec()
		_, err := CompileSpec(testConfig(t), spec)
		require.Error(t, err)
		assert.ErrorIs(t, err, modelc.ErrUnsafeExpression)
	})

	t.Run("safe fragments compile", func(t *testing.T) {
		spec := schema.Model("Order").Table("orders").Fields(
			field.Int64("id").PrimaryKey(),
			field.Int64("price").Check("price > 0"),
			field.Int64("doubled").Generated("price * 2").Stored(),
		).Spec()
		m, err := CompileSpec(testConfig(t), spec)
		require.NoError(t, err)
		require.Len(t, m.Meta.Constraints, 1)
		assert.Equal(t, "price_check", m.Meta.Constraints[0].Name)
		assert.Equal(t, "price > 0", m.Meta.Constraints[0].Definition)
	})
}
