package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/schema"
	"github.com/syssam/modelc/schema/edge"
	"github.com/syssam/modelc/schema/field"
)

func TestResolvePrimaryKey(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		spec := schema.Model("Note").Table("notes").Fields(field.Text("body")).Spec()
		_, err := CompileSpec(testConfig(t), spec)
		require.Error(t, err)
		assert.ErrorIs(t, err, modelc.ErrInvalidDeclaration)
		assert.Contains(t, err.Error(), "at least one primary key field")
	})

	t.Run("single key", func(t *testing.T) {
		spec := schema.Model("Note").Table("notes").Fields(
			field.Int64("id").PrimaryKey().AutoIncrement(false),
		).Spec()
		m, err := CompileSpec(testConfig(t), spec)
		require.NoError(t, err)
		assert.Equal(t, "int64", m.KeyType())
		assert.False(t, m.HasCompositeKey())
	})

	t.Run("relation in key", func(t *testing.T) {
		c := testConfig(t)
		order, err := CompileSpec(c, orderModel().Spec())
		require.NoError(t, err)
		require.NoError(t, order.Register())

		spec := schema.Model("Shipment").Table("shipments").App("shop").Fields(
			edge.ForeignKey("order", "Order").PrimaryKey(),
			field.Int32("seq").PrimaryKey(),
		).Spec()
		m, err := CompileSpec(c, spec)
		require.NoError(t, err)
		assert.Equal(t, []string{"order_id", "seq"}, m.KeyFields())
		assert.Equal(t, "uuid.UUID", m.PrimaryKey[0].GoType())
		rel, _ := m.Field("order")
		assert.False(t, rel.PrimaryKey, "the join column owns the key")
	})
}

func TestCheckCompositeKey(t *testing.T) {
	spec := schema.Model("Doc").Table("docs").Fields(
		field.Int64("tenant").PrimaryKey(),
		field.JSON("path").PrimaryKey(),
	).Spec()
	_, err := CompileSpec(testConfig(t), spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, modelc.ErrTypeMapping)
	assert.Contains(t, err.Error(), "comparable type")
}

func TestCompositeTarget(t *testing.T) {
	c := testConfig(t)
	line, err := CompileSpec(c, orderLineModel().Spec())
	require.NoError(t, err)
	require.NoError(t, line.Register())

	spec := schema.Model("Refund").Table("refunds").App("shop").Fields(
		field.Int64("id").PrimaryKey(),
		edge.ForeignKey("line", "OrderLine"),
	).Spec()
	_, err = CompileSpec(c, spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, modelc.ErrInvalidRelationship)
	assert.Contains(t, err.Error(), "composite primary key (2 fields)")
}
