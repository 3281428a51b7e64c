package modelc_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelc"
)

// ratio is a value type whose equal values may differ in representation,
// like decimal numbers at different scales.
type ratio struct{ num, den int64 }

func (r ratio) Equal(o ratio) bool { return r.num*o.den == o.num*r.den }

func (r ratio) String() string {
	a, b := r.num, r.den
	for b != 0 {
		a, b = b, a%b
	}
	return fmt.Sprintf("%d/%d", r.num/a, r.den/a)
}

func ptr[T any](v T) *T { return &v }

func TestCompositeKey(t *testing.T) {
	orderID := uuid.MustParse("9b2f3c1e-7f4a-4a57-9c55-6d4f7e3b8a10")
	fields := []string{"order_id", "line_no"}

	t.Run("PKValues", func(t *testing.T) {
		k, err := modelc.NewCompositeKey(fields, orderID, int32(2))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"order_id": orderID, "line_no": int32(2)}, k.PKValues())
		assert.Equal(t, fields, k.Fields())
		assert.Equal(t, 2, k.Len())
	})

	t.Run("TupleRoundTrip", func(t *testing.T) {
		k := modelc.MustCompositeKey(fields, orderID, int32(7))
		back, err := modelc.CompositeKeyFromTuple(fields, k.Tuple())
		require.NoError(t, err)
		assert.True(t, k.Equal(back))
		assert.Equal(t, k.Hash(), back.Hash())
	})

	t.Run("FromValues", func(t *testing.T) {
		k, err := modelc.CompositeKeyFromValues(fields, map[string]any{"line_no": int32(1), "order_id": orderID})
		require.NoError(t, err)
		assert.Equal(t, []any{orderID, int32(1)}, k.Tuple())

		_, err = modelc.CompositeKeyFromValues(fields, map[string]any{"order_id": orderID})
		assert.ErrorContains(t, err, `missing composite key field "line_no"`)
	})

	t.Run("EqualAndHash", func(t *testing.T) {
		at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
		tests := []struct {
			name  string
			a, b  modelc.CompositeKey
			equal bool
		}{
			{
				name:  "same values",
				a:     modelc.MustCompositeKey([]string{"a", "b"}, 1, "x"),
				b:     modelc.MustCompositeKey([]string{"a", "b"}, 1, "x"),
				equal: true,
			},
			{
				name: "different value",
				a:    modelc.MustCompositeKey([]string{"a", "b"}, 1, "x"),
				b:    modelc.MustCompositeKey([]string{"a", "b"}, 2, "x"),
			},
			{
				name: "different fields",
				a:    modelc.MustCompositeKey([]string{"a", "b"}, 1, "x"),
				b:    modelc.MustCompositeKey([]string{"a", "c"}, 1, "x"),
			},
			{
				name: "different value types",
				a:    modelc.MustCompositeKey([]string{"a", "b"}, int32(1), "x"),
				b:    modelc.MustCompositeKey([]string{"a", "b"}, int64(1), "x"),
			},
			{
				name:  "same instant in another zone",
				a:     modelc.MustCompositeKey([]string{"id", "at"}, 1, at),
				b:     modelc.MustCompositeKey([]string{"id", "at"}, 1, at.In(time.FixedZone("CET", 3600))),
				equal: true,
			},
			{
				name:  "time pointers",
				a:     modelc.MustCompositeKey([]string{"id", "at"}, 1, &at),
				b:     modelc.MustCompositeKey([]string{"id", "at"}, 1, ptr(at.In(time.FixedZone("CET", 3600)))),
				equal: true,
			},
			{
				name: "later instant",
				a:    modelc.MustCompositeKey([]string{"id", "at"}, 1, at),
				b:    modelc.MustCompositeKey([]string{"id", "at"}, 1, at.Add(time.Second)),
			},
			{
				name:  "same amount at another scale",
				a:     modelc.MustCompositeKey([]string{"id", "price"}, 1, ratio{15, 10}),
				b:     modelc.MustCompositeKey([]string{"id", "price"}, 1, ratio{150, 100}),
				equal: true,
			},
			{
				name: "different amount",
				a:    modelc.MustCompositeKey([]string{"id", "price"}, 1, ratio{15, 10}),
				b:    modelc.MustCompositeKey([]string{"id", "price"}, 1, ratio{16, 10}),
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
				if tt.equal {
					assert.Equal(t, tt.a.Hash(), tt.b.Hash())
				}
			})
		}
	})

	t.Run("String", func(t *testing.T) {
		k := modelc.MustCompositeKey([]string{"a", "b"}, 1, 2)
		assert.Equal(t, "(a=1, b=2)", k.String())
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := modelc.NewCompositeKey([]string{"a"}, 1)
		assert.ErrorContains(t, err, "at least 2 fields")
		_, err = modelc.NewCompositeKey([]string{"a", "b"}, 1)
		assert.ErrorContains(t, err, "2 fields but 1 values")
		_, err = modelc.NewCompositeKey([]string{"a", "a"}, 1, 2)
		assert.ErrorContains(t, err, `duplicate composite key field "a"`)
		assert.Panics(t, func() { modelc.MustCompositeKey(nil) })
	})

	t.Run("Get", func(t *testing.T) {
		k := modelc.MustCompositeKey(fields, orderID, int32(3))
		v, ok := k.Get("line_no")
		assert.True(t, ok)
		assert.Equal(t, int32(3), v)
		_, ok = k.Get("missing")
		assert.False(t, ok)
	})
}

type keyed struct {
	id  int64
	set bool
}

func (k keyed) PrimaryKey() (any, bool) { return k.id, k.set }

func TestIntoPrimaryKey(t *testing.T) {
	v, err := modelc.IntoPrimaryKey(keyed{id: 42, set: true})
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	_, err = modelc.IntoPrimaryKey(keyed{})
	assert.ErrorContains(t, err, "has no primary key")

	v, err = modelc.IntoPrimaryKey("raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", v)
}

func TestModelKey(t *testing.T) {
	tests := []struct {
		in, app string
		want    modelc.ModelKey
	}{
		{in: "shop.Order", app: "ignored", want: modelc.ModelKey{AppLabel: "shop", Model: "Order"}},
		{in: "Order", app: "shop", want: modelc.ModelKey{AppLabel: "shop", Model: "Order"}},
		{in: "Order", app: "", want: modelc.ModelKey{AppLabel: "default", Model: "Order"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := modelc.ParseModelKey(tt.in, tt.app)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.AppLabel+"."+tt.want.Model, got.String())
		})
	}
}
