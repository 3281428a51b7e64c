package sql

import (
	"log/slog"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/gen"
	"github.com/syssam/modelc/compiler/load"
)

// shopSpecs declares a small shop: customers, their orders and the order
// lines keyed by (order_id, line_no).
func shopSpecs() []*load.Spec {
	return []*load.Spec{
		{
			Name:  "Customer",
			Attrs: map[string]any{"table_name": "customers", "app_label": "shop"},
			Fields: []*load.FieldSpec{
				{Name: "id", Type: "int64", Attrs: map[string]any{"primary_key": true}},
				{Name: "email", Type: "string", Attrs: map[string]any{"max_length": 120, "email": true}},
				{Name: "nickname", Type: "*string", Attrs: map[string]any{"max_length": 40}},
			},
		},
		{
			Name:  "Order",
			Attrs: map[string]any{"table_name": "orders", "app_label": "shop"},
			Fields: []*load.FieldSpec{
				{Name: "id", Type: "uuid.UUID", Attrs: map[string]any{"primary_key": true}},
				{Name: "total", Type: "decimal", Attrs: map[string]any{"max_digits": 10, "decimal_places": 2}},
				{Name: "customer", Type: "ForeignKey[Customer]", Rel: map[string]any{"related_name": "orders", "on_delete": "cascade"}},
				{Name: "referrer", Type: "ForeignKey[Customer]", Attrs: map[string]any{"null": true}, Rel: map[string]any{"related_name": "referrals", "on_delete": "set_null"}},
				{Name: "created_at", Type: "time.Time", Attrs: map[string]any{"auto_now_add": true}},
				{Name: "status", Type: "string", Attrs: map[string]any{"max_length": 20, "default": "pending"}},
			},
		},
		{
			Name:  "OrderLine",
			Attrs: map[string]any{"table_name": "order_lines", "app_label": "shop"},
			Fields: []*load.FieldSpec{
				{Name: "order_id", Type: "int64", Attrs: map[string]any{"primary_key": true}},
				{Name: "line_no", Type: "int32", Attrs: map[string]any{"primary_key": true}},
				{Name: "quantity", Type: "int32", Attrs: map[string]any{"min_value": 1}},
			},
		},
	}
}

// newGraph compiles the shop declarations against a private registry.
func newGraph(t *testing.T, opts ...gen.Option) *gen.Graph {
	t.Helper()
	opts = append([]gen.Option{
		gen.WithRegistry(modelc.NewRegistry()),
		gen.WithLogger(slog.New(slog.DiscardHandler)),
		gen.WithPackage("example.com/app/shop"),
	}, opts...)
	c, err := gen.NewConfig(opts...)
	require.NoError(t, err)
	g, err := gen.NewGraph(c, shopSpecs()...)
	require.NoError(t, err)
	return g
}

// newHelper returns the generator helper of the graph.
func newHelper(g *gen.Graph) *gen.JenniferGenerator {
	return gen.NewJenniferGenerator(g, g.Target)
}

// model returns the compiled model with the given qualified name.
func model(t *testing.T, g *gen.Graph, name string) *gen.Model {
	t.Helper()
	m, ok := g.Model(name)
	require.True(t, ok, "model %s", name)
	return m
}

// source renders a generated file.
func source(t *testing.T, f *jen.File) string {
	t.Helper()
	require.NotNil(t, f)
	return f.GoString()
}
