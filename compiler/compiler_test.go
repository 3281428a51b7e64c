package compiler

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/gen"
	sqlschema "github.com/syssam/modelc/dialect/sql/schema"
	"github.com/syssam/modelc/schema"
	"github.com/syssam/modelc/schema/edge"
	"github.com/syssam/modelc/schema/field"
)

const shopYAML = `
- name: Customer
  attrs: {table_name: customers, app_label: shop}
  fields:
    - {name: id, type: int64, attrs: {primary_key: true}}
    - {name: email, type: string, attrs: {max_length: 120, email: true}}
- name: Order
  attrs: {table_name: orders, app_label: shop}
  fields:
    - {name: id, type: uuid.UUID, attrs: {primary_key: true}}
    - {name: total, type: decimal, attrs: {max_digits: 10, decimal_places: 2}}
    - {name: customer, type: "ForeignKey[Customer]", rel: {related_name: orders}}
`

func options(r *modelc.Registry) []gen.Option {
	return []gen.Option{gen.WithRegistry(r), gen.WithLogger(slog.New(slog.DiscardHandler))}
}

func order() *schema.Builder {
	return schema.Model("Order").Table("orders").App("shop").Fields(
		field.UUID("id").PrimaryKey(),
		field.Decimal("total", 10, 2),
	)
}

func TestCompile(t *testing.T) {
	r := modelc.NewRegistry()
	m, err := Compile(order(), options(r)...)
	require.NoError(t, err)
	assert.Equal(t, "shop.Order", m.QualifiedName())
	assert.Empty(t, r.Models(), "compiling does not register")

	rec, err := m.New(map[string]any{"total": "12.50"})
	require.NoError(t, err)
	id, ok := rec.PrimaryKey()
	assert.True(t, ok, "the uuid key is populated by the constructor")
	assert.NotNil(t, id)

	_, err = Compile(order(), gen.WithWorkers(-1))
	require.Error(t, err)
	assert.True(t, gen.IsConfigError(err))
}

func TestRegister(t *testing.T) {
	r := modelc.NewRegistry()
	customer := schema.Model("Customer").Table("customers").App("shop").Fields(
		field.Int64("id").PrimaryKey(),
	)
	_, err := Register(customer, options(r)...)
	require.NoError(t, err)

	review := schema.Model("Review").Table("reviews").App("shop").Fields(
		field.Int64("id").PrimaryKey(),
		edge.ForeignKey("customer", "Customer").RelatedName("reviews"),
	)
	m, err := Register(review, options(r)...)
	require.NoError(t, err)
	jc, ok := m.Field("customer_id")
	require.True(t, ok)
	assert.Equal(t, "int64", jc.GoType())

	meta, err := r.Model("shop.Review")
	require.NoError(t, err)
	assert.Equal(t, "reviews", meta.Table)
	assert.Len(t, r.RelationshipsFrom("shop.Customer"), 1)

	_, err = Register(review, options(r)...)
	require.NoError(t, err, "registering an unchanged model is a no-op")
}

func TestMustRegister(t *testing.T) {
	bad := schema.Model("Broken").Fields(field.String("title").PrimaryKey())
	assert.Panics(t, func() { MustRegister(bad) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shop.yaml"), []byte(shopYAML), 0o644))
	c, err := gen.NewConfig(options(modelc.NewRegistry())...)
	require.NoError(t, err)

	g, err := Load(dir, c)
	require.NoError(t, err)
	require.Len(t, g.Models, 2)
	order, ok := g.Model("shop.Order")
	require.True(t, ok)
	jc, ok := order.Field("customer_id")
	require.True(t, ok)
	assert.Equal(t, "int64", jc.GoType())

	_, err = Load(filepath.Join(dir, "shop.yaml"), c)
	require.NoError(t, err)

	_, err = Load(t.TempDir(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model declarations found")

	_, err = Load(filepath.Join(dir, "missing"), c)
	require.Error(t, err)
}

func TestGenerate(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "shop.yaml"), []byte(shopYAML), 0o644))
	out := filepath.Join(t.TempDir(), "shop")

	c, err := gen.NewConfig(append(options(modelc.NewRegistry()),
		gen.WithTarget(out),
		gen.WithPackage("example.com/app/shop"),
	)...)
	require.NoError(t, err)
	require.NoError(t, Generate(context.Background(), src, c))
	for _, name := range []string{"customer.go", "order.go", "modelc.go"} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	err = Generate(context.Background(), src, &gen.Config{})
	require.Error(t, err)
	assert.True(t, gen.IsConfigError(err))
}

func TestShopExample(t *testing.T) {
	c, err := gen.NewConfig(append(options(modelc.NewRegistry()), gen.WithDialect("postgres"))...)
	require.NoError(t, err)
	g, err := Load(filepath.Join("..", "examples", "shop", "models"), c)
	require.NoError(t, err)
	require.Len(t, g.Models, 7)

	item, ok := g.Model("shop.OrderItem")
	require.True(t, ok)
	order, ok := item.Meta.Field("order_id")
	require.True(t, ok)
	assert.Equal(t, modelc.KindUUID, order.Type.Kind)
	product, ok := item.Meta.Field("product_id")
	require.True(t, ok)
	assert.Equal(t, "catalog.Product", product.References)

	category, ok := g.Model("catalog.Category")
	require.True(t, ok)
	parent, ok := category.Meta.Field("parent_id")
	require.True(t, ok)
	assert.True(t, parent.Nullable)

	require.NoError(t, g.Register())
	assert.NotEmpty(t, c.Registry.RelationshipsTo("catalog.Product"))

	tables, err := sqlschema.Tables(g.Metadata())
	require.NoError(t, err)
	result := sqlschema.ValidateSchema(tables)
	require.False(t, result.HasErrors(), result.String())
	stmts, err := sqlschema.PlanDDL(context.Background(), "postgres", tables)
	require.NoError(t, err)
	assert.NotEmpty(t, stmts)

	t.Run("generated package", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "shopmodels")
		c, err := gen.NewConfig(append(options(modelc.NewRegistry()),
			gen.WithDialect("postgres"),
			gen.WithTarget(out),
			gen.WithPackage("example.com/shop/shopmodels"),
			gen.WithFeatures(gen.FeatureSnapshot),
		)...)
		require.NoError(t, err)
		require.NoError(t, Generate(context.Background(), filepath.Join("..", "examples", "shop", "models"), c))

		fset := token.NewFileSet()
		files, err := filepath.Glob(filepath.Join(out, "*.go"))
		require.NoError(t, err)
		require.Len(t, files, 9, "one file per model, modelc.go and snapshot.go")
		imports := map[string]bool{}
		decls := map[string]bool{}
		for _, path := range files {
			f, err := parser.ParseFile(fset, path, nil, parser.AllErrors)
			require.NoError(t, err)
			assert.Equal(t, "shopmodels", f.Name.Name, path)
			for _, imp := range f.Imports {
				imports[strings.Trim(imp.Path.Value, `"`)] = true
			}
			for _, d := range f.Decls {
				if fn, ok := d.(*ast.FuncDecl); ok && fn.Recv == nil {
					decls[fn.Name.Name] = true
				}
			}
		}
		for path := range imports {
			if strings.Contains(path, ".") {
				assert.Contains(t, []string{
					"github.com/syssam/modelc",
					"github.com/google/uuid",
					"github.com/shopspring/decimal",
				}, path)
			}
		}
		for _, name := range []string{"NewCategory", "NewProduct", "NewOrderItem", "Register", "Metadata"} {
			assert.True(t, decls[name], "missing func %s", name)
		}
	})
}
