package sql

import (
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/gen"
	"github.com/syssam/modelc/compiler/load"
)

func TestGenModelStruct(t *testing.T) {
	g := newGraph(t)
	src := source(t, genModel(newHelper(g), model(t, g, "shop.Order")))

	assert.Contains(t, src, "package shop")
	assert.Contains(t, src, "type Order struct {")
	assert.Contains(t, src, "type Orders []*Order")
	assert.Contains(t, src, `// Order is the model stored in the "orders" table.`)
	assert.Contains(t, src, `"github.com/google/uuid"`)
	assert.Contains(t, src, `"github.com/shopspring/decimal"`)
	assert.Contains(t, src, `return fmt.Sprintf("Order(id=%v, total=%v, customer_id=%v, referrer_id=%v, created_at=%v, status=%v)"`)
}

func TestGenConstructor(t *testing.T) {
	g := newGraph(t)
	h := newHelper(g)

	t.Run("relations", func(t *testing.T) {
		src := source(t, genModel(h, model(t, g, "shop.Order")))
		assert.Contains(t, src, "func NewOrder(total decimal.Decimal, customer any, referrer any, status string) (*Order, error) {")
		assert.Contains(t, src, "// id and created_at are populated automatically.")
		assert.Contains(t, src, "uuid.New()")
		assert.Contains(t, src, "time.Now()")
		assert.Contains(t, src, "customerID, err := modelc.KeyAs[int64](customer)")
		assert.Contains(t, src, "referrerID, err := modelc.OptionalKeyAs[int64](referrer)")
		assert.Contains(t, src, `return nil, modelc.NewFieldError("Order", "customer", err.Error())`)
		assert.Contains(t, src, "o.customerID = customerID")
		assert.Contains(t, src, "return o, nil")
	})

	t.Run("plain", func(t *testing.T) {
		src := source(t, genModel(h, model(t, g, "shop.Customer")))
		assert.Contains(t, src, "func NewCustomer(email string, nickname *string) *Customer {")
		assert.Contains(t, src, "return c\n")
		assert.NotContains(t, src, "populated automatically")
	})
}

func TestGenAccessors(t *testing.T) {
	g := newGraph(t)
	src := source(t, genModel(newHelper(g), model(t, g, "shop.Order")))

	for _, want := range []string{
		"func (o *Order) ID() uuid.UUID {",
		"func (o *Order) Total() decimal.Decimal {",
		"func (o *Order) CustomerID() int64 {",
		"func (o *Order) ReferrerID() *int64 {",
		"func (o *Order) CreatedAt() time.Time {",
		"func (o *Order) SetTotal(v decimal.Decimal) {",
		"func (o *Order) SetStatus(v string) {",
		"// CustomerID returns the key of the customer relation.",
	} {
		assert.Contains(t, src, want)
	}
	for _, auto := range []string{"SetID(", "SetCreatedAt(", "SetCustomerID(", "SetReferrerID("} {
		assert.NotContains(t, src, auto, "auto-managed columns have no setter")
	}
}

func TestGenPrimaryKey(t *testing.T) {
	g := newGraph(t)
	h := newHelper(g)

	t.Run("uuid", func(t *testing.T) {
		src := source(t, genModel(h, model(t, g, "shop.Order")))
		assert.Contains(t, src, "func (o *Order) PK() (uuid.UUID, bool) {")
		assert.Contains(t, src, "return o.id, o.id != uuid.Nil")
		assert.Contains(t, src, "func (o *Order) PrimaryKey() (any, bool) {")
		assert.Contains(t, src, "return o.PK()")
		assert.Contains(t, src, "func (o *Order) SetPrimaryKey(key uuid.UUID) {")
		assert.NotContains(t, src, "CompositePK")
	})

	t.Run("integer", func(t *testing.T) {
		src := source(t, genModel(h, model(t, g, "shop.Customer")))
		assert.Contains(t, src, "func (c *Customer) PK() (int64, bool) {")
		assert.Contains(t, src, "return c.id, c.id != 0")
	})

	t.Run("composite", func(t *testing.T) {
		src := source(t, genModel(h, model(t, g, "shop.OrderLine")))
		for _, want := range []string{
			"type OrderLineCompositePK struct {",
			"func (ol *OrderLine) PK() (OrderLineCompositePK, bool) {",
			"return key, key.Present()",
			"func (ol *OrderLine) SetPrimaryKey(key OrderLineCompositePK) {",
			"ol.orderID = key.OrderID",
			"return k.OrderID != 0 && k.LineNo != 0",
			"func (k OrderLineCompositePK) Tuple() []any {",
			"return []any{k.OrderID, k.LineNo}",
			"func OrderLineCompositePKFromTuple(t []any) (OrderLineCompositePK, error) {",
			"v0, ok := t[0].(int64)",
			"v1, ok := t[1].(int32)",
			"func (k OrderLineCompositePK) PKValues() map[string]any {",
			`var orderLineKeyFields = []string{"order_id", "line_no"}`,
			"return modelc.MustCompositeKey(orderLineKeyFields, k.Tuple()...)",
			"func (k OrderLineCompositePK) Hash() uint64 {",
			"func (k OrderLineCompositePK) Equal(o OrderLineCompositePK) bool {",
			"return k.OrderID == o.OrderID && k.LineNo == o.LineNo",
			"func (k OrderLineCompositePK) String() string {",
		} {
			assert.Contains(t, src, want)
		}
		assertNoValueCompare(t, src)
	})
}

func TestGenCompositeKeyEqual(t *testing.T) {
	c, err := gen.NewConfig(
		gen.WithRegistry(modelc.NewRegistry()),
		gen.WithLogger(slog.New(slog.DiscardHandler)),
		gen.WithPackage("example.com/app/pricing"),
	)
	require.NoError(t, err)
	g, err := gen.NewGraph(c, &load.Spec{
		Name:  "Price",
		Attrs: map[string]any{"table_name": "prices", "app_label": "pricing"},
		Fields: []*load.FieldSpec{
			{Name: "product_id", Type: "int64", Attrs: map[string]any{"primary_key": true}},
			{Name: "valid_from", Type: "time.Time", Attrs: map[string]any{"primary_key": true}},
			{Name: "amount", Type: "decimal", Attrs: map[string]any{"primary_key": true, "max_digits": 10, "decimal_places": 2}},
			{Name: "currency", Type: "string", Attrs: map[string]any{"max_length": 3}},
		},
	})
	require.NoError(t, err)
	src := source(t, genModel(newHelper(g), model(t, g, "pricing.Price")))

	assert.Contains(t, src, "return k.ProductID == o.ProductID && k.ValidFrom.Equal(o.ValidFrom) && k.Amount.Equal(o.Amount)")
	assert.Contains(t, src, "return k.ProductID != 0 && !k.ValidFrom.IsZero() && !k.Amount.IsZero()")
	assertNoValueCompare(t, src)
}

// assertNoValueCompare parses a generated file and fails if an Equal method
// compares a time.Time or decimal.Decimal key component, or a whole key,
// with == or !=.
func assertNoValueCompare(t *testing.T, src string) {
	t.Helper()
	file, err := parser.ParseFile(token.NewFileSet(), "model.go", src, parser.AllErrors)
	require.NoError(t, err)

	// struct name -> field name -> qualified type
	types := map[string]map[string]string{}
	ast.Inspect(file, func(n ast.Node) bool {
		ts, ok := n.(*ast.TypeSpec)
		if !ok {
			return true
		}
		st, ok := ts.Type.(*ast.StructType)
		if !ok {
			return true
		}
		fields := map[string]string{}
		for _, f := range st.Fields.List {
			sel, ok := f.Type.(*ast.SelectorExpr)
			if !ok {
				continue
			}
			for _, name := range f.Names {
				fields[name.Name] = sel.X.(*ast.Ident).Name + "." + sel.Sel.Name
			}
		}
		types[ts.Name.Name] = fields
		return true
	})

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Name.Name != "Equal" || fn.Recv == nil {
			continue
		}
		recv, ok := fn.Recv.List[0].Type.(*ast.Ident)
		require.True(t, ok)
		fields := types[recv.Name]
		ast.Inspect(fn.Body, func(n ast.Node) bool {
			be, ok := n.(*ast.BinaryExpr)
			if !ok || (be.Op != token.EQL && be.Op != token.NEQ) {
				return true
			}
			for _, operand := range []ast.Expr{be.X, be.Y} {
				switch e := operand.(type) {
				case *ast.Ident:
					assert.NotContains(t, []string{"k", "o"}, e.Name, "%s.Equal compares whole keys", recv.Name)
				case *ast.SelectorExpr:
					typ := fields[e.Sel.Name]
					assert.NotContains(t, []string{"time.Time", "decimal.Decimal"}, typ,
						"%s.Equal compares %s by value", recv.Name, e.Sel.Name)
				}
			}
			return true
		})
	}
}

func TestGenSelector(t *testing.T) {
	g := newGraph(t)
	src := source(t, genModel(newHelper(g), model(t, g, "shop.Order")))

	assert.Contains(t, src, "type OrderFields struct {")
	assert.Contains(t, src, "func NewOrderFields() OrderFields {")
	assert.Contains(t, src, `modelc.NewFieldRef("orders", "customer_id", "customer_id")`)
	assert.Contains(t, src, "func (s OrderFields) As(alias string) OrderFields {")
	assert.Contains(t, src, "s.CreatedAt = s.CreatedAt.As(alias)")
}

func TestGenMetadata(t *testing.T) {
	g := newGraph(t)
	src := source(t, genModel(newHelper(g), model(t, g, "shop.Order")))

	assert.Contains(t, src, "var orderMeta = &modelc.ModelMetadata{")
	assert.Regexp(t, `Table:\s+"orders"`, src)
	assert.Regexp(t, `Kind:\s+modelc.KindUUID`, src)
	assert.Regexp(t, `Default:\s+modelc.DefaultNow`, src)
	assert.Regexp(t, `Type:\s+modelc.ForeignKey`, src)
	assert.Contains(t, src, "func (*Order) Metadata() *modelc.ModelMetadata {")
	assert.Contains(t, src, "modelc.MustRegister(orderMeta)", "register is enabled by default")
}

func TestGenValidate(t *testing.T) {
	g := newGraph(t)
	src := source(t, genModel(newHelper(g), model(t, g, "shop.Customer")))
	assert.NotContains(t, src, "Validate() error")

	g = newGraph(t, gen.WithFeatures(gen.FeatureValidator))
	src = source(t, genModel(newHelper(g), model(t, g, "shop.Customer")))
	assert.Contains(t, src, "func (c *Customer) Validate() error {")
	assert.Contains(t, src, `modelc.ValidateValue(customerMeta, "email", c.email)`)
	assert.Contains(t, src, `modelc.ValidateValue(customerMeta, "nickname", c.nickname)`)
	assert.NotContains(t, src, `"id", c.id`)
	assert.Contains(t, src, "return modelc.NewAggregateError(errs...)")
}

func TestSentence(t *testing.T) {
	assert.Equal(t, "id is", sentence([]string{"id"}))
	assert.Equal(t, "id and created_at are", sentence([]string{"id", "created_at"}))
	assert.Equal(t, "a, b and c are", sentence([]string{"a", "b", "c"}))
}
