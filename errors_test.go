package modelc_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelc"
)

func TestDeclarationError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := modelc.NewDeclarationError("Order", "total", "max_digits", "unsupported field attribute")
		assert.Equal(t, "modelc: declaration error on Order.total attribute max_digits: unsupported field attribute", err.Error())
	})

	t.Run("ModelOnly", func(t *testing.T) {
		err := modelc.NewDeclarationError("Order", "", "table_name", "missing required attribute")
		assert.Equal(t, "modelc: declaration error on model Order attribute table_name: missing required attribute", err.Error())
	})

	t.Run("Cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := &modelc.DeclarationError{Model: "Order", Attr: "type", Message: "bad type", Cause: cause}
		assert.True(t, errors.Is(err, cause))
		assert.True(t, errors.Is(err, modelc.ErrInvalidDeclaration))
		assert.Contains(t, err.Error(), ": boom")
	})

	t.Run("IsDeclarationError", func(t *testing.T) {
		err := fmt.Errorf("compile: %w", modelc.NewDeclarationError("Order", "", "x", "y"))
		assert.True(t, modelc.IsDeclarationError(err))
		assert.False(t, modelc.IsDeclarationError(errors.New("other")))
	})
}

func TestTypeMappingError(t *testing.T) {
	err := modelc.NewTypeMappingError("Post", "tags", "[]Tag", "cannot infer array element type; set array_base_type")
	assert.Equal(t, "modelc: type mapping error on Post.tags (type []Tag): cannot infer array element type; set array_base_type", err.Error())
	assert.True(t, errors.Is(err, modelc.ErrTypeMapping))
	assert.True(t, modelc.IsTypeMappingError(fmt.Errorf("wrap: %w", err)))
	assert.False(t, modelc.IsTypeMappingError(modelc.ErrTypeMapping))
}

func TestUnsafeExpressionError(t *testing.T) {
	err := modelc.NewUnsafeExpressionError("Product", "price", "check", "price > 0; DROP TABLE orders",
		"semicolons are not allowed", "keyword DROP is not allowed")
	msg := err.Error()
	assert.Contains(t, msg, "in check expression on Product.price")
	assert.Contains(t, msg, "semicolons are not allowed; keyword DROP is not allowed")
	assert.Contains(t, msg, `"price > 0; DROP TABLE orders"`)
	assert.True(t, errors.Is(err, modelc.ErrUnsafeExpression))
	assert.True(t, modelc.IsUnsafeExpressionError(err))

	var target *modelc.UnsafeExpressionError
	require.True(t, errors.As(fmt.Errorf("wrap: %w", err), &target))
	assert.Len(t, target.Violations, 2)
}

func TestConstraintConflictError(t *testing.T) {
	err := modelc.NewConstraintConflictError("Event", "created_at", "auto_now and auto_now_add are mutually exclusive")
	assert.Equal(t, "modelc: constraint conflict on Event.created_at: auto_now and auto_now_add are mutually exclusive", err.Error())
	assert.True(t, errors.Is(err, modelc.ErrConstraintConflict))
	assert.True(t, modelc.IsConstraintConflictError(err))
	assert.False(t, modelc.IsRelationshipError(err))
}

func TestRelationshipError(t *testing.T) {
	err := modelc.NewRelationshipError("Profile", "user", "auth.User", "OneToOne field must use relationship kind one_to_one")
	assert.Equal(t, "modelc: relationship error on Profile.user (-> auth.User): OneToOne field must use relationship kind one_to_one", err.Error())
	assert.True(t, errors.Is(err, modelc.ErrInvalidRelationship))
	assert.True(t, modelc.IsRelationshipError(err))

	cause := modelc.NewNotFoundError("model", "auth.User")
	err.Cause = cause
	assert.True(t, modelc.IsNotFound(err))
}

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		assert.Equal(t, `modelc: model "shop.Order" not found`, modelc.NewNotFoundError("model", "shop.Order").Error())
		assert.Equal(t, "modelc: model not found", modelc.NewNotFoundError("model", "").Error())
	})

	t.Run("Accessors", func(t *testing.T) {
		err := modelc.NewNotFoundError("field", "Order.total")
		assert.Equal(t, "field", err.Label())
		assert.Equal(t, "Order.total", err.Key())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := modelc.NewNotFoundError("model", "Order")
		assert.True(t, modelc.IsNotFound(err))
		assert.True(t, modelc.IsNotFound(fmt.Errorf("wrapper: %w", err)))
		assert.True(t, modelc.IsNotFound(modelc.ErrNotFound))
		assert.False(t, modelc.IsNotFound(errors.New("other error")))
		assert.False(t, modelc.IsNotFound(nil))
	})
}

func TestFieldError(t *testing.T) {
	err := modelc.NewFieldError("Order", "id", "field is auto-managed and has no setter")
	assert.Equal(t, "modelc: Order.id: field is auto-managed and has no setter", err.Error())
	assert.True(t, errors.Is(err, modelc.ErrInvalidField))
	assert.True(t, modelc.IsFieldError(err))
}

func TestAggregateError(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, modelc.NewAggregateError())
		assert.NoError(t, modelc.NewAggregateError(nil, nil))
	})

	t.Run("Single", func(t *testing.T) {
		e := errors.New("only")
		assert.Same(t, e, modelc.NewAggregateError(nil, e))
	})

	t.Run("Multiple", func(t *testing.T) {
		e1 := modelc.NewDeclarationError("A", "", "x", "bad")
		e2 := modelc.NewRelationshipError("B", "c", "", "bad")
		err := modelc.NewAggregateError(e1, e2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "modelc: multiple errors:")
		assert.Contains(t, err.Error(), "[1]")
		assert.Contains(t, err.Error(), "[2]")
		assert.True(t, modelc.IsDeclarationError(err))
		assert.True(t, modelc.IsRelationshipError(err))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, "modelc: no errors", (&modelc.AggregateError{}).Error())
	})
}
