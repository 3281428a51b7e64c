package modelc

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the compiler taxonomy and the runtime registry.
var (
	// ErrNotFound is returned when a model or field lookup fails.
	ErrNotFound = errors.New("modelc: not found")

	// ErrInvalidDeclaration indicates an unknown, missing or malformed attribute.
	ErrInvalidDeclaration = errors.New("modelc: invalid declaration")

	// ErrTypeMapping indicates a declared type that cannot be mapped to a column type.
	ErrTypeMapping = errors.New("modelc: unsupported type mapping")

	// ErrUnsafeExpression indicates a raw SQL fragment that matched the blocklist.
	ErrUnsafeExpression = errors.New("modelc: unsafe sql expression")

	// ErrConstraintConflict indicates mutually exclusive field settings.
	ErrConstraintConflict = errors.New("modelc: constraint conflict")

	// ErrInvalidRelationship indicates a relationship declaration error.
	ErrInvalidRelationship = errors.New("modelc: invalid relationship")

	// ErrInvalidField is returned by records on illegal field access.
	ErrInvalidField = errors.New("modelc: invalid field access")

	// ErrRegistryFrozen is returned when writing to a frozen registry.
	ErrRegistryFrozen = errors.New("modelc: registry is frozen")
)

// DeclarationError reports an unknown, missing or malformed attribute.
type DeclarationError struct {
	Model   string // Model name
	Field   string // Field name (if applicable)
	Attr    string // Offending attribute
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DeclarationError) Error() string {
	var b strings.Builder
	b.WriteString("modelc: declaration error")
	writeLocation(&b, e.Model, e.Field)
	if e.Attr != "" {
		b.WriteString(" attribute ")
		b.WriteString(e.Attr)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *DeclarationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrInvalidDeclaration.
func (e *DeclarationError) Is(target error) bool {
	return target == ErrInvalidDeclaration
}

// NewDeclarationError creates a new DeclarationError.
func NewDeclarationError(model, field, attr, message string) *DeclarationError {
	return &DeclarationError{
		Model:   model,
		Field:   field,
		Attr:    attr,
		Message: message,
	}
}

// IsDeclarationError returns true if the error is a DeclarationError.
func IsDeclarationError(err error) bool {
	var e *DeclarationError
	return errors.As(err, &e)
}

// TypeMappingError reports a declared type without a column mapping.
type TypeMappingError struct {
	Model   string
	Field   string
	Type    string // Declared type expression
	Message string
}

// Error implements the error interface.
func (e *TypeMappingError) Error() string {
	var b strings.Builder
	b.WriteString("modelc: type mapping error")
	writeLocation(&b, e.Model, e.Field)
	if e.Type != "" {
		fmt.Fprintf(&b, " (type %s)", e.Type)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches ErrTypeMapping.
func (e *TypeMappingError) Is(target error) bool {
	return target == ErrTypeMapping
}

// NewTypeMappingError creates a new TypeMappingError.
func NewTypeMappingError(model, field, typ, message string) *TypeMappingError {
	return &TypeMappingError{
		Model:   model,
		Field:   field,
		Type:    typ,
		Message: message,
	}
}

// IsTypeMappingError returns true if the error is a TypeMappingError.
func IsTypeMappingError(err error) bool {
	var e *TypeMappingError
	return errors.As(err, &e)
}

// UnsafeExpressionError reports a raw SQL fragment rejected by the safety filter.
// Violations lists every matched pattern, in check order.
type UnsafeExpressionError struct {
	Model      string
	Field      string
	Attr       string // check, generated, condition or expr
	Expr       string
	Violations []string
}

// Error implements the error interface.
func (e *UnsafeExpressionError) Error() string {
	var b strings.Builder
	b.WriteString("modelc: unsafe sql")
	if e.Attr != "" {
		fmt.Fprintf(&b, " in %s expression", e.Attr)
	}
	writeLocation(&b, e.Model, e.Field)
	if len(e.Violations) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Violations, "; "))
	}
	fmt.Fprintf(&b, ": %q", e.Expr)
	return b.String()
}

// Is reports whether the target matches ErrUnsafeExpression.
func (e *UnsafeExpressionError) Is(target error) bool {
	return target == ErrUnsafeExpression
}

// NewUnsafeExpressionError creates a new UnsafeExpressionError.
func NewUnsafeExpressionError(model, field, attr, expr string, violations ...string) *UnsafeExpressionError {
	return &UnsafeExpressionError{
		Model:      model,
		Field:      field,
		Attr:       attr,
		Expr:       expr,
		Violations: violations,
	}
}

// IsUnsafeExpressionError returns true if the error is an UnsafeExpressionError.
func IsUnsafeExpressionError(err error) bool {
	var e *UnsafeExpressionError
	return errors.As(err, &e)
}

// ConstraintConflictError reports mutually exclusive field settings.
type ConstraintConflictError struct {
	Model   string
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConstraintConflictError) Error() string {
	var b strings.Builder
	b.WriteString("modelc: constraint conflict")
	writeLocation(&b, e.Model, e.Field)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches ErrConstraintConflict.
func (e *ConstraintConflictError) Is(target error) bool {
	return target == ErrConstraintConflict
}

// NewConstraintConflictError creates a new ConstraintConflictError.
func NewConstraintConflictError(model, field, message string) *ConstraintConflictError {
	return &ConstraintConflictError{
		Model:   model,
		Field:   field,
		Message: message,
	}
}

// IsConstraintConflictError returns true if the error is a ConstraintConflictError.
func IsConstraintConflictError(err error) bool {
	var e *ConstraintConflictError
	return errors.As(err, &e)
}

// RelationshipError reports an invalid relationship declaration.
type RelationshipError struct {
	Model   string
	Field   string
	Target  string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RelationshipError) Error() string {
	var b strings.Builder
	b.WriteString("modelc: relationship error")
	writeLocation(&b, e.Model, e.Field)
	if e.Target != "" {
		fmt.Fprintf(&b, " (-> %s)", e.Target)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *RelationshipError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrInvalidRelationship.
func (e *RelationshipError) Is(target error) bool {
	return target == ErrInvalidRelationship
}

// NewRelationshipError creates a new RelationshipError.
func NewRelationshipError(model, field, target, message string) *RelationshipError {
	return &RelationshipError{
		Model:   model,
		Field:   field,
		Target:  target,
		Message: message,
	}
}

// IsRelationshipError returns true if the error is a RelationshipError.
func IsRelationshipError(err error) bool {
	var e *RelationshipError
	return errors.As(err, &e)
}

// NotFoundError represents a failed registry or record lookup.
type NotFoundError struct {
	label string
	key   string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.key != "" {
		return fmt.Sprintf("modelc: %s %q not found", e.label, e.key)
	}
	return fmt.Sprintf("modelc: %s not found", e.label)
}

// Is reports whether the target error matches ErrNotFound.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the kind of thing that was looked up.
func (e *NotFoundError) Label() string {
	return e.label
}

// Key returns the key that was searched for.
func (e *NotFoundError) Key() string {
	return e.key
}

// NewNotFoundError returns a new NotFoundError.
func NewNotFoundError(label, key string) *NotFoundError {
	return &NotFoundError{label: label, key: key}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// FieldError reports an illegal read or write on a record field.
type FieldError struct {
	Model   string
	Field   string
	Message string
}

// Error returns the error string.
func (e *FieldError) Error() string {
	return fmt.Sprintf("modelc: %s.%s: %s", e.Model, e.Field, e.Message)
}

// Is reports whether the target error matches ErrInvalidField.
func (e *FieldError) Is(err error) bool {
	return err == ErrInvalidField
}

// NewFieldError returns a new FieldError.
func NewFieldError(model, field, message string) *FieldError {
	return &FieldError{Model: model, Field: field, Message: message}
}

// IsFieldError returns true if the error is a FieldError.
func IsFieldError(err error) bool {
	var e *FieldError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "modelc: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("modelc: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors for errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}

func writeLocation(b *strings.Builder, model, field string) {
	switch {
	case model != "" && field != "":
		fmt.Fprintf(b, " on %s.%s", model, field)
	case model != "":
		b.WriteString(" on model ")
		b.WriteString(model)
	case field != "":
		b.WriteString(" on field ")
		b.WriteString(field)
	}
}
