package mixin

import (
	"github.com/syssam/modelc/schema"
	"github.com/syssam/modelc/schema/field"
)

// Schema is the default implementation for the schema.Mixin interface.
// It should be embedded in all custom mixin definitions.
//
// Example:
//
//	type Audit struct {
//	    mixin.Schema
//	}
//
//	func (Audit) Fields() []schema.Field {
//	    return []schema.Field{
//	        field.String("created_by").MaxLen(64),
//	    }
//	}
type Schema struct{}

// Fields returns the fields of the mixin.
func (Schema) Fields() []schema.Field { return nil }

var _ schema.Mixin = (*Schema)(nil)

// =============================================================================
// Built-in Mixins
// =============================================================================

// ID adds a database-assigned int64 primary key named id.
type ID struct {
	Schema
}

// Fields returns the id field.
func (ID) Fields() []schema.Field {
	return []schema.Field{
		field.Int64("id").PrimaryKey(),
	}
}

// UUIDID adds a UUID primary key named id, generated on construction.
type UUIDID struct {
	Schema
}

// Fields returns the id field.
func (UUIDID) Fields() []schema.Field {
	return []schema.Field{
		field.UUID("id").PrimaryKey(),
	}
}

// Time adds created_at and updated_at timestamp fields.
// created_at is set on creation; updated_at is refreshed on every save.
type Time struct {
	Schema
}

// Fields returns the time tracking fields.
func (Time) Fields() []schema.Field {
	return append(CreateTime{}.Fields(), UpdateTime{}.Fields()...)
}

// CreateTime adds only the created_at timestamp field.
type CreateTime struct {
	Schema
}

// Fields returns the created_at field.
func (CreateTime) Fields() []schema.Field {
	return []schema.Field{
		field.Time("created_at").AutoNowAdd(),
	}
}

// UpdateTime adds only the updated_at timestamp field.
type UpdateTime struct {
	Schema
}

// Fields returns the updated_at field.
func (UpdateTime) Fields() []schema.Field {
	return []schema.Field{
		field.Time("updated_at").AutoNow(),
	}
}

// SoftDelete adds a nullable deleted_at field.
type SoftDelete struct {
	Schema
}

// Fields returns the soft delete field.
func (SoftDelete) Fields() []schema.Field {
	return []schema.Field{
		field.Time("deleted_at").Optional(),
	}
}

// TenantID adds an indexed tenant_id field that is set once on creation.
type TenantID struct {
	Schema
}

// Fields returns the tenant field.
func (TenantID) Fields() []schema.Field {
	return []schema.Field{
		field.String("tenant_id").MaxLen(64).MinLen(1).Index().Editable(false),
	}
}

// TimeSoftDelete combines Time and SoftDelete.
type TimeSoftDelete struct {
	Schema
}

// Fields returns all timestamp and soft delete fields.
func (TimeSoftDelete) Fields() []schema.Field {
	return append(Time{}.Fields(), SoftDelete{}.Fields()...)
}
