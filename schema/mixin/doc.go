// Package mixin provides reusable field sets for model declarations.
//
// # Built-in Mixins
//
//	mixin.ID{}             // int64 database-assigned primary key
//	mixin.UUIDID{}         // UUID primary key generated on construction
//	mixin.Time{}           // created_at and updated_at timestamps
//	mixin.SoftDelete{}     // nullable deleted_at
//	mixin.TenantID{}       // indexed, non-editable tenant_id
//	mixin.TimeSoftDelete{} // Time and SoftDelete
//
// # Using Mixins
//
//	schema.Model("User").
//	    Table("users").
//	    Mixin(mixin.ID{}, mixin.Time{}).
//	    Fields(field.String("email").MaxLen(255).Unique())
//
// The resulting model has:
//   - id (int64, primary key, assigned by the database)
//   - created_at (time.Time, set on creation)
//   - updated_at (time.Time, refreshed on every save)
//   - email
package mixin
