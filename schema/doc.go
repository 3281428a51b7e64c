// Package schema provides the builders for declaring models in Go code.
//
// A model declaration is the same raw annotation data that modelc reads from
// YAML or JSON declaration files:
//
//   - [field]: field builders for columns
//   - [edge]: relationship builders
//   - [mixin]: reusable field sets
//
// # Quick Start
//
//	var Order = schema.Model("Order").
//	    Table("orders").
//	    App("shop").
//	    Mixin(mixin.UUIDID{}, mixin.Time{}).
//	    Fields(
//	        field.Decimal("total", 10, 2).Check("total >= 0"),
//	        field.String("email").MaxLen(120).Email(),
//	        edge.ForeignKey("customer", "Customer").RelatedName("orders").OnDelete(edge.Cascade),
//	    ).
//	    Unique("email", "customer")
//
//	func init() {
//	    compiler.MustRegister(Order)
//	}
//
// # Field Types
//
//	field.Int32("n")              // INTEGER
//	field.Int64("n")              // BIGINT
//	field.Bool("active")          // BOOLEAN
//	field.Float64("ratio")        // DOUBLE PRECISION
//	field.String("name").MaxLen(100) // VARCHAR(100)
//	field.Text("bio")             // TEXT
//	field.Decimal("price", 10, 2) // NUMERIC(10,2)
//	field.Time("created_at")      // TIMESTAMPTZ
//	field.UUID("id")              // UUID
//	field.JSON("payload")         // JSONB
//	field.Array("tags", "string") // VARCHAR[] with ArrayBaseType
//
// # Relationships
//
//	edge.ForeignKey("author", "User")          // author_id join column
//	edge.OneToOne("profile", "Profile")        // unique join column
//	edge.OneToMany("comments", "Comment")      // reverse side of a foreign key
//	edge.ManyToMany("tags", "Tag").Through("post_tags")
package schema
