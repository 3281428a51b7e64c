// Package edge provides the relationship builders of model declarations.
//
// Targets are model names, optionally qualified with an application label
// ("auth.User"). Unqualified targets resolve within the declaring model's
// application.
//
// # Foreign Keys
//
// A foreign key adds a join column named "{name}_id" holding the primary key
// of the target:
//
//	edge.ForeignKey("author", "auth.User").
//	    RelatedName("posts").
//	    OnDelete(edge.Cascade)
//
// With a related name, the relationship graph records the reverse accessor
// on the target as well.
//
// # One-to-One
//
//	edge.OneToOne("profile", "Profile").StorageKey("profile_ref")
//
// # Many-to-Many
//
//	edge.ManyToMany("tags", "Tag").
//	    Through("post_tags").
//	    SourceField("post_id").
//	    TargetField("tag_id")
//
// # Generic Relationships
//
//	edge.GenericForeignKey("target")
//	edge.Polymorphic("owner", "")
package edge
