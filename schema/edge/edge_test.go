package edge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/modelc/schema/edge"
	"github.com/syssam/modelc/schema/field"
)

func TestEdgeBuilders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func() *field.Descriptor
		validate func(t *testing.T, desc *field.Descriptor)
	}{
		{
			name: "foreign_key",
			build: func() *field.Descriptor {
				return edge.ForeignKey("author", "auth.User").
					RelatedName("posts").
					OnDelete(edge.Cascade).
					OnUpdate(edge.NoAction).
					Descriptor()
			},
			validate: func(t *testing.T, desc *field.Descriptor) {
				assert.Equal(t, "author", desc.Name)
				assert.Equal(t, "ForeignKey[auth.User]", desc.Type)
				assert.Equal(t, edge.KindForeignKey, desc.Rel["kind"])
				assert.Equal(t, "posts", desc.Rel["related_name"])
				assert.Equal(t, "CASCADE", desc.Rel["on_delete"])
				assert.Equal(t, "NO ACTION", desc.Rel["on_update"])
				assert.NotContains(t, desc.Rel, "to")
			},
		},
		{
			name: "one_to_one",
			build: func() *field.Descriptor {
				return edge.OneToOne("profile", "Profile").StorageKey("profile_ref").Optional().Descriptor()
			},
			validate: func(t *testing.T, desc *field.Descriptor) {
				assert.Equal(t, "OneToOne[Profile]", desc.Type)
				assert.Equal(t, "profile_ref", desc.Rel["db_column"])
				assert.Equal(t, true, desc.Rel["null"])
			},
		},
		{
			name: "one_to_many",
			build: func() *field.Descriptor {
				return edge.OneToMany("comments", "Comment").Field("post").Descriptor()
			},
			validate: func(t *testing.T, desc *field.Descriptor) {
				assert.Equal(t, "OneToMany[Comment]", desc.Type)
				assert.Equal(t, "post", desc.Rel["foreign_key"])
			},
		},
		{
			name: "many_to_many",
			build: func() *field.Descriptor {
				return edge.ManyToMany("tags", "Tag").
					Through("post_tags").
					SourceField("post_id").
					TargetField("tag_id").
					Index(false).
					Descriptor()
			},
			validate: func(t *testing.T, desc *field.Descriptor) {
				assert.Equal(t, "ManyToMany[Tag]", desc.Type)
				assert.Equal(t, "post_tags", desc.Rel["through"])
				assert.Equal(t, "post_id", desc.Rel["source_field"])
				assert.Equal(t, "tag_id", desc.Rel["target_field"])
				assert.Equal(t, false, desc.Rel["db_index"])
			},
		},
		{
			name: "polymorphic",
			build: func() *field.Descriptor {
				return edge.Polymorphic("owner", "User").Descriptor()
			},
			validate: func(t *testing.T, desc *field.Descriptor) {
				assert.Empty(t, desc.Type)
				assert.Equal(t, edge.KindPolymorphic, desc.Rel["kind"])
				assert.Equal(t, "User", desc.Rel["to"])
			},
		},
		{
			name: "generic_foreign_key",
			build: func() *field.Descriptor {
				return edge.GenericForeignKey("target").Descriptor()
			},
			validate: func(t *testing.T, desc *field.Descriptor) {
				assert.Equal(t, edge.KindGenericForeignKey, desc.Rel["kind"])
				assert.NotContains(t, desc.Rel, "to")
			},
		},
		{
			name: "generic_relation_retarget",
			build: func() *field.Descriptor {
				return edge.GenericRelation("comments", "Comment").To("blog.Comment").Descriptor()
			},
			validate: func(t *testing.T, desc *field.Descriptor) {
				assert.Equal(t, edge.KindGenericRelation, desc.Rel["kind"])
				assert.Equal(t, "blog.Comment", desc.Rel["to"])
			},
		},
		{
			name: "polymorphic_many_to_many",
			build: func() *field.Descriptor {
				return edge.PolymorphicManyToMany("followers", "").Descriptor()
			},
			validate: func(t *testing.T, desc *field.Descriptor) {
				assert.Equal(t, edge.KindPolymorphicManyToMany, desc.Rel["kind"])
				assert.NotContains(t, desc.Rel, "to")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.validate(t, tt.build())
		})
	}
}

func TestEdgeDescriptorIsolation(t *testing.T) {
	b := edge.ForeignKey("author", "User")
	desc := b.Descriptor()
	desc.Rel["related_name"] = "x"
	assert.NotContains(t, b.Descriptor().Rel, "related_name")
}
