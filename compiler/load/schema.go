package load

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/syssam/modelc/schema/field"
)

// Spec holds the raw annotation data of one model, as written in a
// declaration file or built with the schema package.
type Spec struct {
	Name   string         `json:"name" yaml:"name"`
	Attrs  map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Fields []*FieldSpec   `json:"fields" yaml:"fields"`
}

// Spec returns s. It lets *Spec be used wherever a spec provider is expected.
func (s *Spec) Spec() *Spec { return s }

// FieldSpec holds the raw annotation data of one field.
type FieldSpec struct {
	Name  string         `json:"name" yaml:"name"`
	Type  string         `json:"type,omitempty" yaml:"type,omitempty"`
	Attrs map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Rel   map[string]any `json:"rel,omitempty" yaml:"rel,omitempty"`
}

// NewFieldSpec creates a field spec from a field descriptor.
func NewFieldSpec(fd *field.Descriptor) *FieldSpec {
	fs := &FieldSpec{
		Name: fd.Name,
		Type: fd.Type,
	}
	if len(fd.Attrs) > 0 {
		fs.Attrs = maps.Clone(fd.Attrs)
	}
	if fd.Rel != nil {
		fs.Rel = maps.Clone(fd.Rel)
	}
	return fs
}

// MarshalSpec encodes the spec into JSON that UnmarshalSpec decodes back.
func MarshalSpec(s *Spec) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("load: nil spec")
	}
	return json.Marshal(s)
}

// UnmarshalSpec decodes the given buffer to a spec.
func UnmarshalSpec(buf []byte) (*Spec, error) {
	s := &Spec{}
	if err := json.Unmarshal(buf, s); err != nil {
		return nil, err
	}
	return s, nil
}
