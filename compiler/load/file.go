package load

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extensions lists the declaration file extensions accepted by ReadDir.
var Extensions = []string{".yaml", ".yml", ".json"}

// ReadFile reads the model specs declared in the given file. A file holds
// either a single spec or a list of specs. YAML files may hold several
// documents.
func ReadFile(path string) ([]*Spec, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: reading %s: %w", path, err)
	}
	var specs []*Spec
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		specs, err = decodeYAML(buf)
	case ".json":
		specs, err = decodeJSON(buf)
	default:
		return nil, fmt.Errorf("load: unsupported declaration file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load: decoding %s: %w", path, err)
	}
	return specs, nil
}

// ReadDir reads the specs of every declaration file in dir, in lexical
// file name order. Sub-directories are not visited.
func ReadDir(dir string) ([]*Spec, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load: reading directory %s: %w", dir, err)
	}
	var specs []*Spec
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(Extensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		ss, err := ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		specs = append(specs, ss...)
	}
	return specs, nil
}

func decodeYAML(buf []byte) ([]*Spec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	var specs []*Spec
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				return specs, nil
			}
			return nil, err
		}
		if len(node.Content) == 0 {
			continue
		}
		doc := node.Content[0]
		if doc.Kind == yaml.SequenceNode {
			var list []*Spec
			if err := decodeStrict(doc, &list); err != nil {
				return nil, err
			}
			specs = append(specs, list...)
			continue
		}
		s := &Spec{}
		if err := decodeStrict(doc, s); err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
}

// decodeStrict decodes the node into v, rejecting unknown spec keys.
func decodeStrict(n *yaml.Node, v any) error {
	stringKeys(n)
	raw, err := yaml.Marshal(n)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(v)
}

// stringKeys retags every scalar mapping key as a string, so keys such as
// null, true or 1 keep their literal text instead of resolving to another
// type. An unquoted null key would otherwise decode as a nil key and drop
// out of the attribute map.
func stringKeys(n *yaml.Node) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; k.Kind == yaml.ScalarNode && k.Tag != "!!str" {
				k.Tag = "!!str"
				k.Style = yaml.DoubleQuotedStyle
			}
		}
	}
	for _, c := range n.Content {
		stringKeys(c)
	}
}

func decodeJSON(buf []byte) ([]*Spec, error) {
	buf = bytes.TrimSpace(buf)
	if len(buf) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.DisallowUnknownFields()
	if buf[0] == '[' {
		var list []*Spec
		if err := dec.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	}
	s := &Spec{}
	if err := dec.Decode(s); err != nil {
		return nil, err
	}
	return []*Spec{s}, nil
}
