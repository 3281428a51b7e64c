package modelc

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotVersion is the format version written by Snapshot.MarshalBinary.
const SnapshotVersion = 1

// Snapshot is a serializable copy of a registry.
type Snapshot struct {
	Version       int                    `json:"version"`
	Models        []*ModelMetadata       `json:"models"`
	Relationships []RelationshipMetadata `json:"relationships,omitempty"`
}

// Model returns the snapshot entry for the qualified or bare model name.
func (s *Snapshot) Model(name string) (*ModelMetadata, bool) {
	for _, m := range s.Models {
		if m.QualifiedName() == name || m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// snapshotData has the fields of Snapshot without its marshaling methods,
// which msgpack would otherwise call again.
type snapshotData Snapshot

// MarshalBinary encodes the snapshot with msgpack.
func (s *Snapshot) MarshalBinary() ([]byte, error) {
	return encode((*snapshotData)(s))
}

// UnmarshalBinary decodes a snapshot written by MarshalBinary.
func (s *Snapshot) UnmarshalBinary(data []byte) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode((*snapshotData)(s)); err != nil {
		return fmt.Errorf("modelc: decode snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return fmt.Errorf("modelc: unsupported snapshot version %d", s.Version)
	}
	return nil
}

// DecodeSnapshot decodes a msgpack snapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	s := &Snapshot{}
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return s, nil
}

// Fingerprint returns a stable hex digest of the model metadata. Two models
// compiled from the same declaration have the same fingerprint.
func Fingerprint(m *ModelMetadata) (string, error) {
	b, err := encode(m)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("modelc: encode: %w", err)
	}
	return buf.Bytes(), nil
}
