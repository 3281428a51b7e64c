package modelc

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// PrimaryKeyer is implemented by values that expose a primary key, such as
// records and generated model structs. Relationship parameters accept any
// PrimaryKeyer in place of a raw key.
type PrimaryKeyer interface {
	PrimaryKey() (any, bool)
}

// IntoPrimaryKey converts v into a primary key value. A PrimaryKeyer yields its
// key, which must be present; anything else is returned unchanged.
func IntoPrimaryKey(v any) (any, error) {
	pk, ok := v.(PrimaryKeyer)
	if !ok {
		return v, nil
	}
	key, present := pk.PrimaryKey()
	if !present {
		return nil, fmt.Errorf("modelc: related %T has no primary key", v)
	}
	return key, nil
}

// KeyAs converts v into a primary key of type K. It accepts a raw K or a
// PrimaryKeyer whose key is a K.
func KeyAs[K any](v any) (K, error) {
	var zero K
	key, err := IntoPrimaryKey(v)
	if err != nil {
		return zero, err
	}
	k, ok := key.(K)
	if !ok {
		return zero, fmt.Errorf("modelc: cannot use %T as key of type %T", key, zero)
	}
	return k, nil
}

// OptionalKeyAs is like KeyAs for nullable relations. A nil value yields a
// nil key.
func OptionalKeyAs[K any](v any) (*K, error) {
	if v == nil {
		return nil, nil
	}
	if p, ok := v.(*K); ok {
		return p, nil
	}
	k, err := KeyAs[K](v)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// CompositeKey is a primary key made of two or more fields. Keys are compared
// and hashed over all component values, in field order.
type CompositeKey struct {
	fields []string
	values []any
}

// NewCompositeKey returns a key for the given fields and values.
func NewCompositeKey(fields []string, values ...any) (CompositeKey, error) {
	if len(fields) < 2 {
		return CompositeKey{}, fmt.Errorf("modelc: composite key requires at least 2 fields, got %d", len(fields))
	}
	if len(fields) != len(values) {
		return CompositeKey{}, fmt.Errorf("modelc: composite key has %d fields but %d values", len(fields), len(values))
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			return CompositeKey{}, fmt.Errorf("modelc: duplicate composite key field %q", f)
		}
		seen[f] = struct{}{}
	}
	return CompositeKey{
		fields: append([]string(nil), fields...),
		values: append([]any(nil), values...),
	}, nil
}

// MustCompositeKey is like NewCompositeKey but panics on error.
func MustCompositeKey(fields []string, values ...any) CompositeKey {
	k, err := NewCompositeKey(fields, values...)
	if err != nil {
		panic(err)
	}
	return k
}

// CompositeKeyFromTuple is the inverse of CompositeKey.Tuple.
func CompositeKeyFromTuple(fields []string, tuple []any) (CompositeKey, error) {
	return NewCompositeKey(fields, tuple...)
}

// CompositeKeyFromValues builds a key from a field-name map. Every field must
// be present in the map.
func CompositeKeyFromValues(fields []string, values map[string]any) (CompositeKey, error) {
	tuple := make([]any, len(fields))
	for i, f := range fields {
		v, ok := values[f]
		if !ok {
			return CompositeKey{}, fmt.Errorf("modelc: missing composite key field %q", f)
		}
		tuple[i] = v
	}
	return NewCompositeKey(fields, tuple...)
}

// Fields returns the key field names in order.
func (k CompositeKey) Fields() []string { return append([]string(nil), k.fields...) }

// Tuple returns the key values in field order.
func (k CompositeKey) Tuple() []any { return append([]any(nil), k.values...) }

// Len returns the number of key components.
func (k CompositeKey) Len() int { return len(k.fields) }

// Get returns the value of the named component.
func (k CompositeKey) Get(field string) (any, bool) {
	for i, f := range k.fields {
		if f == field {
			return k.values[i], true
		}
	}
	return nil, false
}

// PKValues returns the key as a field-name map.
func (k CompositeKey) PKValues() map[string]any {
	m := make(map[string]any, len(k.fields))
	for i, f := range k.fields {
		m[f] = k.values[i]
	}
	return m
}

// Equal reports if both keys have the same fields and values.
func (k CompositeKey) Equal(o CompositeKey) bool {
	if len(k.fields) != len(o.fields) {
		return false
	}
	for i := range k.fields {
		if k.fields[i] != o.fields[i] || !sameValue(k.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

// Hash returns a 64-bit FNV-1a hash of the key. Equal keys have equal hashes.
func (k CompositeKey) Hash() uint64 {
	h := fnv.New64a()
	for i, f := range k.fields {
		h.Write([]byte(f))
		h.Write([]byte{0})
		fmt.Fprintf(h, "%T", k.values[i])
		h.Write([]byte{0})
		if b, err := msgpack.Marshal(canonical(k.values[i])); err == nil {
			h.Write(b)
		} else {
			fmt.Fprintf(h, "%v", k.values[i])
		}
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// String formats the key as "(a=1, b=2)".
func (k CompositeKey) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, f := range k.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", f, k.values[i])
	}
	b.WriteByte(')')
	return b.String()
}

// sameValue reports if two key components are equal. Values with an
// Equal(T) bool method, such as time.Time and decimal.Decimal, are compared
// with it; pointers are compared by the values they point to.
func sameValue(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	for va.Kind() == reflect.Pointer && vb.Kind() == reflect.Pointer {
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() == vb.IsNil()
		}
		va, vb = va.Elem(), vb.Elem()
	}
	if va.IsValid() && vb.IsValid() && va.Type() == vb.Type() {
		if m := va.MethodByName("Equal"); m.IsValid() {
			mt := m.Type()
			if mt.NumIn() == 1 && mt.In(0) == vb.Type() && mt.NumOut() == 1 && mt.Out(0).Kind() == reflect.Bool {
				return m.Call([]reflect.Value{vb})[0].Bool()
			}
		}
	}
	return reflect.DeepEqual(a, b)
}

// canonical returns the form of a key component that is hashed, so that
// components equal under sameValue hash alike.
func canonical(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	switch x := rv.Interface().(type) {
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		if _, ok := rv.Type().MethodByName("Equal"); ok {
			return x.String()
		}
	}
	return rv.Interface()
}

// hasValue reports if a primary key component counts as set. Optional
// components are set when non-nil, others once they differ from their zero
// value. Presence is read from the value alone: a required component
// explicitly set to its zero value is absent.
func hasValue(v any, optional bool) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		if optional {
			return true
		}
		rv = rv.Elem()
	}
	if optional {
		return true
	}
	return !rv.IsZero()
}
