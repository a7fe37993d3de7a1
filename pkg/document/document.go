// Package document defines the in-memory representation of loaded YAML
// documents. Trees are built from a small set of value types:
//
//	*Map    — mapping with preserved key order
//	[]any   — sequence
//	string, int64, uint64, float64, bool, nil — scalars
//
// Key order matters throughout the compiler: command definitions,
// match patterns, and environment exports are all emitted in document
// order, so mappings are never represented as Go maps.
package document

// Entry is a single key/value pair in a Map.
type Entry struct {
	Key   string
	Value any
}

// Map is a string-keyed mapping that preserves insertion order.
type Map struct {
	entries []Entry
	index   map[string]int
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

// MapOf builds a Map from alternating key/value arguments, in order.
// It panics on odd argument counts or non-string keys; it is intended
// for fixtures and internal construction, not for parsing input.
func MapOf(pairs ...any) *Map {
	if len(pairs)%2 != 0 {
		panic("document.MapOf: odd number of arguments")
	}
	m := NewMap()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic("document.MapOf: key is not a string")
		}
		m.Set(key, pairs[i+1])
	}
	return m
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Has reports whether the key is present.
func (m *Map) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.index[key]
	return ok
}

// Get returns the value for key and whether it was present.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Set adds or replaces the value for key. Replacing keeps the key's
// original position.
func (m *Map) Set(key string, value any) {
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

// Delete removes key, reporting whether it was present.
func (m *Map) Delete(key string) bool {
	i, ok := m.index[key]
	if !ok {
		return false
	}
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	delete(m.index, key)
	for j := i; j < len(m.entries); j++ {
		m.index[m.entries[j].Key] = j
	}
	return true
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entry slice in insertion order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	entries := make([]Entry, len(m.entries))
	copy(entries, m.entries)
	return entries
}

// GetString returns the value for key when it is a string.
func (m *Map) GetString(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetBool returns the value for key when it is a bool.
func (m *Map) GetBool(key string) (bool, bool) {
	v, ok := m.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetMap returns the value for key when it is a *Map.
func (m *Map) GetMap(key string) (*Map, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	child, ok := v.(*Map)
	return child, ok
}

// GetSlice returns the value for key when it is a sequence.
func (m *Map) GetSlice(key string) ([]any, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}

// Clone deep-copies a document value. Maps and slices are copied;
// scalars are returned as-is.
func Clone(value any) any {
	switch v := value.(type) {
	case *Map:
		out := NewMap()
		for _, e := range v.entries {
			out.Set(e.Key, Clone(e.Value))
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// Truthy reports the truthiness of a document value: false, nil, zero
// numbers, empty strings, and empty containers are falsy, everything
// else is truthy.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int64:
		return v != 0
	case uint64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case *Map:
		return v.Len() > 0
	default:
		return true
	}
}
