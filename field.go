package semjson

import jsoniter "github.com/json-iterator/go"

// fieldJSON writes field trees. HTML characters are left unescaped.
var fieldJSON = jsoniter.Config{EscapeHTML: false}.Froze()

// ValueKind identifies which variant a Value holds.
type ValueKind int

// Value kinds of the field-data tree.
const (
	KindText ValueKind = iota
	KindMap
	KindList
)

// Value is a node of a field-data tree: a text leaf, a single field map, or
// a list of field maps.
type Value struct {
	kind   ValueKind
	text   string
	fields *FieldMap
	list   []*FieldMap
}

// TextValue returns a text leaf.
func TextValue(s string) Value {
	return Value{kind: KindText, text: s}
}

// MapValue returns a value holding a single field map.
func MapValue(m *FieldMap) Value {
	return Value{kind: KindMap, fields: m}
}

// ListValue returns a value holding an ordered list of field maps.
func ListValue(ms []*FieldMap) Value {
	return Value{kind: KindList, list: ms}
}

// Kind returns the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

// Str returns the text of a text leaf, or "" for other kinds.
func (v Value) Str() string { return v.text }

// Map returns the field map of a map value, or nil for other kinds.
func (v Value) Map() *FieldMap { return v.fields }

// List returns the field maps of a list value, or nil for other kinds.
func (v Value) List() []*FieldMap { return v.list }

// MarshalJSON encodes text as a JSON string, a map as an object and a list
// as an array. The returned bytes leave HTML characters unescaped; note that
// encoding/json re-escapes them when it calls MarshalJSON, while the
// jsoniter serializer keeps them as is.
func (v Value) MarshalJSON() ([]byte, error) {
	return marshal(v.writeTo)
}

func (v Value) writeTo(s *jsoniter.Stream) {
	switch v.kind {
	case KindMap:
		v.fields.writeTo(s)
	case KindList:
		s.WriteArrayStart()
		for i, m := range v.list {
			if i > 0 {
				s.WriteMore()
			}
			m.writeTo(s)
		}
		s.WriteArrayEnd()
	default:
		s.WriteString(v.text)
	}
}

// FieldMap is an insertion-ordered mapping from field names to values.
// Keys are encoded to JSON in insertion order.
type FieldMap struct {
	keys   []string
	values map[string]Value
}

// NewFieldMap returns an empty FieldMap.
func NewFieldMap() *FieldMap {
	return &FieldMap{values: make(map[string]Value)}
}

// Set assigns v to key. A new key is appended to the key order; an existing
// key keeps its position.
func (m *FieldMap) Set(key string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// SetText assigns a text leaf to key.
func (m *FieldMap) SetText(key, s string) {
	m.Set(key, TextValue(s))
}

// Get returns the value stored under key.
func (m *FieldMap) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *FieldMap) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Len returns the number of keys.
func (m *FieldMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// MarshalJSON encodes the map as a JSON object in key insertion order.
// A nil map encodes as an empty object. HTML characters are left unescaped
// as for Value.MarshalJSON.
func (m *FieldMap) MarshalJSON() ([]byte, error) {
	return marshal(m.writeTo)
}

func (m *FieldMap) writeTo(s *jsoniter.Stream) {
	if m == nil || len(m.keys) == 0 {
		s.WriteEmptyObject()
		return
	}
	s.WriteObjectStart()
	for i, k := range m.keys {
		if i > 0 {
			s.WriteMore()
		}
		s.WriteObjectField(k)
		m.values[k].writeTo(s)
	}
	s.WriteObjectEnd()
}

func marshal(write func(*jsoniter.Stream)) ([]byte, error) {
	s := fieldJSON.BorrowStream(nil)
	defer fieldJSON.ReturnStream(s)
	write(s)
	if s.Error != nil {
		return nil, s.Error
	}
	return append([]byte(nil), s.Buffer()...), nil
}
