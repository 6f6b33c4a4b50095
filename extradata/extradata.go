// Package extradata implements BufferExtraData, an ordered
// string-keyed map of scalar values attached to a buffer for
// out-of-band data that does not belong in the buffer's handle or
// metadata map.
package extradata

import "github.com/neo3gfx/graphicsurface/surferr"

// Kind identifies which field of Value is populated.
type Kind int

const (
	Int32 Kind = iota
	Int64
	Double
	String
)

// Value is a tagged scalar: exactly one of I32/I64/F64/Str is
// meaningful, selected by Kind.
type Value struct {
	Kind Kind
	I32  int32
	I64  int64
	F64  float64
	Str  string
}

// ExtraData is an ordered key→Value map. Ordering is insertion
// order, and re-setting an existing key updates its value in place
// without moving it, matching the predictable iteration order a
// wire encoder needs.
type ExtraData struct {
	index map[string]int
	keys  []string
	vals  []Value
}

// New creates an empty ExtraData.
func New() *ExtraData {
	return &ExtraData{index: make(map[string]int)}
}

// Set stores v at key, inserting a new entry or overwriting an
// existing one.
func (e *ExtraData) Set(key string, v Value) {
	if i, ok := e.index[key]; ok {
		e.vals[i] = v
		return
	}
	e.index[key] = len(e.keys)
	e.keys = append(e.keys, key)
	e.vals = append(e.vals, v)
}

func (e *ExtraData) SetInt32(key string, v int32)   { e.Set(key, Value{Kind: Int32, I32: v}) }
func (e *ExtraData) SetInt64(key string, v int64)   { e.Set(key, Value{Kind: Int64, I64: v}) }
func (e *ExtraData) SetDouble(key string, v float64) { e.Set(key, Value{Kind: Double, F64: v}) }
func (e *ExtraData) SetString(key string, v string) { e.Set(key, Value{Kind: String, Str: v}) }

// Get returns the value at key.
func (e *ExtraData) Get(key string) (Value, error) {
	i, ok := e.index[key]
	if !ok {
		return Value{}, surferr.New("ExtraData.Get", surferr.NoEntry)
	}
	return e.vals[i], nil
}

// Len returns the number of entries.
func (e *ExtraData) Len() int { return len(e.keys) }

// Range calls f for every entry in insertion order. It stops early
// if f returns false.
func (e *ExtraData) Range(f func(key string, v Value) bool) {
	for i, k := range e.keys {
		if !f(k, e.vals[i]) {
			return
		}
	}
}

// Clone returns a deep copy of e.
func (e *ExtraData) Clone() *ExtraData {
	c := &ExtraData{
		index: make(map[string]int, len(e.index)),
		keys:  append([]string(nil), e.keys...),
		vals:  append([]Value(nil), e.vals...),
	}
	for k, v := range e.index {
		c.index[k] = v
	}
	return c
}
