// Package metadata implements the buffer metadata map (uint32 key to
// byte-vector value) and the typed helpers built on top of it: color
// space info, HDR static/dynamic metadata, crop rectangle, adaptive
// FOV, TV PQ metadata, and the CPU/HW access-type tag a buffer gets
// when its usage asks for both.
package metadata

import (
	"encoding/binary"

	"github.com/neo3gfx/graphicsurface/surferr"
)

// Reserved metadata-key range: SetMetadata/the typed helpers below
// only accept keys in this range.
const (
	KeyMin = 1000
	KeyMax = 1999
)

// Well-known keys within the reserved range.
const (
	KeyColorSpaceInfo uint32 = 1000 + iota
	KeyHDRStaticMetadata
	KeyHDRDynamicMetadata
	KeyCropRegion
	KeyAdaptiveFOV
	KeyTVPQMetadata
	KeyAccessType
)

// Accessor is implemented by anything that owns a metadata map — in
// practice *Map. The typed helpers in this package are built entirely
// on top of this interface. buffer.SurfaceBuffer does not satisfy it:
// its SetMetadata takes an extra enableCache argument.
type Accessor interface {
	SetMetadata(key uint32, data []byte) error
	GetMetadata(key uint32) ([]byte, error)
}

// Map is a plain uint32→[]byte metadata store. buffer.SurfaceBuffer
// holds one as its metadata store; it is also usable standalone
// (e.g. in tests) since it implements Accessor itself.
type Map struct {
	m map[uint32][]byte
}

// NewMap creates an empty Map.
func NewMap() *Map { return &Map{m: make(map[uint32][]byte)} }

func errShortMetadata(op string) error {
	return surferr.New(op, surferr.InvalidArguments)
}

func validKey(key uint32) error {
	if key < KeyMin || key > KeyMax {
		return surferr.New("SetMetadata", surferr.InvalidArguments)
	}
	return nil
}

func (m *Map) SetMetadata(key uint32, data []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	cp := append([]byte(nil), data...)
	m.m[key] = cp
	return nil
}

func (m *Map) GetMetadata(key uint32) ([]byte, error) {
	v, ok := m.m[key]
	if !ok {
		return nil, surferr.New("GetMetadata", surferr.NoEntry)
	}
	return v, nil
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	c := NewMap()
	for k, v := range m.m {
		c.m[k] = append([]byte(nil), v...)
	}
	return c
}

// Keys returns every key currently set, in unspecified order.
func (m *Map) Keys() []uint32 {
	ks := make([]uint32, 0, len(m.m))
	for k := range m.m {
		ks = append(ks, k)
	}
	return ks
}

// ConvertMetadataToVec flattens m into the SET_METADATA_SET wire
// format: a sequence of (key uint32, length uint32, data) triples,
// all little-endian.
func ConvertMetadataToVec(m *Map) []byte {
	var buf []byte
	var hdr [8]byte
	for _, k := range m.Keys() {
		v := m.m[k]
		binary.LittleEndian.PutUint32(hdr[0:4], k)
		binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(v)))
		buf = append(buf, hdr[:]...)
		buf = append(buf, v...)
	}
	return buf
}

// ConvertVecToMetadata parses the wire format produced by
// ConvertMetadataToVec back into a Map. It is the exact inverse of
// ConvertMetadataToVec for any Map built from valid keys.
func ConvertVecToMetadata(vec []byte) (*Map, error) {
	m := NewMap()
	for len(vec) > 0 {
		if len(vec) < 8 {
			return nil, surferr.New("ConvertVecToMetadata", surferr.InvalidArguments)
		}
		key := binary.LittleEndian.Uint32(vec[0:4])
		n := binary.LittleEndian.Uint32(vec[4:8])
		vec = vec[8:]
		if uint64(n) > uint64(len(vec)) {
			return nil, surferr.New("ConvertVecToMetadata", surferr.InvalidArguments)
		}
		data := vec[:n]
		vec = vec[n:]
		if err := m.SetMetadata(key, data); err != nil {
			return nil, err
		}
	}
	return m, nil
}
