package metadata

import (
	"encoding/binary"
	"math"
)

// HDRStaticMetadata is the SMPTE ST.2086 mastering-display info plus
// the CTA-861.3 content light level fields.
type HDRStaticMetadata struct {
	DisplayPrimariesX [3]float32 // red, green, blue, CIE 1931 x
	DisplayPrimariesY [3]float32
	WhitePointX       float32
	WhitePointY       float32
	MaxLuminance      float32
	MinLuminance      float32
	MaxContentLightLevel     float32
	MaxFrameAverageLightLevel float32
}

const hdrStaticSize = 4 * (3 + 3 + 2 + 2 + 2) // 12 float32 fields

func (h HDRStaticMetadata) encode() []byte {
	b := make([]byte, hdrStaticSize)
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
	}
	for i, v := range h.DisplayPrimariesX {
		put(i*4, v)
	}
	for i, v := range h.DisplayPrimariesY {
		put(12+i*4, v)
	}
	put(24, h.WhitePointX)
	put(28, h.WhitePointY)
	put(32, h.MaxLuminance)
	put(36, h.MinLuminance)
	put(40, h.MaxContentLightLevel)
	put(44, h.MaxFrameAverageLightLevel)
	return b
}

func decodeHDRStatic(b []byte) (HDRStaticMetadata, error) {
	if len(b) < hdrStaticSize {
		return HDRStaticMetadata{}, errShortMetadata("GetHDRStaticMetadata")
	}
	get := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[off:])) }
	var h HDRStaticMetadata
	for i := range h.DisplayPrimariesX {
		h.DisplayPrimariesX[i] = get(i * 4)
	}
	for i := range h.DisplayPrimariesY {
		h.DisplayPrimariesY[i] = get(12 + i*4)
	}
	h.WhitePointX = get(24)
	h.WhitePointY = get(28)
	h.MaxLuminance = get(32)
	h.MinLuminance = get(36)
	h.MaxContentLightLevel = get(40)
	h.MaxFrameAverageLightLevel = get(44)
	return h, nil
}

// SetHDRStaticMetadata stores h on acc at KeyHDRStaticMetadata.
func SetHDRStaticMetadata(acc Accessor, h HDRStaticMetadata) error {
	return acc.SetMetadata(KeyHDRStaticMetadata, h.encode())
}

// GetHDRStaticMetadata retrieves the HDRStaticMetadata previously
// stored by SetHDRStaticMetadata.
func GetHDRStaticMetadata(acc Accessor) (HDRStaticMetadata, error) {
	b, err := acc.GetMetadata(KeyHDRStaticMetadata)
	if err != nil {
		return HDRStaticMetadata{}, err
	}
	return decodeHDRStatic(b)
}

// SetHDRDynamicMetadata stores an opaque HDR dynamic-metadata blob
// (e.g. HDR10+ or Dolby Vision RPU bytes) on acc. Unlike the static
// metadata, the dynamic payload's internal layout is defined by the
// transfer function in use, not by this package.
func SetHDRDynamicMetadata(acc Accessor, data []byte) error {
	return acc.SetMetadata(KeyHDRDynamicMetadata, data)
}

// GetHDRDynamicMetadata retrieves the blob stored by
// SetHDRDynamicMetadata.
func GetHDRDynamicMetadata(acc Accessor) ([]byte, error) {
	return acc.GetMetadata(KeyHDRDynamicMetadata)
}

// SetAdaptiveFOV stores an opaque adaptive field-of-view payload.
func SetAdaptiveFOV(acc Accessor, data []byte) error {
	return acc.SetMetadata(KeyAdaptiveFOV, data)
}

// GetAdaptiveFOV retrieves the payload stored by SetAdaptiveFOV.
func GetAdaptiveFOV(acc Accessor) ([]byte, error) {
	return acc.GetMetadata(KeyAdaptiveFOV)
}
