package metadata

import "encoding/binary"

// ColorSpaceInfo describes a buffer's color space as four small
// enumerations, packed into a single 32-bit value by
// ConvertColorSpaceInfoToType.
type ColorSpaceInfo struct {
	Primaries uint8
	Transfer  uint8
	Matrix    uint8
	Range     uint8
}

// ConvertColorSpaceInfoToType packs info into the 32-bit value the
// wire format and the legacy opcode table use.
func ConvertColorSpaceInfoToType(info ColorSpaceInfo) uint32 {
	return uint32(info.Primaries) | uint32(info.Transfer)<<8 |
		uint32(info.Matrix)<<16 | uint32(info.Range)<<24
}

// ConvertColorSpaceTypeToInfo is the inverse of
// ConvertColorSpaceInfoToType; the two compose to the identity.
func ConvertColorSpaceTypeToInfo(t uint32) ColorSpaceInfo {
	return ColorSpaceInfo{
		Primaries: uint8(t),
		Transfer:  uint8(t >> 8),
		Matrix:    uint8(t >> 16),
		Range:     uint8(t >> 24),
	}
}

// SetColorSpaceInfo stores info on acc at KeyColorSpaceInfo.
func SetColorSpaceInfo(acc Accessor, info ColorSpaceInfo) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], ConvertColorSpaceInfoToType(info))
	return acc.SetMetadata(KeyColorSpaceInfo, b[:])
}

// GetColorSpaceInfo retrieves the ColorSpaceInfo previously stored by
// SetColorSpaceInfo.
func GetColorSpaceInfo(acc Accessor) (ColorSpaceInfo, error) {
	b, err := acc.GetMetadata(KeyColorSpaceInfo)
	if err != nil {
		return ColorSpaceInfo{}, err
	}
	if len(b) < 4 {
		return ColorSpaceInfo{}, errShortMetadata("GetColorSpaceInfo")
	}
	return ConvertColorSpaceTypeToInfo(binary.LittleEndian.Uint32(b)), nil
}
