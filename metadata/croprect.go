package metadata

import "encoding/binary"

// CropRegion is a buffer crop rectangle stored as four int32s.
type CropRegion struct {
	X, Y, W, H int32
}

// SetCropRegion stores r on acc at KeyCropRegion.
func SetCropRegion(acc Accessor, r CropRegion) error {
	var b [16]byte
	binary.LittleEndian.PutUint32(b[0:4], uint32(r.X))
	binary.LittleEndian.PutUint32(b[4:8], uint32(r.Y))
	binary.LittleEndian.PutUint32(b[8:12], uint32(r.W))
	binary.LittleEndian.PutUint32(b[12:16], uint32(r.H))
	return acc.SetMetadata(KeyCropRegion, b[:])
}

// GetCropRegion retrieves the CropRegion stored by SetCropRegion.
func GetCropRegion(acc Accessor) (CropRegion, error) {
	b, err := acc.GetMetadata(KeyCropRegion)
	if err != nil {
		return CropRegion{}, err
	}
	if len(b) < 16 {
		return CropRegion{}, errShortMetadata("GetCropRegion")
	}
	return CropRegion{
		X: int32(binary.LittleEndian.Uint32(b[0:4])),
		Y: int32(binary.LittleEndian.Uint32(b[4:8])),
		W: int32(binary.LittleEndian.Uint32(b[8:12])),
		H: int32(binary.LittleEndian.Uint32(b[12:16])),
	}, nil
}
