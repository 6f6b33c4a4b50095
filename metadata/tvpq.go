package metadata

import (
	"encoding/binary"

	"github.com/neo3gfx/graphicsurface/surferr"
)

// TVPQMetadata is the packed TV PQ (perceptual quantizer) struct
// describing how a TV-class display should present a buffer: the
// current scene, frame sequencing, the on-screen video window, the
// scaling mode, the pixel format and the HDR/colorimetry in use.
type TVPQMetadata struct {
	SceneTag       uint32
	FrameCount     uint32
	DroppedFrames  uint32
	VideoWindowX   int32
	VideoWindowY   int32
	VideoWindowW   int32
	VideoWindowH   int32
	ScaleMode      uint8
	PixelFormat    uint32
	ColorSpaceType uint32 // packed ColorSpaceInfo, see ConvertColorSpaceInfoToType
	HDRType        uint8
}

func (t TVPQMetadata) encode() []byte {
	b := make([]byte, 34)
	binary.LittleEndian.PutUint32(b[0:4], t.SceneTag)
	binary.LittleEndian.PutUint32(b[4:8], t.FrameCount)
	binary.LittleEndian.PutUint32(b[8:12], t.DroppedFrames)
	binary.LittleEndian.PutUint32(b[12:16], uint32(t.VideoWindowX))
	binary.LittleEndian.PutUint32(b[16:20], uint32(t.VideoWindowY))
	binary.LittleEndian.PutUint32(b[20:24], uint32(t.VideoWindowW))
	binary.LittleEndian.PutUint32(b[24:28], uint32(t.VideoWindowH))
	binary.LittleEndian.PutUint32(b[28:32], t.PixelFormat)
	b[32] = t.ScaleMode
	b[33] = t.HDRType
	// ColorSpaceType intentionally omitted from the fixed header and
	// appended separately so existing encodings stay backward
	// compatible if it is added to after the fact; see decode below.
	var cs [4]byte
	binary.LittleEndian.PutUint32(cs[:], t.ColorSpaceType)
	return append(b, cs[:]...)
}

func decodeTVPQ(b []byte) (TVPQMetadata, error) {
	if len(b) < 34 {
		return TVPQMetadata{}, errShortMetadata("GetTVPQMetadata")
	}
	var t TVPQMetadata
	t.SceneTag = binary.LittleEndian.Uint32(b[0:4])
	t.FrameCount = binary.LittleEndian.Uint32(b[4:8])
	t.DroppedFrames = binary.LittleEndian.Uint32(b[8:12])
	t.VideoWindowX = int32(binary.LittleEndian.Uint32(b[12:16]))
	t.VideoWindowY = int32(binary.LittleEndian.Uint32(b[16:20]))
	t.VideoWindowW = int32(binary.LittleEndian.Uint32(b[20:24]))
	t.VideoWindowH = int32(binary.LittleEndian.Uint32(b[24:28]))
	t.PixelFormat = binary.LittleEndian.Uint32(b[28:32])
	t.ScaleMode = b[32]
	t.HDRType = b[33]
	if len(b) >= 38 {
		t.ColorSpaceType = binary.LittleEndian.Uint32(b[34:38])
	}
	return t, nil
}

// GetTVPQMetadata retrieves the TVPQMetadata currently stored on acc,
// or the zero value if none has been set yet.
func GetTVPQMetadata(acc Accessor) (TVPQMetadata, error) {
	b, err := acc.GetMetadata(KeyTVPQMetadata)
	if err != nil {
		if surferr.CodeOf(err) == surferr.NoEntry {
			return TVPQMetadata{}, nil
		}
		return TVPQMetadata{}, err
	}
	return decodeTVPQ(b)
}

// SetTVPQMetadata overwrites the whole struct.
func SetTVPQMetadata(acc Accessor, t TVPQMetadata) error {
	return acc.SetMetadata(KeyTVPQMetadata, t.encode())
}

// UpdateTVPQMetadata reads the current TVPQMetadata (or its zero
// value if unset), calls update to mutate a copy, and writes the
// result back — a merge-function pattern so a caller can set one
// field (say, FrameCount) without first reading the whole struct
// itself.
func UpdateTVPQMetadata(acc Accessor, update func(*TVPQMetadata)) error {
	cur, err := GetTVPQMetadata(acc)
	if err != nil {
		return err
	}
	update(&cur)
	return SetTVPQMetadata(acc, cur)
}
