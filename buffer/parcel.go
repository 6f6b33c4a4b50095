package buffer

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/neo3gfx/graphicsurface/extradata"
	"github.com/neo3gfx/graphicsurface/fence"
	"github.com/neo3gfx/graphicsurface/metadata"
	"github.com/neo3gfx/graphicsurface/surferr"
)

// FDWriter is the pluggable strategy for handing a local file
// descriptor to the IPC transport that will carry a
// WriteToMessageParcel payload to another process. A raw int is
// meaningless once it crosses a process boundary; a real transport
// must pass fds out of band (e.g. SCM_RIGHTS) and gives back a token
// identifying which out-of-band fd a reader should substitute back
// in. It is an external collaborator for the same reason fence.Driver
// and Allocator are: this package does not know how the transport
// moves descriptors.
type FDWriter interface {
	WriteFD(fd int) (token int32, err error)
}

// FDReader is the reciprocal of FDWriter: given a token previously
// produced by a WriteFD call on the sending side, it returns a local
// fd valid in the reading process.
type FDReader interface {
	ReadFD(token int32) (fd int, err error)
}

// WriteToMessageParcel serializes b onto w: a validity flag, the
// handle (minus its local-only VirtAddr), the sequence number, id,
// color gamut/transform/scaling/crop, the metadata map and the extra
// data map. The request config is not written, so a buffer read back
// by ReadFromMessageParcel has a zero Config. The buffer's fd is
// handed off through fw rather than written as a raw integer.
func (b *SurfaceBuffer) WriteToMessageParcel(w io.Writer, fw FDWriter) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := writeBool(w, true); err != nil {
		return err
	}
	token, err := fw.WriteFD(b.handle.FD)
	if err != nil {
		return surferr.Wrap("WriteToMessageParcel", surferr.Binder, err)
	}
	fields := []int32{
		token,
		int32(b.handle.Size), int32(b.handle.Size >> 32),
		b.handle.Stride, b.handle.Width, b.handle.Height,
		int32(b.handle.Format), int32(b.handle.Usage), int32(b.handle.Usage >> 32),
		int32(b.seq), int32(b.id), int32(b.id >> 32),
		int32(b.colorGamut), int32(b.transform), int32(b.scalingMode),
		b.crop.X, b.crop.Y, b.crop.W, b.crop.H,
	}
	for _, v := range fields {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return surferr.Wrap("WriteToMessageParcel", surferr.Binder, err)
		}
	}

	metaVec := metadata.ConvertMetadataToVec(b.meta)
	if err := writeBlob(w, metaVec); err != nil {
		return err
	}

	var extraErr error
	var n int32
	b.extra.Range(func(string, extradata.Value) bool { n++; return true })
	if err := binary.Write(w, binary.LittleEndian, n); err != nil {
		return surferr.Wrap("WriteToMessageParcel", surferr.Binder, err)
	}
	b.extra.Range(func(key string, v extradata.Value) bool {
		extraErr = writeExtraEntry(w, key, v)
		return extraErr == nil
	})
	if extraErr != nil {
		return extraErr
	}
	return nil
}

// ReadFromMessageParcel is the inverse of WriteToMessageParcel. It
// returns (nil, nil) if the parcel carries no buffer (the validity
// flag was false), matching the IPC convention that an unchanged slot
// is sent as "no buffer" rather than retransmitting it.
func ReadFromMessageParcel(r io.Reader, fr FDReader) (*SurfaceBuffer, error) {
	valid, err := readBool(r)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, nil
	}

	var token, sizeLo, sizeHi, stride, width, height, format, usageLo, usageHi,
		seq, idLo, idHi, colorGamut, transform, scaling, cx, cy, cw, ch int32
	for _, p := range []*int32{
		&token, &sizeLo, &sizeHi, &stride, &width, &height, &format, &usageLo, &usageHi,
		&seq, &idLo, &idHi, &colorGamut, &transform, &scaling, &cx, &cy, &cw, &ch,
	} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return nil, surferr.Wrap("ReadFromMessageParcel", surferr.Binder, err)
		}
	}
	fd, err := fr.ReadFD(token)
	if err != nil {
		return nil, surferr.Wrap("ReadFromMessageParcel", surferr.Binder, err)
	}

	metaVec, err := readBlob(r)
	if err != nil {
		return nil, err
	}
	meta, err := metadata.ConvertVecToMetadata(metaVec)
	if err != nil {
		return nil, err
	}

	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, surferr.Wrap("ReadFromMessageParcel", surferr.Binder, err)
	}
	extra := extradata.New()
	for i := int32(0); i < n; i++ {
		if err := readExtraEntry(r, extra); err != nil {
			return nil, err
		}
	}

	sb := &SurfaceBuffer{
		handle: Handle{
			FD:     fd,
			Size:   uint64(uint32(sizeLo)) | uint64(uint32(sizeHi))<<32,
			Stride: stride, Width: width, Height: height,
			Format: Format(format),
			Usage:  Usage(uint32(usageLo)) | Usage(uint32(usageHi))<<32,
		},
		seq:         uint32(seq),
		id:          uint64(uint32(idLo)) | uint64(uint32(idHi))<<32,
		colorGamut:  ColorGamut(colorGamut),
		transform:   Transform(transform),
		scalingMode: ScalingMode(scaling),
		crop:        metadata.CropRegion{X: cx, Y: cy, W: cw, H: ch},
		extra:       extra,
		meta:        meta,

		acquireFence: fence.Invalid,
	}
	return sb, nil
}

func writeBool(w io.Writer, v bool) error {
	var b byte
	if v {
		b = 1
	}
	if _, err := w.Write([]byte{b}); err != nil {
		return surferr.Wrap("WriteToMessageParcel", surferr.Binder, err)
	}
	return nil
}

func readBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, surferr.Wrap("ReadFromMessageParcel", surferr.Binder, err)
	}
	return b[0] != 0, nil
}

func writeBlob(w io.Writer, data []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil {
		return surferr.Wrap("WriteToMessageParcel", surferr.Binder, err)
	}
	if _, err := w.Write(data); err != nil {
		return surferr.Wrap("WriteToMessageParcel", surferr.Binder, err)
	}
	return nil
}

func readBlob(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, surferr.Wrap("ReadFromMessageParcel", surferr.Binder, err)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, surferr.Wrap("ReadFromMessageParcel", surferr.Binder, err)
	}
	return data, nil
}

func writeExtraEntry(w io.Writer, key string, v extradata.Value) error {
	if err := writeBlob(w, []byte(key)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(v.Kind)); err != nil {
		return surferr.Wrap("WriteToMessageParcel", surferr.Binder, err)
	}
	switch v.Kind {
	case extradata.Int32:
		return binary.Write(w, binary.LittleEndian, v.I32)
	case extradata.Int64:
		return binary.Write(w, binary.LittleEndian, v.I64)
	case extradata.Double:
		return binary.Write(w, binary.LittleEndian, math.Float64bits(v.F64))
	case extradata.String:
		return writeBlob(w, []byte(v.Str))
	default:
		return surferr.New("WriteToMessageParcel", surferr.TypeError)
	}
}

func readExtraEntry(r io.Reader, e *extradata.ExtraData) error {
	keyB, err := readBlob(r)
	if err != nil {
		return err
	}
	var kind int32
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return surferr.Wrap("ReadFromMessageParcel", surferr.Binder, err)
	}
	key := string(keyB)
	switch extradata.Kind(kind) {
	case extradata.Int32:
		var v int32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return surferr.Wrap("ReadFromMessageParcel", surferr.Binder, err)
		}
		e.SetInt32(key, v)
	case extradata.Int64:
		var v int64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return surferr.Wrap("ReadFromMessageParcel", surferr.Binder, err)
		}
		e.SetInt64(key, v)
	case extradata.Double:
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return surferr.Wrap("ReadFromMessageParcel", surferr.Binder, err)
		}
		e.SetDouble(key, math.Float64frombits(bits))
	case extradata.String:
		sb, err := readBlob(r)
		if err != nil {
			return err
		}
		e.SetString(key, string(sb))
	default:
		return surferr.New("ReadFromMessageParcel", surferr.TypeError)
	}
	return nil
}
