package window

import (
	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/surferr"
)

// OptCode selects one window property for Perform to get or set
// through a single opt-code dispatch function.
type OptCode int32

const (
	OptSetUsage OptCode = iota
	OptGetUsage
	OptSetBufferGeometry
	OptGetBufferGeometry
	OptSetFormat
	OptGetFormat
	OptSetStrideAlignment
	OptGetStrideAlignment
	OptSetTimeout
	OptGetTimeout
	OptSetColorGamut
	OptGetColorGamut
	OptSetTransform
	OptGetTransform
	OptSetSourceType
	OptGetSourceType
	OptSetFrameworkType
	OptGetFrameworkType
	OptSetWhitePointBrightness
	OptGetWhitePointBrightness
	OptSetHold
	OptGetHold
	OptSetQueueSize
	OptGetQueueSize
)

// Perform is the opt-code dispatch: a single entry point taking a
// code and a variadic argument list, used by C-style callers that
// expect one function pointer rather than dozens of named setters.
// A Set code's args[0] carries the new value; a Get code's args[0]
// must be a pointer to the destination the handler writes into.
func (w *NativeWindow) Perform(code OptCode, args ...any) error {
	if err := w.valid(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	switch code {
	case OptSetUsage:
		u, err := argUsage(args)
		if err != nil {
			return err
		}
		w.cfg.Usage = u
	case OptGetUsage:
		return writeOut(args, w.cfg.Usage)

	case OptSetBufferGeometry:
		width, height, err := argDims(args)
		if err != nil {
			return err
		}
		w.cfg.Width, w.cfg.Height = width, height
	case OptGetBufferGeometry:
		return writeDims(args, w.cfg.Width, w.cfg.Height)

	case OptSetFormat:
		f, err := argFormat(args)
		if err != nil {
			return err
		}
		w.cfg.Format = f
	case OptGetFormat:
		return writeOut(args, w.cfg.Format)

	case OptSetStrideAlignment:
		n, err := argInt32(args)
		if err != nil {
			return err
		}
		w.cfg.StrideAlignment = n
	case OptGetStrideAlignment:
		return writeOut(args, w.cfg.StrideAlignment)

	case OptSetTimeout:
		n, err := argInt32(args)
		if err != nil {
			return err
		}
		w.cfg.Timeout = n
	case OptGetTimeout:
		return writeOut(args, w.cfg.Timeout)

	case OptSetColorGamut:
		g, err := argColorGamut(args)
		if err != nil {
			return err
		}
		w.cfg.ColorGamut = g
	case OptGetColorGamut:
		return writeOut(args, w.cfg.ColorGamut)

	case OptSetTransform:
		t, err := argTransform(args)
		if err != nil {
			return err
		}
		w.cfg.Transform = t
	case OptGetTransform:
		return writeOut(args, w.cfg.Transform)

	case OptSetSourceType:
		n, err := argInt32(args)
		if err != nil {
			return err
		}
		w.cfg.SourceType = n
	case OptGetSourceType:
		return writeOut(args, w.cfg.SourceType)

	case OptSetFrameworkType:
		n, err := argInt32(args)
		if err != nil {
			return err
		}
		w.cfg.FrameworkType = n
	case OptGetFrameworkType:
		return writeOut(args, w.cfg.FrameworkType)

	case OptSetWhitePointBrightness:
		v, err := argFloat32(args)
		if err != nil {
			return err
		}
		w.cfg.WhitePointBrightness = v
	case OptGetWhitePointBrightness:
		return writeOut(args, w.cfg.WhitePointBrightness)

	case OptSetHold:
		v, err := argBool(args)
		if err != nil {
			return err
		}
		w.cfg.Hold = v
	case OptGetHold:
		return writeOut(args, w.cfg.Hold)

	case OptSetQueueSize:
		n, err := argInt(args)
		if err != nil {
			return err
		}
		w.cfg.QueueSize = n
		if w.Surf != nil {
			return w.Surf.SetQueueSize(n)
		}
	case OptGetQueueSize:
		return writeOut(args, w.cfg.QueueSize)

	default:
		return surferr.New("Perform", surferr.NotSupported)
	}
	return nil
}

func argCheck(args []any, n int) error {
	if len(args) < n {
		return surferr.New("Perform", surferr.InvalidArguments)
	}
	return nil
}

func argUsage(args []any) (buffer.Usage, error) {
	if err := argCheck(args, 1); err != nil {
		return 0, err
	}
	u, ok := args[0].(buffer.Usage)
	if !ok {
		return 0, surferr.New("Perform", surferr.TypeError)
	}
	return u, nil
}

func argFormat(args []any) (buffer.Format, error) {
	if err := argCheck(args, 1); err != nil {
		return 0, err
	}
	f, ok := args[0].(buffer.Format)
	if !ok {
		return 0, surferr.New("Perform", surferr.TypeError)
	}
	return f, nil
}

func argColorGamut(args []any) (buffer.ColorGamut, error) {
	if err := argCheck(args, 1); err != nil {
		return 0, err
	}
	g, ok := args[0].(buffer.ColorGamut)
	if !ok {
		return 0, surferr.New("Perform", surferr.TypeError)
	}
	return g, nil
}

func argTransform(args []any) (buffer.Transform, error) {
	if err := argCheck(args, 1); err != nil {
		return 0, err
	}
	t, ok := args[0].(buffer.Transform)
	if !ok {
		return 0, surferr.New("Perform", surferr.TypeError)
	}
	return t, nil
}

func argInt32(args []any) (int32, error) {
	if err := argCheck(args, 1); err != nil {
		return 0, err
	}
	n, ok := args[0].(int32)
	if !ok {
		return 0, surferr.New("Perform", surferr.TypeError)
	}
	return n, nil
}

func argInt(args []any) (int, error) {
	if err := argCheck(args, 1); err != nil {
		return 0, err
	}
	n, ok := args[0].(int)
	if !ok {
		return 0, surferr.New("Perform", surferr.TypeError)
	}
	return n, nil
}

func argFloat32(args []any) (float32, error) {
	if err := argCheck(args, 1); err != nil {
		return 0, err
	}
	v, ok := args[0].(float32)
	if !ok {
		return 0, surferr.New("Perform", surferr.TypeError)
	}
	return v, nil
}

func argBool(args []any) (bool, error) {
	if err := argCheck(args, 1); err != nil {
		return false, err
	}
	v, ok := args[0].(bool)
	if !ok {
		return false, surferr.New("Perform", surferr.TypeError)
	}
	return v, nil
}

func argDims(args []any) (int32, int32, error) {
	if err := argCheck(args, 2); err != nil {
		return 0, 0, err
	}
	width, ok1 := args[0].(int32)
	height, ok2 := args[1].(int32)
	if !ok1 || !ok2 {
		return 0, 0, surferr.New("Perform", surferr.TypeError)
	}
	return width, height, nil
}

// writeOut stores v into the pointer args[0] is expected to carry,
// the Get-code counterpart to argXxx's Set-code parsing.
func writeOut[T any](args []any, v T) error {
	if err := argCheck(args, 1); err != nil {
		return err
	}
	p, ok := args[0].(*T)
	if !ok {
		return surferr.New("Perform", surferr.TypeError)
	}
	*p = v
	return nil
}

func writeDims(args []any, width, height int32) error {
	if err := argCheck(args, 2); err != nil {
		return err
	}
	pw, ok1 := args[0].(*int32)
	ph, ok2 := args[1].(*int32)
	if !ok1 || !ok2 {
		return surferr.New("Perform", surferr.TypeError)
	}
	*pw, *ph = width, height
	return nil
}
