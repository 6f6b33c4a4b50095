package queue

import "github.com/neo3gfx/graphicsurface/buffer"

func isPowerOfTwo(n int32) bool { return n > 0 && n&(n-1) == 0 }

// validateConfig checks the parts of a request config RequestBuffer
// must reject: stride alignment in range and a
// power of two, and color gamut/transform within their enum ranges. A
// zero StrideAlignment means "let the allocator pick" and is always
// accepted.
func validateConfig(cfg buffer.Config) error {
	if cfg.StrideAlignment != 0 {
		if cfg.StrideAlignment < buffer.MinStrideAlignment || cfg.StrideAlignment > buffer.MaxStrideAlignment {
			return errInvalidArg("RequestBuffer")
		}
		if !isPowerOfTwo(cfg.StrideAlignment) {
			return errInvalidArg("RequestBuffer")
		}
	}
	if cfg.ColorGamut < 0 || cfg.ColorGamut > buffer.MaxColorGamut {
		return errInvalidArg("RequestBuffer")
	}
	if cfg.Transform < 0 || cfg.Transform > buffer.MaxTransform {
		return errInvalidArg("RequestBuffer")
	}
	return nil
}
