package registry

import (
	"github.com/neo3gfx/graphicsurface/buffer"
	"github.com/neo3gfx/graphicsurface/internal/mat4"
	"github.com/neo3gfx/graphicsurface/metadata"
)

// ComputeTransformMatrixV1 composes the texture-coordinate transform
// a consumer applies to sample buf's cropped region with the
// requested rotation/mirror. width/height are the buffer's actual
// dimensions; crop is normalized against them with Y measured from
// the top of the buffer, matching the original surface_utils.cpp
// convention most existing callers were written against.
//
// Two variants exist (V1 here, V2 below) because later callers
// adopted a different crop-normalization convention and the original
// could not be changed without breaking them; unifying the two needs
// an audit of every caller first, so both stay for now.
func ComputeTransformMatrixV1(width, height int32, transform buffer.Transform, crop metadata.CropRegion) [16]float32 {
	return computeTransformMatrix(width, height, transform, crop, false)
}

// ComputeTransformMatrixV2 is ComputeTransformMatrixV1's counterpart
// for callers using the newer crop-normalization convention, where Y
// is measured from the bottom of the buffer (OpenGL texture-space
// orientation) instead of the top.
func ComputeTransformMatrixV2(width, height int32, transform buffer.Transform, crop metadata.CropRegion) [16]float32 {
	return computeTransformMatrix(width, height, transform, crop, true)
}

func computeTransformMatrix(width, height int32, transform buffer.Transform, crop metadata.CropRegion, bottomOriginCrop bool) [16]float32 {
	var tr mat4.M4
	transformMat4(transform, &tr)

	var crp mat4.M4
	cropMat4(width, height, crop, bottomOriginCrop, &crp)

	var out mat4.M4
	out.Mul(&crp, &tr)
	return out.Array()
}

// transformMat4 fills m with the flip/rotate matrix for t, mirroring
// queue.composeTransform's table (kept independently here since that
// one is unexported and this package has its own reason to build the
// same matrices: driving ComputeTransformMatrix rather than
// GetLastFlushedBuffer).
func transformMat4(t buffer.Transform, m *mat4.M4) {
	m.I()
	switch t {
	case buffer.TransformNone:
	case buffer.Transform90:
		*m = mat4.M4{{0, 1}, {-1, 0}, {0, 0, 1}, {0, 0, 0, 1}}
	case buffer.Transform180:
		*m = mat4.M4{{-1, 0}, {0, -1}, {0, 0, 1}, {0, 0, 0, 1}}
	case buffer.Transform270:
		*m = mat4.M4{{0, -1}, {1, 0}, {0, 0, 1}, {0, 0, 0, 1}}
	case buffer.TransformFlipH:
		*m = mat4.M4{{-1, 0}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}}
	case buffer.TransformFlipV:
		*m = mat4.M4{{1, 0}, {0, -1}, {0, 0, 1}, {0, 0, 0, 1}}
	case buffer.TransformFlipH90:
		*m = mat4.M4{{0, 1}, {1, 0}, {0, 0, 1}, {0, 0, 0, 1}}
	case buffer.TransformFlipV90:
		*m = mat4.M4{{0, -1}, {-1, 0}, {0, 0, 1}, {0, 0, 0, 1}}
	}
}

// cropMat4 builds the scale+translate matrix mapping [0,1]^2 texture
// coordinates into crop's normalized region of a width x height
// buffer. bottomOriginCrop selects the V2 convention (Y measured from
// the bottom, i.e. OpenGL-style) over V1's top-origin convention.
func cropMat4(width, height int32, crop metadata.CropRegion, bottomOriginCrop bool, m *mat4.M4) {
	m.I()
	if width <= 0 || height <= 0 || crop.W <= 0 || crop.H <= 0 {
		return
	}
	sx := float32(crop.W) / float32(width)
	sy := float32(crop.H) / float32(height)
	tx := float32(crop.X) / float32(width)

	var ty float32
	if bottomOriginCrop {
		ty = float32(height-crop.Y-crop.H) / float32(height)
	} else {
		ty = float32(crop.Y) / float32(height)
	}

	m[0][0] = sx
	m[1][1] = sy
	m[3][0] = tx
	m[3][1] = ty
}
