// Package mat4 implements the small amount of column-major 4x4
// matrix math needed to compose the texture-coordinate transform
// that SurfaceUtils hands back to callers of ComputeTransformMatrix.
package mat4

// V4 is a column vector of 4 float32 components.
type V4 [4]float32

// M4 is a column-major 4x4 matrix of float32.
type M4 [4]V4

// I makes m an identity matrix.
func (m *M4) I() { *m = M4{{1}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}} }

// Mul sets m to contain l ⋅ r.
func (m *M4) Mul(l, r *M4) {
	*m = M4{}
	for i := range m {
		for j := range m {
			for k := range m {
				m[i][j] += l[k][j] * r[i][k]
			}
		}
	}
}

// Array returns m's 16 components in column-major order, matching
// the fixed-size float array the producer IPC interface uses for
// GET_LAST_FLUSHED_BUFFER-style matrix outputs.
func (m *M4) Array() [16]float32 {
	var a [16]float32
	for i := range m {
		for j := range m[i] {
			a[i*4+j] = m[i][j]
		}
	}
	return a
}
