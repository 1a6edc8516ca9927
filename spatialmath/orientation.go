package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// QuaternionFromRotation converts a rotation matrix to a unit quaternion
// using Shepperd's method, branching on the largest of trace and diagonal to
// stay well conditioned for every orientation.
func QuaternionFromRotation(m mgl64.Mat3) quat.Number {
	tr := m.Trace()
	var q quat.Number
	switch {
	case tr > 0:
		s := 2 * math.Sqrt(tr+1)
		q = quat.Number{
			Real: 0.25 * s,
			Imag: (m.At(2, 1) - m.At(1, 2)) / s,
			Jmag: (m.At(0, 2) - m.At(2, 0)) / s,
			Kmag: (m.At(1, 0) - m.At(0, 1)) / s,
		}
	case m.At(0, 0) > m.At(1, 1) && m.At(0, 0) > m.At(2, 2):
		s := 2 * math.Sqrt(1+m.At(0, 0)-m.At(1, 1)-m.At(2, 2))
		q = quat.Number{
			Real: (m.At(2, 1) - m.At(1, 2)) / s,
			Imag: 0.25 * s,
			Jmag: (m.At(0, 1) + m.At(1, 0)) / s,
			Kmag: (m.At(0, 2) + m.At(2, 0)) / s,
		}
	case m.At(1, 1) > m.At(2, 2):
		s := 2 * math.Sqrt(1+m.At(1, 1)-m.At(0, 0)-m.At(2, 2))
		q = quat.Number{
			Real: (m.At(0, 2) - m.At(2, 0)) / s,
			Imag: (m.At(0, 1) + m.At(1, 0)) / s,
			Jmag: 0.25 * s,
			Kmag: (m.At(1, 2) + m.At(2, 1)) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m.At(2, 2)-m.At(0, 0)-m.At(1, 1))
		q = quat.Number{
			Real: (m.At(1, 0) - m.At(0, 1)) / s,
			Imag: (m.At(0, 2) + m.At(2, 0)) / s,
			Jmag: (m.At(1, 2) + m.At(2, 1)) / s,
			Kmag: 0.25 * s,
		}
	}
	return q
}

// RotationFromQuaternion converts a unit quaternion to a rotation matrix.
func RotationFromQuaternion(q quat.Number) mgl64.Mat3 {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mgl64.Mat3FromRows(
		mgl64.Vec3{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		mgl64.Vec3{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		mgl64.Vec3{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	)
}

// AxisAngleRotation builds a rotation of angle radians about the given axis;
// the axis need not be normalized.
func AxisAngleRotation(axis r3.Vector, angle float64) mgl64.Mat3 {
	n := axis.Norm()
	if n == 0 {
		return mgl64.Ident3()
	}
	return ExpMapRot(axis.Mul(angle / n))
}

// QuaternionAlmostEqual reports whether two unit quaternions represent
// orientations within tol of each other, treating q and -q as equal.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	d := quat.Mul(quat.Conj(a), b)
	return 2*math.Acos(math.Min(1, math.Abs(d.Real))) < tol
}
