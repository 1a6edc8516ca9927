package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// RigidTransform is a rigid 4x4 homogeneous transform: a rotation and a
// translation, composed by matrix multiplication.
type RigidTransform struct {
	Rot   mgl64.Mat3
	Trans r3.Vector
}

// NewRigidTransform returns the transform with the given rotation and
// translation.
func NewRigidTransform(rot mgl64.Mat3, trans r3.Vector) RigidTransform {
	return RigidTransform{Rot: rot, Trans: trans}
}

// IdentityTransform returns the identity rigid transform.
func IdentityTransform() RigidTransform {
	return RigidTransform{Rot: mgl64.Ident3()}
}

// NewTranslation returns a pure translation.
func NewTranslation(trans r3.Vector) RigidTransform {
	return RigidTransform{Rot: mgl64.Ident3(), Trans: trans}
}

// Compose returns t * other.
func (t RigidTransform) Compose(other RigidTransform) RigidTransform {
	return RigidTransform{
		Rot:   t.Rot.Mul3(other.Rot),
		Trans: rotate(t.Rot, other.Trans).Add(t.Trans),
	}
}

// Invert returns the exact inverse: transposed rotation, negated rotated
// translation.
func (t RigidTransform) Invert() RigidTransform {
	rt := t.Rot.Transpose()
	return RigidTransform{Rot: rt, Trans: rotate(rt, t.Trans).Mul(-1)}
}

// TransformPoint applies the transform to a point.
func (t RigidTransform) TransformPoint(p r3.Vector) r3.Vector {
	return rotate(t.Rot, p).Add(t.Trans)
}

// ApproxEqual reports whether two transforms agree element-wise within tol.
func (t RigidTransform) ApproxEqual(other RigidTransform, tol float64) bool {
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if math.Abs(t.Rot.At(row, col)-other.Rot.At(row, col)) > tol {
				return false
			}
		}
	}
	diff := t.Trans.Sub(other.Trans)
	return math.Abs(diff.X) <= tol && math.Abs(diff.Y) <= tol && math.Abs(diff.Z) <= tol
}

// DualQuaternion returns the unit dual quaternion equivalent of the
// transform, real part the rotation and dual part half the translation times
// the rotation.
func (t RigidTransform) DualQuaternion() dualquat.Number {
	rq := QuaternionFromRotation(t.Rot)
	tq := quat.Number{Imag: t.Trans.X / 2, Jmag: t.Trans.Y / 2, Kmag: t.Trans.Z / 2}
	return dualquat.Number{Real: rq, Dual: quat.Mul(tq, rq)}
}

// NewRigidTransformFromDualQuaternion converts a unit dual quaternion back
// to a rigid transform.
func NewRigidTransformFromDualQuaternion(dq dualquat.Number) RigidTransform {
	trans := quat.Scale(2, quat.Mul(dq.Dual, quat.Conj(dq.Real)))
	return RigidTransform{
		Rot:   RotationFromQuaternion(dq.Real),
		Trans: r3.Vector{X: trans.Imag, Y: trans.Jmag, Z: trans.Kmag},
	}
}
