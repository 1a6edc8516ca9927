package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// SpatialVector is a six-dimensional twist or wrench: angular part on top,
// linear part below. A spatial vector is only meaningful together with the
// frame it is relative to and the frame it is expressed in; those are
// tracked by the caller, not the value. The same layout doubles as the
// generalized coordinate vector of a free joint (rotation vector first,
// translation second).
type SpatialVector struct {
	Angular r3.Vector
	Linear  r3.Vector
}

// At returns component i, angular at indices 0-2 and linear at 3-5.
func (v SpatialVector) At(i int) float64 {
	if i < 3 {
		return vecComponent(v.Angular, i)
	}
	return vecComponent(v.Linear, i-3)
}

// SetIndex sets component i, with the same index layout as At.
func (v *SpatialVector) SetIndex(i int, value float64) {
	part := &v.Angular
	if i >= 3 {
		part = &v.Linear
		i -= 3
	}
	switch i {
	case 0:
		part.X = value
	case 1:
		part.Y = value
	default:
		part.Z = value
	}
}

// Add returns v + other.
func (v SpatialVector) Add(other SpatialVector) SpatialVector {
	return SpatialVector{Angular: v.Angular.Add(other.Angular), Linear: v.Linear.Add(other.Linear)}
}

// Sub returns v - other.
func (v SpatialVector) Sub(other SpatialVector) SpatialVector {
	return SpatialVector{Angular: v.Angular.Sub(other.Angular), Linear: v.Linear.Sub(other.Linear)}
}

// Mul returns the vector scaled by c.
func (v SpatialVector) Mul(c float64) SpatialVector {
	return SpatialVector{Angular: v.Angular.Mul(c), Linear: v.Linear.Mul(c)}
}

// Norm returns the Euclidean norm over all six components.
func (v SpatialVector) Norm() float64 {
	return math.Sqrt(v.Angular.Norm2() + v.Linear.Norm2())
}

// ApproxEqual reports whether two spatial vectors agree component-wise
// within tol.
func (v SpatialVector) ApproxEqual(other SpatialVector, tol float64) bool {
	d := v.Sub(other)
	return math.Abs(d.Angular.X) <= tol && math.Abs(d.Angular.Y) <= tol && math.Abs(d.Angular.Z) <= tol &&
		math.Abs(d.Linear.X) <= tol && math.Abs(d.Linear.Y) <= tol && math.Abs(d.Linear.Z) <= tol
}

// Ad transforms a spatial vector between frames. If tf is the pose of frame
// B with respect to frame A, Ad maps a vector expressed in B to the same
// physical quantity expressed in A. It satisfies
// Ad(T1.Compose(T2), v) == Ad(T1, Ad(T2, v)).
func Ad(tf RigidTransform, v SpatialVector) SpatialVector {
	w := rotate(tf.Rot, v.Angular)
	return SpatialVector{
		Angular: w,
		Linear:  tf.Trans.Cross(w).Add(rotate(tf.Rot, v.Linear)),
	}
}

// AdInv is the inverse adjoint action: AdInv(tf, v) == Ad(tf.Invert(), v).
func AdInv(tf RigidTransform, v SpatialVector) SpatialVector {
	rt := tf.Rot.Transpose()
	return SpatialVector{
		Angular: rotate(rt, v.Angular),
		Linear:  rotate(rt, v.Linear.Sub(tf.Trans.Cross(v.Angular))),
	}
}

// AdR applies only the rotational part of the adjoint, re-expressing a
// spatial vector in another frame's coordinates without the lever-arm term.
func AdR(tf RigidTransform, v SpatialVector) SpatialVector {
	return SpatialVector{
		Angular: rotate(tf.Rot, v.Angular),
		Linear:  rotate(tf.Rot, v.Linear),
	}
}

// SpatialCross is the Lie bracket ad(v1)v2 of two twists, the Coriolis-like
// coupling term in acceleration transport between moving frames.
func SpatialCross(v1, v2 SpatialVector) SpatialVector {
	return SpatialVector{
		Angular: v1.Angular.Cross(v2.Angular),
		Linear:  v1.Angular.Cross(v2.Linear).Add(v1.Linear.Cross(v2.Angular)),
	}
}
