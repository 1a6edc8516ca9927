// Package referenceframe defines the reference frame abstraction consumed
// by joint kinematics: a frame knows its pose and twist relative to the
// world, and the package supplies the transport rules for re-expressing
// transforms, velocities, and accelerations between arbitrary frames.
package referenceframe

import (
	"go.viam.com/dynamics/spatialmath"
)

// Frame is a rigid reference frame. The twist accessors return body-frame
// spatial vectors relative to the world, expressed in the frame itself.
type Frame interface {
	Name() string
	WorldTransform() spatialmath.RigidTransform
	WorldSpatialVelocity() spatialmath.SpatialVector
	WorldSpatialAcceleration() spatialmath.SpatialVector
	IsWorld() bool
}

// Transform returns the pose of f with respect to withRespectTo: the
// transform whose rotation re-expresses f-frame coordinates in
// withRespectTo coordinates.
func Transform(f, withRespectTo Frame) spatialmath.RigidTransform {
	if withRespectTo.IsWorld() {
		return f.WorldTransform()
	}
	return withRespectTo.WorldTransform().Invert().Compose(f.WorldTransform())
}

// SpatialVelocity returns the spatial velocity of f relative to relativeTo,
// expressed in inCoordinatesOf.
func SpatialVelocity(f, relativeTo, inCoordinatesOf Frame) spatialmath.SpatialVector {
	var result spatialmath.SpatialVector
	switch {
	case f == relativeTo:
		// nothing moves relative to itself
	case relativeTo.IsWorld():
		result = f.WorldSpatialVelocity()
	default:
		result = f.WorldSpatialVelocity().
			Sub(spatialmath.Ad(Transform(relativeTo, f), relativeTo.WorldSpatialVelocity()))
	}
	if inCoordinatesOf == f {
		return result
	}
	return spatialmath.AdR(Transform(f, inCoordinatesOf), result)
}

// SpatialAcceleration returns the spatial acceleration of f relative to
// relativeTo, expressed in inCoordinatesOf. Transport from a non-world
// relative frame includes the Lie bracket coupling between the two frames'
// velocities; acceleration transport between rotating frames is not a pure
// linear re-expression.
func SpatialAcceleration(f, relativeTo, inCoordinatesOf Frame) spatialmath.SpatialVector {
	var result spatialmath.SpatialVector
	switch {
	case f == relativeTo:
	case relativeTo.IsWorld():
		result = f.WorldSpatialAcceleration()
	default:
		tf := Transform(relativeTo, f)
		result = f.WorldSpatialAcceleration().
			Sub(spatialmath.Ad(tf, relativeTo.WorldSpatialAcceleration())).
			Add(spatialmath.SpatialCross(
				f.WorldSpatialVelocity(),
				spatialmath.Ad(tf, relativeTo.WorldSpatialVelocity()),
			))
	}
	if inCoordinatesOf == f {
		return result
	}
	return spatialmath.AdR(Transform(f, inCoordinatesOf), result)
}
