package joint

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/dynamics/referenceframe"
	"go.viam.com/dynamics/spatialmath"
)

// SetRelativeTransform places the child body at the given transform
// relative to the parent body by stripping the fixed offsets and converting
// to generalized coordinates.
func (j *Free) SetRelativeTransform(tf spatialmath.RigidTransform) {
	j.SetPositions(ConvertToPositions(
		j.parentBodyToJoint.Invert().
			Compose(tf).
			Compose(j.childBodyToJoint)))
}

// SetTransform places the child body at the given transform relative to an
// arbitrary frame.
func (j *Free) SetTransform(tf spatialmath.RigidTransform, withRespectTo referenceframe.Frame) error {
	if withRespectTo == nil {
		j.logger.Warnf("joint %q: cannot set transform with respect to a nil frame", j.name)
		return errors.New("withRespectTo frame is nil")
	}
	j.SetRelativeTransform(referenceframe.Transform(withRespectTo, j.parent).Compose(tf))
	return nil
}

// SetRelativeSpatialVelocity solves for the generalized velocities
// realizing the given spatial velocity of the child relative to the parent,
// expressed in the child frame.
func (j *Free) SetRelativeSpatialVelocity(vel spatialmath.SpatialVector) error {
	dq, err := spatialmath.Mat6SolveVec(j.RelativeJacobian(), vel)
	if err != nil {
		return err
	}
	j.SetVelocities(dq)
	return nil
}

// SetSpatialVelocity solves for the generalized velocities realizing the
// given spatial velocity of the child body relative to relativeTo,
// expressed in inCoordinatesOf.
func (j *Free) SetSpatialVelocity(vel spatialmath.SpatialVector, relativeTo, inCoordinatesOf referenceframe.Frame) error {
	if relativeTo == nil || inCoordinatesOf == nil {
		j.logger.Warnf("joint %q: cannot set spatial velocity against a nil frame", j.name)
		return errors.New("relativeTo and inCoordinatesOf frames must be non-nil")
	}
	if relativeTo == referenceframe.Frame(j.child) {
		j.logger.Warnf("joint %q: spatial velocity relative to the child body itself is not solvable", j.name)
		return errors.New("relativeTo must not be the child body frame")
	}

	target := vel
	if inCoordinatesOf != referenceframe.Frame(j.child) {
		target = spatialmath.AdR(referenceframe.Transform(inCoordinatesOf, j.child), vel)
	}

	if relativeTo != j.parent {
		parentVel := spatialmath.AdInv(j.RelativeTransform(), j.parent.WorldSpatialVelocity())
		target = target.Sub(parentVel)
		if !relativeTo.IsWorld() {
			target = target.Add(spatialmath.Ad(
				referenceframe.Transform(relativeTo, j.child),
				relativeTo.WorldSpatialVelocity()))
		}
	}

	return j.SetRelativeSpatialVelocity(target)
}

// SetLinearVelocity overwrites only the linear velocity of the child body,
// holding its angular velocity fixed at the current value.
func (j *Free) SetLinearVelocity(linear r3.Vector, relativeTo, inCoordinatesOf referenceframe.Frame) error {
	if relativeTo == nil || inCoordinatesOf == nil {
		j.logger.Warnf("joint %q: cannot set linear velocity against a nil frame", j.name)
		return errors.New("relativeTo and inCoordinatesOf frames must be non-nil")
	}

	var target spatialmath.SpatialVector
	if relativeTo.IsWorld() {
		target.Angular = j.child.WorldSpatialVelocity().Angular
	} else {
		target.Angular = referenceframe.SpatialVelocity(j.child, relativeTo, j.child).Angular
	}
	target.Linear = j.alignWithChild(inCoordinatesOf, linear)

	return j.SetSpatialVelocity(target, relativeTo, j.child)
}

// SetAngularVelocity overwrites only the angular velocity of the child
// body, holding its linear velocity fixed at the current value.
func (j *Free) SetAngularVelocity(angular r3.Vector, relativeTo, inCoordinatesOf referenceframe.Frame) error {
	if relativeTo == nil || inCoordinatesOf == nil {
		j.logger.Warnf("joint %q: cannot set angular velocity against a nil frame", j.name)
		return errors.New("relativeTo and inCoordinatesOf frames must be non-nil")
	}

	var target spatialmath.SpatialVector
	target.Angular = j.alignWithChild(inCoordinatesOf, angular)
	if relativeTo.IsWorld() {
		target.Linear = j.child.WorldSpatialVelocity().Linear
	} else {
		target.Linear = referenceframe.SpatialVelocity(j.child, relativeTo, j.child).Linear
	}

	return j.SetSpatialVelocity(target, relativeTo, j.child)
}

// SetRelativeSpatialAcceleration solves for the generalized accelerations
// realizing the given spatial acceleration of the child relative to the
// parent, expressed in the child frame.
func (j *Free) SetRelativeSpatialAcceleration(acc spatialmath.SpatialVector) error {
	bias := spatialmath.Mat6MulVec(j.RelativeJacobianTimeDeriv(), j.velocities)
	ddq, err := spatialmath.Mat6SolveVec(j.RelativeJacobian(), acc.Sub(bias))
	if err != nil {
		return err
	}
	j.SetAccelerations(ddq)
	return nil
}

// SetSpatialAcceleration solves for the generalized accelerations realizing
// the given spatial acceleration of the child body relative to relativeTo,
// expressed in inCoordinatesOf. Transport from a non-parent frame carries
// the Lie bracket coupling between the child's velocity and the transported
// relative twist.
func (j *Free) SetSpatialAcceleration(acc spatialmath.SpatialVector, relativeTo, inCoordinatesOf referenceframe.Frame) error {
	if relativeTo == nil || inCoordinatesOf == nil {
		j.logger.Warnf("joint %q: cannot set spatial acceleration against a nil frame", j.name)
		return errors.New("relativeTo and inCoordinatesOf frames must be non-nil")
	}
	if relativeTo == referenceframe.Frame(j.child) {
		j.logger.Warnf("joint %q: spatial acceleration relative to the child body itself is not solvable", j.name)
		return errors.New("relativeTo must not be the child body frame")
	}

	target := acc
	if inCoordinatesOf != referenceframe.Frame(j.child) {
		target = spatialmath.AdR(referenceframe.Transform(inCoordinatesOf, j.child), acc)
	}

	if relativeTo != j.parent {
		childVel := j.child.WorldSpatialVelocity()
		relVel := spatialmath.Mat6MulVec(j.RelativeJacobian(), j.velocities)
		parentAcc := spatialmath.AdInv(j.RelativeTransform(), j.parent.WorldSpatialAcceleration()).
			Add(spatialmath.SpatialCross(childVel, relVel))
		target = target.Sub(parentAcc)
		if !relativeTo.IsWorld() {
			tf := referenceframe.Transform(relativeTo, j.child)
			arbitrary := spatialmath.Ad(tf, relativeTo.WorldSpatialAcceleration()).
				Sub(spatialmath.SpatialCross(childVel, spatialmath.Ad(tf, relativeTo.WorldSpatialVelocity())))
			target = target.Add(arbitrary)
		}
	}

	return j.SetRelativeSpatialAcceleration(target)
}

// SetLinearAcceleration overwrites only the linear acceleration of the
// child body, holding its angular acceleration fixed at the current value.
func (j *Free) SetLinearAcceleration(linear r3.Vector, relativeTo, inCoordinatesOf referenceframe.Frame) error {
	if relativeTo == nil || inCoordinatesOf == nil {
		j.logger.Warnf("joint %q: cannot set linear acceleration against a nil frame", j.name)
		return errors.New("relativeTo and inCoordinatesOf frames must be non-nil")
	}

	var target spatialmath.SpatialVector
	if relativeTo.IsWorld() {
		target.Angular = j.child.WorldSpatialAcceleration().Angular
	} else {
		target.Angular = referenceframe.SpatialAcceleration(j.child, relativeTo, j.child).Angular
	}

	// The classical acceleration differs from the spatial one by the
	// velocity coupling term.
	vel := referenceframe.SpatialVelocity(j.child, relativeTo, inCoordinatesOf)
	target.Linear = j.alignWithChild(inCoordinatesOf, linear.Sub(vel.Angular.Cross(vel.Linear)))

	return j.SetSpatialAcceleration(target, relativeTo, j.child)
}

// SetAngularAcceleration overwrites only the angular acceleration of the
// child body, holding its linear acceleration fixed at the current value.
func (j *Free) SetAngularAcceleration(angular r3.Vector, relativeTo, inCoordinatesOf referenceframe.Frame) error {
	if relativeTo == nil || inCoordinatesOf == nil {
		j.logger.Warnf("joint %q: cannot set angular acceleration against a nil frame", j.name)
		return errors.New("relativeTo and inCoordinatesOf frames must be non-nil")
	}

	var target spatialmath.SpatialVector
	target.Angular = j.alignWithChild(inCoordinatesOf, angular)
	if relativeTo.IsWorld() {
		target.Linear = j.child.WorldSpatialAcceleration().Linear
	} else {
		target.Linear = referenceframe.SpatialAcceleration(j.child, relativeTo, j.child).Linear
	}

	return j.SetSpatialAcceleration(target, relativeTo, j.child)
}

// SetSpatialMotion applies any of a transform, spatial velocity, and
// spatial acceleration target in that strict order; the velocity and
// acceleration targets are defined against the just-updated transform.
func (j *Free) SetSpatialMotion(
	tf *spatialmath.RigidTransform, withRespectTo referenceframe.Frame,
	vel *spatialmath.SpatialVector, velRelativeTo, velInCoordinatesOf referenceframe.Frame,
	acc *spatialmath.SpatialVector, accRelativeTo, accInCoordinatesOf referenceframe.Frame,
) error {
	if tf != nil {
		if err := j.SetTransform(*tf, withRespectTo); err != nil {
			return err
		}
	}
	if vel != nil {
		if err := j.SetSpatialVelocity(*vel, velRelativeTo, velInCoordinatesOf); err != nil {
			return err
		}
	}
	if acc != nil {
		if err := j.SetSpatialAcceleration(*acc, accRelativeTo, accInCoordinatesOf); err != nil {
			return err
		}
	}
	return nil
}

// alignWithChild rotates a vector expressed in the given frame into child
// body coordinates through the two frames' world rotations; cheaper than
// composing the full relative transform.
func (j *Free) alignWithChild(inCoordinatesOf referenceframe.Frame, v r3.Vector) r3.Vector {
	childRot := j.child.WorldTransform().Rot
	return spatialmath.Mat3MulVec(
		childRot.Transpose().Mul3(inCoordinatesOf.WorldTransform().Rot), v)
}
