package joint

import (
	"go.viam.com/dynamics/referenceframe"
	"go.viam.com/dynamics/spatialmath"
)

// Body is the child rigid body frame driven by a free joint. Its world
// transform and twists are derived from the parent frame and the joint's
// generalized state on every read.
type Body struct {
	name  string
	joint *Free
}

// Name returns the body's name.
func (b *Body) Name() string { return b.name }

// Joint returns the joint driving the body.
func (b *Body) Joint() *Free { return b.joint }

// Parent returns the frame the body's joint hangs from.
func (b *Body) Parent() referenceframe.Frame { return b.joint.parent }

// IsWorld implements referenceframe.Frame.
func (b *Body) IsWorld() bool { return false }

// WorldTransform returns the body's pose in world coordinates.
func (b *Body) WorldTransform() spatialmath.RigidTransform {
	if b.joint.parent.IsWorld() {
		return b.joint.RelativeTransform()
	}
	return b.joint.parent.WorldTransform().Compose(b.joint.RelativeTransform())
}

// WorldSpatialVelocity returns the body's twist relative to the world,
// expressed in the body frame: the parent's twist transported across the
// joint plus the joint's own relative twist.
func (b *Body) WorldSpatialVelocity() spatialmath.SpatialVector {
	relative := spatialmath.Mat6MulVec(b.joint.RelativeJacobian(), b.joint.velocities)
	if b.joint.parent.IsWorld() {
		return relative
	}
	return spatialmath.AdInv(b.joint.RelativeTransform(), b.joint.parent.WorldSpatialVelocity()).
		Add(relative)
}

// WorldSpatialAcceleration returns the body's spatial acceleration relative
// to the world, expressed in the body frame.
func (b *Body) WorldSpatialAcceleration() spatialmath.SpatialVector {
	jac := b.joint.RelativeJacobian()
	relVel := spatialmath.Mat6MulVec(jac, b.joint.velocities)
	acc := spatialmath.Mat6MulVec(b.joint.RelativeJacobianTimeDeriv(), b.joint.velocities).
		Add(spatialmath.Mat6MulVec(jac, b.joint.accelerations)).
		Add(spatialmath.SpatialCross(b.WorldSpatialVelocity(), relVel))
	if b.joint.parent.IsWorld() {
		return acc
	}
	return spatialmath.AdInv(b.joint.RelativeTransform(), b.joint.parent.WorldSpatialAcceleration()).
		Add(acc)
}
