// Package joint implements a six-degree-of-freedom free joint for
// articulated rigid-body simulation: minimal-coordinate kinematics, the
// relative Jacobian family with analytic derivatives and finite-difference
// validators, Cartesian-space state setters, and position/velocity
// integration.
package joint

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/dynamics/referenceframe"
	"go.viam.com/dynamics/spatialmath"
)

// Convention selects how a free joint's six generalized coordinates relate
// to spatial motion. The two conventions are not numerically interchangeable
// mid-computation, so a joint picks one at construction and every dependent
// formula follows it.
type Convention int

const (
	// AnalyticJacobian maps generalized velocity to child-frame spatial
	// velocity through the position-dependent relative Jacobian built from
	// the right Jacobian of SO(3).
	AnalyticJacobian Convention = iota
	// IdentityJacobian treats the six coordinates as the matrix logarithm
	// of the full relative transform; the relative Jacobian is the constant
	// adjoint of the child offset transform.
	IdentityJacobian
)

// Joint is the minimal surface shared by joint implementations.
type Joint interface {
	Name() string
	JointType() string
}

// TransformSettable is implemented by joints with enough degrees of freedom
// to realize an arbitrary Cartesian transform of their child body.
type TransformSettable interface {
	SetTransform(tf spatialmath.RigidTransform, withRespectTo referenceframe.Frame) error
}

// SetJointTransform drives any joint supporting direct transform placement
// to the given transform. Joints without that capability get a logged
// warning and an error, never a wrong answer.
func SetJointTransform(
	j Joint,
	tf spatialmath.RigidTransform,
	withRespectTo referenceframe.Frame,
	logger golog.Logger,
) error {
	if j == nil {
		return errors.New("cannot set transform of a nil joint")
	}
	settable, ok := j.(TransformSettable)
	if !ok {
		logger.Warnf("setting a transform directly is not supported by %s joint %q", j.JointType(), j.Name())
		return errors.Errorf("joint %q does not support direct transform placement", j.Name())
	}
	return settable.SetTransform(tf, withRespectTo)
}

// Free connects a child body to a parent frame with unconstrained relative
// rotation and translation, parameterized by a 6-vector of minimal
// coordinates: rotation vector first, translation second.
//
// The cached relative transform, Jacobian, and Jacobian time derivative are
// recomputed lazily on first read after a mutation. The cache is not safe
// for concurrent readers and writers; the surrounding system serializes all
// access to a joint instance.
type Free struct {
	name       string
	convention Convention
	logger     golog.Logger

	parent referenceframe.Frame
	child  *Body

	// Fixed offsets, set at configuration time and invariant during
	// simulation.
	parentBodyToJoint spatialmath.RigidTransform
	childBodyToJoint  spatialmath.RigidTransform

	positions     spatialmath.SpatialVector
	velocities    spatialmath.SpatialVector
	accelerations spatialmath.SpatialVector

	relativeTransform spatialmath.RigidTransform
	jacobian          *mat.Dense
	jacobianTimeDeriv *mat.Dense

	needTransformUpdate     bool
	needJacobianUpdate      bool
	needJacobianDerivUpdate bool
}

// NewFree returns a free joint connecting a new child body to the given
// parent frame. A nil parent attaches the joint to the world.
func NewFree(name string, parent referenceframe.Frame, convention Convention, logger golog.Logger) *Free {
	if parent == nil {
		parent = referenceframe.World()
	}
	j := &Free{
		name:                    name,
		convention:              convention,
		logger:                  logger,
		parent:                  parent,
		parentBodyToJoint:       spatialmath.IdentityTransform(),
		childBodyToJoint:        spatialmath.IdentityTransform(),
		needTransformUpdate:     true,
		needJacobianUpdate:      true,
		needJacobianDerivUpdate: true,
	}
	j.child = &Body{name: name + "_body", joint: j}
	return j
}

// Name returns the joint's name.
func (j *Free) Name() string { return j.name }

// JointType identifies the joint implementation.
func (j *Free) JointType() string { return "free" }

// Convention returns the coordinate convention fixed at construction.
func (j *Free) Convention() Convention { return j.convention }

// Parent returns the frame the joint hangs from.
func (j *Free) Parent() referenceframe.Frame { return j.parent }

// Child returns the child body frame driven by the joint.
func (j *Free) Child() *Body { return j.child }

// Positions returns the current generalized coordinates.
func (j *Free) Positions() spatialmath.SpatialVector { return j.positions }

// SetPositions writes the generalized coordinates and invalidates every
// cached position-dependent quantity.
func (j *Free) SetPositions(q spatialmath.SpatialVector) {
	j.positions = q
	j.needTransformUpdate = true
	j.needJacobianUpdate = true
	j.needJacobianDerivUpdate = true
}

// Velocities returns the current generalized velocities.
func (j *Free) Velocities() spatialmath.SpatialVector { return j.velocities }

// SetVelocities writes the generalized velocities and invalidates the
// cached Jacobian time derivative.
func (j *Free) SetVelocities(dq spatialmath.SpatialVector) {
	j.velocities = dq
	j.needJacobianDerivUpdate = true
}

// Accelerations returns the current generalized accelerations.
func (j *Free) Accelerations() spatialmath.SpatialVector { return j.accelerations }

// SetAccelerations writes the generalized accelerations.
func (j *Free) SetAccelerations(ddq spatialmath.SpatialVector) {
	j.accelerations = ddq
}

// OffsetTransforms returns the fixed parent-body-to-joint and
// child-body-to-joint transforms.
func (j *Free) OffsetTransforms() (parentBodyToJoint, childBodyToJoint spatialmath.RigidTransform) {
	return j.parentBodyToJoint, j.childBodyToJoint
}

// SetOffsetTransforms reconfigures the fixed offset transforms. This is an
// explicit reconfiguration step, not part of the per-step hot path.
func (j *Free) SetOffsetTransforms(parentBodyToJoint, childBodyToJoint spatialmath.RigidTransform) {
	j.parentBodyToJoint = parentBodyToJoint
	j.childBodyToJoint = childBodyToJoint
	j.needTransformUpdate = true
	j.needJacobianUpdate = true
	j.needJacobianDerivUpdate = true
}

// IsCyclic reports whether generalized coordinate index wraps around, which
// holds for the three rotation coordinates of a free joint.
func (j *Free) IsCyclic(index int) bool {
	return index < 3
}
