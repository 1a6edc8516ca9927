package joint

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/dynamics/spatialmath"
)

// ConvertToPositions maps a joint-local relative transform to minimal
// coordinates: the rotation vector of the rotation part, and the
// translation copied directly. The translation is copied rather than
// rotated; this is the free-joint coordinate convention, not a full SE(3)
// logarithm.
func ConvertToPositions(tf spatialmath.RigidTransform) spatialmath.SpatialVector {
	return spatialmath.SpatialVector{
		Angular: spatialmath.LogMap(tf.Rot),
		Linear:  tf.Trans,
	}
}

// ConvertToTransform is the inverse of ConvertToPositions, exact for
// rotation vectors of norm below pi.
func ConvertToTransform(q spatialmath.SpatialVector) spatialmath.RigidTransform {
	return spatialmath.NewRigidTransform(spatialmath.ExpMapRot(q.Angular), q.Linear)
}

// RelativeTransform returns the transform of the child body frame relative
// to the parent body frame at the current positions, recomputing the cached
// value when a mutation invalidated it.
func (j *Free) RelativeTransform() spatialmath.RigidTransform {
	if j.needTransformUpdate {
		j.relativeTransform = j.relativeTransformAt(j.positions)
		j.needTransformUpdate = false
	}
	return j.relativeTransform
}

func (j *Free) relativeTransformAt(q spatialmath.SpatialVector) spatialmath.RigidTransform {
	return j.parentBodyToJoint.
		Compose(ConvertToTransform(q)).
		Compose(j.childBodyToJoint.Invert())
}

// RelativeJacobian returns the 6x6 matrix mapping generalized velocity to
// the spatial velocity of the child body relative to the parent, expressed
// in the child body frame. It depends on the current positions only. The
// matrix is always invertible for a free joint; callers may rely on exact
// inversion.
func (j *Free) RelativeJacobian() *mat.Dense {
	if j.needJacobianUpdate {
		j.jacobian = j.RelativeJacobianAt(j.positions)
		j.needJacobianUpdate = false
	}
	return mat.DenseCopyOf(j.jacobian)
}

// RelativeJacobianAt computes the relative Jacobian at arbitrary positions
// without touching joint state.
//
// Rotation columns produce angular velocity through the right Jacobian of
// SO(3) and couple into linear velocity through the child offset lever arm;
// translation columns produce pure linear velocity in the child frame.
func (j *Free) RelativeJacobianAt(q spatialmath.SpatialVector) *mat.Dense {
	if j.convention == IdentityJacobian {
		return spatialmath.AdMatrix(j.childBodyToJoint)
	}
	topLeft := j.childBodyToJoint.Rot.Mul3(spatialmath.RightJacobian(q.Angular))
	out := spatialmath.NewMat6()
	spatialmath.SetMat3Block(out, 0, 0, topLeft)
	spatialmath.SetMat3Block(out, 3, 0, spatialmath.Skew(j.childBodyToJoint.Trans).Mul3(topLeft))
	spatialmath.SetMat3Block(out, 3, 3, j.childBodyToJoint.Rot.Mul3(spatialmath.ExpMapRot(q.Angular.Mul(-1))))
	return out
}

// RelativeJacobianTimeDeriv returns the total time derivative of the
// relative Jacobian along the current generalized velocity.
func (j *Free) RelativeJacobianTimeDeriv() *mat.Dense {
	if j.needJacobianDerivUpdate {
		j.jacobianTimeDeriv = j.RelativeJacobianTimeDerivAt(j.positions, j.velocities)
		j.needJacobianDerivUpdate = false
	}
	return mat.DenseCopyOf(j.jacobianTimeDeriv)
}

// RelativeJacobianTimeDerivAt computes the Jacobian time derivative at
// arbitrary positions and velocities without touching joint state.
func (j *Free) RelativeJacobianTimeDerivAt(q, dq spatialmath.SpatialVector) *mat.Dense {
	out := spatialmath.NewMat6()
	if j.convention == IdentityJacobian {
		return out
	}
	topLeft := j.childBodyToJoint.Rot.Mul3(spatialmath.RightJacobianTimeDeriv(q.Angular, dq.Angular))
	spatialmath.SetMat3Block(out, 0, 0, topLeft)
	spatialmath.SetMat3Block(out, 3, 0, spatialmath.Skew(j.childBodyToJoint.Trans).Mul3(topLeft))

	jr := spatialmath.RightJacobian(q.Angular)
	spun := spatialmath.Mat3MulVec(jr, dq.Angular).Mul(-1)
	spatialmath.SetMat3Block(out, 3, 3,
		j.childBodyToJoint.Rot.
			Mul3(spatialmath.Skew(spun)).
			Mul3(spatialmath.ExpMapRot(q.Angular).Transpose()))
	return out
}

// RelativeJacobianDeriv returns the partial derivative of the relative
// Jacobian with respect to generalized coordinate index at the current
// positions.
func (j *Free) RelativeJacobianDeriv(index int) (*mat.Dense, error) {
	return j.RelativeJacobianDerivAt(j.positions, index)
}

// RelativeJacobianDerivAt computes the same partial derivative at arbitrary
// positions. The Jacobian does not depend on the translation coordinates,
// so indices 3-5 yield the zero matrix.
func (j *Free) RelativeJacobianDerivAt(q spatialmath.SpatialVector, index int) (*mat.Dense, error) {
	if index < 0 || index >= 6 {
		return nil, errors.Errorf("generalized coordinate index %d out of range", index)
	}
	out := spatialmath.NewMat6()
	if j.convention == IdentityJacobian || index >= 3 {
		return out, nil
	}

	basis := basisVector(index)
	topLeft := j.childBodyToJoint.Rot.Mul3(spatialmath.RightJacobianTimeDeriv(q.Angular, basis))
	spatialmath.SetMat3Block(out, 0, 0, topLeft)
	spatialmath.SetMat3Block(out, 3, 0, spatialmath.Skew(j.childBodyToJoint.Trans).Mul3(topLeft))

	// d/dq_i exp(-q) = -exp(-q) * skew(Jr(-q) e_i)
	expNeg := spatialmath.ExpMapRot(q.Angular.Mul(-1))
	jrNeg := spatialmath.RightJacobian(q.Angular.Mul(-1))
	spatialmath.SetMat3Block(out, 3, 3,
		j.childBodyToJoint.Rot.
			Mul3(expNeg).
			Mul3(spatialmath.Skew(spatialmath.Mat3MulVec(jrNeg, basis))).
			Mul(-1))
	return out, nil
}

// RelativeJacobianTimeDerivDerivWrtPosition returns the partial derivative
// of the Jacobian time derivative with respect to generalized coordinate
// index, at the current positions and velocities.
func (j *Free) RelativeJacobianTimeDerivDerivWrtPosition(index int) (*mat.Dense, error) {
	return j.RelativeJacobianTimeDerivDerivWrtPositionAt(j.positions, j.velocities, index)
}

// RelativeJacobianTimeDerivDerivWrtPositionAt computes the same second
// derivative at arbitrary state.
func (j *Free) RelativeJacobianTimeDerivDerivWrtPositionAt(
	q, dq spatialmath.SpatialVector,
	index int,
) (*mat.Dense, error) {
	if index < 0 || index >= 6 {
		return nil, errors.Errorf("generalized coordinate index %d out of range", index)
	}
	out := spatialmath.NewMat6()
	if j.convention == IdentityJacobian || index >= 3 {
		return out, nil
	}

	topLeft := j.childBodyToJoint.Rot.Mul3(
		spatialmath.RightJacobianTimeDerivDeriv(q.Angular, dq.Angular, index))
	spatialmath.SetMat3Block(out, 0, 0, topLeft)
	spatialmath.SetMat3Block(out, 3, 0, spatialmath.Skew(j.childBodyToJoint.Trans).Mul3(topLeft))
	spatialmath.SetMat3Block(out, 3, 3, j.jacobianTimeDerivBottomRightDeriv(q, dq, index))
	return out, nil
}

// jacobianTimeDerivBottomRightDeriv differentiates the bottom-right block
// R_c * skew(-Jr dq) * exp(q)^T of the Jacobian time derivative with
// respect to rotation coordinate index.
func (j *Free) jacobianTimeDerivBottomRightDeriv(q, dq spatialmath.SpatialVector, index int) mgl64.Mat3 {
	basis := basisVector(index)
	jr := spatialmath.RightJacobian(q.Angular)
	jrDot := spatialmath.RightJacobianTimeDeriv(q.Angular, basis)
	expNeg := spatialmath.ExpMapRot(q.Angular.Mul(-1))

	spun := spatialmath.Mat3MulVec(jr, dq.Angular).Mul(-1)
	spunDeriv := spatialmath.Mat3MulVec(jrDot, dq.Angular).Mul(-1)
	axis := spatialmath.Mat3MulVec(jr, basis)

	inner := spatialmath.Skew(spunDeriv).
		Sub(spatialmath.Skew(spun).Mul3(spatialmath.Skew(axis)))
	return j.childBodyToJoint.Rot.Mul3(inner).Mul3(expNeg)
}

// RelativeJacobianTimeDerivDerivWrtVelocity returns the partial derivative
// of the Jacobian time derivative with respect to generalized velocity
// index, at the current positions.
func (j *Free) RelativeJacobianTimeDerivDerivWrtVelocity(index int) (*mat.Dense, error) {
	return j.RelativeJacobianTimeDerivDerivWrtVelocityAt(j.positions, index)
}

// RelativeJacobianTimeDerivDerivWrtVelocityAt computes the same derivative
// at arbitrary positions. The Jacobian time derivative is linear in the
// generalized velocity, so this is its value along a basis velocity; the
// translational velocity components never enter, so indices 3-5 yield zero.
func (j *Free) RelativeJacobianTimeDerivDerivWrtVelocityAt(
	q spatialmath.SpatialVector,
	index int,
) (*mat.Dense, error) {
	if index < 0 || index >= 6 {
		return nil, errors.Errorf("generalized velocity index %d out of range", index)
	}
	out := spatialmath.NewMat6()
	if j.convention == IdentityJacobian || index >= 3 {
		return out, nil
	}
	basisRate := spatialmath.SpatialVector{Angular: basisVector(index)}
	return j.RelativeJacobianTimeDerivAt(q, basisRate), nil
}

// RelativeJacobianInPositionSpace returns the Jacobian relating generalized
// velocity to the rate of change of the child body's pose coordinates,
// pushed through the child offset adjoint.
func (j *Free) RelativeJacobianInPositionSpace(q spatialmath.SpatialVector) *mat.Dense {
	inner := spatialmath.NewMat6()
	spatialmath.SetMat3Block(inner, 0, 0, spatialmath.ExpMapJac(q.Angular).Transpose())
	spatialmath.SetMat3Block(inner, 3, 3, spatialmath.ExpMapRot(q.Angular).Transpose())
	return spatialmath.TransformAdjointJacobian(j.childBodyToJoint, inner)
}

// PositionDifferences returns the generalized displacement from q1 to q2,
// consistent with the joint's convention.
func (j *Free) PositionDifferences(q2, q1 spatialmath.SpatialVector) (spatialmath.SpatialVector, error) {
	t1 := ConvertToTransform(q1)
	t2 := ConvertToTransform(q2)
	diff := ConvertToPositions(t1.Invert().Compose(t2))
	if j.convention == IdentityJacobian {
		return diff, nil
	}
	return spatialmath.Mat6SolveVec(j.RelativeJacobianAt(q1), diff)
}

// IntegratePositions advances the joint's positions along the current
// generalized velocities over dt.
func (j *Free) IntegratePositions(dt float64) {
	j.SetPositions(j.IntegratePositionsExplicit(j.positions, j.velocities, dt))
}

// IntegratePositionsExplicit advances arbitrary positions along arbitrary
// generalized velocities over dt, without touching joint state. Under the
// identity convention the velocity is exponentiated directly; otherwise it
// is first mapped to a spatial velocity through the relative Jacobian so
// that dq keeps meaning generalized velocity.
func (j *Free) IntegratePositionsExplicit(q, dq spatialmath.SpatialVector, dt float64) spatialmath.SpatialVector {
	step := dq
	if j.convention == AnalyticJacobian {
		step = spatialmath.Mat6MulVec(j.RelativeJacobianAt(q), dq)
	}
	return ConvertToPositions(ConvertToTransform(q).Compose(ConvertToTransform(step.Mul(dt))))
}

// IntegrateVelocities advances the generalized velocities along the current
// generalized accelerations over dt by integrating the spatial velocity and
// projecting back through the current Jacobian; dq alone is not the
// derivative of q under the analytic convention.
func (j *Free) IntegrateVelocities(dt float64) error {
	jac := j.RelativeJacobian()
	jacDot := j.RelativeJacobianTimeDeriv()

	spatial := spatialmath.Mat6MulVec(jac, j.velocities)
	rate := spatialmath.Mat6MulVec(jacDot, j.velocities).
		Add(spatialmath.Mat6MulVec(jac, j.accelerations))
	next, err := spatialmath.Mat6SolveVec(jac, spatial.Add(rate.Mul(dt)))
	if err != nil {
		return err
	}
	j.SetVelocities(next)
	return nil
}

// PosPosJacobian returns the derivative of IntegratePositionsExplicit with
// respect to the positions, by central finite differences; no closed form
// is kept for the integrator derivatives.
func (j *Free) PosPosJacobian(q, dq spatialmath.SpatialVector, dt float64) *mat.Dense {
	return j.FiniteDifferencePosPosJacobian(q, dq, dt)
}

// VelPosJacobian returns the derivative of IntegratePositionsExplicit with
// respect to the generalized velocities, by central finite differences.
func (j *Free) VelPosJacobian(q, dq spatialmath.SpatialVector, dt float64) *mat.Dense {
	return j.FiniteDifferenceVelPosJacobian(q, dq, dt)
}

// basisVector returns the rotation-axis unit vector for indices 0-2.
func basisVector(index int) r3.Vector {
	switch index {
	case 0:
		return r3.Vector{X: 1}
	case 1:
		return r3.Vector{Y: 1}
	default:
		return r3.Vector{Z: 1}
	}
}
