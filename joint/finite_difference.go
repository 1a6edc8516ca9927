package joint

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/dynamics/spatialmath"
)

// Central-difference step sizes. The velocity step is tighter because the
// quantities differenced against velocity perturbations are themselves
// already derivatives, shifting the truncation/round-off balance.
const (
	fdEpsPosition = 1e-6
	fdEpsVelocity = 1e-7
)

// All finite-difference routines are pure: they evaluate the joint's
// formulas at perturbed copies of the supplied state and never touch the
// joint's own positions or velocities, so there is no corruption window to
// restore from.

// FiniteDifferenceRelativeJacobian recovers the relative Jacobian by
// centrally differencing the relative transform about q, one generalized
// coordinate at a time, and reading off the body twist of each perturbation.
func (j *Free) FiniteDifferenceRelativeJacobian(q spatialmath.SpatialVector) *mat.Dense {
	out := spatialmath.NewMat6()
	center := j.relativeTransformAt(q)
	centerRotT := center.Rot.Transpose()

	for i := 0; i < 6; i++ {
		plusQ, minusQ := q, q
		plusQ.SetIndex(i, q.At(i)+fdEpsPosition)
		minusQ.SetIndex(i, q.At(i)-fdEpsPosition)
		plus := j.relativeTransformAt(plusQ)
		minus := j.relativeTransformAt(minusQ)

		dRot := centerRotT.Mul3(plus.Rot.Sub(minus.Rot)).Mul(1 / (2 * fdEpsPosition))
		dTrans := spatialmath.Mat3MulVec(centerRotT,
			plus.Trans.Sub(minus.Trans).Mul(1/(2*fdEpsPosition)))

		col := spatialmath.SpatialVector{Angular: spatialmath.Unskew(dRot), Linear: dTrans}
		for r := 0; r < 6; r++ {
			out.Set(r, i, col.At(r))
		}
	}
	return out
}

// FiniteDifferenceRelativeJacobianTimeDeriv recovers the Jacobian time
// derivative by centrally differencing the Jacobian along the velocity
// direction dq.
func (j *Free) FiniteDifferenceRelativeJacobianTimeDeriv(q, dq spatialmath.SpatialVector) *mat.Dense {
	plusQ := q.Add(dq.Mul(fdEpsPosition))
	minusQ := q.Sub(dq.Mul(fdEpsPosition))

	var out mat.Dense
	out.Sub(j.RelativeJacobianAt(plusQ), j.RelativeJacobianAt(minusQ))
	out.Scale(1/(2*fdEpsPosition), &out)
	return &out
}

// FiniteDifferenceRelativeJacobianDeriv recovers the partial derivative of
// the relative Jacobian with respect to generalized coordinate index by
// central differences about q.
func (j *Free) FiniteDifferenceRelativeJacobianDeriv(
	q spatialmath.SpatialVector,
	index int,
) (*mat.Dense, error) {
	if index < 0 || index >= 6 {
		return nil, errors.Errorf("generalized coordinate index %d out of range", index)
	}
	plusQ, minusQ := q, q
	plusQ.SetIndex(index, q.At(index)+fdEpsPosition)
	minusQ.SetIndex(index, q.At(index)-fdEpsPosition)

	var out mat.Dense
	out.Sub(j.RelativeJacobianAt(plusQ), j.RelativeJacobianAt(minusQ))
	out.Scale(1/(2*fdEpsPosition), &out)
	return &out, nil
}

// FiniteDifferenceRelativeJacobianTimeDerivDerivWrtPosition recovers the
// derivative of the Jacobian time derivative with respect to generalized
// coordinate index by central differences about (q, dq).
func (j *Free) FiniteDifferenceRelativeJacobianTimeDerivDerivWrtPosition(
	q, dq spatialmath.SpatialVector,
	index int,
) (*mat.Dense, error) {
	if index < 0 || index >= 6 {
		return nil, errors.Errorf("generalized coordinate index %d out of range", index)
	}
	plusQ, minusQ := q, q
	plusQ.SetIndex(index, q.At(index)+fdEpsPosition)
	minusQ.SetIndex(index, q.At(index)-fdEpsPosition)

	var out mat.Dense
	out.Sub(j.RelativeJacobianTimeDerivAt(plusQ, dq), j.RelativeJacobianTimeDerivAt(minusQ, dq))
	out.Scale(1/(2*fdEpsPosition), &out)
	return &out, nil
}

// FiniteDifferenceRelativeJacobianTimeDerivDerivWrtVelocity recovers the
// derivative of the Jacobian time derivative with respect to generalized
// velocity index by central differences about (q, dq).
func (j *Free) FiniteDifferenceRelativeJacobianTimeDerivDerivWrtVelocity(
	q, dq spatialmath.SpatialVector,
	index int,
) (*mat.Dense, error) {
	if index < 0 || index >= 6 {
		return nil, errors.Errorf("generalized velocity index %d out of range", index)
	}
	plusDq, minusDq := dq, dq
	plusDq.SetIndex(index, dq.At(index)+fdEpsVelocity)
	minusDq.SetIndex(index, dq.At(index)-fdEpsVelocity)

	var out mat.Dense
	out.Sub(j.RelativeJacobianTimeDerivAt(q, plusDq), j.RelativeJacobianTimeDerivAt(q, minusDq))
	out.Scale(1/(2*fdEpsVelocity), &out)
	return &out, nil
}

// FiniteDifferencePosPosJacobian recovers d(next positions)/d(positions) of
// the explicit position integrator by central differences.
func (j *Free) FiniteDifferencePosPosJacobian(q, dq spatialmath.SpatialVector, dt float64) *mat.Dense {
	out := spatialmath.NewMat6()
	for i := 0; i < 6; i++ {
		plusQ, minusQ := q, q
		plusQ.SetIndex(i, q.At(i)+fdEpsPosition)
		minusQ.SetIndex(i, q.At(i)-fdEpsPosition)

		col := j.IntegratePositionsExplicit(plusQ, dq, dt).
			Sub(j.IntegratePositionsExplicit(minusQ, dq, dt)).
			Mul(1 / (2 * fdEpsPosition))
		for r := 0; r < 6; r++ {
			out.Set(r, i, col.At(r))
		}
	}
	return out
}

// FiniteDifferenceVelPosJacobian recovers d(next positions)/d(velocities)
// of the explicit position integrator by central differences.
func (j *Free) FiniteDifferenceVelPosJacobian(q, dq spatialmath.SpatialVector, dt float64) *mat.Dense {
	out := spatialmath.NewMat6()
	for i := 0; i < 6; i++ {
		plusDq, minusDq := dq, dq
		plusDq.SetIndex(i, dq.At(i)+fdEpsVelocity)
		minusDq.SetIndex(i, dq.At(i)-fdEpsVelocity)

		col := j.IntegratePositionsExplicit(q, plusDq, dt).
			Sub(j.IntegratePositionsExplicit(q, minusDq, dt)).
			Mul(1 / (2 * fdEpsVelocity))
		for r := 0; r < 6; r++ {
			out.Set(r, i, col.At(r))
		}
	}
	return out
}
