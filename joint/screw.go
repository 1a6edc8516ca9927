package joint

import (
	"github.com/pkg/errors"

	"go.viam.com/dynamics/spatialmath"
)

// screwEps is the perturbation used for screw-axis gradients; the screw
// axes vary smoothly so a very small step keeps truncation error below the
// gradient consumers' tolerance.
const screwEps = 5e-9

// WorldAxisScrewAt computes the world-frame screw axis of generalized
// coordinate dof at the given positions, without moving the joint. The
// screw is taken relative to the parent body, since moving the joint moves
// the child along with it.
func (j *Free) WorldAxisScrewAt(q spatialmath.SpatialVector, dof int) (spatialmath.SpatialVector, error) {
	if dof < 0 || dof >= 6 {
		return spatialmath.SpatialVector{}, errors.Errorf("degree of freedom %d out of range", dof)
	}

	var screw spatialmath.SpatialVector
	if dof < 3 {
		screw.Angular = spatialmath.Mat3Col(spatialmath.ExpMapJac(q.Angular), dof)
		// Shift so the rotation takes place about the joint's translated
		// origin.
		screw = spatialmath.Ad(spatialmath.NewTranslation(q.Linear), screw)
	} else {
		screw.SetIndex(dof, 1)
	}

	parentTwist := spatialmath.Ad(j.parentBodyToJoint, screw)
	return spatialmath.Ad(j.parentWorldTransform(), parentTwist), nil
}

// EstimatePerturbedScrewAxisForPosition returns the world axis screw at
// axisDof after perturbing coordinate rotateDof by eps.
func (j *Free) EstimatePerturbedScrewAxisForPosition(axisDof, rotateDof int, eps float64) (spatialmath.SpatialVector, error) {
	q := j.positions
	q.SetIndex(rotateDof, q.At(rotateDof)+eps)
	return j.WorldAxisScrewAt(q, axisDof)
}

// EstimatePerturbedScrewAxisForForce returns the world force screw at
// axisDof after perturbing coordinate rotateDof by eps.
func (j *Free) EstimatePerturbedScrewAxisForForce(axisDof, rotateDof int, eps float64) (spatialmath.SpatialVector, error) {
	if axisDof < 0 || axisDof >= 6 || rotateDof < 0 || rotateDof >= 6 {
		return spatialmath.SpatialVector{}, errors.Errorf("degrees of freedom (%d, %d) out of range", axisDof, rotateDof)
	}
	q := j.positions
	q.SetIndex(rotateDof, q.At(rotateDof)+eps)

	tf := j.parentWorldTransform().
		Compose(j.parentBodyToJoint).
		Compose(ConvertToTransform(q)).
		Compose(j.childBodyToJoint.Invert())
	return spatialmath.Ad(tf, spatialmath.Mat6Col(j.RelativeJacobianAt(q), axisDof)), nil
}

// ScrewAxisGradientForPosition returns the gradient of the world axis screw
// at axisDof with respect to coordinate rotateDof, by central differences.
func (j *Free) ScrewAxisGradientForPosition(axisDof, rotateDof int) (spatialmath.SpatialVector, error) {
	plus, err := j.EstimatePerturbedScrewAxisForPosition(axisDof, rotateDof, screwEps)
	if err != nil {
		return spatialmath.SpatialVector{}, err
	}
	minus, err := j.EstimatePerturbedScrewAxisForPosition(axisDof, rotateDof, -screwEps)
	if err != nil {
		return spatialmath.SpatialVector{}, err
	}
	return plus.Sub(minus).Mul(1 / (2 * screwEps)), nil
}

// ScrewAxisGradientForForce returns the gradient of the world force screw
// at axisDof with respect to coordinate rotateDof, in closed form.
func (j *Free) ScrewAxisGradientForForce(axisDof, rotateDof int) (spatialmath.SpatialVector, error) {
	if axisDof < 0 || axisDof >= 6 || rotateDof < 0 || rotateDof >= 6 {
		return spatialmath.SpatialVector{}, errors.Errorf("degrees of freedom (%d, %d) out of range", axisDof, rotateDof)
	}

	// Constant with respect to position.
	toRotate := spatialmath.Ad(
		j.childBodyToJoint.Invert(),
		spatialmath.Mat6Col(j.RelativeJacobian(), axisDof))

	var grad spatialmath.SpatialVector
	if rotateDof < 3 {
		// A rotation coordinate behaves like an offset ball joint.
		rot := spatialmath.ExpMapRot(j.positions.Angular)
		screwAxis := spatialmath.Mat3Row(spatialmath.ExpMapJac(j.positions.Angular), rotateDof)
		grad.Angular = spatialmath.Mat3MulVec(rot, screwAxis.Cross(toRotate.Angular))
		grad.Linear = spatialmath.Mat3MulVec(rot, screwAxis.Cross(toRotate.Linear))
		// Re-center at the joint origin without rotating.
		grad = spatialmath.Ad(spatialmath.NewTranslation(j.positions.Linear), grad)
	} else {
		rot := spatialmath.ExpMapRot(j.positions.Angular)
		unit := basisVector(rotateDof - 3)
		grad.Linear = unit.Cross(spatialmath.Mat3MulVec(rot, toRotate.Angular))
	}

	return spatialmath.Ad(j.parentWorldTransform().Compose(j.parentBodyToJoint), grad), nil
}

func (j *Free) parentWorldTransform() spatialmath.RigidTransform {
	if j.parent.IsWorld() {
		return spatialmath.IdentityTransform()
	}
	return j.parent.WorldTransform()
}
