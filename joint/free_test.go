package joint

import (
	"math"
	"math/rand"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/dynamics/referenceframe"
	"go.viam.com/dynamics/spatialmath"
)

func randVec(r *rand.Rand) r3.Vector {
	return r3.Vector{X: r.NormFloat64(), Y: r.NormFloat64(), Z: r.NormFloat64()}
}

// randRotVec returns a rotation vector with norm at most maxNorm, bounded
// away from the log-map branch cut.
func randRotVec(r *rand.Rand, maxNorm float64) r3.Vector {
	v := randVec(r)
	n := v.Norm()
	if n == 0 {
		return r3.Vector{X: maxNorm / 2}
	}
	return v.Mul((0.01 + 0.99*r.Float64()) * maxNorm / n)
}

func randPositions(r *rand.Rand) spatialmath.SpatialVector {
	return spatialmath.SpatialVector{Angular: randRotVec(r, 2.5), Linear: randVec(r)}
}

func randVelocities(r *rand.Rand) spatialmath.SpatialVector {
	return spatialmath.SpatialVector{Angular: randVec(r), Linear: randVec(r)}
}

func randTestTransform(r *rand.Rand) spatialmath.RigidTransform {
	return spatialmath.NewRigidTransform(spatialmath.ExpMapRot(randRotVec(r, 2.5)), randVec(r))
}

// newOffsetJoint returns a world-attached joint with random fixed offsets,
// the configuration that exercises every term of the Jacobian blocks.
func newOffsetJoint(t *testing.T, r *rand.Rand, convention Convention) *Free {
	t.Helper()
	j := NewFree("offset", nil, convention, golog.NewTestLogger(t))
	j.SetOffsetTransforms(randTestTransform(r), randTestTransform(r))
	return j
}

func eye6() *mat.Dense {
	out := spatialmath.NewMat6()
	for i := 0; i < 6; i++ {
		out.Set(i, i, 1)
	}
	return out
}

func TestConvertRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(30))
	for i := 0; i < 100; i++ {
		q := randPositions(r)
		back := ConvertToPositions(ConvertToTransform(q))
		test.That(t, back.ApproxEqual(q, 1e-10), test.ShouldBeTrue)

		tf := randTestTransform(r)
		test.That(t,
			ConvertToTransform(ConvertToPositions(tf)).ApproxEqual(tf, 1e-10),
			test.ShouldBeTrue)
	}

	t.Run("translation is copied, not rotated", func(t *testing.T) {
		q := spatialmath.SpatialVector{
			Angular: r3.Vector{Z: math.Pi / 2},
			Linear:  r3.Vector{X: 1},
		}
		tf := ConvertToTransform(q)
		test.That(t, tf.Trans.X, test.ShouldAlmostEqual, 1, 1e-15)
		test.That(t, tf.Trans.Y, test.ShouldAlmostEqual, 0, 1e-15)
	})
}

func TestRelativeTransform(t *testing.T) {
	r := rand.New(rand.NewSource(31))
	parentPose := randTestTransform(r)
	parent := referenceframe.NewStaticFrame("parent", parentPose)
	j := NewFree("j", parent, AnalyticJacobian, golog.NewTestLogger(t))

	parentToJoint := randTestTransform(r)
	childToJoint := randTestTransform(r)
	j.SetOffsetTransforms(parentToJoint, childToJoint)

	q := randPositions(r)
	j.SetPositions(q)

	want := parentToJoint.Compose(ConvertToTransform(q)).Compose(childToJoint.Invert())
	test.That(t, j.RelativeTransform().ApproxEqual(want, 1e-12), test.ShouldBeTrue)

	childWorld := j.Child().WorldTransform()
	test.That(t, childWorld.ApproxEqual(parentPose.Compose(want), 1e-12), test.ShouldBeTrue)

	t.Run("cache invalidation", func(t *testing.T) {
		q2 := randPositions(r)
		j.SetPositions(q2)
		want2 := parentToJoint.Compose(ConvertToTransform(q2)).Compose(childToJoint.Invert())
		test.That(t, j.RelativeTransform().ApproxEqual(want2, 1e-12), test.ShouldBeTrue)
	})
}

func TestRelativeJacobianZeroPositions(t *testing.T) {
	t.Run("no offsets", func(t *testing.T) {
		j := NewFree("j", nil, AnalyticJacobian, golog.NewTestLogger(t))
		test.That(t, spatialmath.Mat6ApproxEqual(j.RelativeJacobian(), eye6(), 1e-13), test.ShouldBeTrue)
	})

	t.Run("child offset", func(t *testing.T) {
		r := rand.New(rand.NewSource(32))
		j := NewFree("j", nil, AnalyticJacobian, golog.NewTestLogger(t))
		childToJoint := randTestTransform(r)
		j.SetOffsetTransforms(randTestTransform(r), childToJoint)
		test.That(t,
			spatialmath.Mat6ApproxEqual(j.RelativeJacobian(), spatialmath.AdMatrix(childToJoint), 1e-13),
			test.ShouldBeTrue)
	})

	t.Run("time derivative vanishes at rest", func(t *testing.T) {
		r := rand.New(rand.NewSource(33))
		j := newOffsetJoint(t, r, AnalyticJacobian)
		j.SetPositions(randPositions(r))
		test.That(t,
			spatialmath.Mat6ApproxEqual(j.RelativeJacobianTimeDeriv(), spatialmath.NewMat6(), 1e-14),
			test.ShouldBeTrue)
	})
}

func TestRelativeJacobianInvertible(t *testing.T) {
	r := rand.New(rand.NewSource(34))
	j := newOffsetJoint(t, r, AnalyticJacobian)
	for i := 0; i < 100; i++ {
		jac := j.RelativeJacobianAt(randPositions(r))
		inv, err := spatialmath.Mat6Inverse(jac)
		test.That(t, err, test.ShouldBeNil)

		var prod mat.Dense
		prod.Mul(jac, inv)
		test.That(t, spatialmath.Mat6ApproxEqual(&prod, eye6(), 1e-10), test.ShouldBeTrue)
	}
}

func TestRelativeJacobianAgainstFiniteDifference(t *testing.T) {
	r := rand.New(rand.NewSource(35))
	for _, convention := range []Convention{AnalyticJacobian, IdentityJacobian} {
		j := newOffsetJoint(t, r, convention)
		if convention == AnalyticJacobian {
			for i := 0; i < 10; i++ {
				q := randPositions(r)
				test.That(t,
					spatialmath.Mat6ApproxEqual(
						j.RelativeJacobianAt(q),
						j.FiniteDifferenceRelativeJacobian(q),
						1e-6),
					test.ShouldBeTrue)
			}
		} else {
			// Under the identity convention the Jacobian is the constant
			// child offset adjoint by definition, not the derivative of the
			// relative transform.
			_, childToJoint := j.OffsetTransforms()
			test.That(t,
				spatialmath.Mat6ApproxEqual(
					j.RelativeJacobianAt(randPositions(r)),
					spatialmath.AdMatrix(childToJoint),
					1e-13),
				test.ShouldBeTrue)
		}
	}
}

func TestJacobianTimeDerivAgainstFiniteDifference(t *testing.T) {
	r := rand.New(rand.NewSource(36))
	j := newOffsetJoint(t, r, AnalyticJacobian)
	for i := 0; i < 10; i++ {
		q := randPositions(r)
		dq := randVelocities(r)
		test.That(t,
			spatialmath.Mat6ApproxEqual(
				j.RelativeJacobianTimeDerivAt(q, dq),
				j.FiniteDifferenceRelativeJacobianTimeDeriv(q, dq),
				1e-6),
			test.ShouldBeTrue)
	}
}

func TestJacobianDerivAgainstFiniteDifference(t *testing.T) {
	r := rand.New(rand.NewSource(37))
	j := newOffsetJoint(t, r, AnalyticJacobian)
	for i := 0; i < 10; i++ {
		q := randPositions(r)
		for index := 0; index < 6; index++ {
			analytic, err := j.RelativeJacobianDerivAt(q, index)
			test.That(t, err, test.ShouldBeNil)
			fd, err := j.FiniteDifferenceRelativeJacobianDeriv(q, index)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, spatialmath.Mat6ApproxEqual(analytic, fd, 1e-6), test.ShouldBeTrue)
		}
	}

	t.Run("out of range", func(t *testing.T) {
		_, err := j.RelativeJacobianDeriv(6)
		test.That(t, err, test.ShouldNotBeNil)
		_, err = j.RelativeJacobianDeriv(-1)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestJacobianTimeDerivDerivWrtPositionAgainstFiniteDifference(t *testing.T) {
	r := rand.New(rand.NewSource(38))
	j := newOffsetJoint(t, r, AnalyticJacobian)
	for i := 0; i < 10; i++ {
		q := randPositions(r)
		dq := randVelocities(r)
		for index := 0; index < 6; index++ {
			analytic, err := j.RelativeJacobianTimeDerivDerivWrtPositionAt(q, dq, index)
			test.That(t, err, test.ShouldBeNil)
			fd, err := j.FiniteDifferenceRelativeJacobianTimeDerivDerivWrtPosition(q, dq, index)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, spatialmath.Mat6ApproxEqual(analytic, fd, 1e-6), test.ShouldBeTrue)
		}
	}
}

func TestJacobianTimeDerivDerivWrtVelocityAgainstFiniteDifference(t *testing.T) {
	r := rand.New(rand.NewSource(39))
	j := newOffsetJoint(t, r, AnalyticJacobian)
	for i := 0; i < 10; i++ {
		q := randPositions(r)
		dq := randVelocities(r)
		for index := 0; index < 6; index++ {
			analytic, err := j.RelativeJacobianTimeDerivDerivWrtVelocityAt(q, index)
			test.That(t, err, test.ShouldBeNil)
			fd, err := j.FiniteDifferenceRelativeJacobianTimeDerivDerivWrtVelocity(q, dq, index)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, spatialmath.Mat6ApproxEqual(analytic, fd, 1e-6), test.ShouldBeTrue)
		}
	}
}

func TestIdentityConventionDerivativesVanish(t *testing.T) {
	r := rand.New(rand.NewSource(40))
	j := newOffsetJoint(t, r, IdentityJacobian)
	j.SetPositions(randPositions(r))
	j.SetVelocities(randVelocities(r))

	test.That(t,
		spatialmath.Mat6ApproxEqual(j.RelativeJacobianTimeDeriv(), spatialmath.NewMat6(), 0),
		test.ShouldBeTrue)
	for index := 0; index < 6; index++ {
		deriv, err := j.RelativeJacobianDeriv(index)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, spatialmath.Mat6ApproxEqual(deriv, spatialmath.NewMat6(), 0), test.ShouldBeTrue)
	}
}

func TestRelativeJacobianInPositionSpace(t *testing.T) {
	r := rand.New(rand.NewSource(41))

	t.Run("zero positions", func(t *testing.T) {
		j := newOffsetJoint(t, r, AnalyticJacobian)
		_, childToJoint := j.OffsetTransforms()
		test.That(t,
			spatialmath.Mat6ApproxEqual(
				j.RelativeJacobianInPositionSpace(spatialmath.SpatialVector{}),
				spatialmath.AdMatrix(childToJoint),
				1e-13),
			test.ShouldBeTrue)
	})

	t.Run("rotation block without offsets", func(t *testing.T) {
		j := NewFree("j", nil, AnalyticJacobian, golog.NewTestLogger(t))
		q := randPositions(r)
		got := spatialmath.Mat3Block(j.RelativeJacobianInPositionSpace(q), 0, 0)
		want := spatialmath.RightJacobian(q.Angular)
		for row := 0; row < 3; row++ {
			for col := 0; col < 3; col++ {
				test.That(t, got.At(row, col), test.ShouldAlmostEqual, want.At(row, col), 1e-13)
			}
		}
	})
}

func TestIsCyclic(t *testing.T) {
	j := NewFree("j", nil, AnalyticJacobian, golog.NewTestLogger(t))
	for i := 0; i < 6; i++ {
		test.That(t, j.IsCyclic(i), test.ShouldEqual, i < 3)
	}
}

type fixedJoint struct{}

func (fixedJoint) Name() string      { return "welded" }
func (fixedJoint) JointType() string { return "fixed" }

func TestSetJointTransformCapability(t *testing.T) {
	logger := golog.NewTestLogger(t)
	tf := spatialmath.NewTranslation(r3.Vector{X: 1})

	t.Run("free joint accepts", func(t *testing.T) {
		j := NewFree("j", nil, AnalyticJacobian, logger)
		err := SetJointTransform(j, tf, referenceframe.World(), logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, j.Child().WorldTransform().ApproxEqual(tf, 1e-12), test.ShouldBeTrue)
	})

	t.Run("incapable joint errors", func(t *testing.T) {
		err := SetJointTransform(fixedJoint{}, tf, referenceframe.World(), logger)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("nil joint errors", func(t *testing.T) {
		err := SetJointTransform(nil, tf, referenceframe.World(), logger)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestJointMetadata(t *testing.T) {
	j := NewFree("chassis", nil, IdentityJacobian, golog.NewTestLogger(t))
	test.That(t, j.Name(), test.ShouldEqual, "chassis")
	test.That(t, j.JointType(), test.ShouldEqual, "free")
	test.That(t, j.Convention(), test.ShouldEqual, IdentityJacobian)
	test.That(t, j.Parent().IsWorld(), test.ShouldBeTrue)
	test.That(t, j.Child().Name(), test.ShouldEqual, "chassis_body")
	test.That(t, j.Child().Joint() == j, test.ShouldBeTrue)
}
