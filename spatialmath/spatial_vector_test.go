package spatialmath

import (
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func randSpatialVector(r *rand.Rand) SpatialVector {
	return SpatialVector{
		Angular: r3.Vector{X: r.NormFloat64(), Y: r.NormFloat64(), Z: r.NormFloat64()},
		Linear:  r3.Vector{X: r.NormFloat64(), Y: r.NormFloat64(), Z: r.NormFloat64()},
	}
}

func TestSpatialVectorIndexing(t *testing.T) {
	v := SpatialVector{
		Angular: r3.Vector{X: 1, Y: 2, Z: 3},
		Linear:  r3.Vector{X: 4, Y: 5, Z: 6},
	}
	for i := 0; i < 6; i++ {
		test.That(t, v.At(i), test.ShouldEqual, float64(i+1))
	}

	var w SpatialVector
	for i := 0; i < 6; i++ {
		w.SetIndex(i, v.At(i))
	}
	test.That(t, w, test.ShouldResemble, v)
}

func TestAdComposition(t *testing.T) {
	r := rand.New(rand.NewSource(10))
	for i := 0; i < 25; i++ {
		t1 := randTransform(r)
		t2 := randTransform(r)
		v := randSpatialVector(r)

		chained := Ad(t1, Ad(t2, v))
		direct := Ad(t1.Compose(t2), v)
		test.That(t, chained.ApproxEqual(direct, 1e-12), test.ShouldBeTrue)
	}
}

func TestAdInverse(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 25; i++ {
		tf := randTransform(r)
		v := randSpatialVector(r)

		test.That(t, AdInv(tf, Ad(tf, v)).ApproxEqual(v, 1e-12), test.ShouldBeTrue)
		test.That(t, AdInv(tf, v).ApproxEqual(Ad(tf.Invert(), v), 1e-12), test.ShouldBeTrue)
	}
}

func TestAdRotationOnly(t *testing.T) {
	r := rand.New(rand.NewSource(12))
	tf := randTransform(r)
	v := randSpatialVector(r)

	pure := NewRigidTransform(tf.Rot, r3.Vector{})
	test.That(t, AdR(tf, v).ApproxEqual(Ad(pure, v), 1e-13), test.ShouldBeTrue)
}

func TestAdMatrixAgreesWithAd(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	for i := 0; i < 10; i++ {
		tf := randTransform(r)
		v := randSpatialVector(r)
		test.That(t,
			Mat6MulVec(AdMatrix(tf), v).ApproxEqual(Ad(tf, v), 1e-12),
			test.ShouldBeTrue)
	}
}

func TestMat6SolveVec(t *testing.T) {
	r := rand.New(rand.NewSource(14))
	tf := randTransform(r)
	v := randSpatialVector(r)

	solved, err := Mat6SolveVec(AdMatrix(tf), Ad(tf, v))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, solved.ApproxEqual(v, 1e-10), test.ShouldBeTrue)

	t.Run("singular", func(t *testing.T) {
		_, err := Mat6SolveVec(NewMat6(), v)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestSpatialCross(t *testing.T) {
	r := rand.New(rand.NewSource(15))
	v1 := randSpatialVector(r)
	v2 := randSpatialVector(r)

	// Antisymmetry of the bracket.
	test.That(t,
		SpatialCross(v1, v2).ApproxEqual(SpatialCross(v2, v1).Mul(-1), 1e-13),
		test.ShouldBeTrue)
	test.That(t, SpatialCross(v1, v1).ApproxEqual(SpatialVector{}, 1e-13), test.ShouldBeTrue)

	// The bracket commutes with frame changes through the adjoint.
	tf := randTransform(r)
	lhs := Ad(tf, SpatialCross(v1, v2))
	rhs := SpatialCross(Ad(tf, v1), Ad(tf, v2))
	test.That(t, lhs.ApproxEqual(rhs, 1e-12), test.ShouldBeTrue)
}
