package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// NewMat6 returns a zeroed 6x6 matrix.
func NewMat6() *mat.Dense {
	return mat.NewDense(6, 6, nil)
}

// SetMat3Block writes a 3x3 block into a 6x6 matrix at the given corner.
func SetMat3Block(dst *mat.Dense, row, col int, block mgl64.Mat3) {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			dst.Set(row+r, col+c, block.At(r, c))
		}
	}
}

// Mat3Block reads the 3x3 block of a 6x6 matrix at the given corner.
func Mat3Block(src mat.Matrix, row, col int) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{src.At(row, col), src.At(row, col+1), src.At(row, col+2)},
		mgl64.Vec3{src.At(row+1, col), src.At(row+1, col+1), src.At(row+1, col+2)},
		mgl64.Vec3{src.At(row+2, col), src.At(row+2, col+1), src.At(row+2, col+2)},
	)
}

// Mat6MulVec multiplies a 6x6 matrix by a spatial vector.
func Mat6MulVec(m mat.Matrix, v SpatialVector) SpatialVector {
	var out SpatialVector
	for r := 0; r < 6; r++ {
		var sum float64
		for c := 0; c < 6; c++ {
			sum += m.At(r, c) * v.At(c)
		}
		out.SetIndex(r, sum)
	}
	return out
}

// Mat6Inverse inverts a 6x6 matrix.
func Mat6Inverse(m mat.Matrix) (*mat.Dense, error) {
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return nil, errors.Wrap(err, "cannot invert 6x6 matrix")
	}
	return &inv, nil
}

// Mat6SolveVec solves m * x = v for x.
func Mat6SolveVec(m mat.Matrix, v SpatialVector) (SpatialVector, error) {
	inv, err := Mat6Inverse(m)
	if err != nil {
		return SpatialVector{}, err
	}
	return Mat6MulVec(inv, v), nil
}

// AdMatrix returns the 6x6 adjoint matrix of a rigid transform, the matrix
// form of Ad(tf, v).
func AdMatrix(tf RigidTransform) *mat.Dense {
	out := NewMat6()
	SetMat3Block(out, 0, 0, tf.Rot)
	SetMat3Block(out, 3, 0, Skew(tf.Trans).Mul3(tf.Rot))
	SetMat3Block(out, 3, 3, tf.Rot)
	return out
}

// TransformAdjointJacobian applies the adjoint of tf to every column of a
// 6x6 Jacobian.
func TransformAdjointJacobian(tf RigidTransform, jac mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(AdMatrix(tf), jac)
	return &out
}

// Mat6ApproxEqual reports whether two 6x6 matrices agree element-wise
// within tol.
func Mat6ApproxEqual(a, b mat.Matrix, tol float64) bool {
	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			if math.Abs(a.At(r, c)-b.At(r, c)) > tol {
				return false
			}
		}
	}
	return true
}

// Mat6Col extracts column i of a 6x6 matrix as a spatial vector.
func Mat6Col(m mat.Matrix, i int) SpatialVector {
	var out SpatialVector
	for r := 0; r < 6; r++ {
		out.SetIndex(r, m.At(r, i))
	}
	return out
}
