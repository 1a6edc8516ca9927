package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

const (
	// Below this rotation angle the closed-form map coefficients lose
	// precision to cancellation and series expansions take over.
	smallAngle = 1e-5
	// Coefficient derivatives cancel much more aggressively, so their
	// series kick in earlier.
	seriesAngle = 0.1
	// Guard band around the log-map branch cut at theta = pi.
	nearPi = 1e-6
)

// Skew returns the skew-symmetric cross-product matrix of v, so that
// Skew(a).Mul3x1(b) == a x b.
func Skew(v r3.Vector) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{0, -v.Z, v.Y},
		mgl64.Vec3{v.Z, 0, -v.X},
		mgl64.Vec3{-v.Y, v.X, 0},
	)
}

// Unskew extracts the vector of a skew-symmetric matrix, averaging the two
// off-diagonal triangles.
func Unskew(m mgl64.Mat3) r3.Vector {
	return r3.Vector{
		X: 0.5 * (m.At(2, 1) - m.At(1, 2)),
		Y: 0.5 * (m.At(0, 2) - m.At(2, 0)),
		Z: 0.5 * (m.At(1, 0) - m.At(0, 1)),
	}
}

// ExpMapRot converts a rotation vector to a rotation matrix by Rodrigues'
// formula.
func ExpMapRot(v r3.Vector) mgl64.Mat3 {
	theta := v.Norm()
	s := Skew(v)
	s2 := s.Mul3(s)
	if theta < smallAngle {
		return mgl64.Ident3().Add(s).Add(s2.Mul(0.5))
	}
	return mgl64.Ident3().
		Add(s.Mul(math.Sin(theta) / theta)).
		Add(s2.Mul((1 - math.Cos(theta)) / (theta * theta)))
}

// LogMap recovers the rotation vector of a rotation matrix, the inverse of
// ExpMapRot for angles below pi. Near the branch cut at theta = pi the axis
// is read off the diagonal with signs taken from the skew part; the caller
// gets a finite answer rather than NaN on either side of the cut. The input
// must be a proper rotation; anything else is a precondition violation.
func LogMap(m mgl64.Mat3) r3.Vector {
	cosTheta := 0.5 * (m.Trace() - 1)
	theta := math.Acos(math.Max(-1, math.Min(1, cosTheta)))

	if theta > math.Pi-nearPi {
		delta := 0.5 + 0.125*(math.Pi-theta)*(math.Pi-theta)
		v := r3.Vector{
			X: theta * math.Sqrt(math.Max(0, 1+(m.At(0, 0)-1)*delta)),
			Y: theta * math.Sqrt(math.Max(0, 1+(m.At(1, 1)-1)*delta)),
			Z: theta * math.Sqrt(math.Max(0, 1+(m.At(2, 2)-1)*delta)),
		}
		if m.At(2, 1) <= m.At(1, 2) {
			v.X = -v.X
		}
		if m.At(0, 2) <= m.At(2, 0) {
			v.Y = -v.Y
		}
		if m.At(1, 0) <= m.At(0, 1) {
			v.Z = -v.Z
		}
		return v
	}

	var alpha float64
	if theta > smallAngle {
		alpha = 0.5 * theta / math.Sin(theta)
	} else {
		alpha = 0.5 + theta*theta/12
	}
	return r3.Vector{
		X: alpha * (m.At(2, 1) - m.At(1, 2)),
		Y: alpha * (m.At(0, 2) - m.At(2, 0)),
		Z: alpha * (m.At(1, 0) - m.At(0, 1)),
	}
}

// ExpMapJac returns the left Jacobian of the exponential map at v, the
// transpose of RightJacobian(v).
func ExpMapJac(v r3.Vector) mgl64.Mat3 {
	a, b := so3Coeffs(v.Norm())
	s := Skew(v)
	return mgl64.Ident3().Add(s.Mul(a)).Add(s.Mul3(s).Mul(b))
}

// RightJacobian returns the right Jacobian of SO(3) at v: the matrix Jr such
// that the body-frame angular velocity of exp(v(t)) is Jr(v) * dv/dt.
func RightJacobian(v r3.Vector) mgl64.Mat3 {
	a, b := so3Coeffs(v.Norm())
	s := Skew(v)
	return mgl64.Ident3().Sub(s.Mul(a)).Add(s.Mul3(s).Mul(b))
}

// RightJacobianTimeDeriv returns d/dt of RightJacobian along the rate dv.
// The result is linear in dv.
func RightJacobianTimeDeriv(v, dv r3.Vector) mgl64.Mat3 {
	t := v.Norm()
	a, b := so3Coeffs(t)
	ga, gb := so3CoeffRates(t)
	c := v.Dot(dv)
	s := Skew(v)
	sd := Skew(dv)
	anticomm := s.Mul3(sd).Add(sd.Mul3(s))
	return s.Mul(-ga * c).
		Add(sd.Mul(-a)).
		Add(s.Mul3(s).Mul(gb * c)).
		Add(anticomm.Mul(b))
}

// RightJacobianTimeDerivDeriv returns the partial derivative of
// RightJacobianTimeDeriv(v, dv) with respect to component index of v.
func RightJacobianTimeDerivDeriv(v, dv r3.Vector, index int) mgl64.Mat3 {
	t := v.Norm()
	_, b := so3Coeffs(t)
	ga, gb := so3CoeffRates(t)
	ka, kb := so3CoeffCurvatures(t)
	c := v.Dot(dv)
	vi := vecComponent(v, index)
	dvi := vecComponent(dv, index)

	s := Skew(v)
	sd := Skew(dv)
	se := Skew(basisVec(index))
	s2 := s.Mul3(s)
	sSd := s.Mul3(sd).Add(sd.Mul3(s))
	seS := se.Mul3(s).Add(s.Mul3(se))
	seSd := se.Mul3(sd).Add(sd.Mul3(se))

	return s.Mul(-(ka*vi*c + ga*dvi)).
		Add(se.Mul(-ga * c)).
		Add(sd.Mul(-ga * vi)).
		Add(s2.Mul(kb*vi*c + gb*dvi)).
		Add(seS.Mul(gb * c)).
		Add(sSd.Mul(gb * vi)).
		Add(seSd.Mul(b))
}

// so3Coeffs returns a = (1-cos t)/t^2 and b = (t-sin t)/t^3.
func so3Coeffs(t float64) (a, b float64) {
	if t < seriesAngle {
		t2 := t * t
		t4 := t2 * t2
		t6 := t4 * t2
		a = 0.5 - t2/24 + t4/720 - t6/40320
		b = 1.0/6.0 - t2/120 + t4/5040 - t6/362880
		return a, b
	}
	t2 := t * t
	a = (1 - math.Cos(t)) / t2
	b = (t - math.Sin(t)) / (t2 * t)
	return a, b
}

// so3CoeffRates returns a'(t)/t and b'(t)/t, the forms that stay finite as
// t -> 0 when chained with v.Dot(dv).
func so3CoeffRates(t float64) (ga, gb float64) {
	if t < seriesAngle {
		t2 := t * t
		t4 := t2 * t2
		ga = -1.0/12.0 + t2/180 - t4/6720
		gb = -1.0/60.0 + t2/1260 - t4/60480
		return ga, gb
	}
	t2 := t * t
	t3 := t2 * t
	t4 := t2 * t2
	t5 := t4 * t
	sin, cos := math.Sincos(t)
	ga = sin/t3 - 2*(1-cos)/t4
	gb = (1-cos)/t4 - 3*(t-sin)/t5
	return ga, gb
}

// so3CoeffCurvatures returns (d/dt of a'(t)/t)/t and the same for b, again
// in a form finite at t = 0.
func so3CoeffCurvatures(t float64) (ka, kb float64) {
	if t < seriesAngle {
		t2 := t * t
		t4 := t2 * t2
		ka = 1.0/90.0 - t2/1680 + t4/75600
		kb = 1.0/630.0 - t2/15120 + t4/831600
		return ka, kb
	}
	t2 := t * t
	t4 := t2 * t2
	t5 := t4 * t
	t6 := t4 * t2
	t7 := t6 * t
	sin, cos := math.Sincos(t)
	ka = cos/t4 - 5*sin/t5 + 8*(1-cos)/t6
	kb = sin/t5 - 7*(1-cos)/t6 + 15*(t-sin)/t7
	return ka, kb
}

func basisVec(index int) r3.Vector {
	switch index {
	case 0:
		return r3.Vector{X: 1}
	case 1:
		return r3.Vector{Y: 1}
	default:
		return r3.Vector{Z: 1}
	}
}

func vecComponent(v r3.Vector, index int) float64 {
	switch index {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
