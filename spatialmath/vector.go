// Package spatialmath defines the spatial algebra used for articulated
// rigid-body kinematics: SO(3) exponential/logarithm maps and their
// Jacobians, rigid transforms, and six-dimensional spatial vectors with
// their adjoint actions.
package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

func mglVec3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func r3Vec(v mgl64.Vec3) r3.Vector {
	return r3.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// rotate applies a 3x3 matrix to an r3 vector.
func rotate(m mgl64.Mat3, v r3.Vector) r3.Vector {
	return r3Vec(m.Mul3x1(mglVec3(v)))
}

// Mat3MulVec applies a 3x3 matrix to an r3 vector.
func Mat3MulVec(m mgl64.Mat3, v r3.Vector) r3.Vector {
	return rotate(m, v)
}

// Mat3Col returns column i of a 3x3 matrix as an r3 vector.
func Mat3Col(m mgl64.Mat3, i int) r3.Vector {
	return r3Vec(m.Col(i))
}

// Mat3Row returns row i of a 3x3 matrix as an r3 vector.
func Mat3Row(m mgl64.Mat3, i int) r3.Vector {
	return r3Vec(m.Row(i))
}
