package referenceframe

import (
	"go.viam.com/dynamics/spatialmath"
)

type worldFrame struct{}

var world = &worldFrame{}

// World returns the distinguished world frame singleton. Its transform is
// the identity and its twists are zero; frame comparisons against it are by
// identity, so every caller shares this one value.
func World() Frame {
	return world
}

func (w *worldFrame) Name() string { return "world" }

func (w *worldFrame) WorldTransform() spatialmath.RigidTransform {
	return spatialmath.IdentityTransform()
}

func (w *worldFrame) WorldSpatialVelocity() spatialmath.SpatialVector {
	return spatialmath.SpatialVector{}
}

func (w *worldFrame) WorldSpatialAcceleration() spatialmath.SpatialVector {
	return spatialmath.SpatialVector{}
}

func (w *worldFrame) IsWorld() bool { return true }

type staticFrame struct {
	name string
	pose spatialmath.RigidTransform
	vel  spatialmath.SpatialVector
	acc  spatialmath.SpatialVector
}

// NewStaticFrame returns a frame fixed at the given world pose with zero
// velocity and acceleration.
func NewStaticFrame(name string, pose spatialmath.RigidTransform) Frame {
	return &staticFrame{name: name, pose: pose}
}

// NewMovingFrame returns a frame at the given world pose carrying the given
// body-frame twist and twist rate relative to the world.
func NewMovingFrame(name string, pose spatialmath.RigidTransform, vel, acc spatialmath.SpatialVector) Frame {
	return &staticFrame{name: name, pose: pose, vel: vel, acc: acc}
}

func (f *staticFrame) Name() string { return f.name }

func (f *staticFrame) WorldTransform() spatialmath.RigidTransform { return f.pose }

func (f *staticFrame) WorldSpatialVelocity() spatialmath.SpatialVector { return f.vel }

func (f *staticFrame) WorldSpatialAcceleration() spatialmath.SpatialVector { return f.acc }

func (f *staticFrame) IsWorld() bool { return false }
