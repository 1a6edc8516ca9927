// Command freefall integrates a tumbling free body under gravity with each
// coordinate convention and logs its pose, exercising the joint kinematics
// end to end.
package main

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"go.viam.com/dynamics/joint"
	"go.viam.com/dynamics/referenceframe"
	"go.viam.com/dynamics/spatialmath"
)

func main() {
	logger := golog.NewDevelopmentLogger("freefall")

	for _, convention := range []struct {
		name  string
		value joint.Convention
	}{
		{"analytic", joint.AnalyticJacobian},
		{"identity", joint.IdentityJacobian},
	} {
		simulate(logger.Named(convention.name), convention.value)
	}
}

func simulate(logger golog.Logger, convention joint.Convention) {
	j := joint.NewFree("tumbler", nil, convention, logger)
	world := referenceframe.World()

	if err := j.SetSpatialVelocity(spatialmath.SpatialVector{
		Angular: r3.Vector{X: 0.4, Z: 1.2},
		Linear:  r3.Vector{X: 2, Z: 5},
	}, world, world); err != nil {
		logger.Fatalw("cannot set launch velocity", "error", err)
	}

	gravity := r3.Vector{Z: -9.81}
	const (
		dt    = 1e-3
		steps = 2000
	)

	for step := 0; step < steps; step++ {
		if err := j.SetLinearAcceleration(gravity, world, world); err != nil {
			logger.Fatalw("cannot apply gravity", "error", err)
		}
		if err := j.IntegrateVelocities(dt); err != nil {
			logger.Fatalw("cannot integrate velocities", "error", err)
		}
		j.IntegratePositions(dt)

		if step%200 == 0 {
			pose := j.Child().WorldTransform()
			logger.Infow("body state",
				"t", float64(step)*dt,
				"position", pose.Trans,
				"rotation", spatialmath.LogMap(pose.Rot),
			)
		}
	}
}
