package physics2d

import (
	"time"
)

/// Profiling data for the last step.
type Profile struct {
	Step          time.Duration
	Collide       time.Duration
	Solve         time.Duration
	SolveInit     time.Duration
	SolveVelocity time.Duration
	SolvePosition time.Duration
	Broadphase    time.Duration
}

/// This is an internal structure.
type timeStep struct {
	dt                 float64 // time step
	invDt              float64 // inverse time step (0 if dt == 0).
	dtRatio            float64 // dt * invDt0
	velocityIterations int
	positionIterations int
	warmStarting       bool
}

/// This is an internal structure.
type position struct {
	c Vec2
	a float64
}

/// This is an internal structure.
type velocity struct {
	v Vec2
	w float64
}

/// Solver Data
type solverData struct {
	step       timeStep
	positions  []position
	velocities []velocity
}
