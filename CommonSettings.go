package physics2d

import "math"

func assert(ok bool, msg string) {
	if !ok {
		panic("physics2d: " + msg)
	}
}

const MaxFloat = math.MaxFloat64

/// Epsilon is the smallest length treated as non-zero by normalization.
const Epsilon = 1e-12

/// @file
/// Global tuning constants based on meters-kilograms-seconds (MKS) units.
///

// Collision

/// The maximum number of contact points between two convex shapes.
const MaxManifoldPoints = 2

/// The maximum number of vertices on a convex polygon.
const MaxPolygonVertices = 8

/// This is used to fatten AABBs in the dynamic tree. This allows proxies
/// to move by a small amount without triggering a tree adjustment.
/// This is in meters.
const AABBExtension = 0.1

/// This is used to fatten AABBs in the dynamic tree. This is used to predict
/// the future position based on the current displacement.
/// This is a dimensionless multiplier.
const AABBMultiplier = 2.0

/// A small length used as a collision and constraint tolerance. Penetration
/// below this depth is left alone by position correction.
const LinearSlop = 0.005

/// A small angle used as a joint limit tolerance.
const AngularSlop = (2.0 / 180.0 * math.Pi)

// Dynamics

/// A velocity threshold for elastic collisions. Any collision with a relative linear
/// velocity below this threshold will be treated as inelastic.
const VelocityThreshold = 1.0

/// The maximum linear position correction used when solving constraints.
const MaxLinearCorrection = 0.2

/// The maximum angular position correction used when solving joint limits.
const MaxAngularCorrection = (8.0 / 180.0 * math.Pi)

/// The maximum translation of a body per step.
const MaxTranslation = 2.0
const MaxTranslationSquared = (MaxTranslation * MaxTranslation)

/// The maximum rotation of a body per step.
const MaxRotation = (0.5 * math.Pi)
const MaxRotationSquared = (MaxRotation * MaxRotation)

/// This scale factor controls how fast overlap is resolved. Values close to 1
/// overshoot.
const ScaleFactor = 0.2

// Sleep

/// The time that a body must be still before it will go to sleep.
const SleepThreshold = 0.5

/// A body cannot sleep if its linear velocity is above this tolerance.
const LinearSleepTolerance = 0.01

/// A body cannot sleep if its angular velocity is above this tolerance.
const AngularSleepTolerance = (2.0 / 180.0 * math.Pi)

// World defaults

const DefaultVelocityIterations = 8
const DefaultPositionIterations = 3

var DefaultGravity = Vec2{X: 0.0, Y: -9.8}
