package physics2d

import (
	"math"
)

type velocityConstraintPoint struct {
	rA             Vec2
	rB             Vec2
	normalImpulse  float64
	tangentImpulse float64
	normalMass     float64
	tangentMass    float64
	velocityBias   float64
}

type contactVelocityConstraint struct {
	points             [MaxManifoldPoints]velocityConstraintPoint
	normal             Vec2
	indexA             int
	indexB             int
	invMassA, invMassB float64
	invIA, invIB       float64
	friction           float64
	restitution        float64
	pointCount         int
	contactIndex       int
}

type contactPositionConstraint struct {
	localA                     [MaxManifoldPoints]Vec2
	localB                     [MaxManifoldPoints]Vec2
	localNormal                Vec2
	refB                       bool
	indexA                     int
	indexB                     int
	invMassA, invMassB         float64
	localCenterA, localCenterB Vec2
	invIA, invIB               float64
	pointCount                 int
}

/// contactSolver runs the sequential impulse iterations for one island.
type contactSolver struct {
	step                timeStep
	positions           []position
	velocities          []velocity
	positionConstraints []contactPositionConstraint
	velocityConstraints []contactVelocityConstraint
	contacts            []*Contact
}

// reset prepares the solver for a new island, reusing its buffers.
func (solver *contactSolver) reset(step timeStep, contacts []*Contact, positions []position, velocities []velocity) {
	solver.step = step
	solver.positions = positions
	solver.velocities = velocities
	solver.contacts = contacts

	count := len(contacts)
	solver.positionConstraints = slicesGrow(solver.positionConstraints, count)
	solver.velocityConstraints = slicesGrow(solver.velocityConstraints, count)

	// Initialize position independent portions of the constraints.
	for i, contact := range contacts {
		fixtureA := contact.fixtureA
		fixtureB := contact.fixtureB
		bodyA := fixtureA.body
		bodyB := fixtureB.body
		manifold := &contact.manifold

		pointCount := manifold.Count

		vc := &solver.velocityConstraints[i]
		*vc = contactVelocityConstraint{
			friction:     contact.friction,
			restitution:  contact.restitution,
			indexA:       bodyA.islandIndex,
			indexB:       bodyB.islandIndex,
			invMassA:     bodyA.invMass,
			invMassB:     bodyB.invMass,
			invIA:        bodyA.invI,
			invIB:        bodyB.invI,
			contactIndex: i,
			pointCount:   pointCount,
		}

		pc := &solver.positionConstraints[i]
		*pc = contactPositionConstraint{
			localNormal:  contact.localNormal,
			refB:         contact.refB,
			indexA:       bodyA.islandIndex,
			indexB:       bodyB.islandIndex,
			invMassA:     bodyA.invMass,
			invMassB:     bodyB.invMass,
			localCenterA: bodyA.sweep.LocalCenter,
			localCenterB: bodyB.sweep.LocalCenter,
			invIA:        bodyA.invI,
			invIB:        bodyB.invI,
			pointCount:   pointCount,
		}

		for j := 0; j < pointCount; j++ {
			vcp := &vc.points[j]

			if step.warmStarting {
				vcp.normalImpulse = step.dtRatio * contact.normalImpulses[j]
				vcp.tangentImpulse = step.dtRatio * contact.tangentImpulses[j]
			}

			pc.localA[j] = contact.localA[j]
			pc.localB[j] = contact.localB[j]
		}
	}
}

func slicesGrow[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}

// world evaluates the anchors of a position constraint at the given
// poses. It returns the normal and, for point index, the anchors on A and B.
func (pc *contactPositionConstraint) world(xfA, xfB Transform, index int) (normal, pA, pB Vec2) {
	if pc.refB {
		normal = xfB.Q.Rotate(pc.localNormal)
	} else {
		normal = xfA.Q.Rotate(pc.localNormal)
	}
	pA = xfA.Mul(pc.localA[index])
	pB = xfB.Mul(pc.localB[index])
	return normal, pA, pB
}

func poseTransform(c Vec2, a float64, localCenter Vec2) Transform {
	var xf Transform
	xf.Q = MakeRotFromAngle(a)
	xf.P = c.Sub(xf.Q.Rotate(localCenter))
	return xf
}

func (solver *contactSolver) initializeVelocityConstraints() {
	for i := range solver.velocityConstraints {
		vc := &solver.velocityConstraints[i]
		pc := &solver.positionConstraints[i]

		indexA := vc.indexA
		indexB := vc.indexB

		mA := vc.invMassA
		mB := vc.invMassB
		iA := vc.invIA
		iB := vc.invIB

		cA := solver.positions[indexA].c
		aA := solver.positions[indexA].a
		vA := solver.velocities[indexA].v
		wA := solver.velocities[indexA].w

		cB := solver.positions[indexB].c
		aB := solver.positions[indexB].a
		vB := solver.velocities[indexB].v
		wB := solver.velocities[indexB].w

		xfA := poseTransform(cA, aA, pc.localCenterA)
		xfB := poseTransform(cB, aB, pc.localCenterB)

		for j := 0; j < vc.pointCount; j++ {
			vcp := &vc.points[j]

			normal, pA, pB := pc.world(xfA, xfB, j)
			vc.normal = normal

			// Midway between the two surfaces.
			point := pA.Add(pB).Scale(0.5)

			vcp.rA = point.Sub(cA)
			vcp.rB = point.Sub(cB)

			rnA := Vec2Cross(vcp.rA, normal)
			rnB := Vec2Cross(vcp.rB, normal)

			kNormal := mA + mB + iA*rnA*rnA + iB*rnB*rnB

			if kNormal > 0.0 {
				vcp.normalMass = 1.0 / kNormal
			} else {
				vcp.normalMass = 0.0
			}

			tangent := Vec2CrossVectorScalar(normal, 1.0)

			rtA := Vec2Cross(vcp.rA, tangent)
			rtB := Vec2Cross(vcp.rB, tangent)

			kTangent := mA + mB + iA*rtA*rtA + iB*rtB*rtB

			if kTangent > 0.0 {
				vcp.tangentMass = 1.0 / kTangent
			} else {
				vcp.tangentMass = 0.0
			}

			// Setup a velocity bias for restitution.
			vcp.velocityBias = 0.0
			vRel := Vec2Dot(normal, vB.Add(Vec2CrossScalarVector(wB, vcp.rB)).Sub(vA).Sub(Vec2CrossScalarVector(wA, vcp.rA)))
			if vRel < -VelocityThreshold {
				vcp.velocityBias = -vc.restitution * vRel
			}
		}
	}
}

func (solver *contactSolver) warmStart() {
	// Warm start.
	for i := range solver.velocityConstraints {
		vc := &solver.velocityConstraints[i]

		indexA := vc.indexA
		indexB := vc.indexB
		mA := vc.invMassA
		iA := vc.invIA
		mB := vc.invMassB
		iB := vc.invIB

		vA := solver.velocities[indexA].v
		wA := solver.velocities[indexA].w
		vB := solver.velocities[indexB].v
		wB := solver.velocities[indexB].w

		normal := vc.normal
		tangent := Vec2CrossVectorScalar(normal, 1.0)

		for j := 0; j < vc.pointCount; j++ {
			vcp := &vc.points[j]
			P := normal.Scale(vcp.normalImpulse).Add(tangent.Scale(vcp.tangentImpulse))
			wA -= iA * Vec2Cross(vcp.rA, P)
			vA = vA.Sub(P.Scale(mA))
			wB += iB * Vec2Cross(vcp.rB, P)
			vB = vB.Add(P.Scale(mB))
		}

		solver.velocities[indexA].v = vA
		solver.velocities[indexA].w = wA
		solver.velocities[indexB].v = vB
		solver.velocities[indexB].w = wB
	}
}

func (solver *contactSolver) solveVelocityConstraints() {
	for i := range solver.velocityConstraints {
		vc := &solver.velocityConstraints[i]

		indexA := vc.indexA
		indexB := vc.indexB
		mA := vc.invMassA
		iA := vc.invIA
		mB := vc.invMassB
		iB := vc.invIB

		vA := solver.velocities[indexA].v
		wA := solver.velocities[indexA].w
		vB := solver.velocities[indexB].v
		wB := solver.velocities[indexB].w

		normal := vc.normal
		tangent := Vec2CrossVectorScalar(normal, 1.0)
		friction := vc.friction

		// Solve tangent constraints first because non-penetration is more important
		// than friction.
		for j := 0; j < vc.pointCount; j++ {
			vcp := &vc.points[j]

			// Relative velocity at contact
			dv := vB.Add(Vec2CrossScalarVector(wB, vcp.rB)).Sub(vA).Sub(Vec2CrossScalarVector(wA, vcp.rA))

			// Compute tangent force
			vt := Vec2Dot(dv, tangent)
			lambda := vcp.tangentMass * (-vt)

			// Clamp the accumulated force
			maxFriction := friction * vcp.normalImpulse
			newImpulse := FloatClamp(vcp.tangentImpulse+lambda, -maxFriction, maxFriction)
			lambda = newImpulse - vcp.tangentImpulse
			vcp.tangentImpulse = newImpulse

			// Apply contact impulse
			P := tangent.Scale(lambda)

			vA = vA.Sub(P.Scale(mA))
			wA -= iA * Vec2Cross(vcp.rA, P)

			vB = vB.Add(P.Scale(mB))
			wB += iB * Vec2Cross(vcp.rB, P)
		}

		// Solve normal constraints
		for j := 0; j < vc.pointCount; j++ {
			vcp := &vc.points[j]

			// Relative velocity at contact
			dv := vB.Add(Vec2CrossScalarVector(wB, vcp.rB)).Sub(vA).Sub(Vec2CrossScalarVector(wA, vcp.rA))

			// Compute normal impulse
			vn := Vec2Dot(dv, normal)
			lambda := -vcp.normalMass * (vn - vcp.velocityBias)

			// Clamp the accumulated impulse
			newImpulse := math.Max(vcp.normalImpulse+lambda, 0.0)
			lambda = newImpulse - vcp.normalImpulse
			vcp.normalImpulse = newImpulse

			// Apply contact impulse
			P := normal.Scale(lambda)
			vA = vA.Sub(P.Scale(mA))
			wA -= iA * Vec2Cross(vcp.rA, P)

			vB = vB.Add(P.Scale(mB))
			wB += iB * Vec2Cross(vcp.rB, P)
		}

		solver.velocities[indexA].v = vA
		solver.velocities[indexA].w = wA
		solver.velocities[indexB].v = vB
		solver.velocities[indexB].w = wB
	}
}

func (solver *contactSolver) storeImpulses() {
	for i := range solver.velocityConstraints {
		vc := &solver.velocityConstraints[i]
		contact := solver.contacts[vc.contactIndex]

		for j := 0; j < vc.pointCount; j++ {
			contact.normalImpulses[j] = vc.points[j].normalImpulse
			contact.tangentImpulses[j] = vc.points[j].tangentImpulse
		}
	}
}

// Sequential solver. Separation is measured from the current poses on every
// pass, so each iteration sees the correction of the previous ones.
func (solver *contactSolver) solvePositionConstraints() bool {
	minSeparation := 0.0

	for i := range solver.positionConstraints {
		pc := &solver.positionConstraints[i]

		indexA := pc.indexA
		indexB := pc.indexB
		localCenterA := pc.localCenterA
		mA := pc.invMassA
		iA := pc.invIA
		localCenterB := pc.localCenterB
		mB := pc.invMassB
		iB := pc.invIB

		cA := solver.positions[indexA].c
		aA := solver.positions[indexA].a

		cB := solver.positions[indexB].c
		aB := solver.positions[indexB].a

		// Solve normal constraints
		for j := 0; j < pc.pointCount; j++ {
			xfA := poseTransform(cA, aA, localCenterA)
			xfB := poseTransform(cB, aB, localCenterB)

			normal, pA, pB := pc.world(xfA, xfB, j)
			separation := Vec2Dot(pB.Sub(pA), normal)
			point := pA.Add(pB).Scale(0.5)

			rA := point.Sub(cA)
			rB := point.Sub(cB)

			// Track max constraint error.
			minSeparation = math.Min(minSeparation, separation)

			// Prevent large corrections and allow slop.
			C := FloatClamp(ScaleFactor*(separation+LinearSlop), -MaxLinearCorrection, 0.0)

			// Compute the effective mass.
			rnA := Vec2Cross(rA, normal)
			rnB := Vec2Cross(rB, normal)
			K := mA + mB + iA*rnA*rnA + iB*rnB*rnB

			// Compute normal impulse
			impulse := 0.0
			if K > 0.0 {
				impulse = -C / K
			}

			P := normal.Scale(impulse)

			cA = cA.Sub(P.Scale(mA))
			aA -= iA * Vec2Cross(rA, P)

			cB = cB.Add(P.Scale(mB))
			aB += iB * Vec2Cross(rB, P)
		}

		solver.positions[indexA].c = cA
		solver.positions[indexA].a = aA

		solver.positions[indexB].c = cB
		solver.positions[indexB].a = aB
	}

	// We can't expect minSeparation >= -linearSlop because we don't
	// push the separation above -linearSlop.
	return minSeparation >= -3.0*LinearSlop
}
