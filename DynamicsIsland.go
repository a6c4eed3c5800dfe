package physics2d

import (
	"math"
	"time"
)

/*
Position Correction Notes
=========================
Contacts and joints are corrected with a non-linear Gauss-Seidel pass: the
position error, the Jacobian and the effective mass are re-computed for each
constraint from the current poses, and the poses are updated right after the
constraint is solved. Iterations stop early once every contact is within
three times the linear slop and every joint reports success.

Cache Performance
=================
The bodies are not accessed during iteration. Read only data, such as the mass
values, are stored with the constraints. The body velocities/positions are held
in compact, temporary arrays indexed by the island index of each body.
*/

// postSolveEvent is a contact impulse waiting for the graph to unlock.
type postSolveEvent struct {
	contact ContactID
	impulse ContactImpulse
}

/// This is an internal class.
type island struct {
	bodies   []*RigidBody
	contacts []*Contact
	joints   []Joint

	positions  []position
	velocities []velocity

	solver contactSolver

	// Impulses of the solved contacts, reported after the step.
	events []postSolveEvent
}

func (isl *island) clear() {
	isl.bodies = isl.bodies[:0]
	isl.contacts = isl.contacts[:0]
	isl.joints = isl.joints[:0]
}

func (isl *island) addBody(body *RigidBody) {
	body.islandIndex = len(isl.bodies)
	isl.bodies = append(isl.bodies, body)
}

func (isl *island) addContact(contact *Contact) {
	isl.contacts = append(isl.contacts, contact)
}

func (isl *island) addJoint(joint Joint) {
	isl.joints = append(isl.joints, joint)
}

// solve advances the island by one step and reports whether it fell asleep.
func (isl *island) solve(profile *Profile, step timeStep, gravity Vec2, allowSleep bool) bool {
	h := step.dt

	isl.positions = slicesGrow(isl.positions, len(isl.bodies))
	isl.velocities = slicesGrow(isl.velocities, len(isl.bodies))

	// Integrate velocities and apply damping. Initialize the body state.
	for i, b := range isl.bodies {
		c := b.sweep.C
		a := b.sweep.A
		v := b.linearVelocity
		w := b.angularVelocity

		// Store positions for the next broad-phase sync.
		b.sweep.C0 = b.sweep.C
		b.sweep.A0 = b.sweep.A

		if b.bodyType == DynamicBody {
			// Integrate velocities.
			v = v.Add(gravity.Scale(b.gravityScale).Add(b.force.Scale(b.invMass)).Scale(h))
			w += h * b.invI * b.torque

			// Apply damping.
			// ODE: dv/dt + c * v = 0
			// Pade approximation: v2 = v1 * 1 / (1 + c * dt)
			v = v.Scale(1.0 / (1.0 + h*b.linearDamping))
			w *= 1.0 / (1.0 + h*b.angularDamping)
		}

		isl.positions[i] = position{c: c, a: a}
		isl.velocities[i] = velocity{v: v, w: w}
	}

	start := time.Now()

	// Solver data
	data := &solverData{
		step:       step,
		positions:  isl.positions,
		velocities: isl.velocities,
	}

	// Initialize velocity constraints.
	solver := &isl.solver
	solver.reset(step, isl.contacts, isl.positions, isl.velocities)
	solver.initializeVelocityConstraints()

	if step.warmStarting {
		solver.warmStart()
	}

	for _, joint := range isl.joints {
		joint.initVelocityConstraints(data)
	}

	profile.SolveInit += time.Since(start)

	// Solve velocity constraints
	start = time.Now()
	for i := 0; i < step.velocityIterations; i++ {
		for _, joint := range isl.joints {
			joint.solveVelocityConstraints(data)
		}

		solver.solveVelocityConstraints()
	}

	// Store impulses for warm starting
	solver.storeImpulses()
	profile.SolveVelocity += time.Since(start)

	// Integrate positions
	for i := range isl.bodies {
		c := isl.positions[i].c
		a := isl.positions[i].a
		v := isl.velocities[i].v
		w := isl.velocities[i].w

		// Check for large velocities
		translation := v.Scale(h)
		if Vec2Dot(translation, translation) > MaxTranslationSquared {
			ratio := MaxTranslation / translation.Length()
			v = v.Scale(ratio)
		}

		rotation := h * w
		if rotation*rotation > MaxRotationSquared {
			ratio := MaxRotation / math.Abs(rotation)
			w *= ratio
		}

		// Integrate
		c = c.Add(v.Scale(h))
		a += h * w

		isl.positions[i] = position{c: c, a: a}
		isl.velocities[i] = velocity{v: v, w: w}
	}

	// Solve position constraints
	start = time.Now()
	positionSolved := false
	for i := 0; i < step.positionIterations; i++ {
		contactsOkay := solver.solvePositionConstraints()

		jointsOkay := true
		for _, joint := range isl.joints {
			jointOkay := joint.solvePositionConstraints(data)
			jointsOkay = jointsOkay && jointOkay
		}

		if contactsOkay && jointsOkay {
			// Exit early if the position errors are small.
			positionSolved = true
			break
		}
	}

	// Copy state buffers back to the bodies
	for i, body := range isl.bodies {
		body.sweep.C = isl.positions[i].c
		body.sweep.A = isl.positions[i].a
		body.linearVelocity = isl.velocities[i].v
		body.angularVelocity = isl.velocities[i].w
		body.synchronizeTransform()
	}

	profile.SolvePosition += time.Since(start)

	isl.report()

	// Sleep timers only advance on steps that resolved every overlap.
	if !allowSleep || !positionSolved {
		return false
	}

	minSleepTime := MaxFloat

	linTolSqr := LinearSleepTolerance * LinearSleepTolerance
	angTolSqr := AngularSleepTolerance * AngularSleepTolerance

	for _, b := range isl.bodies {
		if b.bodyType == StaticBody {
			continue
		}

		if !b.IsSleepingAllowed() ||
			b.angularVelocity*b.angularVelocity > angTolSqr ||
			Vec2Dot(b.linearVelocity, b.linearVelocity) > linTolSqr {
			b.sleepTime = 0.0
			minSleepTime = 0.0
		} else {
			b.sleepTime += h
			minSleepTime = math.Min(minSleepTime, b.sleepTime)
		}
	}

	if minSleepTime >= SleepThreshold {
		for _, b := range isl.bodies {
			b.Sleep()
		}
		return true
	}

	return false
}

// report queues the solved impulses of every contact in the island.
func (isl *island) report() {
	for i, c := range isl.contacts {
		vc := &isl.solver.velocityConstraints[i]

		event := postSolveEvent{contact: c.id}
		event.impulse.Count = vc.pointCount
		for j := 0; j < vc.pointCount; j++ {
			event.impulse.NormalImpulses[j] = vc.points[j].normalImpulse
			event.impulse.TangentImpulses[j] = vc.points[j].tangentImpulse
		}

		isl.events = append(isl.events, event)
	}
}
