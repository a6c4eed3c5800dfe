package physics2d

import (
	"fmt"
	"math"
)

/// Friction mixing law. The idea is to allow either fixture to drive the friction to zero.
/// For example, anything slides on ice.
func MixFriction(friction1, friction2 float64) float64 {
	return math.Sqrt(friction1 * friction2)
}

/// Restitution mixing law. The idea is allow for anything to bounce off an inelastic surface.
/// For example, a superball bounces on anything.
func MixRestitution(restitution1, restitution2 float64) float64 {
	return math.Max(restitution1, restitution2)
}

type contactFlags uint8

const (
	// Used when crawling contact graph when forming islands.
	contactFlagIsland contactFlags = 1 << iota

	// Set when the shapes are touching.
	contactFlagTouching

	// This contact can be disabled (by user)
	contactFlagEnabled

	// This contact needs filtering because a fixture filter was changed.
	contactFlagFilter
)

func (f contactFlags) has(flag contactFlags) bool {
	return f&flag != 0
}

func (f *contactFlags) set(flag contactFlags, on bool) {
	if on {
		*f |= flag
	} else {
		*f &^= flag
	}
}

type ContactID Handle

func (id ContactID) String() string {
	return "contact " + Handle(id).String()
}

/// The class manages contact between two shapes. A contact exists for each overlapping
/// AABB in the broad-phase (except if filtered). Therefore a contact object may exist
/// that has no contact points.
type Contact struct {
	id    ContactID
	flags contactFlags

	fixtureA *Fixture
	fixtureB *Fixture

	manifold Manifold

	// Accumulated impulses per manifold point, kept across steps.
	normalImpulses  [MaxManifoldPoints]float64
	tangentImpulses [MaxManifoldPoints]float64

	friction    float64
	restitution float64

	// Solver anchors, in body frames. localNormal is expressed in the frame
	// of B when refB is set, of A otherwise.
	localA      [MaxManifoldPoints]Vec2
	localB      [MaxManifoldPoints]Vec2
	localNormal Vec2
	refB        bool
}

func (contact *Contact) ID() ContactID {
	return contact.id
}

/// Get the contact manifold. Do not modify the manifold unless you understand the
/// internals of the solver.
func (contact *Contact) Manifold() *Manifold {
	return &contact.manifold
}

/// Is this contact touching?
func (contact *Contact) IsTouching() bool {
	return contact.flags.has(contactFlagTouching)
}

/// Enable/disable this contact. This can be used inside the pre-solve
/// contact listener. The contact is only disabled for the current
/// time step (or sub-step in continuous collisions).
func (contact *Contact) SetEnabled(flag bool) {
	contact.flags.set(contactFlagEnabled, flag)
}

/// Has this contact been disabled?
func (contact *Contact) IsEnabled() bool {
	return contact.flags.has(contactFlagEnabled)
}

/// A sensor contact only detects overlap and never reaches the solver.
func (contact *Contact) IsSensor() bool {
	return contact.fixtureA.isSensor || contact.fixtureB.isSensor
}

/// Get fixture A in this contact.
func (contact *Contact) FixtureA() *Fixture {
	return contact.fixtureA
}

/// Get fixture B in this contact.
func (contact *Contact) FixtureB() *Fixture {
	return contact.fixtureB
}

/// Override the default friction mixture. You can call this in OnPreSolve.
/// This value persists until set or reset.
func (contact *Contact) SetFriction(friction float64) {
	contact.friction = friction
}

func (contact *Contact) Friction() float64 {
	return contact.friction
}

/// Reset the friction mixture to the default value.
func (contact *Contact) ResetFriction() {
	contact.friction = MixFriction(contact.fixtureA.friction, contact.fixtureB.friction)
}

/// Override the default restitution mixture. You can call this in OnPreSolve.
/// The value persists until you set or reset.
func (contact *Contact) SetRestitution(restitution float64) {
	contact.restitution = restitution
}

func (contact *Contact) Restitution() float64 {
	return contact.restitution
}

/// Reset the restitution to the default value.
func (contact *Contact) ResetRestitution() {
	contact.restitution = MixRestitution(contact.fixtureA.restitution, contact.fixtureB.restitution)
}

/// Flag this contact for filtering. Filtering will occur the next time step.
func (contact *Contact) flagForFiltering() {
	contact.flags.set(contactFlagFilter, true)
}

func (contact *Contact) String() string {
	return fmt.Sprintf("%s (%s, %s) touching=%t", contact.id, contact.fixtureA.id, contact.fixtureB.id, contact.IsTouching())
}

func (contact *Contact) create(fixtureA, fixtureB *Fixture) {
	contact.flags = contactFlagEnabled

	contact.fixtureA = fixtureA
	contact.fixtureB = fixtureB

	contact.manifold = Manifold{}

	contact.friction = MixFriction(fixtureA.friction, fixtureB.friction)
	contact.restitution = MixRestitution(fixtureA.restitution, fixtureB.restitution)
}

// evaluate dispatches the narrow phase on the shape pair. Fixtures are
// ordered at creation so that a polygon always comes before a circle.
// It reports false when no manifold routine exists for the pair.
func (contact *Contact) evaluate(xfA, xfB Transform) (Manifold, bool) {
	switch shapeA := contact.fixtureA.shape.(type) {
	case *Circle:
		if shapeB, ok := contact.fixtureB.shape.(*Circle); ok {
			return CollideCircles(shapeA, xfA, shapeB, xfB), true
		}
	case *Polygon:
		switch shapeB := contact.fixtureB.shape.(type) {
		case *Circle:
			return CollidePolygonAndCircle(shapeA, xfA, shapeB, xfB), true
		case *Polygon:
			return CollidePolygons(shapeA, xfA, shapeB, xfB), true
		}
	}

	return Manifold{}, false
}

// Update the contact manifold and touching status.
// Note: do not assume the fixture AABBs are overlapping or are valid.
func (contact *Contact) update(listener Listener) {
	oldManifold := contact.manifold
	oldNormalImpulses := contact.normalImpulses
	oldTangentImpulses := contact.tangentImpulses

	// Re-enable this contact.
	contact.flags.set(contactFlagEnabled, true)

	touching := false
	wasTouching := contact.flags.has(contactFlagTouching)

	sensor := contact.IsSensor()

	bodyA := contact.fixtureA.body
	bodyB := contact.fixtureB.body
	xfA := bodyA.xf
	xfB := bodyB.xf

	manifold, solid := Manifold{}, false
	if !sensor {
		manifold, solid = contact.evaluate(xfA, xfB)
	}

	// Is this contact a sensor?
	if !solid {
		// Shapes without a manifold routine only report overlap.
		touching = TestOverlap(contact.fixtureA.shape, xfA, contact.fixtureB.shape, xfB)

		// Sensors don't generate manifolds.
		contact.manifold = Manifold{}
		contact.normalImpulses = [MaxManifoldPoints]float64{}
		contact.tangentImpulses = [MaxManifoldPoints]float64{}
	} else {
		contact.manifold = manifold
		touching = contact.manifold.Count > 0

		// Match old contact ids to new contact ids and copy the
		// stored impulses to warm start the solver.
		for i := 0; i < contact.manifold.Count; i++ {
			contact.normalImpulses[i] = 0.0
			contact.tangentImpulses[i] = 0.0
			key := contact.manifold.Features[i].Key()

			for j := 0; j < oldManifold.Count; j++ {
				if oldManifold.Features[j].Key() == key {
					contact.normalImpulses[i] = oldNormalImpulses[j]
					contact.tangentImpulses[i] = oldTangentImpulses[j]
					break
				}
			}
		}

		for i := contact.manifold.Count; i < MaxManifoldPoints; i++ {
			contact.normalImpulses[i] = 0.0
			contact.tangentImpulses[i] = 0.0
		}

		contact.computeAnchors(xfA, xfB)

		if touching != wasTouching {
			bodyA.WakeUp()
			bodyB.WakeUp()
		}
	}

	contact.flags.set(contactFlagTouching, touching)

	if !wasTouching && touching {
		listener.OnContactStart(contact)
	}

	if wasTouching && !touching {
		listener.OnContactEnd(contact)
	}

	if !sensor && touching {
		listener.OnPreSolve(contact, oldManifold)
	}
}

// computeAnchors pins the manifold points to the bodies so the position
// solver can measure separation from the current poses.
func (contact *Contact) computeAnchors(xfA, xfB Transform) {
	mf := &contact.manifold
	for i := 0; i < mf.Count; i++ {
		pB := mf.Contacts[i]
		pA := pB.Add(mf.Normal.Scale(mf.Depths[i]))
		contact.localA[i] = xfA.MulT(pA)
		contact.localB[i] = xfB.MulT(pB)
	}

	contact.refB = mf.flip
	if mf.flip {
		contact.localNormal = xfB.Q.InvRotate(mf.Normal)
	} else {
		contact.localNormal = xfA.Q.InvRotate(mf.Normal)
	}
}
