package physics2d

/// Contact impulses for reporting. Impulses are used instead of forces because
/// sub-step forces may approach infinity for rigid body collisions. These
/// match up one-to-one with the contact points in Manifold.
type ContactImpulse struct {
	NormalImpulses  [MaxManifoldPoints]float64
	TangentImpulses [MaxManifoldPoints]float64
	Count           int
}

/// Listener receives contact and destruction events from a CollisionGraph.
/// Every method except OnPostSolve runs while the graph is locked, so
/// creating or destroying bodies, fixtures or joints from there fails with
/// ErrGraphLocked.
type Listener interface {
	/// Called when two fixtures begin to touch.
	OnContactStart(contact *Contact)

	/// Called when two fixtures cease to touch, including when a touching
	/// contact is destroyed.
	OnContactEnd(contact *Contact)

	/// This is called after a contact is updated. This allows you to inspect a
	/// contact before it goes to the solver. If you are careful, you can modify the
	/// contact (e.g. disable it).
	/// A copy of the old manifold is provided so that you can detect changes.
	/// Note: this is called only for awake bodies.
	/// Note: this is not called for sensors.
	OnPreSolve(contact *Contact, oldManifold Manifold)

	/// This lets you inspect a contact after the solver is finished. This is useful
	/// for inspecting impulses. It is deferred until the step has unlocked the
	/// graph; contacts destroyed in the meantime are not reported.
	/// Note: this is only called for contacts that are touching, solid, and awake.
	OnPostSolve(contact *Contact, impulse *ContactImpulse)

	/// Called when any fixture is about to be destroyed due
	/// to the destruction of its parent body.
	OnDestroyed(fixture *Fixture)
}

/// NopListener ignores every event. Embed it to implement a subset of Listener.
type NopListener struct{}

func (NopListener) OnContactStart(*Contact)               {}
func (NopListener) OnContactEnd(*Contact)                 {}
func (NopListener) OnPreSolve(*Contact, Manifold)         {}
func (NopListener) OnPostSolve(*Contact, *ContactImpulse) {}
func (NopListener) OnDestroyed(*Fixture)                  {}

/// Implement this interface to provide collision filtering. In other words, you can implement
/// this interface if you want finer control over contact creation.
type ContactFilter interface {
	/// Return true if contact calculations should be performed between these two shapes.
	/// @warning for performance reasons this is only called when the AABBs begin to overlap.
	ShouldCollide(fixtureA *Fixture, fixtureB *Fixture) bool
}

/// DefaultContactFilter applies the group, category and mask rule.
type DefaultContactFilter struct{}

// Return true if contact calculations should be performed between these two shapes.
// If you implement your own collision filter you may want to build from this implementation.
func (DefaultContactFilter) ShouldCollide(fixtureA *Fixture, fixtureB *Fixture) bool {
	filterA := fixtureA.Filter()
	filterB := fixtureB.Filter()

	if filterA.GroupIndex == filterB.GroupIndex && filterA.GroupIndex != 0 {
		return filterA.GroupIndex > 0
	}

	return filterA.MaskBits.Has(filterB.CategoryBits) && filterA.CategoryBits.Has(filterB.MaskBits)
}

/// Called for each fixture found in the query AABB.
/// @return false to terminate the query.
type QueryCallback func(fixture *Fixture) bool

/// Called for each fixture found in the query. You control how the ray cast
/// proceeds by returning a float:
/// return -1: ignore this fixture and continue
/// return 0: terminate the ray cast
/// return fraction: clip the ray to this point
/// return 1: don't clip the ray and continue
/// @param fixture the fixture hit by the ray
/// @param point the point of initial intersection
/// @param normal the normal vector at the point of intersection
/// @return -1 to filter, 0 to terminate, fraction to clip the ray for
/// closest hit, 1 to continue
type RayCastCallback func(fixture *Fixture, point Vec2, normal Vec2, fraction float64) float64
