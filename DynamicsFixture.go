package physics2d

import (
	"fmt"
)

/// Category is a collision category bitmask.
type Category uint16

/// Has reports whether any bit of other is set in c.
func (c Category) Has(other Category) bool {
	return c&other != 0
}

/// This holds contact filtering data.
type Filter struct {
	/// The collision category bits. Normally you would just set one bit.
	CategoryBits Category

	/// The collision mask bits. This states the categories that this
	/// shape would accept for collision.
	MaskBits Category

	/// Collision groups allow a certain group of objects to never collide (negative)
	/// or always collide (positive). Zero means no collision group. Non-zero group
	/// filtering always wins against the mask bits.
	GroupIndex int16
}

func DefaultFilter() Filter {
	return Filter{
		CategoryBits: 0x0001,
		MaskBits:     0xFFFF,
		GroupIndex:   0,
	}
}

/// A fixture profile is used to create a fixture. Profiles can be reused.
type FixtureProfile struct {

	/// The shape, this must be set. The shape will be cloned, so you
	/// can reuse it for other fixtures.
	Shape Shape

	/// Use this to store application specific fixture data.
	UserData any

	/// The friction coefficient, usually in the range [0,1].
	Friction float64

	/// The restitution (elasticity) usually in the range [0,1].
	Restitution float64

	/// The density, usually in kg/m^2.
	Density float64

	/// A sensor shape collects contact information but never generates a collision
	/// response.
	IsSensor bool

	/// Contact filtering data.
	Filter Filter
}

/// DefaultFixtureProfile returns the default fixture values. Shape is left nil.
func DefaultFixtureProfile() FixtureProfile {
	return FixtureProfile{
		Friction: 0.2,
		Filter:   DefaultFilter(),
	}
}

/// This proxy is used internally to connect fixtures to the broad-phase.
type FixtureProxy struct {
	Box     AABB
	ProxyID int
}

type FixtureID Handle

func (id FixtureID) String() string {
	return "fixture " + Handle(id).String()
}

/// A fixture is used to attach a shape to a body for collision detection. A fixture
/// inherits its transform from its parent. Fixtures hold additional non-geometric data
/// such as friction, collision filters, etc.
/// Fixtures are created via RigidBody.CreateFixture.
type Fixture struct {
	id   FixtureID
	body *RigidBody

	shape Shape

	density     float64
	friction    float64
	restitution float64

	filter   Filter
	isSensor bool

	proxy FixtureProxy

	userData any
}

func (fixture *Fixture) ID() FixtureID {
	return fixture.id
}

/// Get the parent body of this fixture.
func (fixture *Fixture) Body() *RigidBody {
	return fixture.body
}

/// Get the child shape. The shape is owned by the fixture and must not be
/// modified, it would break the broad phase and the mass data.
func (fixture *Fixture) Shape() Shape {
	return fixture.shape
}

/// Get the type of the child shape.
func (fixture *Fixture) Type() ShapeType {
	return fixture.shape.Type()
}

/// Is this fixture a sensor (non-solid)?
func (fixture *Fixture) IsSensor() bool {
	return fixture.isSensor
}

/// Set if this fixture is a sensor.
func (fixture *Fixture) SetSensor(sensor bool) {
	if sensor != fixture.isSensor {
		fixture.body.WakeUp()
		fixture.isSensor = sensor
	}
}

/// Get the contact filtering data.
func (fixture *Fixture) Filter() Filter {
	return fixture.filter
}

/// Set the contact filtering data. This will not update contacts until the next time
/// step when either parent body is active and awake.
func (fixture *Fixture) SetFilter(filter Filter) {
	fixture.filter = filter
	fixture.refilter()
}

/// Flag the associated contacts for filtering and make the broad phase
/// look for new pairs.
func (fixture *Fixture) refilter() {
	body := fixture.body
	if body == nil {
		return
	}

	for _, edge := range body.contacts {
		contact := edge.Contact
		if contact.fixtureA == fixture || contact.fixtureB == fixture {
			contact.flagForFiltering()
		}
	}

	graph := body.graph
	if graph == nil || fixture.proxy.ProxyID == NullNode {
		return
	}

	graph.contactManager.broadPhase.TouchProxy(fixture.proxy.ProxyID)
}

func (fixture *Fixture) Density() float64 {
	return fixture.density
}

/// Set the density of this fixture. This will _not_ automatically adjust the mass
/// of the body. You must call RigidBody.ComputeMass to update the body's mass.
func (fixture *Fixture) SetDensity(density float64) error {
	if !IsValid(density) || density < 0.0 {
		return fmt.Errorf("set density of %s to %v: %w", fixture.id, density, ErrInvalidProfile)
	}
	fixture.density = density
	return nil
}

func (fixture *Fixture) Friction() float64 {
	return fixture.friction
}

/// Set the coefficient of friction. This will _not_ change the friction of
/// existing contacts.
func (fixture *Fixture) SetFriction(friction float64) {
	fixture.friction = friction
}

func (fixture *Fixture) Restitution() float64 {
	return fixture.restitution
}

/// Set the coefficient of restitution. This will _not_ change the restitution of
/// existing contacts.
func (fixture *Fixture) SetRestitution(restitution float64) {
	fixture.restitution = restitution
}

func (fixture *Fixture) UserData() any {
	return fixture.userData
}

func (fixture *Fixture) SetUserData(data any) {
	fixture.userData = data
}

/// Test a point for containment in this fixture.
/// @param p a point in world coordinates.
func (fixture *Fixture) TestPoint(p Vec2) bool {
	return fixture.shape.TestPoint(fixture.body.Transform(), p)
}

/// Cast a ray against this shape.
func (fixture *Fixture) RayCast(input RayCastInput) (RayCastOutput, bool) {
	return fixture.shape.RayCast(input, fixture.body.Transform())
}

/// Get the mass data for this fixture. The mass data is based on the density and
/// the shape. The rotational inertia is about the shape's origin.
func (fixture *Fixture) MassData() MassData {
	return fixture.shape.ComputeMass(fixture.density)
}

/// Get the AABB last reported to the broad phase. For a moving body it covers
/// the motion of the last step. It is only meaningful while the body simulates.
func (fixture *Fixture) AABB() AABB {
	return fixture.proxy.Box
}

func (fixture *Fixture) String() string {
	return fmt.Sprintf("%s %s sensor=%t", fixture.id, fixture.shape.Type(), fixture.isSensor)
}

func (fixture *Fixture) create(body *RigidBody, profile *FixtureProfile) {
	fixture.userData = profile.UserData
	fixture.friction = profile.Friction
	fixture.restitution = profile.Restitution

	fixture.body = body

	fixture.filter = profile.Filter

	fixture.isSensor = profile.IsSensor

	fixture.shape = profile.Shape.Clone()

	fixture.proxy = FixtureProxy{ProxyID: NullNode}

	fixture.density = profile.Density
}

// These support body activation/deactivation.
func (fixture *Fixture) createProxy(broadPhase *BroadPhase[*Fixture], xf Transform) {
	assert(fixture.proxy.ProxyID == NullNode, "fixture already has a proxy")

	fixture.proxy.Box = fixture.shape.ComputeAABB(xf)
	fixture.proxy.ProxyID = broadPhase.CreateProxy(fixture.proxy.Box, fixture)
}

func (fixture *Fixture) destroyProxy(broadPhase *BroadPhase[*Fixture]) {
	if fixture.proxy.ProxyID == NullNode {
		return
	}

	broadPhase.DestroyProxy(fixture.proxy.ProxyID)
	fixture.proxy.ProxyID = NullNode
}

func (fixture *Fixture) synchronize(broadPhase *BroadPhase[*Fixture], transform1 Transform, transform2 Transform) {
	if fixture.proxy.ProxyID == NullNode {
		return
	}

	// Compute an AABB that covers the swept shape (may miss some rotation effect).
	aabb1 := fixture.shape.ComputeAABB(transform1)
	aabb2 := fixture.shape.ComputeAABB(transform2)

	fixture.proxy.Box = aabb1.Combine(aabb2)

	displacement := transform2.P.Sub(transform1.P)

	broadPhase.MoveProxy(fixture.proxy.ProxyID, fixture.proxy.Box, displacement)
}
