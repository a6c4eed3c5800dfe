package physics2d

import (
	"fmt"
	"slices"
)

/// The body type.
/// static: zero mass, zero velocity, may be manually moved
/// kinematic: zero mass, non-zero velocity set by user, moved by solver
/// dynamic: positive mass, non-zero velocity determined by forces, moved by solver
type BodyType uint8

const (
	StaticBody BodyType = iota
	KinematicBody
	DynamicBody
)

func (t BodyType) String() string {
	switch t {
	case StaticBody:
		return "static"
	case KinematicBody:
		return "kinematic"
	case DynamicBody:
		return "dynamic"
	}
	return fmt.Sprintf("body(%d)", uint8(t))
}

/// A body profile holds all the data needed to construct a rigid body.
/// You can safely re-use body profiles. Fixtures are added to a body after construction.
type BodyProfile struct {

	/// The body type: static, kinematic, or dynamic.
	/// Note: if a dynamic body would have zero mass, the mass is set to one.
	Type BodyType

	/// The world position of the body. Avoid creating bodies at the origin
	/// since this can lead to many overlapping shapes.
	Position Vec2

	/// The world angle of the body in radians.
	Angle float64

	/// The linear velocity of the body's origin in world co-ordinates.
	LinearVelocity Vec2

	/// The angular velocity of the body.
	AngularVelocity float64

	/// Linear damping is use to reduce the linear velocity. The damping parameter
	/// can be larger than 1.0 but the damping effect becomes sensitive to the
	/// time step when the damping parameter is large.
	/// Units are 1/time
	LinearDamping float64

	/// Angular damping is use to reduce the angular velocity.
	/// Units are 1/time
	AngularDamping float64

	/// Scale the gravity applied to this body.
	GravityScale float64

	/// Does this body start out simulating? A body that does not simulate has
	/// no broad-phase proxies and takes no part in the step.
	Simulate bool

	/// Is this body initially awake or sleeping?
	Awake bool

	/// Should this body be prevented from rotating? Useful for characters.
	PreventRotation bool

	/// Set this flag if this body should never fall asleep. Note that
	/// this increases CPU usage.
	PreventSleep bool

	/// Marks a fast moving body. It is stored and reported but the graph
	/// performs no continuous collision.
	Bullet bool

	/// Use this to store application specific body data.
	UserData any
}

/// DefaultBodyProfile returns a static body at the origin that simulates and
/// starts awake.
func DefaultBodyProfile() BodyProfile {
	return BodyProfile{
		Type:         StaticBody,
		GravityScale: 1.0,
		Simulate:     true,
		Awake:        true,
	}
}

type bodyFlags uint16

const (
	bodyFlagIsland bodyFlags = 1 << iota
	bodyFlagAwake
	bodyFlagPreventSleep
	bodyFlagBullet
	bodyFlagFixedRotation
	bodyFlagSimulating
)

func (f bodyFlags) has(flag bodyFlags) bool {
	return f&flag != 0
}

func (f *bodyFlags) set(flag bodyFlags, on bool) {
	if on {
		*f |= flag
	} else {
		*f &^= flag
	}
}

type BodyID Handle

func (id BodyID) String() string {
	return "body " + Handle(id).String()
}

/// A contact edge is used to connect bodies and contacts together
/// in a contact graph where each body is a node and each contact
/// is an edge. Each contact has two contact edges, one for each attached body.
type ContactEdge struct {
	Other   *RigidBody ///< provides quick access to the other body attached.
	Contact *Contact   ///< the contact
}

/// A joint edge is used to connect bodies and joints together
/// in a joint graph where each body is a node and each joint
/// is an edge.
type JointEdge struct {
	Other *RigidBody ///< provides quick access to the other body attached.
	Joint Joint      ///< the joint
}

/// A rigid body. These are created via CollisionGraph.CreateBody.
type RigidBody struct {
	id       BodyID
	bodyType BodyType
	flags    bodyFlags

	islandIndex int

	xf    Transform // the body origin transform
	sweep Sweep     // the swept motion of the step

	linearVelocity  Vec2
	angularVelocity float64

	force  Vec2
	torque float64

	graph *CollisionGraph

	fixtures []*Fixture
	contacts []ContactEdge
	joints   []JointEdge

	mass, invMass float64

	// Rotational inertia about the center of mass.
	inertia, invI float64

	linearDamping  float64
	angularDamping float64
	gravityScale   float64

	sleepTime float64

	userData any
}

func (body *RigidBody) create(profile *BodyProfile, graph *CollisionGraph) {
	body.flags = 0
	body.flags.set(bodyFlagBullet, profile.Bullet)
	body.flags.set(bodyFlagFixedRotation, profile.PreventRotation)
	body.flags.set(bodyFlagPreventSleep, profile.PreventSleep)
	body.flags.set(bodyFlagAwake, profile.Awake && profile.Type != StaticBody)
	body.flags.set(bodyFlagSimulating, profile.Simulate)

	body.graph = graph

	body.xf = MakeTransformFromAngle(profile.Position, profile.Angle)

	body.sweep = Sweep{
		C0: body.xf.P,
		C:  body.xf.P,
		A0: profile.Angle,
		A:  profile.Angle,
	}

	body.linearVelocity = profile.LinearVelocity
	body.angularVelocity = profile.AngularVelocity

	body.linearDamping = profile.LinearDamping
	body.angularDamping = profile.AngularDamping
	body.gravityScale = profile.GravityScale

	body.bodyType = profile.Type

	// Unit mass until fixtures with density are attached.
	if body.bodyType == DynamicBody {
		body.mass = 1.0
		body.invMass = 1.0
		if !profile.PreventRotation {
			body.inertia = 1.0
			body.invI = 1.0
		}
	}

	body.userData = profile.UserData
}

func validateBodyProfile(profile *BodyProfile) error {
	switch {
	case profile.Type > DynamicBody:
		return fmt.Errorf("body type %d: %w", profile.Type, ErrInvalidProfile)
	case !profile.Position.IsValid() || !IsValid(profile.Angle):
		return fmt.Errorf("body pose %v %v: %w", profile.Position, profile.Angle, ErrInvalidProfile)
	case !profile.LinearVelocity.IsValid() || !IsValid(profile.AngularVelocity):
		return fmt.Errorf("body velocity: %w", ErrInvalidProfile)
	case !IsValid(profile.LinearDamping) || profile.LinearDamping < 0.0:
		return fmt.Errorf("linear damping %v: %w", profile.LinearDamping, ErrInvalidProfile)
	case !IsValid(profile.AngularDamping) || profile.AngularDamping < 0.0:
		return fmt.Errorf("angular damping %v: %w", profile.AngularDamping, ErrInvalidProfile)
	case !IsValid(profile.GravityScale):
		return fmt.Errorf("gravity scale %v: %w", profile.GravityScale, ErrInvalidProfile)
	}
	return nil
}

func (body *RigidBody) ID() BodyID {
	return body.id
}

/// Get the type of this body.
func (body *RigidBody) Type() BodyType {
	return body.bodyType
}

/// Get the body transform for the body's origin.
func (body *RigidBody) Transform() Transform {
	return body.xf
}

/// Get the world body origin position.
func (body *RigidBody) Position() Vec2 {
	return body.xf.P
}

/// Get the angle in radians.
func (body *RigidBody) Angle() float64 {
	return body.sweep.A
}

/// Get the world position of the center of mass.
func (body *RigidBody) WorldCenter() Vec2 {
	return body.sweep.C
}

/// Get the local position of the center of mass.
func (body *RigidBody) LocalCenter() Vec2 {
	return body.sweep.LocalCenter
}

/// Set the linear velocity of the center of mass.
func (body *RigidBody) SetLinearVelocity(v Vec2) {
	if body.bodyType == StaticBody {
		return
	}

	if Vec2Dot(v, v) > 0.0 {
		body.WakeUp()
	}

	body.linearVelocity = v
}

/// Get the linear velocity of the center of mass.
func (body *RigidBody) LinearVelocity() Vec2 {
	return body.linearVelocity
}

/// Set the angular velocity in radians/second.
func (body *RigidBody) SetAngularVelocity(w float64) {
	if body.bodyType == StaticBody {
		return
	}

	if w*w > 0.0 {
		body.WakeUp()
	}

	body.angularVelocity = w
}

func (body *RigidBody) AngularVelocity() float64 {
	return body.angularVelocity
}

/// Get the total mass of the body, usually in kilograms (kg).
func (body *RigidBody) Mass() float64 {
	return body.mass
}

/// Get the rotational inertia of the body about the center of mass.
func (body *RigidBody) Inertia() float64 {
	return body.inertia
}

/// Get the mass data of the body. The inertia is about the center of mass.
func (body *RigidBody) MassData() MassData {
	return MassData{
		Mass:   body.mass,
		Center: body.sweep.LocalCenter,
		I:      body.inertia,
	}
}

/// Get the world coordinates of a point given the local coordinates.
func (body *RigidBody) WorldPoint(localPoint Vec2) Vec2 {
	return body.xf.Mul(localPoint)
}

/// Get the world coordinates of a vector given the local coordinates.
func (body *RigidBody) WorldVector(localVector Vec2) Vec2 {
	return body.xf.Q.Rotate(localVector)
}

/// Gets a local point relative to the body's origin given a world point.
func (body *RigidBody) LocalPoint(worldPoint Vec2) Vec2 {
	return body.xf.MulT(worldPoint)
}

/// Gets a local vector given a world vector.
func (body *RigidBody) LocalVector(worldVector Vec2) Vec2 {
	return body.xf.Q.InvRotate(worldVector)
}

/// Get the world linear velocity of a world point attached to this body.
func (body *RigidBody) LinearVelocityFromWorldPoint(worldPoint Vec2) Vec2 {
	return body.linearVelocity.Add(Vec2CrossScalarVector(body.angularVelocity, worldPoint.Sub(body.sweep.C)))
}

func (body *RigidBody) LinearDamping() float64 {
	return body.linearDamping
}

func (body *RigidBody) SetLinearDamping(linearDamping float64) {
	body.linearDamping = linearDamping
}

func (body *RigidBody) AngularDamping() float64 {
	return body.angularDamping
}

func (body *RigidBody) SetAngularDamping(angularDamping float64) {
	body.angularDamping = angularDamping
}

func (body *RigidBody) GravityScale() float64 {
	return body.gravityScale
}

func (body *RigidBody) SetGravityScale(scale float64) {
	body.gravityScale = scale
}

func (body *RigidBody) SetBullet(flag bool) {
	body.flags.set(bodyFlagBullet, flag)
}

func (body *RigidBody) IsBullet() bool {
	return body.flags.has(bodyFlagBullet)
}

/// IsAwake is always false for a static body.
func (body *RigidBody) IsAwake() bool {
	return body.bodyType != StaticBody && body.flags.has(bodyFlagAwake)
}

/// WakeUp sets the awake flag and resets the sleep timer.
func (body *RigidBody) WakeUp() {
	if body.bodyType == StaticBody {
		return
	}
	body.flags.set(bodyFlagAwake, true)
	body.sleepTime = 0.0
}

/// Sleep clears the velocities, the accumulated forces and the awake flag.
func (body *RigidBody) Sleep() {
	body.flags.set(bodyFlagAwake, false)
	body.sleepTime = 0.0
	body.linearVelocity.SetZero()
	body.angularVelocity = 0.0
	body.force.SetZero()
	body.torque = 0.0
}

/// SleepTime is how long the body has been a sleep candidate, in seconds.
func (body *RigidBody) SleepTime() float64 {
	return body.sleepTime
}

func (body *RigidBody) IsSimulating() bool {
	return body.flags.has(bodyFlagSimulating)
}

func (body *RigidBody) IsFixedRotation() bool {
	return body.flags.has(bodyFlagFixedRotation)
}

/// You can disable sleeping on this body. If you disable sleeping, the
/// body will be woken.
func (body *RigidBody) SetSleepingAllowed(flag bool) {
	body.flags.set(bodyFlagPreventSleep, !flag)
	if !flag {
		body.WakeUp()
	}
}

func (body *RigidBody) IsSleepingAllowed() bool {
	return !body.flags.has(bodyFlagPreventSleep)
}

/// Fixtures attached to this body, in creation order. The slice must not be
/// modified.
func (body *RigidBody) Fixtures() []*Fixture {
	return body.fixtures
}

/// Contact edges of this body. The slice must not be modified.
func (body *RigidBody) ContactEdges() []ContactEdge {
	return body.contacts
}

/// Joint edges of this body. The slice must not be modified.
func (body *RigidBody) JointEdges() []JointEdge {
	return body.joints
}

func (body *RigidBody) SetUserData(data any) {
	body.userData = data
}

func (body *RigidBody) UserData() any {
	return body.userData
}

/// Graph returns the owning graph, or nil once the body was destroyed.
func (body *RigidBody) Graph() *CollisionGraph {
	return body.graph
}

/// Apply a force at a world point. If the force is not
/// applied at the center of mass, it will generate a torque and
/// affect the angular velocity. This wakes up the body.
/// @param force the world force vector, usually in Newtons (N).
/// @param point the world position of the point of application.
/// @param wake also wake up the body
func (body *RigidBody) ApplyForce(force Vec2, point Vec2, wake bool) {
	if body.bodyType != DynamicBody {
		return
	}

	if wake && !body.IsAwake() {
		body.WakeUp()
	}

	// Don't accumulate a force if the body is sleeping.
	if body.IsAwake() {
		body.force = body.force.Add(force)
		body.torque += Vec2Cross(point.Sub(body.sweep.C), force)
	}
}

/// Apply a force to the center of mass. This wakes up the body.
func (body *RigidBody) ApplyForceToCenter(force Vec2, wake bool) {
	if body.bodyType != DynamicBody {
		return
	}

	if wake && !body.IsAwake() {
		body.WakeUp()
	}

	// Don't accumulate a force if the body is sleeping
	if body.IsAwake() {
		body.force = body.force.Add(force)
	}
}

/// Apply a torque. This affects the angular velocity
/// without affecting the linear velocity of the center of mass.
/// @param torque about the z-axis (out of the screen), usually in N-m.
func (body *RigidBody) ApplyTorque(torque float64, wake bool) {
	if body.bodyType != DynamicBody {
		return
	}

	if wake && !body.IsAwake() {
		body.WakeUp()
	}

	if body.IsAwake() {
		body.torque += torque
	}
}

/// Apply an impulse at a point. This immediately modifies the velocity.
/// It also modifies the angular velocity if the point of application
/// is not at the center of mass.
/// @param impulse the world impulse vector, usually in N-seconds or kg-m/s.
/// @param point the world position of the point of application.
func (body *RigidBody) ApplyLinearImpulse(impulse Vec2, point Vec2, wake bool) {
	if body.bodyType != DynamicBody {
		return
	}

	if wake && !body.IsAwake() {
		body.WakeUp()
	}

	// Don't accumulate velocity if the body is sleeping
	if body.IsAwake() {
		body.linearVelocity = body.linearVelocity.Add(impulse.Scale(body.invMass))
		body.angularVelocity += body.invI * Vec2Cross(point.Sub(body.sweep.C), impulse)
	}
}

/// Apply an angular impulse.
/// @param impulse the angular impulse in units of kg*m*m/s
func (body *RigidBody) ApplyAngularImpulse(impulse float64, wake bool) {
	if body.bodyType != DynamicBody {
		return
	}

	if wake && !body.IsAwake() {
		body.WakeUp()
	}

	if body.IsAwake() {
		body.angularVelocity += body.invI * impulse
	}
}

/// CreateFixture clones the profile shape, attaches it to the body and
/// updates the mass if the fixture has density. Contacts for the new
/// fixture are created at the beginning of the next step.
func (body *RigidBody) CreateFixture(profile FixtureProfile) (*Fixture, error) {
	graph, err := body.liveGraph()
	if err != nil {
		return nil, fmt.Errorf("create fixture: %w", err)
	}
	if graph.locked {
		return nil, ErrGraphLocked
	}

	if profile.Shape == nil {
		return nil, fmt.Errorf("create fixture on %s: nil shape: %w", body.id, ErrInvalidProfile)
	}

	if err := profile.Shape.Validate(); err != nil {
		return nil, fmt.Errorf("create fixture on %s: %w", body.id, err)
	}

	if !IsValid(profile.Density) || profile.Density < 0.0 {
		return nil, fmt.Errorf("create fixture on %s: density %v: %w", body.id, profile.Density, ErrInvalidProfile)
	}

	handle, fixture, err := graph.fixturePool.Alloc()
	if err != nil {
		return nil, fmt.Errorf("create fixture on %s: %w", body.id, err)
	}

	fixture.id = FixtureID(handle)
	fixture.create(body, &profile)

	if body.flags.has(bodyFlagSimulating) {
		fixture.createProxy(graph.contactManager.broadPhase, body.xf)
	}

	body.fixtures = append(body.fixtures, fixture)

	// Adjust mass properties if needed.
	if fixture.density > 0.0 {
		body.ComputeMass()
	}

	graph.logger.Debug("fixture created", "body", body.id, "fixture", fixture.id, "shape", fixture.shape.Type())

	return fixture, nil
}

/// CreateFixtureFromShape creates a fixture with default material values.
func (body *RigidBody) CreateFixtureFromShape(shape Shape, density float64) (*Fixture, error) {
	profile := DefaultFixtureProfile()
	profile.Shape = shape
	profile.Density = density

	return body.CreateFixture(profile)
}

/// DestroyFixture destroys every contact referencing the fixture, removes
/// its proxy, detaches it and recomputes the body mass. OnContactEnd fires
/// for contacts that were touching.
func (body *RigidBody) DestroyFixture(fixture *Fixture) error {
	if fixture == nil {
		return nil
	}

	graph, err := body.liveGraph()
	if err != nil {
		return fmt.Errorf("destroy %s: %w", fixture.id, err)
	}
	if graph.locked {
		return ErrGraphLocked
	}

	index := slices.Index(body.fixtures, fixture)
	if fixture.body != body || index < 0 {
		return fmt.Errorf("destroy %s: not attached to %s: %w", fixture.id, body.id, ErrInvalidProfile)
	}

	body.destroyFixture(fixture, index)

	// Reset the mass data.
	body.ComputeMass()

	return nil
}

func (body *RigidBody) destroyFixture(fixture *Fixture, index int) {
	graph := body.graph

	body.fixtures = slices.Delete(body.fixtures, index, index+1)

	// Destroy any contacts associated with the fixture.
	for i := 0; i < len(body.contacts); {
		c := body.contacts[i].Contact
		if c.fixtureA == fixture || c.fixtureB == fixture {
			// This destroys the contact and removes it from
			// this body's contact list.
			graph.contactManager.destroy(c)
			continue
		}
		i++
	}

	fixture.destroyProxy(graph.contactManager.broadPhase)

	graph.logger.Debug("fixture destroyed", "body", body.id, "fixture", fixture.id)

	graph.fixturePool.Free(Handle(fixture.id))
	fixture.body = nil
}

/// ComputeMass updates the mass properties to the sum of the mass
/// properties of the fixtures. This normally does not need to be called
/// unless you called SetDensity after attaching a fixture.
///
/// A dynamic body whose fixtures carry no mass falls back to unit mass and
/// unit inertia so the solver stays well posed.
func (body *RigidBody) ComputeMass() {

	// Compute mass data from shapes. Each shape has its own density.
	body.mass = 0.0
	body.invMass = 0.0
	body.inertia = 0.0
	body.invI = 0.0
	body.sweep.LocalCenter.SetZero()

	// Static and kinematic bodies have zero mass.
	if body.bodyType == StaticBody || body.bodyType == KinematicBody {
		body.sweep.C0 = body.xf.P
		body.sweep.C = body.xf.P
		body.sweep.A0 = body.sweep.A
		return
	}

	assert(body.bodyType == DynamicBody, "unknown body type")

	// Accumulate mass over all fixtures.
	localCenter := Vec2{}
	for _, f := range body.fixtures {
		if f.density == 0.0 {
			continue
		}

		massData := f.MassData()
		body.mass += massData.Mass
		localCenter = localCenter.Add(massData.Center.Scale(massData.Mass))
		body.inertia += massData.I
	}

	// Compute center of mass.
	if body.mass > 0.0 {
		body.invMass = 1.0 / body.mass
		localCenter = localCenter.Scale(body.invMass)

		if body.inertia > 0.0 && !body.flags.has(bodyFlagFixedRotation) {
			// Center the inertia about the center of mass.
			body.inertia -= body.mass * Vec2Dot(localCenter, localCenter)
			assert(body.inertia > 0.0, "non-positive rotational inertia")
			body.invI = 1.0 / body.inertia
		} else {
			body.inertia = 0.0
			body.invI = 0.0
		}
	} else {
		// Force all dynamic bodies to have a positive mass.
		body.mass = 1.0
		body.invMass = 1.0

		if !body.flags.has(bodyFlagFixedRotation) {
			body.inertia = 1.0
			body.invI = 1.0
		}

		if body.graph != nil {
			body.graph.logger.Debug("dynamic body has no mass, using unit mass", "body", body.id)
		}
	}

	// Move center of mass.
	oldCenter := body.sweep.C
	body.sweep.LocalCenter = localCenter
	body.sweep.C = body.xf.Mul(body.sweep.LocalCenter)
	body.sweep.C0 = body.sweep.C

	// Update center of mass velocity.
	body.linearVelocity = body.linearVelocity.Add(Vec2CrossScalarVector(
		body.angularVelocity,
		body.sweep.C.Sub(oldCenter),
	))
}

/// SetType changes the body type. Attached contacts are destroyed and
/// recreated on the next step.
func (body *RigidBody) SetType(t BodyType) error {
	graph, err := body.liveGraph()
	if err != nil {
		return fmt.Errorf("set type: %w", err)
	}
	if graph.locked {
		return ErrGraphLocked
	}

	if t > DynamicBody {
		return fmt.Errorf("body type %d: %w", t, ErrInvalidProfile)
	}

	if body.bodyType == t {
		return nil
	}

	body.bodyType = t

	body.ComputeMass()

	if body.bodyType == StaticBody {
		body.linearVelocity.SetZero()
		body.angularVelocity = 0.0
		body.sweep.A0 = body.sweep.A
		body.sweep.C0 = body.sweep.C
		body.flags.set(bodyFlagAwake, false)
		body.synchronizeFixtures()
	} else {
		body.WakeUp()
	}

	body.force.SetZero()
	body.torque = 0.0

	// Delete the attached contacts.
	body.destroyContacts()

	// Touch the proxies so that new contacts will be created (when appropriate)
	broadPhase := graph.contactManager.broadPhase
	for _, f := range body.fixtures {
		if f.proxy.ProxyID != NullNode {
			broadPhase.TouchProxy(f.proxy.ProxyID)
		}
	}

	return nil
}

/// Set the simulating state of the body. A body that does not simulate is
/// not stepped, has no proxies and no contacts. Its fixtures and joints
/// are kept.
func (body *RigidBody) SetSimulating(flag bool) error {
	graph, err := body.liveGraph()
	if err != nil {
		return fmt.Errorf("set simulating: %w", err)
	}
	if graph.locked {
		return ErrGraphLocked
	}

	if flag == body.IsSimulating() {
		return nil
	}

	broadPhase := graph.contactManager.broadPhase
	if flag {
		body.flags.set(bodyFlagSimulating, true)

		// Create all proxies.
		for _, f := range body.fixtures {
			f.createProxy(broadPhase, body.xf)
		}
	} else {
		body.flags.set(bodyFlagSimulating, false)

		// Destroy all proxies.
		for _, f := range body.fixtures {
			f.destroyProxy(broadPhase)
		}

		// Destroy the attached contacts.
		body.destroyContacts()
	}

	return nil
}

/// Set this body to have fixed rotation. This causes the mass to be reset.
func (body *RigidBody) SetFixedRotation(flag bool) {
	if body.IsFixedRotation() == flag {
		return
	}

	body.flags.set(bodyFlagFixedRotation, flag)

	body.angularVelocity = 0.0

	body.ComputeMass()
}

/// Set the position of the body's origin and rotation.
/// Manipulating a body's transform may cause non-physical behavior.
/// Contacts are updated on the next step.
func (body *RigidBody) SetTransform(position Vec2, angle float64) error {
	graph, err := body.liveGraph()
	if err != nil {
		return fmt.Errorf("set transform: %w", err)
	}
	if graph.locked {
		return ErrGraphLocked
	}

	if !position.IsValid() || !IsValid(angle) {
		return fmt.Errorf("set transform of %s to %v %v: %w", body.id, position, angle, ErrInvalidProfile)
	}

	body.xf = MakeTransformFromAngle(position, angle)

	body.sweep.C = body.xf.Mul(body.sweep.LocalCenter)
	body.sweep.A = angle

	body.sweep.C0 = body.sweep.C
	body.sweep.A0 = angle

	broadPhase := graph.contactManager.broadPhase
	for _, f := range body.fixtures {
		f.synchronize(broadPhase, body.xf, body.xf)
	}

	return nil
}

// liveGraph returns the graph of a body that has not been destroyed or
// cleared away.
func (body *RigidBody) liveGraph() (*CollisionGraph, error) {
	graph := body.graph
	if graph == nil || !graph.owns(body) {
		return nil, fmt.Errorf("%s is not alive: %w", body.id, ErrInvalidProfile)
	}
	return graph, nil
}

func (body *RigidBody) destroyContacts() {
	for len(body.contacts) > 0 {
		body.graph.contactManager.destroy(body.contacts[0].Contact)
	}
}

/// This is used to prevent connected bodies from colliding.
/// It may lie, depending on the collideConnected flag.
func (body *RigidBody) shouldCollide(other *RigidBody) bool {

	// At least one body should be dynamic.
	if body.bodyType != DynamicBody && other.bodyType != DynamicBody {
		return false
	}

	// Does a joint prevent collision?
	for _, jn := range body.joints {
		if jn.Other == other && !jn.Joint.CollideConnected() {
			return false
		}
	}

	return true
}

// hasEdge reports whether a contact already links the two fixtures.
func (body *RigidBody) hasEdge(fixtureA, fixtureB *Fixture) bool {
	for _, edge := range body.contacts {
		c := edge.Contact
		if (c.fixtureA == fixtureA && c.fixtureB == fixtureB) ||
			(c.fixtureA == fixtureB && c.fixtureB == fixtureA) {
			return true
		}
	}
	return false
}

func (body *RigidBody) removeContactEdge(contact *Contact) {
	index := slices.IndexFunc(body.contacts, func(edge ContactEdge) bool {
		return edge.Contact == contact
	})
	assert(index >= 0, "contact edge not found")
	body.contacts = slices.Delete(body.contacts, index, index+1)
}

func (body *RigidBody) removeJointEdge(joint Joint) {
	index := slices.IndexFunc(body.joints, func(edge JointEdge) bool {
		return edge.Joint == joint
	})
	assert(index >= 0, "joint edge not found")
	body.joints = slices.Delete(body.joints, index, index+1)
}

func (body *RigidBody) synchronizeFixtures() {
	xf1 := MakeTransformFromAngle(Vec2{}, body.sweep.A0)
	xf1.P = body.sweep.C0.Sub(xf1.Q.Rotate(body.sweep.LocalCenter))

	broadPhase := body.graph.contactManager.broadPhase
	for _, f := range body.fixtures {
		f.synchronize(broadPhase, xf1, body.xf)
	}
}

func (body *RigidBody) synchronizeTransform() {
	body.xf.Q = MakeRotFromAngle(body.sweep.A)
	body.xf.P = body.sweep.C.Sub(body.xf.Q.Rotate(body.sweep.LocalCenter))
}
