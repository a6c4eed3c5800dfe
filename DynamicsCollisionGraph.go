package physics2d

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
)

/// The collision graph manages all physics entities, dynamic simulation,
/// and asynchronous queries. The graph also contains efficient memory
/// management facilities.
///
/// A CollisionGraph is not safe for concurrent use.
type CollisionGraph struct {
	allocator   *BlockAllocator
	bodyPool    *Pool[RigidBody]
	fixturePool *Pool[Fixture]
	contactPool *Pool[Contact]
	jointPool   *Pool[RevoluteJoint]

	// Bodies and joints in creation order.
	bodies []*RigidBody
	joints []Joint

	contactManager *ContactManager

	gravity  Vec2
	listener Listener
	logger   *log.Logger

	velocityIterations int
	positionIterations int
	allowSleep         bool
	warmStarting       bool

	// Set during Step; every mutating call fails while it holds.
	locked bool

	// This is used to compute the time step ratio to
	// support a variable time step.
	invDt0 float64

	island island
	stack  *GrowableStack[*RigidBody]

	profile Profile
}

type GraphOption func(graph *CollisionGraph)

/// WithLogger routes the graph's debug records to logger.
func WithLogger(logger *log.Logger) GraphOption {
	return func(graph *CollisionGraph) {
		graph.logger = logger.WithPrefix(LogPrefix)
	}
}

/// WithListener registers the contact and destruction listener.
func WithListener(listener Listener) GraphOption {
	return func(graph *CollisionGraph) {
		graph.listener = listener
	}
}

/// WithContactFilter replaces the default group/category/mask filter.
func WithContactFilter(filter ContactFilter) GraphOption {
	return func(graph *CollisionGraph) {
		graph.contactManager.contactFilter = filter
	}
}

/// WithIterations sets the velocity and position solver iteration counts.
func WithIterations(velocity, position int) GraphOption {
	return func(graph *CollisionGraph) {
		graph.velocityIterations = velocity
		graph.positionIterations = position
	}
}

/// WithAllocatorLimit caps the allocator at the given number of chunks.
func WithAllocatorLimit(chunks int) GraphOption {
	return func(graph *CollisionGraph) {
		graph.allocator.SetChunkLimit(chunks)
	}
}

/// WithSleeping enables or disables sleep for the whole graph.
func WithSleeping(flag bool) GraphOption {
	return func(graph *CollisionGraph) {
		graph.allowSleep = flag
	}
}

/// WithWarmStarting enables or disables warm starting of the solvers.
func WithWarmStarting(flag bool) GraphOption {
	return func(graph *CollisionGraph) {
		graph.warmStarting = flag
	}
}

/// Construct a graph object.
/// @param gravity the graph gravity vector.
func NewCollisionGraph(gravity Vec2, opts ...GraphOption) *CollisionGraph {
	allocator := NewBlockAllocator()

	graph := &CollisionGraph{
		allocator:          allocator,
		bodyPool:           NewPool[RigidBody](allocator),
		fixturePool:        NewPool[Fixture](allocator),
		contactPool:        NewPool[Contact](allocator),
		jointPool:          NewPool[RevoluteJoint](allocator),
		gravity:            gravity,
		listener:           NopListener{},
		logger:             discardLogger(),
		velocityIterations: DefaultVelocityIterations,
		positionIterations: DefaultPositionIterations,
		allowSleep:         true,
		warmStarting:       true,
		stack:              NewGrowableStack[*RigidBody](64),
	}

	graph.contactManager = newContactManager(graph.contactPool, graph.logger)

	for _, opt := range opts {
		opt(graph)
	}

	graph.allocator.SetLogger(graph.logger)
	graph.contactManager.logger = graph.logger
	graph.contactManager.contactListener = graph.listener

	return graph
}

func (graph *CollisionGraph) Gravity() Vec2 {
	return graph.gravity
}

func (graph *CollisionGraph) SetGravity(gravity Vec2) {
	graph.gravity = gravity
}

/// Is the graph locked (in the middle of a time step).
func (graph *CollisionGraph) IsLocked() bool {
	return graph.locked
}

func (graph *CollisionGraph) ContactManager() *ContactManager {
	return graph.contactManager
}

/// Get the current profile.
func (graph *CollisionGraph) Profile() Profile {
	return graph.profile
}

func (graph *CollisionGraph) AllocatorStats() AllocatorStats {
	return graph.allocator.Stats()
}

/// Bodies in creation order. The slice must not be modified.
func (graph *CollisionGraph) Bodies() []*RigidBody {
	return graph.bodies
}

/// Joints in creation order. The slice must not be modified.
func (graph *CollisionGraph) Joints() []Joint {
	return graph.joints
}

/// Contacts in creation order. The slice must not be modified.
func (graph *CollisionGraph) Contacts() []*Contact {
	return graph.contactManager.contacts
}

func (graph *CollisionGraph) BodyCount() int {
	return len(graph.bodies)
}

func (graph *CollisionGraph) JointCount() int {
	return len(graph.joints)
}

func (graph *CollisionGraph) ContactCount() int {
	return len(graph.contactManager.contacts)
}

/// Body resolves an id, returning nil once the body was destroyed.
func (graph *CollisionGraph) Body(id BodyID) *RigidBody {
	return graph.bodyPool.Get(Handle(id))
}

/// Get the number of broad-phase proxies.
func (graph *CollisionGraph) ProxyCount() int {
	return graph.contactManager.broadPhase.ProxyCount()
}

/// Get the height of the dynamic tree.
func (graph *CollisionGraph) TreeHeight() int {
	return graph.contactManager.broadPhase.TreeHeight()
}

/// Get the quality metric of the dynamic tree. The smaller the better.
/// The minimum is 1.
func (graph *CollisionGraph) TreeQuality() float64 {
	return graph.contactManager.broadPhase.TreeQuality()
}

/// Create a rigid body given a profile.
func (graph *CollisionGraph) CreateBody(profile BodyProfile) (*RigidBody, error) {
	if graph.locked {
		return nil, ErrGraphLocked
	}

	if err := validateBodyProfile(&profile); err != nil {
		return nil, fmt.Errorf("create body: %w", err)
	}

	handle, body, err := graph.bodyPool.Alloc()
	if err != nil {
		return nil, fmt.Errorf("create body: %w", err)
	}

	body.id = BodyID(handle)
	body.create(&profile, graph)

	graph.bodies = append(graph.bodies, body)

	graph.logger.Debug("body created", "body", body.id, "type", body.bodyType)

	return body, nil
}

// owns reports whether body is a live body of this graph.
func (graph *CollisionGraph) owns(body *RigidBody) bool {
	return body != nil && body.graph == graph && graph.bodyPool.Get(Handle(body.id)) == body
}

/// Destroy a rigid body.
/// This automatically deletes all associated fixtures, contacts and joints.
/// OnDestroyed is called for every fixture.
func (graph *CollisionGraph) DestroyBody(body *RigidBody) error {
	if graph.locked {
		return ErrGraphLocked
	}

	if !graph.owns(body) {
		return fmt.Errorf("destroy body: not part of this graph: %w", ErrInvalidProfile)
	}

	// Delete the attached joints.
	for len(body.joints) > 0 {
		graph.destroyJoint(body.joints[0].Joint)
	}

	// Delete the attached contacts.
	body.destroyContacts()

	// Delete the attached fixtures. This destroys broad-phase proxies.
	for _, f := range body.fixtures {
		graph.listener.OnDestroyed(f)

		f.destroyProxy(graph.contactManager.broadPhase)
		graph.logger.Debug("fixture destroyed", "body", body.id, "fixture", f.id)
		graph.fixturePool.Free(Handle(f.id))
		f.body = nil
	}
	body.fixtures = nil

	index := slices.Index(graph.bodies, body)
	graph.bodies = slices.Delete(graph.bodies, index, index+1)

	graph.logger.Debug("body destroyed", "body", body.id)

	graph.bodyPool.Free(Handle(body.id))
	body.graph = nil

	return nil
}

/// Create a revolute joint to constrain bodies together. This may cause the
/// connected bodies to cease colliding.
func (graph *CollisionGraph) CreateRevoluteJoint(profile RevoluteJointProfile) (*RevoluteJoint, error) {
	if graph.locked {
		return nil, ErrGraphLocked
	}

	if err := validateRevoluteJointProfile(&profile); err != nil {
		return nil, fmt.Errorf("create joint: %w", err)
	}

	if !graph.owns(profile.BodyA) || !graph.owns(profile.BodyB) {
		return nil, fmt.Errorf("create joint: bodies from another graph: %w", ErrInvalidProfile)
	}

	handle, joint, err := graph.jointPool.Alloc()
	if err != nil {
		return nil, fmt.Errorf("create joint: %w", err)
	}

	joint.id = JointID(handle)
	joint.create(&profile)

	graph.joints = append(graph.joints, joint)

	bodyA := profile.BodyA
	bodyB := profile.BodyB

	// Connect to the bodies' joint lists.
	bodyA.joints = append(bodyA.joints, JointEdge{Other: bodyB, Joint: joint})
	bodyB.joints = append(bodyB.joints, JointEdge{Other: bodyA, Joint: joint})

	// If the joint prevents collisions, then flag any contacts for filtering.
	if !profile.CollideConnected {
		flagContactsBetween(bodyA, bodyB)
	}

	// Note: creating a joint doesn't wake the bodies.

	graph.logger.Debug("joint created", "joint", joint.id, "bodyA", bodyA.id, "bodyB", bodyB.id)

	return joint, nil
}

/// Destroy a joint. This may cause the connected bodies to begin colliding.
func (graph *CollisionGraph) DestroyJoint(joint Joint) error {
	if graph.locked {
		return ErrGraphLocked
	}

	if joint == nil || !slices.Contains(graph.joints, joint) {
		return fmt.Errorf("destroy joint: not part of this graph: %w", ErrInvalidProfile)
	}

	graph.destroyJoint(joint)
	return nil
}

func (graph *CollisionGraph) destroyJoint(joint Joint) {
	collideConnected := joint.CollideConnected()
	id := joint.ID()

	index := slices.Index(graph.joints, joint)
	graph.joints = slices.Delete(graph.joints, index, index+1)

	// Disconnect from island graph.
	bodyA := joint.BodyA()
	bodyB := joint.BodyB()

	// Wake up connected bodies.
	bodyA.WakeUp()
	bodyB.WakeUp()

	bodyA.removeJointEdge(joint)
	bodyB.removeJointEdge(joint)

	graph.jointPool.Free(Handle(id))

	// If the joint prevents collisions, then flag any contacts for filtering.
	if !collideConnected {
		flagContactsBetween(bodyA, bodyB)
	}

	graph.logger.Debug("joint destroyed", "joint", id)
}

// Flag the contacts for filtering at the next time step (where either
// body is awake).
func flagContactsBetween(bodyA, bodyB *RigidBody) {
	for _, edge := range bodyB.contacts {
		if edge.Other == bodyA {
			edge.Contact.flagForFiltering()
		}
	}
}

/// Take a time step. This performs collision detection, integration,
/// and constraint solution. Post-solve events are delivered once the graph
/// is unlocked again.
/// @param dt the amount of time to simulate, this should not vary.
func (graph *CollisionGraph) Step(dt float64) error {
	if graph.locked {
		return ErrGraphLocked
	}

	if !IsValid(dt) || dt < 0.0 {
		return fmt.Errorf("step %v: %w", dt, ErrInvalidStep)
	}

	stepStart := time.Now()
	graph.profile = Profile{}

	graph.locked = true

	step := timeStep{
		dt:                 dt,
		velocityIterations: graph.velocityIterations,
		positionIterations: graph.positionIterations,
		warmStarting:       graph.warmStarting,
	}
	if dt > 0.0 {
		step.invDt = 1.0 / dt
	}
	step.dtRatio = graph.invDt0 * dt

	// Create contacts for the proxies that moved since the last pass.
	start := time.Now()
	if err := graph.contactManager.findNewContacts(); err != nil {
		graph.locked = false
		return fmt.Errorf("step: %w", err)
	}
	graph.profile.Broadphase = time.Since(start)

	// Update contacts. This is where some contacts are destroyed.
	start = time.Now()
	graph.contactManager.collide()
	graph.profile.Collide = time.Since(start)

	// Integrate velocities, solve velocity constraints, and integrate positions.
	if step.dt > 0.0 {
		start = time.Now()
		graph.solve(step)
		graph.profile.Solve = time.Since(start)

		graph.invDt0 = step.invDt
	}

	graph.clearForces()

	graph.locked = false

	graph.reportPostSolve()

	graph.profile.Step = time.Since(stepStart)

	return nil
}

func (graph *CollisionGraph) solve(step timeStep) {
	isl := &graph.island

	// Clear all the island flags.
	for _, b := range graph.bodies {
		b.flags.set(bodyFlagIsland, false)
	}
	for _, c := range graph.contactManager.contacts {
		c.flags.set(contactFlagIsland, false)
	}
	for _, j := range graph.joints {
		j.base().islandFlag = false
	}

	// Build and simulate all awake islands.
	stack := graph.stack
	stack.Reset()

	for _, seed := range graph.bodies {
		if seed.flags.has(bodyFlagIsland) {
			continue
		}

		if !seed.IsAwake() || !seed.IsSimulating() {
			continue
		}

		// The seed can be dynamic or kinematic.
		if seed.bodyType == StaticBody {
			continue
		}

		// Reset island and stack.
		isl.clear()
		stack.Push(seed)
		seed.flags.set(bodyFlagIsland, true)

		// Perform a depth first search (DFS) on the constraint graph.
		for stack.Count() > 0 {
			// Grab the next body off the stack and add it to the island.
			b, _ := stack.Pop()
			assert(b.IsSimulating(), "island body is not simulating")
			isl.addBody(b)

			// Make sure the body is awake (without resetting sleep timer).
			b.flags.set(bodyFlagAwake, b.bodyType != StaticBody)

			// To keep islands as small as possible, we don't
			// propagate islands across static bodies.
			if b.bodyType == StaticBody {
				continue
			}

			// Search all contacts connected to this body.
			for _, ce := range b.contacts {
				contact := ce.Contact

				// Has this contact already been added to an island?
				if contact.flags.has(contactFlagIsland) {
					continue
				}

				// Is this contact solid and touching?
				if !contact.IsEnabled() || !contact.IsTouching() {
					continue
				}

				// Skip sensors.
				if contact.IsSensor() {
					continue
				}

				isl.addContact(contact)
				contact.flags.set(contactFlagIsland, true)

				other := ce.Other

				// Was the other body already added to this island?
				if other.flags.has(bodyFlagIsland) {
					continue
				}

				stack.Push(other)
				other.flags.set(bodyFlagIsland, true)
			}

			// Search all joints connect to this body.
			for _, je := range b.joints {
				joint := je.Joint.base()
				if joint.islandFlag {
					continue
				}

				other := je.Other

				// Don't simulate joints connected to bodies that are not simulating.
				if !other.IsSimulating() {
					continue
				}

				isl.addJoint(je.Joint)
				joint.islandFlag = true

				if other.flags.has(bodyFlagIsland) {
					continue
				}

				stack.Push(other)
				other.flags.set(bodyFlagIsland, true)
			}
		}

		if isl.solve(&graph.profile, step, graph.gravity, graph.allowSleep) {
			graph.logger.Debug("island asleep", "seed", seed.id, "bodies", len(isl.bodies))
		}

		// Post solve cleanup.
		for _, b := range isl.bodies {
			// Allow static bodies to participate in other islands.
			if b.bodyType == StaticBody {
				b.flags.set(bodyFlagIsland, false)
			}
		}
	}

	start := time.Now()

	// Synchronize fixtures.
	for _, b := range graph.bodies {
		// If a body was not in an island then it did not move.
		if !b.flags.has(bodyFlagIsland) {
			continue
		}

		if b.bodyType == StaticBody {
			continue
		}

		// Update fixtures (for broad-phase).
		b.synchronizeFixtures()
	}

	graph.profile.Broadphase += time.Since(start)
}

func (graph *CollisionGraph) clearForces() {
	for _, body := range graph.bodies {
		body.force.SetZero()
		body.torque = 0.0
	}
}

// reportPostSolve hands the impulses of the last step to the listener.
// Contacts destroyed since the solve are skipped.
func (graph *CollisionGraph) reportPostSolve() {
	events := graph.island.events
	graph.island.events = nil

	for i := range events {
		contact := graph.contactPool.Get(Handle(events[i].contact))
		if contact == nil {
			continue
		}
		graph.listener.OnPostSolve(contact, &events[i].impulse)
	}

	if graph.island.events == nil {
		graph.island.events = events[:0]
	}
}

/// Query the graph for all fixtures that potentially overlap the
/// provided AABB.
/// @param fn a user implemented callback function.
/// @param box the query box.
func (graph *CollisionGraph) QueryAABB(box AABB, fn QueryCallback) {
	broadPhase := graph.contactManager.broadPhase
	broadPhase.Query(func(proxyID int) bool {
		return fn(broadPhase.UserData(proxyID))
	}, box)
}

/// Ray-cast the graph for all fixtures in the path of the ray. Your callback
/// controls whether you get the closest point, any point, or n-points.
/// The ray-cast ignores shapes that contain the starting point.
/// @param point1 the ray starting point
/// @param point2 the ray ending point
func (graph *CollisionGraph) RayCast(point1, point2 Vec2, fn RayCastCallback) {
	broadPhase := graph.contactManager.broadPhase

	input := RayCastInput{
		P1:          point1,
		P2:          point2,
		MaxFraction: 1.0,
	}

	broadPhase.RayCast(func(input RayCastInput, proxyID int) float64 {
		fixture := broadPhase.UserData(proxyID)

		output, hit := fixture.RayCast(input)
		if !hit {
			return input.MaxFraction
		}

		fraction := output.Fraction
		point := input.P1.Scale(1.0 - fraction).Add(input.P2.Scale(fraction))
		return fn(fixture, point, output.Normal, fraction)
	}, input)
}

/// Clear destroys every body, fixture, contact and joint without firing
/// listener events, and releases the allocator chunks.
func (graph *CollisionGraph) Clear() error {
	if graph.locked {
		return ErrGraphLocked
	}

	for _, b := range graph.bodies {
		b.graph = nil
	}

	graph.bodies = nil
	graph.joints = nil
	graph.island = island{}
	graph.invDt0 = 0.0

	manager := newContactManager(graph.contactPool, graph.logger)
	manager.contactFilter = graph.contactManager.contactFilter
	manager.contactListener = graph.contactManager.contactListener
	graph.contactManager = manager

	graph.allocator.Clear()

	graph.logger.Debug("graph cleared")

	return nil
}

/// Dump writes the pose and velocity of every body, in creation order.
/// The output is stable across runs of the same scene.
func (graph *CollisionGraph) Dump(w io.Writer) error {
	for i, b := range graph.bodies {
		_, err := fmt.Fprintf(w, "%d %s p=(%.6f, %.6f) a=%.6f v=(%.6f, %.6f) w=%.6f awake=%t\n",
			i, b.bodyType,
			b.xf.P.X, b.xf.P.Y, b.sweep.A,
			b.linearVelocity.X, b.linearVelocity.Y, b.angularVelocity,
			b.IsAwake())
		if err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "contacts=%d joints=%d\n", len(graph.contactManager.contacts), len(graph.joints))
	return err
}
