package physics2d

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
)

/// Delegate of CollisionGraph.
type ContactManager struct {
	broadPhase *BroadPhase[*Fixture]

	// Contacts in creation order.
	contacts []*Contact

	contactFilter   ContactFilter
	contactListener Listener

	pool   *Pool[Contact]
	logger *log.Logger
}

func newContactManager(pool *Pool[Contact], logger *log.Logger) *ContactManager {
	return &ContactManager{
		broadPhase:      NewBroadPhase[*Fixture](),
		contactFilter:   DefaultContactFilter{},
		contactListener: NopListener{},
		pool:            pool,
		logger:          logger,
	}
}

func (mgr *ContactManager) BroadPhase() *BroadPhase[*Fixture] {
	return mgr.broadPhase
}

/// Contacts in creation order. The slice must not be modified.
func (mgr *ContactManager) Contacts() []*Contact {
	return mgr.contacts
}

func (mgr *ContactManager) ContactCount() int {
	return len(mgr.contacts)
}

func (mgr *ContactManager) destroy(c *Contact) {
	fixtureA := c.fixtureA
	fixtureB := c.fixtureB
	bodyA := fixtureA.body
	bodyB := fixtureB.body

	if c.IsTouching() {
		mgr.contactListener.OnContactEnd(c)

		if !fixtureA.isSensor && !fixtureB.isSensor {
			bodyA.WakeUp()
			bodyB.WakeUp()
		}
	}

	// Remove from the graph.
	index := slices.Index(mgr.contacts, c)
	assert(index >= 0, "contact not found")
	mgr.contacts = slices.Delete(mgr.contacts, index, index+1)

	// Remove from body 1
	bodyA.removeContactEdge(c)

	// Remove from body 2
	bodyB.removeContactEdge(c)

	mgr.logger.Debug("contact destroyed", "contact", c.id)

	mgr.pool.Free(Handle(c.id))
}

// This is the top level collision call for the time step. Here
// all the narrow phase collision is processed for the graph
// contact list.
func (mgr *ContactManager) collide() {
	// Update awake contacts.
	for i := 0; i < len(mgr.contacts); {
		c := mgr.contacts[i]

		fixtureA := c.fixtureA
		fixtureB := c.fixtureB
		bodyA := fixtureA.body
		bodyB := fixtureB.body

		// Is this contact flagged for filtering?
		if c.flags.has(contactFlagFilter) {
			// Should these bodies collide?
			if !bodyB.shouldCollide(bodyA) {
				mgr.destroy(c)
				continue
			}

			// Check user filtering.
			if !mgr.contactFilter.ShouldCollide(fixtureA, fixtureB) {
				mgr.destroy(c)
				continue
			}

			// Clear the filtering flag.
			c.flags.set(contactFlagFilter, false)
		}

		// At least one body must be awake and it must be dynamic or kinematic.
		if !bodyA.IsAwake() && !bodyB.IsAwake() {
			i++
			continue
		}

		overlap := mgr.broadPhase.TestOverlap(fixtureA.proxy.ProxyID, fixtureB.proxy.ProxyID)

		// Here we destroy contacts that cease to overlap in the broad-phase.
		if !overlap {
			mgr.destroy(c)
			continue
		}

		// The contact persists.
		wasTouching := c.IsTouching()
		c.update(mgr.contactListener)
		if touching := c.IsTouching(); touching != wasTouching {
			mgr.logger.Debug("contact touching", "contact", c.id, "touching", touching)
		}
		i++
	}
}

func (mgr *ContactManager) findNewContacts() error {
	return mgr.broadPhase.UpdatePairs(mgr.addPair)
}

// Broad-phase callback.
func (mgr *ContactManager) addPair(fixtureA *Fixture, fixtureB *Fixture) error {
	bodyA := fixtureA.body
	bodyB := fixtureB.body

	// Are the fixtures on the same body?
	if bodyA == bodyB {
		return nil
	}

	// Does a contact already exist?
	if bodyB.hasEdge(fixtureA, fixtureB) {
		return nil
	}

	// Does a joint override collision? Is at least one body dynamic?
	if !bodyB.shouldCollide(bodyA) {
		return nil
	}

	// Check user filtering.
	if !mgr.contactFilter.ShouldCollide(fixtureA, fixtureB) {
		return nil
	}

	// Polygon/circle pairs are evaluated with the polygon as A.
	if fixtureA.Type() == ShapeCircle && fixtureB.Type() == ShapePolygon {
		fixtureA, fixtureB = fixtureB, fixtureA
		bodyA, bodyB = bodyB, bodyA
	}

	handle, c, err := mgr.pool.Alloc()
	if err != nil {
		return fmt.Errorf("create contact: %w", err)
	}

	c.id = ContactID(handle)
	c.create(fixtureA, fixtureB)

	// Insert into the graph.
	mgr.contacts = append(mgr.contacts, c)

	// Connect to island graph.
	bodyA.contacts = append(bodyA.contacts, ContactEdge{Other: bodyB, Contact: c})
	bodyB.contacts = append(bodyB.contacts, ContactEdge{Other: bodyA, Contact: c})

	// Wake up the bodies
	if !fixtureA.isSensor && !fixtureB.isSensor {
		bodyA.WakeUp()
		bodyB.WakeUp()
	}

	mgr.logger.Debug("contact created", "contact", c.id, "fixtureA", fixtureA.id, "fixtureB", fixtureB.id)

	return nil
}
