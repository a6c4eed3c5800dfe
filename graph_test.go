package physics2d_test

import (
	"errors"
	"math"
	"testing"

	"github.com/ByteArena/physics2d"
)

const dt = 1.0 / 60.0

type recorder struct {
	physics2d.NopListener

	starts     int
	ends       int
	postSolves int
	destroyed  []*physics2d.Fixture
}

func (r *recorder) OnContactStart(*physics2d.Contact) { r.starts++ }
func (r *recorder) OnContactEnd(*physics2d.Contact)   { r.ends++ }

func (r *recorder) OnPostSolve(*physics2d.Contact, *physics2d.ContactImpulse) {
	r.postSolves++
}

func (r *recorder) OnDestroyed(fixture *physics2d.Fixture) {
	r.destroyed = append(r.destroyed, fixture)
}

func createBody(t *testing.T, graph *physics2d.CollisionGraph, bodyType physics2d.BodyType, p physics2d.Vec2, shapes ...physics2d.Shape) *physics2d.RigidBody {
	t.Helper()

	profile := physics2d.DefaultBodyProfile()
	profile.Type = bodyType
	profile.Position = p

	body, err := graph.CreateBody(profile)
	if err != nil {
		t.Fatalf("CreateBody: %v", err)
	}

	for _, shape := range shapes {
		if _, err := body.CreateFixtureFromShape(shape, 1.0); err != nil {
			t.Fatalf("CreateFixture: %v", err)
		}
	}

	return body
}

func step(t *testing.T, graph *physics2d.CollisionGraph, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := graph.Step(dt); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
}

func TestContactLifecycle(t *testing.T) {
	rec := &recorder{}
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{}, physics2d.WithListener(rec))

	createBody(t, graph, physics2d.StaticBody, physics2d.Vec2{}, physics2d.NewBox(1, 1))
	ball := createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(10, 0), physics2d.NewCircle(physics2d.Vec2{}, 0.5))

	step(t, graph, 1)
	if graph.ContactCount() != 0 || rec.starts != 0 {
		t.Fatalf("contacts = %d, starts = %d while apart", graph.ContactCount(), rec.starts)
	}

	if err := ball.SetTransform(physics2d.MakeVec2(0, 1.4), 0); err != nil {
		t.Fatalf("SetTransform: %v", err)
	}
	step(t, graph, 1)

	if graph.ContactCount() != 1 || rec.starts != 1 {
		t.Fatalf("contacts = %d, starts = %d while overlapping", graph.ContactCount(), rec.starts)
	}
	contact := graph.Contacts()[0]
	if !contact.IsTouching() || contact.Manifold().Count != 1 {
		t.Fatalf("contact %v is not touching", contact)
	}
	if rec.postSolves == 0 {
		t.Fatalf("no post-solve event for a touching contact")
	}
	if len(ball.ContactEdges()) != 1 {
		t.Fatalf("ball has %d contact edges", len(ball.ContactEdges()))
	}

	if err := ball.SetTransform(physics2d.MakeVec2(20, 0), 0); err != nil {
		t.Fatalf("SetTransform: %v", err)
	}
	step(t, graph, 1)

	if graph.ContactCount() != 0 || rec.ends != 1 {
		t.Fatalf("contacts = %d, ends = %d after separating", graph.ContactCount(), rec.ends)
	}
	if len(ball.ContactEdges()) != 0 {
		t.Fatalf("ball kept %d contact edges", len(ball.ContactEdges()))
	}
}

func TestStaticBodiesNeverPair(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.DefaultGravity)

	createBody(t, graph, physics2d.StaticBody, physics2d.Vec2{}, physics2d.NewBox(1, 1))
	createBody(t, graph, physics2d.StaticBody, physics2d.MakeVec2(0.5, 0), physics2d.NewBox(1, 1))
	createBody(t, graph, physics2d.KinematicBody, physics2d.MakeVec2(0, 0.5), physics2d.NewBox(1, 1))

	step(t, graph, 2)
	if graph.ContactCount() != 0 {
		t.Fatalf("ContactCount = %d between non-dynamic bodies", graph.ContactCount())
	}
}

func TestContactFiltering(t *testing.T) {
	cases := []struct {
		name    string
		filterA physics2d.Filter
		filterB physics2d.Filter
		want    int
	}{
		{
			name:    "default",
			filterA: physics2d.DefaultFilter(),
			filterB: physics2d.DefaultFilter(),
			want:    1,
		},
		{
			name:    "masked out",
			filterA: physics2d.Filter{CategoryBits: 0x0002, MaskBits: 0xFFFF},
			filterB: physics2d.Filter{CategoryBits: 0x0001, MaskBits: 0xFFFD},
			want:    0,
		},
		{
			name:    "positive group wins over mask",
			filterA: physics2d.Filter{CategoryBits: 0x0002, MaskBits: 0xFFFF, GroupIndex: 3},
			filterB: physics2d.Filter{CategoryBits: 0x0001, MaskBits: 0xFFFD, GroupIndex: 3},
			want:    1,
		},
		{
			name:    "negative group",
			filterA: physics2d.Filter{CategoryBits: 0x0001, MaskBits: 0xFFFF, GroupIndex: -1},
			filterB: physics2d.Filter{CategoryBits: 0x0001, MaskBits: 0xFFFF, GroupIndex: -1},
			want:    0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			graph := physics2d.NewCollisionGraph(physics2d.Vec2{})

			a := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))
			b := createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(0.5, 0), physics2d.NewCircle(physics2d.Vec2{}, 0.5))
			a.Fixtures()[0].SetFilter(tc.filterA)
			b.Fixtures()[0].SetFilter(tc.filterB)

			step(t, graph, 1)
			if graph.ContactCount() != tc.want {
				t.Fatalf("ContactCount = %d, want %d", graph.ContactCount(), tc.want)
			}
		})
	}
}

func TestSetFilterDestroysContact(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{})

	a := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))
	createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(0.5, 0), physics2d.NewCircle(physics2d.Vec2{}, 0.5))

	step(t, graph, 1)
	if graph.ContactCount() != 1 {
		t.Fatalf("ContactCount = %d, want 1", graph.ContactCount())
	}

	filter := physics2d.DefaultFilter()
	filter.MaskBits = 0
	a.Fixtures()[0].SetFilter(filter)

	step(t, graph, 1)
	if graph.ContactCount() != 0 {
		t.Fatalf("ContactCount = %d after masking, want 0", graph.ContactCount())
	}
}

func TestSensorReportsWithoutResponse(t *testing.T) {
	rec := &recorder{}
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{}, physics2d.WithListener(rec))

	sensor := createBody(t, graph, physics2d.StaticBody, physics2d.Vec2{})
	profile := physics2d.DefaultFixtureProfile()
	profile.Shape = physics2d.NewBox(1, 1)
	profile.IsSensor = true
	if _, err := sensor.CreateFixture(profile); err != nil {
		t.Fatalf("CreateFixture: %v", err)
	}

	ball := createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(0.2, 0), physics2d.NewCircle(physics2d.Vec2{}, 0.5))

	step(t, graph, 10)
	if rec.starts != 1 {
		t.Fatalf("starts = %d, want 1", rec.starts)
	}
	if rec.postSolves != 0 {
		t.Fatalf("sensor contact was solved %d times", rec.postSolves)
	}
	if p := ball.Position(); p != physics2d.MakeVec2(0.2, 0) {
		t.Fatalf("ball was pushed by a sensor to %v", p)
	}
}

func TestSleep(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{})
	body := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))

	for i := 0; i < 3; i++ {
		if err := graph.Step(0.125); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if !body.IsAwake() {
			t.Fatalf("asleep after %d steps", i+1)
		}
	}
	if body.SleepTime() != 0.375 {
		t.Fatalf("SleepTime = %v, want 0.375", body.SleepTime())
	}

	if err := graph.Step(0.125); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if body.IsAwake() {
		t.Fatalf("still awake after %v seconds at rest", physics2d.SleepThreshold)
	}

	body.WakeUp()
	if !body.IsAwake() || body.SleepTime() != 0 {
		t.Fatalf("WakeUp left awake = %v, sleep time = %v", body.IsAwake(), body.SleepTime())
	}
}

func TestSleepingDisabled(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{}, physics2d.WithSleeping(false))
	body := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))

	for i := 0; i < 10; i++ {
		if err := graph.Step(0.125); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !body.IsAwake() {
		t.Fatalf("body slept with sleeping disabled")
	}
}

func TestSetLinearVelocityWakes(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{})
	body := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))

	for i := 0; i < 4; i++ {
		if err := graph.Step(0.125); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if body.IsAwake() {
		t.Fatalf("body did not fall asleep")
	}

	body.SetLinearVelocity(physics2d.MakeVec2(1, 0))
	if !body.IsAwake() {
		t.Fatalf("SetLinearVelocity did not wake the body")
	}

	if err := graph.Step(0.125); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if x := body.Position().X; !near(x, 0.125, 1e-12) {
		t.Fatalf("x = %v, want 0.125", x)
	}
}

func TestPenetrationResolves(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{}, physics2d.WithSleeping(false))

	a := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))
	b := createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(0.8, 0), physics2d.NewCircle(physics2d.Vec2{}, 0.5))

	depth := func() float64 {
		return 1.0 - physics2d.Vec2Distance(a.Position(), b.Position())
	}

	last := depth()
	for i := 0; i < 200; i++ {
		step(t, graph, 1)

		d := depth()
		if d > last+1e-12 {
			t.Fatalf("step %d: depth grew from %v to %v", i, last, d)
		}
		last = d
	}

	if last > physics2d.LinearSlop+1e-6 {
		t.Fatalf("depth = %v after 200 steps, want at most %v", last, physics2d.LinearSlop)
	}
	if last < 0 {
		t.Fatalf("bodies were pushed apart to a gap of %v", -last)
	}
}

func TestBoxRestsOnGround(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.DefaultGravity)

	createBody(t, graph, physics2d.StaticBody, physics2d.Vec2{}, physics2d.NewBox(10, 0.5))
	box := createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(0, 2), physics2d.NewBox(0.5, 0.5))

	step(t, graph, 180)

	y := box.Position().Y
	if y < 1.0-3*physics2d.LinearSlop || y > 1.0+physics2d.LinearSlop {
		t.Fatalf("box rests at y = %v, want about 1", y)
	}
	if math.Abs(box.Angle()) > 0.01 {
		t.Fatalf("box tipped to %v", box.Angle())
	}
}

func TestComputeMass(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{})

	empty := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{})
	if empty.Mass() != 1 || empty.Inertia() != 1 {
		t.Fatalf("massless dynamic body: mass %v inertia %v, want 1 and 1", empty.Mass(), empty.Inertia())
	}

	body := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{},
		physics2d.NewBox(1, 0.5),
		physics2d.NewCircle(physics2d.MakeVec2(2, 0), 0.5),
	)

	mass, inertia, center := body.Mass(), body.Inertia(), body.LocalCenter()
	if !near(mass, 2+math.Pi*0.25, 1e-9) {
		t.Fatalf("Mass = %v", mass)
	}

	body.ComputeMass()
	body.ComputeMass()
	if body.Mass() != mass || body.Inertia() != inertia || body.LocalCenter() != center {
		t.Fatalf("ComputeMass is not idempotent: %v %v %v", body.Mass(), body.Inertia(), body.LocalCenter())
	}

	if err := body.Fixtures()[0].SetDensity(2); err != nil {
		t.Fatalf("SetDensity: %v", err)
	}
	body.ComputeMass()
	if !near(body.Mass(), 4+math.Pi*0.25, 1e-9) {
		t.Fatalf("Mass after SetDensity = %v", body.Mass())
	}

	static := createBody(t, graph, physics2d.StaticBody, physics2d.Vec2{}, physics2d.NewBox(1, 1))
	if static.Mass() != 0 || static.Inertia() != 0 {
		t.Fatalf("static body has mass %v", static.Mass())
	}
}

type lockProbe struct {
	physics2d.NopListener

	graph     *physics2d.CollisionGraph
	createErr error
	stepErr   error
	unlocked  bool
}

func (p *lockProbe) OnContactStart(*physics2d.Contact) {
	_, p.createErr = p.graph.CreateBody(physics2d.DefaultBodyProfile())
	p.stepErr = p.graph.Step(dt)
}

func (p *lockProbe) OnPostSolve(*physics2d.Contact, *physics2d.ContactImpulse) {
	p.unlocked = !p.graph.IsLocked()
}

func TestGraphLockedDuringStep(t *testing.T) {
	probe := &lockProbe{}
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{}, physics2d.WithListener(probe))
	probe.graph = graph

	createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))
	createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(0.5, 0), physics2d.NewCircle(physics2d.Vec2{}, 0.5))

	step(t, graph, 1)

	if !errors.Is(probe.createErr, physics2d.ErrGraphLocked) {
		t.Fatalf("CreateBody from a listener = %v, want ErrGraphLocked", probe.createErr)
	}
	if !errors.Is(probe.stepErr, physics2d.ErrGraphLocked) {
		t.Fatalf("Step from a listener = %v, want ErrGraphLocked", probe.stepErr)
	}
	if !probe.unlocked {
		t.Fatalf("post-solve ran while the graph was locked")
	}
	if graph.IsLocked() || graph.BodyCount() != 2 {
		t.Fatalf("locked = %v, bodies = %d after the step", graph.IsLocked(), graph.BodyCount())
	}
}

func TestInvalidStep(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.DefaultGravity)
	body := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))

	for _, bad := range []float64{-dt, math.NaN(), math.Inf(1)} {
		if err := graph.Step(bad); !errors.Is(err, physics2d.ErrInvalidStep) {
			t.Fatalf("Step(%v) = %v, want ErrInvalidStep", bad, err)
		}
	}

	if err := graph.Step(0); err != nil {
		t.Fatalf("Step(0): %v", err)
	}
	if body.Position() != (physics2d.Vec2{}) {
		t.Fatalf("Step(0) moved the body to %v", body.Position())
	}
}

func TestDestroyBodyCascade(t *testing.T) {
	rec := &recorder{}
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{}, physics2d.WithListener(rec))

	createBody(t, graph, physics2d.StaticBody, physics2d.Vec2{}, physics2d.NewBox(5, 0.5))
	body := createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(0, 0.9),
		physics2d.NewCircle(physics2d.Vec2{}, 0.5),
		physics2d.NewOrientedBox(0.3, 0.3, physics2d.MakeVec2(1, 0), 0),
	)
	other := createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(3, 3), physics2d.NewCircle(physics2d.Vec2{}, 0.5))

	joint, err := graph.CreateRevoluteJoint(physics2d.MakeRevoluteJointProfile(body, other, physics2d.MakeVec2(1.5, 2)))
	if err != nil {
		t.Fatalf("CreateRevoluteJoint: %v", err)
	}

	step(t, graph, 1)
	if graph.ContactCount() == 0 {
		t.Fatalf("no contact with the ground")
	}

	touching := 0
	for _, c := range graph.Contacts() {
		if c.IsTouching() {
			touching++
		}
	}
	endsBefore := rec.ends
	id := body.ID()

	if err := graph.DestroyBody(body); err != nil {
		t.Fatalf("DestroyBody: %v", err)
	}

	if len(rec.destroyed) != 2 {
		t.Fatalf("OnDestroyed ran %d times, want 2", len(rec.destroyed))
	}
	if rec.ends-endsBefore != touching {
		t.Fatalf("ends = %d, want %d", rec.ends-endsBefore, touching)
	}
	if graph.ContactCount() != 0 || graph.JointCount() != 0 {
		t.Fatalf("contacts = %d, joints = %d", graph.ContactCount(), graph.JointCount())
	}
	if graph.ProxyCount() != 2 || graph.BodyCount() != 2 {
		t.Fatalf("proxies = %d, bodies = %d", graph.ProxyCount(), graph.BodyCount())
	}
	if graph.Body(id) != nil {
		t.Fatalf("destroyed body still resolves")
	}
	if len(other.JointEdges()) != 0 {
		t.Fatalf("joint edge left on the other body")
	}
	if err := graph.DestroyJoint(joint); !errors.Is(err, physics2d.ErrInvalidProfile) {
		t.Fatalf("DestroyJoint of a cascaded joint = %v", err)
	}
	if err := graph.DestroyBody(body); !errors.Is(err, physics2d.ErrInvalidProfile) {
		t.Fatalf("second DestroyBody = %v", err)
	}

	step(t, graph, 1)
}

func TestQueryAndRayCast(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{})

	first := createBody(t, graph, physics2d.StaticBody, physics2d.MakeVec2(3, 0), physics2d.NewBox(0.5, 0.5))
	createBody(t, graph, physics2d.StaticBody, physics2d.MakeVec2(6, 0), physics2d.NewBox(0.5, 0.5))
	createBody(t, graph, physics2d.StaticBody, physics2d.MakeVec2(0, 6), physics2d.NewCircle(physics2d.Vec2{}, 0.5))

	found := 0
	graph.QueryAABB(physics2d.MakeAABB(physics2d.MakeVec2(-1, -1), physics2d.MakeVec2(4, 1)), func(*physics2d.Fixture) bool {
		found++
		return true
	})
	if found != 1 {
		t.Fatalf("QueryAABB found %d fixtures, want 1", found)
	}

	var closest *physics2d.Fixture
	var hit physics2d.Vec2
	graph.RayCast(physics2d.Vec2{}, physics2d.MakeVec2(10, 0), func(fixture *physics2d.Fixture, point, normal physics2d.Vec2, fraction float64) float64 {
		closest = fixture
		hit = point
		return fraction
	})

	if closest == nil || closest.Body() != first {
		t.Fatalf("ray hit %v, want the nearest box", closest)
	}
	if !near(hit.X, 2.5, 1e-9) || !near(hit.Y, 0, 1e-9) {
		t.Fatalf("ray hit at %v, want (2.5, 0)", hit)
	}
}

func TestClear(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.DefaultGravity)

	body := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))
	createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(0.5, 0), physics2d.NewCircle(physics2d.Vec2{}, 0.5))
	step(t, graph, 1)

	id := body.ID()
	if err := graph.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if graph.BodyCount() != 0 || graph.ContactCount() != 0 || graph.ProxyCount() != 0 {
		t.Fatalf("Clear left bodies = %d, contacts = %d, proxies = %d",
			graph.BodyCount(), graph.ContactCount(), graph.ProxyCount())
	}
	if graph.Body(id) != nil {
		t.Fatalf("body handle survived Clear")
	}
	if stats := graph.AllocatorStats(); stats.InUse != 0 || stats.Chunks != 0 {
		t.Fatalf("allocator after Clear = %+v", stats)
	}

	createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))
	step(t, graph, 1)
	if graph.Body(id) != nil {
		t.Fatalf("old handle resolves to a new body")
	}
}

func TestAllocatorLimit(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{}, physics2d.WithAllocatorLimit(1))

	profile := physics2d.DefaultBodyProfile()
	var err error
	for i := 0; i < 10000 && err == nil; i++ {
		_, err = graph.CreateBody(profile)
	}
	if !errors.Is(err, physics2d.ErrAllocatorExhausted) {
		t.Fatalf("CreateBody past the limit = %v, want ErrAllocatorExhausted", err)
	}
}

func TestSetDensityRejectsInvalidValues(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{})
	body := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewBox(1, 1))
	fixture := body.Fixtures()[0]

	for _, density := range []float64{-1, math.NaN(), math.Inf(1)} {
		if err := fixture.SetDensity(density); !errors.Is(err, physics2d.ErrInvalidProfile) {
			t.Fatalf("SetDensity(%v) = %v, want ErrInvalidProfile", density, err)
		}
	}
	if fixture.Density() != 1 {
		t.Fatalf("Density = %v after rejected updates, want 1", fixture.Density())
	}
}

func TestIslandSleepsTogether(t *testing.T) {
	cases := []struct {
		name    string
		profile func(*physics2d.BodyProfile)
		hold    func(*physics2d.RigidBody)
	}{
		{
			name: "sleeping not allowed",
			hold: func(body *physics2d.RigidBody) { body.SetSleepingAllowed(false) },
		},
		{
			name:    "prevent sleep profile",
			profile: func(profile *physics2d.BodyProfile) { profile.PreventSleep = true },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			graph := physics2d.NewCollisionGraph(physics2d.Vec2{})

			resting := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))

			profile := physics2d.DefaultBodyProfile()
			profile.Type = physics2d.DynamicBody
			profile.Position = physics2d.MakeVec2(1-0.5*physics2d.LinearSlop, 0)
			if tc.profile != nil {
				tc.profile(&profile)
			}
			holder, err := graph.CreateBody(profile)
			if err != nil {
				t.Fatalf("CreateBody: %v", err)
			}
			if _, err := holder.CreateFixtureFromShape(physics2d.NewCircle(physics2d.Vec2{}, 0.5), 1); err != nil {
				t.Fatalf("CreateFixture: %v", err)
			}
			if tc.hold != nil {
				tc.hold(holder)
			}

			for i := 0; i < 8; i++ {
				if err := graph.Step(0.125); err != nil {
					t.Fatalf("Step: %v", err)
				}
			}
			if graph.ContactCount() != 1 {
				t.Fatalf("ContactCount = %d, want the bodies touching", graph.ContactCount())
			}
			if !resting.IsAwake() || !holder.IsAwake() {
				t.Fatalf("island slept while one body could not: awake = %v, %v", resting.IsAwake(), holder.IsAwake())
			}
			if resting.SleepTime() < physics2d.SleepThreshold {
				t.Fatalf("resting body SleepTime = %v, want it past the threshold", resting.SleepTime())
			}

			holder.SetSleepingAllowed(true)

			for i := 0; i < 3; i++ {
				if err := graph.Step(0.125); err != nil {
					t.Fatalf("Step: %v", err)
				}
				if !resting.IsAwake() || !holder.IsAwake() {
					t.Fatalf("step %d: island slept before the released body was idle long enough", i)
				}
			}

			if err := graph.Step(0.125); err != nil {
				t.Fatalf("Step: %v", err)
			}
			if resting.IsAwake() || holder.IsAwake() {
				t.Fatalf("island did not sleep together: awake = %v, %v", resting.IsAwake(), holder.IsAwake())
			}
		})
	}
}

func TestSleepWaitsForResolvedOverlap(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{})

	a := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))
	b := createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(0.5, 0), physics2d.NewCircle(physics2d.Vec2{}, 0.5))

	if err := graph.Step(0.125); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if a.SleepTime() != 0 || b.SleepTime() != 0 {
		t.Fatalf("sleep time grew while overlapping: %v, %v", a.SleepTime(), b.SleepTime())
	}

	resolved, slept := -1, -1
	for i := 1; i < 40 && slept < 0; i++ {
		if err := graph.Step(0.125); err != nil {
			t.Fatalf("Step: %v", err)
		}

		gap := physics2d.Vec2Distance(a.Position(), b.Position())
		if resolved < 0 && gap >= 1-3*physics2d.LinearSlop {
			resolved = i
		}
		if !a.IsAwake() {
			if b.IsAwake() {
				t.Fatalf("step %d: touching bodies slept apart", i)
			}
			slept = i
		}
	}

	if resolved < 0 || slept < 0 {
		t.Fatalf("overlap resolved at step %d, slept at step %d", resolved, slept)
	}
	if slept < resolved+3 {
		t.Fatalf("slept at step %d, only %d steps after the overlap resolved at step %d", slept, slept-resolved, resolved)
	}
}

func TestDestroyedBodyPointerIsRejected(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{})

	old := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))
	oldID := old.ID()
	if err := graph.DestroyBody(old); err != nil {
		t.Fatalf("DestroyBody: %v", err)
	}

	live := createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(3, 0), physics2d.NewCircle(physics2d.Vec2{}, 0.5))
	if live == old {
		t.Fatalf("new body aliases the destroyed one")
	}
	if graph.Body(oldID) != nil || old.Graph() != nil {
		t.Fatalf("destroyed body still resolves")
	}

	if err := graph.DestroyBody(old); !errors.Is(err, physics2d.ErrInvalidProfile) {
		t.Fatalf("DestroyBody(stale) = %v, want ErrInvalidProfile", err)
	}
	if graph.BodyCount() != 1 || graph.Body(live.ID()) != live {
		t.Fatalf("stale destroy touched the live body, BodyCount = %d", graph.BodyCount())
	}

	if _, err := old.CreateFixtureFromShape(physics2d.NewBox(1, 1), 1); !errors.Is(err, physics2d.ErrInvalidProfile) {
		t.Fatalf("CreateFixture on a destroyed body = %v", err)
	}
	if err := old.DestroyFixture(live.Fixtures()[0]); !errors.Is(err, physics2d.ErrInvalidProfile) {
		t.Fatalf("DestroyFixture on a destroyed body = %v", err)
	}
	if err := old.SetType(physics2d.StaticBody); !errors.Is(err, physics2d.ErrInvalidProfile) {
		t.Fatalf("SetType on a destroyed body = %v", err)
	}
	if err := old.SetTransform(physics2d.MakeVec2(1, 1), 0); !errors.Is(err, physics2d.ErrInvalidProfile) {
		t.Fatalf("SetTransform on a destroyed body = %v", err)
	}
	if err := old.SetSimulating(false); !errors.Is(err, physics2d.ErrInvalidProfile) {
		t.Fatalf("SetSimulating on a destroyed body = %v", err)
	}
	if _, err := graph.CreateRevoluteJoint(physics2d.MakeRevoluteJointProfile(old, live, physics2d.Vec2{})); !errors.Is(err, physics2d.ErrInvalidProfile) {
		t.Fatalf("CreateRevoluteJoint with a destroyed body = %v", err)
	}

	step(t, graph, 1)
	if len(live.Fixtures()) != 1 || live.Type() != physics2d.DynamicBody {
		t.Fatalf("live body was changed through a stale pointer")
	}

	fixture := live.Fixtures()[0]
	if err := live.DestroyFixture(fixture); err != nil {
		t.Fatalf("DestroyFixture: %v", err)
	}
	if fixture.Body() != nil {
		t.Fatalf("destroyed fixture still reports its body")
	}
	if err := live.DestroyFixture(fixture); !errors.Is(err, physics2d.ErrInvalidProfile) {
		t.Fatalf("second DestroyFixture = %v, want ErrInvalidProfile", err)
	}

	if err := graph.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := live.CreateFixtureFromShape(physics2d.NewBox(1, 1), 1); !errors.Is(err, physics2d.ErrInvalidProfile) {
		t.Fatalf("CreateFixture after Clear = %v", err)
	}
}
