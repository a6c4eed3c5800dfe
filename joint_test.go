package physics2d_test

import (
	"errors"
	"math"
	"testing"

	"github.com/ByteArena/physics2d"
)

func TestRevolutePendulumKeepsAnchor(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.DefaultGravity)

	ground := createBody(t, graph, physics2d.StaticBody, physics2d.Vec2{})
	bob := createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(2, 0), physics2d.NewBox(0.25, 0.25))

	joint, err := graph.CreateRevoluteJoint(physics2d.MakeRevoluteJointProfile(ground, bob, physics2d.Vec2{}))
	if err != nil {
		t.Fatalf("CreateRevoluteJoint: %v", err)
	}
	if graph.JointCount() != 1 || len(bob.JointEdges()) != 1 || len(ground.JointEdges()) != 1 {
		t.Fatalf("joint edges were not connected")
	}

	lowest := 0.0
	for i := 0; i < 120; i++ {
		step(t, graph, 1)

		if gap := physics2d.Vec2Distance(joint.AnchorA(), joint.AnchorB()); gap > 0.02 {
			t.Fatalf("step %d: anchors drifted %v apart", i, gap)
		}
		lowest = math.Min(lowest, bob.Position().Y)
	}

	if lowest > -1.5 {
		t.Fatalf("pendulum never swung down, lowest y = %v", lowest)
	}
	if r := bob.Position().Length(); math.Abs(r-2) > 0.05 {
		t.Fatalf("pendulum length = %v, want 2", r)
	}
}

func TestRevoluteMotor(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{})

	ground := createBody(t, graph, physics2d.StaticBody, physics2d.Vec2{})
	wheel := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))

	profile := physics2d.MakeRevoluteJointProfile(ground, wheel, physics2d.Vec2{})
	profile.EnableMotor = true
	profile.MotorSpeed = 2
	profile.MaxMotorTorque = 1000

	joint, err := graph.CreateRevoluteJoint(profile)
	if err != nil {
		t.Fatalf("CreateRevoluteJoint: %v", err)
	}

	step(t, graph, 60)

	if !near(joint.JointSpeed(), 2, 1e-6) {
		t.Fatalf("JointSpeed = %v, want 2", joint.JointSpeed())
	}
	if !near(joint.JointAngle(), 2, 0.05) {
		t.Fatalf("JointAngle = %v after one second, want about 2", joint.JointAngle())
	}
	if !wheel.IsAwake() {
		t.Fatalf("a driven wheel fell asleep")
	}

	joint.SetMotorSpeed(-1)
	step(t, graph, 1)
	if !near(joint.JointSpeed(), -1, 1e-6) {
		t.Fatalf("JointSpeed = %v, want -1", joint.JointSpeed())
	}
}

func TestRevoluteLimit(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.DefaultGravity)

	ground := createBody(t, graph, physics2d.StaticBody, physics2d.Vec2{})
	arm := createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(1, 0), physics2d.NewBox(1, 0.1))

	profile := physics2d.MakeRevoluteJointProfile(ground, arm, physics2d.Vec2{})
	profile.EnableLimit = true
	profile.LowerAngle = -0.25
	profile.UpperAngle = 0.25

	joint, err := graph.CreateRevoluteJoint(profile)
	if err != nil {
		t.Fatalf("CreateRevoluteJoint: %v", err)
	}

	step(t, graph, 120)

	if angle := joint.JointAngle(); angle < -0.35 || angle > -0.15 {
		t.Fatalf("JointAngle = %v, want to rest near the lower limit", angle)
	}

	if err := joint.SetLimits(1, -1); !errors.Is(err, physics2d.ErrInvalidProfile) {
		t.Fatalf("SetLimits(1, -1) = %v, want ErrInvalidProfile", err)
	}
	if joint.LowerLimit() != -0.25 || joint.UpperLimit() != 0.25 {
		t.Fatalf("rejected limits were applied")
	}
}

func TestRevoluteProfileValidation(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.Vec2{})
	a := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{})
	b := createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(1, 0))

	foreign := createBody(t, physics2d.NewCollisionGraph(physics2d.Vec2{}), physics2d.DynamicBody, physics2d.Vec2{})

	cases := []struct {
		name    string
		profile physics2d.RevoluteJointProfile
	}{
		{"single body", physics2d.MakeRevoluteJointProfile(a, a, physics2d.Vec2{})},
		{"missing body", physics2d.RevoluteJointProfile{BodyA: a}},
		{"inverted limits", func() physics2d.RevoluteJointProfile {
			p := physics2d.MakeRevoluteJointProfile(a, b, physics2d.Vec2{})
			p.LowerAngle, p.UpperAngle = 1, -1
			return p
		}()},
		{"negative torque", func() physics2d.RevoluteJointProfile {
			p := physics2d.MakeRevoluteJointProfile(a, b, physics2d.Vec2{})
			p.MaxMotorTorque = -1
			return p
		}()},
		{"foreign body", physics2d.MakeRevoluteJointProfile(a, foreign, physics2d.Vec2{})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := graph.CreateRevoluteJoint(tc.profile); !errors.Is(err, physics2d.ErrInvalidProfile) {
				t.Fatalf("CreateRevoluteJoint = %v, want ErrInvalidProfile", err)
			}
		})
	}

	if graph.JointCount() != 0 {
		t.Fatalf("JointCount = %d after rejected profiles", graph.JointCount())
	}
}

func TestJointDisablesCollision(t *testing.T) {
	for _, collide := range []bool{false, true} {
		graph := physics2d.NewCollisionGraph(physics2d.Vec2{})

		a := createBody(t, graph, physics2d.DynamicBody, physics2d.Vec2{}, physics2d.NewCircle(physics2d.Vec2{}, 0.5))
		b := createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(0.5, 0), physics2d.NewCircle(physics2d.Vec2{}, 0.5))

		profile := physics2d.MakeRevoluteJointProfile(a, b, physics2d.MakeVec2(0.25, 0))
		profile.CollideConnected = collide
		if _, err := graph.CreateRevoluteJoint(profile); err != nil {
			t.Fatalf("CreateRevoluteJoint: %v", err)
		}

		step(t, graph, 1)

		want := 0
		if collide {
			want = 1
		}
		if graph.ContactCount() != want {
			t.Fatalf("CollideConnected = %v: ContactCount = %d, want %d", collide, graph.ContactCount(), want)
		}
	}
}
