package scene

import (
	"fmt"

	"github.com/ByteArena/physics2d"
)

const (
	DefaultDt    = 1.0 / 60.0
	DefaultSteps = 60
)

// Built is a graph populated from a scene.
type Built struct {
	Graph *physics2d.CollisionGraph

	// Bodies in file order, and the same bodies by name.
	Bodies []*physics2d.RigidBody
	ByName map[string]*physics2d.RigidBody

	Joints []*physics2d.RevoluteJoint

	Dt    float64
	Steps int
}

// Options translates the world settings into graph options. Extra options
// are applied last.
func (w World) Options(extra ...physics2d.GraphOption) []physics2d.GraphOption {
	var opts []physics2d.GraphOption

	if w.VelocityIterations > 0 || w.PositionIterations > 0 {
		velocity := w.VelocityIterations
		if velocity <= 0 {
			velocity = physics2d.DefaultVelocityIterations
		}
		position := w.PositionIterations
		if position <= 0 {
			position = physics2d.DefaultPositionIterations
		}
		opts = append(opts, physics2d.WithIterations(velocity, position))
	}

	if w.Sleeping != nil {
		opts = append(opts, physics2d.WithSleeping(*w.Sleeping))
	}

	if w.WarmStarting != nil {
		opts = append(opts, physics2d.WithWarmStarting(*w.WarmStarting))
	}

	return append(opts, extra...)
}

func (w World) gravity() physics2d.Vec2 {
	if w.Gravity == nil {
		return physics2d.DefaultGravity
	}
	return physics2d.MakeVec2(w.Gravity[0], w.Gravity[1])
}

// Build creates a graph holding every body and joint of the scene.
func Build(s *Scene, opts ...physics2d.GraphOption) (*Built, error) {
	defs, err := s.Resolve()
	if err != nil {
		return nil, err
	}

	graph := physics2d.NewCollisionGraph(s.World.gravity(), s.World.Options(opts...)...)

	built := &Built{
		Graph:  graph,
		ByName: make(map[string]*physics2d.RigidBody, len(defs)),
		Dt:     s.World.Dt,
		Steps:  s.World.Steps,
	}
	if built.Dt <= 0 {
		built.Dt = DefaultDt
	}
	if built.Steps <= 0 {
		built.Steps = DefaultSteps
	}

	for i := range defs {
		def := &defs[i]

		if def.Name != "" {
			if _, dup := built.ByName[def.Name]; dup {
				return nil, fmt.Errorf("body %q: %w", def.Name, ErrDuplicateBody)
			}
		}

		body, err := buildBody(graph, def)
		if err != nil {
			return nil, err
		}

		built.Bodies = append(built.Bodies, body)
		if def.Name != "" {
			built.ByName[def.Name] = body
		}
	}

	for i := range s.Joints {
		def := &s.Joints[i]

		joint, err := buildJoint(graph, built.ByName, def)
		if err != nil {
			return nil, fmt.Errorf("joint %d: %w", i, err)
		}
		built.Joints = append(built.Joints, joint)
	}

	return built, nil
}

func parseBodyType(name string) (physics2d.BodyType, error) {
	switch name {
	case "", "static":
		return physics2d.StaticBody, nil
	case "kinematic":
		return physics2d.KinematicBody, nil
	case "dynamic":
		return physics2d.DynamicBody, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownType)
}

func vec(v [2]float64) physics2d.Vec2 {
	return physics2d.MakeVec2(v[0], v[1])
}

func buildBody(graph *physics2d.CollisionGraph, def *BodyDef) (*physics2d.RigidBody, error) {
	bodyType, err := parseBodyType(def.Type)
	if err != nil {
		return nil, fmt.Errorf("body %q: %w", def.Name, err)
	}

	profile := physics2d.DefaultBodyProfile()
	profile.Type = bodyType
	profile.Position = vec(def.Position)
	profile.Angle = def.Angle
	profile.LinearVelocity = vec(def.LinearVelocity)
	profile.AngularVelocity = def.AngularVelocity
	profile.LinearDamping = def.LinearDamping
	profile.AngularDamping = def.AngularDamping
	profile.PreventRotation = def.FixedRotation
	profile.Bullet = def.Bullet
	profile.Awake = !def.Asleep
	profile.UserData = def.Name
	if def.GravityScale != nil {
		profile.GravityScale = *def.GravityScale
	}

	body, err := graph.CreateBody(profile)
	if err != nil {
		return nil, fmt.Errorf("body %q: %w", def.Name, err)
	}

	for i := range def.Fixtures {
		fixture, err := fixtureProfile(&def.Fixtures[i])
		if err != nil {
			return nil, fmt.Errorf("body %q fixture %d: %w", def.Name, i, err)
		}
		if _, err := body.CreateFixture(fixture); err != nil {
			return nil, fmt.Errorf("body %q fixture %d: %w", def.Name, i, err)
		}
	}

	return body, nil
}

func fixtureProfile(def *FixtureDef) (physics2d.FixtureProfile, error) {
	profile := physics2d.DefaultFixtureProfile()

	shape, err := buildShape(&def.Shape)
	if err != nil {
		return profile, err
	}

	profile.Shape = shape
	profile.Density = def.Density
	profile.Restitution = def.Restitution
	profile.IsSensor = def.Sensor
	if def.Friction != nil {
		profile.Friction = *def.Friction
	}
	if def.Category != 0 {
		profile.Filter.CategoryBits = physics2d.Category(def.Category)
	}
	if def.Mask != nil {
		profile.Filter.MaskBits = physics2d.Category(*def.Mask)
	}
	profile.Filter.GroupIndex = def.Group

	return profile, nil
}

func buildShape(def *ShapeDef) (physics2d.Shape, error) {
	switch def.Kind {
	case "circle":
		return physics2d.NewCircle(vec(def.Center), def.Radius), nil
	case "box":
		if def.Center == [2]float64{} && def.Angle == 0 {
			return physics2d.NewBox(def.HalfWidth, def.HalfHeight), nil
		}
		return physics2d.NewOrientedBox(def.HalfWidth, def.HalfHeight, vec(def.Center), def.Angle), nil
	case "polygon":
		points := make([]physics2d.Vec2, len(def.Points))
		for i, p := range def.Points {
			points[i] = vec(p)
		}
		poly, err := physics2d.NewPolygon(points...)
		if err != nil {
			return nil, err
		}
		return poly, nil
	}
	return nil, fmt.Errorf("%q: %w", def.Kind, ErrUnknownShape)
}

func buildJoint(graph *physics2d.CollisionGraph, bodies map[string]*physics2d.RigidBody, def *JointDef) (*physics2d.RevoluteJoint, error) {
	bodyA, ok := bodies[def.BodyA]
	if !ok {
		return nil, fmt.Errorf("%q: %w", def.BodyA, ErrUnknownBody)
	}
	bodyB, ok := bodies[def.BodyB]
	if !ok {
		return nil, fmt.Errorf("%q: %w", def.BodyB, ErrUnknownBody)
	}

	profile := physics2d.MakeRevoluteJointProfile(bodyA, bodyB, vec(def.Anchor))
	profile.CollideConnected = def.CollideConnected
	profile.EnableLimit = def.EnableLimit
	profile.LowerAngle = def.LowerAngle
	profile.UpperAngle = def.UpperAngle
	profile.EnableMotor = def.EnableMotor
	profile.MotorSpeed = def.MotorSpeed
	profile.MaxMotorTorque = def.MaxMotorTorque

	return graph.CreateRevoluteJoint(profile)
}
