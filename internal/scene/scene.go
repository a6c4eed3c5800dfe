// Package scene loads YAML scene descriptions and builds collision graphs
// from them.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownTemplate = errors.New("scene: unknown template")
	ErrUnknownBody     = errors.New("scene: unknown body")
	ErrUnknownShape    = errors.New("scene: unknown shape kind")
	ErrUnknownType     = errors.New("scene: unknown body type")
	ErrDuplicateBody   = errors.New("scene: duplicate body name")
)

// Scene is the root of a scene file.
type Scene struct {
	World     World              `yaml:"world"`
	Templates map[string]BodyDef `yaml:"templates,omitempty"`
	Bodies    []BodyDef          `yaml:"bodies"`
	Joints    []JointDef         `yaml:"joints,omitempty"`
}

// World holds the graph settings. Zero values fall back to the engine defaults.
type World struct {
	Gravity            *[2]float64 `yaml:"gravity,omitempty"`
	VelocityIterations int         `yaml:"velocity_iterations,omitempty"`
	PositionIterations int         `yaml:"position_iterations,omitempty"`
	Dt                 float64     `yaml:"dt,omitempty"`
	Steps              int         `yaml:"steps,omitempty"`
	Sleeping           *bool       `yaml:"sleeping,omitempty"`
	WarmStarting       *bool       `yaml:"warm_starting,omitempty"`
}

// BodyDef describes one body. A body naming a template starts from a deep
// copy of it; every non-empty field of the body then overrides the template.
type BodyDef struct {
	Name            string       `yaml:"name"`
	Template        string       `yaml:"template,omitempty"`
	Type            string       `yaml:"type,omitempty"`
	Position        [2]float64   `yaml:"position,omitempty"`
	Angle           float64      `yaml:"angle,omitempty"`
	LinearVelocity  [2]float64   `yaml:"linear_velocity,omitempty"`
	AngularVelocity float64      `yaml:"angular_velocity,omitempty"`
	LinearDamping   float64      `yaml:"linear_damping,omitempty"`
	AngularDamping  float64      `yaml:"angular_damping,omitempty"`
	GravityScale    *float64     `yaml:"gravity_scale,omitempty"`
	FixedRotation   bool         `yaml:"fixed_rotation,omitempty"`
	Bullet          bool         `yaml:"bullet,omitempty"`
	Asleep          bool         `yaml:"asleep,omitempty"`
	Fixtures        []FixtureDef `yaml:"fixtures,omitempty"`
}

type FixtureDef struct {
	Shape       ShapeDef `yaml:"shape"`
	Density     float64  `yaml:"density,omitempty"`
	Friction    *float64 `yaml:"friction,omitempty"`
	Restitution float64  `yaml:"restitution,omitempty"`
	Sensor      bool     `yaml:"sensor,omitempty"`
	Category    uint16   `yaml:"category,omitempty"`
	Mask        *uint16  `yaml:"mask,omitempty"`
	Group       int16    `yaml:"group,omitempty"`
}

// ShapeDef is a circle, a box or a polygon, chosen by Kind.
type ShapeDef struct {
	Kind       string       `yaml:"kind"`
	Radius     float64      `yaml:"radius,omitempty"`
	Center     [2]float64   `yaml:"center,omitempty"`
	HalfWidth  float64      `yaml:"half_width,omitempty"`
	HalfHeight float64      `yaml:"half_height,omitempty"`
	Angle      float64      `yaml:"angle,omitempty"`
	Points     [][2]float64 `yaml:"points,omitempty"`
}

// JointDef describes a revolute joint between two named bodies, pinned at
// a world anchor.
type JointDef struct {
	BodyA            string     `yaml:"body_a"`
	BodyB            string     `yaml:"body_b"`
	Anchor           [2]float64 `yaml:"anchor"`
	CollideConnected bool       `yaml:"collide_connected,omitempty"`
	EnableLimit      bool       `yaml:"enable_limit,omitempty"`
	LowerAngle       float64    `yaml:"lower_angle,omitempty"`
	UpperAngle       float64    `yaml:"upper_angle,omitempty"`
	EnableMotor      bool       `yaml:"enable_motor,omitempty"`
	MotorSpeed       float64    `yaml:"motor_speed,omitempty"`
	MaxMotorTorque   float64    `yaml:"max_motor_torque,omitempty"`
}

// Parse decodes a scene. Unknown keys are rejected.
func Parse(data []byte) (*Scene, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scene
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("scene: decode: %w", err)
	}
	return &s, nil
}

// Load reads and parses the scene file at path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return Parse(data)
}

// Resolve returns the bodies with their templates applied, in file order.
// The scene itself is left untouched.
func (s *Scene) Resolve() ([]BodyDef, error) {
	resolved := make([]BodyDef, 0, len(s.Bodies))

	for i := range s.Bodies {
		def := &s.Bodies[i]

		if def.Template == "" {
			var body BodyDef
			if err := copier.CopyWithOption(&body, def, copier.Option{DeepCopy: true}); err != nil {
				return nil, fmt.Errorf("scene: body %q: %w", def.Name, err)
			}
			resolved = append(resolved, body)
			continue
		}

		template, ok := s.Templates[def.Template]
		if !ok {
			return nil, fmt.Errorf("body %q uses %q: %w", def.Name, def.Template, ErrUnknownTemplate)
		}

		var body BodyDef
		if err := copier.CopyWithOption(&body, &template, copier.Option{DeepCopy: true}); err != nil {
			return nil, fmt.Errorf("scene: template %q: %w", def.Template, err)
		}
		if err := copier.CopyWithOption(&body, def, copier.Option{DeepCopy: true, IgnoreEmpty: true}); err != nil {
			return nil, fmt.Errorf("scene: body %q: %w", def.Name, err)
		}

		resolved = append(resolved, body)
	}

	return resolved, nil
}
