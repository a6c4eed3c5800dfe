package scene_test

import (
	"errors"
	"testing"

	"github.com/ByteArena/physics2d"
	"github.com/ByteArena/physics2d/internal/scene"
)

func TestLoadAndResolveTemplates(t *testing.T) {
	s, err := scene.Load("testdata/stack.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(s.Bodies) != 5 {
		t.Fatalf("bodies = %d, want 5", len(s.Bodies))
	}

	defs, err := s.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	crate := defs[2]
	if crate.Name != "crate2" || crate.Type != "dynamic" {
		t.Fatalf("crate2 resolved to %q/%q", crate.Name, crate.Type)
	}
	if crate.Position != [2]float64{0.1, 2.05} {
		t.Fatalf("crate2 position = %v", crate.Position)
	}
	if len(crate.Fixtures) != 1 || crate.Fixtures[0].Shape.Kind != "box" {
		t.Fatalf("crate2 fixtures = %+v", crate.Fixtures)
	}

	// Templates are copied, never shared.
	defs[1].Fixtures[0].Density = 42
	if s.Templates["crate"].Fixtures[0].Density != 1 {
		t.Fatalf("template mutated through a resolved body")
	}
	if defs[2].Fixtures[0].Density != 1 {
		t.Fatalf("resolved bodies share fixtures")
	}
}

func TestBuildScene(t *testing.T) {
	s, err := scene.Load("testdata/stack.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	built, err := scene.Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if built.Graph.BodyCount() != 5 {
		t.Fatalf("BodyCount = %d, want 5", built.Graph.BodyCount())
	}
	if built.Graph.JointCount() != 1 || len(built.Joints) != 1 {
		t.Fatalf("joints = %d/%d, want 1", built.Graph.JointCount(), len(built.Joints))
	}
	if built.Steps != 120 {
		t.Fatalf("Steps = %d, want 120", built.Steps)
	}

	ground := built.ByName["ground"]
	if ground.Type() != physics2d.StaticBody {
		t.Fatalf("ground type = %v", ground.Type())
	}

	ball := built.ByName["ball"]
	if ball.Type() != physics2d.DynamicBody || len(ball.Fixtures()) != 1 {
		t.Fatalf("ball = %v with %d fixtures", ball.Type(), len(ball.Fixtures()))
	}
	if got := ball.Fixtures()[0].Restitution(); got != 0.3 {
		t.Fatalf("ball restitution = %v", got)
	}

	for i := 0; i < built.Steps; i++ {
		if err := built.Graph.Step(built.Dt); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}

	// The crates rest on the ground instead of falling through it.
	if y := built.ByName["crate1"].Position().Y; y < 0.5 {
		t.Fatalf("crate1 fell through the ground: y = %v", y)
	}
}

func TestSceneErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "unknown template",
			yaml: "bodies:\n  - name: a\n    template: missing\n",
			want: scene.ErrUnknownTemplate,
		},
		{
			name: "unknown shape",
			yaml: "bodies:\n  - name: a\n    type: dynamic\n    fixtures:\n      - shape: {kind: capsule}\n",
			want: scene.ErrUnknownShape,
		},
		{
			name: "unknown body type",
			yaml: "bodies:\n  - name: a\n    type: floating\n",
			want: scene.ErrUnknownType,
		},
		{
			name: "unknown joint body",
			yaml: "bodies:\n  - name: a\n    type: dynamic\njoints:\n  - body_a: a\n    body_b: b\n    anchor: [0, 0]\n",
			want: scene.ErrUnknownBody,
		},
		{
			name: "duplicate body",
			yaml: "bodies:\n  - name: a\n  - name: a\n",
			want: scene.ErrDuplicateBody,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := scene.Parse([]byte(tc.yaml))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if _, err := scene.Build(s); !errors.Is(err, tc.want) {
				t.Fatalf("Build error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := scene.Parse([]byte("bodies:\n  - name: a\n    colour: red\n")); err == nil {
		t.Fatalf("Parse accepted an unknown key")
	}
}

func TestPolygonShapeError(t *testing.T) {
	s, err := scene.Parse([]byte("bodies:\n  - name: a\n    type: dynamic\n    fixtures:\n      - shape: {kind: polygon, points: [[0, 0], [1, 0]]}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, err = scene.Build(s)
	var shapeErr *physics2d.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("Build error = %v, want a *ShapeError", err)
	}
}
