package physics2d_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ByteArena/physics2d"
	"github.com/pmezard/go-difflib/difflib"
)

// runPile drops a small pile of boxes and balls onto the ground and returns
// the dump of every recorded frame.
func runPile(t *testing.T) string {
	t.Helper()

	graph := physics2d.NewCollisionGraph(physics2d.DefaultGravity)
	createBody(t, graph, physics2d.StaticBody, physics2d.Vec2{}, physics2d.NewBox(20, 0.5))

	for i := 0; i < 12; i++ {
		x := -3.0 + float64(i%4)*1.6
		y := 1.5 + float64(i/4)*1.3

		var shape physics2d.Shape = physics2d.NewBox(0.5, 0.5)
		if i%3 == 1 {
			shape = physics2d.NewCircle(physics2d.Vec2{}, 0.45)
		}

		body := createBody(t, graph, physics2d.DynamicBody, physics2d.MakeVec2(x, y), shape)
		body.SetAngularVelocity(0.1 * float64(i%5))
	}

	var out bytes.Buffer
	for frame := 0; frame < 180; frame++ {
		step(t, graph, 1)

		if frame%30 == 29 {
			if err := graph.Dump(&out); err != nil {
				t.Fatalf("Dump: %v", err)
			}
		}
	}

	return out.String()
}

func TestStepIsDeterministic(t *testing.T) {
	expected := runPile(t)
	output := runPile(t)

	if expected != output {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(expected),
			B:        difflib.SplitLines(output),
			FromFile: "First",
			ToFile:   "Second",
			Context:  0,
		}
		text, _ := difflib.GetUnifiedDiffString(diff)
		t.Fatalf("Runs of the same scene diverged: \n%s", text)
	}

	// 6 frames of 13 bodies plus a summary line each.
	if lines := strings.Count(expected, "\n"); lines != 6*14 {
		t.Fatalf("dump has %d lines, want %d", lines, 6*14)
	}
}

func TestDumpFormat(t *testing.T) {
	graph := physics2d.NewCollisionGraph(physics2d.DefaultGravity)
	createBody(t, graph, physics2d.StaticBody, physics2d.MakeVec2(1, 2))

	var out bytes.Buffer
	if err := graph.Dump(&out); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	want := "0 static p=(1.000000, 2.000000) a=0.000000 v=(0.000000, 0.000000) w=0.000000 awake=false\n" +
		"contacts=0 joints=0\n"
	if got := out.String(); got != want {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(want),
			B:        difflib.SplitLines(got),
			FromFile: "Expected",
			ToFile:   "Current",
			Context:  0,
		}
		text, _ := difflib.GetUnifiedDiffString(diff)
		t.Fatalf("Dump mismatch: \n%s", text)
	}
}
