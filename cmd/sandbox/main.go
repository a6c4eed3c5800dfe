// Command sandbox steps a scene file headlessly and prints a summary.
package main

import (
	_ "embed"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/ByteArena/physics2d"
	"github.com/ByteArena/physics2d/internal/config"
	"github.com/ByteArena/physics2d/internal/scene"
)

//go:embed default.yaml
var defaultScene []byte

// eventCounter tallies listener events over the run.
type eventCounter struct {
	physics2d.NopListener
	starts, ends, destroyed int
}

func (c *eventCounter) OnContactStart(*physics2d.Contact) { c.starts++ }
func (c *eventCounter) OnContactEnd(*physics2d.Contact)   { c.ends++ }
func (c *eventCounter) OnDestroyed(*physics2d.Fixture)    { c.destroyed++ }

func newLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "sandbox",
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		logger.SetFormatter(log.LogfmtFormatter)
	}
	return logger, nil
}

func loadScene(path string) (*scene.Scene, error) {
	if path == "" {
		return scene.Parse(defaultScene)
	}
	return scene.Load(path)
}

func main() {
	scenePath := flag.String("scene", config.GetEnv(config.EnvScene, ""), "scene file, the built-in stack when empty")
	level := flag.String("level", config.GetEnv(config.EnvLogLevel, "info"), "log level")
	steps := flag.Int("steps", config.GetEnvInt(config.EnvSteps, 0), "override the number of steps")
	flag.Parse()

	logger, err := newLogger(*level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level: %v\n", err)
		os.Exit(2)
	}

	if err := run(logger, *scenePath, *steps); err != nil {
		logger.Error("sandbox failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *log.Logger, scenePath string, steps int) error {
	s, err := loadScene(scenePath)
	if err != nil {
		return err
	}

	counter := &eventCounter{}
	built, err := scene.Build(s, physics2d.WithLogger(logger), physics2d.WithListener(counter))
	if err != nil {
		return err
	}

	if steps <= 0 {
		steps = built.Steps
	}

	logger.Info("scene loaded", "bodies", built.Graph.BodyCount(), "joints", built.Graph.JointCount(), "steps", steps, "dt", built.Dt)

	var total, solve time.Duration
	for i := 0; i < steps; i++ {
		if err := built.Graph.Step(built.Dt); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		profile := built.Graph.Profile()
		total += profile.Step
		solve += profile.Solve
	}

	fmt.Println(summary(built, counter, steps, total, solve))
	return nil
}

func summary(built *scene.Built, counter *eventCounter, steps int, total, solve time.Duration) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	border := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	graph := built.Graph
	stats := graph.AllocatorStats()

	asleep := 0
	for _, b := range graph.Bodies() {
		if b.Type() != physics2d.StaticBody && !b.IsAwake() {
			asleep++
		}
	}

	metrics := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(border).
		Headers("metric", "value").
		Row("steps", strconv.Itoa(steps)).
		Row("bodies", strconv.Itoa(graph.BodyCount())).
		Row("asleep", strconv.Itoa(asleep)).
		Row("contacts", strconv.Itoa(graph.ContactCount())).
		Row("contact starts", strconv.Itoa(counter.starts)).
		Row("contact ends", strconv.Itoa(counter.ends)).
		Row("tree height", strconv.Itoa(graph.TreeHeight())).
		Row("allocator chunks", strconv.Itoa(stats.Chunks)).
		Row("blocks in use", strconv.Itoa(stats.InUse)).
		Row("step time", total.String()).
		Row("solve time", solve.String())

	bodies := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(border).
		Headers("body", "type", "x", "y", "angle", "awake")
	for i, b := range built.Bodies {
		name, _ := b.UserData().(string)
		if name == "" {
			name = "#" + strconv.Itoa(i)
		}
		p := b.Position()
		bodies.Row(name, b.Type().String(),
			strconv.FormatFloat(p.X, 'f', 3, 64),
			strconv.FormatFloat(p.Y, 'f', 3, 64),
			strconv.FormatFloat(b.Angle(), 'f', 3, 64),
			strconv.FormatBool(b.IsAwake()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title.Render("simulation"), metrics.String(),
		title.Render("bodies"), bodies.String())
}
