// Command simulator is the headless/batch entry point for the VEX IQ
// simulation core: it loads a scene, realizes every robot placement,
// spawns an IPC bridge for each programmed robot, and steps the frame
// loop. The windowing/GL context, text overlay, and gamepad HID layer
// are external collaborators this binary does not implement; without a
// windowing layer attached, only --headless operation is supported.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edster9/vexiq-simulator/internal/geom"
	"github.com/edster9/vexiq-simulator/internal/input"
	"github.com/edster9/vexiq-simulator/internal/ipc"
	"github.com/edster9/vexiq-simulator/internal/scene"
	"github.com/edster9/vexiq-simulator/internal/sim"
	"github.com/edster9/vexiq-simulator/internal/simerr"
	"github.com/edster9/vexiq-simulator/internal/simlog"
)

const tickRate = 60.0

var (
	debugFlag    bool
	dtCapFlag    float64
	headlessFlag bool
)

func main() {
	root := &cobra.Command{
		Use:   "simulator [scene]",
		Short: "Step a VEX IQ robot scene under force-based tank-drive physics and hierarchical OBB collision",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}
	root.Flags().BoolVar(&debugFlag, "debug", false, "enable detection-pass visualization and verbose JSON logging")
	root.Flags().Float64Var(&dtCapFlag, "dt-cap", 0.1, "cap the fixed 1/60s frame step, in seconds; only values below 1/60 take effect, and the engine's own 0.1s clamp is unchanged")
	root.Flags().BoolVar(&headlessFlag, "headless", false, "run the frame loop without a windowing layer")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	simlog.InitLogger(debugFlag)

	scenePath := "../scenes/default.scene"
	if len(args) > 0 {
		scenePath = args[0]
	}

	if !headlessFlag {
		return simerr.New(simerr.StartupFatal, "windowed mode requires a GL context; rerun with --headless")
	}

	sc, err := loadScene(scenePath)
	if err != nil {
		simlog.Error("scene load failed", "path", scenePath, "err", err)
		return err
	}

	orch, err := sim.NewOrchestrator(sc, placeholderMeshLoader)
	if err != nil {
		wrapped := simerr.Fatal(err, "orchestrator realization failed")
		simlog.Error("orchestrator realization failed", "err", wrapped)
		return wrapped
	}
	orch.DebugDetection = debugFlag

	bridges := spawnProgramBridges(sc, orch)
	defer closeBridges(bridges)

	simlog.Info("scene realized", "path", scenePath, "robots", len(orch.Robots), "cylinders", len(orch.Cylinders))
	runLoop(cmd.Context(), orch, bridges)
	return nil
}

func loadScene(path string) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, simerr.Fatal(err, "scene file unreadable")
	}
	defer f.Close()
	sc, err := scene.Load(f)
	if err != nil {
		return nil, simerr.Fatal(err, "scene file malformed")
	}
	return sc, nil
}

// placeholderMeshLoader stands in for the real mesh-file binary parser,
// which spec treats as an opaque "load mesh by name" service outside
// this core. It hands back a nominal 10x4x10in box for every part so
// the orchestrator, collision kernel, and transforms all exercise real
// geometry in --headless runs without a renderer attached.
func placeholderMeshLoader(partID string) (sim.Mesh, error) {
	return placeholderMesh{}, nil
}

type placeholderMesh struct{}

func (placeholderMesh) Bounds() (min, max geom.Vector3) {
	return geom.Vector3{-5, -2, -5}, geom.Vector3{5, 2, 5}
}
func (placeholderMesh) IndexCount() int { return 36 }

// spawnProgramBridges starts one child process per robot placement that
// names a program, per §6's IPC protocol.
func spawnProgramBridges(sc *scene.Scene, orch *sim.Orchestrator) map[int]*ipc.Bridge {
	bridges := map[int]*ipc.Bridge{}
	for i, placement := range sc.Robots {
		if !placement.HasProgram() {
			continue
		}
		b, err := ipc.Spawn(placement.ProgramPath)
		if err != nil {
			simlog.Warn("ipc bridge spawn failed, robot becomes non-programmed", "path", placement.ProgramPath, "err", err)
			continue
		}
		bridges[i] = b
	}
	return bridges
}

func closeBridges(bridges map[int]*ipc.Bridge) {
	for _, b := range bridges {
		_ = b.Close()
	}
}

// runLoop steps the orchestrator at tickRate until the process receives
// an interrupt, resolving each robot's per-frame input from its IPC
// bridge (if programmed) or neutral input otherwise — the real keyboard
// and gamepad sources need a windowing layer to supply live key state,
// which --headless mode does not have.
func runLoop(ctx context.Context, orch *sim.Orchestrator, bridges map[int]*ipc.Bridge) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dt := 1.0 / tickRate
	if dtCapFlag > 0 && dtCapFlag < dt {
		dt = dtCapFlag
	}
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	neutral := (&input.KeyboardSource{}).Poll()

	for {
		select {
		case <-ctx.Done():
			simlog.Info("shutdown requested")
			return
		case <-ticker.C:
			inputs := make([]sim.RobotInput, len(orch.Robots))
			for i := range orch.Robots {
				inputs[i] = sim.RobotInput{LeftPct: neutral.LeftPct, RightPct: neutral.RightPct}
				b, ok := bridges[i]
				if !ok {
					continue
				}
				b.Poll()
				if !b.Ready {
					continue
				}
				_ = b.SendTick(dt)
				left, right := ipc.ResolveTankInput(orch.Robots[i].Definition, b.State.Motors)
				inputs[i].LeftPct, inputs[i].RightPct = left, right
			}
			orch.Step(dt, inputs)
		}
	}
}
