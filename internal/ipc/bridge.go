package ipc

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edster9/vexiq-simulator/internal/robotdef"
	"github.com/edster9/vexiq-simulator/internal/simlog"
)

// shutdownGrace is how long Close waits after sending the shutdown
// notice before killing the child, spec.md §5.
const shutdownGrace = 100 * time.Millisecond

// Bridge owns one spawned robot-program child process: its pipes, its
// line buffer, and the most recently decoded state. One Bridge per
// programmed robot placement.
type Bridge struct {
	ID uuid.UUID

	cmd    *exec.Cmd
	stdin  *os.File
	stdout *os.File

	buf     bytes.Buffer
	readBuf []byte

	Ready       bool
	ProjectName string
	State       State

	closed bool
}

// Spawn starts the child with stdin/stdout piped and puts the read side
// in non-blocking mode; Poll additionally bounds each read with a short
// deadline, so it never waits on the child. Pipes are
// built by hand with os.Pipe rather than cmd.StdinPipe/StdoutPipe so the
// parent keeps a genuine *os.File (with an accessible fd) on each end.
func Spawn(programPath string, args ...string) (*Bridge, error) {
	cmd := exec.Command(programPath, args...)

	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		stdinR.Close()
		stdinW.Close()
		return nil, err
	}

	cmd.Stdin = stdinR
	cmd.Stdout = stdoutW
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		stdinR.Close()
		stdinW.Close()
		stdoutR.Close()
		stdoutW.Close()
		return nil, err
	}
	// The child inherited its own copies of the ends it uses; the parent
	// only needs the other side of each pipe.
	stdinR.Close()
	stdoutW.Close()

	id := uuid.New()
	b := &Bridge{
		ID:      id,
		cmd:     cmd,
		stdin:   stdinW,
		stdout:  stdoutR,
		readBuf: make([]byte, 4096),
	}
	if err := setNonblocking(b.stdout); err != nil {
		simlog.Warn("could not set ipc pipe non-blocking", "id", id, "err", err)
	}

	simlog.Info("ipc bridge spawned", "id", id, "program", programPath)
	return b, nil
}

// Poll reads whatever bytes are currently available (waiting at most about
// a millisecond per read when the pipe is empty), appends them to the line
// buffer, and decodes every complete
// newline-terminated message found. Partial lines persist across frames.
func (b *Bridge) Poll() []outboundEnvelope {
	if b.closed {
		return nil
	}
	b.drainAvailable()

	var decoded []outboundEnvelope
	for {
		line, ok := b.nextLine()
		if !ok {
			break
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var env outboundEnvelope
		if err := json.Unmarshal(line, &env); err != nil {
			simlog.Error("malformed ipc line discarded", "id", b.ID, "err", err)
			continue
		}
		b.apply(env)
		decoded = append(decoded, env)
	}
	return decoded
}

func (b *Bridge) drainAvailable() {
	for {
		// A short read deadline turns an empty pipe into a timeout error
		// instead of parking the frame loop until the child writes again.
		_ = b.stdout.SetReadDeadline(time.Now().Add(time.Millisecond))
		n, err := b.stdout.Read(b.readBuf)
		if n > 0 {
			b.buf.Write(b.readBuf[:n])
		}
		if n == 0 || err != nil {
			return
		}
	}
}

func (b *Bridge) nextLine() ([]byte, bool) {
	data := b.buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return nil, false
	}
	line := make([]byte, idx)
	copy(line, data[:idx])
	b.buf.Next(idx + 1)
	return line, true
}

func (b *Bridge) apply(env outboundEnvelope) {
	switch env.Type {
	case "ready":
		b.Ready = true
		b.ProjectName = env.Project
		simlog.Info("ipc child ready", "id", b.ID, "project", env.Project)
	case "state":
		b.State = State{Motors: env.Motors, Pneumatics: env.Pneumatics}
	case "status":
		simlog.Info("ipc status", "id", b.ID, "message", env.Message)
	case "error":
		simlog.Error("ipc error", "id", b.ID, "message", env.Message)
	case "shutdown":
		b.Ready = false
	default:
		simlog.Error("unknown ipc message type ignored", "id", b.ID, "type", env.Type)
	}
}

func (b *Bridge) send(env inboundEnvelope) error {
	if b.closed {
		return nil
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	_, err = b.stdin.Write(payload)
	return err
}

// SendTick prompts the child for a fresh state response, sent once per
// frame per spec.md §6.
func (b *Bridge) SendTick(dt float64) error {
	return b.send(inboundEnvelope{Type: "tick", Dt: dt})
}

// SendGamepad forwards resolved controller axes/buttons to the child.
func (b *Bridge) SendGamepad(axes GamepadAxes, buttons GamepadButtons) error {
	return b.send(inboundEnvelope{Type: "gamepad", Axes: &axes, Buttons: &buttons})
}

// Close sends the shutdown notice, waits up to the grace period for the
// child to exit, then kills it if it is still running — no leaked
// children, per spec.md §5.
func (b *Bridge) Close() error {
	if b.closed {
		return nil
	}
	_ = b.send(inboundEnvelope{Type: "shutdown"})
	b.closed = true

	done := make(chan error, 1)
	go func() { done <- b.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(shutdownGrace):
		_ = b.cmd.Process.Kill()
		<-done
	}
	_ = b.stdin.Close()
	_ = b.stdout.Close()
	simlog.Info("ipc bridge closed", "id", b.ID)
	return nil
}

// ResolveTankInput maps the child's reported motor speeds to left/right
// tank percentages using the robot definition's motors list as the
// authoritative port->side mapping (spec.md §9 open question): a motor
// whose submodel name contains "left"/"right" drives that side.
func ResolveTankInput(def *robotdef.Definition, motors map[string]MotorState) (leftPct, rightPct float64) {
	for _, m := range def.Motors {
		st, ok := motors[strconv.Itoa(m.Port)]
		if !ok {
			continue
		}
		pct := float64(st.Speed)
		name := strings.ToLower(m.Submodel)
		switch {
		case strings.Contains(name, "left"):
			leftPct = pct
		case strings.Contains(name, "right"):
			rightPct = pct
		}
	}
	return leftPct, rightPct
}
