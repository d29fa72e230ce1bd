// Package linear provides a synchronous, line-buffered renderer for CI environments.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/ui/output"
	"go.trai.ch/pixi/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// quietKinds are reported on completion only; a prefix install runs hundreds of them.
var quietKinds = map[domain.StepKind]struct{}{
	domain.StepDownload: {},
	domain.StepLink:     {},
	domain.StepUnlink:   {},
}

// Renderer prints chronological step lines. Step output goes to stdout prefixed with the step
// name, lifecycle lines go to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu    sync.Mutex
	steps map[string]*stepState
}

type stepState struct {
	name      string
	startTime time.Time
	buf       bytes.Buffer
}

// NewRenderer creates a Renderer. Nil writers select the process streams.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.New(stderr),
		steps:  make(map[string]*stepState),
	}
}

// Start is a no-op; the renderer is synchronous.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes the partial output lines of unfinished steps.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, step := range r.steps {
		r.flushLocked(step)
	}
	return nil
}

// Wait is a no-op; the renderer is synchronous.
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints the number of planned steps.
func (r *Renderer) OnPlanEmit(steps []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "Planned %d step(s)\n", len(steps))
}

// OnStepStart records the step and announces it unless its kind is quiet.
func (r *Renderer) OnStepStart(spanID, _, name string, kind domain.StepKind, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.steps[spanID] = &stepState{name: name, startTime: startTime}
	if _, quiet := quietKinds[kind]; quiet {
		return
	}
	_, _ = fmt.Fprintf(r.stderr, "%s started\n", r.prefix(name))
}

// OnStepLog prints the complete lines of data and keeps the trailing partial line.
func (r *Renderer) OnStepLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	step, ok := r.steps[spanID]
	if !ok {
		return
	}

	step.buf.Write(data)
	for {
		i := bytes.IndexByte(step.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := step.buf.Next(i + 1)
		r.printLineLocked(step.name, line)
	}
}

// OnStepComplete flushes the step's output and prints its terminal status.
func (r *Renderer) OnStepComplete(spanID string, endTime time.Time, status domain.StepStatus, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	step, ok := r.steps[spanID]
	if !ok {
		return
	}
	delete(r.steps, spanID)
	r.flushLocked(step)

	duration := endTime.Sub(step.startTime).Round(time.Millisecond)
	prefix := r.prefix(step.name)
	switch status {
	case domain.StepStatusFailed:
		symbol := r.symbol(style.Cross, style.Red)
		if err != nil {
			_, _ = fmt.Fprintf(r.stderr, "%s %s failed after %v: %v\n", prefix, symbol, duration, err)
		} else {
			_, _ = fmt.Fprintf(r.stderr, "%s %s failed after %v\n", prefix, symbol, duration)
		}
	case domain.StepStatusCached:
		_, _ = fmt.Fprintf(r.stderr, "%s %s cached\n", prefix, r.symbol(style.Tilde, style.Slate))
	case domain.StepStatusSkipped:
		_, _ = fmt.Fprintf(r.stderr, "%s %s skipped\n", prefix, r.symbol(style.Circle, style.Slate))
	default:
		_, _ = fmt.Fprintf(r.stderr, "%s %s done in %v\n", prefix, r.symbol(style.Check, style.Green), duration)
	}
}

func (r *Renderer) prefix(name string) string {
	return r.output.String("[" + name + "]").Faint().String()
}

func (r *Renderer) symbol(icon string, color lipgloss.Color) string {
	return r.output.String(icon).Foreground(r.output.Color(string(color))).String()
}

// flushLocked prints the buffered partial line of a step. Must be called with r.mu held.
func (r *Renderer) flushLocked(step *stepState) {
	if step.buf.Len() > 0 {
		r.printLineLocked(step.name, step.buf.Bytes())
		step.buf.Reset()
	}
}

// printLineLocked prints a line with the step name prefix. Must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, line)
}
