package effect

import (
	"fmt"
	"time"

	"github.com/go-stack/stack"
	logxi "github.com/mgutz/logxi/v1"
)

// Failure is what Guard records when a layer fails: either a *Fault or a *Defect.
type Failure interface {
	error
	Detail() string
}

// Fault is a failure a layer reported by returning an error. Faults are expected and are
// absorbed by Guard.
type Fault struct {
	Layer string
	Err   error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %v", f.Layer, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Detail renders the fault with the wrapped error's stack, if it carries one.
func (f *Fault) Detail() string {
	return fmt.Sprintf("%s: %+v", f.Layer, f.Err)
}

// Defect is a panic recovered from a layer's Render. It marks a bug in the layer rather
// than a condition the layer anticipated.
type Defect struct {
	Layer string
	Value interface{}
	Stack stack.CallStack
}

func (d *Defect) Error() string {
	return fmt.Sprintf("%s: panic: %v", d.Layer, d.Value)
}

// Detail renders the panic value followed by the call stack at the point of the panic.
func (d *Defect) Detail() string {
	return fmt.Sprintf("%s\n%+v", d.Error(), d.Stack)
}

// Guard renders layers while containing their failures. Every Fault or Defect is written to
// the error log and counted against the layer; once a layer exhausts its Budget it is
// skipped for the rest of the process.
type Guard struct {
	log    *ErrorLog
	logger logxi.Logger
	now    func() time.Time
}

// NewGuard creates a Guard recording into log. A nil log only counts and logs.
func NewGuard(log *ErrorLog, logger logxi.Logger) *Guard {
	g := new(Guard)
	g.log = log
	g.logger = logger
	if g.logger == nil {
		g.logger = logxi.New("guard")
	}
	g.now = time.Now
	return g
}

// Render invokes layer unless it has been disabled.
func (g *Guard) Render(layer Layer, model Topology, params *Params, frame *Frame) {
	traits := layer.Traits()
	if traits.Disabled() {
		return
	}

	failure := invoke(layer, model, params, frame)
	if failure == nil {
		return
	}

	g.record(failure)
	traits.errorCount++
	g.logger.Warn("layer failed", "layer", layerName(layer), "err", failure.Error(), "errors", traits.errorCount)
	if traits.Disabled() {
		g.logger.Error("disabling layer for throwing too many errors", "layer", layerName(layer))
	}
}

func (g *Guard) record(failure Failure) {
	if g.log == nil {
		return
	}
	if err := g.log.Append(g.now(), failure.Detail()); err != nil {
		g.logger.Warn("could not write error log", "err", err)
	}
}

func invoke(layer Layer, model Topology, params *Params, frame *Frame) (failure Failure) {
	defer func() {
		if r := recover(); r != nil {
			failure = &Defect{
				Layer: layerName(layer),
				Value: r,
				Stack: stack.Trace().TrimRuntime(),
			}
		}
	}()

	if err := layer.Render(model, params, frame); err != nil {
		return &Fault{Layer: layerName(layer), Err: err}
	}
	return nil
}

func layerName(layer Layer) string {
	return fmt.Sprintf("%T", layer)
}
