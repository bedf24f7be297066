package effect

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
)

var errBroken = errors.New("broken")

// failing always reports errBroken.
type failing struct {
	Base
	calls int
}

func (f *failing) Render(model Topology, params *Params, frame *Frame) error {
	f.calls++
	return errBroken
}

// panicking always panics.
type panicking struct {
	Base
	calls int
}

func (p *panicking) Render(model Topology, params *Params, frame *Frame) error {
	p.calls++
	var lookup map[string]*Frame
	lookup["missing"].Add(frame)
	return nil
}

// bare embeds Base without NewBase.
type bare struct {
	Base
	calls int
	fail  bool
}

func (b *bare) Render(model Topology, params *Params, frame *Frame) error {
	b.calls++
	if b.fail {
		return errBroken
	}
	frame.AddAll(1, 1, 1)
	return nil
}

func TestGuardZeroValueBase(t *testing.T) {
	guard := NewGuard(nil, nil)

	layer := &bare{}
	frame := NewFrame(1)
	guard.Render(layer, leds(1), NewParams(), frame)
	if layer.calls != 1 {
		t.Fatalf("layer invoked %d times, want 1", layer.calls)
	}
	if r, _, _ := frame.Pixel(0); r != 1 {
		t.Fatalf("pixel = %v, want 1", r)
	}

	broken := &bare{fail: true}
	for i := 0; i < 12; i++ {
		guard.Render(broken, leds(1), NewParams(), NewFrame(1))
	}
	if broken.calls != defaultMaximumErrors || broken.Budget() != defaultMaximumErrors {
		t.Fatalf("layer invoked %d times with budget %d, want %d", broken.calls, broken.Budget(), defaultMaximumErrors)
	}
}

func TestGuardDisablesAfterMaximumErrors(t *testing.T) {
	var buf bytes.Buffer
	log := NewErrorLog(&buf)
	guard := NewGuard(log, nil)
	layer := &failing{Base: NewBase()}

	for i := 0; i < 12; i++ {
		guard.Render(layer, leds(2), NewParams(), NewFrame(2))
	}

	if layer.calls != layer.MaximumErrors {
		t.Fatalf("layer invoked %d times, want %d", layer.calls, layer.MaximumErrors)
	}
	if !layer.Disabled() || layer.Errors() != layer.MaximumErrors {
		t.Fatalf("layer errors = %d, disabled = %v", layer.Errors(), layer.Disabled())
	}
	if log.Records() != layer.MaximumErrors {
		t.Fatalf("log has %d records, want %d", log.Records(), layer.MaximumErrors)
	}
	if lines := strings.Count(buf.String(), " UTC : "); lines != layer.MaximumErrors {
		t.Fatalf("log text has %d records, want %d:\n%s", lines, layer.MaximumErrors, buf.String())
	}
}

func TestGuardHonoursPerLayerBudget(t *testing.T) {
	guard := NewGuard(nil, nil)
	layer := &failing{Base: NewBase()}
	layer.MaximumErrors = 2

	for i := 0; i < 5; i++ {
		guard.Render(layer, leds(1), NewParams(), NewFrame(1))
	}
	if layer.calls != 2 {
		t.Fatalf("layer invoked %d times, want 2", layer.calls)
	}
}

func TestGuardLeavesOtherLayersRunning(t *testing.T) {
	guard := NewGuard(nil, nil)
	bad := &failing{Base: NewBase()}
	good := newSolid(0.25, 0, 0)
	routine := Routine{bad, good}

	for i := 0; i < 10; i++ {
		frame := NewFrame(1)
		if err := routine.Render(guard, leds(1), NewParams(), frame); err != nil {
			t.Fatalf("guarded routine returned %v", err)
		}
		r, _, _ := frame.Pixel(0)
		assertClose(t, "good layer output", r, 0.25, tolerance)
	}
	if good.Errors() != 0 {
		t.Fatalf("good layer has %d errors", good.Errors())
	}
}

func TestGuardRecoversPanicsAsDefects(t *testing.T) {
	var buf bytes.Buffer
	guard := NewGuard(NewErrorLog(&buf), nil)
	layer := &panicking{Base: NewBase()}

	for i := 0; i < 7; i++ {
		guard.Render(layer, leds(1), NewParams(), NewFrame(1))
	}

	if layer.calls != layer.MaximumErrors {
		t.Fatalf("layer invoked %d times, want %d", layer.calls, layer.MaximumErrors)
	}
	if !strings.Contains(buf.String(), "panic:") {
		t.Fatalf("log does not mention the panic:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "guard_test.go") {
		t.Fatalf("log does not carry the panic site:\n%s", buf.String())
	}
}

func TestInvokeClassifiesFailures(t *testing.T) {
	failure := invoke(&failing{Base: NewBase()}, leds(1), NewParams(), NewFrame(1))
	fault, ok := failure.(*Fault)
	if !ok {
		t.Fatalf("failure = %T, want *Fault", failure)
	}
	if !errors.Is(fault, errBroken) {
		t.Fatalf("fault does not wrap errBroken: %v", fault)
	}

	failure = invoke(&panicking{Base: NewBase()}, leds(1), NewParams(), NewFrame(1))
	if _, ok := failure.(*Defect); !ok {
		t.Fatalf("failure = %T, want *Defect", failure)
	}

	if failure := invoke(newSolid(1, 1, 1), leds(1), NewParams(), NewFrame(1)); failure != nil {
		t.Fatalf("failure = %v, want nil", failure)
	}
}

func TestErrorLogAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	if err := os.WriteFile(path, []byte("earlier\n"), 0644); err != nil {
		t.Fatal(err)
	}

	log, err := OpenErrorLog(path)
	if err != nil {
		t.Fatal(err)
	}
	at := time.Date(2024, time.March, 3, 10, 4, 5, 0, time.FixedZone("X", 3600))
	if err := log.Append(at, "boom"); err != nil {
		t.Fatal(err)
	}
	if err := log.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "earlier\nSun Mar  3 09:04:05 2024 UTC : boom\n"
	if string(data) != want {
		t.Fatalf("log = %q, want %q", data, want)
	}
}
