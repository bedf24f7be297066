package stream

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gdamore/tcell/v2"
	"github.com/matt-g-everett/ledlayers/effect"
	"github.com/matt-g-everett/ledlayers/render"
	"github.com/pkg/errors"
)

type leds int

func (n leds) NumLEDs() int { return int(n) }

const testConfig = `
mqtt:
  topics:
    control: lights/control
    status: lights/status
render:
  leds: 12
  fadeTime: 0.5
active: main
playlists:
  main:
    - - type: gradientTrail
        speed: 10
        fadeTime: 2
    - - type: twinkle
        colour: "#ff0000"
      - type: snowstorm
        maxErrors: 2
    - - type: streak
        colour: "#00ff00"
      - type: stripes
        colours: ["#ff0000", "#0000ff"]
        stretch: true
  party:
    - - type: multiplier
        layers:
          - type: colorBlinky
          - type: whiteOut
`

func TestReadConfig(t *testing.T) {
	c, err := ReadConfig(strings.NewReader(testConfig))
	if err != nil {
		t.Fatal(err)
	}
	if c.Render.LEDs != 12 || c.Render.FadeTime != 0.5 {
		t.Fatalf("render config not read: %+v", c.Render)
	}
	if c.Render.FrameRate != effect.DefaultFrameRate || c.Render.Gamma != render.DefaultGamma {
		t.Fatalf("defaults not applied: %+v", c.Render)
	}
	if c.Mqtt.Topics.Control != "lights/control" {
		t.Fatalf("control topic = %q", c.Mqtt.Topics.Control)
	}

	playlists, err := c.BuildPlaylists()
	if err != nil {
		t.Fatal(err)
	}
	if len(playlists) != 2 || playlists["main"].Len() != 3 || playlists["party"].Len() != 1 {
		t.Fatalf("unexpected playlists %v", playlists)
	}

	first := playlists["main"].Selection()
	if got := first.TransitionFadeTime(); got != 2 {
		t.Fatalf("fade time = %v, want 2", got)
	}
	playlists["main"].Advance()
	second := playlists["main"].Selection()
	if len(second) != 2 || second[1].Traits().MaximumErrors != 2 {
		t.Fatalf("unexpected second routine %v", second)
	}
}

func TestBuildRenderer(t *testing.T) {
	c, err := ReadConfig(strings.NewReader(testConfig))
	if err != nil {
		t.Fatal(err)
	}
	r, err := c.BuildRenderer(effect.NewGuard(nil, nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	if s := r.Status(); s.Active != "main" || len(s.Playlists) != 2 {
		t.Fatalf("unexpected status %+v", s)
	}
	if err := r.Render(leds(12), effect.NewParams(), effect.NewFrame(12)); err != nil {
		t.Fatal(err)
	}
}

func TestUnknownLayer(t *testing.T) {
	c, err := ReadConfig(strings.NewReader("playlists:\n  main:\n    - - type: lava\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.BuildPlaylists(); errors.Cause(err) != ErrUnknownLayer {
		t.Fatalf("err = %v, want ErrUnknownLayer", err)
	}

	bad := LayerConfig{Type: "multiplier", Layers: []LayerConfig{{Type: "blinky"}}}
	if _, err := bad.Build(); err == nil {
		t.Fatal("expected an error for a multiplier with one layer")
	}
	if _, err := (LayerConfig{Type: "twinkle", Colour: "red"}).Build(); err == nil {
		t.Fatal("expected an error for a bad colour")
	}
	if _, err := (LayerConfig{Type: "stripes", Colours: []string{"#ff00ff", "teal"}}).Build(); err == nil {
		t.Fatal("expected an error for a bad palette colour")
	}
}

type recordingComposer struct {
	times []float64
	err   error
}

func (c *recordingComposer) Render(model effect.Topology, params *effect.Params, frame *effect.Frame) error {
	c.times = append(c.times, params.Time)
	frame.AddAll(1, 0, 0)
	return c.err
}

type countingSink struct {
	frames int
	last   *effect.Frame
}

func (s *countingSink) Show(frame *effect.Frame) error {
	s.frames++
	s.last = frame
	return nil
}

func TestControllerClock(t *testing.T) {
	composer := &recordingComposer{}
	sink := &countingSink{}
	c := NewController(leds(3), composer, nil, sink, nil)

	start := time.Unix(1000, 0)
	step := time.Second / 40
	for _, now := range []time.Time{
		start,
		start.Add(step + time.Millisecond),
		start.Add(2*step - time.Millisecond),
		start.Add(time.Second),
		start.Add(time.Second + step),
	} {
		if err := c.DrawFrame(now); err != nil {
			t.Fatal(err)
		}
	}

	want := []float64{0.025, 0.05, 0.075, 1, 1.025}
	for i, got := range composer.times {
		if diff := got - want[i]; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("frame %d time = %v, want %v", i, got, want[i])
		}
	}
	if sink.frames != 5 || sink.last.Len() != 3 {
		t.Fatalf("sink saw %d frames", sink.frames)
	}
}

func TestControllerRenderError(t *testing.T) {
	composer := &recordingComposer{err: errors.New("gone")}
	sink := &countingSink{}
	c := NewController(leds(1), composer, nil, sink, nil)
	if err := c.DrawFrame(time.Now()); err == nil {
		t.Fatal("expected the render error")
	}
	if sink.frames != 0 {
		t.Fatal("a failed frame reached the sink")
	}
}

type fakeSwitcher struct {
	mu       sync.Mutex
	advances []float64
	swaps    []Command
}

func (s *fakeSwitcher) AdvanceCurrentPlaylist(fadeTime float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advances = append(s.advances, fadeTime)
	return nil
}

func (s *fakeSwitcher) SwapPlaylists(next, intermediate string, advance bool, fadeTime float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swaps = append(s.swaps, Command{Type: "swap", Playlist: next, Intermediate: intermediate, Advance: &advance, FadeTime: fadeTime})
	return nil
}

func (s *fakeSwitcher) advanced() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.advances...)
}

func (s *fakeSwitcher) Status() render.Status {
	return render.Status{Active: "main"}
}

func TestAdvancerRunsUntilCancelled(t *testing.T) {
	s := &fakeSwitcher{}
	a := NewAdvancer(s, 0.005, 0.3, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(stopped)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(s.advanced()) < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("only %d advances before the deadline", len(s.advanced()))
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("advancer did not stop when cancelled")
	}

	advances := s.advanced()
	time.Sleep(20 * time.Millisecond)
	if len(s.advanced()) != len(advances) {
		t.Fatal("advancer kept running after it stopped")
	}
	for _, fadeTime := range advances {
		if fadeTime != 0.3 {
			t.Fatalf("fade time = %v, want 0.3", fadeTime)
		}
	}
}

func TestAdvancerDisabled(t *testing.T) {
	s := &fakeSwitcher{}
	stopped := make(chan struct{})
	go func() {
		NewAdvancer(s, 0, 1, nil).Run(context.Background())
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("advancer with no interval kept running")
	}
	if len(s.advanced()) != 0 {
		t.Fatal("advancer with no interval advanced")
	}
}

func TestDispatch(t *testing.T) {
	s := &fakeSwitcher{}
	no := false

	if err := Dispatch(s, Command{Type: "advance"}, 1.5); err != nil {
		t.Fatal(err)
	}
	if err := Dispatch(s, Command{Type: "swap", Playlist: "party", FadeTime: 3}, 1.5); err != nil {
		t.Fatal(err)
	}
	if err := Dispatch(s, Command{Type: "swap", Playlist: "main", Intermediate: "white", Advance: &no}, 1.5); err != nil {
		t.Fatal(err)
	}
	if err := Dispatch(s, Command{Type: "explode"}, 1.5); errors.Cause(err) != ErrUnknownCommand {
		t.Fatalf("err = %v, want ErrUnknownCommand", err)
	}

	if len(s.advances) != 1 || s.advances[0] != 1.5 {
		t.Fatalf("advances = %v", s.advances)
	}
	if len(s.swaps) != 2 {
		t.Fatalf("swaps = %v", s.swaps)
	}
	if first := s.swaps[0]; first.Playlist != "party" || !*first.Advance || first.FadeTime != 3 {
		t.Fatalf("first swap = %+v", first)
	}
	if second := s.swaps[1]; second.Intermediate != "white" || *second.Advance || second.FadeTime != 1.5 {
		t.Fatalf("second swap = %+v", second)
	}
}

type doneToken struct {
	err error
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
func (t *doneToken) Error() error { return t.err }

type fakeClient struct {
	mqtt.Client
	subscribed map[string]mqtt.MessageHandler
	published  map[string][]byte
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		subscribed: make(map[string]mqtt.MessageHandler),
		published:  make(map[string][]byte),
	}
}

func (c *fakeClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	c.subscribed[topic] = callback
	return &doneToken{}
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.published[topic] = payload.([]byte)
	return &doneToken{}
}

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 1 }
func (m *fakeMessage) Payload() []byte   { return m.payload }

func TestRemote(t *testing.T) {
	c, err := ReadConfig(strings.NewReader(testConfig))
	if err != nil {
		t.Fatal(err)
	}
	client := newFakeClient()
	s := &fakeSwitcher{}
	r := NewRemote(c, client, s, nil)
	if err := r.Subscribe(); err != nil {
		t.Fatal(err)
	}

	handler, ok := client.subscribed["lights/control"]
	if !ok {
		t.Fatal("not subscribed to the control topic")
	}

	handler(client, &fakeMessage{topic: "lights/control", payload: []byte("not json")})
	if len(client.published) != 0 {
		t.Fatal("status published for a bad command")
	}

	handler(client, &fakeMessage{topic: "lights/control", payload: []byte(`{"type":"advance"}`)})
	if len(s.advances) != 1 || s.advances[0] != 0.5 {
		t.Fatalf("advances = %v", s.advances)
	}
	if status := string(client.published["lights/status"]); !strings.Contains(status, `"active":"main"`) {
		t.Fatalf("status = %s", status)
	}
}

type cell struct {
	x, y  int
	style tcell.Style
}

type mockScreen struct {
	tcell.Screen
	width int
	cells []cell
	shows int
}

func (m *mockScreen) Size() (int, int) { return m.width, 1 }
func (m *mockScreen) Init() error      { return nil }
func (m *mockScreen) Clear()           {}
func (m *mockScreen) Fini()            {}
func (m *mockScreen) Show()            { m.shows++ }
func (m *mockScreen) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	m.cells = append(m.cells, cell{x: x, y: y, style: style})
}

func TestTerminalSink(t *testing.T) {
	screen := &mockScreen{width: 4}
	sink, err := NewTerminalSinkWithScreen(screen)
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	frame := effect.NewFrame(6)
	frame.SetPixel(5, 2, 0, 1)
	if err := sink.Show(frame); err != nil {
		t.Fatal(err)
	}

	if len(screen.cells) != 6 || screen.shows != 1 {
		t.Fatalf("drew %d cells, showed %d times", len(screen.cells), screen.shows)
	}
	last := screen.cells[5]
	if last.x != 1 || last.y != 1 {
		t.Fatalf("LED 5 drawn at %d,%d", last.x, last.y)
	}
	if last.style != tcell.StyleDefault.Background(tcell.NewRGBColor(255, 0, 255)) {
		t.Fatal("LED 5 not clamped to magenta")
	}
}
