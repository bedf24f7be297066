package stream

import (
	"context"
	"time"

	"github.com/matt-g-everett/ledlayers/effect"
	logxi "github.com/mgutz/logxi/v1"
	"github.com/pkg/errors"
)

const fpsLogPeriod = 500 * time.Millisecond

// A Composer renders one complete frame.
type Composer interface {
	Render(model effect.Topology, params *effect.Params, frame *effect.Frame) error
}

// A Sink receives finished frames. It owns clamping and whatever happens to the frame next.
type Sink interface {
	Show(frame *effect.Frame) error
}

// Controller runs the frame loop: it advances the animation clock, renders a frame and hands
// it to a Sink.
type Controller struct {
	model    effect.Topology
	composer Composer
	params   *effect.Params
	sink     Sink
	logger   logxi.Logger

	started   bool
	epoch     time.Time
	fpsFrames int
	fpsTime   time.Time
}

// NewController creates a Controller rendering composer's output for model.
func NewController(model effect.Topology, composer Composer, params *effect.Params, sink Sink,
	logger logxi.Logger) *Controller {

	c := new(Controller)
	c.model = model
	c.composer = composer
	c.params = params
	if c.params == nil {
		c.params = effect.NewParams()
	}
	c.sink = sink
	c.logger = logger
	if c.logger == nil {
		c.logger = logxi.New("stream")
	}
	return c
}

// advanceTime moves the animation clock. While the loop keeps up the clock advances by the
// ideal frame interval, which keeps it steady under jitter. After a stall of more than two
// frames it jumps straight to now.
func (c *Controller) advanceTime(now time.Time) {
	if !c.started {
		c.started = true
		c.epoch = now
		c.fpsTime = now
	}

	wall := now.Sub(c.epoch).Seconds()
	dtIdeal := 1.0 / c.params.TargetFrameRate
	if wall-c.params.Time > dtIdeal*2 {
		// Big jump forward. Jump immediately to the current time and don't look back.
		c.params.Time = wall
	} else {
		c.params.Time += dtIdeal
	}

	c.fpsFrames++
	if elapsed := now.Sub(c.fpsTime); elapsed > fpsLogPeriod {
		if c.logger.IsDebug() {
			c.logger.Debug("frame rate", "fps", float64(c.fpsFrames)/elapsed.Seconds())
		}
		c.fpsTime = now
		c.fpsFrames = 0
	}
}

// DrawFrame renders one frame at wall-clock time now and sends it to the sink.
func (c *Controller) DrawFrame(now time.Time) error {
	c.advanceTime(now)

	frame := effect.NewFrame(c.model.NumLEDs())
	if err := c.composer.Render(c.model, c.params, frame); err != nil {
		return errors.Wrap(err, "rendering frame")
	}
	if c.sink == nil {
		return nil
	}
	if err := c.sink.Show(frame); err != nil {
		return errors.Wrap(err, "showing frame")
	}
	return nil
}

// Run draws frames at the target frame rate until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	interval := time.Duration(float64(time.Second) / c.params.TargetFrameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := c.DrawFrame(now); err != nil {
				c.logger.Error("frame failed", "err", err)
			}
		}
	}
}
