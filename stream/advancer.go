package stream

import (
	"context"
	"time"

	"github.com/matt-g-everett/ledlayers/render"
	logxi "github.com/mgutz/logxi/v1"
)

// A Switcher changes what is on display.
type Switcher interface {
	AdvanceCurrentPlaylist(fadeTime float64) error
	SwapPlaylists(next, intermediate string, advanceAfterFadeOut bool, fadeTime float64) error
	Status() render.Status
}

// Advancer moves the current playlist on at a fixed interval.
type Advancer struct {
	switcher Switcher
	interval time.Duration
	fadeTime float64
	logger   logxi.Logger
}

// NewAdvancer creates an Advancer that advances every interval seconds with a fade of fadeTime.
func NewAdvancer(switcher Switcher, interval, fadeTime float64, logger logxi.Logger) *Advancer {
	a := new(Advancer)
	a.switcher = switcher
	a.interval = time.Duration(interval * float64(time.Second))
	a.fadeTime = fadeTime
	a.logger = logger
	if a.logger == nil {
		a.logger = logxi.New("advancer")
	}
	return a
}

// Run advances until ctx is done. A non-positive interval disables it.
func (a *Advancer) Run(ctx context.Context) {
	if a.interval <= 0 {
		return
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.switcher.AdvanceCurrentPlaylist(a.fadeTime); err != nil {
				a.logger.Warn("advance failed", "err", err)
			}
		}
	}
}
