package playlist

import (
	"github.com/matt-g-everett/ledlayers/effect"
	"github.com/pkg/errors"
)

// ErrEmpty is returned when a Playlist is created without routines.
var ErrEmpty = errors.New("playlist has no routines")

// Playlist is an ordered list of routines with a cursor that wraps around.
type Playlist struct {
	routines []effect.Routine
	current  int
}

// New creates a Playlist positioned at its first routine.
func New(routines ...effect.Routine) (*Playlist, error) {
	if len(routines) == 0 {
		return nil, ErrEmpty
	}

	p := new(Playlist)
	p.routines = routines
	p.current = 0
	return p, nil
}

// Selection returns the routine under the cursor.
func (p *Playlist) Selection() effect.Routine {
	return p.routines[p.current]
}

// Advance moves the cursor to the next routine, wrapping to the first after the last.
func (p *Playlist) Advance() {
	p.current = (p.current + 1) % len(p.routines)
}

// Index returns the cursor position.
func (p *Playlist) Index() int {
	return p.current
}

// Len returns the number of routines.
func (p *Playlist) Len() int {
	return len(p.routines)
}
