package render

import (
	"sort"
	"sync"

	"github.com/matt-g-everett/ledlayers/effect"
	"github.com/matt-g-everett/ledlayers/fade"
	"github.com/matt-g-everett/ledlayers/playlist"
	logxi "github.com/mgutz/logxi/v1"
	"github.com/pkg/errors"
)

var (
	// ErrNoPlaylists is returned when a Renderer is created without playlists.
	ErrNoPlaylists = errors.New("can't define a renderer without any playlists")
	// ErrAmbiguousActive is returned when several playlists are given and none is named active.
	ErrAmbiguousActive = errors.New("can't define multi-playlist renderer without specifying active playlist")
	// ErrUnknownPlaylist is returned when a name does not match any playlist.
	ErrUnknownPlaylist = errors.New("unknown playlist")
	// ErrNoActivePlaylist is returned when advancing with no playlist active.
	ErrNoActivePlaylist = errors.New("can't advance playlist - no playlist is currently active")
)

const (
	// DefaultGamma is the gamma applied when none is configured.
	DefaultGamma = 2.2
	// intermediateFadeOut is the first leg of a two-step fade, in seconds.
	intermediateFadeOut = 0.25
)

type options struct {
	active       string
	useFastFades bool
	gamma        float64
	guard        *effect.Guard
	logger       logxi.Logger
}

// An Option configures a Renderer.
type Option func(*options)

// WithActive names the playlist shown first. Required when there is more than one playlist.
func WithActive(name string) Option {
	return func(o *options) { o.active = name }
}

// WithFastFades uses fast fades instead of linear ones when swapping playlists.
func WithFastFades(fast bool) Option {
	return func(o *options) { o.useFastFades = fast }
}

// WithGamma sets the gamma of the final correction pass.
func WithGamma(gamma float64) Option {
	return func(o *options) { o.gamma = gamma }
}

// WithGuard sets the Guard layers are rendered through.
func WithGuard(guard *effect.Guard) Option {
	return func(o *options) { o.guard = guard }
}

// WithLogger sets the logger used for transitions.
func WithLogger(logger logxi.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Renderer renders the selected routine of the active playlist, fades smoothly whenever the
// routine changes and applies gamma correction after everything else.
//
// Render, AdvanceCurrentPlaylist and SwapPlaylists may be called from different goroutines.
type Renderer struct {
	mu sync.Mutex

	playlists    map[string]*playlist.Playlist
	active       string
	pending      string
	fade         *fade.Fade
	useFastFades bool
	gamma        *effect.Gamma
	guard        *effect.Guard
	logger       logxi.Logger
}

// New creates a Renderer that owns playlists.
func New(playlists map[string]*playlist.Playlist, opts ...Option) (*Renderer, error) {
	if len(playlists) == 0 {
		return nil, ErrNoPlaylists
	}

	o := options{gamma: DefaultGamma}
	for _, opt := range opts {
		opt(&o)
	}

	if o.active == "" {
		if len(playlists) != 1 {
			return nil, ErrAmbiguousActive
		}
		for name := range playlists {
			o.active = name
		}
	}

	r := new(Renderer)
	r.playlists = make(map[string]*playlist.Playlist, len(playlists))
	for name, p := range playlists {
		if p == nil {
			return nil, errors.Wrapf(ErrUnknownPlaylist, "playlist %q is nil", name)
		}
		r.playlists[name] = p
	}
	if _, ok := r.playlists[o.active]; !ok {
		return nil, errors.Wrapf(ErrUnknownPlaylist, "active playlist %q", o.active)
	}

	r.active = o.active
	r.useFastFades = o.useFastFades
	r.gamma = effect.NewGamma(o.gamma)
	r.logger = o.logger
	if r.logger == nil {
		r.logger = logxi.New("render")
	}
	r.guard = o.guard
	if r.guard == nil {
		r.guard = effect.NewGuard(nil, r.logger)
	}
	return r, nil
}

// Render composes one frame. While a fade is running it draws the fade, and on the frame the
// fade completes the pending playlist becomes active. Otherwise it draws the active playlist's
// selection. Gamma correction is always applied last.
func (r *Renderer) Render(model effect.Topology, params *effect.Params, frame *effect.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fade != nil {
		if err := r.fade.Render(model, params, frame); err != nil {
			return errors.Wrap(err, "rendering fade")
		}
		if r.fade.Done() {
			// If the fade was to a new playlist, set that one to active
			if r.pending != "" {
				r.active = r.pending
				r.pending = ""
				r.logger.Info("playlist active", "playlist", r.active)
			}
			r.fade = nil
		}
	} else if r.active != "" {
		if err := r.playlists[r.active].Selection().Render(r.guard, model, params, frame); err != nil {
			return err
		}
	}

	return r.gamma.Render(model, params, frame)
}

// AdvanceCurrentPlaylist moves the current playlist to its next routine and fades to it over
// fadeTime seconds.
func (r *Renderer) AdvanceCurrentPlaylist(fadeTime float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := r.current()
	if name == "" {
		return ErrNoActivePlaylist
	}

	p := r.playlists[name]
	outgoing := r.outgoing()
	p.Advance()
	r.start(fade.NewLinear(outgoing, p.Selection(), fadeTime))
	r.logger.Info("advanced playlist", "playlist", name, "selection", p.Index())
	return nil
}

// SwapPlaylists fades to the playlist named next, either directly or through the current
// selection of the playlist named intermediate. With advanceAfterFadeOut the outgoing playlist,
// and the intermediate once it has been shown, move on so a later return resumes elsewhere.
func (r *Renderer) SwapPlaylists(next, intermediate string, advanceAfterFadeOut bool, fadeTime float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.playlists[next]
	if !ok {
		return errors.Wrapf(ErrUnknownPlaylist, "next playlist %q", next)
	}
	var middle *playlist.Playlist
	if intermediate != "" {
		if middle, ok = r.playlists[intermediate]; !ok {
			return errors.Wrapf(ErrUnknownPlaylist, "intermediate playlist %q", intermediate)
		}
	}

	name := r.current()
	if name == "" {
		return ErrNoActivePlaylist
	}
	outgoing := r.outgoing()

	var f *fade.Fade
	switch {
	case r.useFastFades:
		f = fade.NewFast(outgoing, target.Selection(), fadeTime)
	case middle != nil:
		shown := middle.Selection()
		f = fade.NewTwoStep(outgoing, shown, target.Selection(), intermediateFadeOut, shown.TransitionFadeTime())
		if advanceAfterFadeOut {
			f.OnLegBoundary(middle.Advance)
		}
	default:
		f = fade.NewLinear(outgoing, target.Selection(), fadeTime)
	}

	if advanceAfterFadeOut {
		r.playlists[name].Advance()
	}
	r.pending = next
	r.start(f)
	r.logger.Info("swapping playlists", "from", name, "to", next, "via", intermediate)
	return nil
}

// current is the playlist the display is on or heading to.
func (r *Renderer) current() string {
	if r.pending != "" {
		return r.pending
	}
	return r.active
}

// outgoing is what is on display right now. A fade still in progress becomes the outgoing
// stage of the next one, so a new transition starts from the blended state. Finished fades
// release their stages, which keeps the chain no longer than the fades still running.
func (r *Renderer) outgoing() effect.Routine {
	if r.fade != nil {
		if r.fade.Done() {
			return r.fade.To()
		}
		return effect.Routine{r.fade}
	}
	return r.playlists[r.active].Selection()
}

func (r *Renderer) start(f *fade.Fade) {
	f.SetGuard(r.guard)
	r.fade = f
}

// Fade returns the fade in progress, or nil.
func (r *Renderer) Fade() *fade.Fade {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fade
}

// Status is a snapshot of the renderer's selection state.
type Status struct {
	Active     string         `json:"active"`
	Pending    string         `json:"pending,omitempty"`
	Fading     bool           `json:"fading"`
	Playlists  []string       `json:"playlists"`
	Selections map[string]int `json:"selections"`
}

// Status returns a snapshot of the renderer's selection state.
func (r *Renderer) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Status{
		Active:     r.active,
		Pending:    r.pending,
		Fading:     r.fade != nil,
		Playlists:  make([]string, 0, len(r.playlists)),
		Selections: make(map[string]int, len(r.playlists)),
	}
	for name, p := range r.playlists {
		s.Playlists = append(s.Playlists, name)
		s.Selections[name] = p.Index()
	}
	sort.Strings(s.Playlists)
	return s
}
