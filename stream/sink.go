package stream

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matt-g-everett/ledlayers/effect"
	"github.com/pkg/errors"
)

// TerminalSink previews frames as a row of coloured cells in the terminal.
type TerminalSink struct {
	screen tcell.Screen
}

// NewTerminalSink opens the terminal for previewing.
func NewTerminalSink() (*TerminalSink, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "creating screen")
	}
	return NewTerminalSinkWithScreen(screen)
}

// NewTerminalSinkWithScreen previews frames on screen, which it initialises.
func NewTerminalSinkWithScreen(screen tcell.Screen) (*TerminalSink, error) {
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "initialising screen")
	}
	screen.Clear()
	return &TerminalSink{screen: screen}, nil
}

// Show draws one cell per LED, wrapping at the screen width.
func (s *TerminalSink) Show(frame *effect.Frame) error {
	w, _ := s.screen.Size()
	for i := 0; i < frame.Len(); i++ {
		r, g, b := frame.Color(i).Clamped().RGB255()
		style := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
		x, y := cellFor(i, w)
		s.screen.SetContent(x, y, ' ', nil, style)
	}
	s.screen.Show()
	return nil
}

// Close restores the terminal.
func (s *TerminalSink) Close() {
	s.screen.Fini()
}

func cellFor(i, width int) (int, int) {
	if width <= 0 {
		return i, 0
	}
	return i % width, i / width
}

// NullSink discards frames.
type NullSink struct{}

// Show does nothing.
func (NullSink) Show(*effect.Frame) error { return nil }
