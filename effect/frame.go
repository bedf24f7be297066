package effect

import (
	"github.com/cwbudde/algo-vecmath"
	"github.com/lucasb-eyer/go-colorful"
)

// Frame is a fixed-length buffer of linear RGB triples, one per LED. Values are not clamped.
type Frame struct {
	pixels []float64
}

// NewFrame creates a zeroed Frame for numLEDs LEDs.
func NewFrame(numLEDs int) *Frame {
	f := new(Frame)
	f.pixels = make([]float64, numLEDs*3)
	return f
}

// Len returns the number of LEDs in the frame.
func (f *Frame) Len() int {
	return len(f.pixels) / 3
}

// Like returns a zeroed Frame with the same shape as f.
func (f *Frame) Like() *Frame {
	return NewFrame(f.Len())
}

// Pixel returns the colour of LED i.
func (f *Frame) Pixel(i int) (r, g, b float64) {
	p := f.pixels[i*3 : i*3+3]
	return p[0], p[1], p[2]
}

// SetPixel overwrites the colour of LED i.
func (f *Frame) SetPixel(i int, r, g, b float64) {
	p := f.pixels[i*3 : i*3+3]
	p[0], p[1], p[2] = r, g, b
}

// AddPixel adds a colour to LED i.
func (f *Frame) AddPixel(i int, r, g, b float64) {
	p := f.pixels[i*3 : i*3+3]
	p[0] += r
	p[1] += g
	p[2] += b
}

// AddAll adds the same colour to every LED.
func (f *Frame) AddAll(r, g, b float64) {
	for i := 0; i < len(f.pixels); i += 3 {
		f.pixels[i] += r
		f.pixels[i+1] += g
		f.pixels[i+2] += b
	}
}

// Add accumulates o into f elementwise.
func (f *Frame) Add(o *Frame) {
	vecmath.AddBlockInPlace(f.pixels, o.pixels)
}

// Scale multiplies every channel of f by w.
func (f *Frame) Scale(w float64) {
	vecmath.ScaleBlock(f.pixels, f.pixels, w)
}

// Multiply stores the elementwise product of a and b in f.
func (f *Frame) Multiply(a, b *Frame) {
	vecmath.MulBlock(f.pixels, a.pixels, b.pixels)
}

// Map replaces every channel value v with fn(v).
func (f *Frame) Map(fn func(float64) float64) {
	for i, v := range f.pixels {
		f.pixels[i] = fn(v)
	}
}

// Channels returns a copy of the flattened r, g, b values.
func (f *Frame) Channels() []float64 {
	out := make([]float64, len(f.pixels))
	copy(out, f.pixels)
	return out
}

// Color returns LED i as an unclamped colorful.Color.
func (f *Frame) Color(i int) colorful.Color {
	r, g, b := f.Pixel(i)
	return colorful.Color{R: r, G: g, B: b}
}
