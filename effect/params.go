package effect

// DefaultFrameRate is the frame rate assumed when none is configured.
const DefaultFrameRate = 40.0

// Params are the inputs shared by every layer rendered in one frame.
type Params struct {
	// Time is the simulation clock in seconds.
	Time float64
	// TargetFrameRate is the rate the frame loop is trying to hold.
	TargetFrameRate float64
}

// NewParams creates Params at time zero with the default frame rate.
func NewParams() *Params {
	p := new(Params)
	p.TargetFrameRate = DefaultFrameRate
	return p
}
