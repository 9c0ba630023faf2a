package segment

// Fragment is one timed unit of recognized text emitted by the speech engine.
// Start and End are offsets from the beginning of the audio, in seconds.
type Fragment struct {
	Text  string
	Start float64
	End   float64
}

// Chunk is a merged run of fragments meant to display as one subtitle cue or
// one transcript line. End is always >= Start and Text is trimmed and non-empty.
type Chunk struct {
	Text  string
	Start float64
	End   float64
}

// Duration returns the chunk's time span in seconds.
func (c Chunk) Duration() float64 {
	return c.End - c.Start
}
