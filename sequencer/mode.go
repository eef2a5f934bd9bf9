package sequencer

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode selects the engine's event layout and silence policy
type Mode string

const (
	// Sequential events are (frequency, duration) played back to back;
	// silence is an explicit zero-frequency rest.
	Sequential Mode = "sequential"
	// Absolute events are (frequency, start, duration); gaps are implicit.
	Absolute Mode = "absolute"
)

const (
	sequentialBPM = 80
	absoluteBPM   = 120
)

// ParseMode accepts a mode name, case-insensitively. Empty means Sequential.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sequential", "seq":
		return Sequential, nil
	case "absolute", "abs":
		return Absolute, nil
	default:
		return "", errors.Errorf("invalid mode %q (expected sequential|absolute)", name)
	}
}

// Rests reports whether the mode emits explicit rest events
func (m Mode) Rests() bool {
	return m == Sequential
}

// DefaultTempo is the initial tempo in microseconds per beat used until a
// track sets its own
func (m Mode) DefaultTempo() float64 {
	if m == Absolute {
		return TempoFromBPM(absoluteBPM)
	}
	return TempoFromBPM(sequentialBPM)
}

// TempoFromBPM converts beats per minute to microseconds per beat
func TempoFromBPM(bpm float64) float64 {
	return 60_000_000 / bpm
}
