package sequencer

import (
	"maps"
	"math"
	"slices"

	"midi-table/debug"
	"midi-table/midi"
)

// Event is one rendered segment. Start is only meaningful in Absolute mode;
// a zero Freq marks a rest (Sequential mode only).
type Event struct {
	Freq     float64 // Hz
	Start    float64 // ms from track start
	Duration float64 // ms
}

// IsRest returns true for an explicit silence event
func (e Event) IsRest() bool {
	return e.Freq == 0
}

// Result is what one track walk produces
type Result struct {
	Name   string // first track-name meta text, raw
	Named  bool
	Events []Event
}

// Frequency returns the equal-tempered pitch of a MIDI note (A4 = 69 = 440Hz)
func Frequency(note uint8) float64 {
	return 440.0 * math.Pow(2, (float64(note)-69)/12)
}

// TicksToMillis converts a tick span at the given tempo (microseconds per beat)
func TicksToMillis(ticks uint64, ticksPerBeat uint16, tempo float64) float64 {
	return (float64(ticks) * tempo) / (float64(ticksPerBeat) * 1000.0)
}

// accepted applies the integer-millisecond acceptance rule
func accepted(ms float64) bool {
	return int64(ms) > 0
}

// noteStart is where a sounding note began
type noteStart struct {
	ticks uint64
	ms    float64
}

// interpreter holds the state of a single track walk
type interpreter struct {
	mode         Mode
	ticksPerBeat uint16
	tempo        float64 // microseconds per beat

	ticks uint64  // absolute position
	ms    float64 // absolute position in milliseconds

	// ms was last brought up to date at clockTicks
	clockTicks uint64
	clockMs    float64

	active map[uint8]noteStart

	// last point at which the active set became empty
	silence   uint64
	silenceMs float64

	result Result
}

// Interpret walks one track and reconstructs its sounding notes.
//
// tempo is the initial tempo in microseconds per beat. A SetTempo message
// replaces it from then on: every later conversion, including the duration of
// a note already sounding, uses the new value. Notes still sounding when the
// track ends are dropped.
func Interpret(msgs []midi.Message, ticksPerBeat uint16, tempo float64, mode Mode) Result {
	it := &interpreter{
		mode:         mode,
		ticksPerBeat: ticksPerBeat,
		tempo:        tempo,
		active:       make(map[uint8]noteStart),
	}

	for _, msg := range msgs {
		it.advance(msg.Delta)

		switch msg.Kind {
		case midi.SetTempo:
			it.setTempo(msg.Tempo)
		case midi.TrackName:
			if !it.result.Named {
				it.result.Name = msg.Text
				it.result.Named = true
			}
		case midi.NoteOn:
			if msg.Velocity > 0 {
				it.noteOn(msg.Note)
			} else {
				it.noteOff(msg.Note)
			}
		case midi.NoteOff:
			it.noteOff(msg.Note)
		default:
			debug.LogEvery(100, "track", "skipping non-note messages")
		}
	}

	for _, note := range slices.Sorted(maps.Keys(it.active)) {
		debug.Warn("track", "missing note off for note %d (started at tick %d)", note, it.active[note].ticks)
	}

	return it.result
}

// advance moves the position on by delta ticks. The millisecond clock is
// measured from the last tempo change so that a track at one tempo gets
// exactly one conversion per timestamp.
func (it *interpreter) advance(delta uint32) {
	it.ticks += uint64(delta)
	it.ms = it.clockMs + it.toMillis(it.ticks-it.clockTicks)
}

func (it *interpreter) toMillis(ticks uint64) float64 {
	return TicksToMillis(ticks, it.ticksPerBeat, it.tempo)
}

func (it *interpreter) setTempo(tempo float64) {
	if tempo <= 0 {
		return
	}
	debug.Log("tempo", "tick %d: %.0fus/beat", it.ticks, tempo)

	it.clockTicks, it.clockMs = it.ticks, it.ms
	it.tempo = tempo
}

func (it *interpreter) noteOn(note uint8) {
	if len(it.active) == 0 && it.mode.Rests() && it.ticks > it.silence {
		rest := it.toMillis(it.ticks - it.silence)
		if accepted(rest) {
			it.emit(Event{Freq: 0, Start: it.silenceMs, Duration: rest})
		}
	}

	if prev, ok := it.active[note]; ok {
		debug.Warn("track", "note %d double pressed at tick %d (restarting from tick %d)", note, it.ticks, prev.ticks)
	}
	it.active[note] = noteStart{ticks: it.ticks, ms: it.ms}
}

func (it *interpreter) noteOff(note uint8) {
	start, ok := it.active[note]
	if !ok {
		debug.Log("track", "note off for unpressed note %d at tick %d", note, it.ticks)
		return
	}
	delete(it.active, note)

	duration := it.toMillis(it.ticks - start.ticks)
	freq := Frequency(note)
	if accepted(duration) && freq > 0 {
		it.emit(Event{Freq: freq, Start: start.ms, Duration: duration})
	} else {
		debug.Log("track", "note %d at tick %d dropped (%.3fms)", note, start.ticks, duration)
	}

	if len(it.active) == 0 {
		it.silence, it.silenceMs = it.ticks, it.ms
	}
}

func (it *interpreter) emit(ev Event) {
	it.result.Events = append(it.result.Events, ev)
}
