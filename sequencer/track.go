package sequencer

import (
	"fmt"

	"github.com/pkg/errors"

	"midi-table/debug"
	"midi-table/midi"
)

// Track is a converted source track that made it into the table
type Track struct {
	Name    string // unique identifier fragment
	RawName string // track-name text as found in the file, may be empty
	Index   int    // position in the source file
	Mode    Mode
	Events  []Event
}

// Length returns the playback length of the track in milliseconds as the
// engine will see it
func (t *Track) Length() float64 {
	var total float64
	for _, ev := range t.Events {
		if t.Mode != Absolute {
			total += ev.Duration
		} else if end := ev.Start + ev.Duration; end > total {
			total = end
		}
	}
	return total
}

// Notes returns the number of non-rest events
func (t *Track) Notes() int {
	n := 0
	for _, ev := range t.Events {
		if !ev.IsRest() {
			n++
		}
	}
	return n
}

// Options control a whole-file conversion
type Options struct {
	Mode  Mode
	Tempo float64 // initial microseconds per beat; <= 0 uses the mode default
	Names *NameDecoder
}

// Convert interprets every track of file in order and names the ones that
// produced events. Each track starts from the initial tempo.
func Convert(file *midi.File, opts Options) ([]Track, error) {
	if file == nil {
		return nil, errors.New("no midi file")
	}
	if file.TicksPerBeat == 0 {
		return nil, errors.New("ticks per beat must be positive")
	}

	mode := opts.Mode
	if mode == "" {
		mode = Sequential
	}
	if mode != Sequential && mode != Absolute {
		return nil, errors.Errorf("invalid mode %q", mode)
	}

	tempo := opts.Tempo
	if tempo <= 0 {
		tempo = mode.DefaultTempo()
	}

	registry := NewRegistry()
	var tracks []Track

	for i, msgs := range file.Tracks {
		res := Interpret(msgs, file.TicksPerBeat, tempo, mode)
		if len(res.Events) == 0 {
			debug.Log("convert", "track %d: no events, skipped", i)
			continue
		}

		fallback := fmt.Sprintf("track%d", i)
		name := registry.Claim(Sanitize(opts.Names.Decode(res.Name), fallback))
		debug.Log("convert", "track %d: %q -> %s (%d events)", i, res.Name, name, len(res.Events))

		tracks = append(tracks, Track{
			Name:    name,
			RawName: res.Name,
			Index:   i,
			Mode:    mode,
			Events:  res.Events,
		})
	}

	return tracks, nil
}
