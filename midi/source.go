package midi

import (
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

// File is a decoded standard MIDI file: one message list per track plus the
// tick resolution shared by all tracks.
type File struct {
	TicksPerBeat uint16
	Tracks       [][]Message
}

// ReadFile opens and decodes a standard MIDI file
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open midi file")
	}
	defer f.Close()

	file, err := ReadFrom(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return file, nil
}

// ReadFrom decodes a standard MIDI file from r
func ReadFrom(r io.Reader) (*File, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse smf")
	}
	return FromSMF(s)
}

// FromSMF converts an already parsed SMF. Only metric (ticks per quarter note)
// time formats are supported.
func FromSMF(s *smf.SMF) (*File, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.Errorf("unsupported time format %v (need ticks per quarter note)", s.TimeFormat)
	}
	if ticks == 0 {
		return nil, errors.New("ticks per quarter note is zero")
	}

	file := &File{
		TicksPerBeat: uint16(ticks),
		Tracks:       make([][]Message, len(s.Tracks)),
	}
	for i, track := range s.Tracks {
		file.Tracks[i] = DecodeTrack(track)
	}
	return file, nil
}

// DecodeTrack maps every smf event to a Message, keeping order and deltas.
// Events the interpreter has no use for become Other so their delta still counts.
func DecodeTrack(track smf.Track) []Message {
	out := make([]Message, 0, len(track))
	for _, ev := range track {
		out = append(out, Decode(ev))
	}
	return out
}

// Decode classifies a single smf event
func Decode(ev smf.Event) Message {
	msg := ev.Message
	out := Message{Delta: ev.Delta, Kind: Other}

	var ch, key, vel uint8
	var bpm float64
	var text string

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		out.Kind = NoteOn
		out.Note = key
		out.Velocity = vel
	case msg.GetNoteEnd(&ch, &key):
		// includes note-on with velocity 0
		out.Kind = NoteOff
		out.Note = key
	case msg.GetMetaTempo(&bpm):
		if bpm > 0 {
			out.Kind = SetTempo
			// smf reports BPM; the file stores whole microseconds per beat
			out.Tempo = math.Round(60_000_000 / bpm)
		}
	case msg.GetMetaTrackName(&text):
		out.Kind = TrackName
		out.Text = text
	}
	return out
}
