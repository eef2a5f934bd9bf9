package midi

import "fmt"

// Message kinds the track interpreter understands
type Kind uint8

const (
	Other Kind = iota
	NoteOn
	NoteOff
	SetTempo
	TrackName
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	case SetTempo:
		return "set-tempo"
	case TrackName:
		return "track-name"
	default:
		return "other"
	}
}

// Message is one decoded track event. Only the fields relevant to Kind are set.
type Message struct {
	Delta    uint32 // ticks since the previous message in the track
	Kind     Kind
	Note     uint8
	Velocity uint8
	Tempo    float64 // microseconds per quarter note (SetTempo)
	Text     string  // raw meta text bytes (TrackName)
}

func (m Message) String() string {
	switch m.Kind {
	case NoteOn:
		return fmt.Sprintf("+%-6d %-10s note=%d vel=%d", m.Delta, m.Kind, m.Note, m.Velocity)
	case NoteOff:
		return fmt.Sprintf("+%-6d %-10s note=%d", m.Delta, m.Kind, m.Note)
	case SetTempo:
		return fmt.Sprintf("+%-6d %-10s %.0fus/beat (%.2f bpm)", m.Delta, m.Kind, m.Tempo, 60_000_000/m.Tempo)
	case TrackName:
		return fmt.Sprintf("+%-6d %-10s %q", m.Delta, m.Kind, m.Text)
	default:
		return fmt.Sprintf("+%-6d %s", m.Delta, m.Kind)
	}
}

// Constructors, mostly used by tests and tools building tracks by hand.

func NoteOnMsg(delta uint32, note, velocity uint8) Message {
	return Message{Delta: delta, Kind: NoteOn, Note: note, Velocity: velocity}
}

func NoteOffMsg(delta uint32, note uint8) Message {
	return Message{Delta: delta, Kind: NoteOff, Note: note}
}

func TempoMsg(delta uint32, microsPerBeat float64) Message {
	return Message{Delta: delta, Kind: SetTempo, Tempo: microsPerBeat}
}

func NameMsg(delta uint32, text string) Message {
	return Message{Delta: delta, Kind: TrackName, Text: text}
}

func OtherMsg(delta uint32) Message {
	return Message{Delta: delta, Kind: Other}
}
