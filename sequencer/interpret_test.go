package sequencer

import (
	"math"
	"testing"

	"midi-table/midi"
)

const (
	tpb      = 480
	tempo120 = 500000.0
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestFrequency(t *testing.T) {
	cases := []struct {
		note uint8
		want float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.6255653},
	}
	for _, tc := range cases {
		if got := Frequency(tc.note); !near(got, tc.want) {
			t.Errorf("Frequency(%d) = %v, want %v", tc.note, got, tc.want)
		}
	}
}

func TestTicksToMillis(t *testing.T) {
	if got := TicksToMillis(480, 480, 500000); got != 500.0 {
		t.Fatalf("480 ticks at 120bpm = %v, want 500", got)
	}
	if got := TicksToMillis(240, 96, 750000); got != 1875.0 {
		t.Fatalf("got %v, want 1875", got)
	}
}

type want struct {
	freq, start, dur float64
}

func checkEvents(t *testing.T, got []Event, expected []want, withStart bool) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("got %d events %+v, want %d", len(got), got, len(expected))
	}
	for i, w := range expected {
		ev := got[i]
		if !near(ev.Freq, w.freq) || !near(ev.Duration, w.dur) || (withStart && !near(ev.Start, w.start)) {
			t.Errorf("event %d = %+v, want %+v", i, ev, w)
		}
	}
}

func TestInterpretSequential(t *testing.T) {
	c4, d4 := Frequency(60), Frequency(62)

	cases := []struct {
		name string
		msgs []midi.Message
		want []want
	}{
		{
			name: "single beat",
			msgs: []midi.Message{
				midi.NoteOnMsg(0, 69, 100),
				midi.NoteOffMsg(480, 69),
			},
			want: []want{{freq: 440, dur: 500}},
		},
		{
			name: "leading rest",
			msgs: []midi.Message{
				midi.NoteOnMsg(480, 60, 100),
				midi.NoteOffMsg(480, 60),
			},
			want: []want{{freq: 0, dur: 500}, {freq: c4, dur: 500}},
		},
		{
			name: "no rest between touching notes",
			msgs: []midi.Message{
				midi.NoteOnMsg(0, 60, 100),
				midi.NoteOffMsg(480, 60),
				midi.NoteOnMsg(0, 62, 100),
				midi.NoteOffMsg(480, 62),
			},
			want: []want{{freq: c4, dur: 500}, {freq: d4, dur: 500}},
		},
		{
			name: "rest kept when the note is dropped",
			msgs: []midi.Message{
				midi.NoteOnMsg(960, 60, 100),
				midi.NoteOffMsg(0, 60),
				midi.NoteOnMsg(480, 62, 100),
				midi.NoteOffMsg(480, 62),
			},
			want: []want{{freq: 0, dur: 1000}, {freq: 0, dur: 500}, {freq: d4, dur: 500}},
		},
		{
			name: "velocity zero ends the note",
			msgs: []midi.Message{
				midi.NoteOnMsg(0, 69, 100),
				midi.NoteOnMsg(480, 69, 0),
			},
			want: []want{{freq: 440, dur: 500}},
		},
		{
			name: "duplicate note on restarts",
			msgs: []midi.Message{
				midi.NoteOnMsg(0, 60, 100),
				midi.NoteOnMsg(240, 60, 100),
				midi.NoteOffMsg(480, 60),
			},
			want: []want{{freq: c4, dur: 500}},
		},
		{
			name: "overlapping notes in note-off order without rests",
			msgs: []midi.Message{
				midi.NoteOnMsg(0, 60, 100),
				midi.NoteOnMsg(0, 62, 100),
				midi.NoteOffMsg(480, 60),
				midi.NoteOffMsg(480, 62),
			},
			want: []want{{freq: c4, dur: 500}, {freq: d4, dur: 1000}},
		},
		{
			name: "dangling note dropped",
			msgs: []midi.Message{
				midi.NoteOnMsg(0, 60, 100),
				midi.NoteOnMsg(0, 62, 100),
				midi.NoteOffMsg(480, 62),
			},
			want: []want{{freq: d4, dur: 500}},
		},
		{
			name: "other messages still advance time",
			msgs: []midi.Message{
				midi.OtherMsg(240),
				midi.NameMsg(240, "x"),
				midi.NoteOnMsg(0, 69, 100),
				midi.OtherMsg(480),
				midi.NoteOffMsg(0, 69),
			},
			want: []want{{freq: 0, dur: 500}, {freq: 440, dur: 500}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Interpret(tc.msgs, tpb, tempo120, Sequential)
			checkEvents(t, res.Events, tc.want, false)
		})
	}
}

func TestUnmatchedNoteOffKeepsSilenceBoundary(t *testing.T) {
	msgs := []midi.Message{
		midi.NoteOnMsg(0, 60, 100),
		midi.NoteOffMsg(480, 61), // never pressed
		midi.NoteOffMsg(0, 60),
		midi.NoteOffMsg(480, 61), // still never pressed
		midi.NoteOnMsg(480, 62, 100),
		midi.NoteOffMsg(480, 62),
	}
	res := Interpret(msgs, tpb, tempo120, Sequential)
	checkEvents(t, res.Events, []want{
		{freq: Frequency(60), dur: 500},
		{freq: 0, dur: 1000},
		{freq: Frequency(62), dur: 500},
	}, false)
}

func TestShortNotesDropped(t *testing.T) {
	// one tick at 960 tpb and 120bpm is about half a millisecond
	msgs := []midi.Message{
		midi.NoteOnMsg(0, 60, 100),
		midi.NoteOffMsg(1, 60),
		midi.NoteOnMsg(959, 62, 100),
		midi.NoteOffMsg(960, 62),
	}
	res := Interpret(msgs, 960, tempo120, Sequential)
	if len(res.Events) != 2 {
		t.Fatalf("got %+v, want rest and one note", res.Events)
	}
	if !res.Events[0].IsRest() || int64(res.Events[0].Duration) != 499 {
		t.Errorf("rest = %+v, want 499ms", res.Events[0])
	}
	if int64(res.Events[1].Duration) != 500 {
		t.Errorf("note = %+v, want 500ms", res.Events[1])
	}
}

func TestSubMillisecondRestSkipped(t *testing.T) {
	msgs := []midi.Message{
		midi.NoteOnMsg(0, 60, 100),
		midi.NoteOffMsg(960, 60),
		midi.NoteOnMsg(1, 62, 100),
		midi.NoteOffMsg(960, 62),
	}
	res := Interpret(msgs, 960, tempo120, Sequential)
	checkEvents(t, res.Events, []want{
		{freq: Frequency(60), dur: 500},
		{freq: Frequency(62), dur: 500},
	}, false)
}

func TestTempoChanges(t *testing.T) {
	t.Run("mid note", func(t *testing.T) {
		msgs := []midi.Message{
			midi.NoteOnMsg(0, 69, 100),
			midi.TempoMsg(480, 1000000),
			midi.NoteOffMsg(480, 69),
		}
		res := Interpret(msgs, tpb, tempo120, Sequential)
		// the whole note is converted at the tempo current at its note off
		checkEvents(t, res.Events, []want{{freq: 440, dur: 2000}}, false)
	})

	t.Run("during a rest", func(t *testing.T) {
		msgs := []midi.Message{
			midi.NoteOnMsg(0, 60, 100),
			midi.NoteOffMsg(480, 60),
			midi.TempoMsg(480, 1000000),
			midi.NoteOnMsg(480, 62, 100),
			midi.NoteOffMsg(480, 62),
		}
		res := Interpret(msgs, tpb, tempo120, Sequential)
		checkEvents(t, res.Events, []want{
			{freq: Frequency(60), dur: 500},
			{freq: 0, dur: 2000},
			{freq: Frequency(62), dur: 1000},
		}, false)
	})

	t.Run("absolute start follows the running clock", func(t *testing.T) {
		msgs := []midi.Message{
			midi.NoteOnMsg(0, 69, 100),
			midi.TempoMsg(480, 1000000),
			midi.NoteOffMsg(480, 69),
			midi.NoteOnMsg(0, 81, 100),
			midi.NoteOffMsg(480, 81),
		}
		res := Interpret(msgs, tpb, tempo120, Absolute)
		checkEvents(t, res.Events, []want{
			{freq: 440, start: 0, dur: 2000},
			{freq: 880, start: 1500, dur: 1000},
		}, true)
	})

	t.Run("at tick zero replaces the initial tempo", func(t *testing.T) {
		msgs := []midi.Message{
			midi.TempoMsg(0, 1000000),
			midi.NoteOnMsg(0, 69, 100),
			midi.NoteOffMsg(480, 69),
		}
		res := Interpret(msgs, tpb, tempo120, Sequential)
		checkEvents(t, res.Events, []want{{freq: 440, dur: 1000}}, false)
	})

	t.Run("not retroactive", func(t *testing.T) {
		msgs := []midi.Message{
			midi.NoteOnMsg(0, 69, 100),
			midi.NoteOffMsg(480, 69),
			midi.TempoMsg(0, 250000),
			midi.NoteOnMsg(480, 69, 100),
			midi.NoteOffMsg(480, 69),
		}
		res := Interpret(msgs, tpb, tempo120, Absolute)
		checkEvents(t, res.Events, []want{
			{freq: 440, start: 0, dur: 500},
			{freq: 440, start: 750, dur: 250},
		}, true)
	})

	t.Run("non-positive tempo ignored", func(t *testing.T) {
		msgs := []midi.Message{
			midi.TempoMsg(0, 0),
			midi.NoteOnMsg(0, 69, 100),
			midi.NoteOffMsg(480, 69),
		}
		res := Interpret(msgs, tpb, tempo120, Sequential)
		checkEvents(t, res.Events, []want{{freq: 440, dur: 500}}, false)
	})
}

func TestInterpretAbsolute(t *testing.T) {
	msgs := []midi.Message{
		midi.NoteOnMsg(480, 69, 100),
		midi.NoteOffMsg(480, 69),
		midi.NoteOnMsg(480, 81, 100),
		midi.NoteOffMsg(240, 81),
	}
	res := Interpret(msgs, tpb, tempo120, Absolute)
	checkEvents(t, res.Events, []want{
		{freq: 440, start: 500, dur: 500},
		{freq: 880, start: 1500, dur: 250},
	}, true)
	for _, ev := range res.Events {
		if ev.IsRest() {
			t.Fatalf("absolute mode emitted a rest: %+v", ev)
		}
	}
}

func TestTrackNameFirstWins(t *testing.T) {
	res := Interpret([]midi.Message{
		midi.NameMsg(0, "Lead"),
		midi.NameMsg(0, "Other"),
	}, tpb, tempo120, Sequential)
	if !res.Named || res.Name != "Lead" {
		t.Fatalf("name = %q (named=%v), want Lead", res.Name, res.Named)
	}
	if len(res.Events) != 0 {
		t.Fatalf("got events %+v from a name-only track", res.Events)
	}

	if res := Interpret(nil, tpb, tempo120, Sequential); res.Named {
		t.Fatalf("empty track reported a name")
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"":           Sequential,
		"sequential": Sequential,
		"SEQ":        Sequential,
		"absolute":   Absolute,
		" abs ":      Absolute,
	} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMode("loud"); err == nil {
		t.Errorf("expected error for unknown mode")
	}

	if Sequential.DefaultTempo() != 750000 {
		t.Errorf("sequential default = %v, want 750000", Sequential.DefaultTempo())
	}
	if Absolute.DefaultTempo() != 500000 {
		t.Errorf("absolute default = %v, want 500000", Absolute.DefaultTempo())
	}
}
