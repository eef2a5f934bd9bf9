package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"midi-table/midi"
	"midi-table/sequencer"
)

var (
	headStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	file, err := midi.ReadFile(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "tracks":
		listTracks(file)
	case "events":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		idx, err := strconv.Atoi(os.Args[3])
		if err != nil || idx < 0 || idx >= len(file.Tracks) {
			fmt.Fprintf(os.Stderr, "Error: track must be 0..%d\n", len(file.Tracks)-1)
			os.Exit(1)
		}
		dumpEvents(file, idx)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI file inspector")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  tracks <file>          - List tracks with message and note counts")
	fmt.Println("  events <file> <track>  - Dump the decoded messages of one track")
}

func listTracks(file *midi.File) {
	fmt.Println(headStyle.Render(fmt.Sprintf("=== %d tracks, %d ticks/beat ===", len(file.Tracks), file.TicksPerBeat)))

	for i, msgs := range file.Tracks {
		seq := sequencer.Interpret(msgs, file.TicksPerBeat, sequencer.Sequential.DefaultTempo(), sequencer.Sequential)
		abs := sequencer.Interpret(msgs, file.TicksPerBeat, sequencer.Absolute.DefaultTempo(), sequencer.Absolute)

		counts := map[midi.Kind]int{}
		var ticks uint64
		for _, m := range msgs {
			counts[m.Kind]++
			ticks += uint64(m.Delta)
		}

		name := "(unnamed)"
		if seq.Named {
			name = strconv.Quote(seq.Name)
		}
		fmt.Printf("  %d: %s -> %s\n", i, name, sequencer.Sanitize(seq.Name, fmt.Sprintf("track%d", i)))
		fmt.Println(dimStyle.Render(fmt.Sprintf("     %d messages, %d ticks, on=%d off=%d tempo=%d",
			len(msgs), ticks, counts[midi.NoteOn], counts[midi.NoteOff], counts[midi.SetTempo])))
		fmt.Println(dimStyle.Render(fmt.Sprintf("     sequential: %d events, absolute: %d events",
			len(seq.Events), len(abs.Events))))
	}
}

func dumpEvents(file *midi.File, idx int) {
	fmt.Println(headStyle.Render(fmt.Sprintf("=== Track %d ===", idx)))

	var ticks uint64
	for _, m := range file.Tracks[idx] {
		ticks += uint64(m.Delta)
		if m.Kind == midi.Other {
			fmt.Println(dimStyle.Render(fmt.Sprintf("%8d %s", ticks, m)))
			continue
		}
		fmt.Printf("%8d %s\n", ticks, m)
	}
}
