// Package emit renders converted tracks as a C header for the LEDC playback engine.
package emit

import (
	"fmt"
	"io"
	"strings"

	"midi-table/sequencer"
)

const DefaultInclude = "engine.h"

// Layout holds the engine-specific knobs of the generated table
type Layout struct {
	Mode      sequencer.Mode
	Include   string // engine header; DefaultInclude when empty
	Pins      []int  // sequential: output pin per table slot, slot index when missing
	Transpose int    // absolute: octave shift written into every descriptor
}

// element and descriptor C types per mode
func (l Layout) types() (event, track string) {
	if l.Mode == sequencer.Absolute {
		return "event_data_t", "track_data_t"
	}
	return "event_t", "track_t"
}

func (l Layout) pin(slot int) int {
	if slot < len(l.Pins) {
		return l.Pins[slot]
	}
	return slot
}

// trunc is the single place numeric fields become integers (toward zero)
func trunc(v float64) int64 {
	return int64(v)
}

// Render returns the header text. Tracks are written in the given order and
// are not filtered.
func Render(base string, tracks []sequencer.Track, layout Layout) string {
	eventType, trackType := layout.types()
	include := layout.Include
	if include == "" {
		include = DefaultInclude
	}

	var out strings.Builder
	out.WriteString("#pragma once\n\n")
	fmt.Fprintf(&out, "#include <%s>\n\n", include)

	for _, t := range tracks {
		fmt.Fprintf(&out, "%s %s_%s[] = {\n", eventType, base, t.Name)
		for _, ev := range t.Events {
			if layout.Mode == sequencer.Absolute {
				fmt.Fprintf(&out, "  {%d, %d, %d},\n", trunc(ev.Freq), trunc(ev.Start), trunc(ev.Duration))
			} else {
				fmt.Fprintf(&out, "  {%d, %d},\n", trunc(ev.Freq), trunc(ev.Duration))
			}
		}
		out.WriteString("};\n\n")
	}

	fmt.Fprintf(&out, "%s %s_data[] = {\n", trackType, base)
	for i, t := range tracks {
		array := base + "_" + t.Name
		count := fmt.Sprintf("sizeof(%s) / sizeof(%s)", array, eventType)
		if layout.Mode == sequencer.Absolute {
			fmt.Fprintf(&out, "  { .events = %s, .event_count = %s, .transpose = %d },\n", array, count, layout.Transpose)
		} else {
			fmt.Fprintf(&out, "  { .pin = %d, .events = %s, .event_count = %s },\n", layout.pin(i), array, count)
		}
	}
	out.WriteString("};\n\n")

	return out.String()
}

// Write renders the header and writes it to w in one call
func Write(w io.Writer, base string, tracks []sequencer.Track, layout Layout) error {
	_, err := io.WriteString(w, Render(base, tracks, layout))
	return err
}
