package theme

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Palette is an ordered list of colour stops, darkest first
type Palette struct {
	Name  string
	Stops []colorful.Color
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// DefaultPalette is a built-in dark-to-warm ramp used when no GPL file is configured
func DefaultPalette() *Palette {
	return &Palette{
		Name: "ember",
		Stops: []colorful.Color{
			rgb(0x1a, 0x10, 0x2b),
			rgb(0x3b, 0x1f, 0x4f),
			rgb(0x6c, 0x2d, 0x6b),
			rgb(0xa1, 0x3d, 0x74),
			rgb(0xd0, 0x5a, 0x6e),
			rgb(0xee, 0x85, 0x5c),
			rgb(0xf8, 0xb8, 0x4e),
			rgb(0xf9, 0xe7, 0x6a),
		},
	}
}

// Load returns the GIMP palette at path, or the default palette when path is empty
func Load(path string) (*Palette, error) {
	if path == "" {
		return DefaultPalette(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open palette")
	}
	defer f.Close()

	p, err := ParseGPL(f)
	if err != nil {
		return nil, errors.Wrapf(err, "palette %s", path)
	}
	return p, nil
}

// ParseGPL reads a GIMP palette. Every colour line must hold three channel
// values in 0..255; anything after them is the colour's name and is ignored.
func ParseGPL(r io.Reader) (*Palette, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "GIMP Palette" {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("missing GIMP Palette header")
	}

	p := &Palette{}
	for n := 2; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || line[0] == '#':
			continue
		case strings.HasPrefix(line, "Name:"):
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		case strings.HasPrefix(line, "Columns:"):
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, errors.Errorf("line %d: want R G B, got %q", n, line)
		}
		var c [3]uint8
		for i := range c {
			v, err := strconv.ParseUint(fields[i], 10, 8)
			if err != nil {
				return nil, errors.Errorf("line %d: bad channel %q", n, fields[i])
			}
			c[i] = uint8(v)
		}
		p.Stops = append(p.Stops, rgb(c[0], c[1], c[2]))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(p.Stops) == 0 {
		return nil, errors.New("no colors")
	}
	return p, nil
}

// at blends between the two stops around norm (0-1)
func (p *Palette) at(norm float64) colorful.Color {
	last := len(p.Stops) - 1
	if norm <= 0 || last == 0 {
		return p.Stops[0]
	}
	if norm >= 1 {
		return p.Stops[last]
	}
	pos := norm * float64(last)
	i := int(pos)
	return p.Stops[i].BlendRgb(p.Stops[i+1], pos-float64(i))
}
