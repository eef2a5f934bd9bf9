package sequencer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"midi-table/debug"
)

var nonIdent = regexp.MustCompile(`[^a-z0-9]+`)

// Sanitize maps a free-form track name to an identifier fragment, or returns
// fallback when nothing usable is left. It does not enforce uniqueness.
func Sanitize(raw, fallback string) string {
	if raw == "" {
		return fallback
	}

	name := strings.ToLower(raw)
	name = nonIdent.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return fallback
	}
	return name
}

// Registry hands out identifiers that are unique within one conversion
type Registry struct {
	used map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{used: make(map[string]struct{})}
}

// Claim registers name, or the first free name_1, name_2, ... if it is taken,
// and returns what was registered
func (r *Registry) Claim(name string) string {
	candidate := name
	for i := 1; r.Has(candidate); i++ {
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
	r.used[candidate] = struct{}{}
	return candidate
}

// Has returns true if name is already registered
func (r *Registry) Has(name string) bool {
	_, ok := r.used[name]
	return ok
}

// Len returns the number of registered names
func (r *Registry) Len() int {
	return len(r.used)
}

// NameDecoder turns raw track-name bytes into text before sanitizing.
// The zero value (and nil) passes names through unchanged.
type NameDecoder struct {
	charset encoding.Encoding
	fold    bool
}

// NewNameDecoder builds a decoder for a WHATWG charset label ("" keeps the raw
// bytes). With fold set, combining marks are stripped so accented latin
// letters survive sanitizing as their base letter.
func NewNameDecoder(charset string, fold bool) (*NameDecoder, error) {
	d := &NameDecoder{fold: fold}
	if charset != "" {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, errors.Wrapf(err, "charset %q", charset)
		}
		d.charset = enc
	}
	return d, nil
}

// Decode returns the display text of a raw name. Undecodable input is
// returned as is.
func (d *NameDecoder) Decode(raw string) string {
	if d == nil || raw == "" {
		return raw
	}

	name := raw
	if d.charset != nil {
		decoded, err := d.charset.NewDecoder().String(name)
		if err != nil {
			debug.Warn("names", "cannot decode %q: %v", raw, err)
		} else {
			name = decoded
		}
	}

	if d.fold {
		t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		folded, _, err := transform.String(t, name)
		if err != nil {
			debug.Warn("names", "cannot fold %q: %v", name, err)
		} else {
			name = folded
		}
	}
	return name
}
