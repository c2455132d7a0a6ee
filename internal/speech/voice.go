package speech

import "fmt"

// Voice is an immutable descriptor of an installed synthesis voice.
type Voice struct {
	Name     string // display name, e.g. "Alice"
	Language string // language tag, e.g. "en-US"
}

// DisplayName derives the stable identifier used to persist and
// resolve voice selection across runs.
func (v Voice) DisplayName() string {
	return fmt.Sprintf("%s [%s]", v.Name, v.Language)
}

// Catalog holds the ordered set of voices enumerated at startup. It is
// fixed for the process lifetime.
type Catalog struct {
	voices []Voice
}

// NewCatalog creates a catalog over the given voices.
func NewCatalog(voices []Voice) *Catalog {
	return &Catalog{voices: voices}
}

// Len returns the number of voices.
func (c *Catalog) Len() int {
	return len(c.voices)
}

// Voices returns a copy of the enumerated voices.
func (c *Catalog) Voices() []Voice {
	out := make([]Voice, len(c.voices))
	copy(out, c.voices)
	return out
}

// Names returns the display identifiers in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.voices))
	for i, v := range c.voices {
		names[i] = v.DisplayName()
	}
	return names
}

// ByName returns the first voice whose display identifier matches name.
func (c *Catalog) ByName(name string) (Voice, bool) {
	for _, v := range c.voices {
		if v.DisplayName() == name {
			return v, true
		}
	}
	return Voice{}, false
}

// Index returns the position of the voice whose display identifier
// matches name.
func (c *Catalog) Index(name string) (int, bool) {
	for i, v := range c.voices {
		if v.DisplayName() == name {
			return i, true
		}
	}
	return 0, false
}

// NameAt returns the display identifier at index, or an empty string
// when the index is out of bounds. Stale UI indices must never error.
func (c *Catalog) NameAt(index int) string {
	if index < 0 || index >= len(c.voices) {
		return ""
	}
	return c.voices[index].DisplayName()
}
