package speech

import "testing"

// TestDisplayName tests the derived display identifier.
func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		voice Voice
		want  string
	}{
		{"name and language", Voice{Name: "Alice", Language: "en-US"}, "Alice [en-US]"},
		{"empty language", Voice{Name: "Alice"}, "Alice []"},
		{"empty name", Voice{Language: "en-US"}, " [en-US]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.voice.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestCatalogRoundTrip verifies that for every voice, looking up its
// derived identifier returns its position, and NameAt at that position
// returns the same identifier.
func TestCatalogRoundTrip(t *testing.T) {
	catalog := NewCatalog([]Voice{
		{Name: "Alice", Language: "en-US"},
		{Name: "Bob", Language: "en-GB"},
		{Name: "Chiara", Language: "it-IT"},
	})

	for i, v := range catalog.Voices() {
		id := v.DisplayName()
		got, ok := catalog.Index(id)
		if !ok || got != i {
			t.Errorf("Index(%q) = (%d, %v), want (%d, true)", id, got, ok, i)
		}
		if name := catalog.NameAt(i); name != id {
			t.Errorf("NameAt(%d) = %q, want %q", i, name, id)
		}
	}
}

// TestCatalogByName tests handle lookup including the miss case.
func TestCatalogByName(t *testing.T) {
	catalog := NewCatalog([]Voice{
		{Name: "Alice", Language: "en-US"},
		{Name: "Bob", Language: "en-GB"},
	})

	v, ok := catalog.ByName("Bob [en-GB]")
	if !ok || v.Name != "Bob" {
		t.Errorf("ByName(Bob [en-GB]) = (%+v, %v), want Bob", v, ok)
	}

	if _, ok := catalog.ByName("Eve [fr-FR]"); ok {
		t.Error("ByName(Eve [fr-FR]) = ok, want miss")
	}
}

// TestCatalogNameAtOutOfBounds verifies stale indices never error.
func TestCatalogNameAtOutOfBounds(t *testing.T) {
	catalog := NewCatalog([]Voice{{Name: "Alice", Language: "en-US"}})

	for _, idx := range []int{-1, 1, 99} {
		if got := catalog.NameAt(idx); got != "" {
			t.Errorf("NameAt(%d) = %q, want empty string", idx, got)
		}
	}
}

// TestCatalogEmpty covers the empty-catalog edge.
func TestCatalogEmpty(t *testing.T) {
	catalog := NewCatalog(nil)
	if catalog.Len() != 0 {
		t.Errorf("Len() = %d, want 0", catalog.Len())
	}
	if got := catalog.NameAt(0); got != "" {
		t.Errorf("NameAt(0) = %q, want empty string", got)
	}
	if _, ok := catalog.Index("Alice [en-US]"); ok {
		t.Error("Index on empty catalog = ok, want miss")
	}
}
