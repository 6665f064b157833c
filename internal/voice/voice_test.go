// ABOUTME: Tests for the voice catalog
// ABOUTME: Tests virtual voice mappings, fallback and catalog ordering
package voice

import (
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name        Name
		base        Name
		personality string
	}{
		{Zephyr, Zephyr, ""},
		{Kore, Kore, ""},
		{Fenrir, Fenrir, ""},
		{Lyra, Zephyr, " ethereal and soft atmospheric qualities"},
		{Orion, Kore, " cinematic power and deep resonance"},
		{Cepheus, Fenrir, " ancient wisdom and a slightly raspy historical tone"},
		{Delphinus, Puck, " cheerful, bubbly gaming-style energy"},
		{Sirius, Charon, " charming, warm Irish brogue"},
		{Canopus, Zephyr, " warm, hospitable Southern US drawl"},
		{Aoede, Zephyr, ""},
		{"clone-1234", Zephyr, ""},
		{"", Zephyr, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			m := Lookup(tt.name)
			if m.Base != tt.base {
				t.Errorf("expected base %s, got %s", tt.base, m.Base)
			}
			if m.Personality != tt.personality {
				t.Errorf("expected personality %q, got %q", tt.personality, m.Personality)
			}
		})
	}
}

func TestNamesAreUniqueAndValid(t *testing.T) {
	if len(Names) != 28 {
		t.Errorf("expected 28 voices, got %d", len(Names))
	}

	seen := make(map[Name]bool)
	for _, n := range Names {
		if seen[n] {
			t.Errorf("duplicate voice %s", n)
		}
		seen[n] = true
		if !Valid(n) {
			t.Errorf("voice %s should be valid", n)
		}
	}

	if Valid("Nobody") {
		t.Error("unknown voice should not be valid")
	}
}

func TestParse(t *testing.T) {
	if n, ok := Parse("orion"); !ok || n != Orion {
		t.Errorf("expected Orion, got %q (ok=%v)", n, ok)
	}
	if _, ok := Parse("nobody"); ok {
		t.Error("expected unknown voice to fail parsing")
	}
}

func TestCatalog(t *testing.T) {
	entries := Catalog()

	if len(entries) != len(Names) {
		t.Fatalf("expected %d entries, got %d", len(Names), len(entries))
	}

	for i := 1; i < len(entries); i++ {
		if entries[i-1].Name >= entries[i].Name {
			t.Errorf("catalog not sorted at %d: %s >= %s", i, entries[i-1].Name, entries[i].Name)
		}
	}

	for _, e := range entries {
		switch e.Name {
		case Kore:
			if e.Virtual {
				t.Error("Kore is a core profile, not virtual")
			}
		case Orion:
			if !e.Virtual || e.Base != Kore {
				t.Errorf("Orion should be virtual on Kore, got %+v", e)
			}
		}
	}
}
