package kit

import (
	"testing"

	"github.com/james-see/drumscript/pkg/score"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		expected score.Patch
	}{
		{"kick", Kick},
		{"Snare", Snare},
		{"closed-hh", ClosedHH},
		{"hh", ClosedHH},
		{"open hh", OpenHH},
		{"ride", Ride1},
		{"36", BassDrum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.name, err)
			}
			if got != tt.expected {
				t.Errorf("Lookup(%q) = %d, want %d", tt.name, got, tt.expected)
			}
		})
	}
}

func TestLookupErrors(t *testing.T) {
	for _, name := range []string{"cymbal", "", "300"} {
		if _, err := Lookup(name); err == nil {
			t.Errorf("Lookup(%q) expected error", name)
		}
	}
}

func TestName(t *testing.T) {
	if got := Name(Snare); got != "snare" {
		t.Errorf("Name(Snare) = %q, want snare", got)
	}
	if got := Name(99); got != "99" {
		t.Errorf("Name(99) = %q, want 99", got)
	}
}

func TestEntries(t *testing.T) {
	entries := Entries()
	if len(entries) != 49 {
		t.Fatalf("Entries() returned %d entries, want 49", len(entries))
	}
	if entries[0].Name != "click" || entries[0].Patch != Click {
		t.Errorf("first entry = %+v, want click", entries[0])
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Patch <= entries[i-1].Patch {
			t.Errorf("entries not ordered at %d: %+v", i, entries[i])
		}
	}
}
