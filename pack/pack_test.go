package pack

import (
	"os"
	"path/filepath"
	"testing"
)

func writePacks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "packs.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write packs file: %v", err)
	}
	return path
}

func TestLoadValidPacks(t *testing.T) {
	path := writePacks(t, `
- name: duel
  planets:
    - name: Alpha
      cities:
        - name: Alpha Prime
    - name: Omega
      cities:
        - name: Omega Prime
        - name: Omega Minor
`)

	packs, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(packs) != 1 {
		t.Fatalf("expected 1 pack, got %d", len(packs))
	}
	if packs[0].Name != "duel" {
		t.Fatalf("expected pack duel, got %q", packs[0].Name)
	}
	if len(packs[0].Planets) != 2 {
		t.Fatalf("expected 2 planets, got %d", len(packs[0].Planets))
	}
	if len(packs[0].Planets[1].Cities) != 2 {
		t.Fatalf("expected 2 cities on Omega, got %d", len(packs[0].Planets[1].Cities))
	}
}

func TestLoadRejectsInvalidPacks(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "- planets:\n    - name: Alpha\n      cities:\n        - name: A\n    - name: Omega\n      cities:\n        - name: O\n"},
		{"single planet", "- name: solo\n  planets:\n    - name: Alpha\n      cities:\n        - name: A\n"},
		{"cityless planet", "- name: bad\n  planets:\n    - name: Alpha\n      cities: []\n    - name: Omega\n      cities:\n        - name: O\n"},
		{"not yaml", "{{{"},
	}
	for _, tt := range tests {
		path := writePacks(t, tt.content)
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestFind(t *testing.T) {
	packs := []Pack{{Name: "one"}, {Name: "two"}}

	if p, ok := Find(packs, "two"); !ok || p.Name != "two" {
		t.Fatalf("expected to find pack two, got %+v %v", p, ok)
	}
	if _, ok := Find(packs, "three"); ok {
		t.Fatal("expected pack three to be absent")
	}
}
