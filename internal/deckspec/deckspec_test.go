package deckspec

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/raido"
)

const validSpec = `
models:
  - id: 1607392319
    name: Basic
    fields:
      - name: Question
      - name: Answer
    templates:
      - name: Card 1
        qfmt: "{{Question}}"
        afmt: "{{FrontSide}}<hr id=\"answer\">{{Answer}}"
decks:
  - id: 2059400110
    name: Country Capitals
    description: capitals of the world
    notes:
      - model: Basic
        fields: ["Capital of Germany?", "Berlin"]
        tags: [geography]
`

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	s, err := Load(writeSpec(t, validSpec))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Models) != 1 || len(s.Decks) != 1 {
		t.Fatalf("models=%d decks=%d", len(s.Models), len(s.Decks))
	}
	if s.Decks[0].Notes[0].Tags[0] != "geography" {
		t.Errorf("tags = %v", s.Decks[0].Notes[0].Tags)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("DECK_NAME", "From Env")
	spec := strings.Replace(validSpec, "Country Capitals", "${DECK_NAME}", 1)
	s, err := Load(writeSpec(t, spec))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Decks[0].Name != "From Env" {
		t.Errorf("deck name = %q", s.Decks[0].Name)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		spec string
	}{
		{"no models", "decks:\n  - id: 1\n    name: d\n"},
		{"no decks", "models:\n  - id: 1\n    name: m\n    fields: [{name: F}]\n    templates: [{name: t}]\n"},
		{"model without id", strings.Replace(validSpec, "id: 1607392319", "id: 0", 1)},
		{"bad mode", strings.Replace(validSpec, "name: Basic", "name: Basic\n    mode: sideways", 1)},
		{"note without model", strings.Replace(validSpec, "model: Basic", "model: \"\"", 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeSpec(t, tc.spec)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestBuild_ProducesPackage(t *testing.T) {
	s, err := Load(writeSpec(t, validSpec))
	if err != nil {
		t.Fatal(err)
	}
	pkg, err := s.Build(t.TempDir())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.apkg")
	if err := pkg.WriteToFile(out); err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Errorf("no archive written: %v", err)
	}
}

func TestBuild_UnknownModelReference(t *testing.T) {
	spec := strings.Replace(validSpec, "model: Basic", "model: Missing", 1)
	s, err := Load(writeSpec(t, spec))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Build(t.TempDir()); err == nil || !strings.Contains(err.Error(), "unknown model") {
		t.Errorf("err = %v, want unknown model reference", err)
	}
}

func TestBuild_FieldCountMismatchSurfaces(t *testing.T) {
	spec := strings.Replace(validSpec,
		`fields: ["Capital of Germany?", "Berlin"]`,
		`fields: ["only one"]`, 1)
	s, err := Load(writeSpec(t, spec))
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Build(t.TempDir())
	if !errors.Is(err, raido.ErrInvalidFieldCount) {
		t.Errorf("err = %v, want ErrInvalidFieldCount", err)
	}
}

func TestBuild_ClozeMode(t *testing.T) {
	spec := `
models:
  - id: 998877661
    name: Cloze
    mode: cloze
    fields:
      - name: Text
    templates:
      - name: Cloze Card
        qfmt: "{{cloze:Text}}"
        afmt: "{{cloze:Text}}"
decks:
  - id: 55
    name: Cloze Deck
    notes:
      - model: Cloze
        fields: ["{{c1::Berlin}} is the capital of {{c2::Germany}}"]
`
	s, err := Load(writeSpec(t, spec))
	if err != nil {
		t.Fatal(err)
	}
	pkg, err := s.Build(t.TempDir())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := pkg.WriteToFile(filepath.Join(t.TempDir(), "cloze.apkg")); err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}
}
