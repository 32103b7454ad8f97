// Package deckspec parses declarative YAML deck descriptions into library
// objects. A spec file declares models, decks of notes referencing those
// models by name, and media files resolved relative to the spec file.
package deckspec

import (
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/raido"
)

// Spec is the top-level document of a deck-spec file.
type Spec struct {
	Models []ModelSpec `yaml:"models"`
	Decks  []DeckSpec  `yaml:"decks"`
	Media  []string    `yaml:"media"`
}

// ModelSpec declares one note model. Mode is "front_back" (the default) or
// "cloze".
type ModelSpec struct {
	ID        int64          `yaml:"id"`
	Name      string         `yaml:"name"`
	Mode      string         `yaml:"mode"`
	CSS       string         `yaml:"css"`
	SortField int            `yaml:"sort_field"`
	LatexPre  string         `yaml:"latex_pre"`
	LatexPost string         `yaml:"latex_post"`
	Fields    []FieldSpec    `yaml:"fields"`
	Templates []TemplateSpec `yaml:"templates"`
}

// FieldSpec declares one model field.
type FieldSpec struct {
	Name   string `yaml:"name"`
	Font   string `yaml:"font"`
	Size   int    `yaml:"size"`
	RTL    bool   `yaml:"rtl"`
	Sticky bool   `yaml:"sticky"`
}

// TemplateSpec declares one render template.
type TemplateSpec struct {
	Name            string `yaml:"name"`
	QuestionFormat  string `yaml:"qfmt"`
	AnswerFormat    string `yaml:"afmt"`
	BrowserQuestion string `yaml:"bqfmt"`
	BrowserAnswer   string `yaml:"bafmt"`
}

// DeckSpec declares one deck of notes.
type DeckSpec struct {
	ID          int64      `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Notes       []NoteSpec `yaml:"notes"`
}

// NoteSpec declares one note. Model references a ModelSpec by name.
type NoteSpec struct {
	Model  string   `yaml:"model"`
	Fields []string `yaml:"fields"`
	Tags   []string `yaml:"tags"`
	GUID   string   `yaml:"guid"`
}

// Validate checks the spec's declarative shape. Semantic rules (field
// counts, id uniqueness) are enforced by the library during Build.
func (s *Spec) Validate() error {
	if err := validation.ValidateStruct(s,
		validation.Field(&s.Models, validation.Required),
		validation.Field(&s.Decks, validation.Required),
	); err != nil {
		return err
	}
	for i, m := range s.Models {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("models[%d]: %w", i, err)
		}
	}
	for i, d := range s.Decks {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("decks[%d]: %w", i, err)
		}
	}
	return nil
}

// Validate validates one model declaration.
func (m ModelSpec) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.Required),
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.Mode, validation.In("", "front_back", "cloze")),
		validation.Field(&m.Fields, validation.Required),
		validation.Field(&m.Templates, validation.Required),
	)
}

// Validate validates one deck declaration.
func (d DeckSpec) Validate() error {
	if err := validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
		validation.Field(&d.Name, validation.Required),
	); err != nil {
		return err
	}
	for i, n := range d.Notes {
		if err := validation.ValidateStruct(&n,
			validation.Field(&n.Model, validation.Required),
			validation.Field(&n.Fields, validation.Required),
		); err != nil {
			return fmt.Errorf("notes[%d]: %w", i, err)
		}
	}
	return nil
}

// Load reads and validates a spec file, expanding ${ENV} references the
// same way the application config loader does.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deckspec: read %s: %w", path, err)
	}

	var s Spec
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &s); err != nil {
		return nil, fmt.Errorf("deckspec: parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("deckspec: validate %s: %w", path, err)
	}
	return &s, nil
}

// Build turns the spec into a package ready to write. Media paths are
// resolved relative to baseDir, normally the spec file's directory.
func (s *Spec) Build(baseDir string) (*raido.Package, error) {
	models := make(map[string]*raido.Model, len(s.Models))
	for _, ms := range s.Models {
		if _, ok := models[ms.Name]; ok {
			return nil, fmt.Errorf("deckspec: duplicate model name %q", ms.Name)
		}
		m, err := buildModel(ms)
		if err != nil {
			return nil, err
		}
		models[ms.Name] = m
	}

	pkg := raido.NewPackage()
	for _, ds := range s.Decks {
		deck := raido.NewDeck(ds.ID, ds.Name, ds.Description)
		for i, ns := range ds.Notes {
			m, ok := models[ns.Model]
			if !ok {
				return nil, fmt.Errorf("deckspec: deck %q note %d references unknown model %q",
					ds.Name, i, ns.Model)
			}
			var cfg *raido.NoteConfig
			if ns.GUID != "" || len(ns.Tags) > 0 {
				cfg = &raido.NoteConfig{GUID: ns.GUID, Tags: ns.Tags}
			}
			note, err := raido.NewNote(m, ns.Fields, cfg)
			if err != nil {
				return nil, fmt.Errorf("deckspec: deck %q note %d: %w", ds.Name, i, err)
			}
			deck.AddNote(note)
		}
		pkg.AddDeck(deck)
	}

	for _, mp := range s.Media {
		pkg.AddMedia(filepath.Join(baseDir, mp))
	}
	return pkg, nil
}

func buildModel(ms ModelSpec) (*raido.Model, error) {
	fields := make([]raido.Field, len(ms.Fields))
	for i, fs := range ms.Fields {
		fields[i] = raido.Field{
			Name:   fs.Name,
			Font:   fs.Font,
			Size:   fs.Size,
			RTL:    fs.RTL,
			Sticky: fs.Sticky,
		}
	}
	templates := make([]raido.Template, len(ms.Templates))
	for i, ts := range ms.Templates {
		templates[i] = raido.Template{
			Name:                  ts.Name,
			QuestionFormat:        ts.QuestionFormat,
			AnswerFormat:          ts.AnswerFormat,
			BrowserQuestionFormat: ts.BrowserQuestion,
			BrowserAnswerFormat:   ts.BrowserAnswer,
		}
	}

	mode := raido.ModeFrontBack
	if ms.Mode == "cloze" {
		mode = raido.ModeCloze
	}

	m, err := raido.NewModel(ms.ID, ms.Name, fields, templates, &raido.ModelConfig{
		CSS:            ms.CSS,
		Mode:           mode,
		LatexPreamble:  ms.LatexPre,
		LatexPostamble: ms.LatexPost,
		SortFieldIndex: ms.SortField,
	})
	if err != nil {
		return nil, fmt.Errorf("deckspec: model %q: %w", ms.Name, err)
	}
	return m, nil
}
