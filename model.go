package raido

import (
	"fmt"
	"strconv"

	"github.com/starford/raido/internal/schema"
)

// Mode selects how a model's notes expand into cards.
type Mode int

const (
	// ModeFrontBack produces one card per template, regardless of field
	// content.
	ModeFrontBack Mode = iota
	// ModeCloze produces one card per distinct cloze index found anywhere
	// in a note's field values.
	ModeCloze
)

// LaTeX wrapping the importing application applies around [latex] blocks
// when no custom preamble/postamble is configured.
const (
	DefaultLatexPreamble = `
\documentclass[12pt]{article}
\special{papersize=3in,5in}
\usepackage[utf8]{inputenc}
\usepackage{amssymb,amsmath}
\pagestyle{empty}
\setlength{\parindent}{0in}
\begin{document}

`
	DefaultLatexPostamble = `\end{document}`
)

// ModelConfig holds the optional parameters of NewModel. The zero value of
// each field selects the documented default.
type ModelConfig struct {
	CSS            string
	Mode           Mode   // default ModeFrontBack
	LatexPreamble  string // default DefaultLatexPreamble
	LatexPostamble string // default DefaultLatexPostamble
	SortFieldIndex int    // default 0; must index into the field list
}

// Model is the schema for a family of notes: its ordered fields and the
// templates that render them into cards. Models may be shared by many notes
// and decks; they are read-only after construction, so sharing needs no
// synchronization.
type Model struct {
	id             int64
	name           string
	fields         []Field
	templates      []Template
	css            string
	mode           Mode
	latexPre       string
	latexPost      string
	sortFieldIndex int
}

// NewModel creates a model. The id must be unique across every package the
// receiving application will ever import; collisions there silently merge
// unrelated note families. cfg may be nil for all defaults.
func NewModel(id int64, name string, fields []Field, templates []Template, cfg *ModelConfig) (*Model, error) {
	if cfg == nil {
		cfg = &ModelConfig{}
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("model %q: %w", name, ErrEmptyTemplateSet)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("model %q: at least one field is required", name)
	}
	if cfg.SortFieldIndex < 0 || cfg.SortFieldIndex >= len(fields) {
		return nil, fmt.Errorf("model %q: sort field index %d out of range for %d fields",
			name, cfg.SortFieldIndex, len(fields))
	}

	latexPre := cfg.LatexPreamble
	if latexPre == "" {
		latexPre = DefaultLatexPreamble
	}
	latexPost := cfg.LatexPostamble
	if latexPost == "" {
		latexPost = DefaultLatexPostamble
	}

	m := &Model{
		id:             id,
		name:           name,
		fields:         append([]Field(nil), fields...),
		templates:      append([]Template(nil), templates...),
		css:            cfg.CSS,
		mode:           cfg.Mode,
		latexPre:       latexPre,
		latexPost:      latexPost,
		sortFieldIndex: cfg.SortFieldIndex,
	}
	return m, nil
}

// ID returns the caller-supplied model id.
func (m *Model) ID() int64 { return m.id }

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Mode returns the model's card expansion mode.
func (m *Model) Mode() Mode { return m.mode }

// Requirement reports, for one template, which field indices must be
// non-empty for the template to produce a sensible card. The importing
// application uses this to suppress empty cards.
type Requirement struct {
	TemplateOrd int
	Kind        string
	FieldOrds   []int
}

// Requirements returns one entry per template, in template order. The
// policy is deliberately conservative: every template is kind "all" and
// requires every field. A template that uses only a subset of fields is
// still reported as requiring all of them, which can under-suppress blank
// cards but never wrongly suppresses a real one. The output is part of the
// collection format; keep it stable.
func (m *Model) Requirements() []Requirement {
	all := make([]int, len(m.fields))
	for i := range all {
		all[i] = i
	}
	reqs := make([]Requirement, len(m.templates))
	for i := range m.templates {
		reqs[i] = Requirement{TemplateOrd: i, Kind: "all", FieldOrds: all}
	}
	return reqs
}

// dbEntry renders the model into its collection blob form, assigning field
// and template ordinals by position. Ordinals are recomputed here rather
// than stored, so serializing the same model twice yields identical output.
// deckID is the id of the first deck that references the model.
func (m *Model) dbEntry(mod int64, deckID int64) schema.ModelEntry {
	flds := make([]schema.FieldEntry, len(m.fields))
	for i, f := range m.fields {
		font := f.Font
		if font == "" {
			font = defaultFieldFont
		}
		size := f.Size
		if size == 0 {
			size = defaultFieldSize
		}
		flds[i] = schema.FieldEntry{
			Name:   f.Name,
			Ord:    i,
			Font:   font,
			Media:  []string{},
			RTL:    f.RTL,
			Size:   size,
			Sticky: f.Sticky,
		}
	}

	tmpls := make([]schema.TemplateEntry, len(m.templates))
	for i, t := range m.templates {
		tmpls[i] = schema.TemplateEntry{
			Name:  t.Name,
			Ord:   i,
			QFmt:  t.QuestionFormat,
			AFmt:  t.AnswerFormat,
			BQFmt: t.BrowserQuestionFormat,
			BAFmt: t.BrowserAnswerFormat,
		}
	}

	reqs := make([]schema.Requirement, 0, len(m.templates))
	for _, r := range m.Requirements() {
		reqs = append(reqs, schema.Requirement{
			TemplateOrd: r.TemplateOrd,
			Kind:        r.Kind,
			FieldOrds:   r.FieldOrds,
		})
	}

	modelType := 0
	if m.mode == ModeCloze {
		modelType = 1
	}

	return schema.ModelEntry{
		ID:        strconv.FormatInt(m.id, 10),
		Name:      m.name,
		Fields:    flds,
		Templates: tmpls,
		CSS:       m.css,
		DeckID:    deckID,
		LatexPre:  m.latexPre,
		LatexPost: m.latexPost,
		Mod:       mod,
		Req:       reqs,
		SortField: m.sortFieldIndex,
		Tags:      []string{},
		Type:      modelType,
		USN:       -1,
		Vers:      []string{},
	}
}
