package raido

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/starford/raido/internal/ident"
)

// fieldSep joins field values in the notes table. It is rejected inside
// field values so the join stays unambiguous.
const fieldSep = "\x1f"

// clozeRe matches {{cN::...}} markers. The prefix is case-insensitive and
// the hidden text may span lines.
var clozeRe = regexp.MustCompile(`(?is)\{\{c(\d+)::.+?\}\}`)

// NoteConfig holds the optional parameters of NewNote.
type NoteConfig struct {
	// GUID overrides the derived note identity. Leave empty to derive it
	// from the field values, which lets the importing application recognize
	// the same note across re-imports.
	GUID string
	Tags []string
}

// Note binds a Model to concrete field values. The note owns its values and
// tags and holds a non-owning reference to its model.
type Note struct {
	model  *Model
	fields []string
	guid   string
	tags   []string
}

// NewNote creates a note for model with one value per model field, in field
// order. cfg may be nil. Fails with ErrInvalidFieldCount on a length
// mismatch and ErrEncoding when a value is not valid UTF-8 or contains the
// reserved field separator.
func NewNote(model *Model, fieldValues []string, cfg *NoteConfig) (*Note, error) {
	if model == nil {
		return nil, fmt.Errorf("note: model is required")
	}
	if len(fieldValues) != len(model.fields) {
		return nil, fmt.Errorf("note for model %q: %d values for %d fields: %w",
			model.name, len(fieldValues), len(model.fields), ErrInvalidFieldCount)
	}
	for i, v := range fieldValues {
		if !utf8.ValidString(v) {
			return nil, fmt.Errorf("note field %d: invalid UTF-8: %w", i, ErrEncoding)
		}
		if strings.Contains(v, fieldSep) {
			return nil, fmt.Errorf("note field %d: contains reserved separator 0x1f: %w", i, ErrEncoding)
		}
	}

	n := &Note{
		model:  model,
		fields: append([]string(nil), fieldValues...),
	}
	if cfg != nil {
		n.guid = cfg.GUID
		for _, tag := range cfg.Tags {
			if strings.ContainsAny(tag, " \t\n") {
				return nil, fmt.Errorf("note tag %q: tags must not contain whitespace", tag)
			}
		}
		n.tags = append([]string(nil), cfg.Tags...)
	}
	if n.guid == "" {
		n.guid = ident.GUIDFor(n.fields)
	}
	return n, nil
}

// Model returns the model this note conforms to.
func (n *Note) Model() *Model { return n.model }

// GUID returns the note's identity: either the configured override or the
// value derived from the field values. Identical field values always yield
// the same derived GUID.
func (n *Note) GUID() string { return n.guid }

// FieldValues returns a copy of the note's field values in field order.
func (n *Note) FieldValues() []string {
	return append([]string(nil), n.fields...)
}

// Tags returns a copy of the note's tags.
func (n *Note) Tags() []string {
	return append([]string(nil), n.tags...)
}

// Cards expands the note into its review items. Front/back models yield
// exactly one card per template, in template order. Cloze models yield one
// card per distinct cloze index N found across all field values, with
// ordinal N-1; the result is sorted ascending so repeated calls produce the
// same set in the same order. A cloze note with no markers anywhere still
// yields a single card at ordinal 0.
func (n *Note) Cards() []Card {
	if n.model.mode == ModeCloze {
		return n.clozeCards()
	}
	cards := make([]Card, len(n.model.templates))
	for i := range cards {
		cards[i] = Card{note: n, Ord: i}
	}
	return cards
}

// clozeCards aggregates cloze indices across every field value, not just
// the field a given template happens to reference.
func (n *Note) clozeCards() []Card {
	seen := make(map[int]struct{})
	for _, v := range n.fields {
		for _, m := range clozeRe.FindAllStringSubmatch(v, -1) {
			idx, err := strconv.Atoi(m[1])
			if err != nil || idx < 1 {
				continue
			}
			seen[idx-1] = struct{}{}
		}
	}
	if len(seen) == 0 {
		seen[0] = struct{}{}
	}

	ords := make([]int, 0, len(seen))
	for o := range seen {
		ords = append(ords, o)
	}
	sort.Ints(ords)

	cards := make([]Card, len(ords))
	for i, o := range ords {
		cards[i] = Card{note: n, Ord: o}
	}
	return cards
}
