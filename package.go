package raido

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/starford/raido/internal/archive"
	"github.com/starford/raido/internal/ident"
	"github.com/starford/raido/internal/schema"
)

// Package collects decks and media files for one output archive. It is
// transient: build it, write it once, discard it. A package must not be
// written concurrently with mutation of any deck, note, or model it
// references; the library provides no internal locking.
type Package struct {
	decks []*Deck
	media []string
}

// NewPackage creates a package over the given decks.
func NewPackage(decks ...*Deck) *Package {
	return &Package{decks: append([]*Deck(nil), decks...)}
}

// AddDeck appends a deck to the package.
func (p *Package) AddDeck(d *Deck) {
	p.decks = append(p.decks, d)
}

// AddMedia registers a media file by path. Templates and field values
// reference media by base name; the archive stores the bytes under a
// sequential index recorded in the manifest.
func (p *Package) AddMedia(path string) {
	p.media = append(p.media, path)
}

// WriteToFile assembles the package and writes the archive to path. The
// archive is staged next to the destination and renamed into place on
// success, so a failed build leaves no partial output behind.
func (p *Package) WriteToFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".raido-*")
	if err != nil {
		return fmt.Errorf("package: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := p.writeArchive(tmp, time.Now()); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("package: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("package: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("package: rename: %w", err)
	}
	success = true
	return nil
}

// WriteTo assembles the package and streams the archive to w. Unlike
// WriteToFile there is no atomic publish; on error the caller must discard
// whatever was written.
func (p *Package) WriteTo(w io.Writer) error {
	return p.writeArchive(w, time.Now())
}

// writeArchive builds the collection database in a scratch file and zips it
// together with the media entries. The scratch file is always removed.
func (p *Package) writeArchive(w io.Writer, now time.Time) error {
	col, err := p.collection(now)
	if err != nil {
		return err
	}

	scratch, err := os.CreateTemp("", "raido-collection-*")
	if err != nil {
		return fmt.Errorf("package: create scratch db: %w", err)
	}
	scratchName := scratch.Name()
	scratch.Close()
	defer os.Remove(scratchName)

	if err := schema.WriteFile(scratchName, col); err != nil {
		return err
	}
	return archive.Write(w, scratchName, p.media)
}

// collection walks every deck and note and computes all rows of the output
// database: one build timestamp, sequential note/card ids seeded from it,
// each model serialized exactly once, and models/decks emitted sorted by id
// so output order never depends on map iteration.
func (p *Package) collection(now time.Time) (*schema.Collection, error) {
	buildTS := now.Unix()
	nextID := now.UnixMilli()
	newID := func() int64 {
		id := nextID
		nextID++
		return id
	}

	col := &schema.Collection{
		CreatedSec: buildTS,
		ModMillis:  now.UnixMilli(),
	}

	deckNames := make(map[int64]string, len(p.decks))
	models := make(map[int64]*Model)
	firstDeck := make(map[int64]int64)
	var modelIDs []int64

	for _, d := range p.decks {
		if prev, ok := deckNames[d.ID]; ok {
			return nil, fmt.Errorf("package: decks %q and %q share id %d: %w",
				prev, d.Name, d.ID, ErrDuplicateID)
		}
		deckNames[d.ID] = d.Name
		col.Decks = append(col.Decks, schema.NewDeckEntry(d.ID, d.Name, d.Description, buildTS))

		for _, n := range d.notes {
			m := n.model
			if prev, ok := models[m.id]; ok {
				if prev != m {
					return nil, fmt.Errorf("package: models %q and %q share id %d: %w",
						prev.name, m.name, m.id, ErrDuplicateID)
				}
			} else {
				models[m.id] = m
				firstDeck[m.id] = d.ID
				modelIDs = append(modelIDs, m.id)
			}

			noteID := newID()
			col.Notes = append(col.Notes, schema.NoteRow{
				ID:        noteID,
				GUID:      n.guid,
				ModelID:   m.id,
				Mod:       buildTS,
				Tags:      formatTags(n.tags),
				Fields:    strings.Join(n.fields, fieldSep),
				SortField: n.fields[m.sortFieldIndex],
				Checksum:  int64(ident.FieldChecksum(n.fields[0])),
			})
			for _, c := range n.Cards() {
				col.Cards = append(col.Cards, schema.CardRow{
					ID:     newID(),
					NoteID: noteID,
					DeckID: d.ID,
					Ord:    c.Ord,
					Mod:    buildTS,
				})
			}
		}
	}

	sort.Slice(modelIDs, func(i, j int) bool { return modelIDs[i] < modelIDs[j] })
	for _, id := range modelIDs {
		col.Models = append(col.Models, models[id].dbEntry(buildTS, firstDeck[id]))
	}
	sort.Slice(col.Decks, func(i, j int) bool { return col.Decks[i].ID < col.Decks[j].ID })

	return col, nil
}

// formatTags renders tags in the space-delimited form the notes table
// stores.
func formatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " " + strings.Join(tags, " ") + " "
}
