// Package schema writes the embedded collection database in the exact
// shape the importing application's importer expects. Table names, column
// order, and the JSON blob keys are all part of the wire format: every
// literal in this package is frozen.
package schema

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ddl is the importer's collection schema, verbatim. revlog and graves are
// created but stay empty in a freshly built package.
const ddl = `
CREATE TABLE col (
	id     integer PRIMARY KEY,
	crt    integer NOT NULL,
	mod    integer NOT NULL,
	scm    integer NOT NULL,
	ver    integer NOT NULL,
	dty    integer NOT NULL,
	usn    integer NOT NULL,
	ls     integer NOT NULL,
	conf   text NOT NULL,
	models text NOT NULL,
	decks  text NOT NULL,
	dconf  text NOT NULL,
	tags   text NOT NULL
);

CREATE TABLE notes (
	id    integer PRIMARY KEY,
	guid  text NOT NULL,
	mid   integer NOT NULL,
	mod   integer NOT NULL,
	usn   integer NOT NULL,
	tags  text NOT NULL,
	flds  text NOT NULL,
	sfld  integer NOT NULL,
	csum  integer NOT NULL,
	flags integer NOT NULL,
	data  text NOT NULL
);

CREATE TABLE cards (
	id     integer PRIMARY KEY,
	nid    integer NOT NULL,
	did    integer NOT NULL,
	ord    integer NOT NULL,
	mod    integer NOT NULL,
	usn    integer NOT NULL,
	type   integer NOT NULL,
	queue  integer NOT NULL,
	due    integer NOT NULL,
	ivl    integer NOT NULL,
	factor integer NOT NULL,
	reps   integer NOT NULL,
	lapses integer NOT NULL,
	left   integer NOT NULL,
	odue   integer NOT NULL,
	odid   integer NOT NULL,
	flags  integer NOT NULL,
	data   text NOT NULL
);

CREATE TABLE revlog (
	id      integer PRIMARY KEY,
	cid     integer NOT NULL,
	usn     integer NOT NULL,
	ease    integer NOT NULL,
	ivl     integer NOT NULL,
	lastIvl integer NOT NULL,
	factor  integer NOT NULL,
	time    integer NOT NULL,
	type    integer NOT NULL
);

CREATE TABLE graves (
	usn  integer NOT NULL,
	oid  integer NOT NULL,
	type integer NOT NULL
);

CREATE INDEX ix_notes_usn ON notes (usn);
CREATE INDEX ix_cards_usn ON cards (usn);
CREATE INDEX ix_revlog_usn ON revlog (usn);
CREATE INDEX ix_cards_nid ON cards (nid);
CREATE INDEX ix_cards_sched ON cards (did, queue, due);
CREATE INDEX ix_revlog_cid ON revlog (cid);
CREATE INDEX ix_notes_csum ON notes (csum);
`

// schemaVersion is the collection format version the importer understands.
const schemaVersion = 11

// Collection holds every row of one output database, fully computed by the
// caller. Models and Decks must arrive pre-sorted; writing performs no
// further ordering or validation.
type Collection struct {
	CreatedSec int64 // creation time, seconds
	ModMillis  int64 // global modification time, milliseconds
	Models     []ModelEntry
	Decks      []DeckEntry
	Notes      []NoteRow
	Cards      []CardRow
}

// NoteRow is one row of the notes table.
type NoteRow struct {
	ID        int64
	GUID      string
	ModelID   int64
	Mod       int64
	Tags      string
	Fields    string // field values joined by the unit separator
	SortField string
	Checksum  int64
}

// CardRow is one row of the cards table. The scheduling columns are not
// represented: a freshly built package contains only new cards, so they are
// all written as zero.
type CardRow struct {
	ID     int64
	NoteID int64
	DeckID int64
	Ord    int
	Mod    int64
}

// WriteFile creates path as a fresh collection database and writes every
// row of c into it inside a single transaction. path must name an empty or
// nonexistent file.
func WriteFile(path string, c *Collection) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("schema: open db: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("schema: apply ddl: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("schema: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := writeCol(tx, c); err != nil {
		return err
	}
	if err := writeNotes(tx, c.Notes); err != nil {
		return err
	}
	if err := writeCards(tx, c.Cards); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("schema: commit: %w", err)
	}
	return nil
}

// writeCol emits the single col row with all four JSON blobs.
func writeCol(tx *sql.Tx, c *Collection) error {
	modelsBlob, err := json.Marshal(modelsByID(c.Models))
	if err != nil {
		return fmt.Errorf("schema: marshal models blob: %w", err)
	}
	decksBlob, err := json.Marshal(decksByID(c.Decks, c.CreatedSec))
	if err != nil {
		return fmt.Errorf("schema: marshal decks blob: %w", err)
	}

	curModel := ""
	if len(c.Models) > 0 {
		curModel = c.Models[0].ID
	}

	_, err = tx.Exec(
		`INSERT INTO col VALUES (1, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?, ?, '{}')`,
		c.CreatedSec, c.ModMillis, c.ModMillis, schemaVersion,
		confBlob(curModel), string(modelsBlob), string(decksBlob), dconfBlob(),
	)
	if err != nil {
		return fmt.Errorf("schema: insert col: %w", err)
	}
	return nil
}

func writeNotes(tx *sql.Tx, notes []NoteRow) error {
	stmt, err := tx.Prepare(
		`INSERT INTO notes VALUES (?, ?, ?, ?, -1, ?, ?, ?, ?, 0, '')`)
	if err != nil {
		return fmt.Errorf("schema: prepare note insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range notes {
		if _, err := stmt.Exec(n.ID, n.GUID, n.ModelID, n.Mod, n.Tags, n.Fields, n.SortField, n.Checksum); err != nil {
			return fmt.Errorf("schema: insert note %d: %w", n.ID, err)
		}
	}
	return nil
}

func writeCards(tx *sql.Tx, cards []CardRow) error {
	stmt, err := tx.Prepare(
		`INSERT INTO cards VALUES (?, ?, ?, ?, ?, -1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, '')`)
	if err != nil {
		return fmt.Errorf("schema: prepare card insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cards {
		if _, err := stmt.Exec(c.ID, c.NoteID, c.DeckID, c.Ord, c.Mod); err != nil {
			return fmt.Errorf("schema: insert card %d: %w", c.ID, err)
		}
	}
	return nil
}
