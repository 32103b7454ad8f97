package raido

import (
	"archive/zip"
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/archive"
)

// extractCollection pulls the embedded database out of the archive at
// apkgPath and returns an open handle to it.
func extractCollection(t *testing.T, apkgPath string) *sql.DB {
	t.Helper()
	zr, err := zip.OpenReader(apkgPath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()

	var dbBytes []byte
	for _, f := range zr.File {
		if f.Name != archive.CollectionName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open collection entry: %v", err)
		}
		dbBytes, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read collection entry: %v", err)
		}
	}
	if dbBytes == nil {
		t.Fatalf("archive has no %s entry", archive.CollectionName)
	}

	dbPath := filepath.Join(t.TempDir(), "extracted.anki2")
	if err := os.WriteFile(dbPath, dbBytes, 0o644); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open extracted db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestWriteToFile_RoundTrip(t *testing.T) {
	m, err := NewModel(1607392319, "Minimal",
		[]Field{NewField("Front")},
		[]Template{NewTemplate("Card 1", "{{Front}}", "{{Front}}")},
		nil)
	if err != nil {
		t.Fatal(err)
	}
	n, err := NewNote(m, []string{"hello"}, &NoteConfig{Tags: []string{"smoke"}})
	if err != nil {
		t.Fatal(err)
	}
	deck := NewDeck(2059400110, "Round Trip", "one note, one card")
	deck.AddNote(n)

	out := filepath.Join(t.TempDir(), "roundtrip.apkg")
	if err := NewPackage(deck).WriteToFile(out); err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}

	db := extractCollection(t, out)

	var noteCount, cardCount int
	if err := db.QueryRow(`SELECT count(*) FROM notes`).Scan(&noteCount); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow(`SELECT count(*) FROM cards`).Scan(&cardCount); err != nil {
		t.Fatal(err)
	}
	if noteCount != 1 || cardCount != 1 {
		t.Fatalf("notes=%d cards=%d, want 1 and 1", noteCount, cardCount)
	}

	var guid, tags, sfld string
	var mid, csum int64
	if err := db.QueryRow(`SELECT guid, mid, tags, sfld, csum FROM notes`).
		Scan(&guid, &mid, &tags, &sfld, &csum); err != nil {
		t.Fatal(err)
	}
	if guid != n.GUID() {
		t.Errorf("guid = %q, want %q", guid, n.GUID())
	}
	if mid != 1607392319 {
		t.Errorf("mid = %d, want the model id", mid)
	}
	if tags != " smoke " {
		t.Errorf("tags = %q, want %q", tags, " smoke ")
	}
	if sfld != "hello" {
		t.Errorf("sfld = %q, want sort field text", sfld)
	}
	if csum == 0 {
		t.Error("csum not populated")
	}

	var nid, did int64
	var ord int
	if err := db.QueryRow(`SELECT nid, did, ord FROM cards`).Scan(&nid, &did, &ord); err != nil {
		t.Fatal(err)
	}
	if did != 2059400110 {
		t.Errorf("card deck id = %d, want the deck's id", did)
	}
	if ord != 0 {
		t.Errorf("card ord = %d, want 0", ord)
	}

	var noteID int64
	if err := db.QueryRow(`SELECT id FROM notes`).Scan(&noteID); err != nil {
		t.Fatal(err)
	}
	if nid != noteID {
		t.Errorf("card nid = %d, note id = %d", nid, noteID)
	}

	var models string
	if err := db.QueryRow(`SELECT models FROM col`).Scan(&models); err != nil {
		t.Fatal(err)
	}
	var blob map[string]json.RawMessage
	if err := json.Unmarshal([]byte(models), &blob); err != nil {
		t.Fatalf("models blob: %v", err)
	}
	if _, ok := blob["1607392319"]; !ok {
		t.Error("models blob not keyed by model id string")
	}
}

func TestWriteToFile_DuplicateDeckID(t *testing.T) {
	m := basicModel(t)
	n1, _ := NewNote(m, []string{"q1", "a1"}, nil)
	n2, _ := NewNote(m, []string{"q2", "a2"}, nil)
	d1 := NewDeck(77, "first", "")
	d1.AddNote(n1)
	d2 := NewDeck(77, "second", "")
	d2.AddNote(n2)

	out := filepath.Join(t.TempDir(), "dup.apkg")
	err := NewPackage(d1, d2).WriteToFile(out)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("failed build left an archive behind")
	}
	// No stray staging files either.
	entries, _ := os.ReadDir(filepath.Dir(out))
	if len(entries) != 0 {
		t.Errorf("staging leftovers: %v", entries)
	}
}

func TestWriteToFile_DuplicateModelID(t *testing.T) {
	tmpl := []Template{NewTemplate("c", "{{F}}", "{{F}}")}
	ma, _ := NewModel(500, "model-a", []Field{NewField("F")}, tmpl, nil)
	mb, _ := NewModel(500, "model-b", []Field{NewField("F")}, tmpl, nil)
	na, _ := NewNote(ma, []string{"x"}, nil)
	nb, _ := NewNote(mb, []string{"y"}, nil)
	d := NewDeck(1234, "deck", "")
	d.AddNote(na)
	d.AddNote(nb)

	err := NewPackage(d).WriteToFile(filepath.Join(t.TempDir(), "dup-model.apkg"))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
}

func TestWriteToFile_SharedModelSerializedOnce(t *testing.T) {
	m := basicModel(t)
	n1, _ := NewNote(m, []string{"q1", "a1"}, nil)
	n2, _ := NewNote(m, []string{"q2", "a2"}, nil)
	d1 := NewDeck(10, "one", "")
	d1.AddNote(n1)
	d2 := NewDeck(20, "two", "")
	d2.AddNote(n2)

	out := filepath.Join(t.TempDir(), "shared.apkg")
	if err := NewPackage(d1, d2).WriteToFile(out); err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}

	db := extractCollection(t, out)
	var models string
	if err := db.QueryRow(`SELECT models FROM col`).Scan(&models); err != nil {
		t.Fatal(err)
	}
	var blob map[string]json.RawMessage
	if err := json.Unmarshal([]byte(models), &blob); err != nil {
		t.Fatal(err)
	}
	if len(blob) != 1 {
		t.Errorf("models blob has %d entries, want the shared model once", len(blob))
	}

	var cardCount int
	if err := db.QueryRow(`SELECT count(*) FROM cards`).Scan(&cardCount); err != nil {
		t.Fatal(err)
	}
	if cardCount != 2 {
		t.Errorf("cards = %d, want 2", cardCount)
	}
}

func TestWriteTo_StreamsArchive(t *testing.T) {
	m := basicModel(t)
	n, _ := NewNote(m, []string{"q", "a"}, nil)
	d := NewDeck(42, "stream", "")
	d.AddNote(n)

	var buf bytes.Buffer
	if err := NewPackage(d).WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("stream is not a valid archive: %v", err)
	}
	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names[archive.CollectionName] || !names[archive.ManifestName] {
		t.Errorf("archive entries = %v", names)
	}
}

func TestWriteToFile_MediaIndexedWithManifest(t *testing.T) {
	mediaDir := t.TempDir()
	img := filepath.Join(mediaDir, "berlin.jpg")
	if err := os.WriteFile(img, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := basicModel(t)
	n, _ := NewNote(m, []string{`<img src="berlin.jpg">`, "a"}, nil)
	d := NewDeck(9, "media", "")
	d.AddNote(n)

	pkg := NewPackage(d)
	pkg.AddMedia(img)

	out := filepath.Join(t.TempDir(), "media.apkg")
	if err := pkg.WriteToFile(out); err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	var manifest map[string]string
	found := false
	for _, f := range zr.File {
		if f.Name != archive.ManifestName {
			continue
		}
		rc, _ := f.Open()
		if err := json.NewDecoder(rc).Decode(&manifest); err != nil {
			t.Fatalf("manifest: %v", err)
		}
		rc.Close()
		found = true
	}
	if !found {
		t.Fatal("no manifest entry")
	}
	if manifest["0"] != "berlin.jpg" {
		t.Errorf("manifest = %v", manifest)
	}
}
