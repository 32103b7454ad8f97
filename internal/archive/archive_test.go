package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		out[f.Name] = content
	}
	return out
}

func TestWrite_EntriesAndManifest(t *testing.T) {
	db := writeTemp(t, "collection.anki2", []byte("db-bytes"))
	img := writeTemp(t, "berlin.jpg", []byte("jpeg-bytes"))
	snd := writeTemp(t, "capital.mp3", []byte("mp3-bytes"))

	var buf bytes.Buffer
	if err := Write(&buf, db, []string{img, snd}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries := readArchive(t, buf.Bytes())
	if string(entries[CollectionName]) != "db-bytes" {
		t.Errorf("collection entry = %q", entries[CollectionName])
	}
	if string(entries["0"]) != "jpeg-bytes" || string(entries["1"]) != "mp3-bytes" {
		t.Error("media entries not stored under sequential indexes")
	}

	var manifest map[string]string
	if err := json.Unmarshal(entries[ManifestName], &manifest); err != nil {
		t.Fatalf("manifest not valid JSON: %v", err)
	}
	if manifest["0"] != "berlin.jpg" || manifest["1"] != "capital.mp3" {
		t.Errorf("manifest = %v", manifest)
	}
}

func TestWrite_NoMedia(t *testing.T) {
	db := writeTemp(t, "collection.anki2", []byte("db"))

	var buf bytes.Buffer
	if err := Write(&buf, db, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries := readArchive(t, buf.Bytes())
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if string(entries[ManifestName]) != "{}" {
		t.Errorf("empty manifest = %q, want {}", entries[ManifestName])
	}
}

func TestWrite_MissingMediaFileFails(t *testing.T) {
	db := writeTemp(t, "collection.anki2", []byte("db"))

	var buf bytes.Buffer
	err := Write(&buf, db, []string{filepath.Join(t.TempDir(), "missing.png")})
	if err == nil {
		t.Fatal("expected error for missing media file")
	}
}
