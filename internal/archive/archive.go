// Package archive assembles the output container: a zip holding the
// collection database, one numbered entry per media file, and a JSON
// manifest mapping entry index to original file name.
package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// CollectionName is the archive entry holding the embedded database.
const CollectionName = "collection.anki2"

// ManifestName is the archive entry mapping media index to base name.
const ManifestName = "media"

// Write emits the full archive to w: the collection database read from
// dbPath, then each media file under its sequential index, then the
// manifest. Any failure aborts before the zip directory is finalized, so a
// partial stream never reads back as a valid archive.
func Write(w io.Writer, dbPath string, mediaPaths []string) error {
	zw := zip.NewWriter(w)

	if err := writeArchive(zw, dbPath, mediaPaths); err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: finalize: %w", err)
	}
	return nil
}

func writeArchive(zw *zip.Writer, dbPath string, mediaPaths []string) error {
	if err := copyEntry(zw, CollectionName, dbPath); err != nil {
		return err
	}

	manifest := make(map[string]string, len(mediaPaths))
	for i, p := range mediaPaths {
		name := strconv.Itoa(i)
		manifest[name] = filepath.Base(p)
		if err := copyEntry(zw, name, p); err != nil {
			return err
		}
	}

	data, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest: %w", err)
	}
	e, err := zw.Create(ManifestName)
	if err != nil {
		return fmt.Errorf("archive: create manifest entry: %w", err)
	}
	if _, err := e.Write(data); err != nil {
		return fmt.Errorf("archive: write manifest: %w", err)
	}
	return nil
}

// copyEntry streams the file at path into a new archive entry.
func copyEntry(zw *zip.Writer, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer f.Close()

	e, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("archive: create entry %s: %w", name, err)
	}
	if _, err := io.Copy(e, f); err != nil {
		return fmt.Errorf("archive: write entry %s: %w", name, err)
	}
	return nil
}
