package app

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/raido/internal/deckspec"
)

// BuildFile builds one deck-spec file into outputDir and returns the path
// of the written package. The package takes the spec file's base name with
// an .apkg extension.
func BuildFile(specPath, outputDir string) (string, error) {
	s, err := deckspec.Load(specPath)
	if err != nil {
		return "", err
	}
	pkg, err := s.Build(filepath.Dir(specPath))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	base := filepath.Base(specPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".apkg"
	out := filepath.Join(outputDir, name)
	if err := pkg.WriteToFile(out); err != nil {
		return "", err
	}
	return out, nil
}

// isSpecFile reports whether a path looks like a deck-spec file.
func isSpecFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}

// BuildDir builds every spec file under dir. A failing spec is logged and
// skipped so one bad file does not block the rest; the first walk error is
// returned.
func BuildDir(dir, outputDir string, logger *slog.Logger) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSpecFile(path) {
			return nil
		}
		out, buildErr := BuildFile(path, outputDir)
		if buildErr != nil {
			logger.Warn("build failed",
				slog.String("spec", path),
				slog.String("error", buildErr.Error()))
			return nil
		}
		logger.Info("package built",
			slog.String("spec", path),
			slog.String("output", out))
		return nil
	})
}
