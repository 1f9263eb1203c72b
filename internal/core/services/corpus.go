package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driving"
	"github.com/custodia-labs/weldsafe/internal/logger"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// CleanedSuffix is appended to the base name of every prepared file.
const CleanedSuffix = "_clean.txt"

// CorpusService converts source documents into the plain-text corpus.
type CorpusService struct {
	registry driven.NormaliserRegistry
	clean    func(string) string
}

// NewCorpusService creates a corpus service. clean is applied to every
// extracted text before it is written.
func NewCorpusService(registry driven.NormaliserRegistry, clean func(string) string) *CorpusService {
	if clean == nil {
		clean = strings.TrimSpace
	}
	return &CorpusService{registry: registry, clean: clean}
}

// Prepare normalises every supported file under srcDir into
// <name>_clean.txt in dstDir. Unsupported, empty and clashing files are
// skipped; files that fail to normalise are recorded and the run goes
// on. A file that cannot be read aborts the run.
func (s *CorpusService) Prepare(ctx context.Context, srcDir, dstDir string) (*driving.PrepareReport, error) {
	logger.Section("Corpus Preparation")

	info, err := os.Stat(srcDir)
	if err != nil {
		return nil, domain.NewCorpusBuildError("read source", err)
	}
	if !info.IsDir() {
		return nil, domain.NewCorpusBuildError("read source",
			fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, srcDir))
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return nil, domain.NewCorpusBuildError("create output", err)
	}
	absDst, _ := filepath.Abs(dstDir)

	report := &driving.PrepareReport{
		Skipped: make(map[string]string),
		Failed:  make(map[string]string),
	}
	outputs := make(map[string]string)

	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if abs, _ := filepath.Abs(path); path != srcDir && (strings.HasPrefix(name, ".") || abs == absDst) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() {
			return nil
		}

		rel, _ := filepath.Rel(srcDir, path)
		mime := s.registry.MIMETypeFor(name)
		normaliser, ok := s.registry.Get(mime)
		if mime == "" || !ok {
			logger.Warn("Skipping %s: unsupported format", rel)
			report.Skipped[rel] = "unsupported format"
			return nil
		}

		outName := strings.TrimSuffix(name, filepath.Ext(name)) + CleanedSuffix
		if prev, clash := outputs[outName]; clash {
			logger.Warn("Skipping %s: %s already written from %s", rel, outName, prev)
			report.Skipped[rel] = "output " + outName + " already written from " + prev
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		res, err := normaliser.Normalise(ctx, &domain.RawDocument{Path: path, MIMEType: mime, Content: data})
		if err != nil {
			logger.Warn("Failed to normalise %s: %v", rel, err)
			report.Failed[rel] = err.Error()
			return nil
		}

		text := s.clean(res.Document.Content)
		if text == "" {
			logger.Warn("Skipping %s: no text", rel)
			report.Skipped[rel] = "no text"
			return nil
		}

		outPath := filepath.Join(dstDir, outName)
		if err := writeFileAtomic(outPath, []byte(text)); err != nil {
			return err
		}
		outputs[outName] = rel
		report.Written = append(report.Written, outPath)
		logger.Info("Prepared %s -> %s", rel, outName)
		return nil
	})
	if err != nil {
		return report, domain.NewCorpusBuildError("prepare", err)
	}
	return report, nil
}

// writeFileAtomic writes through a temp file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
