// Package corpus persists the chunk store and the vector index as one unit.
//
// A build writes two content-addressed artifacts, chunks-<sha12>.txt and
// vectors-<sha12>.bin, then commits them by renaming manifest.json into
// place. Readers only follow the manifest, so they never see a partial
// build. Files from older builds are removed after the commit.
package corpus

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/weldsafe/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/logger"
)

// Separator sits between chunks in the chunk store artifact.
const Separator = "\n\n-----\n\n"

// ManifestFile is the commit point of a build.
const ManifestFile = "manifest.json"

const (
	chunksPrefix  = "chunks-"
	vectorsPrefix = "vectors-"
	tempPrefix    = ".tmp-"
)

// Verify interface compliance.
var _ driven.CorpusStore = (*Store)(nil)

// Store keeps one corpus generation in a directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created on Save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// ManifestPath returns the manifest location.
func (s *Store) ManifestPath() string {
	return filepath.Join(s.dir, ManifestFile)
}

// Save writes the snapshot and commits it. Manifest fields describing the
// artifacts are filled in; the caller supplies model and chunking metadata.
func (s *Store) Save(ctx context.Context, snap *driven.Snapshot) (*domain.Manifest, error) {
	if snap == nil || snap.Index == nil {
		return nil, fmt.Errorf("%w: snapshot has no index", domain.ErrInvalidInput)
	}
	if snap.Index.Len() != len(snap.Chunks) {
		return nil, domain.NewRetrievalInconsistencyError(len(snap.Chunks), snap.Index.Len())
	}

	chunkData, err := encodeChunks(snap.Chunks)
	if err != nil {
		return nil, err
	}
	var vecBuf bytes.Buffer
	if _, err := snap.Index.WriteTo(&vecBuf); err != nil {
		return nil, fmt.Errorf("encode vectors: %w", err)
	}
	vectorData := vecBuf.Bytes()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	chunkSum, vecSum := checksum(chunkData), checksum(vectorData)
	m := snap.Manifest
	m.Version = domain.ManifestVersion
	m.ChunkCount = len(snap.Chunks)
	m.Dimensions = snap.Index.Dimensions()
	m.Documents = documentRuns(snap.Chunks)
	m.Chunks = domain.ArtifactRef{File: chunksPrefix + chunkSum[:12] + ".txt", SHA256: chunkSum}
	m.Vectors = domain.ArtifactRef{File: vectorsPrefix + vecSum[:12] + ".bin", SHA256: vecSum}
	m.BuildID = checksum([]byte(chunkSum + vecSum))[:16]

	manifestData, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	manifestData = append(manifestData, '\n')

	for _, a := range []struct {
		name string
		data []byte
	}{
		{m.Chunks.File, chunkData},
		{m.Vectors.File, vectorData},
	} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writeAtomic(s.dir, a.name, a.data); err != nil {
			return nil, err
		}
	}

	if err := writeAtomic(s.dir, ManifestFile, manifestData); err != nil {
		return nil, err
	}
	syncDir(s.dir)

	s.removeStale(m)
	logger.Info("Index %s committed: %d chunks, %d dimensions", m.BuildID, m.ChunkCount, m.Dimensions)
	return &m, nil
}

// Manifest reads the committed manifest.
func (s *Store) Manifest(_ context.Context) (*domain.Manifest, error) {
	data, err := os.ReadFile(s.ManifestPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NewIndexLoadError("read manifest", domain.ErrIndexNotBuilt)
	}
	if err != nil {
		return nil, domain.NewIndexLoadError("read manifest", err)
	}

	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, domain.NewIndexLoadError("decode manifest", err)
	}
	if m.Version != domain.ManifestVersion {
		return nil, domain.NewIndexLoadError("check manifest",
			fmt.Errorf("unsupported manifest version %d", m.Version))
	}
	return &m, nil
}

// Load reads and verifies the committed corpus. Every failure is an IndexLoadError.
func (s *Store) Load(ctx context.Context) (*driven.Snapshot, error) {
	m, err := s.Manifest(ctx)
	if err != nil {
		return nil, err
	}

	chunkData, err := s.readArtifact(m.Chunks)
	if err != nil {
		return nil, domain.NewIndexLoadError("read chunks", err)
	}
	vectorData, err := s.readArtifact(m.Vectors)
	if err != nil {
		return nil, domain.NewIndexLoadError("read vectors", err)
	}

	idx, err := flat.Read(bytes.NewReader(vectorData))
	if err != nil {
		return nil, domain.NewIndexLoadError("decode vectors", err)
	}
	chunks, err := decodeChunks(chunkData, m.ChunkCount, m.Documents)
	if err != nil {
		return nil, domain.NewIndexLoadError("decode chunks", err)
	}

	if len(chunks) != idx.Len() || len(chunks) != m.ChunkCount {
		return nil, domain.NewIndexLoadError("check counts",
			fmt.Errorf("%d chunks, %d vectors, manifest says %d", len(chunks), idx.Len(), m.ChunkCount))
	}
	if idx.Dimensions() != m.Dimensions {
		return nil, domain.NewIndexLoadError("check dimensions",
			fmt.Errorf("vectors have %d dimensions, manifest says %d", idx.Dimensions(), m.Dimensions))
	}

	logger.Debug("Loaded index %s: %d chunks", m.BuildID, m.ChunkCount)
	return &driven.Snapshot{Manifest: *m, Chunks: chunks, Index: idx}, nil
}

func (s *Store) readArtifact(ref domain.ArtifactRef) ([]byte, error) {
	if ref.File == "" || filepath.Base(ref.File) != ref.File {
		return nil, fmt.Errorf("invalid artifact name %q", ref.File)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, ref.File))
	if err != nil {
		return nil, err
	}
	if sum := checksum(data); sum != ref.SHA256 {
		return nil, fmt.Errorf("%s checksum mismatch: got %s", ref.File, sum[:12])
	}
	return data, nil
}

// removeStale deletes artifacts of older builds and abandoned temp files.
func (s *Store) removeStale(keep domain.Manifest) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		logger.Warn("List index directory: %v", err)
		return
	}
	for _, e := range entries {
		name := e.Name()
		stale := strings.HasPrefix(name, tempPrefix) ||
			(strings.HasPrefix(name, chunksPrefix) && name != keep.Chunks.File) ||
			(strings.HasPrefix(name, vectorsPrefix) && name != keep.Vectors.File)
		if !stale {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			logger.Warn("Remove stale artifact %s: %v", name, err)
		}
	}
}

func encodeChunks(chunks []domain.Chunk) ([]byte, error) {
	var b bytes.Buffer
	for i, c := range chunks {
		if strings.Contains(c.Content, Separator) {
			return nil, fmt.Errorf("%w: chunk %d contains the chunk separator", domain.ErrInvalidInput, i)
		}
		if i > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(c.Content)
	}
	return b.Bytes(), nil
}

// documentRuns groups consecutive chunks by source document.
func documentRuns(chunks []domain.Chunk) []domain.DocumentRef {
	var refs []domain.DocumentRef
	for _, c := range chunks {
		if n := len(refs); n > 0 && refs[n-1].Name == c.Source {
			refs[n-1].Chunks++
			continue
		}
		refs = append(refs, domain.DocumentRef{Name: c.Source, Chunks: 1})
	}
	return refs
}

// decodeChunks splits the chunk store and restores chunk sources from the
// manifest's document runs.
func decodeChunks(data []byte, count int, documents []domain.DocumentRef) ([]domain.Chunk, error) {
	if count == 0 && len(data) == 0 {
		return nil, nil
	}
	parts := strings.Split(string(data), Separator)

	total := 0
	for _, d := range documents {
		total += d.Chunks
	}
	if total != len(parts) {
		return nil, fmt.Errorf("documents cover %d chunks, store has %d", total, len(parts))
	}

	chunks := make([]domain.Chunk, 0, len(parts))
	for _, d := range documents {
		for range d.Chunks {
			i := len(chunks)
			chunks = append(chunks, domain.Chunk{Position: i, Source: d.Name, Content: parts[i]})
		}
	}
	return chunks, nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeAtomic writes data to dir/name through a synced temp file and rename.
func writeAtomic(dir, name string, data []byte) error {
	f, err := os.CreateTemp(dir, tempPrefix+name+"-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmp, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// syncDir flushes directory entries so the renames survive a crash.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
