package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
	"github.com/custodia-labs/weldsafe/internal/logger"
)

// SnapshotHolder serves one loaded corpus at a time. Readers get a
// consistent snapshot; a reload swaps the whole snapshot at once.
type SnapshotHolder struct {
	current atomic.Pointer[driven.Snapshot]
}

// NewSnapshotHolder creates a holder serving snap. snap may be nil.
func NewSnapshotHolder(snap *driven.Snapshot) *SnapshotHolder {
	h := &SnapshotHolder{}
	if snap != nil {
		h.current.Store(snap)
	}
	return h
}

// Current returns the snapshot being served, or nil.
func (h *SnapshotHolder) Current() *driven.Snapshot {
	return h.current.Load()
}

// Swap replaces the served snapshot.
func (h *SnapshotHolder) Swap(snap *driven.Snapshot) {
	h.current.Store(snap)
}

// Manifest returns the manifest of the served snapshot.
func (h *SnapshotHolder) Manifest() domain.Manifest {
	if s := h.current.Load(); s != nil {
		return s.Manifest
	}
	return domain.Manifest{}
}

// Reload loads the persisted corpus and swaps it in if it matches the
// query embedder. It reports whether the served build changed. On
// failure the current snapshot keeps being served.
func (h *SnapshotHolder) Reload(ctx context.Context, store driven.CorpusStore, embedder driven.EmbeddingService) (bool, error) {
	snap, err := store.Load(ctx)
	if err == nil {
		err = CheckCompatible(snap, embedder)
	}
	if err != nil {
		logger.Warn("Index reload failed, keeping build %s: %v", h.Manifest().BuildID, err)
		return false, err
	}
	previous := h.Manifest().BuildID
	if snap.Manifest.BuildID == previous {
		logger.Debug("Index %s unchanged", previous)
		return false, nil
	}
	h.Swap(snap)
	logger.Info("Serving index %s (%d chunks), replaced %s", snap.Manifest.BuildID, snap.Manifest.ChunkCount, previous)
	return true, nil
}

// CheckCompatible verifies that the snapshot was built with the embedding
// model that will embed queries.
func CheckCompatible(snap *driven.Snapshot, embedder driven.EmbeddingService) error {
	if snap == nil || snap.Index == nil || snap.Index.Len() == 0 {
		return nil
	}
	m := snap.Manifest
	if m.EmbeddingModel != "" && m.EmbeddingModel != embedder.ModelName() {
		return domain.NewIndexLoadError("check embedding model",
			fmt.Errorf("index was built with %s, queries use %s; rebuild the index", m.EmbeddingModel, embedder.ModelName()))
	}
	if d := embedder.Dimensions(); d > 0 && d != snap.Index.Dimensions() {
		return domain.NewIndexLoadError("check dimensions",
			fmt.Errorf("index has %d dimensions, embedder produces %d", snap.Index.Dimensions(), d))
	}
	return nil
}
