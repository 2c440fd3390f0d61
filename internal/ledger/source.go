package ledger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Source owns the current snapshot and replaces it on refresh. Refreshes may
// overlap; the snapshot from the most recently started refresh wins, and a
// slower, older refresh finishing later is discarded.
type Source struct {
	loader    *Loader
	logger    *slog.Logger
	current   *Snapshot
	issued    atomic.Uint64
	installed uint64
	version   uint64
	mu        sync.RWMutex
}

// NewSource creates a source holding an empty snapshot.
func NewSource(loader *Loader) *Source {
	return &Source{
		loader:  loader,
		logger:  loader.logger,
		current: Empty(),
	}
}

// Current returns the installed snapshot. It is never nil.
func (s *Source) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Refresh fetches every collection and installs the result under a new
// version. Collections that failed to load keep their previous contents. If
// a refresh started later has already installed its snapshot, this one is
// dropped and the newer snapshot is returned.
func (s *Source) Refresh(ctx context.Context) (*Snapshot, error) {
	seq := s.issued.Add(1)

	snap, err := s.loader.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.installed {
		s.logger.Debug("Discarding superseded refresh",
			"request", seq,
			"installed", s.installed)
		return s.current, nil
	}

	for _, c := range snap.Failed {
		snap.carryOver(s.current, c)
	}
	s.version++
	snap.Version = s.version
	s.installed = seq
	s.current = snap

	s.logger.Debug("Installed ledger snapshot",
		"version", snap.Version,
		"transactions", len(snap.Transactions),
		"failed", len(snap.Failed))
	return snap, nil
}
