package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"buckgen/internal/apply"
	"buckgen/internal/types"
)

// Sync brings rule files up to date with the current resolved graph.
// The previous snapshot narrows the work to added, changed and removed
// packages; without one, sync degrades to a full migration pass.
func (s Service) Sync(ctx context.Context, req SyncRequest) (SyncResult, error) {
	p, err := s.buildPipeline(ctx, req.Config, req.Separate, req.NoMerge)
	if err != nil {
		return SyncResult{}, err
	}

	snapPath := filepath.Join(p.projectRoot, apply.SnapshotFileName)
	var previous apply.Snapshot
	if _, statErr := os.Stat(snapPath); statErr == nil {
		previous, err = apply.LoadSnapshot(snapPath)
		if err != nil {
			return SyncResult{}, err
		}
	} else {
		log.Ctx(ctx).Warn().
			Str("path", snapPath).
			Msg("no snapshot found, syncing the whole graph")
	}

	current := apply.NewSnapshot(p.translator.Nodes, p.graph.WorkspaceRoot)
	changes := apply.Diff(previous, current)
	if len(changes) == 0 {
		log.Ctx(ctx).Info().Msg("everything up to date")
		return SyncResult{}, nil
	}

	if err := p.applier.Apply(ctx, changes); err != nil {
		return SyncResult{}, err
	}
	if err := p.applier.FlushRoot(ctx); err != nil {
		return SyncResult{}, err
	}
	if err := current.Save(snapPath); err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{}
	for _, change := range changes {
		switch change {
		case types.ChangeAdded:
			result.Added++
		case types.ChangeChanged:
			result.Changed++
		case types.ChangeRemoved:
			result.Removed++
		}
	}
	log.Ctx(ctx).Info().
		Int("added", result.Added).
		Int("changed", result.Changed).
		Int("removed", result.Removed).
		Msg("sync complete")
	return result, nil
}
