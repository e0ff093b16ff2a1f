package app

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"buckgen/internal/apply"
	"buckgen/internal/types"
)

// Migrate translates the whole resolved graph from scratch: every
// package is treated as newly added, rule files are (re)generated, and
// a fresh snapshot is persisted for later incremental syncs.
func (s Service) Migrate(ctx context.Context, req MigrateRequest) (MigrateResult, error) {
	p, err := s.buildPipeline(ctx, req.Config, req.Separate, req.NoMerge)
	if err != nil {
		return MigrateResult{}, err
	}

	changes := types.ChangeSet{}
	for id := range p.translator.Nodes {
		changes[id] = types.ChangeAdded
	}

	if err := p.applier.Apply(ctx, changes); err != nil {
		return MigrateResult{}, err
	}
	if err := p.applier.FlushRoot(ctx); err != nil {
		return MigrateResult{}, err
	}

	snap := apply.NewSnapshot(p.translator.Nodes, p.graph.WorkspaceRoot)
	if err := snap.Save(filepath.Join(p.projectRoot, apply.SnapshotFileName)); err != nil {
		return MigrateResult{}, err
	}

	log.Ctx(ctx).Info().
		Int("packages", len(changes)).
		Msg("migration complete")
	return MigrateResult{PackageCount: len(changes)}, nil
}
