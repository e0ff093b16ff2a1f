package app

import (
	"context"

	"buckgen/internal/apply"
	"buckgen/internal/cells"
	"buckgen/internal/core"
	"buckgen/internal/types"
)

// pipeline bundles the translator and applier built for one run against
// one probed environment and one loaded graph.
type pipeline struct {
	translator  *core.Translator
	applier     *apply.Applier
	graph       types.ResolvedGraph
	projectRoot string
}

// buildPipeline probes the environment, loads the resolved graph and
// the input tables, and assembles the translation pipeline.
func (s Service) buildPipeline(ctx context.Context, cfg types.RepoConfig, separate bool, noMerge bool) (pipeline, error) {
	triple, err := s.Env.TargetTriple(ctx)
	if err != nil {
		return pipeline{}, err
	}
	cfgLines, err := s.Env.CfgLines(ctx)
	if err != nil {
		return pipeline{}, err
	}
	cfgs, err := core.ParseCfgs(cfgLines)
	if err != nil {
		return pipeline{}, err
	}
	projectRoot, err := s.Env.ProjectRoot(ctx)
	if err != nil {
		return pipeline{}, err
	}

	graph, err := s.Graph.Load(ctx)
	if err != nil {
		return pipeline{}, err
	}
	checksums, err := s.NewChecksum(projectRoot).Load(ctx)
	if err != nil {
		return pipeline{}, err
	}
	maps, err := s.CellMaps.Get(projectRoot, func() (cells.Maps, error) {
		cellCfg, err := s.CellConfig.Load(projectRoot)
		if err != nil {
			return cells.Maps{}, err
		}
		return cells.MapsFromConfig(cellCfg), nil
	})
	if err != nil {
		return pipeline{}, err
	}

	translator := &core.Translator{
		Packages:    graph.PackageMap(),
		Nodes:       graph.NodeMap(),
		Root:        graph.Root,
		Checksums:   checksums,
		Compat:      s.NewCompat(projectRoot),
		Env:         core.Environment{Triple: triple, Cfgs: cfgs},
		Cells:       maps,
		Config:      cfg,
		ProjectRoot: projectRoot,
	}
	applier := &apply.Applier{
		Translator:    translator,
		Vendor:        s.NewVendor(projectRoot),
		RuleFiles:     s.RuleFiles,
		WorkspaceRoot: graph.WorkspaceRoot,
		Separate:      separate,
		NoMerge:       noMerge,
	}
	return pipeline{
		translator:  translator,
		applier:     applier,
		graph:       graph,
		projectRoot: projectRoot,
	}, nil
}
