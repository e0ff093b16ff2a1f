package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"buckgen/internal/adapters"
	"buckgen/internal/rules"
)

// DefaultBundleHash is the fallback bundle revision used when the
// latest one cannot be fetched.
const DefaultBundleHash = "2f79e2a6bb7c8a8ad0fce5a5b9d4b10cfa2254ab"

// bundleCell is the name of the external cell carrying the generated
// rules' macro definitions.
const bundleCell = "buckgen"

func bundleOrigin() string {
	return "https://github.com/" + adapters.BundleOwner + "/" + adapters.BundleRepo
}

// Init seeds a project's cell configuration with the macro bundle cell
// and writes the package modifier file next to it.
func (s Service) Init(ctx context.Context, req InitRequest) (InitResult, error) {
	dir := req.Dir
	if dir == "" {
		dir = "."
	}

	cfg, err := s.CellConfig.Load(dir)
	if err != nil {
		return InitResult{}, err
	}
	cfg.AppendLine("cells", "  "+bundleCell+" = "+bundleCell)
	cfg.AppendLine("external_cells", "  "+bundleCell+" = git")
	cfg.NewSectionAfter("external_cells", "external_cell_"+bundleCell)
	cfg.AppendLine("external_cell_"+bundleCell, "  git_origin = "+bundleOrigin())
	hash := s.resolveBundlePin(ctx)
	cfg.AppendLine("external_cell_"+bundleCell, "  commit_hash = "+hash)
	cfg.SetSection("project", []string{"  ignore = .git buck-out target"})
	if err := s.CellConfig.Save(dir, cfg); err != nil {
		return InitResult{}, err
	}

	if err := s.RuleFiles.Write(filepath.Join(dir, "PACKAGE"), modifierFile()); err != nil {
		return InitResult{}, err
	}

	log.Ctx(ctx).Info().
		Str("commit", hash).
		Msg("project initialized")
	return InitResult{CommitHash: hash}, nil
}

// Update re-pins the external bundle cell to the newest available
// revision.
func (s Service) Update(ctx context.Context, req UpdateRequest) (UpdateResult, error) {
	dir := req.Dir
	if dir == "" {
		dir = "."
	}

	cfg, err := s.CellConfig.Load(dir)
	if err != nil {
		return UpdateResult{}, err
	}
	hash := s.resolveBundlePin(ctx)
	cfg.SetSection("external_cell_"+bundleCell, []string{
		"  git_origin = " + bundleOrigin(),
		"  commit_hash = " + hash,
	})
	if err := s.CellConfig.Save(dir, cfg); err != nil {
		return UpdateResult{}, err
	}

	log.Ctx(ctx).Info().
		Str("commit", hash).
		Msg("bundle pin updated")
	return UpdateResult{CommitHash: hash}, nil
}

// resolveBundlePin fetches the newest bundle revision, falling back to
// the baked-in default when the fetch fails.
func (s Service) resolveBundlePin(ctx context.Context) string {
	hash, err := s.BundlePin.LatestCommit(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().
			Err(err).
			Str("fallback", DefaultBundleHash).
			Msg("failed to fetch latest bundle revision, using default")
		return DefaultBundleHash
	}
	return hash
}

// modifierFile renders the package modifier file seeded at the project
// root: a cfg constructor with mode aliases and a default debug mode.
func modifierFile() string {
	lines := []string{
		rules.GeneratedMarker,
		"",
		`load("@prelude//cfg/modifier:set_cfg_modifiers.bzl", "set_cfg_modifiers")`,
		`load("@` + bundleCell + `//config:set_cfg_constructor.bzl", "set_cfg_constructor")`,
		"",
		"ALIASES = {",
		`    "debug": "` + bundleCell + `//config/mode:debug",`,
		`    "release": "` + bundleCell + `//config/mode:release",`,
		"}",
		"set_cfg_constructor(aliases = ALIASES)",
		"",
		"set_cfg_modifiers(",
		"    cfg_modifiers = [",
		`        "` + bundleCell + `//config/mode:debug",`,
		"    ],",
		")",
		"",
	}
	return strings.Join(lines, "\n")
}
