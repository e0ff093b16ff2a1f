// Package ports declares the interfaces the core translation pipeline
// uses to reach its external collaborators: compiler and build-tool
// probes, input tables, the filesystem, and the network.
package ports

import (
	"context"

	"buckgen/internal/types"
)

// EnvironmentPort probes the compiler and build-tool environment a run
// operates in. Failures of these probes are fatal: translation cannot
// proceed without a target triple, cfg flags, or a project root.
type EnvironmentPort interface {
	// TargetTriple returns the active compilation target triple.
	TargetTriple(ctx context.Context) (string, error)

	// CfgLines returns the raw active configuration flag lines.
	CfgLines(ctx context.Context) ([]string, error)

	// ProjectRoot returns the build tool's project root directory.
	ProjectRoot(ctx context.Context) (string, error)
}

// GraphPort loads the resolved package graph this run translates. The
// graph is trusted input; acquisition and resolution are not this
// tool's concern.
type GraphPort interface {
	Load(ctx context.Context) (types.ResolvedGraph, error)
}
