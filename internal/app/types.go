package app

import "buckgen/internal/types"

type MigrateRequest struct {
	Config types.RepoConfig

	// Separate leaves first-party rule files under manual control.
	Separate bool

	// NoMerge regenerates rule files without preserving fields from
	// existing ones.
	NoMerge bool
}

type MigrateResult struct {
	PackageCount int
}

type SyncRequest struct {
	Config   types.RepoConfig
	Separate bool
	NoMerge  bool
}

type SyncResult struct {
	Added   int
	Changed int
	Removed int
}

type InitRequest struct {
	// Dir is the project directory to initialize; empty means the
	// current directory.
	Dir string
}

type InitResult struct {
	CommitHash string
}

type UpdateRequest struct {
	Dir string
}

type UpdateResult struct {
	CommitHash string
}
