// Package app wires ports to adapters and implements the tool's use
// cases: migrate, sync, init and update.
package app

import (
	"path/filepath"

	"buckgen/internal/adapters"
	"buckgen/internal/cells"
	"buckgen/internal/core"
	"buckgen/internal/ports"
)

const (
	// ChecksumTableName locates the checksum table below the shared
	// third-party directory.
	ChecksumTableName = "checksums.yaml"

	// PlatformTableName locates the platform-compatibility table below
	// the shared third-party directory.
	PlatformTableName = "platforms.yaml"
)

type Service struct {
	Env        ports.EnvironmentPort
	Graph      ports.GraphPort
	RuleFiles  ports.RuleFilePort
	CellConfig ports.CellConfigPort
	BundlePin  ports.BundlePinPort

	// Project-root-relative collaborators are constructed per run once
	// the root is probed.
	NewVendor   func(projectRoot string) ports.VendorPort
	NewChecksum func(projectRoot string) ports.ChecksumPort
	NewCompat   func(projectRoot string) ports.PlatformCompatPort

	CellMaps *cells.MapsCache
}

func NewService() Service {
	cache, err := cells.NewMapsCache(0)
	if err != nil {
		// Only reachable with a negative size inside the lru library.
		panic(err)
	}
	return Service{
		Env:        adapters.NewExecEnvironmentAdapter(),
		Graph:      adapters.NewGraphMetadataAdapter(),
		RuleFiles:  adapters.NewRuleFileFSAdapter(),
		CellConfig: adapters.NewCellConfigFileAdapter(),
		BundlePin:  adapters.NewBundleGithubAdapter(),
		NewVendor: func(projectRoot string) ports.VendorPort {
			return adapters.NewVendorFSAdapter(projectRoot)
		},
		NewChecksum: func(projectRoot string) ports.ChecksumPort {
			return adapters.NewChecksumFileAdapter(thirdPartyFile(projectRoot, ChecksumTableName))
		},
		NewCompat: func(projectRoot string) ports.PlatformCompatPort {
			return adapters.NewPlatformFileAdapter(thirdPartyFile(projectRoot, PlatformTableName))
		},
		CellMaps: cache,
	}
}

func thirdPartyFile(projectRoot string, name string) string {
	return filepath.Join(projectRoot, filepath.FromSlash(core.ThirdPartyDir), name)
}
