package ports

import "context"

// ChecksumPort supplies the precomputed checksum table: name-version
// key → hex digest. Every third-party vendor fetch requires an entry.
type ChecksumPort interface {
	Load(ctx context.Context) (map[string]string, error)
}

// PlatformCompatPort looks up the platform-compatibility constraint
// labels declared for a package, if any.
type PlatformCompatPort interface {
	CompatibleWith(name string) []string
}

// BundlePinPort fetches the commit hash the external macro cell should
// be pinned to. Failures are recoverable; callers fall back to a
// baked-in default revision.
type BundlePinPort interface {
	LatestCommit(ctx context.Context) (string, error)
}
