package adapters

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-github/v74/github"

	"buckgen/internal/ports"
)

const (
	// BundleOwner and BundleRepo locate the macro bundle repository the
	// external cell is pinned to.
	BundleOwner = "buckgen-dev"
	BundleRepo  = "buckgen-bundle"
)

// BundleGithubAdapter resolves the newest bundle revision from GitHub.
type BundleGithubAdapter struct {
	client *github.Client
	owner  string
	repo   string
}

func NewBundleGithubAdapter() BundleGithubAdapter {
	return BundleGithubAdapter{
		client: github.NewClient(nil),
		owner:  BundleOwner,
		repo:   BundleRepo,
	}
}

func (a BundleGithubAdapter) LatestCommit(ctx context.Context) (string, error) {
	commits, _, err := a.client.Repositories.ListCommits(ctx, a.owner, a.repo,
		&github.CommitsListOptions{ListOptions: github.ListOptions{PerPage: 1}})
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list bundle repository commits").
			WithCause(err)
	}
	if len(commits) == 0 || commits[0].SHA == nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("bundle repository has no commits")
	}
	return *commits[0].SHA, nil
}

var _ ports.BundlePinPort = BundleGithubAdapter{}
