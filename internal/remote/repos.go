package remote

import (
	"context"
	"fmt"

	"github.com/google/go-github/v60/github"
)

// InstalledRepo identifies one repository accessible to the installation
// the client's token is scoped to.
type InstalledRepo struct {
	OwnerID       int64
	Owner         string
	Repo          string
	CloneURL      string
	DefaultBranch string
}

// ListInstalledRepos lists every repository accessible to the installation,
// following pagination.
func (c *Client) ListInstalledRepos(ctx context.Context) ([]InstalledRepo, error) {
	var all []InstalledRepo
	opts := &github.ListOptions{PerPage: 100}
	for {
		repos, resp, err := c.gh.Apps.ListRepos(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("list installation repositories: %w", err)
		}
		for _, r := range repos.Repositories {
			all = append(all, InstalledRepo{
				OwnerID:       r.GetOwner().GetID(),
				Owner:         r.GetOwner().GetLogin(),
				Repo:          r.GetName(),
				CloneURL:      r.GetCloneURL(),
				DefaultBranch: r.GetDefaultBranch(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}
