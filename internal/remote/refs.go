package remote

import (
	"context"
	"fmt"
	"log"

	"github.com/google/go-github/v60/github"
)

// emptyRepositoryMessage is the exact message GitHub returns with a 409
// when a repository has no commits.
const emptyRepositoryMessage = "Git Repository is empty."

// ResolveBranchHead returns the commit SHA at the tip of branch. When the
// repository has no commits yet, it runs the local bootstrap once (init,
// placeholder commit, push to the default branch) and re-resolves. The
// bootstrap is bounded to a single attempt: a repository that is still
// empty after a successful push is a fatal inconsistency, and recursing
// on it would never terminate. The returned SHA is stale the moment
// another writer commits; callers must not hold it across suspension
// points and expect it to remain the tip.
func (c *Client) ResolveBranchHead(ctx context.Context, owner, repo, branch, cloneURL string) (string, error) {
	bootstrapped := false
	for {
		ref, resp, err := c.gh.Git.GetRef(ctx, owner, repo, "refs/heads/"+branch)
		if err == nil {
			return ref.GetObject().GetSHA(), nil
		}

		if !isEmptyRepository(err) {
			if resp != nil && resp.StatusCode == 404 {
				return "", fmt.Errorf("branch %s/%s@%s: %w", owner, repo, branch, ErrRefNotFound)
			}
			return "", fmt.Errorf("get ref %s/%s@%s: %w", owner, repo, branch, err)
		}

		if bootstrapped || c.bootstrap == nil {
			return "", fmt.Errorf("%s/%s: %w", owner, repo, ErrRepositoryEmpty)
		}

		log.Printf("[remote] repository %s/%s is empty, pushing an initial commit", owner, repo)
		if err := c.bootstrap.Initialize(ctx, owner, repo, cloneURL); err != nil {
			return "", fmt.Errorf("bootstrap %s/%s: %w", owner, repo, err)
		}
		bootstrapped = true
	}
}

// CreateBranch creates a new remote branch at the given commit SHA.
func (c *Client) CreateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	ref := &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.String(sha)},
	}
	_, _, err := c.gh.Git.CreateRef(ctx, owner, repo, ref)
	if err != nil {
		return fmt.Errorf("create branch %q: %w", branch, err)
	}
	return nil
}

// FileTree returns all paths in the repository tree at ref. An empty
// repository yields an empty tree, not an error.
func (c *Client) FileTree(ctx context.Context, owner, repo, ref string) ([]string, error) {
	tree, _, err := c.gh.Git.GetTree(ctx, owner, repo, ref, true)
	if err != nil {
		if isEmptyRepository(err) || statusCode(err) == 409 {
			return nil, nil
		}
		return nil, fmt.Errorf("get tree %s/%s@%s: %w", owner, repo, ref, err)
	}

	paths := make([]string, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		paths = append(paths, entry.GetPath())
	}
	return paths, nil
}

// isEmptyRepository reports whether err is GitHub's 409 "Git Repository
// is empty." response.
func isEmptyRepository(err error) bool {
	ghe, ok := err.(*github.ErrorResponse)
	return ok &&
		ghe.Response != nil &&
		ghe.Response.StatusCode == 409 &&
		ghe.Message == emptyRepositoryMessage
}
