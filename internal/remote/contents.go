package remote

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/go-github/v60/github"
)

// Outcome is the result of a content mutation.
type Outcome int

const (
	// OutcomeCommitted means the write was performed.
	OutcomeCommitted Outcome = iota
	// OutcomeNoOp means the patch produced no change and nothing was
	// written. This is a success variant, not an error.
	OutcomeNoOp
)

func (o Outcome) String() string {
	if o == OutcomeNoOp {
		return "no-op"
	}
	return "committed"
}

// CommitResult records the outcome of one diff in a batch. Before and
// After carry the file content around the mutation, for diff previews in
// the completion comment.
type CommitResult struct {
	Path    string
	Outcome Outcome
	Before  string
	After   string
}

// CommitDiff fetches the file at path on branch, applies diffText to it,
// and writes the result back conditioned on the version tag observed at
// read time. A 404 read yields an empty baseline and the write is a
// creation with no tag. A tag mismatch at write time surfaces as
// ErrOptimisticConflict and is never retried here.
func (c *Client) CommitDiff(ctx context.Context, owner, repo, branch, path, diffText, message string) (CommitResult, error) {
	result := CommitResult{Path: path}

	baseline, versionTag, err := c.fileContent(ctx, owner, repo, branch, path)
	if err != nil {
		return result, err
	}
	result.Before = baseline

	modified, changed, err := ApplyPatch(baseline, diffText)
	if err != nil {
		return result, fmt.Errorf("patch %s: %w", path, err)
	}
	result.After = modified
	if !changed {
		log.Printf("[remote] %s/%s@%s %s: patch is a no-op, skipping write", owner, repo, branch, path)
		result.Outcome = OutcomeNoOp
		return result, nil
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: []byte(modified),
		Branch:  github.String(branch),
	}

	if versionTag == "" {
		_, resp, err := c.gh.Repositories.CreateFile(ctx, owner, repo, path, opts)
		if err != nil {
			if resp != nil && resp.StatusCode == 409 {
				return result, fmt.Errorf("create %s: %w", path, ErrOptimisticConflict)
			}
			return result, fmt.Errorf("create %s: %w", path, err)
		}
		result.Outcome = OutcomeCommitted
		return result, nil
	}

	opts.SHA = github.String(versionTag)
	_, resp, err := c.gh.Repositories.UpdateFile(ctx, owner, repo, path, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == 409 {
			return result, fmt.Errorf("update %s: %w", path, ErrOptimisticConflict)
		}
		return result, fmt.Errorf("update %s: %w", path, err)
	}
	result.Outcome = OutcomeCommitted
	return result, nil
}

// CommitDiffs applies an ordered sequence of diffs against branch, one file
// per diff, sequentially. It aborts on the first unrecoverable failure and
// returns the results of the diffs already processed: files committed
// before the failure stay committed, and that partial application is a
// visible outcome, not something rolled back or hidden.
func (c *Client) CommitDiffs(ctx context.Context, owner, repo, branch string, diffs []string) ([]CommitResult, error) {
	var results []CommitResult
	for i, diff := range diffs {
		path, err := PatchTarget(diff)
		if err != nil {
			return results, fmt.Errorf("diff %d: %w", i, err)
		}

		result, err := c.CommitDiff(ctx, owner, repo, branch, path, diff, "Update "+path)
		if err != nil {
			log.Printf("[remote] batch aborted at %s after %d of %d diffs: %v", path, i, len(diffs), err)
			return results, err
		}

		results = append(results, result)
		log.Printf("[remote] %s %s on %s/%s@%s", path, result.Outcome, owner, repo, branch)
	}
	return results, nil
}

// fileContent reads the file at path on branch. A 200 yields the decoded
// content and its version tag; a 404 yields an empty baseline with no tag.
// Content at rest is base64; decoded bytes that are not valid UTF-8 are
// replaced with U+FFFD, a defined lossy transformation, never an error.
func (c *Client) fileContent(ctx context.Context, owner, repo, branch, path string) (string, string, error) {
	file, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path,
		&github.RepositoryContentGetOptions{Ref: branch})
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return "", "", nil
		}
		return "", "", fmt.Errorf("get contents %s: %w", path, err)
	}
	if file == nil {
		return "", "", fmt.Errorf("get contents %s: path is a directory", path)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", "", fmt.Errorf("decode contents %s: %w", path, err)
	}
	return strings.ToValidUTF8(content, "�"), file.GetSHA(), nil
}
