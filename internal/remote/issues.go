package remote

import (
	"context"
	"fmt"

	"github.com/google/go-github/v60/github"
)

// AddLabel adds a label to an issue, creating the label if needed.
// An issue that already carries the label is left unchanged upstream.
func (c *Client) AddLabel(ctx context.Context, owner, repo string, number int, label string) error {
	_, _, err := c.gh.Issues.AddLabelsToIssue(ctx, owner, repo, number, []string{label})
	if err != nil {
		return fmt.Errorf("add label %q to #%d: %w", label, number, err)
	}
	return nil
}

// AddReaction adds a reaction (e.g. "eyes") to an issue. Best-effort
// acknowledgement; callers typically ignore the error.
func (c *Client) AddReaction(ctx context.Context, owner, repo string, number int, content string) error {
	_, _, err := c.gh.Reactions.CreateIssueReaction(ctx, owner, repo, number, content)
	if err != nil {
		return fmt.Errorf("add reaction %q to #%d: %w", content, number, err)
	}
	return nil
}

// OldestUnassignedIssue returns the oldest open, unassigned issue that
// does not yet carry skipLabel, following pagination oldest-first.
// It returns nil when no such issue exists.
func (c *Client) OldestUnassignedIssue(ctx context.Context, owner, repo, skipLabel string) (*github.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		Assignee:    "none",
		State:       "open",
		Sort:        "created",
		Direction:   "asc",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		issues, resp, err := c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list issues %s/%s: %w", owner, repo, err)
		}

		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			if !hasLabel(issue, skipLabel) {
				return issue, nil
			}
		}

		if resp.NextPage == 0 {
			return nil, nil
		}
		opts.Page = resp.NextPage
	}
}

func hasLabel(issue *github.Issue, name string) bool {
	for _, label := range issue.Labels {
		if label.GetName() == name {
			return true
		}
	}
	return false
}
