package remote

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-github/v60/github"
)

// CreateComment posts a comment on an issue or pull request and returns
// the comment's API URL, which addresses it for later in-place updates.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) (string, error) {
	comment, _, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return "", fmt.Errorf("create comment on #%d: %w", number, err)
	}
	return comment.GetURL(), nil
}

// UpdateCommentByURL replaces the body of the comment at the given API URL.
// The comment is always updated in place; a second comment is never created.
func (c *Client) UpdateCommentByURL(ctx context.Context, commentURL, body string) error {
	owner, repo, id, err := parseCommentURL(commentURL)
	if err != nil {
		return err
	}

	_, _, err = c.gh.Issues.EditComment(ctx, owner, repo, id, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("update comment %s: %w", commentURL, err)
	}
	return nil
}

// IssueComments lists the bodies of all comments on an issue, excluding
// those authored by excludeLogin (the agent's own bot account), oldest
// first, following pagination.
func (c *Client) IssueComments(ctx context.Context, owner, repo string, number int, excludeLogin string) ([]string, error) {
	var bodies []string
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("list comments on #%d: %w", number, err)
		}
		for _, comment := range comments {
			if excludeLogin != "" && comment.GetUser().GetLogin() == excludeLogin {
				continue
			}
			bodies = append(bodies, comment.GetBody())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return bodies, nil
}

// parseCommentURL extracts owner, repo, and comment ID from an API comment
// URL of the form .../repos/{owner}/{repo}/issues/comments/{id}.
func parseCommentURL(commentURL string) (string, string, int64, error) {
	u, err := url.Parse(commentURL)
	if err != nil {
		return "", "", 0, fmt.Errorf("parse comment url %q: %w", commentURL, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	// Allow a leading API prefix (e.g. /api/v3 on GitHub Enterprise).
	for i := 0; i+5 < len(parts)+1; i++ {
		if parts[i] != "repos" {
			continue
		}
		rest := parts[i+1:]
		if len(rest) != 5 || rest[2] != "issues" || rest[3] != "comments" {
			break
		}
		id, err := strconv.ParseInt(rest[4], 10, 64)
		if err != nil {
			return "", "", 0, fmt.Errorf("parse comment id in %q: %w", commentURL, err)
		}
		return rest[0], rest[1], id, nil
	}
	return "", "", 0, fmt.Errorf("unrecognized comment url %q", commentURL)
}
