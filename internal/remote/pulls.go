package remote

import (
	"context"
	"fmt"
	"io"

	"github.com/google/go-github/v60/github"
)

// CreatePullRequest opens a pull request merging head into base and
// returns its HTML URL. A 422 rejection is returned with its raw body
// preserved: GitHub's validation payloads come in more than one shape,
// and the typed error drops the ones it cannot decode. The failure
// reporter classifies on the raw body instead.
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo, title, body, head, base string) (string, error) {
	pr, _, err := c.gh.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title: github.String(title),
		Body:  github.String(body),
		Head:  github.String(head),
		Base:  github.String(base),
	})
	if err != nil {
		if raw := rawValidationError(err); raw != nil {
			return "", fmt.Errorf("create pull request %s -> %s: %w", head, base, raw)
		}
		return "", fmt.Errorf("create pull request %s -> %s: %w", head, base, err)
	}
	return pr.GetHTMLURL(), nil
}

// rawValidationError extracts a 422 response as an UpstreamHTTPError with
// its body intact. go-github re-populates the response body after reading
// it, which is what makes this recoverable.
func rawValidationError(err error) *UpstreamHTTPError {
	ghe, ok := err.(*github.ErrorResponse)
	if !ok || ghe.Response == nil || ghe.Response.StatusCode != 422 || ghe.Response.Body == nil {
		return nil
	}
	data, readErr := io.ReadAll(ghe.Response.Body)
	if readErr != nil || len(data) == 0 {
		return nil
	}
	return &UpstreamHTTPError{Status: 422, Body: data}
}
