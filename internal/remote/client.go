// Package remote is the GitHub REST surface of AutoPR: branch-ref
// resolution with a bounded empty-repository bootstrap, content mutation
// under optimistic concurrency, the single feedback comment, pull requests,
// and the failure reporter that turns upstream errors into one user-visible
// outcome.
package remote

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/go-github/v60/github"
)

// Bootstrapper pushes a first commit to an empty remote repository.
// Implemented by the local git side-channel in internal/adapter/git.
type Bootstrapper interface {
	Initialize(ctx context.Context, owner, repo, remoteURL string) error
}

// Client wraps an installation-token-authenticated go-github client.
// It lives for a single logical operation; the token it holds is minted
// fresh by the credential broker for each one.
type Client struct {
	gh        *github.Client
	bootstrap Bootstrapper
}

// New creates a Client for the given installation token.
// baseURL can be empty for api.github.com. The bootstrapper may be nil,
// in which case an empty repository is immediately fatal.
func New(token, baseURL string, bootstrap Bootstrapper) (*Client, error) {
	gh := github.NewClient(nil).WithAuthToken(token)

	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse api base url: %w", err)
		}
		if u.Path == "" || u.Path[len(u.Path)-1] != '/' {
			u.Path += "/"
		}
		gh.BaseURL = u
	}

	return &Client{gh: gh, bootstrap: bootstrap}, nil
}

// statusCode extracts the HTTP status from a go-github error, or 0.
func statusCode(err error) int {
	if ghe, ok := err.(*github.ErrorResponse); ok && ghe.Response != nil {
		return ghe.Response.StatusCode
	}
	return 0
}
