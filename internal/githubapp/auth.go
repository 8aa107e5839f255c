// Package githubapp mints GitHub App assertions and exchanges them for
// short-lived installation tokens.
package githubapp

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v60/github"
)

// assertionLifetime is the validity window of a minted App assertion.
// GitHub caps App JWTs at 10 minutes.
const assertionLifetime = 600 * time.Second

// AppAuth holds the GitHub App identity. It is constructed once at startup
// and never mutated; every token exchange mints a fresh assertion from it.
type AppAuth struct {
	appID   int64
	key     *rsa.PrivateKey
	baseURL string // empty for api.github.com
}

// AuthExchangeError reports a failed installation-token exchange,
// carrying the upstream status and body.
type AuthExchangeError struct {
	Status int
	Body   string
}

func (e *AuthExchangeError) Error() string {
	return fmt.Sprintf("installation token exchange failed: %d %s", e.Status, e.Body)
}

// New parses the App private key and returns an AppAuth.
// Malformed key material is fatal; there is nothing to retry.
func New(appID int64, privateKeyPEM []byte, baseURL string) (*AppAuth, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse app private key: %w", err)
	}
	return &AppAuth{appID: appID, key: key, baseURL: baseURL}, nil
}

// MintAssertion creates a signed App assertion valid for 10 minutes from now.
// The assertion is used once for a token exchange and then discarded.
func (a *AppAuth) MintAssertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(assertionLifetime).Unix(),
		"iss": a.appID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("sign app assertion: %w", err)
	}
	return signed, nil
}

// InstallationToken exchanges a freshly minted assertion for an installation
// token scoped to the given installation. Tokens are never cached: each call
// yields a new one, so long-running processes cannot hold a stale credential.
func (a *AppAuth) InstallationToken(ctx context.Context, installationID int64) (string, error) {
	gh, err := a.appClient()
	if err != nil {
		return "", err
	}

	tok, resp, err := gh.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		exchErr := &AuthExchangeError{}
		if resp != nil {
			exchErr.Status = resp.StatusCode
		}
		if ghe, ok := err.(*github.ErrorResponse); ok {
			exchErr.Body = ghe.Message
		} else {
			exchErr.Body = err.Error()
		}
		return "", exchErr
	}
	return tok.GetToken(), nil
}

// Installations lists every installation of the App, following pagination.
func (a *AppAuth) Installations(ctx context.Context) ([]*github.Installation, error) {
	gh, err := a.appClient()
	if err != nil {
		return nil, err
	}

	var all []*github.Installation
	opts := &github.ListOptions{PerPage: 100}
	for {
		installs, resp, err := gh.Apps.ListInstallations(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("list installations: %w", err)
		}
		all = append(all, installs...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// appClient returns a go-github client authenticated with a fresh assertion.
func (a *AppAuth) appClient() (*github.Client, error) {
	assertion, err := a.MintAssertion(time.Now())
	if err != nil {
		return nil, err
	}

	gh := github.NewClient(nil).WithAuthToken(assertion)
	if a.baseURL != "" {
		u, err := url.Parse(ensureTrailingSlash(a.baseURL))
		if err != nil {
			return nil, fmt.Errorf("parse api base url: %w", err)
		}
		gh.BaseURL = u
	}
	return gh, nil
}

func ensureTrailingSlash(s string) string {
	if s[len(s)-1] != '/' {
		return s + "/"
	}
	return s
}
