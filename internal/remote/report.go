package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/go-github/v60/github"

	"github.com/autopr-dev/autopr/internal/msg"
)

// noCommitsFragment appears in GitHub's 422 validation error when a pull
// request would contain no commits between base and head.
const noCommitsFragment = "No commits between"

// ReportAndRaise classifies cause into one of the two user-facing bodies,
// updates the single feedback comment at commentURL with it, and returns a
// terminal error. It never returns nil: its sole job is to attach a
// human-readable explanation before the failure propagates. Classification
// problems are logged and fall back to the generic body; the reporter
// must not crash the caller's unwind path before the comment is updated.
func (c *Client) ReportAndRaise(ctx context.Context, cause error, commentURL, operation string) error {
	body := msg.ErrorBody

	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[report] %s: classification panic, using generic body: %v", operation, r)
			}
		}()
		if NoCommitsBetween(cause) {
			body = msg.NoChangesBody
		}
	}()

	log.Printf("[report] %s failed: %v", operation, cause)

	if commentURL != "" {
		if err := c.UpdateCommentByURL(ctx, commentURL, body); err != nil {
			log.Printf("[report] %s: failed to update feedback comment: %v", operation, err)
		}
	}

	return fmt.Errorf("%s: operation did not complete: %w", operation, cause)
}

// NoCommitsBetween reports whether err is GitHub's 422 validation failure
// for a pull request with no commits between base and head.
func NoCommitsBetween(err error) bool {
	var ghe *github.ErrorResponse
	if errors.As(err, &ghe) {
		if ghe.Response == nil || ghe.Response.StatusCode != 422 {
			return false
		}
		for _, e := range ghe.Errors {
			if strings.Contains(e.Message, noCommitsFragment) {
				return true
			}
		}
		return false
	}

	var raw *UpstreamHTTPError
	if errors.As(err, &raw) {
		return raw.Status == 422 && validationBodyNoChanges(raw.Body)
	}
	return false
}

// validationBodyNoChanges inspects a raw 422 validation body for the
// "no commits between" message. The nested error list is checked alongside
// the flat one because upstream APIs have shipped both shapes.
func validationBodyNoChanges(body []byte) bool {
	var payload struct {
		Message string          `json:"message"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	if payload.Message != "Validation Failed" || len(payload.Errors) == 0 {
		return false
	}

	type entry struct {
		Message string `json:"message"`
	}

	var flat []entry
	if err := json.Unmarshal(payload.Errors, &flat); err == nil {
		for _, e := range flat {
			if strings.Contains(e.Message, noCommitsFragment) {
				return true
			}
		}
		return false
	}

	var nested [][]entry
	if err := json.Unmarshal(payload.Errors, &nested); err == nil {
		for _, list := range nested {
			for _, e := range list {
				if strings.Contains(e.Message, noCommitsFragment) {
					return true
				}
			}
		}
	}
	return false
}
