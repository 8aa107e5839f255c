package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrRefNotFound is returned when a branch reference does not exist.
	ErrRefNotFound = errors.New("branch reference not found")

	// ErrRepositoryEmpty is returned when a repository still reports no
	// commits after the one permitted bootstrap attempt.
	ErrRepositoryEmpty = errors.New("repository is empty")

	// ErrOptimisticConflict is returned when a content write is rejected
	// because the supplied version tag no longer matches the store's
	// current tag. It is never retried here: a retry would require
	// re-reading and re-diffing, silently rebasing the caller's change
	// onto content they never saw.
	ErrOptimisticConflict = errors.New("content version tag mismatch")
)

// UpstreamHTTPError is a non-2xx response from the GitHub API with its raw
// body preserved, for call sites that classify on body shape.
type UpstreamHTTPError struct {
	Status int
	Body   []byte
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("upstream http error: %d %s", e.Status, e.Body)
}
