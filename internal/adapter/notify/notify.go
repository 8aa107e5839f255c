// Package notify delivers run feedback to the person who triggered an
// operation. The only implementation posts a single issue comment and
// rewrites it in place as the run progresses.
package notify

import "context"

// Notifier is the feedback channel for one run.
type Notifier interface {
	// Start opens the channel with an initial body.
	Start(ctx context.Context, body string) error
	// Update replaces the channel's content with a new body.
	Update(ctx context.Context, body string) error
	// URL addresses the channel for out-of-band updates, e.g. by the
	// failure reporter. Empty until Start succeeds.
	URL() string
}
