package notify

import (
	"context"
	"log"

	"github.com/autopr-dev/autopr/internal/remote"
)

// CommentNotifier reports progress through one issue comment, updated in
// place. A run never produces a second comment.
type CommentNotifier struct {
	client *remote.Client
	owner  string
	repo   string
	number int

	commentURL string
}

// NewComment creates a CommentNotifier for the given issue.
func NewComment(client *remote.Client, owner, repo string, number int) *CommentNotifier {
	return &CommentNotifier{
		client: client,
		owner:  owner,
		repo:   repo,
		number: number,
	}
}

// Start posts the progress comment and remembers its URL.
func (n *CommentNotifier) Start(ctx context.Context, body string) error {
	url, err := n.client.CreateComment(ctx, n.owner, n.repo, n.number, body)
	if err != nil {
		return err
	}
	n.commentURL = url
	return nil
}

// Update rewrites the progress comment. Calling Update before Start
// succeeded is a no-op; the run keeps going without visible progress.
func (n *CommentNotifier) Update(ctx context.Context, body string) error {
	if n.commentURL == "" {
		log.Printf("[notify] no progress comment for %s/%s#%d, skipping update", n.owner, n.repo, n.number)
		return nil
	}
	return n.client.UpdateCommentByURL(ctx, n.commentURL, body)
}

// URL returns the API URL of the progress comment, or "" before Start.
func (n *CommentNotifier) URL() string {
	return n.commentURL
}
