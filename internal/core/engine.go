// Package core orchestrates one run of AutoPR: a triggered issue event in,
// a pull request (or a single explanatory comment) out.
package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/autopr-dev/autopr/internal/adapter/notify"
	"github.com/autopr-dev/autopr/internal/config"
	"github.com/autopr-dev/autopr/internal/msg"
	"github.com/autopr-dev/autopr/internal/remote"
	"github.com/autopr-dev/autopr/internal/storage"
)

// TokenSource mints a fresh installation token per operation.
// Implemented by githubapp.AppAuth.
type TokenSource interface {
	InstallationToken(ctx context.Context, installationID int64) (string, error)
}

// Engine runs the full cycle for one event: quota check, token exchange,
// branch creation, content mutation, pull request, bookkeeping.
type Engine struct {
	cfg     *config.Config
	store   *storage.DB
	tokens  TokenSource
	planner Planner

	// newClient builds the per-run GitHub client from a fresh token.
	// Overridable in tests.
	newClient func(token string) (*remote.Client, error)
}

// NewEngine creates an Engine. bootstrap handles empty repositories and
// may be nil, in which case an empty repository fails the run.
func NewEngine(cfg *config.Config, store *storage.DB, tokens TokenSource, planner Planner, bootstrap remote.Bootstrapper) *Engine {
	return &Engine{
		cfg:     cfg,
		store:   store,
		tokens:  tokens,
		planner: planner,
		newClient: func(token string) (*remote.Client, error) {
			return remote.New(token, cfg.GitHub.BaseURL, bootstrap)
		},
	}
}

// Execute runs the full cycle for event. Failures after the progress
// comment exists are reported into that comment before the error returns.
func (e *Engine) Execute(ctx context.Context, event Event) error {
	log.Printf("[engine] run for %s (trigger: %s)", event.UniqueIssueID(), event.Source)

	left, used, cycleEnd, err := e.store.RequestsLeftInCycle(event.InstallationID, e.cfg.Quota.RequestsPerCycle)
	if err != nil {
		return fmt.Errorf("check quota: %w", err)
	}

	token, err := e.tokens.InstallationToken(ctx, event.InstallationID)
	if err != nil {
		return fmt.Errorf("mint installation token: %w", err)
	}
	client, err := e.newClient(token)
	if err != nil {
		return fmt.Errorf("build github client: %w", err)
	}

	if left <= 0 {
		log.Printf("[engine] installation %d is over quota (%d used)", event.InstallationID, used)
		body := msg.RequestLimitReached(event.SenderName, used, cycleEnd)
		if _, err := client.CreateComment(ctx, event.Owner, event.Repo, event.IssueNumber, body); err != nil {
			log.Printf("[engine] failed to post quota comment: %v", err)
		}
		return nil
	}

	if err := e.ensureUser(event); err != nil {
		log.Printf("[engine] user bookkeeping failed: %v", err)
	}

	notifier := notify.NewComment(client, event.Owner, event.Repo, event.IssueNumber)
	startBody := msg.ProgressBar(0, "Looking at the issue...") + msg.RequestsLeftNote(left-1, cycleEnd)
	if err := notifier.Start(ctx, startBody); err != nil {
		// The run continues without visible progress; the PR is the product.
		log.Printf("[engine] failed to create progress comment: %v", err)
	}

	recordID, err := e.store.CreateUsageRecord(storage.UsageRecord{
		InstallationID: event.InstallationID,
		OwnerID:        event.OwnerID,
		UserID:         event.SenderID,
		IssueID:        event.UniqueIssueID(),
		Source:         event.Source,
	})
	if err != nil {
		return fmt.Errorf("open usage record: %w", err)
	}

	if err := client.AddReaction(ctx, event.Owner, event.Repo, event.IssueNumber, "eyes"); err != nil {
		log.Printf("[engine] reaction failed: %v", err)
	}

	baseBranch := event.BaseBranch
	if baseBranch == "" {
		baseBranch = e.cfg.GitHub.BaseBranch
	}

	headSHA, err := client.ResolveBranchHead(ctx, event.Owner, event.Repo, baseBranch, event.CloneURL)
	if err != nil {
		return e.fail(ctx, client, notifier, recordID, err, "resolve base branch")
	}

	branch := fmt.Sprintf("%s/issue-%d-%s", e.cfg.Product.Label, event.IssueNumber,
		time.Now().UTC().Format("20060102150405"))
	if err := client.CreateBranch(ctx, event.Owner, event.Repo, branch, headSHA); err != nil {
		return e.fail(ctx, client, notifier, recordID, err, "create work branch")
	}

	e.progress(ctx, notifier, 25, "Planning the change...")

	comments, err := client.IssueComments(ctx, event.Owner, event.Repo, event.IssueNumber, e.cfg.GitHub.BotLogin)
	if err != nil {
		log.Printf("[engine] failed to list issue comments, planning from the body alone: %v", err)
	}

	diffs, err := e.planner.Plan(ctx, event, comments)
	if err != nil {
		return e.fail(ctx, client, notifier, recordID, err, "plan changes")
	}
	log.Printf("[engine] planned %d diff(s) for %s", len(diffs), event.UniqueIssueID())

	e.progress(ctx, notifier, 50, "Applying changes...")

	results, err := client.CommitDiffs(ctx, event.Owner, event.Repo, branch, diffs)
	if err != nil {
		return e.fail(ctx, client, notifier, recordID, err, "apply changes")
	}

	e.progress(ctx, notifier, 75, "Opening the pull request...")

	title := fmt.Sprintf("%s: %s", e.cfg.Product.Name, event.IssueTitle)
	prURL, err := client.CreatePullRequest(ctx, event.Owner, event.Repo,
		title, msg.PullRequestBody(event.IssueNumber, branch), branch, baseBranch)
	if err != nil {
		return e.fail(ctx, client, notifier, recordID, err, "create pull request")
	}

	done := msg.PullRequestCompleted(event.SenderName, prURL)
	if previews := diffPreviews(results); previews != "" {
		done += "\n\n" + previews
	}
	if err := notifier.Update(ctx, done); err != nil {
		log.Printf("[engine] failed to update completion comment: %v", err)
	}

	if err := e.store.CompleteUsageRecord(recordID, true); err != nil {
		log.Printf("[engine] failed to close usage record %d: %v", recordID, err)
	}
	if err := e.store.SetFirstIssueDone(event.SenderID); err != nil {
		log.Printf("[engine] failed to mark first issue for user %d: %v", event.SenderID, err)
	}

	log.Printf("[engine] completed %s: %s", event.UniqueIssueID(), prURL)
	return nil
}

// Onboard posts the generate-PR checkbox comment on a freshly opened
// issue. First-time senders get a short welcome above it.
func (e *Engine) Onboard(ctx context.Context, event Event) error {
	token, err := e.tokens.InstallationToken(ctx, event.InstallationID)
	if err != nil {
		return fmt.Errorf("mint installation token: %w", err)
	}
	client, err := e.newClient(token)
	if err != nil {
		return fmt.Errorf("build github client: %w", err)
	}

	if err := e.ensureUser(event); err != nil {
		log.Printf("[engine] user bookkeeping failed: %v", err)
	}

	body := msg.Checkbox
	if first, err := e.store.IsFirstIssue(event.SenderID); err == nil && first {
		body = msg.FirstIssueWelcome(event.SenderName) + "\n\n" + body
	}

	if _, err := client.CreateComment(ctx, event.Owner, event.Repo, event.IssueNumber, body); err != nil {
		return fmt.Errorf("post checkbox comment: %w", err)
	}
	log.Printf("[engine] onboarded %s", event.UniqueIssueID())
	return nil
}

// fail closes the usage record, reports the failure into the progress
// comment, and returns the terminal error.
func (e *Engine) fail(ctx context.Context, client *remote.Client, notifier notify.Notifier, recordID int64, cause error, operation string) error {
	if err := e.store.CompleteUsageRecord(recordID, false); err != nil {
		log.Printf("[engine] failed to close usage record %d: %v", recordID, err)
	}
	return client.ReportAndRaise(ctx, cause, notifier.URL(), operation)
}

// progress is a best-effort update of the progress comment.
func (e *Engine) progress(ctx context.Context, notifier notify.Notifier, percent int, message string) {
	if err := notifier.Update(ctx, msg.ProgressBar(percent, message)); err != nil {
		log.Printf("[engine] progress update failed: %v", err)
	}
}

// ensureUser records the sender on first contact.
func (e *Engine) ensureUser(event Event) error {
	exists, err := e.store.UserExists(event.SenderID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	log.Printf("[engine] first contact from %s (%d)", event.SenderName, event.SenderID)
	return e.store.CreateUser(event.SenderID, event.SenderName)
}

// diffPreviews renders a collapsed preview per mutated file.
func diffPreviews(results []remote.CommitResult) string {
	var parts []string
	for _, r := range results {
		if r.Outcome != remote.OutcomeCommitted {
			continue
		}
		parts = append(parts, msg.DiffPreview(r.Path, r.Before, r.After))
	}
	return strings.Join(parts, "\n")
}
