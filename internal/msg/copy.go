// Package msg holds the user-facing comment copy: progress bars, terminal
// bodies, and diff previews. Keeping the wording in one place keeps the
// rest of the system free of presentation concerns.
package msg

import (
	"fmt"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
)

// ErrorBody is the generic terminal body for a failed operation.
const ErrorBody = "Sorry, something went wrong while working on this issue. " +
	"No changes were pushed. Please re-check the checkbox or re-apply the label to try again."

// NoChangesBody is the terminal body when the run produced no commits
// between the base branch and the generated branch.
const NoChangesBody = "No changes were needed for this issue, so no pull request was created. " +
	"If that seems wrong, add more detail to the issue and try again."

// Checkbox is the first comment posted on a triggering issue; ticking the
// box starts a run.
const Checkbox = "Click the checkbox below to generate a PR!\n- [ ] Generate PR"

// FirstIssueWelcome greets a sender the agent has not worked with before.
func FirstIssueWelcome(senderName string) string {
	return fmt.Sprintf("Welcome @%s! I turn issues into pull requests.", senderName)
}

// ProgressBar renders a ten-segment progress bar with a status message.
// percent is clamped to [0, 100].
func ProgressBar(percent int, message string) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent / 10
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
	return fmt.Sprintf("%s %d%%\n%s", bar, percent, message)
}

// RequestsLeftNote appends cycle-quota information to a comment body.
func RequestsLeftNote(left int, cycleEnd time.Time) string {
	noun := "requests"
	if left == 1 {
		noun = "request"
	}
	return fmt.Sprintf("\n\nYou have %d %s left in this cycle, which resets on %s.",
		left, noun, cycleEnd.Format("2006-01-02"))
}

// RequestLimitReached is the body posted when an installation has used up
// its cycle quota.
func RequestLimitReached(userName string, count int, cycleEnd time.Time) string {
	return fmt.Sprintf("Hi @%s, you've used all %d requests in this cycle. "+
		"Your quota resets on %s.", userName, count, cycleEnd.Format("2006-01-02"))
}

// PullRequestCompleted is the terminal body for a successful run.
func PullRequestCompleted(senderName, prURL string) string {
	return fmt.Sprintf("@%s Done! Review the pull request here: %s", senderName, prURL)
}

// DiffPreview renders a fenced unified diff between two versions of a
// file, for inclusion in the completion comment.
func DiffPreview(path, before, after string) string {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return fmt.Sprintf("error rendering diff for %s: %s", path, err)
	}
	return fmt.Sprintf("<details><summary>%s</summary>\n\n```diff\n%s\n```\n</details>", path, strings.TrimSpace(text))
}

// PullRequestBody composes the PR description linking back to the issue.
func PullRequestBody(issueNumber int, branch string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Resolves #%d\n\n", issueNumber)
	fmt.Fprintf(&sb, "Check out the changes locally:\n\n")
	fmt.Fprintf(&sb, "```\ngit fetch origin %s\ngit checkout %s\n```\n", branch, branch)
	return sb.String()
}
