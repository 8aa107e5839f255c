package core

import "fmt"

// Event is a triggered request to resolve one issue into a pull request.
// It is assembled from a verified webhook payload (or a scan) and carries
// everything the engine needs to address the repository and the issue.
type Event struct {
	InstallationID int64

	// Source names the trigger: "issue_label", "comment_checkbox", or "scan".
	Source string

	Owner     string
	OwnerID   int64
	OwnerType string // "User" or "Organization"
	Repo      string
	CloneURL  string

	// BaseBranch is the repository default branch from the payload;
	// empty means the configured default applies.
	BaseBranch string

	IssueNumber int
	IssueTitle  string
	IssueBody   string

	SenderID   int64
	SenderName string
}

// UniqueIssueID identifies an issue across owners for usage bookkeeping.
func (e Event) UniqueIssueID() string {
	return fmt.Sprintf("%s/%s/%s#%d", e.OwnerType, e.Owner, e.Repo, e.IssueNumber)
}
