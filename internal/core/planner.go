package core

import (
	"context"
	"strings"
)

// Planner turns a triggered event plus the issue's discussion into an
// ordered list of unified diffs, one file per diff.
type Planner interface {
	Plan(ctx context.Context, event Event, comments []string) ([]string, error)
}

// IssueDiffPlanner extracts fenced ```diff blocks from the issue body and
// its comments, in order of appearance. Issue authors spell out the exact
// change they want; the agent applies it verbatim.
type IssueDiffPlanner struct{}

// Plan returns every fenced diff block found in the event's issue body
// followed by those found in comments. An issue with no diff blocks plans
// an empty run.
func (IssueDiffPlanner) Plan(_ context.Context, event Event, comments []string) ([]string, error) {
	diffs := extractDiffBlocks(event.IssueBody)
	for _, comment := range comments {
		diffs = append(diffs, extractDiffBlocks(comment)...)
	}
	return diffs, nil
}

// extractDiffBlocks returns the contents of every ```diff fenced code
// block in text.
func extractDiffBlocks(text string) []string {
	var blocks []string
	lines := strings.Split(text, "\n")
	inBlock := false
	var current []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inBlock {
			if trimmed == "```diff" {
				inBlock = true
				current = current[:0]
			}
			continue
		}
		if trimmed == "```" {
			inBlock = false
			if len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n")+"\n")
			}
			continue
		}
		current = append(current, line)
	}
	return blocks
}
