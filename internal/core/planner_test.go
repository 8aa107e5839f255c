package core

import (
	"context"
	"strings"
	"testing"
)

func TestIssueDiffPlannerExtractsBlocks(t *testing.T) {
	event := Event{
		IssueBody: "Please apply this:\n\n```diff\n--- a/a.txt\n+++ b/a.txt\n@@ -1 +1 @@\n-old\n+new\n```\n\nThanks!",
	}
	comments := []string{
		"no diff here",
		"one more:\n```diff\n--- /dev/null\n+++ b/b.txt\n@@ -0,0 +1 @@\n+hi\n```",
	}

	diffs, err := IssueDiffPlanner{}.Plan(context.Background(), event, comments)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(diffs) != 2 {
		t.Fatalf("diffs = %d, want 2", len(diffs))
	}
	if !strings.Contains(diffs[0], "a.txt") {
		t.Errorf("first diff = %q", diffs[0])
	}
	if !strings.Contains(diffs[1], "b.txt") {
		t.Errorf("second diff = %q", diffs[1])
	}
	if !strings.HasSuffix(diffs[0], "\n") {
		t.Error("diff must keep its trailing newline")
	}
}

func TestIssueDiffPlannerNoBlocks(t *testing.T) {
	diffs, err := IssueDiffPlanner{}.Plan(context.Background(), Event{IssueBody: "just words"}, nil)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(diffs) != 0 {
		t.Errorf("diffs = %v, want none", diffs)
	}
}

func TestExtractDiffBlocks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "plain fence ignored", text: "```\nnot a diff\n```", want: 0},
		{name: "unterminated fence", text: "```diff\n+dangling", want: 0},
		{name: "two blocks", text: "```diff\n+a\n```\nbetween\n```diff\n+b\n```", want: 2},
		{name: "empty block", text: "```diff\n```", want: 0},
		{name: "indented fence", text: "  ```diff\n  +x\n  ```", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractDiffBlocks(tt.text); len(got) != tt.want {
				t.Errorf("blocks = %d (%q), want %d", len(got), got, tt.want)
			}
		})
	}
}

func TestUniqueIssueID(t *testing.T) {
	e := Event{OwnerType: "Organization", Owner: "acme", Repo: "demo", IssueNumber: 7}
	if got := e.UniqueIssueID(); got != "Organization/acme/demo#7" {
		t.Errorf("id = %q", got)
	}
}
