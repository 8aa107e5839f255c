package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/autopr-dev/autopr/internal/core"
)

// ExecuteFunc is a callback invoked when a valid webhook event is accepted.
type ExecuteFunc func(event core.Event) error

// Handler processes incoming GitHub webhook events. Signature verification
// happens before anything else; an unauthenticated request never reaches
// parsing, token exchange, or comment creation.
type Handler struct {
	secret    string
	label     string // product label that triggers a run
	onExecute ExecuteFunc
	onOnboard ExecuteFunc // invoked when an issue is opened
}

// NewHandler creates a new webhook Handler. onOnboard may be nil.
func NewHandler(secret, label string, onExecute, onOnboard ExecuteFunc) *Handler {
	return &Handler{
		secret:    secret,
		label:     label,
		onExecute: onExecute,
		onOnboard: onOnboard,
	}
}

// HandleWebhook is the HTTP handler for POST /webhook.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := VerifySignature(body, r.Header.Get(SignatureHeader), h.secret); err != nil {
		if errors.Is(err, ErrSignatureMissing) {
			http.Error(w, "missing signature", http.StatusUnauthorized)
			return
		}
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	if eventType == "" {
		http.Error(w, "missing event type", http.StatusBadRequest)
		return
	}

	event, decision, err := h.parseEvent(eventType, body)
	if err != nil {
		log.Printf("[webhook] failed to parse event: %v", err)
		http.Error(w, "failed to parse event", http.StatusBadRequest)
		return
	}

	if decision == decideOnboard {
		if h.onOnboard != nil {
			if err := h.onOnboard(event); err != nil {
				log.Printf("[webhook] onboard failed for %s/%s#%d: %v",
					event.Owner, event.Repo, event.IssueNumber, err)
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "onboarded %s/%s#%d", event.Owner, event.Repo, event.IssueNumber)
		return
	}

	if decision != decideExecute {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "event %s ignored", eventType)
		return
	}

	if h.onExecute != nil {
		if err := h.onExecute(event); err != nil {
			log.Printf("[webhook] execute failed for %s/%s#%d: %v",
				event.Owner, event.Repo, event.IssueNumber, err)
			http.Error(w, "execution failed", http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, "accepted %s/%s#%d", event.Owner, event.Repo, event.IssueNumber)
}

// payload is the subset of a GitHub webhook body this handler reads.
type payload struct {
	Action string `json:"action"`
	Label  struct {
		Name string `json:"name"`
	} `json:"label"`
	Issue struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Body   string `json:"body"`
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
	} `json:"issue"`
	Comment struct {
		Body string `json:"body"`
	} `json:"comment"`
	Repository struct {
		Name          string `json:"name"`
		CloneURL      string `json:"clone_url"`
		DefaultBranch string `json:"default_branch"`
		Owner         struct {
			Login string `json:"login"`
			ID    int64  `json:"id"`
			Type  string `json:"type"`
		} `json:"owner"`
	} `json:"repository"`
	Sender struct {
		Login string `json:"login"`
		ID    int64  `json:"id"`
	} `json:"sender"`
	Installation struct {
		ID int64 `json:"id"`
	} `json:"installation"`
}

type decision int

const (
	decideIgnore decision = iota
	decideExecute
	decideOnboard
)

// parseEvent extracts a core.Event from the webhook body and decides what to
// do with it: run the agent (an issue labeled with the product label, or an
// issue comment edited to tick the generate checkbox), onboard (a freshly
// opened issue gets the checkbox comment), or ignore.
func (h *Handler) parseEvent(eventType string, body []byte) (core.Event, decision, error) {
	var raw payload
	if err := json.Unmarshal(body, &raw); err != nil {
		return core.Event{}, decideIgnore, fmt.Errorf("unmarshal webhook: %w", err)
	}

	if raw.Issue.Number == 0 {
		return core.Event{}, decideIgnore, nil
	}

	decided := decideIgnore
	source := ""
	switch eventType {
	case "issues":
		switch {
		case raw.Action == "labeled" && raw.Label.Name == h.label:
			decided = decideExecute
			source = "issue_label"
		case raw.Action == "opened":
			decided = decideOnboard
		}
	case "issue_comment":
		if raw.Action == "edited" && checkboxTicked(raw.Comment.Body) {
			decided = decideExecute
			source = "comment_checkbox"
		}
	}

	event := core.Event{
		InstallationID: raw.Installation.ID,
		Source:         source,
		Owner:          raw.Repository.Owner.Login,
		OwnerID:        raw.Repository.Owner.ID,
		OwnerType:      raw.Repository.Owner.Type,
		Repo:           raw.Repository.Name,
		CloneURL:       raw.Repository.CloneURL,
		BaseBranch:     raw.Repository.DefaultBranch,
		IssueNumber:    raw.Issue.Number,
		IssueTitle:     raw.Issue.Title,
		IssueBody:      raw.Issue.Body,
		SenderID:       raw.Sender.ID,
		SenderName:     raw.Sender.Login,
	}
	return event, decided, nil
}

// checkboxTicked reports whether the comment contains a checked
// "Generate PR" checkbox.
func checkboxTicked(commentBody string) bool {
	for _, line := range strings.Split(commentBody, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- [x]") && strings.Contains(line, "Generate PR") {
			return true
		}
	}
	return false
}
