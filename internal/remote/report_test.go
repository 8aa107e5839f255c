package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/google/go-github/v60/github"

	"github.com/autopr-dev/autopr/internal/msg"
)

func noCommitsTypedError() error {
	return &github.ErrorResponse{
		Response: &http.Response{StatusCode: http.StatusUnprocessableEntity},
		Message:  "Validation Failed",
		Errors: []github.Error{
			{Resource: "PullRequest", Code: "custom", Message: "No commits between main and autopr/issue-7"},
		},
	}
}

func TestNoCommitsBetween(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "typed flat errors",
			err:  noCommitsTypedError(),
			want: true,
		},
		{
			name: "typed wrapped",
			err:  fmt.Errorf("create pull request: %w", noCommitsTypedError()),
			want: true,
		},
		{
			name: "raw flat shape",
			err: &UpstreamHTTPError{
				Status: 422,
				Body:   []byte(`{"message": "Validation Failed", "errors": [{"message": "No commits between main and work"}]}`),
			},
			want: true,
		},
		{
			name: "raw nested shape",
			err: &UpstreamHTTPError{
				Status: 422,
				Body:   []byte(`{"message": "Validation Failed", "errors": [[{"message": "No commits between main and work"}]]}`),
			},
			want: true,
		},
		{
			name: "different validation failure",
			err: &UpstreamHTTPError{
				Status: 422,
				Body:   []byte(`{"message": "Validation Failed", "errors": [{"message": "A pull request already exists"}]}`),
			},
			want: false,
		},
		{
			name: "wrong status",
			err: &UpstreamHTTPError{
				Status: 404,
				Body:   []byte(`{"message": "Validation Failed", "errors": [{"message": "No commits between main and work"}]}`),
			},
			want: false,
		},
		{
			name: "wrong top-level message",
			err: &UpstreamHTTPError{
				Status: 422,
				Body:   []byte(`{"message": "Something else", "errors": [{"message": "No commits between main and work"}]}`),
			},
			want: false,
		},
		{
			name: "unparseable body",
			err:  &UpstreamHTTPError{Status: 422, Body: []byte(`not json`)},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("network down"),
			want: false,
		},
		{
			name: "typed 422 without matching message",
			err: &github.ErrorResponse{
				Response: &http.Response{StatusCode: 422},
				Message:  "Validation Failed",
				Errors:   []github.Error{{Message: "head invalid"}},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NoCommitsBetween(tt.err); got != tt.want {
				t.Errorf("NoCommitsBetween() = %v, want %v", got, tt.want)
			}
		})
	}
}

func reportTestClient(t *testing.T, gotBody *string) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/demo/issues/comments/555", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var payload struct {
			Body string `json:"body"`
		}
		json.Unmarshal(raw, &payload)
		*gotBody = payload.Body
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": 555}`)
	})
	return newTestClient(t, mux, nil)
}

func TestReportAndRaiseNoChanges(t *testing.T) {
	var gotBody string
	c := reportTestClient(t, &gotBody)

	cause := fmt.Errorf("create pull request: %w", noCommitsTypedError())
	err := c.ReportAndRaise(context.Background(), cause,
		"https://api.github.com/repos/acme/demo/issues/comments/555", "create pull request")

	if err == nil {
		t.Fatal("ReportAndRaise must never return nil")
	}
	if !errors.Is(err, cause) {
		t.Errorf("returned error must wrap the cause, got %v", err)
	}
	if gotBody != msg.NoChangesBody {
		t.Errorf("comment body = %q, want the no-changes body", gotBody)
	}
}

func TestReportAndRaiseGeneric(t *testing.T) {
	var gotBody string
	c := reportTestClient(t, &gotBody)

	cause := errors.New("network down")
	err := c.ReportAndRaise(context.Background(), cause,
		"https://api.github.com/repos/acme/demo/issues/comments/555", "resolve base branch")

	if err == nil {
		t.Fatal("ReportAndRaise must never return nil")
	}
	if gotBody != msg.ErrorBody {
		t.Errorf("comment body = %q, want the generic body", gotBody)
	}
}

// A missing comment URL skips the update but still raises.
func TestReportAndRaiseNoComment(t *testing.T) {
	c := newTestClient(t, http.NewServeMux(), nil)

	cause := errors.New("boom")
	err := c.ReportAndRaise(context.Background(), cause, "", "plan changes")
	if err == nil {
		t.Fatal("ReportAndRaise must never return nil")
	}
	if !errors.Is(err, cause) {
		t.Errorf("returned error must wrap the cause, got %v", err)
	}
}

// A failing comment update must not mask the original cause.
func TestReportAndRaiseUpdateFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/demo/issues/comments/555", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c := newTestClient(t, mux, nil)

	cause := errors.New("boom")
	err := c.ReportAndRaise(context.Background(), cause,
		"https://api.github.com/repos/acme/demo/issues/comments/555", "apply changes")
	if !errors.Is(err, cause) {
		t.Errorf("returned error must wrap the cause, got %v", err)
	}
}
