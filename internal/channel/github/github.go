// Package github implements a channel Sink that opens a GitHub issue per
// alert, so the silence leaves a durable, visible record.
package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// issueCreator abstracts the Issues service method we use, enabling test mocks.
type issueCreator interface {
	Create(ctx context.Context, owner, repo string, issue *gh.IssueRequest) (*gh.Issue, *gh.Response, error)
}

// Sink files an alert as an issue in the configured repository. The
// recipient id is Telegram-scoped and is ignored; repo watchers are the
// audience.
type Sink struct {
	issues issueCreator
	owner  string
	repo   string
}

// Opts holds parameters for creating a Sink.
type Opts struct {
	Token string
	Owner string
	Repo  string
	// For testing: inject a mock issue service instead of the real API.
	Issues issueCreator
}

// New creates a GitHub Sink.
func New(opts Opts) (*Sink, error) {
	if opts.Issues == nil && opts.Token == "" {
		return nil, fmt.Errorf("github: token is required")
	}
	if opts.Owner == "" || opts.Repo == "" {
		return nil, fmt.Errorf("github: owner and repo are required")
	}

	s := &Sink{owner: opts.Owner, repo: opts.Repo}
	if opts.Issues != nil {
		s.issues = opts.Issues
		return s, nil
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	client := gh.NewClient(oauth2.NewClient(context.Background(), ts))
	s.issues = client.Issues
	return s, nil
}

// Name identifies this channel in delivery-failure reports.
func (s *Sink) Name() string { return "github" }

// Deliver opens an issue carrying the alert text.
func (s *Sink) Deliver(ctx context.Context, _ int64, text string) error {
	req := &gh.IssueRequest{
		Title:  gh.String("Dead man's switch alert"),
		Body:   gh.String(text),
		Labels: &[]string{"deadman-alert"},
	}
	if _, _, err := s.issues.Create(ctx, s.owner, s.repo, req); err != nil {
		return fmt.Errorf("github: create issue in %s/%s: %w", s.owner, s.repo, err)
	}
	return nil
}
