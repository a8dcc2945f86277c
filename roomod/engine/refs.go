package engine

import (
	"context"
)

// Read-only view of a submission, as needed by the decision engine.
type Submission interface {
	// Path-only permalink, eg "/r/switcharoo/comments/abc123/title/"
	Permalink() string
	// The link the submission points at (for link posts)
	URL() string
}

// Submission handle with the moderation capabilities used by the dispatcher.
type SubmissionRef interface {
	Submission
	Reply(ctx context.Context, text string) (CommentRef, error)
	RemoveAsModerator(ctx context.Context) error
}

type CommentRef interface {
	DistinguishAsModerator(ctx context.Context) error
}

// The most recent switcharoo in the chain with no bad issues. Nullable wherever it is accepted.
type PriorGood interface {
	SubmissionURL() string
	CommentPermalink() string
}

// Private channel to the moderation team.
type ModerationMailbox interface {
	Notify(ctx context.Context, subject, body string) error
}

// Plain value implementation of PriorGood.
type PriorGoodRef struct {
	URL       string
	Permalink string
}

func (p PriorGoodRef) SubmissionURL() string {
	return p.URL
}

func (p PriorGoodRef) CommentPermalink() string {
	return p.Permalink
}
