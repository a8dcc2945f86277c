package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/switcharoohelper/roohelper/history"
	"github.com/switcharoohelper/roohelper/reddit"
	"github.com/switcharoohelper/roohelper/roomod"
)

const redditBaseURL = "https://www.reddit.com"

// wraps a fetched reddit submission with the moderation capabilities the engine needs
type redditSubmission struct {
	client *reddit.Client
	sub    *reddit.Submission
}

func (s *redditSubmission) Permalink() string {
	return s.sub.Permalink
}

func (s *redditSubmission) URL() string {
	return s.sub.URL
}

func (s *redditSubmission) Reply(ctx context.Context, text string) (roomod.CommentRef, error) {
	cmt, err := s.client.Reply(ctx, s.sub.Name, text)
	if err != nil {
		return nil, err
	}
	return &redditComment{client: s.client, id: cmt.ID}, nil
}

func (s *redditSubmission) RemoveAsModerator(ctx context.Context) error {
	return s.client.Remove(ctx, s.sub.ID)
}

type redditComment struct {
	client *reddit.Client
	id     string
}

func (c *redditComment) DistinguishAsModerator(ctx context.Context) error {
	return c.client.Distinguish(ctx, c.id)
}

// Where a switcharoo link points: a comment in a thread, with an optional "?context=" depth.
type rooLink struct {
	ThreadID  string
	CommentID string
	Context   *int
}

// parses links of the form "https://www.reddit.com/r/<sub>/comments/<thread>/<slug>/<comment>/?context=N". Short links without a subreddit are also accepted.
func parseRooLink(raw string) (*rooLink, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	idx := -1
	for i, p := range parts {
		if p == "comments" {
			idx = i
			break
		}
	}
	if idx < 0 || len(parts) < idx+4 {
		return nil, fmt.Errorf("not a reddit comment link: %s", raw)
	}
	link := &rooLink{ThreadID: parts[idx+1], CommentID: parts[idx+3]}
	if c := u.Query().Get("context"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil {
			return nil, fmt.Errorf("bad context value %q: %w", c, err)
		}
		link.Context = &n
	}
	return link, nil
}

// rebuilds a prior-good reference from a recorded switcharoo. Returns nil if the record has no linked comment.
func priorFromHistory(roo *history.Switcharoo) roomod.PriorGood {
	if roo == nil || roo.ThreadID == "" || roo.CommentID == "" {
		return nil
	}
	permalink := fmt.Sprintf("/comments/%s/_/%s/", roo.ThreadID, roo.CommentID)
	u := redditBaseURL + permalink
	if roo.Context != nil {
		u += fmt.Sprintf("?context=%d", *roo.Context)
	}
	return roomod.PriorGoodRef{URL: u, Permalink: permalink}
}

func historyParams(sub *reddit.Submission) history.Params {
	p := history.Params{
		SubmissionID: sub.ID,
		LinkPost:     !sub.IsSelf,
	}
	if sub.CreatedUTC > 0 {
		p.Time = time.Unix(int64(sub.CreatedUTC), 0).UTC()
	}
	if link, err := parseRooLink(sub.URL); err == nil {
		p.ThreadID = link.ThreadID
		p.CommentID = link.CommentID
		p.Context = link.Context
	}
	return p
}
