package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

var ErrNotFound = errors.New("reddit thing not found")

// Submission fetches a link or self post by ID, with or without the "t3_" prefix.
func (c *Client) Submission(ctx context.Context, id string) (*Submission, error) {
	var l listing
	if err := c.do(ctx, c.readClient(), "GET", "/by_id/"+fullname(KindSubmission, id), nil, nil, &l); err != nil {
		return nil, err
	}
	sub, err := firstChild[Submission](&l, KindSubmission)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sub, nil
}

func (c *Client) Comment(ctx context.Context, id string) (*Comment, error) {
	var l listing
	params := url.Values{"id": []string{fullname(KindComment, id)}}
	if err := c.do(ctx, c.readClient(), "GET", "/api/info", params, nil, &l); err != nil {
		return nil, err
	}
	cmt, err := firstChild[Comment](&l, KindComment)
	if err != nil {
		return nil, err
	}
	if cmt == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cmt, nil
}

type commentForm struct {
	APIType string `url:"api_type"`
	ThingID string `url:"thing_id"`
	Text    string `url:"text"`
}

// Reply posts a comment in reply to a submission or comment, identified by fullname.
func (c *Client) Reply(ctx context.Context, parent, text string) (*Comment, error) {
	var resp jsonResponse
	form := commentForm{APIType: "json", ThingID: parent, Text: text}
	if err := c.do(ctx, c.actionClient(), "POST", "/api/comment", nil, form, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	for _, t := range resp.JSON.Data.Things {
		if t.Kind != KindComment {
			continue
		}
		var cmt Comment
		if err := json.Unmarshal(t.Data, &cmt); err != nil {
			return nil, fmt.Errorf("decoding reply: %w", err)
		}
		return &cmt, nil
	}
	return nil, fmt.Errorf("reply to %s returned no comment", parent)
}

type distinguishForm struct {
	APIType string `url:"api_type"`
	ID      string `url:"id"`
	How     string `url:"how"`
}

// Distinguish marks a comment as a moderator comment. The comment is not stickied.
func (c *Client) Distinguish(ctx context.Context, commentID string) error {
	var resp jsonResponse
	form := distinguishForm{APIType: "json", ID: fullname(KindComment, commentID), How: "yes"}
	if err := c.do(ctx, c.actionClient(), "POST", "/api/distinguish", nil, form, &resp); err != nil {
		return err
	}
	return resp.err()
}

type removeForm struct {
	ID   string `url:"id"`
	Spam bool   `url:"spam"`
}

// Remove takes down a submission as a moderator. It is never marked as spam.
func (c *Client) Remove(ctx context.Context, submissionID string) error {
	form := removeForm{ID: fullname(KindSubmission, submissionID)}
	return c.do(ctx, c.actionClient(), "POST", "/api/remove", nil, form, nil)
}

type composeForm struct {
	APIType string `url:"api_type"`
	To      string `url:"to"`
	Subject string `url:"subject"`
	Text    string `url:"text"`
}

// Compose sends a private message. Addressing "/r/<name>" sends modmail to that subreddit.
func (c *Client) Compose(ctx context.Context, to, subject, text string) error {
	var resp jsonResponse
	form := composeForm{APIType: "json", To: to, Subject: subject, Text: text}
	if err := c.do(ctx, c.actionClient(), "POST", "/api/compose", nil, form, &resp); err != nil {
		return err
	}
	return resp.err()
}

// Modmail delivers notifications to a subreddit's moderators.
type Modmail struct {
	Client    *Client
	Subreddit string
}

func (m *Modmail) Notify(ctx context.Context, subject, body string) error {
	return m.Client.Compose(ctx, "/r/"+m.Subreddit, subject, body)
}
