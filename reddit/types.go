package reddit

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fullname prefixes
const (
	KindComment    = "t1"
	KindSubmission = "t3"
)

type Submission struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Title             string  `json:"title"`
	Author            string  `json:"author"`
	Subreddit         string  `json:"subreddit"`
	Permalink         string  `json:"permalink"`
	URL               string  `json:"url"`
	IsSelf            bool    `json:"is_self"`
	Over18            bool    `json:"over_18"`
	RemovedByCategory *string `json:"removed_by_category"`
	CreatedUTC        float64 `json:"created_utc"`

	// moderator-only fields; banned_by is a username, or "true" for spam filter removals
	BannedBy   any     `json:"banned_by"`
	ApprovedBy *string `json:"approved_by"`
	Removed    bool    `json:"removed"`
}

// Gone is true if the submission was removed by a moderator and not re-approved, or deleted by its author.
func (s *Submission) Gone() bool {
	if s.BannedBy != nil && s.BannedBy != false && s.ApprovedBy == nil {
		return true
	}
	return s.Removed || s.Author == "[deleted]"
}

type Comment struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Permalink  string  `json:"permalink"`
	LinkID     string  `json:"link_id"`
	ParentID   string  `json:"parent_id"`
	CreatedUTC float64 `json:"created_utc"`
}

func (c *Comment) Deleted() bool {
	return c.Author == "[deleted]" || c.Body == "[deleted]" || c.Body == "[removed]"
}

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

// Reply shape for "api_type=json" POST endpoints. Each error is a [code, message, field] triple.
type jsonResponse struct {
	JSON struct {
		Errors [][]string `json:"errors"`
		Data   struct {
			Things []thing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

func (r *jsonResponse) err() error {
	if len(r.JSON.Errors) == 0 {
		return nil
	}
	parts := []string{}
	for _, e := range r.JSON.Errors {
		parts = append(parts, strings.Join(e, ": "))
	}
	return &APIError{StatusCode: 200, Body: strings.Join(parts, "; ")}
}

func fullname(kind, id string) string {
	if strings.HasPrefix(id, kind+"_") {
		return id
	}
	return kind + "_" + id
}

func firstChild[T any](l *listing, kind string) (*T, error) {
	for _, c := range l.Data.Children {
		if c.Kind != kind {
			continue
		}
		var out T
		if err := json.Unmarshal(c.Data, &out); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", kind, err)
		}
		return &out, nil
	}
	return nil, nil
}
