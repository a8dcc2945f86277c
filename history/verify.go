package history

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/switcharoohelper/roohelper/reddit"
	"github.com/switcharoohelper/roohelper/roomod/issues"
)

// Platform reads used to re-check recorded switcharoos. Satisfied by *reddit.Client.
type Fetcher interface {
	Submission(ctx context.Context, id string) (*reddit.Submission, error)
	Comment(ctx context.Context, id string) (*reddit.Comment, error)
}

const verifyPageSize = 10

// Verify walks switcharoos recorded before the given time, newest first, until it finds one which could be returned by LastGood and still exists on the platform.
//
// Roos which were removed or deleted are marked submission_deleted, and roos whose linked comment is gone are marked comment_deleted. Returns the number of roos marked.
func (l *Log) Verify(ctx context.Context, f Fetcher, before time.Time) (int, error) {
	marked := 0
	for offset := 0; ; offset += verifyPageSize {
		var page []Switcharoo
		err := l.db.WithContext(ctx).
			Preload("Issues").
			Where("time < ?", before).
			Order("time desc").
			Offset(offset).
			Limit(verifyPageSize).
			Find(&page).Error
		if err != nil {
			return marked, fmt.Errorf("listing switcharoos: %w", err)
		}
		if len(page) == 0 {
			return marked, nil
		}

		for _, roo := range page {
			// in-flight and already disqualified roos are never a last good candidate
			if !roo.LinkPost || roo.CommentID == "" || roo.HasBadIssue() {
				continue
			}
			kind, err := l.check(ctx, f, &roo)
			if err != nil {
				return marked, err
			}
			if kind == "" {
				l.logger.Debug("verified switcharoo", "submission", roo.SubmissionID, "marked", marked)
				return marked, nil
			}
			l.logger.Info("marking switcharoo", "submission", roo.SubmissionID, "issue", kind)
			if _, err := l.Update(ctx, roo.ID, Update{AddIssues: []issues.Kind{kind}}); err != nil {
				return marked, err
			}
			marked++
		}
	}
}

// returns the lifecycle issue to attach, or the empty kind if the roo is still intact
func (l *Log) check(ctx context.Context, f Fetcher, roo *Switcharoo) (issues.Kind, error) {
	sub, err := f.Submission(ctx, roo.SubmissionID)
	if unavailable(err) {
		return issues.SubmissionDeleted, nil
	}
	if err != nil {
		return "", fmt.Errorf("fetching submission %s: %w", roo.SubmissionID, err)
	}
	if sub.Gone() {
		return issues.SubmissionDeleted, nil
	}

	cmt, err := f.Comment(ctx, roo.CommentID)
	if unavailable(err) {
		return issues.CommentDeleted, nil
	}
	if err != nil {
		return "", fmt.Errorf("fetching comment %s: %w", roo.CommentID, err)
	}
	if cmt.Deleted() {
		return issues.CommentDeleted, nil
	}
	return "", nil
}

func unavailable(err error) bool {
	if errors.Is(err, reddit.ErrNotFound) {
		return true
	}
	var ae *reddit.APIError
	if errors.As(err, &ae) {
		return ae.StatusCode == http.StatusBadRequest || ae.StatusCode == http.StatusNotFound
	}
	return false
}
