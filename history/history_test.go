package history

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/switcharoohelper/roohelper/roomod/issues"
	"github.com/switcharoohelper/roohelper/util/cliutil"

	"github.com/stretchr/testify/assert"
)

func testLog(t *testing.T) *Log {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := cliutil.SetupDatabase("sqlite://:memory:", 1, logger)
	if err != nil {
		t.Fatal(err)
	}
	l := NewLog(db, logger, issues.DefaultRegistry())
	ctx := context.Background()
	if err := l.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := l.SyncIssues(ctx); err != nil {
		t.Fatal(err)
	}
	return l
}

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestSyncIssuesIdempotent(t *testing.T) {
	assert := assert.New(t)
	l := testLog(t)

	assert.NoError(l.SyncIssues(context.Background()))
	var rows []Issue
	assert.NoError(l.db.Order("id").Find(&rows).Error)
	assert.Equal(len(issues.DefaultRegistry().All()), len(rows))
	assert.Equal(string(issues.LacksContext), rows[0].Type)
	assert.True(rows[0].Bad)
}

func TestAddAndGet(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l := testLog(t)

	c := 3
	roo, err := l.Add(ctx, Params{SubmissionID: "s1", ThreadID: "th1", CommentID: "c1", Context: &c, LinkPost: true, Time: t0}, issues.CommentLinkedWrong)
	assert.NoError(err)
	assert.NotZero(roo.ID)

	got, err := l.Get(ctx, "s1")
	assert.NoError(err)
	assert.Equal("th1", got.ThreadID)
	assert.Equal(3, *got.Context)
	assert.Equal([]string{"comment_linked_wrong"}, got.IssueTypes())
	assert.False(got.HasBadIssue())

	// adding the same submission again merges issues instead of duplicating the row
	_, err = l.Add(ctx, Params{SubmissionID: "s1", Time: t0}, issues.IsMeta)
	assert.NoError(err)
	got, err = l.Get(ctx, "s1")
	assert.NoError(err)
	assert.Equal("th1", got.ThreadID)
	assert.ElementsMatch([]string{"comment_linked_wrong", "is_meta"}, got.IssueTypes())
	assert.True(got.HasBadIssue())

	missing, err := l.Get(ctx, "nope")
	assert.NoError(err)
	assert.Nil(missing)

	_, err = l.Add(ctx, Params{SubmissionID: "s2"}, issues.Kind("made_up"))
	assert.Error(err)
}

func TestUpdate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l := testLog(t)

	roo, err := l.Add(ctx, Params{SubmissionID: "s1", LinkPost: true, Time: t0}, issues.SubmissionProcessing)
	assert.NoError(err)

	thread := "th9"
	c := 1
	got, err := l.Update(ctx, roo.ID, Update{
		ThreadID:     &thread,
		Context:      &c,
		AddIssues:    []issues.Kind{issues.TrailingSlash},
		RemoveIssues: []issues.Kind{issues.SubmissionProcessing},
	})
	assert.NoError(err)
	assert.Equal("th9", got.ThreadID)
	assert.Equal(1, *got.Context)
	assert.Equal([]string{"trailing_slash"}, got.IssueTypes())
}

func TestLastGood(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l := testLog(t)

	_, err := l.Add(ctx, Params{SubmissionID: "good-old", ThreadID: "a", CommentID: "1", LinkPost: true, Time: t0})
	assert.NoError(err)
	_, err = l.Add(ctx, Params{SubmissionID: "warned", ThreadID: "b", CommentID: "2", LinkPost: true, Time: t0.Add(time.Hour)}, issues.CommentLacksContext)
	assert.NoError(err)
	_, err = l.Add(ctx, Params{SubmissionID: "removed", ThreadID: "c", CommentID: "3", LinkPost: true, Time: t0.Add(2 * time.Hour)}, issues.NotReddit)
	assert.NoError(err)
	_, err = l.Add(ctx, Params{SubmissionID: "selfpost", LinkPost: false, Time: t0.Add(3 * time.Hour)})
	assert.NoError(err)

	got, err := l.LastGood(ctx, t0.Add(24*time.Hour))
	assert.NoError(err)
	// minor issues do not disqualify a roo
	assert.Equal("warned", got.SubmissionID)

	got, err = l.LastGood(ctx, t0.Add(time.Hour))
	assert.NoError(err)
	assert.Equal("good-old", got.SubmissionID)

	got, err = l.LastGood(ctx, t0)
	assert.NoError(err)
	assert.Nil(got)
}

func TestLastSubmission(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l := testLog(t)

	_, err := l.Add(ctx, Params{SubmissionID: "first", Time: t0})
	assert.NoError(err)
	_, err = l.Add(ctx, Params{SubmissionID: "second", Time: t0.Add(time.Minute)}, issues.CommentLinkedWrong)
	assert.NoError(err)
	_, err = l.Add(ctx, Params{SubmissionID: "deleted", Time: t0.Add(2 * time.Minute)}, issues.SubmissionDeleted)
	assert.NoError(err)
	_, err = l.Add(ctx, Params{SubmissionID: "pending", Time: t0.Add(3 * time.Minute)}, issues.SubmissionProcessing)
	assert.NoError(err)

	got, err := l.LastSubmission(ctx, 0)
	assert.NoError(err)
	assert.Equal("second", got.SubmissionID)

	got, err = l.LastSubmission(ctx, 1)
	assert.NoError(err)
	assert.Equal("first", got.SubmissionID)

	got, err = l.LastSubmission(ctx, 2)
	assert.NoError(err)
	assert.Nil(got)

	got, err = l.Last(ctx)
	assert.NoError(err)
	assert.Equal("pending", got.SubmissionID)
}

func TestSearch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l := testLog(t)

	_, err := l.Add(ctx, Params{SubmissionID: "s1", ThreadID: "th1", CommentID: "c1", LinkPost: true, Time: t0})
	assert.NoError(err)

	got, err := l.Search(ctx, "th1", "c1")
	assert.NoError(err)
	assert.Equal("s1", got.SubmissionID)

	got, err = l.Search(ctx, "th1", "c2")
	assert.NoError(err)
	assert.Nil(got)
}

func TestDelete(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	l := testLog(t)

	_, err := l.Add(ctx, Params{SubmissionID: "s1", LinkPost: true, Time: t0}, issues.SubmissionProcessing)
	assert.NoError(err)
	assert.NoError(l.Delete(ctx, "s1"))

	got, err := l.Get(ctx, "s1")
	assert.NoError(err)
	assert.Nil(got)

	var links int64
	assert.NoError(l.db.Table("switcharoo_issues").Count(&links).Error)
	assert.Zero(links)

	// not recorded
	assert.NoError(l.Delete(ctx, "s1"))

	// can be recorded again afterwards
	_, err = l.Add(ctx, Params{SubmissionID: "s1", LinkPost: true, Time: t0}, issues.IsMeta)
	assert.NoError(err)
}
