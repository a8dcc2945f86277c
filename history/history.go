package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/switcharoohelper/roohelper/roomod/issues"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record of every switcharoo the helper has seen, and the issues found on each.
type Log struct {
	db       *gorm.DB
	logger   *slog.Logger
	registry *issues.Registry
}

func NewLog(db *gorm.DB, logger *slog.Logger, reg *issues.Registry) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = issues.DefaultRegistry()
	}
	return &Log{
		db:       db,
		logger:   logger.With("component", "history"),
		registry: reg,
	}
}

// Creates or updates tables. Does not drop or rename anything.
func (l *Log) Migrate(ctx context.Context) error {
	return l.db.WithContext(ctx).AutoMigrate(&Issue{}, &Switcharoo{})
}

// SyncIssues upserts every registry entry into the issue table, so that persisted "bad" flags match the running registry.
func (l *Log) SyncIssues(ctx context.Context) error {
	rows := []Issue{}
	for _, iss := range l.registry.All() {
		rows = append(rows, Issue{ID: uint(iss.ID), Type: string(iss.Kind), Bad: iss.Severe})
	}
	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "bad"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("syncing issue table: %w", err)
	}
	l.logger.Info("synced issue table", "count", len(rows))
	return nil
}

func (l *Log) issueRows(kinds []issues.Kind) ([]Issue, error) {
	out := make([]Issue, 0, len(kinds))
	for _, k := range kinds {
		iss, err := l.registry.Lookup(k)
		if err != nil {
			return nil, err
		}
		out = append(out, Issue{ID: uint(iss.ID), Type: string(iss.Kind), Bad: iss.Severe})
	}
	return out, nil
}

type Params struct {
	SubmissionID string
	ThreadID     string
	CommentID    string
	Context      *int
	LinkPost     bool
	// defaults to now
	Time time.Time
}

// Add records a switcharoo, attaching the given issues. If the submission is already recorded, the existing row is updated instead.
func (l *Log) Add(ctx context.Context, p Params, kinds ...issues.Kind) (*Switcharoo, error) {
	rows, err := l.issueRows(kinds)
	if err != nil {
		return nil, err
	}
	if p.Time.IsZero() {
		p.Time = time.Now().UTC()
	}

	existing, err := l.Get(ctx, p.SubmissionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		l.logger.Debug("switcharoo already recorded, updating", "submission", p.SubmissionID)
		return l.Update(ctx, existing.ID, Update{
			ThreadID:  optional(p.ThreadID),
			CommentID: optional(p.CommentID),
			Context:   p.Context,
			AddIssues: kinds,
		})
	}

	roo := Switcharoo{
		Time:         p.Time,
		SubmissionID: p.SubmissionID,
		ThreadID:     p.ThreadID,
		CommentID:    p.CommentID,
		Context:      p.Context,
		LinkPost:     p.LinkPost,
		Issues:       rows,
	}
	if err := l.db.WithContext(ctx).Create(&roo).Error; err != nil {
		return nil, fmt.Errorf("recording switcharoo %s: %w", p.SubmissionID, err)
	}
	return &roo, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Fields left nil are not modified.
type Update struct {
	ThreadID     *string
	CommentID    *string
	Context      *int
	Time         *time.Time
	AddIssues    []issues.Kind
	RemoveIssues []issues.Kind
}

func (l *Log) Update(ctx context.Context, id uint, u Update) (*Switcharoo, error) {
	add, err := l.issueRows(u.AddIssues)
	if err != nil {
		return nil, err
	}
	remove, err := l.issueRows(u.RemoveIssues)
	if err != nil {
		return nil, err
	}

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roo := Switcharoo{ID: id}
		fields := map[string]any{}
		if u.ThreadID != nil {
			fields["thread_id"] = *u.ThreadID
		}
		if u.CommentID != nil {
			fields["comment_id"] = *u.CommentID
		}
		if u.Context != nil {
			fields["context"] = *u.Context
		}
		if u.Time != nil {
			fields["time"] = *u.Time
		}
		if len(fields) > 0 {
			if err := tx.Model(&roo).Updates(fields).Error; err != nil {
				return err
			}
		}
		if len(add) > 0 {
			if err := tx.Model(&roo).Association("Issues").Append(&add); err != nil {
				return err
			}
		}
		if len(remove) > 0 {
			if err := tx.Model(&roo).Association("Issues").Delete(&remove); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating switcharoo %d: %w", id, err)
	}
	return l.first(ctx, l.db.Where("id = ?", id))
}

// Delete removes a switcharoo record and its issue links. Deleting a submission which is not recorded is not an error.
func (l *Log) Delete(ctx context.Context, submissionID string) error {
	roo, err := l.Get(ctx, submissionID)
	if err != nil || roo == nil {
		return err
	}
	if err := l.db.WithContext(ctx).Select("Issues").Delete(roo).Error; err != nil {
		return fmt.Errorf("deleting switcharoo %s: %w", submissionID, err)
	}
	return nil
}

// runs the query and returns the first result with issues preloaded, or nil if there were no results
func (l *Log) first(ctx context.Context, q *gorm.DB) (*Switcharoo, error) {
	var roo Switcharoo
	err := q.WithContext(ctx).Preload("Issues", func(db *gorm.DB) *gorm.DB {
		return db.Order("issues.id")
	}).First(&roo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &roo, nil
}

// Get looks up a switcharoo by reddit submission ID. Returns nil if not found.
func (l *Log) Get(ctx context.Context, submissionID string) (*Switcharoo, error) {
	return l.first(ctx, l.db.Where("submission_id = ?", submissionID))
}

// LastGood returns the most recent link-post switcharoo with a linked comment and no bad issues, strictly before the given time. Returns nil if there is none.
func (l *Log) LastGood(ctx context.Context, before time.Time) (*Switcharoo, error) {
	bad := l.db.Table("switcharoo_issues").
		Select("switcharoo_issues.switcharoo_id").
		Joins("JOIN issues ON issues.id = switcharoo_issues.issue_id").
		Where("issues.bad = ?", true)
	q := l.db.Where("link_post = ? AND comment_id <> ? AND time < ? AND id NOT IN (?)", true, "", before, bad).
		Order("time desc")
	return l.first(ctx, q)
}

// LastSubmission returns the offset-th most recent switcharoo which was not deleted and is not still being processed.
func (l *Log) LastSubmission(ctx context.Context, offset int) (*Switcharoo, error) {
	skip := []uint{}
	for _, k := range []issues.Kind{issues.SubmissionDeleted, issues.SubmissionProcessing} {
		iss, err := l.registry.Lookup(k)
		if err != nil {
			return nil, err
		}
		skip = append(skip, uint(iss.ID))
	}
	marked := l.db.Table("switcharoo_issues").
		Select("switcharoo_id").
		Where("issue_id IN ?", skip)
	q := l.db.Where("id NOT IN (?)", marked).Order("time desc").Offset(offset)
	return l.first(ctx, q)
}

// Last returns the most recently recorded switcharoo, regardless of issues.
func (l *Log) Last(ctx context.Context) (*Switcharoo, error) {
	return l.first(ctx, l.db.Order("time desc"))
}

// Search finds a switcharoo by the thread and comment it links to.
func (l *Log) Search(ctx context.Context, threadID, commentID string) (*Switcharoo, error) {
	return l.first(ctx, l.db.Where("thread_id = ? AND comment_id = ?", threadID, commentID))
}
