package history

import (
	"time"
)

// A switcharoo submission, as recorded by the helper.
type Switcharoo struct {
	ID           uint      `gorm:"primarykey"`
	Time         time.Time `gorm:"index;not null"`
	SubmissionID string    `gorm:"uniqueIndex;not null"`
	ThreadID     string
	CommentID    string
	// value of the "?context=" suffix, if any
	Context  *int
	LinkPost bool    `gorm:"not null"`
	Issues   []Issue `gorm:"many2many:switcharoo_issues;"`
}

// Persisted copy of an issue registry entry. The primary key is the registry ID, not auto-incremented.
type Issue struct {
	ID   uint   `gorm:"primarykey;autoIncrement:false"`
	Type string `gorm:"uniqueIndex;not null"`
	Bad  bool   `gorm:"not null"`
}

func (s *Switcharoo) IssueTypes() []string {
	out := make([]string, len(s.Issues))
	for i, iss := range s.Issues {
		out[i] = iss.Type
	}
	return out
}

// HasBadIssue is true if any attached issue is severe.
func (s *Switcharoo) HasBadIssue() bool {
	for _, iss := range s.Issues {
		if iss.Bad {
			return true
		}
	}
	return false
}
