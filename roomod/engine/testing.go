package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/switcharoohelper/roohelper/roomod/cachestore"
	"github.com/switcharoohelper/roohelper/roomod/countstore"
	"github.com/switcharoohelper/roohelper/roomod/flagstore"
)

// In-memory SubmissionRef which records every call made against it. Exported for use in other packages' tests.
type MockSubmission struct {
	PermalinkPath string
	LinkURL       string

	// if set, returned from the corresponding call
	ReplyErr       error
	DistinguishErr error
	RemoveErr      error

	mu      sync.Mutex
	Calls   []string
	Replies []string
}

var _ SubmissionRef = (*MockSubmission)(nil)

func (m *MockSubmission) Permalink() string {
	return m.PermalinkPath
}

func (m *MockSubmission) URL() string {
	return m.LinkURL
}

func (m *MockSubmission) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockSubmission) Reply(ctx context.Context, text string) (CommentRef, error) {
	m.record(StepReply)
	if m.ReplyErr != nil {
		return nil, m.ReplyErr
	}
	m.mu.Lock()
	m.Replies = append(m.Replies, text)
	m.mu.Unlock()
	return &mockComment{sub: m}, nil
}

func (m *MockSubmission) RemoveAsModerator(ctx context.Context) error {
	m.record(StepRemove)
	return m.RemoveErr
}

type mockComment struct {
	sub *MockSubmission
}

func (c *mockComment) DistinguishAsModerator(ctx context.Context) error {
	c.sub.record(StepDistinguish)
	return c.sub.DistinguishErr
}

type MockMailbox struct {
	NotifyErr error

	mu       sync.Mutex
	Subjects []string
	Bodies   []string
}

var _ ModerationMailbox = (*MockMailbox)(nil)

func (m *MockMailbox) Notify(ctx context.Context, subject, body string) error {
	if m.NotifyErr != nil {
		return m.NotifyErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Subjects = append(m.Subjects, subject)
	m.Bodies = append(m.Bodies, body)
	return nil
}

// Greeting picker which always returns the first greeting.
func FirstGreeting(n int) int {
	return 0
}

// Engine wired to in-memory stores, a ModDispatcher, and a deterministic greeting.
func EngineTestFixture(mailbox ModerationMailbox) Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return Engine{
		Logger:   logger,
		Composer: Composer{Pick: FirstGreeting},
		Dispatcher: &ModDispatcher{
			Logger:  logger,
			Mailbox: mailbox,
		},
		Status:   cachestore.NewMemCacheStore(100, time.Hour),
		Flags:    flagstore.NewMemFlagStore(),
		Counters: countstore.NewMemCountStore(),
	}
}
