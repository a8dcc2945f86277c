package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/switcharoohelper/roohelper/roomod/issues"

	"github.com/stretchr/testify/assert"
)

func TestEngineProcessSubmission(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	mb := &MockMailbox{}
	eng := EngineTestFixture(mb)
	sub := &MockSubmission{PermalinkPath: "/r/switcharoo/comments/e1/", LinkURL: "https://www.reddit.com/r/a/comments/b/_/c/"}

	status, err := eng.GetStatus(ctx, sub.Permalink())
	assert.NoError(err)
	assert.Equal(StatusUnseen, status)

	out, err := eng.ProcessSubmission(ctx, sub, []issues.Kind{issues.LacksContext, issues.IsMeta}, nil)
	assert.NoError(err)
	assert.NotNil(out)
	assert.Equal(ActionDelete, out.Decision.Action())
	assert.Equal(ComposeWithGreeting(out.Decision, DefaultGreetings[0]), out.Message)
	assert.Equal([]string{StepReply, StepDistinguish, StepRemove}, sub.Calls)
	assert.Equal([]string{out.Message}, sub.Replies)

	status, err = eng.GetStatus(ctx, sub.Permalink())
	assert.NoError(err)
	assert.Equal(StatusDispatched, status)

	flags, err := eng.Flags.Get(ctx, sub.Permalink())
	assert.NoError(err)
	assert.Equal([]string{"is_meta", "lacks_context"}, flags)

	c, err := eng.Counters.GetCount(ctx, "action", "delete", "day")
	assert.NoError(err)
	assert.Equal(1, c)

	// never dispatched twice
	_, err = eng.ProcessSubmission(ctx, sub, []issues.Kind{issues.LacksContext}, nil)
	assert.True(errors.Is(err, ErrAlreadyDispatched))
	assert.Equal(3, len(sub.Calls))
}

func TestEngineNoIssues(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture(nil)
	sub := &MockSubmission{PermalinkPath: "/r/switcharoo/comments/e2/"}
	out, err := eng.ProcessSubmission(ctx, sub, nil, nil)
	assert.NoError(err)
	assert.Nil(out)
	assert.Empty(sub.Calls)

	status, err := eng.GetStatus(ctx, sub.Permalink())
	assert.NoError(err)
	assert.Equal(StatusUnseen, status)
}

func TestEngineMissingContextNoDispatch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture(nil)
	sub := &MockSubmission{PermalinkPath: "/r/switcharoo/comments/e3/"}
	_, err := eng.ProcessSubmission(ctx, sub, []issues.Kind{issues.CommentLinkedWrong}, nil)
	assert.True(errors.Is(err, ErrMissingContext))
	assert.Empty(sub.Calls)
}

func TestEngineEscalation(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	mb := &MockMailbox{}
	eng := EngineTestFixture(mb)
	sub := &MockSubmission{PermalinkPath: "/r/switcharoo/comments/e4/", LinkURL: "https://www.reddit.com/r/x/comments/y/_/z/?context=2"}
	out, err := eng.ProcessSubmission(ctx, sub, []issues.Kind{issues.CommentLacksContext}, testPrior)
	assert.NoError(err)
	assert.Equal(ActionWarn, out.Decision.Action())
	assert.Equal([]string{StepReply, StepDistinguish}, sub.Calls)
	assert.Equal([]string{sub.LinkURL}, mb.Bodies)
}

func TestEngineEscalationWithoutMailbox(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture(nil)
	sub := &MockSubmission{PermalinkPath: "/r/switcharoo/comments/e5/", LinkURL: "https://www.reddit.com/r/x/comments/y/_/z/?context=2"}
	_, err := eng.ProcessSubmission(ctx, sub, []issues.Kind{issues.CommentLacksContext}, testPrior)
	assert.True(errors.Is(err, ErrNoMailbox))
	assert.Empty(sub.Calls)

	// running again still does nothing on the platform
	_, err = eng.ProcessSubmission(ctx, sub, []issues.Kind{issues.CommentLacksContext}, testPrior)
	assert.True(errors.Is(err, ErrNoMailbox))
	assert.Empty(sub.Calls)
}

func TestEngineRemovalQuota(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture(nil)
	eng.RemovalQuotaDay = 1

	sub1 := &MockSubmission{PermalinkPath: "/r/switcharoo/comments/q1/"}
	_, err := eng.ProcessSubmission(ctx, sub1, []issues.Kind{issues.NotReddit}, nil)
	assert.NoError(err)

	sub2 := &MockSubmission{PermalinkPath: "/r/switcharoo/comments/q2/"}
	_, err = eng.ProcessSubmission(ctx, sub2, []issues.Kind{issues.NotReddit}, nil)
	assert.True(errors.Is(err, ErrRemovalQuota))
	assert.Empty(sub2.Calls)

	// warnings are not subject to the removal quota
	sub3 := &MockSubmission{PermalinkPath: "/r/switcharoo/comments/q3/"}
	_, err = eng.ProcessSubmission(ctx, sub3, []issues.Kind{issues.CommentLinkedWrong}, testPrior)
	assert.NoError(err)
	assert.Equal([]string{StepReply, StepDistinguish}, sub3.Calls)
}

func TestEngineDispatchFailureLeavesEvaluated(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := EngineTestFixture(nil)
	sub := &MockSubmission{PermalinkPath: "/r/switcharoo/comments/f1/", ReplyErr: errors.New("503")}
	_, err := eng.ProcessSubmission(ctx, sub, []issues.Kind{issues.IsMeta}, nil)
	var de *DispatchError
	assert.True(errors.As(err, &de))
	assert.True(de.Retryable())

	status, err := eng.GetStatus(ctx, sub.Permalink())
	assert.NoError(err)
	assert.Equal(StatusEvaluated, status)

	// a retry after the platform recovers goes through
	sub.ReplyErr = nil
	_, err = eng.ProcessSubmission(ctx, sub, []issues.Kind{issues.IsMeta}, nil)
	assert.NoError(err)
}

func TestEngineEvaluate(t *testing.T) {
	assert := assert.New(t)

	eng := EngineTestFixture(nil)
	out, err := eng.Evaluate(testSub, []issues.Kind{issues.IsNSFW, issues.CommentLinkedWrong}, testPrior)
	assert.NoError(err)
	assert.Equal(ActionDelete, out.Decision.Action())
	assert.Contains(out.Message, "* Your switcharoo is not linked to the correct roo.")
}
