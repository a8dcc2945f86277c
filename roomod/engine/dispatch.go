package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

const escalationSubject = "switcharoohelper requests assistance"

// Executes a decision against the platform. Side effects are irreversible; callers must not dispatch the same evaluation twice.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub SubmissionRef, d Decision, message string) error
}

// Replies, distinguishes, removes (for delete decisions), and escalates (when requested), in that order. Stops at the first failure.
type ModDispatcher struct {
	Logger *slog.Logger
	// required if any decision escalates
	Mailbox ModerationMailbox
}

var _ Dispatcher = (*ModDispatcher)(nil)

func (md *ModDispatcher) Dispatch(ctx context.Context, sub SubmissionRef, d Decision, message string) error {
	logger := md.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("permalink", sub.Permalink(), "action", d.Action().String())

	if d.Action() == ActionNone {
		logger.Debug("nothing to dispatch")
		return nil
	}

	// nothing may reach the platform if the escalation cannot be delivered
	if d.Escalate() && md.Mailbox == nil {
		return ErrNoMailbox
	}

	logger.Info("replying to submission", "remove", d.Action() == ActionDelete)
	comment, err := sub.Reply(ctx, message)
	if err != nil {
		dispatchFailures.WithLabelValues(StepReply).Inc()
		return &DispatchError{Step: StepReply, Err: err}
	}
	if err := comment.DistinguishAsModerator(ctx); err != nil {
		dispatchFailures.WithLabelValues(StepDistinguish).Inc()
		return &DispatchError{Step: StepDistinguish, Err: err}
	}

	if d.Action() == ActionDelete {
		logger.Warn("removing submission")
		if err := sub.RemoveAsModerator(ctx); err != nil {
			dispatchFailures.WithLabelValues(StepRemove).Inc()
			return &DispatchError{Step: StepRemove, Err: err}
		}
		actionRemovalCount.Inc()
	}

	if d.Escalate() {
		logger.Info("requesting moderator assistance")
		if err := md.Mailbox.Notify(ctx, escalationSubject, sub.URL()); err != nil {
			dispatchFailures.WithLabelValues(StepNotify).Inc()
			return &DispatchError{Step: StepNotify, Err: err}
		}
		actionEscalationCount.Inc()
	}
	return nil
}

// Dry-run dispatcher: logs what would happen and prints the message, without touching the platform.
type PrintDispatcher struct {
	Logger *slog.Logger
	// defaults to stdout
	Out io.Writer
}

var _ Dispatcher = (*PrintDispatcher)(nil)

func (pd *PrintDispatcher) Dispatch(ctx context.Context, sub SubmissionRef, d Decision, message string) error {
	logger := pd.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := pd.Out
	if out == nil {
		out = os.Stdout
	}
	logger.Info("dry run", "permalink", sub.Permalink(), "action", d.Action().String(), "resubmit", d.Resubmit(), "escalate", d.Escalate())
	if d.Action() == ActionNone {
		return nil
	}
	if _, err := fmt.Fprintf(out, "--- reply to %s%s (remove=%t, escalate=%t)\n%s\n", redditBaseURL, sub.Permalink(), d.Action() == ActionDelete, d.Escalate(), message); err != nil {
		return err
	}
	return nil
}
