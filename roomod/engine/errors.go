package engine

import (
	"errors"
	"fmt"

	"github.com/switcharoohelper/roohelper/roomod/issues"
)

var (
	ErrMissingContext    = errors.New("missing prior good switcharoo")
	ErrAlreadyDispatched = errors.New("submission already dispatched")
	ErrRemovalQuota      = errors.New("daily removal quota exceeded")
	ErrNoMailbox         = errors.New("decision escalates, but no moderation mailbox is configured")
)

// A rule which needs the prior good switcharoo to render its explanation was matched, but none was provided.
type MissingContextError struct {
	Kind issues.Kind
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("%s: issue %s needs a prior good submission", ErrMissingContext, e.Kind)
}

func (e *MissingContextError) Is(target error) bool {
	return target == ErrMissingContext
}

const (
	StepReply       = "reply"
	StepDistinguish = "distinguish"
	StepRemove      = "remove"
	StepNotify      = "notify"
)

// Failure talking to the platform while executing a decision. Step indicates how far dispatch got.
type DispatchError struct {
	Step string
	Err  error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: %v", e.Step, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Only the reply step may be retried by callers. Removals and notifications are never auto-retried.
func (e *DispatchError) Retryable() bool {
	return e.Step == StepReply
}
