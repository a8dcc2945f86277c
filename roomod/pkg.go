package roomod

import (
	"github.com/switcharoohelper/roohelper/roomod/countstore"
	"github.com/switcharoohelper/roohelper/roomod/engine"
	"github.com/switcharoohelper/roohelper/roomod/issues"
)

type Engine = engine.Engine
type Decision = engine.Decision
type Action = engine.Action
type Outcome = engine.Outcome
type Rule = engine.Rule
type Composer = engine.Composer

type Submission = engine.Submission
type SubmissionRef = engine.SubmissionRef
type CommentRef = engine.CommentRef
type PriorGood = engine.PriorGood
type PriorGoodRef = engine.PriorGoodRef
type ModerationMailbox = engine.ModerationMailbox

type Dispatcher = engine.Dispatcher
type ModDispatcher = engine.ModDispatcher
type PrintDispatcher = engine.PrintDispatcher
type SlackMailbox = engine.SlackMailbox
type DispatchError = engine.DispatchError

type IssueKind = issues.Kind
type IssueSet = issues.Set

var (
	ActionNone   = engine.ActionNone
	ActionWarn   = engine.ActionWarn
	ActionDelete = engine.ActionDelete

	PeriodTotal = countstore.PeriodTotal
	PeriodDay   = countstore.PeriodDay
	PeriodHour  = countstore.PeriodHour

	ErrMissingContext    = engine.ErrMissingContext
	ErrAlreadyDispatched = engine.ErrAlreadyDispatched
	ErrRemovalQuota      = engine.ErrRemovalQuota
	ErrNoMailbox         = engine.ErrNoMailbox
)
