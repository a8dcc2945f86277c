package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/switcharoohelper/roohelper/roomod/cachestore"
	"github.com/switcharoohelper/roohelper/roomod/countstore"
	"github.com/switcharoohelper/roohelper/roomod/flagstore"
	"github.com/switcharoohelper/roohelper/roomod/issues"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("roomod")

// Coarse per-submission processing status. Transitions only go forward: unseen, evaluated, dispatched.
type Status string

const (
	StatusUnseen     Status = ""
	StatusEvaluated  Status = "evaluated"
	StatusDispatched Status = "dispatched"
)

const statusCacheName = "status"

// runtime for evaluating submissions and dispatching moderation responses.
//
// All store fields must be non-nil; Registry and Composer have usable defaults.
type Engine struct {
	Logger     *slog.Logger
	Registry   *issues.Registry
	Rules      []Rule
	Composer   Composer
	Dispatcher Dispatcher
	Status     cachestore.CacheStore
	Flags      flagstore.FlagStore
	Counters   countstore.CountStore
	// max submissions removed per UTC day. zero means unlimited
	RemovalQuotaDay int
}

// Everything that came out of evaluating one submission.
type Outcome struct {
	Decision Decision
	Message  string
}

func (eng *Engine) registry() *issues.Registry {
	if eng.Registry == nil {
		return issues.DefaultRegistry()
	}
	return eng.Registry
}

func (eng *Engine) rules() []Rule {
	if eng.Rules == nil {
		return DefaultRules
	}
	return eng.Rules
}

// GetStatus returns the recorded processing status of a submission.
func (eng *Engine) GetStatus(ctx context.Context, permalink string) (Status, error) {
	v, err := eng.Status.Get(ctx, statusCacheName, permalink)
	if err != nil {
		return StatusUnseen, err
	}
	return Status(v), nil
}

func (eng *Engine) setStatus(ctx context.Context, permalink string, s Status) error {
	return eng.Status.Set(ctx, statusCacheName, permalink, string(s))
}

// Evaluate decides and composes, without any side effects.
func (eng *Engine) Evaluate(sub Submission, kinds []issues.Kind, prior PriorGood) (*Outcome, error) {
	d, err := DecideWith(eng.registry(), eng.rules(), issues.NewSet(kinds...), sub, prior)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Decision: d,
		Message:  eng.Composer.Compose(d),
	}, nil
}

// ProcessSubmission runs a full evaluation of one submission: decide, compose, then dispatch.
//
// An empty issue list is a no-op, and returns a nil Outcome. A submission which has already been dispatched returns ErrAlreadyDispatched.
func (eng *Engine) ProcessSubmission(ctx context.Context, sub SubmissionRef, kinds []issues.Kind, prior PriorGood) (out *Outcome, err error) {
	ctx, span := tracer.Start(ctx, "ProcessSubmission")
	defer span.End()
	span.SetAttributes(attribute.String("permalink", sub.Permalink()))

	logger := eng.Logger.With("permalink", sub.Permalink())

	// similar to an HTTP server, we want to recover any panics from rule execution
	defer func() {
		if r := recover(); r != nil {
			logger.Error("roomod evaluation exception", "err", r)
			evaluationErrorCount.WithLabelValues("panic").Inc()
			out = nil
			err = fmt.Errorf("evaluation panic: %v", r)
		}
	}()

	if len(kinds) == 0 {
		return nil, nil
	}

	start := time.Now()
	defer func() {
		evaluationDuration.Observe(time.Since(start).Seconds())
	}()

	status, err := eng.GetStatus(ctx, sub.Permalink())
	if err != nil {
		return nil, fmt.Errorf("reading submission status: %w", err)
	}
	if status == StatusDispatched {
		return nil, ErrAlreadyDispatched
	}

	out, err = eng.Evaluate(sub, kinds, prior)
	if err != nil {
		evaluationErrorCount.WithLabelValues("decide").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	d := out.Decision
	span.SetAttributes(attribute.String("action", d.Action().String()), attribute.Bool("escalate", d.Escalate()))
	for _, k := range kinds {
		issueCount.WithLabelValues(string(k)).Inc()
	}
	if err := eng.setStatus(ctx, sub.Permalink(), StatusEvaluated); err != nil {
		return nil, fmt.Errorf("recording submission status: %w", err)
	}

	if d.Action() == ActionDelete {
		if err := eng.circuitBreakRemoval(ctx); err != nil {
			evaluationErrorCount.WithLabelValues("quota").Inc()
			return nil, err
		}
	}

	if err := eng.Dispatcher.Dispatch(ctx, sub, d, out.Message); err != nil {
		evaluationErrorCount.WithLabelValues("dispatch").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := eng.setStatus(ctx, sub.Permalink(), StatusDispatched); err != nil {
		return nil, fmt.Errorf("recording submission status: %w", err)
	}

	if err := eng.persistEffects(ctx, sub, kinds, d); err != nil {
		return nil, err
	}
	evaluationCount.WithLabelValues(d.Action().String()).Inc()
	eng.canonicalLogLine(logger, kinds, d)
	return out, nil
}

func (eng *Engine) circuitBreakRemoval(ctx context.Context) error {
	if eng.RemovalQuotaDay <= 0 {
		return nil
	}
	c, err := eng.Counters.GetCount(ctx, "action", ActionDelete.String(), countstore.PeriodDay)
	if err != nil {
		return fmt.Errorf("checking removal quota: %w", err)
	}
	if c >= eng.RemovalQuotaDay {
		eng.Logger.Warn("CIRCUIT BREAKER: roomod removals", "count", c, "quota", eng.RemovalQuotaDay)
		circuitBreakCount.Inc()
		return ErrRemovalQuota
	}
	return nil
}

func (eng *Engine) persistEffects(ctx context.Context, sub Submission, kinds []issues.Kind, d Decision) error {
	flags := make([]string, len(kinds))
	for i, k := range kinds {
		flags[i] = string(k)
	}
	if err := eng.Flags.Add(ctx, sub.Permalink(), flags); err != nil {
		return fmt.Errorf("persisting issue flags: %w", err)
	}
	if err := eng.Counters.Increment(ctx, "action", d.Action().String()); err != nil {
		return fmt.Errorf("persisting action counters: %w", err)
	}
	return nil
}

func (eng *Engine) canonicalLogLine(logger *slog.Logger, kinds []issues.Kind, d Decision) {
	logger.Info("canonical-event-line",
		"issues", issues.NewSet(kinds...).Strings(),
		"action", d.Action().String(),
		"resubmit", d.Resubmit(),
		"escalate", d.Escalate(),
		"lines", d.NumLines(),
	)
}
