package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/switcharoohelper/roohelper/history"
	"github.com/switcharoohelper/roohelper/reddit"
	"github.com/switcharoohelper/roohelper/roomod"
	"github.com/switcharoohelper/roohelper/roomod/issues"

	"github.com/cenkalti/backoff/v5"
	cli "github.com/urfave/cli/v2"
)

var actCmd = &cli.Command{
	Name:  "act",
	Usage: "evaluate a single submission and carry out the moderation response",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:     "submission",
			Usage:    "reddit submission ID (with or without t3_ prefix)",
			Required: true,
		},
		&cli.StringSliceFlag{
			Name:  "issue",
			Usage: "issue kind found on the submission (repeatable)",
		},
		&cli.StringFlag{
			Name:  "prior-submission",
			Usage: "submission ID of the last good switcharoo",
		},
		&cli.StringFlag{
			Name:  "prior-comment",
			Usage: "comment ID the last good switcharoo links to",
		},
		&cli.BoolFlag{
			Name:  "prior-from-history",
			Usage: "look up the last good switcharoo in the history database",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "print the response instead of acting on reddit; nothing is recorded",
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for engine state; in-process memory if not set",
			EnvVars: []string{"ROOHELPER_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			Usage:   "Slack incoming webhook for moderator escalations",
			EnvVars: []string{"SLACK_WEBHOOK_URL"},
		},
		&cli.StringFlag{
			Name:    "modmail-subreddit",
			Usage:   "subreddit to send escalation modmail to, if Slack is not configured",
			Value:   "switcharoo",
			EnvVars: []string{"ROOHELPER_MODMAIL_SUBREDDIT"},
		},
		&cli.IntFlag{
			Name:    "removal-quota-day",
			Usage:   "max submissions removed per UTC day (0 for unlimited); only counted across runs when --redis-url is set",
			Value:   50,
			EnvVars: []string{"ROOHELPER_REMOVAL_QUOTA_DAY"},
		},
		&cli.IntFlag{
			Name:    "reply-tries",
			Usage:   "attempts at posting the reply before giving up; later steps are never retried",
			Value:   3,
			EnvVars: []string{"ROOHELPER_REPLY_TRIES"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			EnvVars: []string{"ROOHELPER_METRICS_LISTEN"},
		},
	}, redditFlags...),
	Action: runAct,
}

func runAct(cctx *cli.Context) error {
	ctx := cctx.Context
	logger, err := configLogging(cctx)
	if err != nil {
		return err
	}
	shutdown, err := configOTEL(ctx, "roohelper")
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}
	defer shutdown()
	if l := cctx.String("metrics-listen"); l != "" {
		runMetrics(l, logger)
	}

	dryRun := cctx.Bool("dry-run")
	reg := issues.DefaultRegistry()
	kinds, err := reg.ParseList(cctx.StringSlice("issue"))
	if err != nil {
		return err
	}

	rc, err := newRedditClient(cctx, logger)
	if err != nil {
		return err
	}

	sub, err := rc.Submission(ctx, cctx.String("submission"))
	if err != nil {
		return fmt.Errorf("fetching submission: %w", err)
	}

	var hist *history.Log
	if !dryRun || cctx.Bool("prior-from-history") {
		hist, err = openHistory(cctx, logger, reg)
		if err != nil {
			return err
		}
	}

	// history is the durable record of what has been acted on; engine status may be process-local
	if !dryRun {
		existing, err := hist.Get(ctx, sub.ID)
		if err != nil {
			return fmt.Errorf("checking history: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("submission %s recorded at %s with issues %v: %w", sub.ID, existing.Time.Format(time.RFC3339), existing.IssueTypes(), roomod.ErrAlreadyDispatched)
		}
	}

	prior, err := resolvePrior(ctx, cctx, logger, rc, hist, sub)
	if err != nil {
		return err
	}

	redisURL := cctx.String("redis-url")
	if dryRun {
		// dry runs must not mark anything as dispatched in shared state
		redisURL = ""
	} else if redisURL == "" && cctx.Int("removal-quota-day") > 0 {
		logger.Warn("no redis configured, removal quota only counts this run")
	}
	status, flags, counters, err := buildStores(ctx, redisURL, logger)
	if err != nil {
		return err
	}

	eng := roomod.Engine{
		Logger:          logger,
		Registry:        reg,
		Status:          status,
		Flags:           flags,
		Counters:        counters,
		RemovalQuotaDay: cctx.Int("removal-quota-day"),
	}
	if dryRun {
		eng.Dispatcher = &roomod.PrintDispatcher{Logger: logger, Out: os.Stdout}
	} else {
		eng.Dispatcher = &roomod.ModDispatcher{Logger: logger, Mailbox: buildMailbox(cctx, rc)}
	}

	var marker *history.Switcharoo
	if !dryRun {
		// left in place if the process dies mid-dispatch, so the submission is never acted on twice
		marker, err = hist.Add(ctx, historyParams(sub), issues.SubmissionProcessing)
		if err != nil {
			return fmt.Errorf("recording switcharoo: %w", err)
		}
	}

	ref := &redditSubmission{client: rc, sub: sub}
	// only a failed reply is retried: nothing has been done on the platform yet, and the submission is still EVALUATED
	out, err := backoff.Retry(ctx, func() (*roomod.Outcome, error) {
		out, err := eng.ProcessSubmission(ctx, ref, kinds, prior)
		var de *roomod.DispatchError
		if errors.As(err, &de) && de.Retryable() {
			logger.Warn("reply failed, will retry", "submission", sub.ID, "err", err)
			return nil, err
		}
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		return out, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(uint(max(1, cctx.Int("reply-tries")))))

	if dryRun {
		if err == nil && out == nil {
			logger.Info("no issues found", "submission", sub.ID)
		}
		return err
	}

	if err != nil && !reachedPlatform(err) {
		if derr := hist.Delete(ctx, sub.ID); derr != nil {
			return errors.Join(err, fmt.Errorf("clearing processing marker: %w", derr))
		}
		return err
	}
	roo, herr := hist.Update(ctx, marker.ID, history.Update{
		AddIssues:    kinds,
		RemoveIssues: []issues.Kind{issues.SubmissionProcessing},
	})
	if herr != nil {
		return errors.Join(err, fmt.Errorf("recording switcharoo: %w", herr))
	}
	if err != nil {
		return err
	}
	if out == nil {
		logger.Info("no issues found", "submission", sub.ID)
	}
	logger.Info("recorded switcharoo", "submission", sub.ID, "historyID", roo.ID, "issues", roo.IssueTypes())
	return nil
}

// reports whether a failed pipeline run may have left anything on the platform
func reachedPlatform(err error) bool {
	if errors.Is(err, roomod.ErrAlreadyDispatched) {
		return true
	}
	var de *roomod.DispatchError
	return errors.As(err, &de) && !de.Retryable()
}

// Finds the last good switcharoo, either from explicit IDs or from history. Returns nil if neither is configured.
func resolvePrior(ctx context.Context, cctx *cli.Context, logger *slog.Logger, rc *reddit.Client, hist *history.Log, sub *reddit.Submission) (roomod.PriorGood, error) {
	if cctx.Bool("prior-from-history") {
		before := time.Now().UTC()
		if sub.CreatedUTC > 0 {
			before = time.Unix(int64(sub.CreatedUTC), 0).UTC()
		}
		// dry runs do not write to history
		if !cctx.Bool("dry-run") {
			marked, err := hist.Verify(ctx, rc, before)
			if err != nil {
				return nil, fmt.Errorf("verifying switcharoo history: %w", err)
			}
			if marked > 0 {
				logger.Info("marked deleted switcharoos", "count", marked)
			}
		}
		roo, err := hist.LastGood(ctx, before)
		if err != nil {
			return nil, fmt.Errorf("looking up last good switcharoo: %w", err)
		}
		if roo == nil {
			logger.Warn("no good switcharoo found in history", "before", before)
		}
		return priorFromHistory(roo), nil
	}

	psID := cctx.String("prior-submission")
	if psID == "" {
		return nil, nil
	}
	psub, err := rc.Submission(ctx, psID)
	if err != nil {
		return nil, fmt.Errorf("fetching prior submission: %w", err)
	}
	ref := roomod.PriorGoodRef{URL: psub.URL}
	if pcID := cctx.String("prior-comment"); pcID != "" {
		cmt, err := rc.Comment(ctx, pcID)
		if err != nil {
			return nil, fmt.Errorf("fetching prior comment: %w", err)
		}
		ref.Permalink = cmt.Permalink
	} else if link, err := parseRooLink(psub.URL); err == nil {
		ref.Permalink = fmt.Sprintf("/comments/%s/_/%s/", link.ThreadID, link.CommentID)
	} else {
		return nil, fmt.Errorf("prior submission does not link to a comment; pass --prior-comment")
	}
	return ref, nil
}
