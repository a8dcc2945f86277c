package main

import (
	"fmt"
	"time"

	"github.com/switcharoohelper/roohelper/roomod/issues"

	cli "github.com/urfave/cli/v2"
)

var verifyCmd = &cli.Command{
	Name:  "verify",
	Usage: "re-check recent switcharoos against reddit, marking removed roos and deleted comments, until the last good roo is found",
	Flags: redditFlags,
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context
		logger, err := configLogging(cctx)
		if err != nil {
			return err
		}
		hist, err := openHistory(cctx, logger, issues.DefaultRegistry())
		if err != nil {
			return err
		}
		rc, err := newRedditClient(cctx, logger)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		marked, err := hist.Verify(ctx, rc, now)
		if err != nil {
			return err
		}
		roo, err := hist.LastGood(ctx, now)
		if err != nil {
			return err
		}
		fmt.Fprintf(cctx.App.Writer, "marked: %d\n", marked)
		if roo == nil {
			fmt.Fprintln(cctx.App.Writer, "last good: none")
			return nil
		}
		fmt.Fprintf(cctx.App.Writer, "last good: %s (%s)\n", roo.SubmissionID, roo.Time.Format(time.RFC3339))
		return nil
	},
}
