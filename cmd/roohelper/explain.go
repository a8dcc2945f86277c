package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"text/tabwriter"

	"github.com/switcharoohelper/roohelper/roomod"
	"github.com/switcharoohelper/roohelper/roomod/engine"
	"github.com/switcharoohelper/roohelper/roomod/issues"

	cli "github.com/urfave/cli/v2"
)

var explainCmd = &cli.Command{
	Name:      "explain",
	Usage:     "print the decision and reply for a set of issues, without contacting reddit",
	ArgsUsage: "<issue>...",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "permalink",
			Usage: "permalink path of the submission being explained",
			Value: "/r/switcharoo/comments/example/",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "link URL of the submission being explained",
		},
		&cli.StringFlag{
			Name:  "prior-url",
			Usage: "link URL of the last good switcharoo",
		},
		&cli.StringFlag{
			Name:  "prior-permalink",
			Usage: "permalink path of the comment the last good switcharoo links to",
		},
		&cli.Uint64Flag{
			Name:  "seed",
			Usage: "seed for greeting selection (0 for random)",
		},
	},
	Action: func(cctx *cli.Context) error {
		reg := issues.DefaultRegistry()
		kinds, err := reg.ParseList(cctx.Args().Slice())
		if err != nil {
			return err
		}

		target := explainTarget{permalink: cctx.String("permalink"), url: cctx.String("url")}
		var prior roomod.PriorGood
		if cctx.String("prior-url") != "" || cctx.String("prior-permalink") != "" {
			prior = roomod.PriorGoodRef{URL: cctx.String("prior-url"), Permalink: cctx.String("prior-permalink")}
		}

		composer := roomod.Composer{}
		if seed := cctx.Uint64("seed"); seed != 0 {
			composer.Pick = rand.New(rand.NewPCG(seed, seed)).IntN
		}
		return explain(cctx.App.Writer, reg, composer, target, kinds, prior)
	},
}

type explainTarget struct {
	permalink string
	url       string
}

func (t explainTarget) Permalink() string { return t.permalink }
func (t explainTarget) URL() string       { return t.url }

func explain(w io.Writer, reg *issues.Registry, composer roomod.Composer, sub roomod.Submission, kinds []issues.Kind, prior roomod.PriorGood) error {
	d, err := engine.DecideWith(reg, engine.DefaultRules, issues.NewSet(kinds...), sub, prior)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "action: %s\nresubmit: %t\nescalate: %t\n", d.Action(), d.Resubmit(), d.Escalate())
	summary, err := engine.Summarize(issues.NewSet(kinds...), sub, prior)
	if err != nil {
		return err
	}
	if len(summary) > 0 {
		fmt.Fprintln(w, "\nsummary:")
		for _, line := range summary {
			fmt.Fprintln(w, line)
		}
	}
	if msg := composer.Compose(d); msg != "" {
		fmt.Fprintf(w, "\nreply:\n%s", msg)
	}
	return nil
}

var issuesCmd = &cli.Command{
	Name:  "issues",
	Usage: "list known issue kinds and their severity",
	Action: func(cctx *cli.Context) error {
		return printIssues(cctx.App.Writer, issues.DefaultRegistry())
	},
}

func printIssues(w io.Writer, reg *issues.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSEVERE")
	for _, iss := range reg.All() {
		fmt.Fprintf(tw, "%d\t%s\t%t\n", iss.ID, iss.Kind, iss.Severe)
	}
	return tw.Flush()
}

var syncIssuesCmd = &cli.Command{
	Name:  "sync-issues",
	Usage: "create history tables, and sync the issue registry into the database",
	Action: func(cctx *cli.Context) error {
		logger, err := configLogging(cctx)
		if err != nil {
			return err
		}
		hist, err := openHistory(cctx, logger, issues.DefaultRegistry())
		if err != nil {
			return err
		}
		return hist.SyncIssues(cctx.Context)
	},
}
