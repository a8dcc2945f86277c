package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/switcharoohelper/roohelper/history"
	"github.com/switcharoohelper/roohelper/reddit"
	"github.com/switcharoohelper/roohelper/roomod"
	"github.com/switcharoohelper/roohelper/roomod/cachestore"
	"github.com/switcharoohelper/roohelper/roomod/countstore"
	"github.com/switcharoohelper/roohelper/roomod/flagstore"
	"github.com/switcharoohelper/roohelper/roomod/issues"
	"github.com/switcharoohelper/roohelper/util/cliutil"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	cli "github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
	"gorm.io/plugin/opentelemetry/tracing"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "roohelper",
		Usage:   "moderation helper for switcharoo chains",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			Value:   "info",
			EnvVars: []string{"ROOHELPER_LOG_LEVEL", "LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "log output format (text or json)",
			Value:   "text",
			EnvVars: []string{"ROOHELPER_LOG_FORMAT", "LOG_FORMAT"},
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "database connection string for switcharoo history",
			Value:   "sqlite://data/roohelper/history.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.IntFlag{
			Name:    "max-db-connections",
			EnvVars: []string{"MAX_DB_CONNECTIONS"},
			Value:   4,
		},
		&cli.BoolFlag{
			Name:    "db-tracing",
			Usage:   "emit OpenTelemetry spans for database queries",
			EnvVars: []string{"ROOHELPER_DB_TRACING"},
		},
	}

	app.Commands = []*cli.Command{
		actCmd,
		explainCmd,
		issuesCmd,
		syncIssuesCmd,
		verifyCmd,
	}

	return app.Run(args)
}

func configLogging(cctx *cli.Context) (*slog.Logger, error) {
	return cliutil.SetupSlog(os.Stderr, cliutil.LogOptions{
		LogFormat: cctx.String("log-format"),
		LogLevel:  cctx.String("log-level"),
	})
}

func openHistory(cctx *cli.Context, logger *slog.Logger, reg *issues.Registry) (*history.Log, error) {
	db, err := cliutil.SetupDatabase(cctx.String("database-url"), cctx.Int("max-db-connections"), logger)
	if err != nil {
		return nil, err
	}
	if cctx.Bool("db-tracing") {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, err
		}
	}
	hist := history.NewLog(db, logger, reg)
	if err := hist.Migrate(cctx.Context); err != nil {
		return nil, fmt.Errorf("migrating history database: %w", err)
	}
	return hist, nil
}

func runMetrics(listen string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(listen, mux); err != nil {
			logger.Error("metrics endpoint failed", "listen", listen, "err", err)
		}
	}()
}

var redditFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "reddit-client-id",
		EnvVars: []string{"REDDIT_CLIENT_ID"},
	},
	&cli.StringFlag{
		Name:    "reddit-client-secret",
		EnvVars: []string{"REDDIT_CLIENT_SECRET"},
	},
	&cli.StringFlag{
		Name:    "reddit-username",
		EnvVars: []string{"REDDIT_USERNAME"},
	},
	&cli.StringFlag{
		Name:    "reddit-password",
		EnvVars: []string{"REDDIT_PASSWORD"},
	},
	&cli.Float64Flag{
		Name:    "reddit-rate-limit",
		Usage:   "max requests per second to the reddit API",
		Value:   1.5,
		EnvVars: []string{"ROOHELPER_REDDIT_RATE_LIMIT"},
	},
	&cli.StringFlag{
		Name:    "reddit-host",
		Usage:   "reddit API host, for authenticated requests",
		Value:   reddit.DefaultHost,
		Hidden:  true,
		EnvVars: []string{"ROOHELPER_REDDIT_HOST"},
	},
	&cli.StringFlag{
		Name:    "reddit-auth-host",
		Usage:   "reddit host serving the OAuth token endpoint",
		Value:   reddit.DefaultAuthHost,
		Hidden:  true,
		EnvVars: []string{"ROOHELPER_REDDIT_AUTH_HOST"},
	},
}

// builds a reddit client from redditFlags, and logs in
func newRedditClient(cctx *cli.Context, logger *slog.Logger) (*reddit.Client, error) {
	rc := reddit.NewClient(reddit.Credentials{
		ClientID:     cctx.String("reddit-client-id"),
		ClientSecret: cctx.String("reddit-client-secret"),
		Username:     cctx.String("reddit-username"),
		Password:     cctx.String("reddit-password"),
	}, logger)
	rc.Host = cctx.String("reddit-host")
	rc.AuthHost = cctx.String("reddit-auth-host")
	rc.Limiter.SetLimit(rate.Limit(cctx.Float64("reddit-rate-limit")))
	if err := rc.Login(cctx.Context); err != nil {
		return nil, fmt.Errorf("reddit login: %w", err)
	}
	return rc, nil
}

const redisPrefix = "roohelper/"

// redis-backed stores when a URL is configured, otherwise process-local memory
func buildStores(ctx context.Context, redisURL string, logger *slog.Logger) (cachestore.CacheStore, flagstore.FlagStore, countstore.CountStore, error) {
	if redisURL == "" {
		return cachestore.NewMemCacheStore(5_000, 7*24*time.Hour), flagstore.NewMemFlagStore(), countstore.NewMemCountStore(), nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parsing redis URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, nil, nil, fmt.Errorf("redis ping failed: %v", err)
	}
	logger.Info("using redis stores", "addr", opt.Addr)
	return cachestore.NewRedisCacheStore(rdb, redisPrefix, 7*24*time.Hour),
		flagstore.NewRedisFlagStore(rdb, redisPrefix),
		countstore.NewRedisCountStore(rdb, redisPrefix),
		nil
}

func buildMailbox(cctx *cli.Context, rc *reddit.Client) roomod.ModerationMailbox {
	if u := cctx.String("slack-webhook-url"); u != "" {
		return &roomod.SlackMailbox{WebhookURL: u}
	}
	if sr := cctx.String("modmail-subreddit"); sr != "" && rc != nil {
		return &reddit.Modmail{Client: rc, Subreddit: sr}
	}
	return nil
}
