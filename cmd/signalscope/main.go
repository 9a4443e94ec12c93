package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/signalscope/pkg/aggregator"
	"github.com/umputun/signalscope/pkg/config"
	"github.com/umputun/signalscope/pkg/domain"
	"github.com/umputun/signalscope/pkg/platform"
	"github.com/umputun/signalscope/pkg/repository"
	"github.com/umputun/signalscope/pkg/scoring"
	"github.com/umputun/signalscope/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"f" long:"config" env:"CONFIG" default:"signalscope.yml" description:"config file"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Printf("[ERROR] can't load config %s: %v", opts.Config, err)
		os.Exit(1)
	}

	// mask platform credentials in logs
	setupLog(opts.Debug, cfg.Platforms.YouTube.APIKey, cfg.Platforms.Twitter.BearerToken)

	log.Printf("[INFO] starting signalscope version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	if err := run(ctx, cfg, opts.Debug); err != nil {
		log.Printf("[ERROR] server failed: %v", err)
		cancel()
		os.Exit(1)
	}
	cancel()

	log.Print("[INFO] shutdown complete")
}

// run wires all components and starts the HTTP server
func run(ctx context.Context, cfg *config.Config, debug bool) error {
	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("init repositories: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.Printf("[WARN] failed to close database: %v", err)
		}
	}()

	agg := aggregator.New(makeSearchers(cfg), scoring.NewScorer(nil), scoring.NewClassifier(nil),
		aggregator.Limits{Default: cfg.Search.DefaultLimit, Max: cfg.Search.MaxLimit})

	srv := server.New(cfg, agg, repos.Search, repos.Signal, revision, debug)
	return srv.Run(ctx)
}

// makeSearchers builds a platform adapter for each configured platform
func makeSearchers(cfg *config.Config) map[domain.Platform]aggregator.Searcher {
	searchCfg := cfg.GetSearchConfig()
	platforms := cfg.GetPlatformsConfig()

	searchers := map[domain.Platform]aggregator.Searcher{}
	if platforms.Reddit.Enabled {
		searchers[domain.PlatformReddit] = platform.NewReddit(searchCfg.Timeout, searchCfg.UserAgent, searchCfg.SnippetLength)
	}
	if platforms.YouTube.APIKey != "" {
		searchers[domain.PlatformYouTube] = platform.NewYouTube(platforms.YouTube.APIKey, searchCfg.Timeout, searchCfg.SnippetLength)
	}
	if platforms.Twitter.BearerToken != "" {
		searchers[domain.PlatformTwitter] = platform.NewTwitter(platforms.Twitter.BearerToken, searchCfg.Timeout, searchCfg.SnippetLength)
	}

	log.Printf("[INFO] %d platform adapters configured", len(searchers))
	return searchers
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	// mask non-empty secrets
	var secrets []string
	for _, s := range secs {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
