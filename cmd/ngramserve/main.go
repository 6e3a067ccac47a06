// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the n-gram model as a MessagePack IPC server or as an
interactive CLI.

ngramserve counts the n-grams of plain text corpora in a two level open
addressing hash table: headwords (the first word of each n-gram) map to
tables of collocates (the remaining words). Counts answer relative frequency,
top collocate and prefix completion queries.

# Usage

Start the server with a bigram model:

	ngramserve

Train a trigram model on startup and expose metrics:

	ngramserve -n 3 -train gettysburg.txt -metrics :9464

Run in CLI mode for interactive testing:

	ngramserve -c -limit 10

Corpus names are resolved against the corpus directory unless they are
absolute or exist relative to the working directory.

# Configuration

Runtime configuration is read from a TOML file that is created with defaults
if it doesn't exist:

	[model]
	order = 2
	corpus_dir = "corpus"

	[server]
	max_limit = 64
	default_limit = 10

	[export]
	results_dir = "results"

	[metrics]
	addr = ""

Flags override the file.

# IPC Protocol

The server reads MessagePack requests from stdin and writes one response per
request to stdout. Logs go to stderr.

	{"id": "r1", "op": "train", "src": "gettysburg.txt"}
	{"id": "r2", "op": "top", "h": "that", "l": 3}

See package server for every operation.

# Command Line Flags

	-config string
	    Path to a custom config file
	-rebuild-config
	    Write a fresh default config and exit
	-corpus string
	    Directory holding corpus files
	-n int
	    N-gram order
	-train string
	    Corpus file to train on before serving
	-metrics string
	    Address for the Prometheus endpoint, empty to disable
	-d  Enable debug logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Results per CLI query
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bastiangx/ngramserve/internal/cli"
	"github.com/bastiangx/ngramserve/internal/logger"
	"github.com/bastiangx/ngramserve/internal/metrics"
	"github.com/bastiangx/ngramserve/internal/utils"
	"github.com/bastiangx/ngramserve/pkg/config"
	"github.com/bastiangx/ngramserve/pkg/corpus"
	"github.com/bastiangx/ngramserve/pkg/model"
	"github.com/bastiangx/ngramserve/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

const (
	Version = "0.3.0"
	AppName = "ngramserve"
	gh      = "https://github.com/bastiangx/ngramserve"
)

// main loads config and hands off to the server or the CLI.
func main() {
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "", "Path to custom config.toml file")
	rebuildConfig := flag.Bool("rebuild-config", false, "Write a fresh default config.toml and exit")
	corpusDir := flag.String("corpus", "", "Directory holding corpus files (default from config)")
	order := flag.Int("n", 0, "N-gram order (default from config)")
	trainFile := flag.String("train", "", "Corpus file to train on before serving")
	metricsAddr := flag.String("metrics", "", "Address for the Prometheus /metrics endpoint")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of results per CLI query")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	log.SetOutput(os.Stderr)
	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if *rebuildConfig {
		path, err := config.RebuildConfigFile()
		if err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote default config to %s\n", path)
		os.Exit(0)
	}

	appConfig, loadedPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(loadedPath))

	if *order > 0 {
		appConfig.Model.Order = *order
	}
	if *corpusDir != "" {
		appConfig.Model.CorpusDir = *corpusDir
	}
	if *metricsAddr != "" {
		appConfig.Metrics.Addr = *metricsAddr
	}

	configDir := ""
	if loadedPath != "" {
		configDir = filepath.Dir(loadedPath)
	}
	pathResolver, err := utils.NewPathResolver(configDir)
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}
	appConfig.Model.CorpusDir = pathResolver.GetCorpusDir(appConfig.Model.CorpusDir)
	log.Debugf("Using corpus dir at: %s", appConfig.Model.CorpusDir)

	m, err := model.New(appConfig.Model.Order, model.WithLogger(logger.New("model")))
	if err != nil {
		log.Fatalf("Failed to create model: %v", err)
	}
	dir := corpus.Dir{Root: appConfig.Model.CorpusDir}
	if *trainFile != "" {
		if err := m.Train(dir.Resolve(*trainFile)); err != nil {
			log.Fatalf("Failed to train on %s: %v", *trainFile, err)
		}
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		log.SetLevel(log.InfoLevel)
		inputHandler := cli.NewInputHandler(m, dir, appConfig.Export.ResultsDir, *limit)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, stop, m, appConfig); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// serve runs the IPC loop and, when configured, the metrics endpoint. Both
// stop when stdin closes or a signal arrives.
func serve(ctx context.Context, stop context.CancelFunc, m *model.Model, cfg *config.Config) error {
	g, ctx := errgroup.WithContext(ctx)

	opts := []server.Option{}
	if cfg.Metrics.Addr != "" {
		reg := metrics.New()
		opts = append(opts, server.WithMetrics(reg))
		g.Go(func() error { return reg.Serve(ctx, cfg.Metrics.Addr) })
	}
	srv := server.NewServer(m, cfg, opts...)

	showStartupInfo(cfg)

	g.Go(func() error {
		defer stop()
		return srv.Start(ctx)
	})
	// stdin reads block; closing it lets Start see the cancelled context
	g.Go(func() error {
		<-ctx.Done()
		_ = os.Stdin.Close()
		return nil
	})
	return g.Wait()
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ ngramserve ] n-gram counts over msgpack IPC")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(cfg *config.Config) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	log.Infof("%s %s", AppName, Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("order: %d", cfg.Model.Order)
	log.Infof("corpus dir: ( %s )", cfg.Model.CorpusDir)
	if cfg.Metrics.Addr != "" {
		log.Infof("metrics: ( %s/metrics )", cfg.Metrics.Addr)
	}
	log.Info("status: ready")
}
