// Package main is the entry point for the seam diff viewer.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/seamtext/seam/internal/app"
	"github.com/seamtext/seam/internal/config"
	"github.com/seamtext/seam/internal/ui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading configuration: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}

	logger, logCloser, err := app.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logCloser.Close()
	logger.Info().Str("version", version).Msg("seam starting")

	left, err := app.OpenDocument(opts.left)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	right, err := app.OpenDocument(opts.right)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	session, err := app.NewDiffSession(left, right, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: aligning documents: %v\n", err)
		return 1
	}
	defer session.Close()

	view, err := ui.New(session, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating terminal view: %v\n", err)
		return 1
	}

	// Follow the config file while the view runs.
	if opts.configPath != "" {
		watcher, err := config.NewWatcher(opts.configPath)
		if err != nil {
			logger.Warn().Err(err).Msg("config watching disabled")
		} else {
			watcher.OnChange(view.PostReload)
			watcher.OnError(func(err error) {
				logger.Warn().Err(err).Msg("config reload failed")
			})
			watcher.Start()
			defer watcher.Stop()
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		view.Interrupt()
	}()

	if err := view.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger.Info().Msg("seam exiting")
	return 0
}

type options struct {
	configPath string
	logLevel   string
	logFile    string
	left       string
	right      string
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, off)")
	flag.StringVar(&opts.logFile, "log-file", "", "Log file path")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "seam - side-by-side diff viewer with live position tracking\n\n")
		fmt.Fprintf(os.Stderr, "Usage: seam [options] <left-file> <right-file>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  j/k, arrows, PgUp/PgDn   scroll\n")
		fmt.Fprintf(os.Stderr, "  g/G, Home/End            jump to top/bottom\n")
		fmt.Fprintf(os.Stderr, "  Tab                      switch pane focus\n")
		fmt.Fprintf(os.Stderr, "  D                        delete top line of focused pane\n")
		fmt.Fprintf(os.Stderr, "  O                        open a blank line above it\n")
		fmt.Fprintf(os.Stderr, "  r                        realign now\n")
		fmt.Fprintf(os.Stderr, "  q, Esc, Ctrl-C           quit\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("seam %s (%s)\n", version, commit)
		os.Exit(0)
	}

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	opts.left = flag.Arg(0)
	opts.right = flag.Arg(1)
	return opts
}
