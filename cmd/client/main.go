package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/studyroom/internal/client/api"
	"github.com/iudanet/studyroom/internal/client/cli"
	"github.com/iudanet/studyroom/internal/client/iocli"
	"github.com/iudanet/studyroom/internal/client/session"
	"github.com/iudanet/studyroom/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", envOr("STUDYROOM_SERVER", "http://localhost:5000"), "Server URL")
	dbPath := flag.String("db", "studyroom-client.db", "Path to local session database")
	name := flag.String("name", os.Getenv("STUDYROOM_NAME"), "Display name")
	history := flag.Int("history", 500, "Chat history size, 0 for unlimited")
	cacheDir := flag.String("cache-dir", "", "Download shared PDFs into this directory")
	dedupeEcho := flag.Bool("dedupe-echo", false, "Hide the server echo of your own messages")
	quietRejoin := flag.Bool("quiet-rejoin", false, "Do not repeat the welcome line after reconnecting")
	verbose := flag.Bool("verbose", false, "Debug logging to stderr")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	console := iocli.NewStdio()

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(console)
		os.Exit(1)
	}

	// Логи идут в stderr, чтобы не мешать чату в stdout
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}

	bootstrap := session.NewBootstrap(logger, boltStorage, console, session.WithPreset(*name))
	app := cli.New(logger, api.NewClient(*serverURL), bootstrap, console, cli.Config{
		CacheDir:    *cacheDir,
		HistorySize: *history,
		DedupeEcho:  *dedupeEcho,
		QuietRejoin: *quietRejoin,
	})

	runErr := app.Run(ctx, args[0], args[1:])

	if err := boltStorage.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}

	if runErr != nil {
		if errors.Is(runErr, cli.ErrUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", runErr)
			cli.PrintUsage(console)
		} else {
			logger.Debug("command failed", "command", args[0], "error", runErr)
		}
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func printVersion() {
	fmt.Printf("StudyRoom Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
