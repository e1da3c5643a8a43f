package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/app"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env нужен только для локального запуска
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "WARN: failed to load .env: %v\n", err)
	}

	configPath := flag.String("config", "", "path to config.yaml or its directory")
	assumeYes := flag.Bool("yes", false, "answer yes to confirmation prompts")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <command> [args]\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), "\nRun `board-client help` for the list of commands, `board-client shell` for interactive mode.")
	}
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	application, err := app.New(cfg, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	os.Exit(run(application, flag.Args(), *assumeYes))
}

func run(application *app.App, args []string, assumeYes bool) int {
	defer application.Close()
	log := application.Logger()
	application.Confirmer().AssumeYes = assumeYes

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(args) == 0 {
		args = []string{"ads"}
	}

	if args[0] == "shell" {
		application.ServeMetrics()
		if err := application.Start(ctx); err != nil {
			log.Error("Failed to start session", zap.Error(err))
			return 1
		}
		if err := application.Shell(ctx, os.Stdout); err != nil {
			log.Error("Shell terminated", zap.Error(err))
			return 1
		}
		return 0
	}

	application.Renderer().SetMuted(true)
	if err := application.Start(ctx); err != nil {
		log.Error("Failed to start session", zap.Error(err))
		return 1
	}
	application.Renderer().SetMuted(false)

	if err := application.Exec(ctx, args, os.Stdout); err != nil {
		if errors.Is(err, app.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		return 1
	}
	return 0
}
