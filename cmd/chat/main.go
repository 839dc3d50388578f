package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	config, err := LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := NewCLI(config, os.Stdin, os.Stdout)
	defer cli.Close()
	if err = cli.Root().ExecuteContext(ctx); err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}
