// Package main is the entry point for the ts2ass command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ristryder/ts2ass/cmd/ts2ass/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
