// Package main provides the harvester command-line tool for downloading search collections.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx)

	stop()
	os.Exit(code)
}
