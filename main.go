package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tariff-cloud/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		logger := logging.New("tariffctl")
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
