package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/yumyai/uniref90/logger"
	"github.com/yumyai/uniref90/pkg/cli"
)

func main() {

	// Establish logger, the root command re-initialises it from --log-level
	if err := logger.InitLogger(zapcore.InfoLevel); err != nil {
		panic(err)
	}

	// Try load env
	dotenvErr := godotenv.Load()

	if dotenvErr != nil {
		logger.Debug("No .env found, using local environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.NewRootCommand().ExecuteContext(ctx)

	stop()
	logger.Sync() // Make sure that the buffered is flushed.

	if err != nil {
		os.Exit(1)
	}
}
