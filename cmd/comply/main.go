// Command comply scores sustainability reports against disclosure frameworks.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/comply/internal/adapters/driving/cli"
)

// Set by -ldflags at release time.
var version = "dev"

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(buildServices)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
