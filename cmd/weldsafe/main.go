// Command weldsafe answers welding safety questions from a corpus of
// Ukrainian occupational-safety standards.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"

	"github.com/custodia-labs/weldsafe/internal/adapters/driving/cli"
	"github.com/custodia-labs/weldsafe/internal/bootstrap"
	"github.com/custodia-labs/weldsafe/internal/logger"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: reading .env: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, bootstrap.Options{
		DataDir: os.Getenv("WELDSAFE_HOME"),
		Version: version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Shutdown: %v", err)
		}
	}()

	cli.SetVersion(version)
	cli.SetRuntime(app)
	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
