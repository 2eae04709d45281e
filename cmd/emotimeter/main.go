// Emotion-Meter - webcam game that asks for a facial expression and scores
// the player for holding it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/teslashibe/go-emotimeter/internal/config"
	"github.com/teslashibe/go-emotimeter/internal/log"
	"github.com/teslashibe/go-emotimeter/pkg/app"
)

const releaseVersion = "0.3.0"

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg := config.DefaultConfig()
	cmd := newCmd(&cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "emotimeter: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	log.Init(cfg.LogLevel)

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	if err := a.Init(); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	return a.Run(ctx)
}
