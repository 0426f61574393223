// Command server runs the freeops backend HTTP API.
//
// Configuration is read from config.yaml (CONFIG_PATH overrides the
// location) with environment variables taking precedence.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/avelichko/freeops-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
