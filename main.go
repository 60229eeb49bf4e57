// Source discovery engine: consumes crawl events, classifies and
// geolocates media sources, tracks citations of unknown domains, and
// promotes them into the catalog.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/bootstrap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "source-discovery: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	app, err := bootstrap.New("config.yml")
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}
