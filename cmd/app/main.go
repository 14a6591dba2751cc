package main

import (
	"context"

	"guide/config"
	"guide/di"
	"guide/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	app := di.InitializeApp()

	ctx := context.Background()

	go app.Watcher.Start(ctx)

	// Warm the catalog cache so the first request doesn't pay for it.
	app.Experience.WarmCatalog(ctx)

	app.HTTP.Serve()
}
