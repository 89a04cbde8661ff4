// Package main starts the company website and its admin panel.
//
// Configuration comes from the environment; a .env file in the working
// directory is loaded first when present.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-company-site/internal/app"
	"github.com/tbourn/go-company-site/internal/config"
	"github.com/tbourn/go-company-site/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version string

// @title       Company Site API
// @version     1.0
// @description Public form submissions, uploads and the admin panel API of the company website.
// @BasePath    /
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.OTEL.ServiceName, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, sysutil.FirstNonEmpty(version, os.Getenv("APP_VERSION"), "dev"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}
	if err := a.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to serve")
	}
	log.Info().Msg("bye")
}
