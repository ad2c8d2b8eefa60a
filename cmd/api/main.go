package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"sneakerScan/internal/analyze"
	"sneakerScan/internal/config"
	"sneakerScan/internal/market"
	"sneakerScan/internal/server"
	"sneakerScan/internal/vision"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to optional YAML config file")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to read .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg.Log)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	submitter, closer, err := newSubmitter(ctx, cfg.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize model backend")
	}
	defer closer.Close()
	log.Info().
		Str("transport", cfg.Model.Transport).
		Str("project", cfg.Model.Project).
		Str("region", cfg.Model.Region).
		Str("model", cfg.Model.Name).
		Msg("model backend initialized")

	analyzeHandler := analyze.Handler{
		Identifier:   vision.NewIdentifier(submitter),
		Market:       market.New(),
		MaxBodyBytes: cfg.MaxBodyBytes,
	}

	var staticFS http.Handler
	if cfg.StaticDir != "" {
		staticFS = http.FileServer(http.Dir(cfg.StaticDir))
		log.Info().Str("dir", cfg.StaticDir).Msg("serving static frontend")
	}

	srv := server.New(server.Options{
		Port:           cfg.Port,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		WriteTimeout:   cfg.WriteTimeout,
		StaticFS:       staticFS,
	}, analyzeHandler)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("shutdown with error")
		return
	}
	log.Info().Msg("shutdown complete")
}

func newSubmitter(ctx context.Context, cfg config.ModelConfig) (vision.Submitter, io.Closer, error) {
	modelCfg := vision.ModelConfig{
		Project:         cfg.Project,
		Region:          cfg.Region,
		Model:           cfg.Name,
		CredentialsFile: cfg.CredentialsFile,
		Temperature:     cfg.Temperature,
	}

	if cfg.Transport == config.TransportAIPlatform {
		submitter, err := vision.NewVertexSubmitter(ctx, modelCfg)
		if err != nil {
			return nil, nil, err
		}
		return submitter, submitter, nil
	}

	submitter, err := vision.NewGenAISubmitter(ctx, modelCfg)
	if err != nil {
		return nil, nil, err
	}
	return submitter, closerFunc(func() error { return nil }), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
