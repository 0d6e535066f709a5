package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/adapters/engine"
	"github.com/cp25sy5-modjot/doc-extract-service/internal/adapters/extractor"
	"github.com/cp25sy5-modjot/doc-extract-service/internal/adapters/httpapi"
	"github.com/cp25sy5-modjot/doc-extract-service/internal/config"
	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
	"github.com/cp25sy5-modjot/doc-extract-service/internal/pkg/grpcserver"
	"github.com/cp25sy5-modjot/doc-extract-service/internal/ports"
	"github.com/cp25sy5-modjot/doc-extract-service/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)

	// ctx governs the background activities: task worker and announcement
	// retry loops. Cancelled first on shutdown so both wind down before the
	// deregistration round.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	extr, closeExtr, err := buildExtractor(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("extractor setup failed")
	}
	defer func() {
		if err := closeExtr(); err != nil {
			logger.Warn().Err(err).Msg("extractor close")
		}
	}()
	logger.Info().Str("backend", extr.Name()).Msg("extraction backend ready")

	desc := buildDescriptor(cfg, extr.Name())

	// Application services (use cases)
	svc := usecase.NewExtractionService(extr, logger)
	runner := usecase.NewRunner(svc, cfg.TaskQueueSize, logger)
	announcer := usecase.NewAnnouncer(engine.NewHTTPClient(), desc, cfg.EngineURLs,
		cfg.EngineAnnounceRetries, cfg.EngineAnnounceRetryDelay, logger)

	// Transports
	api := httpapi.New(cfg.HTTPAddr, desc, svc, runner, announcer, logger)
	grpcSrv := grpcserver.New(cfg.GRPCAddr)

	runner.Start(ctx)

	go func() {
		logger.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC health listening")
		if err := grpcSrv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("gRPC serve error")
		}
	}()
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := api.Start(); err != nil {
			logger.Fatal().Err(err).Msg("HTTP serve error")
		}
	}()

	// Announce in the background; serving does not wait for engines.
	announcer.Start(ctx)
	grpcSrv.SetServing(true)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	logger.Info().Msg("shutting down")

	grpcSrv.SetServing(false)
	cancel()
	announcer.Wait()

	shCtx, shCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shCancel()
	announcer.Withdraw(shCtx)
	if err := api.Shutdown(shCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP shutdown")
	}
	grpcSrv.Stop()
	<-runner.Done()
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

func buildExtractor(ctx context.Context, cfg *config.Config) (ports.ExtractorPort, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Extractor {
	case "openai":
		return extractor.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), noop, nil
	case "gemini":
		g, err := extractor.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	case "tesseract":
		return extractor.NewTesseract(cfg.TesseractLang), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown extractor backend %q", cfg.Extractor)
	}
}

func buildDescriptor(cfg *config.Config, backend string) domain.ServiceDescriptor {
	return domain.ServiceDescriptor{
		Name:        cfg.ServiceName,
		Slug:        "doc-extract-service",
		URL:         cfg.ServiceURL,
		Summary:     "Extract structured text blocks and bounding boxes from document images.",
		Description: "Runs a pluggable vision model (" + backend + ") over document images and returns typed text blocks with pixel positions.",
		Status:      domain.ServiceAvailable,
		DataInFields: []domain.FieldDescription{
			{Name: usecase.FieldImage, Types: []domain.FieldType{domain.FieldImagePNG, domain.FieldImageJPEG}},
		},
		DataOutFields: []domain.FieldDescription{
			{Name: usecase.FieldResult, Types: []domain.FieldType{domain.FieldJSON}},
		},
		Tags: []domain.ServiceTag{
			{Name: "Image Processing", Acronym: "IP"},
			{Name: "Document Processing", Acronym: "DP"},
		},
		HasAI: true,
	}
}
