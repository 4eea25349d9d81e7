package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/prepflow/studybuddy/pkg/ai"
	"github.com/prepflow/studybuddy/pkg/auth"
	"github.com/prepflow/studybuddy/pkg/bootstrap"
	"github.com/prepflow/studybuddy/pkg/chat"
	"github.com/prepflow/studybuddy/pkg/config"
	"github.com/prepflow/studybuddy/pkg/db"
	"github.com/prepflow/studybuddy/pkg/server"
	"github.com/prepflow/studybuddy/pkg/studyprofile"
)

func main() {
	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Level:           log.InfoLevel,
		TimeFormat:      time.Kitchen,
	})

	envs, err := config.LoadConfig(false)
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Info("Using database path", "path", envs.DBPath)

	if envs.EmbeddedNats {
		natsServer, err := bootstrap.StartEmbeddedNATSServer(logger)
		if err != nil {
			panic(errors.Wrap(err, "Unable to start nats server"))
		}
		defer natsServer.Shutdown()
	}

	nc, err := bootstrap.NewNatsClient(envs.NatsURL)
	if err != nil {
		panic(errors.Wrap(err, "Unable to create nats client"))
	}
	defer nc.Close()
	logger.Info("NATS client connected")

	store, err := db.NewStore(context.Background(), logger, envs.DBPath)
	if err != nil {
		panic(errors.Wrap(err, "Unable to create or initialize database"))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Error closing store", "error", err)
		}
	}()
	logger.Info("SQLite database initialized")

	chatCompletions := ai.NewOpenAIService(logger, envs.CompletionsAPIKey, envs.CompletionsAPIURL)
	extractionCompletions := ai.NewOpenAIService(logger, envs.CompletionsAPIKey, envs.CompletionsAPIURL,
		ai.WithTemperature(0.1), ai.WithMaxTokens(1500))

	planner := studyprofile.NewPlanner()
	extractor := studyprofile.NewExtractor(logger, extractionCompletions, planner, envs.ExtractionModel)
	applier := studyprofile.NewApplier(logger, store)

	chatService := chat.NewService(logger, chatCompletions, extractor, applier, store, nc, envs.CompletionsModel)
	verifier := auth.NewVerifier(envs.JWTSecret)

	srv := &http.Server{
		Addr:    ":" + envs.HTTPPort,
		Handler: server.New(logger, chatService, applier, store, verifier).Handler(),
	}

	go func() {
		logger.Info("HTTP server listening", "port", envs.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
}
