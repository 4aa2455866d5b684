package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rfpforge/rfpforge/internal/api"
	"github.com/rfpforge/rfpforge/internal/config"
	"github.com/rfpforge/rfpforge/internal/coordinator"
	"github.com/rfpforge/rfpforge/internal/delivery"
	"github.com/rfpforge/rfpforge/internal/domain"
	"github.com/rfpforge/rfpforge/internal/export"
	"github.com/rfpforge/rfpforge/internal/ingest"
	"github.com/rfpforge/rfpforge/internal/llm"
	"github.com/rfpforge/rfpforge/internal/routing"
	"github.com/rfpforge/rfpforge/internal/storage"
	"github.com/rfpforge/rfpforge/internal/worker"
)

var (
	configPath = flag.String("config", "", "Path to config file")

	input         = flag.String("input", "", "One-shot mode: process this query and exit")
	inputFile     = flag.String("file", "", "One-shot mode: document to process alongside the query")
	sessionFlag   = flag.String("session", "", "One-shot mode: session id to continue")
	compileFlag   = flag.String("compile", "", "One-shot mode: compile the given session id and exit")
	compileFormat = flag.String("format", "docx", "One-shot mode: compile output format (docx or pdf)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	facade, err := storage.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer facade.Close()

	client := llm.New(cfg.LLM)
	registry := worker.NewRegistry(worker.Specialists(client))
	router := routing.NewEngine(client, registry, logger)

	coord := coordinator.New(coordinator.Options{
		Registry:  registry,
		Router:    router,
		Facade:    facade,
		Extractor: ingest.NewFileExtractor(nil),
		Offloader: delivery.NewOffloader(facade.Objects, cfg.Delivery.PayloadCeiling, logger),
		Diagrams:  export.NewTextDiagramRenderer(cfg.Export.Dir),
		Renderer:  export.NewFileRenderer(cfg.Export.Dir),
		Logger:    logger,
		Config:    cfg.Coordinator,
	})

	if *compileFlag != "" {
		runCompile(ctx, coord, *compileFlag, *compileFormat, logger)
		return
	}
	if *input != "" {
		runOnce(ctx, cfg, coord, logger)
		return
	}

	serve(cfg, coord, facade, logger)
}

// runCompile assembles a session's proposal and prints the output path.
func runCompile(ctx context.Context, coord *coordinator.Coordinator, sessionID, format string, logger *zap.Logger) {
	path, err := coord.Compile(ctx, sessionID, format)
	if err != nil {
		logger.Fatal("Compile failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	fmt.Printf("Proposal saved to: %s\n", path)
}

// runOnce processes a single query from the command line, delivering the
// result through the chunked stdout transport.
func runOnce(ctx context.Context, cfg *config.Config, coord *coordinator.Coordinator, logger *zap.Logger) {
	envelope := coord.Process(ctx, domain.ProcessRequest{
		Text:      *input,
		FilePath:  *inputFile,
		SessionID: *sessionFlag,
	})

	fmt.Printf("Section: %s\nWorker:  %s\nSession: %s\n\n", envelope.Section, envelope.Agent, envelope.SessionID)

	sender := delivery.NewSender(cfg.Delivery, stdoutTransport{}, logger)
	if err := sender.SendAll(ctx, envelope.Output); err != nil {
		logger.Warn("output delivery incomplete", zap.Error(err))
	}

	if envelope.ContentKey != "" {
		fmt.Printf("\nFull output stored at: %s\n", envelope.ContentKey)
	}
	fmt.Printf("Continue with: -session %s\n", envelope.SessionID)
}

// stdoutTransport prints chunks to standard output.
type stdoutTransport struct{}

func (stdoutTransport) Send(_ context.Context, message string) error {
	_, err := fmt.Println(message)
	return err
}

func serve(cfg *config.Config, coord *coordinator.Coordinator, facade *storage.Facade, logger *zap.Logger) {
	router := api.SetupRouter(coord, facade, logger, api.RouterConfig{
		APIKey:       cfg.Admin.APIKey,
		AllowOrigins: []string{"*"},
		Environment:  cfg.Environment,
		UploadDir:    os.TempDir(),
	})

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 6 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting RFPForge server",
			zap.String("address", cfg.Address()),
			zap.String("environment", string(cfg.Environment)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
