// Package main provides the document Q&A server entry point.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bull/docqa-server/internal/api"
	"github.com/bull/docqa-server/internal/chunker"
	"github.com/bull/docqa-server/internal/config"
	"github.com/bull/docqa-server/internal/embedding"
	"github.com/bull/docqa-server/internal/fingerprint"
	"github.com/bull/docqa-server/internal/ingest"
	mcpserver "github.com/bull/docqa-server/internal/mcp"
	"github.com/bull/docqa-server/internal/pdf"
	"github.com/bull/docqa-server/internal/qa"
	"github.com/bull/docqa-server/internal/storage"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize storage
	store, err := storage.NewStore(cfg.Index.Host, cfg.Index.Port, cfg.Index.Collection, cfg.Embedding.Dimension)
	if err != nil {
		log.Fatalf("failed to connect to Qdrant: %v", err)
	}
	defer store.Close()

	// Ensure collection exists
	if err := store.EnsureCollection(ctx); err != nil {
		log.Fatalf("failed to ensure collection: %v", err)
	}

	// Initialize embedding client
	embeddingClient, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create embedding client: %v", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, cfg.Embedding.Model, cfg.Embedding.BatchSize)

	// Open the fingerprint ledger
	ledger, err := fingerprint.OpenLedger(cfg.Source.LedgerPath)
	if err != nil {
		log.Fatalf("failed to open fingerprint ledger: %v", err)
	}

	// Wire the ingestion pipeline
	coordinator := ingest.NewCoordinator(
		cfg.Source.Dir,
		pdf.NewExtractor(),
		chunker.New(cfg.Chunking.MaxChars, cfg.Chunking.Overlap),
		embedder,
		store,
		ledger,
		nil,
	)
	runner := api.NewRunner(coordinator, nil)

	// Wire question answering
	answers := qa.NewService(
		qa.NewRetriever(embedder, store, cfg.Answer.TopK),
		qa.NewComposer(qa.NewOpenAICompleter(embeddingClient, cfg.Answer.Model), cfg.Answer.MaxTokens),
		nil,
	)

	// The ready flag gates /ask until the bootstrap above finished; at this
	// point the collection exists, so the index is usable even if empty.
	var ready atomic.Bool
	ready.Store(true)

	// Create MCP server
	server := mcpserver.NewServer(&mcpserver.Config{
		Answers: answers,
		Runner:  runner,
		Index:   store,
		Ledger:  ledger,
	})

	// Create HTTP server with multiple endpoints
	mux := http.NewServeMux()
	mux.HandleFunc("/", api.NewLandingHandler())
	mux.HandleFunc("/health", api.NewHealthHandler(store, &ready))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	handler := api.NewHandler(answers, runner, &ready, nil)
	handler.Register(mux)

	// Check if running in server mode (HTTP) or stdio mode (local development)
	serverMode := getEnv("SERVER_MODE", "true") == "true"

	if serverMode {
		// HTTP mode: serve the JSON API and MCP over HTTP
		addr := "0.0.0.0:" + cfg.Server.Port
		log.Printf("Starting HTTP server on %s (ask at /ask, ingest at /ingest, MCP at /mcp)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP server over stdin/stdout for local clients
		// Also start the HTTP endpoints in background for local testing
		go func() {
			addr := "0.0.0.0:" + cfg.Server.Port
			log.Printf("Starting HTTP server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("HTTP server error: %v", err)
			}
		}()

		log.Println("Starting document Q&A MCP server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
