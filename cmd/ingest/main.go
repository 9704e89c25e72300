// Package main provides the ingestion CLI for the document Q&A index.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bull/docqa-server/internal/chunker"
	"github.com/bull/docqa-server/internal/config"
	"github.com/bull/docqa-server/internal/embedding"
	"github.com/bull/docqa-server/internal/fingerprint"
	"github.com/bull/docqa-server/internal/ingest"
	"github.com/bull/docqa-server/internal/pdf"
	"github.com/bull/docqa-server/internal/storage"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "docqa-ingest",
	Short: "Document Q&A index management tool",
	Long:  "CLI tool for managing the PDF document index in Qdrant",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Index new PDF files from the source directory",
	Long: `Scans the source directory and indexes PDF files not seen before.

This command:
1. Connects to Qdrant and verifies health
2. Ensures the fragment collection exists
3. Fingerprints each PDF and skips already-recorded files
4. Extracts, normalizes and chunks the text of new files
5. Embeds the fragments and upserts them into Qdrant
6. Records each file's fingerprint in the ledger

Environment variables:
  QDRANT_HOST    Qdrant hostname (default: localhost)
  QDRANT_PORT    Qdrant gRPC port (default: 6334)
  OPENAI_API_KEY OpenAI API key for embeddings (required)
  SOURCE_DIR     Directory scanned for PDF files
  LEDGER_PATH    Path of the fingerprint ledger file`,
	RunE: runIngest,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML configuration file")
	rootCmd.AddCommand(runCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	fmt.Println("Starting ingestion...")
	fmt.Println()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 1. Connect to Qdrant
	fmt.Printf("Connecting to Qdrant at %s:%d...\n", cfg.Index.Host, cfg.Index.Port)
	store, err := storage.NewStore(cfg.Index.Host, cfg.Index.Port, cfg.Index.Collection, cfg.Embedding.Dimension)
	if err != nil {
		return fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	defer store.Close()

	// 2. Check health
	if err := store.Health(ctx); err != nil {
		return fmt.Errorf("Qdrant health check failed: %w", err)
	}
	fmt.Println("Qdrant healthy")

	// 3. Ensure collection exists
	if err := store.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	// 4. Initialize embedding client
	embeddingClient, err := embedding.NewClient()
	if err != nil {
		return fmt.Errorf("failed to create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, cfg.Embedding.Model, cfg.Embedding.BatchSize)

	// 5. Open the fingerprint ledger
	ledger, err := fingerprint.OpenLedger(cfg.Source.LedgerPath)
	if err != nil {
		return fmt.Errorf("failed to open fingerprint ledger: %w", err)
	}

	// 6. Run the pipeline
	fmt.Println()
	fmt.Printf("Indexing PDF files from %s...\n", cfg.Source.Dir)
	coordinator := ingest.NewCoordinator(
		cfg.Source.Dir,
		pdf.NewExtractor(),
		chunker.New(cfg.Chunking.MaxChars, cfg.Chunking.Overlap),
		embedder,
		store,
		ledger,
		nil,
	)

	result, err := coordinator.Run(ctx)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	// 7. Print results
	fmt.Println()
	fmt.Println("Ingestion complete!")
	fmt.Printf("  Indexed:   %d\n", result.DocumentsIndexed)
	fmt.Printf("  Skipped:   %d\n", result.DocumentsSkipped)
	fmt.Printf("  Fragments: %d\n", result.FragmentsAdded)
	fmt.Printf("  Duration:  %s\n", result.Duration.Round(time.Millisecond))

	// 8. Print failed files if any
	if len(result.FailedFiles) > 0 {
		fmt.Println()
		fmt.Println("Failed files:")
		for _, failed := range result.FailedFiles {
			fmt.Printf("  - %s: %s\n", failed.Name, failed.Reason)
		}
	}

	fmt.Println()
	fmt.Printf("Total time: %s\n", time.Since(start).Round(time.Millisecond))

	return nil
}
