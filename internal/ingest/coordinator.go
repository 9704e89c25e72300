// Package ingest orchestrates incremental ingestion: it discovers PDF files,
// skips the ones already fingerprinted in the ledger, extracts and normalizes
// text, chunks it into fragments, embeds them and persists everything to the
// index before recording the new fingerprints.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bull/docqa-server/internal/chunker"
	"github.com/bull/docqa-server/internal/fingerprint"
	"github.com/bull/docqa-server/internal/pdf"
	"github.com/bull/docqa-server/internal/storage"
	"github.com/bull/docqa-server/internal/textnorm"
)

// Extractor yields the raw per-page text of a PDF file.
type Extractor interface {
	ExtractPages(ctx context.Context, path string) ([]pdf.Page, error)
}

// Embedder turns fragment texts into vectors.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Index persists fragments with their embeddings.
type Index interface {
	UpsertFragments(ctx context.Context, fragments []*storage.Fragment) error
}

// Ledger tracks which document digests have been fully ingested.
type Ledger interface {
	Contains(digest string) bool
	Append(digests []string) error
}

// Result summarizes one ingestion run.
type Result struct {
	DocumentsIndexed int           `json:"documents_indexed"`
	DocumentsSkipped int           `json:"documents_skipped"`
	FragmentsAdded   int           `json:"fragments_added"`
	FailedFiles      []FailedFile  `json:"failed_files,omitempty"`
	Duration         time.Duration `json:"-"`
}

// FailedFile records a file that could not be ingested this run. Its
// fingerprint is not written to the ledger, so it is retried next run.
type FailedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Coordinator runs the ingestion pipeline. Runs are serialized by a mutex so
// two overlapping triggers cannot double-embed the same new file.
type Coordinator struct {
	sourceDir string
	extractor Extractor
	chunker   *chunker.Chunker
	embedder  Embedder
	index     Index
	ledger    Ledger
	logger    *slog.Logger

	mu sync.Mutex
}

// NewCoordinator wires the pipeline components together.
func NewCoordinator(
	sourceDir string,
	extractor Extractor,
	chunks *chunker.Chunker,
	embedder Embedder,
	index Index,
	ledger Ledger,
	logger *slog.Logger,
) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		sourceDir: sourceDir,
		extractor: extractor,
		chunker:   chunks,
		embedder:  embedder,
		index:     index,
		ledger:    ledger,
		logger:    logger,
	}
}

// pendingDoc is a new document whose fragments are staged but not yet
// embedded or persisted.
type pendingDoc struct {
	name      string
	digest    string
	fragments []*storage.Fragment
}

// Run performs one incremental ingestion pass. It is idempotent: a second
// run with no new files adds nothing and touches neither index nor ledger.
// Fingerprints are appended to the ledger only after their fragments were
// durably upserted, never before.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	result := &Result{}

	entries, err := os.ReadDir(c.sourceDir)
	if err != nil {
		return nil, fmt.Errorf("read source directory %s: %w", c.sourceDir, err)
	}

	var pending []pendingDoc
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		path := filepath.Join(c.sourceDir, name)

		digest, err := fingerprint.File(path)
		if err != nil {
			c.logger.Warn("failed to fingerprint file", "file", name, "error", err)
			result.FailedFiles = append(result.FailedFiles, FailedFile{Name: name, Reason: err.Error()})
			continue
		}

		if c.ledger.Contains(digest) {
			result.DocumentsSkipped++
			c.logger.Debug("skipping already ingested file", "file", name)
			continue
		}

		fragments, err := c.prepareDocument(ctx, path, name, digest)
		if err != nil {
			// One unreadable file must not abort the rest of the run.
			c.logger.Warn("failed to extract document", "file", name, "error", err)
			result.FailedFiles = append(result.FailedFiles, FailedFile{Name: name, Reason: err.Error()})
			continue
		}
		if len(fragments) == 0 {
			c.logger.Warn("document produced no text, will retry next run", "file", name)
			continue
		}

		pending = append(pending, pendingDoc{name: name, digest: digest, fragments: fragments})
	}

	if len(pending) == 0 {
		result.Duration = time.Since(start)
		c.logger.Info("nothing to ingest",
			"skipped", result.DocumentsSkipped,
			"failed", len(result.FailedFiles),
		)
		return result, nil
	}

	// Embed all new fragments in one batched call.
	var texts []string
	var all []*storage.Fragment
	for _, doc := range pending {
		for _, f := range doc.fragments {
			texts = append(texts, f.Text)
			all = append(all, f)
		}
	}

	vectors, err := c.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("generate embeddings: %w", err)
	}
	if len(vectors) != len(all) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d fragments", len(vectors), len(all))
	}
	for i, f := range all {
		f.Embedding = vectors[i]
	}

	if err := c.index.UpsertFragments(ctx, all); err != nil {
		return nil, fmt.Errorf("persist fragments: %w", err)
	}

	// Record fingerprints only after the upsert succeeded. A crash between
	// these two writes can leave an indexed document missing from the
	// ledger; re-running ingestion repairs that by re-indexing it.
	digests := make([]string, len(pending))
	for i, doc := range pending {
		digests[i] = doc.digest
	}
	if err := c.ledger.Append(digests); err != nil {
		return nil, fmt.Errorf("record fingerprints: %w", err)
	}

	result.DocumentsIndexed = len(pending)
	result.FragmentsAdded = len(all)
	result.Duration = time.Since(start)

	c.logger.Info("ingestion complete",
		"indexed", result.DocumentsIndexed,
		"skipped", result.DocumentsSkipped,
		"failed", len(result.FailedFiles),
		"fragments", result.FragmentsAdded,
		"duration", result.Duration,
	)

	return result, nil
}

// prepareDocument extracts, normalizes and chunks one new file into
// provenance-tagged fragments, without embeddings yet.
func (c *Coordinator) prepareDocument(ctx context.Context, path, name, digest string) ([]*storage.Fragment, error) {
	pages, err := c.extractor.ExtractPages(ctx, path)
	if err != nil {
		return nil, err
	}

	var fragments []*storage.Fragment
	for _, page := range pages {
		clean := textnorm.Clean(page.Text)
		if clean == "" {
			continue
		}
		for _, frag := range c.chunker.Split(clean) {
			fragments = append(fragments, &storage.Fragment{
				ID:          uuid.New().String(),
				Fingerprint: digest,
				Source:      name,
				Page:        page.Number,
				Index:       frag.Index,
				Text:        frag.Text,
			})
		}
	}

	c.logger.Debug("prepared document", "file", name, "pages", len(pages), "fragments", len(fragments))
	return fragments, nil
}
