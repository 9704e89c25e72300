// Package qa answers natural-language questions by retrieving the most
// similar indexed fragments and handing them to a completion model as
// grounding context.
package qa

import (
	"context"
	"fmt"

	"github.com/bull/docqa-server/internal/storage"
)

// DefaultTopK is the number of fragments retrieved per question.
const DefaultTopK = 10

// Embedder embeds question text. It must be backed by the same model used
// at ingestion time.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Index serves k-nearest-neighbor queries over stored fragments.
type Index interface {
	Query(ctx context.Context, vector []float32, k int) ([]*storage.ScoredFragment, error)
}

// Retriever finds the fragments most similar to a question.
type Retriever struct {
	embedder Embedder
	index    Index
	topK     int
}

// NewRetriever creates a Retriever. A non-positive topK selects DefaultTopK.
func NewRetriever(embedder Embedder, index Index, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		topK:     topK,
	}
}

// Retrieve embeds the question and returns up to topK nearest fragments in
// the order the index ranked them. An empty index yields an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]*storage.ScoredFragment, error) {
	vectors, err := r.embedder.GenerateEmbeddings(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	fragments, err := r.index.Query(ctx, vectors[0], r.topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	return fragments, nil
}
