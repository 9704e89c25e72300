// Package storage persists fragments and their embeddings in Qdrant and
// serves k-nearest-neighbor queries over them.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"
)

// upsertBatchSize bounds the number of points sent per Upsert call.
const upsertBatchSize = 100

// Store wraps the Qdrant client with collection management, dimension
// validation and retry behavior. The pipeline only ever appends points;
// existing records are never mutated or deleted.
type Store struct {
	client     *qdrant.Client
	collection string
	dimension  int
}

// NewStore connects to Qdrant and verifies it is reachable, retrying with
// exponential backoff before giving up.
func NewStore(host string, port int, collection string, dimension int) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	s := &Store{
		client:     client,
		collection: collection,
		dimension:  dimension,
	}

	if err := s.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrIndexUnreachable, err)
	}

	return s, nil
}

// healthCheckWithRetry polls Qdrant health with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *Store) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(b, ctx))
}

// Health performs a single health check against Qdrant.
func (s *Store) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollection creates the fragment collection if it does not exist,
// with cosine distance and a payload index on the source fingerprint.
// Idempotent, safe to call on every startup.
func (s *Store) EnsureCollection(ctx context.Context) error {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, name := range collections {
		if name == s.collection {
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	// Fingerprint lookups back the ledger consistency checks; without the
	// index they degrade to full scans.
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collection,
		FieldName:      "fingerprint",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("create fingerprint index: %w", err)
	}

	return nil
}

// Close closes the Qdrant client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// UpsertFragments stores fragments with their embeddings, in batches of 100.
// Every embedding is validated against the configured dimension before any
// network call, so a partial write cannot be caused by a malformed batch.
func (s *Store) UpsertFragments(ctx context.Context, fragments []*Fragment) error {
	if len(fragments) == 0 {
		return nil
	}

	for i, f := range fragments {
		if len(f.Embedding) != s.dimension {
			return fmt.Errorf("%w: fragment %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(f.Embedding), s.dimension)
		}
	}

	for i := 0; i < len(fragments); i += upsertBatchSize {
		end := min(i+upsertBatchSize, len(fragments))
		batch := fragments[i:end]

		points := make([]*qdrant.PointStruct, len(batch))
		for j, f := range batch {
			points[j] = &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(f.ID),
				Vectors: qdrant.NewVectors(f.Embedding...),
				Payload: qdrant.NewValueMap(map[string]any{
					"fingerprint": f.Fingerprint,
					"source":      f.Source,
					"page":        f.Page,
					"index":       f.Index,
					"text":        f.Text,
				}),
			}
		}

		if err := s.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// upsertWithRetry performs an upsert with exponential backoff on failure.
func (s *Store) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Points:         points,
		})
		return err
	}, backoff.WithContext(b, ctx))
}

// Query returns the k fragments nearest to the given vector, ordered by
// similarity. Fewer than k results are returned when the collection holds
// fewer fragments; an empty collection yields an empty slice, not an error.
func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]*ScoredFragment, error) {
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), s.dimension)
	}

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query fragments: %w", err)
	}

	fragments := make([]*ScoredFragment, 0, len(results))
	for _, result := range results {
		payload := result.Payload
		fragments = append(fragments, &ScoredFragment{
			Fragment: Fragment{
				ID:          result.Id.GetUuid(),
				Fingerprint: payload["fingerprint"].GetStringValue(),
				Source:      payload["source"].GetStringValue(),
				Page:        int(payload["page"].GetIntegerValue()),
				Index:       int(payload["index"].GetIntegerValue()),
				Text:        payload["text"].GetStringValue(),
			},
			Score: float64(result.Score),
		})
	}

	return fragments, nil
}

// CountFragments returns the total number of points in the collection.
func (s *Store) CountFragments(ctx context.Context) (uint64, error) {
	collection, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("get collection: %w", err)
	}
	return collection.GetPointsCount(), nil
}

// HasFragments reports whether any fragment exists for the given document
// fingerprint. Used to check ledger/index consistency after a crash.
func (s *Store) HasFragments(ctx context.Context, digest string) (bool, error) {
	results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("fingerprint", digest),
			},
		},
		Limit:       qdrant.PtrOf(uint32(1)),
		WithPayload: qdrant.NewWithPayload(false),
	})
	if err != nil {
		return false, fmt.Errorf("scroll by fingerprint: %w", err)
	}
	return len(results) > 0, nil
}
