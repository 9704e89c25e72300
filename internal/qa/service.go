package qa

import (
	"context"
	"log/slog"
	"strings"
)

// Service is the question-answering entry point: validate, retrieve, compose.
type Service struct {
	retriever *Retriever
	composer  *Composer
	logger    *slog.Logger
}

// NewService wires the retriever and composer together.
func NewService(retriever *Retriever, composer *Composer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		retriever: retriever,
		composer:  composer,
		logger:    logger,
	}
}

// Ask answers a question from the indexed corpus. An empty question returns
// ErrEmptyQuestion without touching the retrieval or completion services.
// An empty index is not an error: the model is asked against an empty
// context and answers accordingly.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}

	fragments, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return "", err
	}
	s.logger.Debug("retrieved context", "fragments", len(fragments))

	answer, err := s.composer.Compose(ctx, question, fragments)
	if err != nil {
		return "", err
	}

	return answer, nil
}
