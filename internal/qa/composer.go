package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/bull/docqa-server/internal/storage"
)

// DefaultMaxTokens bounds the length of a generated answer.
const DefaultMaxTokens = 1024

// answerTemplate is the fixed instruction template. It has exactly two
// placeholders, the question and the assembled context, and instructs the
// model not to introduce information absent from that context.
const answerTemplate = `You are an intelligent assistant answering questions about a document collection. Answer the user question strictly based on the provided context. Do not make assumptions or provide information that is not included in the context. Format your answer clearly and understandably. You may summarize or synthesize the information, but try to include as much relevant information as possible.

Question: %s

Context:
%s`

// contextSeparator joins fragment texts in the assembled context. Fragments
// are concatenated in retrieval order; the separator keeps a sentence ending
// one fragment from colliding with the start of the next.
const contextSeparator = "\n\n"

// Completer is the black-box completion service: prompt in, text out.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int64) (string, error)
}

// Composer fills the answer template and invokes the completion service.
type Composer struct {
	completer Completer
	maxTokens int64
}

// NewComposer creates a Composer. A non-positive maxTokens selects
// DefaultMaxTokens.
func NewComposer(completer Completer, maxTokens int64) *Composer {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Composer{
		completer: completer,
		maxTokens: maxTokens,
	}
}

// BuildContext concatenates fragment texts in retrieval order.
func BuildContext(fragments []*storage.ScoredFragment) string {
	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}
	return strings.Join(texts, contextSeparator)
}

// Compose renders the prompt from the question and retrieved fragments and
// returns the generated answer verbatim.
func (c *Composer) Compose(ctx context.Context, question string, fragments []*storage.ScoredFragment) (string, error) {
	prompt := fmt.Sprintf(answerTemplate, question, BuildContext(fragments))

	answer, err := c.completer.Complete(ctx, prompt, c.maxTokens)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return answer, nil
}
