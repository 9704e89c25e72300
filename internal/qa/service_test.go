package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/docqa-server/internal/storage"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) GenerateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

type fakeIndex struct {
	fragments []*storage.ScoredFragment
	gotK      int
	err       error
}

func (f *fakeIndex) Query(_ context.Context, _ []float32, k int) ([]*storage.ScoredFragment, error) {
	f.gotK = k
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.fragments) {
		return f.fragments[:k], nil
	}
	return f.fragments, nil
}

type fakeCompleter struct {
	calls   int
	prompts []string
	answer  string
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, _ int64) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func scored(texts ...string) []*storage.ScoredFragment {
	fragments := make([]*storage.ScoredFragment, len(texts))
	for i, text := range texts {
		fragments[i] = &storage.ScoredFragment{
			Fragment: storage.Fragment{Text: text},
			Score:    1.0 - float64(i)*0.1,
		}
	}
	return fragments
}

func newService(embedder *fakeEmbedder, index *fakeIndex, completer *fakeCompleter) *Service {
	return NewService(
		NewRetriever(embedder, index, 10),
		NewComposer(completer, 1024),
		nil,
	)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	embedder := &fakeEmbedder{}
	completer := &fakeCompleter{answer: "never"}
	svc := newService(embedder, &fakeIndex{}, completer)

	for _, question := range []string{"", "   ", "\n\t"} {
		_, err := svc.Ask(context.Background(), question)
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	}

	assert.Equal(t, 0, embedder.calls, "no embedding for invalid questions")
	assert.Equal(t, 0, completer.calls, "no completion for invalid questions")
}

func TestAsk_EmptyIndex(t *testing.T) {
	completer := &fakeCompleter{answer: "I do not have enough information to answer that."}
	svc := newService(&fakeEmbedder{}, &fakeIndex{}, completer)

	answer, err := svc.Ask(context.Background(), "anything")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	assert.Equal(t, 1, completer.calls)
}

func TestAsk_ContextAssembledInRetrievalOrder(t *testing.T) {
	index := &fakeIndex{fragments: scored("primer fragmento cafe", "segundo fragmento", "tercer fragmento")}
	completer := &fakeCompleter{answer: "the document mentions cafe"}
	svc := newService(&fakeEmbedder{}, index, completer)

	answer, err := svc.Ask(context.Background(), "What does the document mention?")
	require.NoError(t, err)
	assert.Equal(t, "the document mentions cafe", answer)

	require.Len(t, completer.prompts, 1)
	prompt := completer.prompts[0]
	assert.Contains(t, prompt, "What does the document mention?")
	assert.Contains(t, prompt, "cafe")
	// Retrieval order is preserved in the assembled context.
	first := strings.Index(prompt, "primer fragmento")
	second := strings.Index(prompt, "segundo fragmento")
	third := strings.Index(prompt, "tercer fragmento")
	assert.True(t, first < second && second < third, "fragments out of order in prompt")
}

func TestAsk_RetrievalErrorPropagates(t *testing.T) {
	index := &fakeIndex{err: errors.New("index offline")}
	completer := &fakeCompleter{answer: "never"}
	svc := newService(&fakeEmbedder{}, index, completer)

	_, err := svc.Ask(context.Background(), "a question")
	require.Error(t, err)
	assert.Equal(t, 0, completer.calls)
}

func TestAsk_CompletionErrorPropagates(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("model overloaded")}
	svc := newService(&fakeEmbedder{}, &fakeIndex{fragments: scored("context")}, completer)

	_, err := svc.Ask(context.Background(), "a question")
	assert.Error(t, err)
}

func TestRetriever_UsesConfiguredTopK(t *testing.T) {
	index := &fakeIndex{fragments: scored("a", "b", "c", "d", "e", "f")}
	retriever := NewRetriever(&fakeEmbedder{}, index, 3)

	fragments, err := retriever.Retrieve(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, 3, index.gotK)
	assert.Len(t, fragments, 3)
}

func TestRetriever_DefaultTopK(t *testing.T) {
	retriever := NewRetriever(&fakeEmbedder{}, &fakeIndex{}, 0)
	_, err := retriever.Retrieve(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, retriever.topK)
}

func TestBuildContext_Separator(t *testing.T) {
	assembled := BuildContext(scored("one.", "two."))
	assert.Equal(t, "one.\n\ntwo.", assembled)
}

func TestBuildContext_Empty(t *testing.T) {
	assert.Equal(t, "", BuildContext(nil))
}

func TestComposer_TemplateHasQuestionAndContext(t *testing.T) {
	completer := &fakeCompleter{answer: "ok"}
	composer := NewComposer(completer, 0)

	_, err := composer.Compose(context.Background(), "the question?", scored("the context body"))
	require.NoError(t, err)

	prompt := completer.prompts[0]
	assert.Contains(t, prompt, "Question: the question?")
	assert.Contains(t, prompt, "the context body")
	assert.Contains(t, prompt, "strictly based on the provided context")
	// Exactly the two placeholders were substituted.
	assert.Equal(t, fmt.Sprintf(answerTemplate, "the question?", "the context body"), prompt)
}
