package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/docqa-server/internal/api"
	"github.com/bull/docqa-server/internal/fingerprint"
	"github.com/bull/docqa-server/internal/qa"
	"github.com/bull/docqa-server/internal/storage"
)

// makeAskHandler creates the ask_documents tool handler.
func makeAskHandler(answers api.AnswerService) func(
	context.Context, *mcp.CallToolRequest, AskDocumentsInput,
) (*mcp.CallToolResult, AskDocumentsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskDocumentsInput) (
		*mcp.CallToolResult, AskDocumentsOutput, error,
	) {
		answer, err := answers.Ask(ctx, input.Question)
		if err != nil {
			if errors.Is(err, qa.ErrEmptyQuestion) {
				return nil, AskDocumentsOutput{}, fmt.Errorf("question must not be empty")
			}
			return nil, AskDocumentsOutput{}, fmt.Errorf("failed to answer question: %w", err)
		}

		return nil, AskDocumentsOutput{Answer: answer}, nil
	}
}

// makeTriggerHandler creates the trigger_ingestion tool handler.
// Ingestion runs in the background; use index_status to observe completion.
func makeTriggerHandler(runner *api.Runner) func(
	context.Context, *mcp.CallToolRequest, TriggerIngestionInput,
) (*mcp.CallToolResult, TriggerIngestionOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input TriggerIngestionInput) (
		*mcp.CallToolResult, TriggerIngestionOutput, error,
	) {
		if !runner.Trigger() {
			return nil, TriggerIngestionOutput{
				Started: false,
				Message: "An ingestion run is already in progress.",
			}, nil
		}

		return nil, TriggerIngestionOutput{
			Started: true,
			Message: "Ingestion started. Check index_status for progress.",
		}, nil
	}
}

// makeStatusHandler creates the index_status tool handler.
func makeStatusHandler(
	index *storage.Store,
	ledger *fingerprint.Ledger,
	runner *api.Runner,
) func(context.Context, *mcp.CallToolRequest, IndexStatusInput) (*mcp.CallToolResult, IndexStatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IndexStatusInput) (
		*mcp.CallToolResult, IndexStatusOutput, error,
	) {
		count, err := index.CountFragments(ctx)
		if err != nil {
			return nil, IndexStatusOutput{}, fmt.Errorf("failed to count fragments: %w", err)
		}

		status := runner.Status()
		return nil, IndexStatusOutput{
			FragmentCount:     count,
			DocumentsRecorded: ledger.Size(),
			IngestionState:    string(status.State),
			LastError:         status.LastError,
		}, nil
	}
}
