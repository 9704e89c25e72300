// Package mcp exposes the question-answering pipeline as MCP tools so
// agent clients can query the indexed corpus and manage ingestion.
package mcp

// AskDocumentsInput defines the input parameters for the ask_documents tool.
type AskDocumentsInput struct {
	// Question is the natural-language question to answer from the corpus.
	Question string `json:"question" jsonschema:"required,description=The question to answer from the indexed documents"`
}

// AskDocumentsOutput contains the composed answer.
type AskDocumentsOutput struct {
	// Answer is the model's answer grounded in retrieved fragments.
	Answer string `json:"answer"`
}

// TriggerIngestionInput defines the input parameters for the
// trigger_ingestion tool. It takes no parameters.
type TriggerIngestionInput struct{}

// TriggerIngestionOutput reports whether a new run was started.
type TriggerIngestionOutput struct {
	// Started is false when a run was already in flight.
	Started bool `json:"started"`
	// Message provides informational context.
	Message string `json:"message"`
}

// IndexStatusInput defines the input parameters for the index_status tool.
// It takes no parameters.
type IndexStatusInput struct{}

// IndexStatusOutput describes the current state of the index.
type IndexStatusOutput struct {
	// FragmentCount is the number of fragments stored in the index.
	FragmentCount uint64 `json:"fragment_count"`
	// DocumentsRecorded is the number of source documents in the ledger.
	DocumentsRecorded int `json:"documents_recorded"`
	// IngestionState is the state of the most recent ingestion run.
	IngestionState string `json:"ingestion_state"`
	// LastError is set when the most recent run failed.
	LastError string `json:"last_error,omitempty"`
}
