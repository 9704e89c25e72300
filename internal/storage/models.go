package storage

// Fragment is the unit of embedding and retrieval: a bounded slice of
// normalized document text, stored in Qdrant together with its vector.
// Fragments are append-only; the pipeline never mutates or deletes them.
type Fragment struct {
	ID          string    // UUID used as Qdrant point ID
	Fingerprint string    // SHA-256 digest of the source document
	Source      string    // source file name, e.g. "decalogo.pdf"
	Page        int       // 1-indexed page the text was extracted from
	Index       int       // position within the page's fragment sequence
	Text        string    // normalized fragment text
	Embedding   []float32 // vector of the configured dimension
}

// ScoredFragment is a retrieval result: a fragment with its similarity score,
// in the order returned by the index.
type ScoredFragment struct {
	Fragment
	Score float64
}
