package fingerprint

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Ledger is an append-only, line-delimited set of content digests that have
// been fully ingested. It is the sole source of "already ingested" truth and
// survives process restart. A digest must only be appended after its
// document's fragments were durably written to the index.
type Ledger struct {
	path string

	mu   sync.Mutex
	seen map[string]struct{}
}

// OpenLedger loads the ledger at path, creating parent directories as needed.
// A missing ledger file is treated as an empty ledger.
func OpenLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	seen := make(map[string]struct{})

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("open ledger %s: %w", path, err)
		}
	} else {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			digest := strings.TrimSpace(scanner.Text())
			if digest != "" {
				seen[digest] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read ledger %s: %w", path, err)
		}
	}

	return &Ledger{path: path, seen: seen}, nil
}

// Contains reports whether digest has already been recorded.
func (l *Ledger) Contains(digest string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[digest]
	return ok
}

// Append records digests as ingested. The write is flushed to disk before the
// in-memory set is updated, so a crash mid-append never leaves the set ahead
// of the file.
func (l *Ledger) Append(digests []string) error {
	if len(digests) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger for append: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, digest := range digests {
		b.WriteString(digest)
		b.WriteString("\n")
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}

	for _, digest := range digests {
		l.seen[digest] = struct{}{}
	}
	return nil
}

// Size returns the number of recorded digests.
func (l *Ledger) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}
