// Package fingerprint computes content digests for source documents and
// tracks which digests have already been ingested.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// File computes the hex-encoded SHA-256 digest of a file's raw bytes.
// Byte-identical files always produce the same digest; any byte difference
// produces a different digest. Read errors are propagated, never swallowed.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Bytes computes the hex-encoded SHA-256 digest of raw bytes.
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
