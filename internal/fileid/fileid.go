// Package fileid derives stable file identifiers from paths.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// idBytes is how much of the sha256 digest goes into an id.
const idBytes = 16

// FileID returns a stable identifier for the file at path. Relative paths
// are resolved against the working directory first, so the same file always
// yields the same id whether it is reached by the indexer or the watcher.
func FileID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	hash := sha256.Sum256([]byte(filepath.Clean(path)))
	return hex.EncodeToString(hash[:idBytes])
}

// Valid reports whether id has the shape FileID produces.
func Valid(id string) bool {
	if len(id) != idBytes*2 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}
