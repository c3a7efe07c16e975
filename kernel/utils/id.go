package utils

import "github.com/google/uuid"

// NewSnapshotID returns a fresh identifier for naming a zone snapshot
// (cmd/regiond stamps each POST /snapshot run with one).
func NewSnapshotID() string {
	return uuid.NewString()
}
