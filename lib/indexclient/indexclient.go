// Package indexclient defines the seam to an external local file index
// (an out-of-scope SQLite-backed collaborator per spec.md Non-goals). Only
// the interface and a no-op implementation live here; no SQLite driver is
// wired since nothing in this module owns that storage.
package indexclient

// FileRecord is one entry the external index can report about a locally
// shared file.
type FileRecord struct {
	Path      string
	Size      uint64
	Extension string
}

// Stats summarizes the local share, as reported to SharedFoldersFiles.
type Stats struct {
	FolderCount uint32
	FileCount   uint32
}

// Index is the boundary this module calls into for local file lookups. A
// real implementation would be backed by SQLite; that storage and its
// schema are out of scope here (spec.md Non-goals).
type Index interface {
	Lookup(query string) ([]FileRecord, error)
	Stats() (Stats, error)
}

// NopIndex is an Index that reports nothing shared, for running the client
// without a local index configured.
type NopIndex struct{}

func (NopIndex) Lookup(string) ([]FileRecord, error) { return nil, nil }
func (NopIndex) Stats() (Stats, error)                { return Stats{}, nil }
