package clientcli

import (
	"io"
	"time"
)

// LsOptions configures a directory listing.
type LsOptions struct {
	Dir          string
	Recurse      bool
	IgnoreErrors bool // report unreadable directories instead of aborting
}

// LsEntry is one line of a listing, shaped like ls -l output.
type LsEntry struct {
	Name    string    `json:"name"`
	Perms   string    `json:"perms"`
	User    string    `json:"user"`
	Group   string    `json:"group"`
	Size    string    `json:"size"`
	ModTime time.Time `json:"mtime"`
	IsDir   bool      `json:"is_dir"`
}

// Listing holds the entries of one directory. Err is set instead of
// Entries when the directory could not be listed and the caller asked to
// continue past errors.
type Listing struct {
	Dir     string    `json:"dir"`
	Entries []LsEntry `json:"entries"`
	Err     error     `json:"-"`
}

// GetOptions configures a download to the local filesystem.
type GetOptions struct {
	RemotePath string
	LocalPath  string // empty or "-" = stdout; existing directory = inside it
}

// PutOptions configures an upload from the local filesystem.
type PutOptions struct {
	LocalPath  string
	RemotePath string    // full remote file path
	Content    io.Reader // when set, read from here instead of LocalPath
}

// TransferResult describes one completed upload or download.
type TransferResult struct {
	RemotePath string `json:"remote_path"`
	LocalPath  string `json:"local_path"`
	Size       int64  `json:"size_bytes"`
}

// RemoveResult is the outcome of deleting a single target.
type RemoveResult struct {
	Path    string `json:"path"`
	Removed bool   `json:"removed"`
	Err     error  `json:"-"`
}

// MoveOptions configures a multi-source move or copy. Dir rebases
// relative sources; Dest is resolved against the account root.
type MoveOptions struct {
	Dir     string
	Sources []string
	Dest    string
}

// MoveResult is the outcome of moving or copying a single source.
type MoveResult struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
	Err    error  `json:"-"`
}

// ZipOptions configures a server-side archive creation.
type ZipOptions struct {
	Dir     string // directory the archive is created in
	ZipName string
	Files   []string
}

// DuOptions configures a size report. An empty Files list sizes every
// entry of Dir.
type DuOptions struct {
	Dir   string
	Files []string
}

// DuEntry is the recursive size of one target. Bytes is -1 when the
// panel sent a non-numeric size.
type DuEntry struct {
	Path  string `json:"path"`
	Size  string `json:"size"`
	Bytes int64  `json:"bytes"`
	Err   error  `json:"-"`
}

// DuResult aggregates per-target sizes. Total only covers targets whose
// size the panel reported numerically; TotalKnown is false when any
// target failed or was non-numeric.
type DuResult struct {
	Entries    []DuEntry `json:"entries"`
	Total      int64     `json:"total_bytes"`
	TotalKnown bool      `json:"total_known"`
}

// HasListingErrors returns true if any directory could not be listed.
func HasListingErrors(listings []Listing) bool {
	for i := range listings {
		if listings[i].Err != nil {
			return true
		}
	}
	return false
}

// HasRemoveErrors returns true if any delete target failed.
func HasRemoveErrors(results []RemoveResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

// HasMoveErrors returns true if any move or copy source failed.
func HasMoveErrors(results []MoveResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

// HasErrors returns true if any size target failed.
func (r *DuResult) HasErrors() bool {
	for i := range r.Entries {
		if r.Entries[i].Err != nil {
			return true
		}
	}
	return false
}
