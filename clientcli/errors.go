package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for input validation.
var (
	ErrConfigRequired   = errors.New("config is required")
	ErrNoPaths          = errors.New("no paths provided")
	ErrEmptyPath        = errors.New("path is required")
	ErrDestNotDirectory = errors.New("destination is not an existing directory")
	ErrArchivePath      = errors.New("archive name cannot contain a directory; use -C to choose where the archive goes")
)
