package panel

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a remote path does not exist.
	ErrNotFound = errors.New("remote path not found")
	// ErrSessionExpired is returned when the panel invalidated the session
	// and a single re-login attempt did not recover it.
	ErrSessionExpired = errors.New("session expired")
	// ErrConfigRequired is returned when New is called without a config.
	ErrConfigRequired = errors.New("config is required")
	// ErrSubdirectoryPath is returned when an operation only accepts plain
	// file names but a path with directory components was given.
	ErrSubdirectoryPath = errors.New("operation does not accept paths with directory components")
)

// AuthError indicates the panel rejected the credentials, never issued a
// usable session, or was unreachable during login.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	switch {
	case e.Message != "":
		return "authentication failed: " + e.Message
	case e.Err != nil:
		return "authentication failed: " + e.Err.Error()
	}
	return "authentication failed"
}

func (e *AuthError) Unwrap() error { return e.Err }

// PanelError is an error reported by the panel itself, either as a JSON
// status payload or as a msgbox on an HTML error page.
type PanelError struct {
	Op       string
	Message  string
	notFound bool
}

func (e *PanelError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unspecified panel error"
	}
	if e.Op == "" {
		return "panel: " + msg
	}
	return fmt.Sprintf("panel: %s: %s", e.Op, msg)
}

// Is lets errors.Is(err, ErrNotFound) match panel errors raised because
// the requested path could not be resolved.
func (e *PanelError) Is(target error) bool {
	return target == ErrNotFound && e.notFound
}
