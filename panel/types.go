package panel

import (
	"encoding/json"
	"time"
)

// Entry is one row of a file-manager directory listing.
type Entry struct {
	Name                  string      `json:"name"`
	Type                  string      `json:"type"`
	Size                  json.Number `json:"size"`
	User                  string      `json:"user"`
	Group                 string      `json:"group"`
	FilePerms             string      `json:"filePerms"`
	IsDirectory           bool        `json:"isDirectory"`
	ModificationTimestamp json.Number `json:"modificationTimestamp"`
}

// ModTime converts the panel's epoch timestamp to a time.Time.
// Returns the zero time when the panel sent nothing usable.
func (e *Entry) ModTime() time.Time {
	ts, err := e.ModificationTimestamp.Int64()
	if err != nil || ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// SizeBytes returns the entry size in bytes, or -1 when the panel sent a
// non-numeric size.
func (e *Entry) SizeBytes() int64 {
	n, err := e.Size.Int64()
	if err != nil {
		return -1
	}
	return n
}

// DirListing is the decoded list-data response. Requesting a listing also
// moves the panel's server-side working directory, which several other
// endpoints resolve relative paths against.
type DirListing struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	State   struct {
		CurrentDir string `json:"currentDir"`
	} `json:"state"`
	Data []Entry `json:"data"`
}

// statusMessage is one entry of the statusMessages array several
// endpoints report their outcome in.
type statusMessage struct {
	Content string `json:"content"`
	Status  string `json:"status"`
}

// statusResponse covers the two result shapes the file-manager endpoints
// use: a flat status/message pair, or a statusMessages array.
type statusResponse struct {
	Status         string          `json:"status"`
	Message        string          `json:"message"`
	StatusMessages []statusMessage `json:"statusMessages"`
}

// err maps an error-shaped response to a *PanelError, or nil for success.
func (r *statusResponse) err(op string) error {
	switch r.Status {
	case "error", "fail":
		return &PanelError{Op: op, Message: r.Message}
	}
	if len(r.StatusMessages) > 0 && r.StatusMessages[0].Status == "error" {
		return &PanelError{Op: op, Message: r.StatusMessages[0].Content}
	}
	return nil
}

// sizeText is a calculate-size value. The panel sends these both as
// JSON numbers and as quoted strings depending on version.
type sizeText string

func (s *sizeText) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*s = sizeText(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = sizeText(str)
	return nil
}

// sizeResponse is the calculate-size result: sizes keyed by file name
// plus a human-readable summary message.
type sizeResponse struct {
	FileSizes      map[string]sizeText `json:"fileSizes"`
	StatusMessages []statusMessage     `json:"statusMessages"`
}
