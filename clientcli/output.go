package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter renders operation results for output.
type Formatter interface {
	FormatListings(w io.Writer, listings []Listing) error
	FormatTransfer(w io.Writer, result *TransferResult, verb string) error
	FormatRemove(w io.Writer, results []RemoveResult) error
	FormatRelocate(w io.Writer, results []MoveResult, verb string) error
	FormatDu(w io.Writer, result *DuResult) error
	FormatMessage(w io.Writer, msg string) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs line-oriented text suitable for piping into
// other Unix tools.
type HumanFormatter struct {
	Quiet bool
}

// FormatListings renders directory listings in long format, one block
// per directory.
func (f *HumanFormatter) FormatListings(w io.Writer, listings []Listing) error {
	for i := range listings {
		l := &listings[i]
		if l.Err != nil {
			_, _ = fmt.Fprintf(w, "ERROR %s: %v\n", l.Dir, l.Err)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s:\n", l.Dir)
		for j := range l.Entries {
			e := &l.Entries[j]
			mtime := ""
			if !e.ModTime.IsZero() {
				mtime = e.ModTime.Format("2006-01-02 15:04:05")
			}
			_, _ = fmt.Fprintf(w, "%-10s  %-12s %-12s %12s  %s  %s\n",
				e.Perms, e.User, e.Group, e.Size, mtime, e.Name)
		}
		_, _ = fmt.Fprintln(w)
	}
	return nil
}

// FormatTransfer renders an upload or download result.
func (f *HumanFormatter) FormatTransfer(w io.Writer, result *TransferResult, verb string) error {
	if f.Quiet {
		return nil
	}
	if result.LocalPath == "-" || result.LocalPath == "" {
		_, _ = fmt.Fprintf(w, "%s: %s (%s)\n", verb, result.RemotePath, formatSize(result.Size))
		return nil
	}
	_, _ = fmt.Fprintf(w, "%s: %s -> %s (%s)\n",
		verb, result.RemotePath, result.LocalPath, formatSize(result.Size))
	return nil
}

// FormatRemove renders per-target delete results.
func (f *HumanFormatter) FormatRemove(w io.Writer, results []RemoveResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "ERROR %s: %v\n", r.Path, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "removed %s\n", r.Path)
		}
	}
	return nil
}

// FormatRelocate renders per-source move or copy results.
func (f *HumanFormatter) FormatRelocate(w io.Writer, results []MoveResult, verb string) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "ERROR %s: %v\n", r.Source, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "%s %s -> %s\n", verb, r.Source, r.Dest)
		}
	}
	return nil
}

// FormatDu renders per-target sizes with a du-style total line.
func (f *HumanFormatter) FormatDu(w io.Writer, result *DuResult) error {
	for i := range result.Entries {
		e := &result.Entries[i]
		if e.Err != nil {
			_, _ = fmt.Fprintf(w, "ERROR %s: %v\n", e.Path, e.Err)
			continue
		}
		_, _ = fmt.Fprintf(w, "%12s  %s\n", e.Size, e.Path)
	}
	if result.TotalKnown {
		_, _ = fmt.Fprintf(w, "%12d  total\n", result.Total)
	}
	return nil
}

// FormatMessage renders a plain informational line.
func (f *HumanFormatter) FormatMessage(w io.Writer, msg string) error {
	if f.Quiet {
		return nil
	}
	_, _ = fmt.Fprintln(w, msg)
	return nil
}

// FormatError renders an error.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList renders the configured site profiles as a table.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	maxNameLen := 4 // "NAME"
	maxURLLen := 8  // "BASE URL"
	for i := range profiles {
		if len(profiles[i].Name) > maxNameLen {
			maxNameLen = len(profiles[i].Name)
		}
		if len(profiles[i].BaseURL) > maxURLLen {
			maxURLLen = len(profiles[i].BaseURL)
		}
	}
	if maxNameLen > 20 {
		maxNameLen = 20
	}
	if maxURLLen > 50 {
		maxURLLen = 50
	}

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", maxNameLen, "NAME", maxURLLen, "BASE URL", "USERNAME")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n",
		strings.Repeat("-", maxNameLen), strings.Repeat("-", maxURLLen), strings.Repeat("-", 12))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := truncate(p.Name, maxNameLen)
		baseURL := truncate(p.BaseURL, maxURLLen)

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %s\n", marker, maxNameLen, name, maxURLLen, baseURL, p.Username)
	}

	return nil
}

// FormatProfileShow renders a single site profile.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Base URL: %s\n", profile.BaseURL)
	_, _ = fmt.Fprintf(w, "Username: %s\n", profile.Username)
	_, _ = fmt.Fprintf(w, "Password: %s\n", maskSecret(profile.Password, showSecrets))
	if profile.Insecure {
		_, _ = fmt.Fprintln(w, "Insecure: true (TLS verification disabled)")
	}
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatListings renders listings as JSON, with errors as strings.
func (f *JSONFormatter) FormatListings(w io.Writer, listings []Listing) error {
	type jsonListing struct {
		Dir     string    `json:"dir"`
		Entries []LsEntry `json:"entries,omitempty"`
		Error   string    `json:"error,omitempty"`
	}

	output := make([]jsonListing, len(listings))
	for i := range listings {
		l := &listings[i]
		jl := jsonListing{Dir: l.Dir, Entries: l.Entries}
		if l.Err != nil {
			jl.Error = l.Err.Error()
		}
		output[i] = jl
	}
	return writeJSON(w, output)
}

// FormatTransfer renders a transfer result as JSON.
func (f *JSONFormatter) FormatTransfer(w io.Writer, result *TransferResult, verb string) error {
	output := struct {
		Op string `json:"op"`
		*TransferResult
	}{Op: strings.ToLower(verb), TransferResult: result}
	return writeJSON(w, output)
}

// FormatRemove renders delete results as JSON.
func (f *JSONFormatter) FormatRemove(w io.Writer, results []RemoveResult) error {
	type jsonResult struct {
		Path    string `json:"path"`
		Removed bool   `json:"removed"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{Results: make([]jsonResult, len(results))}

	for i, r := range results {
		jr := jsonResult{Path: r.Path, Removed: r.Removed}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}
	return writeJSON(w, output)
}

// FormatRelocate renders move/copy results as JSON.
func (f *JSONFormatter) FormatRelocate(w io.Writer, results []MoveResult, verb string) error {
	type jsonResult struct {
		Source string `json:"source"`
		Dest   string `json:"dest"`
		Error  string `json:"error,omitempty"`
	}

	output := struct {
		Op      string       `json:"op"`
		Results []jsonResult `json:"results"`
	}{Op: strings.ToLower(verb), Results: make([]jsonResult, len(results))}

	for i, r := range results {
		jr := jsonResult{Source: r.Source, Dest: r.Dest}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}
	return writeJSON(w, output)
}

// FormatDu renders size results as JSON.
func (f *JSONFormatter) FormatDu(w io.Writer, result *DuResult) error {
	type jsonEntry struct {
		Path  string `json:"path"`
		Size  string `json:"size"`
		Bytes int64  `json:"bytes"`
		Error string `json:"error,omitempty"`
	}

	output := struct {
		Entries    []jsonEntry `json:"entries"`
		Total      int64       `json:"total_bytes"`
		TotalKnown bool        `json:"total_known"`
	}{
		Entries:    make([]jsonEntry, len(result.Entries)),
		Total:      result.Total,
		TotalKnown: result.TotalKnown,
	}

	for i, e := range result.Entries {
		je := jsonEntry{Path: e.Path, Size: e.Size, Bytes: e.Bytes}
		if e.Err != nil {
			je.Error = e.Err.Error()
		}
		output.Entries[i] = je
	}
	return writeJSON(w, output)
}

// FormatMessage renders an informational message as JSON.
func (f *JSONFormatter) FormatMessage(w io.Writer, msg string) error {
	return writeJSON(w, struct {
		Message string `json:"message"`
	}{Message: msg})
}

// FormatError renders an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}

// FormatProfileList renders profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name     string `json:"name"`
		BaseURL  string `json:"baseurl"`
		Username string `json:"username,omitempty"`
		Password string `json:"password,omitempty"`
		Insecure bool   `json:"insecure,omitempty"`
		Default  bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{Profiles: make([]jsonProfile, len(profiles))}

	for i := range profiles {
		p := &profiles[i]
		output.Profiles[i] = jsonProfile{
			Name:     p.Name,
			BaseURL:  p.BaseURL,
			Username: p.Username,
			Password: maskSecret(p.Password, showSecrets),
			Insecure: p.Insecure,
			Default:  p.Name == defaultName,
		}
	}
	return writeJSON(w, output)
}

// FormatProfileShow renders a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	output := struct {
		Name     string `json:"name"`
		BaseURL  string `json:"baseurl"`
		Username string `json:"username"`
		Password string `json:"password"`
		Insecure bool   `json:"insecure"`
		Default  bool   `json:"default"`
	}{
		Name:     profile.Name,
		BaseURL:  profile.BaseURL,
		Username: profile.Username,
		Password: maskSecret(profile.Password, showSecrets),
		Insecure: profile.Insecure,
		Default:  isDefault,
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// truncate shortens s to max characters with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// maskSecret masks a secret, keeping the first and last character as a
// hint. If showSecrets is true, returns the original value.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 6 {
		return "********"
	}
	return secret[:1] + "******" + secret[len(secret)-1:]
}
