package clientcli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, NewFormatter(true, false))
	assert.IsType(t, &HumanFormatter{}, NewFormatter(false, false))
}

func TestHumanFormatListings(t *testing.T) {
	t.Run("long format with header", func(t *testing.T) {
		f := &HumanFormatter{}
		var buf bytes.Buffer

		mtime := time.Date(2024, 7, 2, 12, 0, 0, 0, time.UTC)
		err := f.FormatListings(&buf, []Listing{{
			Dir: "/docs",
			Entries: []LsEntry{
				{Name: "a.txt", Perms: "-rw-r--r--", User: "u10", Group: "g10", Size: "5", ModTime: mtime},
				{Name: "sub", Perms: "drwxr-xr-x", User: "u10", Group: "g10", Size: "4096", ModTime: mtime, IsDir: true},
			},
		}})
		require.NoError(t, err)

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "/docs:\n"))
		assert.Contains(t, out, "-rw-r--r--")
		assert.Contains(t, out, "2024-07-02 12:00:00")
		assert.Contains(t, out, "a.txt")
		assert.True(t, strings.HasSuffix(out, "\n\n"))
	})

	t.Run("listing error", func(t *testing.T) {
		f := &HumanFormatter{}
		var buf bytes.Buffer

		err := f.FormatListings(&buf, []Listing{{Dir: "/gone", Err: errors.New("not found")}})
		require.NoError(t, err)
		assert.Equal(t, "ERROR /gone: not found\n", buf.String())
	})
}

func TestHumanFormatTransfer(t *testing.T) {
	t.Run("to local path", func(t *testing.T) {
		f := &HumanFormatter{}
		var buf bytes.Buffer

		result := &TransferResult{RemotePath: "/docs/a.txt", LocalPath: "a.txt", Size: 2048}
		require.NoError(t, f.FormatTransfer(&buf, result, "downloaded"))
		assert.Equal(t, "downloaded: /docs/a.txt -> a.txt (2.0 KB)\n", buf.String())
	})

	t.Run("streamed", func(t *testing.T) {
		f := &HumanFormatter{}
		var buf bytes.Buffer

		result := &TransferResult{RemotePath: "/docs/a.txt", LocalPath: "-", Size: 5}
		require.NoError(t, f.FormatTransfer(&buf, result, "uploaded"))
		assert.Equal(t, "uploaded: /docs/a.txt (5 B)\n", buf.String())
	})

	t.Run("quiet suppresses output", func(t *testing.T) {
		f := &HumanFormatter{Quiet: true}
		var buf bytes.Buffer

		require.NoError(t, f.FormatTransfer(&buf, &TransferResult{}, "uploaded"))
		assert.Empty(t, buf.String())
	})
}

func TestHumanFormatRemove(t *testing.T) {
	f := &HumanFormatter{}
	var buf bytes.Buffer

	err := f.FormatRemove(&buf, []RemoveResult{
		{Path: "a.txt", Removed: true},
		{Path: "gone.txt", Err: errors.New("no such file")},
	})
	require.NoError(t, err)
	assert.Equal(t, "removed a.txt\nERROR gone.txt: no such file\n", buf.String())
}

func TestHumanFormatDu(t *testing.T) {
	t.Run("with total", func(t *testing.T) {
		f := &HumanFormatter{}
		var buf bytes.Buffer

		err := f.FormatDu(&buf, &DuResult{
			Entries:    []DuEntry{{Path: "a.txt", Size: "5", Bytes: 5}},
			Total:      5,
			TotalKnown: true,
		})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "  a.txt\n")
		assert.Contains(t, buf.String(), "  total\n")
	})

	t.Run("total omitted when unknown", func(t *testing.T) {
		f := &HumanFormatter{}
		var buf bytes.Buffer

		err := f.FormatDu(&buf, &DuResult{
			Entries: []DuEntry{{Path: "a.txt", Err: errors.New("failed")}},
		})
		require.NoError(t, err)
		assert.NotContains(t, buf.String(), "total")
	})
}

func TestJSONFormatRemove(t *testing.T) {
	f := &JSONFormatter{}
	var buf bytes.Buffer

	err := f.FormatRemove(&buf, []RemoveResult{
		{Path: "a.txt", Removed: true},
		{Path: "gone.txt", Err: errors.New("no such file")},
	})
	require.NoError(t, err)

	var decoded struct {
		Results []struct {
			Path    string `json:"path"`
			Removed bool   `json:"removed"`
			Error   string `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Results, 2)
	assert.True(t, decoded.Results[0].Removed)
	assert.Equal(t, "no such file", decoded.Results[1].Error)
}

func TestJSONFormatDu(t *testing.T) {
	f := &JSONFormatter{}
	var buf bytes.Buffer

	err := f.FormatDu(&buf, &DuResult{
		Entries:    []DuEntry{{Path: "a.txt", Size: "5", Bytes: 5}},
		Total:      5,
		TotalKnown: true,
	})
	require.NoError(t, err)

	var decoded struct {
		Total      int64 `json:"total_bytes"`
		TotalKnown bool  `json:"total_known"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, int64(5), decoded.Total)
	assert.True(t, decoded.TotalKnown)
}

func TestFormatProfileList(t *testing.T) {
	profiles := []Profile{
		{Name: "prod", BaseURL: "https://prod.example.com:8443", Username: "admin", Password: "s3cretpass"},
		{Name: "staging", BaseURL: "https://staging.example.com:8443", Username: "dev"},
	}

	t.Run("human marks the default", func(t *testing.T) {
		f := &HumanFormatter{}
		var buf bytes.Buffer

		require.NoError(t, f.FormatProfileList(&buf, profiles, "prod", false))
		out := buf.String()
		assert.Contains(t, out, "* prod")
		assert.Contains(t, out, "  staging")
	})

	t.Run("json masks secrets", func(t *testing.T) {
		f := &JSONFormatter{}
		var buf bytes.Buffer

		require.NoError(t, f.FormatProfileList(&buf, profiles, "prod", false))
		assert.NotContains(t, buf.String(), "s3cretpass")
		assert.Contains(t, buf.String(), `"default": true`)
	})
}

func TestFormatProfileShow(t *testing.T) {
	f := &HumanFormatter{}
	var buf bytes.Buffer

	profile := Profile{Name: "prod", BaseURL: "https://prod.example.com:8443", Username: "admin", Password: "s3cretpass"}
	require.NoError(t, f.FormatProfileShow(&buf, profile, true, false))

	out := buf.String()
	assert.Contains(t, out, "prod (default)")
	assert.NotContains(t, out, "s3cretpass")
	assert.Contains(t, out, "s******s")
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSize(tt.bytes))
	}
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "(not set)", maskSecret("", false))
	assert.Equal(t, "********", maskSecret("short", false))
	assert.Equal(t, "l******d", maskSecret("longpassword", false))
	assert.Equal(t, "longpassword", maskSecret("longpassword", true))
}
