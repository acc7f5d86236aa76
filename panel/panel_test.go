package panel_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pleskutil/pleskfm/panel"
)

const (
	testToken = "3b55c0fb579094ccdf0d1e84ae183062"

	loginPage = `<html><body>
		<form action="login_up.php3" method="post">
			<input name="login_name"><input name="passwd" type="password">
		</form>
	</body></html>`
)

var tokenPage = fmt.Sprintf(`<html><head>
	<meta name="forgery_protection_token" id="forgery_protection_token" content="%s">
</head><body>File Manager</body></html>`, testToken)

// fakePanel is a minimal Plesk stand-in: a login form, a token page and
// whatever file-manager handlers the test registers.
type fakePanel struct {
	server *httptest.Server
	mux    *http.ServeMux

	logins    int
	tokenGets int
	lastUser  string
	failLogin bool
}

func newFakePanel(t *testing.T) *fakePanel {
	t.Helper()

	f := &fakePanel{mux: http.NewServeMux()}
	f.mux.HandleFunc("/login_up.php3", func(w http.ResponseWriter, r *http.Request) {
		f.logins++
		f.lastUser = r.FormValue("login_name")
		if f.failLogin {
			_, _ = fmt.Fprint(w, `<html><body><div class="msgbox msg-error">Incorrect username or password.</div></body></html>`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "PLESKSESSID", Value: "fake-session"})
		_, _ = fmt.Fprint(w, `<html><body>ok</body></html>`)
	})
	f.mux.HandleFunc("/smb/", func(w http.ResponseWriter, _ *http.Request) {
		f.tokenGets++
		_, _ = fmt.Fprint(w, tokenPage)
	})

	f.server = httptest.NewServer(f.mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakePanel) client(t *testing.T) *panel.Client {
	t.Helper()

	client, err := panel.New(&panel.Config{
		BaseURL:  f.server.URL,
		Username: "admin",
		Password: "secret",
	})
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := panel.New(nil)
		assert.ErrorIs(t, err, panel.ErrConfigRequired)
	})

	t.Run("bad scheme", func(t *testing.T) {
		_, err := panel.New(&panel.Config{BaseURL: "ftp://example.com"})
		assert.Error(t, err)
	})

	t.Run("valid config", func(t *testing.T) {
		client, err := panel.New(&panel.Config{BaseURL: "https://example.com:8443/"})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestLogin(t *testing.T) {
	t.Run("successful login scrapes token", func(t *testing.T) {
		f := newFakePanel(t)
		client := f.client(t)

		err := client.Login(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, f.logins)
		assert.Equal(t, "admin", f.lastUser)
		assert.Equal(t, 1, f.tokenGets)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		f := newFakePanel(t)
		f.failLogin = true
		client := f.client(t)

		err := client.Login(context.Background())
		var authErr *panel.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Contains(t, authErr.Message, "Incorrect username or password")
	})

	t.Run("unreachable host", func(t *testing.T) {
		client, err := panel.New(&panel.Config{
			BaseURL:  "http://127.0.0.1:1",
			Username: "admin",
		})
		require.NoError(t, err)

		err = client.Login(context.Background())
		var authErr *panel.AuthError
		assert.ErrorAs(t, err, &authErr)
	})

	t.Run("anonymous session skips login post", func(t *testing.T) {
		f := newFakePanel(t)
		client, err := panel.New(&panel.Config{BaseURL: f.server.URL})
		require.NoError(t, err)

		require.NoError(t, client.Login(context.Background()))
		assert.Zero(t, f.logins)
		assert.Equal(t, 1, f.tokenGets)
	})
}

func TestListDir(t *testing.T) {
	t.Run("parses entries", func(t *testing.T) {
		f := newFakePanel(t)
		f.mux.HandleFunc("/smb/file-manager/list-data", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "httpdocs", r.URL.Query().Get("currentDir"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{
				"state": {"currentDir": "httpdocs"},
				"data": [
					{"name": "index.html", "size": 512, "user": "web", "group": "psacln",
					 "filePerms": "rw- r-- r--", "isDirectory": false, "modificationTimestamp": 1700000000},
					{"name": "img", "size": 4096, "user": "web", "group": "psacln",
					 "filePerms": "rwx r-x r-x", "isDirectory": true, "modificationTimestamp": 1700000100}
				]
			}`)
		})
		client := f.client(t)

		listing, err := client.ListDir(context.Background(), "httpdocs")
		require.NoError(t, err)
		assert.Equal(t, "httpdocs", listing.State.CurrentDir)
		require.Len(t, listing.Data, 2)
		assert.Equal(t, "index.html", listing.Data[0].Name)
		assert.EqualValues(t, 512, listing.Data[0].SizeBytes())
		assert.False(t, listing.Data[0].ModTime().IsZero())
		assert.True(t, listing.Data[1].IsDirectory)
	})

	t.Run("missing directory is not found", func(t *testing.T) {
		f := newFakePanel(t)
		f.mux.HandleFunc("/smb/file-manager/list-data", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{"status": "error", "message": "Unable to change directory"}`)
		})
		client := f.client(t)

		_, err := client.ListDir(context.Background(), "nope")
		assert.ErrorIs(t, err, panel.ErrNotFound)

		var panelErr *panel.PanelError
		require.ErrorAs(t, err, &panelErr)
		assert.Contains(t, panelErr.Message, "Unable to change directory")
	})

	t.Run("logs in lazily", func(t *testing.T) {
		f := newFakePanel(t)
		f.mux.HandleFunc("/smb/file-manager/list-data", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{"state": {"currentDir": "/"}, "data": []}`)
		})
		client := f.client(t)

		_, err := client.ListDir(context.Background(), "/")
		require.NoError(t, err)
		assert.Equal(t, 1, f.logins)

		_, err = client.ListDir(context.Background(), "/")
		require.NoError(t, err)
		assert.Equal(t, 1, f.logins, "second call reuses the session")
	})
}

func TestSessionExpiry(t *testing.T) {
	t.Run("relogin and retry once", func(t *testing.T) {
		f := newFakePanel(t)
		calls := 0
		f.mux.HandleFunc("/smb/file-manager/list-data", func(w http.ResponseWriter, _ *http.Request) {
			calls++
			if calls <= 2 {
				// First session works once, then the panel forgets it.
				if calls == 2 {
					_, _ = fmt.Fprint(w, loginPage)
					return
				}
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{"state": {"currentDir": "/"}, "data": []}`)
		})
		client := f.client(t)

		_, err := client.ListDir(context.Background(), "/")
		require.NoError(t, err)

		listing, err := client.ListDir(context.Background(), "/")
		require.NoError(t, err)
		assert.NotNil(t, listing)
		assert.Equal(t, 2, f.logins, "expired session triggers one fresh login")
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after one retry", func(t *testing.T) {
		f := newFakePanel(t)
		f.mux.HandleFunc("/smb/file-manager/list-data", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = fmt.Fprint(w, loginPage)
		})
		client := f.client(t)

		_, err := client.ListDir(context.Background(), "/")
		assert.ErrorIs(t, err, panel.ErrSessionExpired)
		assert.Equal(t, 2, f.logins)
	})
}

func TestDownload(t *testing.T) {
	t.Run("streams file content", func(t *testing.T) {
		f := newFakePanel(t)
		f.mux.HandleFunc("/smb/file-manager/download", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "docs", r.URL.Query().Get("currentDir"))
			assert.Equal(t, "readme.txt", r.URL.Query().Get("file"))
			w.Header().Set("Content-Disposition", `attachment; filename="readme.txt"`)
			_, _ = fmt.Fprint(w, "hello world")
		})
		client := f.client(t)

		rc, err := client.Download(context.Background(), "docs", "readme.txt")
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()

		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(content))
	})

	t.Run("error page becomes not found", func(t *testing.T) {
		f := newFakePanel(t)
		f.mux.HandleFunc("/smb/file-manager/download", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = fmt.Fprint(w, `<html><body><div class="msgbox msg-error">File not found on the server.</div></body></html>`)
		})
		client := f.client(t)

		_, err := client.Download(context.Background(), "docs", "missing.txt")
		assert.ErrorIs(t, err, panel.ErrNotFound)
	})
}

func TestUpload(t *testing.T) {
	f := newFakePanel(t)
	var gotToken, gotContent, gotFilename string
	f.mux.HandleFunc("/smb/file-manager/upload", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotToken = r.FormValue("forgery_protection_token")
		file, header, err := r.FormFile("notes.txt")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		gotFilename = header.Filename
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		gotContent = string(content)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"status": "success"}`)
	})
	client := f.client(t)

	err := client.Upload(context.Background(), "notes.txt", strings.NewReader("file body"))
	require.NoError(t, err)
	assert.Equal(t, testToken, gotToken)
	assert.Equal(t, "notes.txt", gotFilename)
	assert.Equal(t, "file body", gotContent)
}

func TestDelete(t *testing.T) {
	t.Run("sends ids form fields with token", func(t *testing.T) {
		f := newFakePanel(t)
		f.mux.HandleFunc("/smb/file-manager/delete", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, testToken, r.FormValue("forgery_protection_token"))
			assert.Equal(t, "a.txt", r.FormValue("ids[0]"))
			assert.Equal(t, "b.txt", r.FormValue("ids[1]"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{"status": "success"}`)
		})
		client := f.client(t)

		assert.NoError(t, client.Delete(context.Background(), "a.txt", "b.txt"))
	})

	t.Run("panel error surfaces", func(t *testing.T) {
		f := newFakePanel(t)
		f.mux.HandleFunc("/smb/file-manager/delete", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{"statusMessages": [{"status": "error", "content": "Permission denied"}]}`)
		})
		client := f.client(t)

		err := client.Delete(context.Background(), "protected")
		var panelErr *panel.PanelError
		require.ErrorAs(t, err, &panelErr)
		assert.Contains(t, panelErr.Message, "Permission denied")
	})
}

func TestCalculateSize(t *testing.T) {
	t.Run("rejects subdirectory paths", func(t *testing.T) {
		f := newFakePanel(t)
		client := f.client(t)

		_, _, err := client.CalculateSize(context.Background(), "dir/file.txt")
		assert.ErrorIs(t, err, panel.ErrSubdirectoryPath)
		assert.Zero(t, f.logins, "validation happens before any network call")
	})

	t.Run("returns sizes and summary", func(t *testing.T) {
		f := newFakePanel(t)
		f.mux.HandleFunc("/smb/file-manager/calculate-size", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{
				"fileSizes": {"a.txt": 100, "docs": 4096},
				"statusMessages": [{"status": "info", "content": "Selection size: 4.1 KB"}]
			}`)
		})
		client := f.client(t)

		sizes, summary, err := client.CalculateSize(context.Background(), "a.txt", "docs")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a.txt": "100", "docs": "4096"}, sizes)
		assert.Equal(t, "Selection size: 4.1 KB", summary)
	})

	t.Run("accepts quoted size values", func(t *testing.T) {
		f := newFakePanel(t)
		f.mux.HandleFunc("/smb/file-manager/calculate-size", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{"fileSizes": {"a.txt": "100", "docs": 4096}}`)
		})
		client := f.client(t)

		sizes, _, err := client.CalculateSize(context.Background(), "a.txt", "docs")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a.txt": "100", "docs": "4096"}, sizes)
	})
}

func TestCreateArchive(t *testing.T) {
	t.Run("fail status surfaces", func(t *testing.T) {
		f := newFakePanel(t)
		f.mux.HandleFunc("/smb/file-manager/create-archive", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "backup", r.FormValue("archiveName"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{"status": "fail", "message": "Archive already exists"}`)
		})
		client := f.client(t)

		err := client.CreateArchive(context.Background(), "backup", "httpdocs")
		var panelErr *panel.PanelError
		require.ErrorAs(t, err, &panelErr)
		assert.Contains(t, panelErr.Message, "Archive already exists")
	})
}

func TestRename(t *testing.T) {
	f := newFakePanel(t)
	f.mux.HandleFunc("/smb/file-manager/rename", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "old.txt", r.FormValue("ids[0]"))
		assert.Equal(t, "new.txt", r.FormValue("newFileName"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"status": "success"}`)
	})
	client := f.client(t)

	assert.NoError(t, client.Rename(context.Background(), "old.txt", "new.txt"))
}

func TestMove(t *testing.T) {
	f := newFakePanel(t)
	f.mux.HandleFunc("/smb/file-manager/move-files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/backup", r.URL.Query().Get("destinationDir"))
		assert.Equal(t, "false", r.URL.Query().Get("overwrite"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "a.txt", r.FormValue("ids[0]"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"statusMessages": [{"status": "success", "content": "moved"}]}`)
	})
	client := f.client(t)

	assert.NoError(t, client.Move(context.Background(), []string{"a.txt"}, "/backup"))
}

func TestEdit(t *testing.T) {
	f := newFakePanel(t)
	f.mux.HandleFunc("/smb/file-manager/edit", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "conf", r.URL.Query().Get("currentDir"))
		assert.Equal(t, "app.ini", r.URL.Query().Get("file"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "LF", r.FormValue("eol"))
		assert.Equal(t, "debug=true", r.FormValue("code"))
		_, _ = fmt.Fprint(w, `<html><body>saved</body></html>`)
	})
	client := f.client(t)

	assert.NoError(t, client.Edit(context.Background(), "conf", "app.ini", "debug=true"))
}
