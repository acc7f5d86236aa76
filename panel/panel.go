package panel

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 60 * time.Second

// Config holds the connection settings for one panel instance.
type Config struct {
	// BaseURL is the root of the panel, e.g. "https://example.com:8443/".
	BaseURL string
	// Username and Password are the panel login credentials. An empty
	// Username skips the login step; the panel may still hand out a
	// token for an anonymous session.
	Username string
	Password string
	// Insecure disables TLS certificate verification.
	Insecure bool
	// Timeout bounds each HTTP request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Client drives the panel's file manager through its web interface.
// It owns the session cookie and the forgery protection token; everything
// that knows about the panel's markup and endpoints lives here.
//
// A Client logs in lazily on the first remote call and retries a call
// once with a fresh login when the panel invalidates the session.
// It is not safe for concurrent use.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger

	token   string
	session bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. The client should carry a
// cookie jar or the panel session will not survive past login.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger used for request-level debug logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With("session", shortID())
	}
}

// New creates a Client for the panel at cfg.BaseURL. No network traffic
// happens until the first operation.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport
	if cfg.Insecure {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //#nosec G402 -- opt-in via -k
		}
	}

	c := &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Jar:       jar,
			Timeout:   timeout,
			Transport: transport,
		},
		logger: slog.Default().With("session", shortID()),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// shortID returns a short correlation id for log lines of one invocation.
func shortID() string {
	return uuid.NewString()[:8]
}

// Login authenticates against the panel and scrapes the forgery
// protection token every later form post must carry.
func (c *Client) Login(ctx context.Context) error {
	if c.username != "" {
		form := url.Values{
			"login_name": {c.username},
			"passwd":     {c.password},
			"locale_id":  {"default"},
		}
		resp, err := c.postForm(ctx, "login_up.php3", nil, form)
		if err != nil {
			return &AuthError{Err: err}
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return &AuthError{Err: fmt.Errorf("read login response: %w", err)}
		}
		if msg := ExtractErrorMessage(bytes.NewReader(body)); msg != "" {
			return &AuthError{Message: msg}
		}
	}

	resp, err := c.get(ctx, "smb/", nil)
	if err != nil {
		return &AuthError{Err: err}
	}
	token := ExtractForgeryToken(resp.Body)
	_ = resp.Body.Close()
	if token == "" {
		return &AuthError{Message: "panel returned no forgery protection token"}
	}

	c.token = token
	c.session = true
	c.logger.Debug("session established")
	return nil
}

// ensureSession logs in lazily before the first remote call.
func (c *Client) ensureSession(ctx context.Context) error {
	if c.session {
		return nil
	}
	return c.Login(ctx)
}

// ListDir fetches the listing of dir. The call also moves the panel's
// server-side working directory to dir; several endpoints (upload,
// calculate-size, archive creation) resolve plain names against it.
func (c *Client) ListDir(ctx context.Context, dir string) (*DirListing, error) {
	op := "list " + dir
	query := url.Values{"currentDir": {dir}}
	body, err := c.call(ctx, op, func(ctx context.Context) (*http.Response, error) {
		return c.get(ctx, "smb/file-manager/list-data", query)
	})
	if err != nil {
		return nil, err
	}

	var listing DirListing
	if err := decodeJSON(op, body, &listing); err != nil {
		return nil, err
	}
	if listing.Status == "error" {
		return nil, &PanelError{Op: op, Message: listing.Message, notFound: true}
	}
	return &listing, nil
}

// Download fetches the content of file inside dir. The caller must close
// the returned reader. An HTML body without a Content-Disposition header
// is the panel's way of reporting an error page.
func (c *Client) Download(ctx context.Context, dir, file string) (io.ReadCloser, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	query := url.Values{"currentDir": {dir}, "file": {file}}
	for attempt := 0; ; attempt++ {
		resp, err := c.get(ctx, "smb/file-manager/download", query)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", file, err)
		}

		if resp.Header.Get("Content-Disposition") != "" ||
			!strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
			return resp.Body, nil
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("download %s: read response: %w", file, err)
		}

		if isLoginPage(body) && attempt == 0 {
			c.session = false
			if err := c.ensureSession(ctx); err != nil {
				return nil, err
			}
			continue
		}

		msg := ExtractErrorMessage(bytes.NewReader(body))
		if msg == "" {
			// Sometimes the panel answers with a bare "<h1>internal error</h1>".
			msg = "unexpected html response"
		}
		return nil, &PanelError{Op: "download " + file, Message: msg, notFound: true}
	}
}

// Upload stores the content of r as filename inside the panel's current
// working directory (set it with ListDir first). The upload is streamed;
// because r is not rewindable there is no expired-session retry here.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) error {
	if err := c.ensureSession(ctx); err != nil {
		return err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := func() error {
			if err := mw.WriteField("forgery_protection_token", c.token); err != nil {
				return err
			}
			// The panel identifies the upload by its field name.
			part, err := mw.CreateFormFile(filename, filename)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, r); err != nil {
				return err
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("smb/file-manager/upload"), pr)
	if err != nil {
		return fmt.Errorf("upload %s: create request: %w", filename, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	body, err := c.readResponse(resp, err)
	if err != nil {
		return fmt.Errorf("upload %s: %w", filename, err)
	}
	if isLoginPage(body) {
		return fmt.Errorf("upload %s: %w", filename, ErrSessionExpired)
	}
	return decodeStatus("upload "+filename, body)
}

// Delete removes the named files or directories. Directory deletion is
// always recursive on the panel side.
func (c *Client) Delete(ctx context.Context, files ...string) error {
	body, err := c.call(ctx, "delete", func(ctx context.Context) (*http.Response, error) {
		return c.postForm(ctx, "smb/file-manager/delete", nil, c.formValues(files, nil))
	})
	if err != nil {
		return err
	}
	return decodeStatus("delete", body)
}

// CalculateSize asks the panel for the recursive size of each named file
// or directory. Names must be plain entries of the current working
// directory; the endpoint does not resolve subdirectory paths.
// The returned map holds size strings keyed by name, the second value is
// the panel's human-readable summary line.
func (c *Client) CalculateSize(ctx context.Context, files ...string) (map[string]string, string, error) {
	for _, f := range files {
		if strings.Contains(f, "/") {
			return nil, "", fmt.Errorf("calculate size of %q: %w", f, ErrSubdirectoryPath)
		}
	}

	body, err := c.call(ctx, "calculate-size", func(ctx context.Context) (*http.Response, error) {
		return c.postForm(ctx, "smb/file-manager/calculate-size", nil, c.formValues(files, nil))
	})
	if err != nil {
		return nil, "", err
	}

	var result sizeResponse
	if err := decodeJSON("calculate-size", body, &result); err != nil {
		return nil, "", err
	}
	summary := ""
	if len(result.StatusMessages) > 0 {
		if result.StatusMessages[0].Status == "error" {
			return nil, "", &PanelError{Op: "calculate-size", Message: result.StatusMessages[0].Content}
		}
		summary = result.StatusMessages[0].Content
	}

	sizes := make(map[string]string, len(result.FileSizes))
	for name, size := range result.FileSizes {
		sizes[name] = string(size)
	}
	return sizes, summary, nil
}

// CreateArchive asks the panel to zip the named files into name. The
// panel appends the ".zip" extension itself.
func (c *Client) CreateArchive(ctx context.Context, name string, files ...string) error {
	body, err := c.call(ctx, "create archive "+name, func(ctx context.Context) (*http.Response, error) {
		form := c.formValues(files, map[string]string{"archiveName": name})
		return c.postForm(ctx, "smb/file-manager/create-archive", nil, form)
	})
	if err != nil {
		return err
	}
	return decodeStatus("create archive "+name, body)
}

// ExtractArchive asks the panel to unpack the named archive in place,
// overwriting existing files.
func (c *Client) ExtractArchive(ctx context.Context, name string) error {
	query := url.Values{"overwrite": {"true"}}
	body, err := c.call(ctx, "extract archive "+name, func(ctx context.Context) (*http.Response, error) {
		return c.postForm(ctx, "smb/file-manager/extract-archive", query, c.formValues([]string{name}, nil))
	})
	if err != nil {
		return err
	}
	return decodeStatus("extract archive "+name, body)
}

// CreateDirectory creates a directory inside the current working
// directory.
func (c *Client) CreateDirectory(ctx context.Context, name string) error {
	body, err := c.call(ctx, "mkdir "+name, func(ctx context.Context) (*http.Response, error) {
		form := c.formValues(nil, map[string]string{"newDirectoryName": name})
		return c.postForm(ctx, "smb/file-manager/create-directory", nil, form)
	})
	if err != nil {
		return err
	}
	return decodeStatus("mkdir "+name, body)
}

// CreateFile creates an empty file inside the current working directory,
// truncating an existing one.
func (c *Client) CreateFile(ctx context.Context, name string) error {
	body, err := c.call(ctx, "create file "+name, func(ctx context.Context) (*http.Response, error) {
		form := c.formValues(nil, map[string]string{
			"newFileName":  name,
			"htmlTemplate": "false",
		})
		return c.postForm(ctx, "smb/file-manager/create-file", nil, form)
	})
	if err != nil {
		return err
	}
	return decodeStatus("create file "+name, body)
}

// Rename renames oldName to newName within its directory.
func (c *Client) Rename(ctx context.Context, oldName, newName string) error {
	op := fmt.Sprintf("rename %s to %s", oldName, newName)
	body, err := c.call(ctx, op, func(ctx context.Context) (*http.Response, error) {
		form := c.formValues([]string{oldName}, map[string]string{"newFileName": newName})
		return c.postForm(ctx, "smb/file-manager/rename", nil, form)
	})
	if err != nil {
		return err
	}
	return decodeStatus(op, body)
}

// Copy copies the named files into destDir without overwriting.
func (c *Client) Copy(ctx context.Context, files []string, destDir string) error {
	return c.transfer(ctx, "smb/file-manager/copy-files", "copy", files, destDir)
}

// Move moves the named files into destDir without overwriting.
func (c *Client) Move(ctx context.Context, files []string, destDir string) error {
	return c.transfer(ctx, "smb/file-manager/move-files", "move", files, destDir)
}

func (c *Client) transfer(ctx context.Context, path, op string, files []string, destDir string) error {
	query := url.Values{
		"destinationDir": {destDir},
		"overwrite":      {"false"},
	}
	body, err := c.call(ctx, op, func(ctx context.Context) (*http.Response, error) {
		return c.postForm(ctx, path, query, c.formValues(files, nil))
	})
	if err != nil {
		return err
	}
	return decodeStatus(op, body)
}

// Edit replaces the content of file inside dir with contents.
func (c *Client) Edit(ctx context.Context, dir, file, contents string) error {
	op := "edit " + file
	query := url.Values{"currentDir": {dir}, "file": {file}}
	body, err := c.call(ctx, op, func(ctx context.Context) (*http.Response, error) {
		form := c.formValues(nil, map[string]string{
			"eol":          "LF",
			"saveCodepage": "UTF-8",
			"loadCodepage": "UTF-8",
			"code":         contents,
		})
		return c.postForm(ctx, "smb/file-manager/edit", query, form)
	})
	if err != nil {
		return err
	}
	return decodeStatus(op, body)
}

// call runs send with a valid session. When the panel bounces the call to
// its login page the session was invalidated server-side: log in again
// and retry the call exactly once.
func (c *Client) call(ctx context.Context, op string, send func(context.Context) (*http.Response, error)) ([]byte, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	body, err := c.readResponse(send(ctx))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !isLoginPage(body) {
		return body, nil
	}

	c.logger.Debug("session invalidated, logging in again", "op", op)
	c.session = false
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}
	body, err = c.readResponse(send(ctx))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if isLoginPage(body) {
		return nil, fmt.Errorf("%s: %w", op, ErrSessionExpired)
	}
	return body, nil
}

// readResponse drains a response, mapping error pages and unexpected
// statuses to errors. Login pages pass through so call can re-login.
func (c *Client) readResponse(resp *http.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if isLoginPage(body) {
			return body, nil
		}
		if msg := ExtractErrorMessage(bytes.NewReader(body)); msg != "" {
			return nil, &PanelError{Message: msg}
		}
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return body, nil
}

// decodeStatus checks an operation response for an error, accepting both
// result shapes the panel uses: a JSON status payload or an HTML page
// with an optional msgbox error.
func decodeStatus(op string, body []byte) error {
	if looksLikeHTML(body) {
		if msg := ExtractErrorMessage(bytes.NewReader(body)); msg != "" {
			return &PanelError{Op: op, Message: msg}
		}
		return nil
	}
	var status statusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		// Not a status payload; the panel answered with something else
		// entirely, which it does for plain-text confirmations.
		return nil
	}
	return status.err(op)
}

// decodeJSON decodes a response that must be JSON, translating stray
// HTML error pages.
func decodeJSON(op string, body []byte, v any) error {
	if looksLikeHTML(body) {
		if msg := ExtractErrorMessage(bytes.NewReader(body)); msg != "" {
			return &PanelError{Op: op, Message: msg}
		}
		return &PanelError{Op: op, Message: "unexpected html response"}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// formValues builds a form with the forgery token, the ids[N] file list
// and any extra fields.
func (c *Client) formValues(files []string, extra map[string]string) url.Values {
	form := url.Values{}
	form.Set("forgery_protection_token", c.token)
	for i, f := range files {
		form.Set(fmt.Sprintf("ids[%d]", i), f)
	}
	for k, v := range extra {
		form.Set(k, v)
	}
	return form
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + path
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	u := c.endpoint(path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) postForm(ctx context.Context, path string, query, form url.Values) (*http.Response, error) {
	u := c.endpoint(path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("panel request failed",
			"method", req.Method, "path", req.URL.Path, "dur", time.Since(start), "err", err)
		return nil, err
	}
	c.logger.Debug("panel request",
		"method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "dur", time.Since(start))
	return resp, nil
}
