package clientcli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pleskutil/pleskfm/panel"
)

// Client implements the Unix-style file operations on top of the raw
// panel endpoints. It holds exactly one panel session for the lifetime
// of one invocation.
type Client struct {
	panel *panel.Client
}

// New creates a Client for the panel described by cfg.
func New(cfg *Config, opts ...panel.Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p, err := panel.New(&panel.Config{
		BaseURL:  cfg.BaseURL,
		Username: cfg.Username,
		Password: cfg.Password,
		Insecure: cfg.Insecure,
		Timeout:  cfg.Timeout,
	}, opts...)
	if err != nil {
		return nil, err
	}

	return &Client{panel: p}, nil
}

// Ls lists dir, descending into subdirectories when opts.Recurse is set.
// With opts.IgnoreErrors, unreadable directories become listings with
// Err set and the walk continues.
func (c *Client) Ls(ctx context.Context, opts LsOptions) ([]Listing, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("ls: %w", ErrEmptyPath)
	}
	var listings []Listing
	if err := c.ls(ctx, opts.Dir, opts.Recurse, opts.IgnoreErrors, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func (c *Client) ls(ctx context.Context, dir string, recurse, ignoreErrors bool, out *[]Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	listing, err := c.panel.ListDir(ctx, dir)
	if err != nil {
		if ignoreErrors {
			*out = append(*out, Listing{Dir: dir, Err: err})
			return nil
		}
		return err
	}

	result := Listing{Dir: dir}
	for i := range listing.Data {
		result.Entries = append(result.Entries, newLsEntry(&listing.Data[i]))
	}
	*out = append(*out, result)

	if !recurse {
		return nil
	}
	for i := range listing.Data {
		e := &listing.Data[i]
		if e.IsDirectory && e.Name != "." && e.Name != ".." {
			if err := c.ls(ctx, path.Join(dir, e.Name), recurse, ignoreErrors, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func newLsEntry(e *panel.Entry) LsEntry {
	perms := "-"
	if e.IsDirectory {
		perms = "d"
	}
	perms += strings.ReplaceAll(e.FilePerms, " ", "")

	return LsEntry{
		Name:    e.Name,
		Perms:   perms,
		User:    e.User,
		Group:   e.Group,
		Size:    e.Size.String(),
		ModTime: e.ModTime(),
		IsDir:   e.IsDirectory,
	}
}

// Cat opens the remote file for reading. The caller must close the
// returned reader.
func (c *Client) Cat(ctx context.Context, file string) (io.ReadCloser, error) {
	if file == "" {
		return nil, fmt.Errorf("cat: %w", ErrEmptyPath)
	}
	dir, name := splitRemote(file)
	return c.panel.Download(ctx, dir, name)
}

// Get downloads a remote file. When opts.LocalPath is empty or "-" the
// content is returned as an io.ReadCloser for the caller to drain.
// Otherwise it is written to the local path (into the directory when the
// path is an existing directory) and the reader is nil.
func (c *Client) Get(ctx context.Context, opts GetOptions) (*TransferResult, io.ReadCloser, error) {
	if opts.RemotePath == "" {
		return nil, nil, fmt.Errorf("get: %w", ErrEmptyPath)
	}
	dir, name := splitRemote(opts.RemotePath)

	rc, err := c.panel.Download(ctx, dir, name)
	if err != nil {
		return nil, nil, err
	}

	result := &TransferResult{RemotePath: opts.RemotePath}

	local := opts.LocalPath
	if local == "" || local == "-" {
		result.LocalPath = "-"
		return result, rc, nil
	}
	if info, statErr := os.Stat(local); statErr == nil && info.IsDir() {
		local = filepath.Join(local, name)
	}
	result.LocalPath = local

	file, err := os.Create(local) //#nosec G304 -- destination is user-provided
	if err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("create local file: %w", err)
	}

	written, err := io.Copy(file, rc)
	_ = rc.Close()
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write local file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, nil, fmt.Errorf("close local file: %w", err)
	}

	result.Size = written
	return result, nil, nil
}

// Put uploads to the remote file named by opts.RemotePath. Content is
// read from opts.Content when set, otherwise from opts.LocalPath. The
// target directory must already exist; the panel silently uploads into
// whatever directory it is in, so the directory is verified first.
func (c *Client) Put(ctx context.Context, opts PutOptions) (*TransferResult, error) {
	dir, name := splitRemote(opts.RemotePath)
	if name == "" {
		return nil, fmt.Errorf("put: %w", ErrEmptyPath)
	}

	if dir != "" {
		listing, err := c.panel.ListDir(ctx, dir)
		if err != nil {
			return nil, err
		}
		if cur := listing.State.CurrentDir; cur != "" && cur != dir {
			return nil, fmt.Errorf("cannot change to directory %q: panel is in %q", dir, cur)
		}
	}

	reader := opts.Content
	if reader == nil {
		file, err := os.Open(opts.LocalPath) //#nosec G304 -- source is user-provided
		if err != nil {
			return nil, fmt.Errorf("open local file: %w", err)
		}
		defer func() { _ = file.Close() }()
		reader = file
	}

	counted := &countingReader{r: reader}
	if err := c.panel.Upload(ctx, name, counted); err != nil {
		return nil, err
	}

	return &TransferResult{
		RemotePath: opts.RemotePath,
		LocalPath:  opts.LocalPath,
		Size:       counted.n,
	}, nil
}

// Tee uploads everything read from in to the remote file, echoing it to
// echo on the way through, like the Unix tee.
func (c *Client) Tee(ctx context.Context, remotePath string, in io.Reader, echo io.Writer) (*TransferResult, error) {
	reader := in
	if echo != nil {
		reader = io.TeeReader(in, echo)
	}
	return c.Put(ctx, PutOptions{
		RemotePath: remotePath,
		LocalPath:  "-",
		Content:    reader,
	})
}

// Edit replaces the remote file's content with the given string.
func (c *Client) Edit(ctx context.Context, file, contents string) error {
	if file == "" {
		return fmt.Errorf("edit: %w", ErrEmptyPath)
	}
	dir, name := splitRemote(file)
	return c.panel.Edit(ctx, dir, name, contents)
}

// Zip asks the panel to archive the named files into an archive created
// inside opts.Dir. The panel appends ".zip" itself, so a ".zip" suffix
// on the name is stripped first.
func (c *Client) Zip(ctx context.Context, opts ZipOptions) error {
	if opts.ZipName == "" {
		return fmt.Errorf("zip: %w", ErrEmptyPath)
	}
	name := strings.TrimSuffix(opts.ZipName, ".zip")
	if strings.Contains(name, "/") {
		return fmt.Errorf("zip: %w", ErrArchivePath)
	}
	if err := c.chdir(ctx, opts.Dir); err != nil {
		return err
	}
	return c.panel.CreateArchive(ctx, name, opts.Files...)
}

// Unzip asks the panel to unpack the named archive in place.
func (c *Client) Unzip(ctx context.Context, zipname string) error {
	if zipname == "" {
		return fmt.Errorf("unzip: %w", ErrEmptyPath)
	}
	return c.panel.ExtractArchive(ctx, zipname)
}

// Mkdir creates a remote directory. The parent must already exist.
func (c *Client) Mkdir(ctx context.Context, dir string) error {
	parent, name := splitRemote(strings.TrimSuffix(dir, "/"))
	if name == "" {
		return fmt.Errorf("mkdir: %w", ErrEmptyPath)
	}
	if parent != "" && parent != "/" {
		if _, err := c.panel.ListDir(ctx, parent); err != nil {
			return err
		}
	}
	return c.panel.CreateDirectory(ctx, name)
}

// Rmdir removes a remote directory and everything in it; the panel's
// delete is always recursive.
func (c *Client) Rmdir(ctx context.Context, dir string) error {
	if dir == "" {
		return fmt.Errorf("rmdir: %w", ErrEmptyPath)
	}
	return c.panel.Delete(ctx, dir)
}

// Rm deletes each target individually so one failure does not stop the
// batch; inspect the results for per-target errors.
func (c *Client) Rm(ctx context.Context, files ...string) ([]RemoveResult, error) {
	results := make([]RemoveResult, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		err := c.panel.Delete(ctx, f)
		results = append(results, RemoveResult{Path: f, Removed: err == nil, Err: err})
	}
	return results, nil
}

// Empty creates an empty remote file, truncating an existing one.
func (c *Client) Empty(ctx context.Context, file string) error {
	parent, name := splitRemote(file)
	if name == "" {
		return fmt.Errorf("empty: %w", ErrEmptyPath)
	}
	if parent != "" && parent != "/" {
		if _, err := c.panel.ListDir(ctx, parent); err != nil {
			return err
		}
	}
	return c.panel.CreateFile(ctx, name)
}

// Move moves sources onto the destination with Unix mv semantics: into
// an existing directory, or a rename when the destination is a new name
// for a single source.
func (c *Client) Move(ctx context.Context, opts MoveOptions) ([]MoveResult, error) {
	return c.relocate(ctx, opts, true)
}

// Copy copies sources onto the destination with Unix cp semantics.
func (c *Client) Copy(ctx context.Context, opts MoveOptions) ([]MoveResult, error) {
	return c.relocate(ctx, opts, false)
}

func (c *Client) relocate(ctx context.Context, opts MoveOptions, move bool) ([]MoveResult, error) {
	if len(opts.Sources) == 0 {
		return nil, ErrNoPaths
	}
	if opts.Dest == "" {
		return nil, fmt.Errorf("destination: %w", ErrEmptyPath)
	}

	destIsDir := c.remoteDirExists(ctx, opts.Dest)

	// Probing the destination moved the panel's working directory;
	// put it back where the sources resolve.
	if err := c.chdir(ctx, cwdOr(opts.Dir)); err != nil {
		return nil, err
	}

	if destIsDir {
		results := make([]MoveResult, 0, len(opts.Sources))
		for _, src := range opts.Sources {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			var err error
			if move {
				err = c.panel.Move(ctx, []string{src}, opts.Dest)
			} else {
				err = c.panel.Copy(ctx, []string{src}, opts.Dest)
			}
			results = append(results, MoveResult{
				Source: src,
				Dest:   path.Join(opts.Dest, path.Base(src)),
				Err:    err,
			})
		}
		return results, nil
	}

	if len(opts.Sources) != 1 {
		return nil, fmt.Errorf("%d sources: %w", len(opts.Sources), ErrDestNotDirectory)
	}

	src := opts.Sources[0]
	var err error
	if move {
		err = c.renameWithin(ctx, opts.Dir, src, opts.Dest)
	} else {
		err = c.copyRename(ctx, opts.Dir, src, opts.Dest)
	}
	return []MoveResult{{Source: src, Dest: opts.Dest, Err: err}}, nil
}

// renameWithin handles "mv old new" where new is not a directory: a
// rename inside one directory. The rename endpoint takes names relative
// to the panel's working directory.
func (c *Client) renameWithin(ctx context.Context, base, src, dest string) error {
	if path.Dir(src) != path.Dir(dest) {
		return fmt.Errorf("move %s to %s: %w", src, dest, ErrDestNotDirectory)
	}
	if d := path.Dir(src); d != "." {
		if err := c.chdir(ctx, joinRemote(base, d)); err != nil {
			return err
		}
	} else if err := c.chdir(ctx, cwdOr(base)); err != nil {
		return err
	}
	return c.panel.Rename(ctx, path.Base(src), path.Base(dest))
}

// copyRename handles "cp old new" where new is not a directory. The
// panel has no copy-with-rename endpoint, so the content is streamed
// through the client instead.
func (c *Client) copyRename(ctx context.Context, base, src, dest string) error {
	srcDir, srcName := splitRemote(joinRemote(base, src))
	dstDir, dstName := splitRemote(joinRemote(base, dest))

	rc, err := c.panel.Download(ctx, srcDir, srcName)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	if err := c.chdir(ctx, cwdOr(dstDir)); err != nil {
		return err
	}
	return c.panel.Upload(ctx, dstName, rc)
}

// Du reports the recursive size of each target. With no targets, every
// entry of opts.Dir is sized. Each target is queried individually so one
// failure does not stop the batch.
func (c *Client) Du(ctx context.Context, opts DuOptions) (*DuResult, error) {
	files := opts.Files
	if len(files) == 0 {
		listing, err := c.panel.ListDir(ctx, cwdOr(opts.Dir))
		if err != nil {
			return nil, err
		}
		for i := range listing.Data {
			if name := listing.Data[i].Name; name != "." && name != ".." {
				files = append(files, name)
			}
		}
	} else if err := c.chdir(ctx, opts.Dir); err != nil {
		return nil, err
	}

	result := &DuResult{TotalKnown: true}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		entry := DuEntry{Path: f, Bytes: -1}
		sizes, _, err := c.panel.CalculateSize(ctx, f)
		if err != nil {
			entry.Err = err
			result.TotalKnown = false
		} else {
			entry.Size = sizes[f]
			if n, parseErr := strconv.ParseInt(entry.Size, 10, 64); parseErr == nil {
				entry.Bytes = n
				result.Total += n
			} else {
				result.TotalKnown = false
			}
		}
		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}

// chdir moves the panel's server-side working directory. "" and "/"
// mean the account root and need no call when nothing moved it before.
func (c *Client) chdir(ctx context.Context, dir string) error {
	if dir == "" {
		return nil
	}
	listing, err := c.panel.ListDir(ctx, dir)
	if err != nil {
		return err
	}
	if cur := listing.State.CurrentDir; cur != "" && dir != "/" && cur != dir {
		return fmt.Errorf("cannot change to directory %q: panel is in %q", dir, cur)
	}
	return nil
}

// remoteDirExists probes whether p is a listable remote directory.
// Note this moves the panel's working directory.
func (c *Client) remoteDirExists(ctx context.Context, p string) bool {
	listing, err := c.panel.ListDir(ctx, p)
	if err != nil {
		return false
	}
	if cur := listing.State.CurrentDir; cur != "" && p != "/" && cur != p {
		return false
	}
	return true
}

// splitRemote splits a remote path into its directory and base name,
// without the trailing slash path.Split leaves on the directory.
func splitRemote(p string) (dir, name string) {
	dir, name = path.Split(p)
	return strings.TrimSuffix(dir, "/"), name
}

// joinRemote resolves p against base; paths with a leading slash stay
// untouched.
func joinRemote(base, p string) string {
	if base == "" || strings.HasPrefix(p, "/") {
		return p
	}
	return path.Join(base, p)
}

// cwdOr maps the empty rebase directory to the account root.
func cwdOr(dir string) string {
	if dir == "" {
		return "/"
	}
	return dir
}

// countingReader counts the bytes passed through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
