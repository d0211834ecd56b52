// CLAUDE:SUMMARY Source fetcher: local paths, remote downloads with backoff, ZIP unpacking, reachability status for the checker.
package ingest

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Fetcher makes a source location available as a local file.
type Fetcher struct {
	// Client downloads exports. Nil uses a client with a 10 minute timeout.
	Client *http.Client
	// Attempts bounds downloads of one export (3 if <= 0).
	Attempts int
	// Backoff is the wait before the second attempt; it doubles afterwards.
	Backoff time.Duration
}

var defaultFetcher = &Fetcher{}

// Local is a fetched export. Close removes whatever the fetch created;
// local inputs are left in place.
type Local struct {
	Path string
	dirs []string
}

// Close removes the temporary directories of l.
func (l *Local) Close() error {
	var first error
	for i := len(l.dirs) - 1; i >= 0; i-- {
		if err := os.RemoveAll(l.dirs[i]); err != nil && first == nil {
			first = err
		}
	}
	l.dirs = nil
	return first
}

func isRemote(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

func localPath(loc string) string {
	return strings.TrimPrefix(loc, "file://")
}

// Open resolves loc (an http(s) URL, a file:// URL or a path) to a file
// with extension ext. A ZIP archive is unpacked and its first ext entry
// returned.
func (f *Fetcher) Open(ctx context.Context, loc, ext string) (*Local, error) {
	l := &Local{Path: localPath(loc)}
	if isRemote(loc) {
		dir, err := l.tempDir("companygraph-fetch-")
		if err != nil {
			return nil, err
		}
		l.Path = filepath.Join(dir, "export"+filepath.Ext(loc))
		if err := f.download(ctx, loc, l.Path); err != nil {
			l.Close()
			return nil, err
		}
	}

	if !strings.EqualFold(filepath.Ext(l.Path), ".zip") {
		return l, nil
	}
	dir, err := l.tempDir("companygraph-unzip-")
	if err != nil {
		l.Close()
		return nil, err
	}
	entry, err := unzipEntry(l.Path, ext, dir)
	if err != nil {
		l.Close()
		return nil, fmt.Errorf("%s: %w", loc, err)
	}
	l.Path = entry
	return l, nil
}

func (l *Local) tempDir(prefix string) (string, error) {
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		return "", err
	}
	l.dirs = append(l.dirs, dir)
	return dir, nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return &http.Client{Timeout: 10 * time.Minute}
}

// download writes url to dest, retrying transport errors and non-200
// answers with exponential backoff.
func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	attempts := f.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	wait := f.Backoff
	if wait <= 0 {
		wait = 2 * time.Second
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}
		if err = f.get(ctx, url, dest); err == nil {
			return nil
		}
	}
	return fmt.Errorf("download %s: %d attempts: %w", url, attempts, err)
}

func (f *Fetcher) get(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// unzipEntry extracts the first entry of the archive at src whose extension
// is ext into dir.
func unzipEntry(src, ext, dir string) (string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	for _, zf := range r.File {
		if zf.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(zf.Name), ext) {
			continue
		}
		dest := filepath.Join(dir, filepath.Base(zf.Name))
		if err := extract(zf, dest); err != nil {
			return "", err
		}
		return dest, nil
	}
	return "", fmt.Errorf("no %s entry in archive", ext)
}

func extract(zf *zip.File, dest string) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("open zip entry %s: %w", zf.Name, err)
	}
	defer rc.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", zf.Name, err)
	}
	return out.Close()
}

// noRedirect reports a redirect as the answer instead of following it.
var noRedirect = &http.Client{
	Timeout:       30 * time.Second,
	CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
}

// Status reports whether loc is reachable: the HEAD status of a remote URL
// (0 on transport errors), 200 or 404 for a local path.
func (f *Fetcher) Status(ctx context.Context, loc string) (int, error) {
	if !isRemote(loc) {
		if _, err := os.Stat(localPath(loc)); err != nil {
			return http.StatusNotFound, err
		}
		return http.StatusOK, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, loc, nil)
	if err != nil {
		return 0, err
	}
	resp, err := noRedirect.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HEAD %s: %w", loc, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
