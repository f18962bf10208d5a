// Package assets fetches and decodes the images named in a manifest without
// blocking the render loop.
package assets

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/richinsley/goblend/logger"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotFound is returned when a local asset file does not exist.
var ErrNotFound = errors.New("asset not found")

const userAgent = "goblend/1.0 (+https://github.com/richinsley/goblend)"

type headerTransport struct {
	Transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return t.Transport.RoundTrip(req)
}

// DefaultClient is the HTTP client used for remote assets.
var DefaultClient = &http.Client{
	Transport: &headerTransport{Transport: http.DefaultTransport},
}

// Loader resolves manifest entries to decoded images.
type Loader struct {
	// BaseDir anchors relative local sources.
	BaseDir string
	// Client fetches http and https sources. Nil means DefaultClient.
	Client *http.Client
	// CacheDir stores downloaded media. Empty disables the cache.
	CacheDir string
	// Progress, when non-nil, receives a byte progress bar per download.
	Progress io.Writer
}

// NewLoader returns a loader rooted at baseDir with no cache.
func NewLoader(baseDir string) *Loader {
	return &Loader{BaseDir: baseDir}
}

// DefaultCacheDir returns the per-user media cache, creating it if needed.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "goblend", "media")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory at %s: %w", dir, err)
	}
	return dir, nil
}

// Load starts fetching every entry of m and returns immediately. The
// returned Pending resolves once all entries are decoded or the first one
// fails.
func (l *Loader) Load(ctx context.Context, m Manifest) *Pending {
	p := newPending()
	if err := m.Validate(); err != nil {
		p.resolve(nil, err)
		return p
	}
	go func() {
		a, err := l.loadAll(ctx, m)
		p.resolve(a, err)
	}()
	return p
}

// LoadFunc is the callback form of Load. onDone runs exactly once, on a
// goroutine other than the caller's.
func (l *Loader) LoadFunc(ctx context.Context, m Manifest, onDone func(Assets, error)) {
	p := l.Load(ctx, m)
	go func() {
		<-p.Done()
		onDone(p.assets, p.err)
	}()
}

func (l *Loader) loadAll(ctx context.Context, m Manifest) (Assets, error) {
	keys := m.Keys()
	images := make([]*Image, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		entry := m[key]
		g.Go(func() error {
			img, err := l.loadImage(gctx, entry.Src)
			if err != nil {
				return fmt.Errorf("asset %q: %w", key, err)
			}
			images[i] = img
			logger.Logger().Info("asset loaded", "key", key, "src", entry.Src, "width", img.Width, "height", img.Height)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(Assets, len(keys))
	for i, key := range keys {
		out[key] = images[i]
	}
	return out, nil
}

func (l *Loader) loadImage(ctx context.Context, src string) (*Image, error) {
	data, err := l.fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", src, err)
	}
	logger.Logger().Debug("image decoded", "src", src, "format", format)
	b := img.Bounds()
	return &Image{Width: b.Dx(), Height: b.Dy(), Source: img}, nil
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func (l *Loader) fetch(ctx context.Context, src string) ([]byte, error) {
	if isRemote(src) {
		return l.fetchRemote(ctx, src)
	}
	p := src
	if !filepath.IsAbs(p) {
		p = filepath.Join(l.BaseDir, filepath.FromSlash(src))
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

// cachePath names the cache entry of a URL. The hash keeps files with the
// same base name apart.
func (l *Loader) cachePath(url string) string {
	sum := sha1.Sum([]byte(url))
	return filepath.Join(l.CacheDir, hex.EncodeToString(sum[:6])+"_"+path.Base(url))
}

func (l *Loader) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	var cachePath string
	if l.CacheDir != "" {
		cachePath = l.cachePath(url)
		if data, err := os.ReadFile(cachePath); err == nil {
			logger.Logger().Debug("asset cache hit", "url", url, "path", cachePath)
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := l.Client
	if client == nil {
		client = DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to load %s, status code: %d", url, resp.StatusCode)
	}

	var buf bytes.Buffer
	var w io.Writer = &buf
	if l.Progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(l.Progress),
			progressbar.OptionSetDescription(path.Base(url)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		w = io.MultiWriter(&buf, bar)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read media data from %s: %w", url, err)
	}

	data := buf.Bytes()
	if cachePath != "" {
		if err := os.WriteFile(cachePath, data, 0644); err != nil {
			logger.Logger().Warn("failed to save media to cache", "path", cachePath, "err", err)
		}
	}
	return data, nil
}
