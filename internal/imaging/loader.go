package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	// Decoders register themselves with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/rs/zerolog/log"
)

// Loader fetches and decodes a source image.
type Loader interface {
	Load(ctx context.Context, sourceURL string) (image.Image, error)
}

// HTTPLoader downloads sources over http(s).
type HTTPLoader struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPLoader builds a loader with a request timeout and a cap on the
// number of bytes read from the response body.
func NewHTTPLoader(timeout time.Duration, maxBytes int64) *HTTPLoader {
	return &HTTPLoader{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context, sourceURL string) (image.Image, error) {
	u, err := url.Parse(sourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: unsupported source url %q", ErrImageLoad, sourceURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrImageLoad, err)
	}
	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrImageLoad, sourceURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: status %d", ErrImageLoad, sourceURL, resp.StatusCode)
	}

	data, err := readLimited(resp.Body, l.maxBytes)
	if err != nil {
		return nil, err
	}
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("url", sourceURL).
		Int("bytes", len(data)).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Dur("elapsed", time.Since(start)).
		Msg("Source image loaded")
	return img, nil
}

// FileLoader reads sources from the local filesystem. Both plain paths and
// file:// URLs are accepted.
type FileLoader struct {
	MaxBytes int64
}

// Load implements Loader.
func (l FileLoader) Load(_ context.Context, source string) (image.Image, error) {
	path := strings.TrimPrefix(source, "file://")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrImageLoad, path, err)
	}
	defer f.Close()
	data, err := readLimited(f, l.MaxBytes)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: read source: %v", ErrImageLoad, err)
		}
		return data, nil
	}
	// Read one extra byte so an oversized body is detectable.
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read source: %v", ErrImageLoad, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: source exceeds %d bytes", ErrImageLoad, maxBytes)
	}
	return data, nil
}

func decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty source", ErrImageLoad)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrImageLoad, err)
	}
	return img, nil
}
