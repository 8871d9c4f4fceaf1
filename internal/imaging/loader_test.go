package imaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPLoaderDecodesPNG(t *testing.T) {
	body := pngBytes(t, gradient(30, 20))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	img, err := NewHTTPLoader(5*time.Second, 1<<20).Load(context.Background(), srv.URL+"/preview.png")
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestHTTPLoaderFailures(t *testing.T) {
	body := pngBytes(t, gradient(30, 20))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/garbage":
			w.Write([]byte("not an image"))
		default:
			w.Write(body)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	loader := NewHTTPLoader(5*time.Second, 1<<20)

	_, err := loader.Load(ctx, srv.URL+"/missing")
	assert.ErrorIs(t, err, ErrImageLoad)

	_, err = loader.Load(ctx, srv.URL+"/garbage")
	assert.ErrorIs(t, err, ErrImageLoad)

	_, err = loader.Load(ctx, "ftp://example.com/a.png")
	assert.ErrorIs(t, err, ErrImageLoad)

	_, err = NewHTTPLoader(5*time.Second, 16).Load(ctx, srv.URL+"/ok")
	assert.ErrorIs(t, err, ErrImageLoad)
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, gradient(8, 9)), 0o600))

	img, err := FileLoader{}.Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, 9, img.Bounds().Dy())

	_, err = FileLoader{}.Load(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorIs(t, err, ErrImageLoad)
}
