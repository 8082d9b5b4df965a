package media

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestStore_SaveAndPath(t *testing.T) {
	store := setupStore(t)

	path, err := store.Save("asset-1", "interview.mp4", strings.NewReader("fake video bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(path, "asset-1.mp4") {
		t.Errorf("path = %s, want asset id + original extension", path)
	}

	if got := store.Path("asset-1"); got != path {
		t.Errorf("Path = %s, want %s", got, path)
	}
	if got := store.Path("missing"); got != "" {
		t.Errorf("Path(missing) = %s, want empty", got)
	}

	if err := store.Remove("asset-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := store.Path("asset-1"); got != "" {
		t.Error("blob survived Remove")
	}
}

func TestStore_ServeFile_Full(t *testing.T) {
	store := setupStore(t)
	path, _ := store.Save("a1", "clip.mp4", strings.NewReader("0123456789"))

	req := httptest.NewRequest(http.MethodGet, "/media/a1", nil)
	rec := httptest.NewRecorder()

	if err := store.ServeFile(rec, req, path); err != nil {
		t.Fatalf("ServeFile: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Accept-Ranges") != "bytes" {
		t.Error("missing Accept-Ranges")
	}
	if rec.Body.String() != "0123456789" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestStore_ServeFile_Partial(t *testing.T) {
	store := setupStore(t)
	path, _ := store.Save("a1", "clip.mp4", strings.NewReader("0123456789"))

	req := httptest.NewRequest(http.MethodGet, "/media/a1", nil)
	req.Header.Set("Range", "bytes=2-5")
	rec := httptest.NewRecorder()

	if err := store.ServeFile(rec, req, path); err != nil {
		t.Fatalf("ServeFile: %v", err)
	}

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if rec.Header().Get("Content-Range") != "bytes 2-5/10" {
		t.Errorf("Content-Range = %s", rec.Header().Get("Content-Range"))
	}
	if rec.Body.String() != "2345" {
		t.Errorf("body = %q, want 2345", rec.Body.String())
	}
}

func TestStore_ServeFile_Unsatisfiable(t *testing.T) {
	store := setupStore(t)
	path, _ := store.Save("a1", "clip.mp4", strings.NewReader("0123456789"))

	req := httptest.NewRequest(http.MethodGet, "/media/a1", nil)
	req.Header.Set("Range", "bytes=50-")
	rec := httptest.NewRecorder()

	if err := store.ServeFile(rec, req, path); err != nil {
		t.Fatalf("ServeFile: %v", err)
	}
	if rec.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("status = %d, want 416", rec.Code)
	}
	if rec.Header().Get("Content-Range") != "bytes */10" {
		t.Errorf("Content-Range = %s", rec.Header().Get("Content-Range"))
	}
}

func TestStore_ServeFile_Missing(t *testing.T) {
	store := setupStore(t)

	req := httptest.NewRequest(http.MethodGet, "/media/ghost", nil)
	rec := httptest.NewRecorder()

	if err := store.ServeFile(rec, req, "/nonexistent/file.mp4"); err != nil {
		t.Fatalf("ServeFile: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestStubProber(t *testing.T) {
	p := NewStubProber(42.5, testLogger())
	result, err := p.Probe(context.Background(), "/any/path.mp4")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if result.Duration != 42.5 {
		t.Errorf("Duration = %f, want 42.5", result.Duration)
	}
}
