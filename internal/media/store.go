package media

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Store keeps uploaded media blobs on disk, one file per asset id, and
// serves them back with Range support.
type Store struct {
	dir    string
	logger *slog.Logger
}

func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Save writes an uploaded blob for the asset and returns its path. The
// extension is taken from the original filename so playback content types
// resolve correctly.
func (s *Store) Save(assetID, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.dir, assetID+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write blob: %w", err)
	}

	s.logger.Info("media stored", "asset_id", assetID, "path", path, "bytes", n)
	return path, nil
}

// Path returns the stored blob path for an asset, or empty if no blob
// exists.
func (s *Store) Path(assetID string) string {
	matches, err := filepath.Glob(filepath.Join(s.dir, assetID+".*"))
	if err != nil || len(matches) == 0 {
		// Extension-less blob.
		bare := filepath.Join(s.dir, assetID)
		if _, err := os.Stat(bare); err == nil {
			return bare
		}
		return ""
	}
	return matches[0]
}

func (s *Store) Remove(assetID string) error {
	path := s.Path(assetID)
	if path == "" {
		return nil
	}
	return os.Remove(path)
}

// ServeFile streams a file honoring a single Range header. Invalid range
// headers fall back to a full 200 response, unsatisfiable ones get a 416.
func (s *Store) ServeFile(w http.ResponseWriter, r *http.Request, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "file not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	size := stat.Size()
	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)

	parsedRange, err := ParseRange(r.Header.Get("Range"), size)

	if err == ErrUnsatisfiable {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	}

	if err != nil && err != ErrInvalidRange {
		return err
	}

	if parsedRange == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		io.Copy(w, file)
		return nil
	}

	w.Header().Set("Content-Length", fmt.Sprintf("%d", parsedRange.ContentLength()))
	w.Header().Set("Content-Range", parsedRange.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)

	if _, err := file.Seek(parsedRange.Start, io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	io.CopyN(w, file, parsedRange.ContentLength())
	return nil
}
