package assets

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"montage/internal/imaging"
	"montage/internal/logging"
)

// Encoding selects how an asset is written to disk.
type Encoding string

const (
	// EncodingJPEG is the lossy encoding for photo content.
	EncodingJPEG Encoding = "jpeg"
	// EncodingPNG is the lossless encoding for alpha-sensitive masks.
	EncodingPNG Encoding = "png"
)

// ErrNotFound reports a read for a key with no stored asset.
var ErrNotFound = errors.New("asset not found")

// Store is a file-backed image store keyed by flat asset names.
type Store struct {
	dir     string
	quality int
	logger  *slog.Logger
}

// NewStore opens an asset store rooted at dir. JPEG writes use the given
// quality.
func NewStore(dir string, quality int, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("asset store requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset directory %q: %w", dir, err)
	}
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("asset store jpeg quality out of range: %d", quality)
	}
	return &Store{
		dir:     dir,
		quality: quality,
		logger:  logging.WithComponent(logger, "assets"),
	}, nil
}

// Write persists an image under key with the given encoding. The write is
// atomic with respect to concurrent readers of the same key.
func (s *Store) Write(key string, img image.Image, encoding Encoding) error {
	if img == nil {
		return errors.New("write asset: nil image")
	}
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".write-*")
	if err != nil {
		return fmt.Errorf("create temp asset: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	switch encoding {
	case EncodingJPEG:
		err = imaging.EncodeJPEG(tmp, img, s.quality)
	case EncodingPNG:
		err = imaging.EncodePNG(tmp, img)
	default:
		err = fmt.Errorf("unknown encoding %q", encoding)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("encode asset %q: %w", key, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("commit asset %q: %w", key, err)
	}
	s.logger.Debug("asset written", logging.String(logging.FieldAssetKey, key))
	return nil
}

// Read loads the image stored under key. Returns ErrNotFound for missing
// keys.
func (s *Store) Read(key string) (image.Image, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("open asset %q: %w", key, err)
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode asset %q: %w", key, err)
	}
	return img, nil
}

// Delete removes the asset stored under key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete asset %q: %w", key, err)
	}
	return nil
}

// resolve maps a key to a path inside the store directory, rejecting keys
// that would escape it.
func (s *Store) resolve(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("empty asset key")
	}
	if strings.Contains(key, "/") || strings.Contains(key, "\\") || key != filepath.Base(key) {
		return "", fmt.Errorf("invalid asset key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}
