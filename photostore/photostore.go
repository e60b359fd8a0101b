package photostore

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/google/uuid"
)

var (
	// ErrNoExtension is returned when an uploaded filename has no extension
	// to derive the stored name from.
	ErrNoExtension = errors.New("uploaded filename has no extension")
	// ErrNotFound is returned when no blob exists under the given name.
	ErrNotFound = errors.New("photo not found")
)

// Store keeps uploaded photos under generated names in one directory. The
// client-supplied filename is only ever used to derive the extension, never
// as a storage path.
type Store struct {
	dir string
}

// New creates the upload directory if needed and returns a store rooted there.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Save persists the uploaded file under a fresh <uuid>.<ext> name and returns
// that name. A nil header or an empty original filename is not an error; it
// yields an empty name and no I/O.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Filename == "" {
		return "", nil
	}

	ext, err := extension(fh.Filename)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s.%s", uuid.New().String(), ext)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create photo %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write photo %s: %w", name, err)
	}
	log.Infof("Saved photo %s", name)
	return name, nil
}

// Fetch returns the bytes of the blob stored under the exact given name.
func (s *Store) Fetch(name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read photo %s: %w", name, err)
	}
	return data, nil
}

// Path resolves a stored name to its location on disk, for handing the file
// to the HTTP layer. Names containing path separators are rejected.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", ErrNotFound
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("stat photo %s: %w", name, err)
	}
	return path, nil
}

func extension(filename string) (string, error) {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return "", ErrNoExtension
	}
	return strings.ToLower(filename[idx+1:]), nil
}
