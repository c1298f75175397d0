// Package document is the opaque blob collaborator for dossier and
// consultation attachments. Callers persist a blob first, record only the
// returned reference path, and call Remove as compensation when the record
// write fails afterwards.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrFileTooLarge     = errors.New("file exceeds maximum allowed size")
	ErrMissingFileName  = errors.New("file name is required")
)

// MaxFileSize caps a single attachment at 20 MB.
const MaxFileSize = 20 * 1024 * 1024

// Store persists opaque blobs and returns a reference path for the record.
type Store interface {
	Save(ctx context.Context, fileName string, content io.Reader) (string, error)
	Remove(ctx context.Context, refPath string) error
}

// DiskStore writes blobs under a single directory, one file per uuid, and
// hands back "/uploads/<name>" references the way the web tier serves them.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(_ context.Context, fileName string, content io.Reader) (string, error) {
	if strings.TrimSpace(fileName) == "" {
		return "", ErrMissingFileName
	}

	name := uuid.NewString() + filepath.Ext(fileName)
	dst := filepath.Join(s.dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create document file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(content, MaxFileSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > MaxFileSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(dst)
		if errors.Is(err, ErrFileTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write document file: %w", err)
	}

	return "/uploads/" + name, nil
}

func (s *DiskStore) Remove(_ context.Context, refPath string) error {
	name := filepath.Base(refPath)
	if name == "." || name == "/" || name == "" {
		return ErrDocumentNotFound
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("remove document file: %w", err)
	}
	return nil
}
