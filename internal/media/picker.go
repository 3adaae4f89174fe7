// Package media stores the product images picked by the user.
package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	// ErrNoImage is returned when nothing was picked.
	ErrNoImage = errors.New("no image selected")
	// ErrNotAnImage is returned when the picked content is not an image.
	ErrNotAnImage = errors.New("file is not an image")
)

const sniffLen = 3072

// LocalPicker copies picked images into a directory on disk.
type LocalPicker struct {
	dir string
}

// NewLocalPicker creates a LocalPicker writing into dir.
func NewLocalPicker(dir string) *LocalPicker {
	return &LocalPicker{dir: dir}
}

// Save stores the image read from r under a random name with the extension
// of the detected type and returns its file:// URI.
func (p *LocalPicker) Save(ctx context.Context, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	buffered := bufio.NewReaderSize(r, sniffLen)
	head, err := buffered.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(head) == 0 {
		return "", ErrNoImage
	}

	mtype := mimetype.Detect(head)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotAnImage, mtype.String())
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image dir: %w", err)
	}
	path, err := filepath.Abs(filepath.Join(p.dir, uuid.NewString()+mtype.Extension()))
	if err != nil {
		return "", fmt.Errorf("failed to resolve image path: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := io.Copy(f, buffered); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return "file://" + filepath.ToSlash(path), nil
}
