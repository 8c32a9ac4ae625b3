package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// Local writes uploads below a base directory.  Safe for concurrent use.
type Local struct {
	baseDir string
}

// NewLocal creates baseDir if needed and resolves it to an absolute path.
func NewLocal(baseDir string) (*Local, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}
	return &Local{baseDir: abs}, nil
}

// Dir returns the absolute base directory.
func (s *Local) Dir() string { return s.baseDir }

// Put copies fh to <base>/<kind>/<stored name>.  A partial file is removed
// on failure.
func (s *Local) Put(ctx context.Context, kind string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrNilFileHeader
	}
	if !validKind(kind) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := StoredName(fh.Filename)
	absPath, err := s.resolvePath(filepath.Join(kind, name))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToCreateFile, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(absPath)
		return "", fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}
	return name, nil
}

// resolvePath joins path onto baseDir and refuses anything that escapes it.
func (s *Local) resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(s.baseDir, filepath.Clean(path)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if !strings.HasPrefix(abs, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return abs, nil
}
