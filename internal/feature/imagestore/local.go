// Package imagestore keeps uploaded leaf photos on local disk, one directory
// per user.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"agro-advisor/internal/domain"
	"agro-advisor/pkg/utils"
)

type Local struct {
	Root string
}

func NewLocal(root string) *Local {
	if root == "" {
		root = "data/uploads"
	}
	return &Local{Root: root}
}

var _ domain.FileStore = (*Local)(nil)

// Save writes data under Root/<user>/<id><ext> and returns that path.
func (s *Local) Save(_ context.Context, data []byte, username string) (string, error) {
	dir := filepath.Join(s.Root, dirName(username))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := utils.NewID() + mimetype.Detect(data).Extension()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

// ErrOutsideRoot rejects a Remove path that Save could not have returned.
var ErrOutsideRoot = errors.New("path outside upload root")

func (s *Local) Remove(_ context.Context, path string) error {
	rel, err := filepath.Rel(s.Root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ErrOutsideRoot
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Local) RemoveAll(_ context.Context, username string) error {
	return os.RemoveAll(filepath.Join(s.Root, dirName(username)))
}

// dirName maps a username onto a single safe path element.
func dirName(username string) string {
	var b strings.Builder
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
