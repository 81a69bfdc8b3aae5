package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"foodorder/pkg/apperr"

	"github.com/google/uuid"
)

// Local writes images under Dir and serves them from URLPrefix. Meant for
// development when no image host is configured.
type Local struct {
	Dir       string
	URLPrefix string
}

func NewLocal(dir, urlPrefix string) *Local {
	return &Local{Dir: dir, URLPrefix: urlPrefix}
}

func (l *Local) Upload(ctx context.Context, img Image) (string, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", err
	}

	// the client's filename never picks the extension /uploads serves with
	ext, ok := Extension(img.ContentType)
	if !ok {
		return "", apperr.Invalid("unsupported image type %q", img.ContentType)
	}
	name := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(l.Dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(img.Data, MaxImageSize+1)); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path.Join(l.URLPrefix, name), nil
}
