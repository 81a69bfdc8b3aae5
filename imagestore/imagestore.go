// Package imagestore hands restaurant images to an image host and returns
// the public URL to record.
package imagestore

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"foodorder/pkg/apperr"
)

const MaxImageSize = 5 << 20

// extensions lists the image types accepted, keyed by sniffed content type.
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Extension returns the file extension for an accepted content type.
func Extension(contentType string) (string, bool) {
	ext, ok := extensions[contentType]
	return ext, ok
}

type Uploader interface {
	Upload(ctx context.Context, img Image) (string, error)
}

type Image struct {
	Data        io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// Open validates an uploaded form file and opens it. The caller closes the
// returned closer.
func Open(fh *multipart.FileHeader) (Image, io.Closer, error) {
	if fh.Size > MaxImageSize {
		return Image{}, nil, apperr.Invalid("image must be 5MB or smaller")
	}
	f, err := fh.Open()
	if err != nil {
		return Image{}, nil, apperr.Wrap(apperr.KindInvalid, "unreadable image", err)
	}

	// the declared Content-Type is ignored; only the bytes decide
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	ct := http.DetectContentType(head[:n])
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return Image{}, nil, err
	}
	if _, ok := Extension(ct); !ok {
		f.Close()
		return Image{}, nil, apperr.Invalid("invalid content type, must be png, jpeg, gif or webp")
	}

	return Image{Data: f, Filename: fh.Filename, ContentType: ct, Size: fh.Size}, f, nil
}
