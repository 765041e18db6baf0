package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/pkg/validation"
)

// DefaultMaxImageBytes caps uploads when no limit is configured.
const DefaultMaxImageBytes int64 = 5 << 20

// readImage returns the image uploaded under field, or nil when the request
// carries none. The type is sniffed from the content, not trusted from the client.
func readImage(c *gin.Context, field string, maxBytes int64) (*entity.Image, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, validation.NewFieldError(field, "could not be read")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if fh.Size > maxBytes {
		return nil, validation.NewFieldError(field, "must be at most "+sizeLabel(maxBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, validation.NewFieldError(field, "could not be read")
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, validation.NewFieldError(field, "could not be read")
	}
	if int64(len(data)) > maxBytes {
		return nil, validation.NewFieldError(field, "must be at most "+sizeLabel(maxBytes))
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, validation.NewFieldError(field, "only image files are allowed")
	}
	return &entity.Image{
		Filename:    fh.Filename,
		ContentType: mt.String(),
		Size:        int64(len(data)),
		Reader:      bytes.NewReader(data),
	}, nil
}

func sizeLabel(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
