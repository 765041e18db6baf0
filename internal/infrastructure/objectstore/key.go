// Package objectstore uploads images to S3-compatible storage or Google Cloud
// Storage and hands back public URLs.
package objectstore

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// ObjectKey builds folder/<uuid>-<name>, keeping only URL-safe characters of
// the original file name.
func ObjectKey(folder, filename string) string {
	name := sanitize(path.Base(strings.ReplaceAll(filename, "\\", "/")))
	if name == "" || name == "." || name == "-" {
		name = "image"
	}
	return strings.Trim(folder, "/") + "/" + uuid.NewString() + "-" + name
}

func sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
