package entity

import "io"

// Image is an uploaded file on its way to object storage.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}
