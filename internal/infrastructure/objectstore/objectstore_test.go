package objectstore

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("article-images", "My Photo (1).PNG")
	if !strings.HasPrefix(key, "article-images/") {
		t.Fatalf("expected folder prefix, got %q", key)
	}
	if !strings.HasSuffix(key, "-my-photo--1-.png") {
		t.Fatalf("expected sanitized name suffix, got %q", key)
	}

	if k := ObjectKey("profile-images", "../../etc/passwd"); strings.Contains(k, "..") {
		t.Fatalf("path traversal survived: %q", k)
	}
	if k := ObjectKey("profile-images", ""); !strings.HasSuffix(k, "-image") {
		t.Fatalf("expected fallback name, got %q", k)
	}
	if ObjectKey("a", "x.png") == ObjectKey("a", "x.png") {
		t.Fatal("expected unique keys for the same file name")
	}
}

func TestS3BaseURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{"aws", S3Config{Endpoint: "s3.amazonaws.com", Region: "eu-west-1", Bucket: "feed"}, "https://feed.s3.eu-west-1.amazonaws.com"},
		{"minio", S3Config{Endpoint: "localhost:9000", Bucket: "feed"}, "http://localhost:9000/feed"},
		{"minio tls", S3Config{Endpoint: "minio.internal", Bucket: "feed", UseSSL: true}, "https://minio.internal/feed"},
		{"override", S3Config{Endpoint: "s3.amazonaws.com", Bucket: "feed", PublicBaseURL: "https://cdn.example.com/"}, "https://cdn.example.com"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := S3BaseURL(tc.cfg); got != tc.want {
				t.Fatalf("S3BaseURL() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestKeyFromURL(t *testing.T) {
	base := "https://feed.s3.us-east-1.amazonaws.com"

	key, ok := keyFromURL(base, base+"/article-images/abc-photo.png?X-Amz=1")
	if !ok || key != "article-images/abc-photo.png" {
		t.Fatalf("unexpected key %q ok=%v", key, ok)
	}
	if _, ok := keyFromURL(base, "https://elsewhere.example.com/x.png"); ok {
		t.Fatal("foreign URL must not resolve to a key")
	}
	if _, ok := keyFromURL(base, ""); ok {
		t.Fatal("empty URL must not resolve to a key")
	}
	if _, ok := keyFromURL(base, base+"/"); ok {
		t.Fatal("bare prefix must not resolve to a key")
	}
}

func TestGCSPublicURL(t *testing.T) {
	if got := GCSPublicURL("feed", "profile-images/a.png"); got != "https://storage.googleapis.com/feed/profile-images/a.png" {
		t.Fatalf("unexpected url %q", got)
	}
	key, ok := keyFromURL(GCSPublicURL("feed", ""), "https://storage.googleapis.com/feed/profile-images/a.png")
	if !ok || key != "profile-images/a.png" {
		t.Fatalf("unexpected key %q ok=%v", key, ok)
	}
}

type recordingWriter struct {
	bytes.Buffer
	closed bool
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestCopyOrAbort(t *testing.T) {
	broken := errors.New("client went away")

	w := &recordingWriter{}
	cancelled := false
	err := copyOrAbort(w, io.MultiReader(strings.NewReader("part"), errReader{broken}), func() { cancelled = true })
	if !errors.Is(err, broken) {
		t.Fatalf("expected copy error, got %v", err)
	}
	if !cancelled || w.closed {
		t.Fatalf("failed copy should cancel without committing: cancelled=%v closed=%v", cancelled, w.closed)
	}

	w = &recordingWriter{}
	cancelled = false
	if err := copyOrAbort(w, strings.NewReader("\x89PNG"), func() { cancelled = true }); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if cancelled || !w.closed || w.String() != "\x89PNG" {
		t.Fatalf("successful copy should commit: cancelled=%v closed=%v body=%q", cancelled, w.closed, w.String())
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
