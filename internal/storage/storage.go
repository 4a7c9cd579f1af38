// Package storage keeps uploaded images in an S3-compatible object store.
// Implementations stream bytes and never touch local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"time"
)

// Folder groups objects by what they picture.
type Folder string

const (
	Users Folder = "users"
	Tours Folder = "tours"
)

// ParseFolder validates the folder segment of an image URL.
func ParseFolder(s string) (Folder, bool) {
	switch Folder(s) {
	case Users, Tours:
		return Folder(s), true
	}
	return "", false
}

// Key returns the object key for file inside folder, e.g. img/users/user-1.jpeg.
// Only the base name of file is used.
func Key(folder Folder, file string) string {
	return path.Join("img", string(folder), path.Base("/"+file))
}

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("object not found")

// Storage is the object store used for user photos and tour images.
type Storage interface {
	// Put uploads an object under key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get streams an object's content alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
}
