package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"tourapi/internal/photo"
	"tourapi/internal/storage"
)

// upload is a rendered image waiting to be stored.
type upload struct {
	key      string
	data     []byte
	metadata map[string]string
}

// putAll stores uploads in order and returns their keys.
// On failure the objects already stored are removed again.
func putAll(ctx context.Context, store storage.Storage, uploads []upload) ([]string, error) {
	keys := make([]string, 0, len(uploads))
	for _, u := range uploads {
		_, err := store.Put(ctx, u.key, bytes.NewReader(u.data), storage.PutObjectOptions{
			Size:        int64(len(u.data)),
			ContentType: photo.ContentType,
			Metadata:    u.metadata,
		})
		if err != nil {
			return nil, rollback(ctx, store, keys, fmt.Errorf("store image: %w", err))
		}
		keys = append(keys, u.key)
	}
	return keys, nil
}

// rollback deletes keys and returns cause, annotated with any delete failures.
func rollback(ctx context.Context, store storage.Storage, keys []string, cause error) error {
	var delErrs []error
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil {
			delErrs = append(delErrs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if len(delErrs) > 0 {
		return fmt.Errorf("%w; rollback delete failed: %v", cause, errors.Join(delErrs...))
	}
	return cause
}
