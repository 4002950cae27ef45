package media

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
)

// Store is the external media collaborator. The engine only passes opaque
// keys, never interprets content.
type Store interface {
	Resolve(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// FirebaseStorage serves media from a Firebase Cloud Storage bucket.
type FirebaseStorage struct {
	bucket     *storage.BucketHandle
	bucketName string
}

func NewFirebaseStorage(bucket *storage.BucketHandle, bucketName string) *FirebaseStorage {
	return &FirebaseStorage{bucket: bucket, bucketName: bucketName}
}

func (s *FirebaseStorage) Resolve(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, key), nil
}

func (s *FirebaseStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := s.bucket.Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// Nop is used when no storage bucket is configured.
type Nop struct{}

func (Nop) Resolve(ctx context.Context, key string) (string, error) { return "", nil }
func (Nop) Delete(ctx context.Context, key string) error { return nil }
