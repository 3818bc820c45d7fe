package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// PutObject uploads body under objectKey, replacing any existing object.
	PutObject(ctx context.Context, objectKey, contentType string, body []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	DeleteObject(ctx context.Context, objectKey string) error

	// DeletePrefix removes every object whose key starts with prefix and
	// reports how many were deleted.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// ExportKey is the object key of a gym's export artifact.
func ExportKey(gymID, fileName string) string {
	return ExportPrefix(gymID) + fileName
}

// ExportPrefix is the key prefix shared by all exports of a gym.
func ExportPrefix(gymID string) string {
	return "exports/" + gymID + "/"
}
