// Package storage provides the blob store adapter. It defines a System
// interface for storing document bytes by object key and issuing
// time-limited presigned URLs, with a filesystem implementation suitable
// for development and single-node deployments.
package storage

import (
	"context"
	"time"
)

// UploadForm describes a presigned direct-upload target: the URL to PUT to
// and the fields the client must echo back as query parameters.
type UploadForm struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

// System defines the blob store operations.
type System interface {
	// Store saves data at the specified key, overwriting any existing
	// content. Returns ErrInvalidKey for empty or traversing keys.
	Store(ctx context.Context, key string, data []byte) error

	// Retrieve returns the data stored at the specified key.
	// Returns ErrNotFound if the key does not exist.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes the data at the specified key. Deleting a missing
	// key is a no-op.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the key holds readable content.
	Exists(ctx context.Context, key string) (bool, error)

	// PresignedGetURL issues a time-limited read URL for the key.
	PresignedGetURL(key string, ttl time.Duration) (string, error)

	// PresignedUploadForm issues a time-limited direct-upload form for
	// the key, capped at maxSize bytes.
	PresignedUploadForm(key string, maxSize int64) (*UploadForm, error)

	// VerifySignature checks a presigned request's signature and expiry.
	// Returns ErrSignatureInvalid or ErrSignatureExpired on failure.
	VerifySignature(method, key string, expires int64, signature string) error
}
