// Package storage provides the object storage adapter: file uploads with
// public URLs, and time-limited signed URLs for private objects such as
// persona avatars. The production implementation is a disk-rooted store
// fronted by the application itself; the Store interface keeps callers
// agnostic so a bucket service can be substituted.
package storage

import "context"

// UserDataBucket is the fixed bucket for user-scoped uploads.
const UserDataBucket = "user-data"

// Store is the object storage capability consumed by the data layer.
// All writes overwrite on conflict; there is no versioning.
type Store interface {
	// Upload writes data to bucket/path, replacing any existing object,
	// and returns the object's public URL.
	Upload(ctx context.Context, bucket, path string, data []byte) (string, error)

	// PublicURL returns the stable public URL of an object without
	// touching the store.
	PublicURL(bucket, path string) string

	// SignedURL returns a URL granting read access to a private object
	// for expirySeconds. Generated per read, never stored.
	SignedURL(ctx context.Context, bucket, path string, expirySeconds int) (string, error)

	// SignedTTLSeconds returns the store's default signed-URL lifetime.
	SignedTTLSeconds() int
}
