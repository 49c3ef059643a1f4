package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/calliope-hq/go-social-backend/internal/auth"
)

// DiskStore is a disk-rooted Store. Objects live under Root/bucket/path and
// are served by the application below BaseURL. Signed URLs carry an HS256
// token binding the exact bucket and path to an expiry.
type DiskStore struct {
	Root      string
	BaseURL   string        // e.g. "http://localhost:8080/storage"
	Secret    []byte        // HMAC key for signed URLs
	SignedTTL time.Duration // default signed-URL lifetime; 24h when zero
}

// urlClaims is the signed-URL token payload.
type urlClaims struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
	jwt.RegisteredClaims
}

// Upload writes data to bucket/path, creating parent directories and
// overwriting any existing object, and returns the public URL.
func (s *DiskStore) Upload(ctx context.Context, bucket, path string, data []byte) (string, error) {
	if err := validObjectPath(path); err != nil {
		return "", err
	}
	full := filepath.Join(s.Root, bucket, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return s.PublicURL(bucket, path), nil
}

// PublicURL returns the stable URL of an object below BaseURL.
func (s *DiskStore) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.BaseURL, "/"), bucket, path)
}

// SignedURL returns a time-limited URL for a private object. The token is
// bound to the exact bucket and path, so it cannot be replayed for a
// different object.
func (s *DiskStore) SignedURL(ctx context.Context, bucket, path string, expirySeconds int) (string, error) {
	if err := validObjectPath(path); err != nil {
		return "", err
	}
	claims := urlClaims{
		Bucket: bucket,
		Path:   path,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expirySeconds) * time.Second)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", err
	}
	return s.PublicURL(bucket, path) + "?token=" + url.QueryEscape(token), nil
}

// SignedTTLSeconds returns the configured default signed-URL lifetime.
func (s *DiskStore) SignedTTLSeconds() int {
	if s.SignedTTL <= 0 {
		return 60 * 60 * 24
	}
	return int(s.SignedTTL / time.Second)
}

// VerifyToken checks a signed-URL token against the bucket and path being
// served. Returns an error for a bad signature, an expired token, or an
// object mismatch.
func (s *DiskStore) VerifyToken(tokenString, bucket, path string) error {
	var claims urlClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil {
		return err
	}
	if claims.Bucket != bucket || claims.Path != path {
		return fmt.Errorf("token does not match object %s/%s", bucket, path)
	}
	return nil
}

// Open returns the stored bytes of an object.
func (s *DiskStore) Open(bucket, path string) ([]byte, error) {
	if err := validObjectPath(path); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(s.Root, bucket, filepath.FromSlash(path)))
}

// validObjectPath rejects empty and traversal-prone paths before they reach
// the filesystem.
func validObjectPath(path string) error {
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, "..") {
		return fmt.Errorf("invalid object path %q", path)
	}
	return nil
}

// UploadForUser uploads data under the authenticated caller's prefix in the
// fixed user-data bucket ("{user_id}/{subPath}") and returns the public
// URL. Fails immediately with auth.ErrNoIdentity when the context carries
// no identity: that is a precondition violation, not a storage outcome.
func UploadForUser(ctx context.Context, s Store, subPath string, data []byte) (string, error) {
	userID, err := auth.MustUserID(ctx)
	if err != nil {
		return "", err
	}
	return s.Upload(ctx, UserDataBucket, userID+"/"+subPath, data)
}

// PersonaAvatarPath is the conventional store path of a persona's avatar.
// The avatar is not a database column: it is resolved per read via a signed
// URL against this path.
func PersonaAvatarPath(userID, personaID string) string {
	return fmt.Sprintf("%s/persona_avatars/%s.jpg", userID, personaID)
}

// PersonaAvatarURL resolves the time-limited avatar URL for a persona using
// the store's default lifetime.
func PersonaAvatarURL(ctx context.Context, s Store, userID, personaID string) (string, error) {
	return s.SignedURL(ctx, UserDataBucket, PersonaAvatarPath(userID, personaID), s.SignedTTLSeconds())
}
