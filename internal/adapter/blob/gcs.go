package blob

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// GCSSigner issues V4 signed GET URLs for document blobs using a service-account key.
type GCSSigner struct {
	bucket     string
	accessID   string
	privateKey []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewGCSSigner(bucket, accessID string, privateKey []byte, ttl time.Duration) (*GCSSigner, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("gcs bucket is required")
	}
	if accessID == "" || len(privateKey) == 0 {
		return nil, errors.New("gcs signer needs an access id and a private key")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &GCSSigner{
		bucket:     bucket,
		accessID:   accessID,
		privateKey: normalizePrivateKey(privateKey),
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// NewGCSSignerFromFile reads a PEM private key from disk.
func NewGCSSignerFromFile(bucket, accessID, keyPath string, ttl time.Duration) (*GCSSigner, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read gcs private key: %w", err)
	}
	return NewGCSSigner(bucket, accessID, key, ttl)
}

func (s *GCSSigner) SignedURL(_ context.Context, path string) (string, error) {
	object := strings.TrimPrefix(path, "/")
	if object == "" {
		return "", errors.New("empty blob path")
	}
	url, err := storage.SignedURL(s.bucket, object, &storage.SignedURLOptions{
		GoogleAccessID: s.accessID,
		PrivateKey:     s.privateKey,
		Method:         http.MethodGet,
		Expires:        s.now().Add(s.ttl),
		Scheme:         storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", object, err)
	}
	return url, nil
}

// keys pasted into env files often carry literal \n
func normalizePrivateKey(key []byte) []byte {
	return []byte(strings.ReplaceAll(string(key), `\n`, "\n"))
}
