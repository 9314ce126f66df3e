// Package s3 stores uploaded media in an S3-compatible bucket. It works
// against AWS S3 and against R2-style services via a custom endpoint.
package s3

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
)

// ObjectStore implements ports.ObjectStore on top of S3
type ObjectStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

// NewObjectStore creates an ObjectStore. publicURL is the base the bucket
// is served from; when empty, the standard S3 URL form is used.
func NewObjectStore(client *s3.Client, bucket, publicURL string, logger *zap.Logger) ports.ObjectStore {
	return &ObjectStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    logger,
	}
}

// Upload stores the binary under a random key and returns its public URL
func (s *ObjectStore) Upload(ctx context.Context, data []byte, mediaType string) (string, error) {
	key, err := objectKey(mediaType)
	if err != nil {
		return "", pkgerrors.Wrap(err, "generate object key")
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mediaType),
	})
	if err != nil {
		return "", pkgerrors.NewExternalError("object storage", err)
	}

	s.logger.Debug("uploaded object",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(data)))

	if s.publicURL != "" {
		return fmt.Sprintf("%s/%s", s.publicURL, key), nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key), nil
}

// objectKey builds a random key with an extension derived from the media
// type, e.g. uploads/3f2a...9c.jpg
func objectKey(mediaType string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("uploads/%s%s", hex.EncodeToString(buf), extensionFor(mediaType)), nil
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
