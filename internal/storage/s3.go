package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"countyconnect/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the part of the S3 client used for uploads.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage stores listing images in a bucket
type S3Storage struct {
	client     S3API
	bucketName string
	publicBase string
}

// NewS3Storage returns storage for bucket. publicBase is the URL prefix
// objects are served from; it defaults to the virtual hosted bucket URL.
func NewS3Storage(client S3API, bucketName, publicBase string) *S3Storage {
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.amazonaws.com", bucketName)
	}
	return &S3Storage{
		client:     client,
		bucketName: bucketName,
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

// ObjectKey builds a collision free key that keeps the original extension
func ObjectKey(userID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("uploads/%s/%s%s", userID, utils.NewIDOfSize(21), ext)
}

// UploadFile stores body under key and returns its public URL
func (s *S3Storage) UploadFile(ctx context.Context, key string, body io.Reader, contentType string, size int64) (string, error) {

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return s.PublicURL(key), nil
}

// DeleteFile removes an object from the bucket
func (s *S3Storage) DeleteFile(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) PublicURL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.publicBase + "/" + strings.Join(parts, "/")
}
