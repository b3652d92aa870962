package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	put     *s3.PutObjectInput
	body    string
	deleted string
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = params
	b, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = aws.ToString(params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestUploadFile(t *testing.T) {
	fake := &fakeS3{}
	s := NewS3Storage(fake, "county-media", "https://cdn.example.com/")

	fileURL, err := s.UploadFile(context.Background(), "uploads/u1/abc.png", strings.NewReader("png"), "image/png", 3)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/uploads/u1/abc.png", fileURL)
	assert.Equal(t, "county-media", aws.ToString(fake.put.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.put.ContentType))
	assert.Equal(t, "png", fake.body)
}

func TestPublicURLDefaultsToBucket(t *testing.T) {
	s := NewS3Storage(&fakeS3{}, "county-media", "")
	assert.Equal(t, "https://county-media.s3.amazonaws.com/uploads/u1/a%20b.jpg", s.PublicURL("uploads/u1/a b.jpg"))
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("u1", "Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "uploads/u1/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, ObjectKey("u1", "Photo.JPG"))
}

func TestDeleteFile(t *testing.T) {
	fake := &fakeS3{}
	require.NoError(t, NewS3Storage(fake, "b", "").DeleteFile(context.Background(), "uploads/u1/x.png"))
	assert.Equal(t, "uploads/u1/x.png", fake.deleted)
}
