package blobstore

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/config"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_UploadWritesObject(t *testing.T) {
	putter := &fakePutter{}
	store := newS3Store(putter, config.BlobConfig{
		Bucket:        "media",
		Region:        "eu-west-1",
		KeyPrefix:     "/images/",
		PublicBaseURL: "https://cdn.example.com/",
	}, zap.NewNop())

	url, err := store.Upload(context.Background(), []byte("data"), "abc.png", "image/png")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/images/abc.png", url)
	assert.Equal(t, "media", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "images/abc.png", aws.ToString(putter.input.Key))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, int64(4), aws.ToInt64(putter.input.ContentLength))
	assert.Equal(t, []byte("data"), putter.body)
}

func TestS3Store_UploadError(t *testing.T) {
	putter := &fakePutter{err: errors.New("access denied")}
	store := newS3Store(putter, config.BlobConfig{Bucket: "media", Region: "us-east-1"}, zap.NewNop())

	_, err := store.Upload(context.Background(), []byte("x"), "abc.png", "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abc.png")
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://media.s3.us-east-1.amazonaws.com",
		publicBaseURL(config.BlobConfig{Bucket: "media", Region: "us-east-1"}))
	assert.Equal(t, "http://minio:9000/media",
		publicBaseURL(config.BlobConfig{Bucket: "media", Endpoint: "http://minio:9000/"}))
	assert.Equal(t, "https://cdn.example.com",
		publicBaseURL(config.BlobConfig{Bucket: "media", Endpoint: "http://minio:9000", PublicBaseURL: "https://cdn.example.com"}))
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), config.BlobConfig{}, zap.NewNop())
	assert.Error(t, err)
}
