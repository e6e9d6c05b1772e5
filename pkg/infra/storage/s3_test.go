package storage_test

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/relpub/pkg/infra/storage"
)

// mockS3Client overrides the S3API methods used by storage.S3
type mockS3Client struct {
	s3iface.S3API

	putInputs []*s3.PutObjectInput
	putBodies [][]byte
	putErr    error

	pages   []*s3.ListObjectsV2Output
	listErr error
	prefix  *string
}

func (m *mockS3Client) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	m.putInputs = append(m.putInputs, input)
	m.putBodies = append(m.putBodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, _ ...request.Option) error {
	if m.listErr != nil {
		return m.listErr
	}
	m.prefix = input.Prefix
	for i, page := range m.pages {
		if !fn(page, i == len(m.pages)-1) {
			break
		}
	}
	return nil
}

func TestS3_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads with public-read ACL", func(t *testing.T) {
		client := &mockS3Client{}
		s := storage.NewS3WithClient(client, "test-bucket")

		err := s.Put(ctx, "v1.0.0/connector.jar", []byte("jar"), "application/java-archive")
		gt.NoError(t, err)

		gt.Number(t, len(client.putInputs)).Equal(1)
		input := client.putInputs[0]
		gt.Value(t, aws.StringValue(input.Bucket)).Equal("test-bucket")
		gt.Value(t, aws.StringValue(input.Key)).Equal("v1.0.0/connector.jar")
		gt.Value(t, aws.StringValue(input.ACL)).Equal(s3.ObjectCannedACLPublicRead)
		gt.Value(t, aws.StringValue(input.ContentType)).Equal("application/java-archive")
		gt.Value(t, string(client.putBodies[0])).Equal("jar")
	})

	t.Run("wraps client error", func(t *testing.T) {
		client := &mockS3Client{putErr: errors.New("access denied")}
		s := storage.NewS3WithClient(client, "test-bucket")

		err := s.Put(ctx, "manifest.json", []byte("[]"), "application/json")
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("access denied")
	})
}

func TestS3_List(t *testing.T) {
	ctx := context.Background()

	t.Run("collects keys across pages", func(t *testing.T) {
		client := &mockS3Client{
			pages: []*s3.ListObjectsV2Output{
				{Contents: []*s3.Object{{Key: aws.String("v1.0.0/a.jar")}, {Key: aws.String("v1.0.0/jvmrun")}}},
				{Contents: []*s3.Object{{Key: aws.String("v1.0.0/ConnectorConfig.json")}}},
			},
		}
		s := storage.NewS3WithClient(client, "test-bucket")

		keys, err := s.List(ctx, "v1.0.0/")
		gt.NoError(t, err)
		gt.Value(t, keys).Equal([]string{"v1.0.0/a.jar", "v1.0.0/jvmrun", "v1.0.0/ConnectorConfig.json"})
		gt.Value(t, aws.StringValue(client.prefix)).Equal("v1.0.0/")
	})

	t.Run("empty prefix lists whole bucket", func(t *testing.T) {
		client := &mockS3Client{}
		s := storage.NewS3WithClient(client, "test-bucket")

		keys, err := s.List(ctx, "")
		gt.NoError(t, err)
		gt.Number(t, len(keys)).Equal(0)
		gt.Value(t, client.prefix).Nil()
	})

	t.Run("wraps client error", func(t *testing.T) {
		client := &mockS3Client{listErr: errors.New("no such bucket")}
		s := storage.NewS3WithClient(client, "test-bucket")

		_, err := s.List(ctx, "")
		gt.Error(t, err)
	})
}

func TestGCS_WithRealBucket(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET is not set")
	}

	ctx := context.Background()
	g, err := storage.NewGCS(ctx, bucket, os.Getenv("TEST_GCS_CREDENTIALS_FILE"))
	gt.NoError(t, err)
	defer func() {
		_ = g.Close()
	}()

	key := "relpub-test/manifest.json"
	gt.NoError(t, g.Put(ctx, key, []byte("[]"), "application/json"))

	keys, err := g.List(ctx, "relpub-test/")
	gt.NoError(t, err)
	gt.Value(t, keys).Equal([]string{key})
}
