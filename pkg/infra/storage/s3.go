package storage

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/m-mizutani/goerr/v2"
)

// S3 stores objects in an Amazon S3 (or S3 compatible) bucket
type S3 struct {
	client s3iface.S3API
	bucket string
}

type s3Config struct {
	endpoint  string
	pathStyle bool
}

// S3Option is a functional option for NewS3
type S3Option func(*s3Config)

// WithS3Endpoint sets a custom endpoint such as MinIO. Path-style addressing
// is enabled along with it.
func WithS3Endpoint(endpoint string) S3Option {
	return func(c *s3Config) {
		c.endpoint = endpoint
		c.pathStyle = true
	}
}

// NewS3 creates an S3 storage. Credentials are taken from the default AWS
// credential chain (environment, shared config, instance role).
func NewS3(bucket, region string, opts ...S3Option) (*S3, error) {
	cfg := &s3Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	awsCfg := &aws.Config{
		Region: aws.String(region),
	}
	if cfg.endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(cfg.pathStyle)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create AWS session", goerr.V("region", region))
	}

	return NewS3WithClient(s3.New(sess), bucket), nil
}

// NewS3WithClient creates an S3 storage on top of an existing client
func NewS3WithClient(client s3iface.S3API, bucket string) *S3 {
	return &S3{client: client, bucket: bucket}
}

// Put uploads body with public-read ACL
func (s *S3) Put(ctx context.Context, key string, body []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
		ACL:    aws.String(s3.ObjectCannedACLPublicRead),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return goerr.Wrap(err, "failed to put object to S3",
			goerr.V("bucket", s.bucket), goerr.V("key", key))
	}
	return nil
}

// List returns every key under prefix
func (s *S3) List(ctx context.Context, prefix string) ([]string, error) {
	params := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if prefix != "" {
		params.Prefix = aws.String(prefix)
	}

	var keys []string
	err := s.client.ListObjectsV2PagesWithContext(ctx, params, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list objects in S3",
			goerr.V("bucket", s.bucket), goerr.V("prefix", prefix))
	}

	return keys, nil
}
