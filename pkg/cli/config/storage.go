package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relpub/pkg/domain/interfaces"
	"github.com/m-mizutani/relpub/pkg/domain/types"
	"github.com/m-mizutani/relpub/pkg/infra/storage"
	"github.com/urfave/cli/v3"
)

const (
	BackendS3  = "s3"
	BackendGCS = "gcs"
)

// Storage holds object storage configuration
type Storage struct {
	Backend         string
	Bucket          string
	BaseURL         string
	Region          string
	Endpoint        string
	CredentialsFile string
}

// Flags returns CLI flags for storage configuration
func (c *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Object storage backend (s3, gcs)",
			Value:       BackendS3,
			Destination: &c.Backend,
			Sources:     cli.EnvVars("RELPUB_STORAGE_BACKEND"),
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Bucket the releases are published to",
			Destination: &c.Bucket,
			Sources:     cli.EnvVars("TARGET_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Public URL prefix of the bucket, ending with /",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("S3_BASE_URL"),
		},
		&cli.StringFlag{
			Name:        "aws-region",
			Usage:       "AWS region of the S3 bucket",
			Value:       "eu-central-1",
			Destination: &c.Region,
			Sources:     cli.EnvVars("AWS_REGION"),
		},
		&cli.StringFlag{
			Name:        "s3-endpoint",
			Usage:       "Custom S3 endpoint (S3 compatible storage)",
			Destination: &c.Endpoint,
			Sources:     cli.EnvVars("RELPUB_S3_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:        "gcs-credentials",
			Usage:       "Service account key file for GCS",
			Destination: &c.CredentialsFile,
			Sources:     cli.EnvVars("GOOGLE_APPLICATION_CREDENTIALS"),
		},
	}
}

// New creates the configured storage backend. The returned function releases
// the client.
func (c *Storage) New(ctx context.Context) (interfaces.Storage, func(), error) {
	switch c.Backend {
	case BackendS3, "":
		var opts []storage.S3Option
		if c.Endpoint != "" {
			opts = append(opts, storage.WithS3Endpoint(c.Endpoint))
		}
		client, err := storage.NewS3(c.Bucket, c.Region, opts...)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil

	case BackendGCS:
		client, err := storage.NewGCS(ctx, c.Bucket, c.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil

	default:
		return nil, nil, goerr.New("unknown storage backend",
			goerr.V("backend", c.Backend), goerr.T(types.ErrTagConfig))
	}
}
