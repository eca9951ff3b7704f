// Package storage archives uploaded documents in S3-compatible object
// storage. Documents are written through presigned PUT URLs so the service
// never proxies object bytes through its own credentials path, and read back
// for audit through presigned GET URLs.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/proofpay/internal/logging"
	"github.com/dmitrijs2005/proofpay/internal/netx"
)

const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	uploadToPresignedURL = netx.UploadToPresignedURL
)

// Settings holds the object storage connection parameters. RootUser and
// RootPassword map to MINIO_ROOT_USER / MINIO_ROOT_PASSWORD when the backend
// is MinIO.
type Settings struct {
	RootUser     string
	RootPassword string
	Region       string
	Bucket       string
	BaseEndpoint string
}

// Archive stores documents under date-partitioned random keys.
type Archive struct {
	settings Settings
	logger   logging.Logger
}

// NewArchive constructs an Archive.
func NewArchive(settings Settings, logger logging.Logger) *Archive {
	return &Archive{
		settings: settings,
		logger:   logger.With("module", "storage"),
	}
}

// getRandomStorageKey produces a collision-free key partitioned by upload date.
func getRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("documents/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (a *Archive) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(a.settings.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.settings.RootUser,
			a.settings.RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(a.settings.BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// Store uploads a document through a presigned PUT URL and returns the
// storage key it was archived under.
func (a *Archive) Store(ctx context.Context, doc []byte, contentType string) (string, error) {
	presignClient, err := a.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := a.settings.Bucket
	key := getRandomStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}

	if err := uploadToPresignedURL(ctx, nil, req.URL, doc, contentType); err != nil {
		return "", fmt.Errorf("archiving document: %w", err)
	}

	a.logger.Debug(ctx, "document archived", "key", key, "size", len(doc))
	return key, nil
}

// RetrievalURL returns a presigned GET URL for an archived document.
func (a *Archive) RetrievalURL(ctx context.Context, key string) (string, error) {
	presignClient, err := a.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := a.settings.Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
