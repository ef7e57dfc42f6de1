package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	iamconfig "iam/internal/config"
	"iam/internal/models"
	"iam/internal/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	_ models.AvatarURLSigner = (*S3Storage)(nil)
	_ AvatarStore            = (*S3Storage)(nil)
)

// S3Storage keeps avatars in an S3 or S3-compatible bucket.
type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	logger  *logger.Logger
}

func NewS3Storage(ctx context.Context, cfg iamconfig.S3Config) (*S3Storage, error) {
	log := logger.New("S3")

	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, log.Error("S3 credentials are empty ❌", fmt.Errorf("accessKey or secretKey is empty"))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		config.WithRetryMode(aws.RetryModeStandard),
		config.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, log.Error("Unable to load SDK config ❌", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			// MinIO and friends
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.BucketName,
		logger:  log,
	}, nil
}

// Verify checks the credentials against the bucket.
func (s *S3Storage) Verify(ctx context.Context) error {
	_, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return s.logger.Error("Failed to verify S3 credentials ❌", err)
	}
	s.logger.Success("S3 storage ready for bucket %s ✅", s.bucket)
	return nil
}

func (s *S3Storage) Put(ctx context.Context, key string, body []byte, contentType string) error {
	s.logger.Info("📤 Uploading %s (%d bytes)", key, len(body))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return s.logger.Error("Failed to upload file to storage ❌", err)
	}
	return nil
}

// GetSignedURL returns a presigned GET link for key.
func (s *S3Storage) GetSignedURL(ctx context.Context, key string, duration time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		return "", s.logger.Error("Failed to generate pre-signed URL ❌", err)
	}
	return req.URL, nil
}
