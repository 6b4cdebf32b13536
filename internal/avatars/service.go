// Package avatars hands out presigned S3 PUT URLs for profile pictures.
// The object key is stored on the caller's mirror record; the upload itself
// goes straight from the browser to the object store.
package avatars

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Config holds the S3-compatible backend settings (MinIO in development).
type Config struct {
	Bucket       string
	Region       string
	RootUser     string
	RootPassword string
	BaseEndpoint string
}

type Service struct {
	config Config
}

func NewService(cfg Config) *Service {
	return &Service{config: cfg}
}

// StorageKey builds a per-user object key that never collides.
func StorageKey(userID int64) string {
	return fmt.Sprintf("avatars/%d/%v", userID, uuid.New())
}

func (s *Service) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.config.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.RootUser,
			s.config.RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.BaseEndpoint)
		o.UsePathStyle = true
	})

	return s3.NewPresignClient(client), nil
}

// GetPresignedPutURL returns a fresh storage key for userID's avatar and a
// short-lived URL authorizing a direct PUT of the object.
func (s *Service) GetPresignedPutURL(ctx context.Context, userID int64) (string, string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.Bucket
	key := StorageKey(userID)

	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}
