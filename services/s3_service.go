package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AvatarSigner turns an avatar object key into a URL a client can fetch.
type AvatarSigner interface {
	ReadURL(ctx context.Context, key string) (string, error)
}

// S3Service signs short-lived read URLs for avatar objects. Uploads are
// handled by the external profile service; this server only reads.
type S3Service struct {
	Presigner *s3.PresignClient
	Bucket    string
}

// NewS3Service builds the avatar signer for the given bucket.
func NewS3Service(cfg aws.Config, bucket string) *S3Service {
	client := s3.NewFromConfig(cfg)
	return &S3Service{
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
	}
}

// ReadURL returns a presigned GET URL valid for five minutes.
func (s *S3Service) ReadURL(ctx context.Context, key string) (string, error) {
	req, err := s.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(5*time.Minute))
	if err != nil {
		return "", fmt.Errorf("failed to presign avatar read: %w", err)
	}
	return req.URL, nil
}
