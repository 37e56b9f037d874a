package objectstore

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SignedUpload is a presigned PUT the browser can upload to directly.
type SignedUpload struct {
	URL       string
	Method    string
	PublicURL string
	ExpiresAt time.Time
}

type Presigner interface {
	PresignUpload(ctx context.Context, key, contentType string) (*SignedUpload, error)
}

type S3Store struct {
	presign *s3.PresignClient
	region  string
	bucket  string
	ttl     time.Duration
	now     func() time.Time
}

func NewS3Store(ctx context.Context, region, accessKey, secretKey, bucket string, ttl time.Duration) (*S3Store, error) {
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("AWS credentials not set")
	}
	if region == "" {
		return nil, fmt.Errorf("AWS_REGION not set")
	}
	if bucket == "" {
		return nil, fmt.Errorf("thumbnail bucket name not set")
	}

	awsCfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	log.Println("S3 presigner ready for bucket", bucket)
	return NewS3StoreFromClient(s3.NewFromConfig(awsCfg), region, bucket, ttl), nil
}

func NewS3StoreFromClient(client *s3.Client, region, bucket string, ttl time.Duration) *S3Store {
	return &S3Store{
		presign: s3.NewPresignClient(client),
		region:  region,
		bucket:  bucket,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *S3Store) PresignUpload(ctx context.Context, key, contentType string) (*SignedUpload, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := s.presign.PresignPutObject(ctx, input, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("s3 presign failed: %w", err)
	}

	return &SignedUpload{
		URL:       req.URL,
		Method:    req.Method,
		PublicURL: s.PublicURL(key),
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}, nil
}

func (s *S3Store) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
