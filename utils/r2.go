// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"ranked-tournaments/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 client the archive store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2ArchiveStore writes season archives to a Cloudflare R2 bucket.
type R2ArchiveStore struct {
	Client     ObjectPutter
	Bucket     string
	CDNBaseURL string
}

// NewR2ArchiveStore builds an S3 client pointed at the account's R2 endpoint.
func NewR2ArchiveStore(ctx context.Context, cfg config.Archive) (*R2ArchiveStore, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	cdnBaseURL := cfg.CDNBaseURL
	if cdnBaseURL == "" {
		cdnBaseURL = endpoint + "/" + cfg.Bucket
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return &R2ArchiveStore{
		Client:     client,
		Bucket:     cfg.Bucket,
		CDNBaseURL: strings.TrimRight(cdnBaseURL, "/"),
	}, nil
}

// PutJSON uploads body under key and returns its public URL.
func (s *R2ArchiveStore) PutJSON(ctx context.Context, key string, body []byte) (string, error) {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.CDNBaseURL, key), nil
}
