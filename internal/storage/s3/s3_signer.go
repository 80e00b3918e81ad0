package s3

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"complitracker/internal/config"
	"complitracker/internal/port"
)

type urlSigner struct {
	presigner *s3.PresignClient
	expiry    time.Duration
}

// NewURLSigner creates an S3-backed DocumentURLSigner. Signing providers fetch
// document bytes over HTTP, so s3:// file locations are exchanged for
// time-limited presigned GET URLs before they leave this service.
func NewURLSigner(cfg *config.S3Config) (port.DocumentURLSigner, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return &urlSigner{
		presigner: s3.NewPresignClient(client),
		expiry:    time.Duration(cfg.PresignExpiry) * time.Second,
	}, nil
}

func (s *urlSigner) SignedURL(ctx context.Context, fileLocation string) (string, error) {
	bucket, key, ok := parseS3Location(fileLocation)
	if !ok {
		// Already a provider-fetchable URL.
		return fileLocation, nil
	}

	result, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("presigning %s: %w", fileLocation, err)
	}
	return result.URL, nil
}

func parseS3Location(location string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(location, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
