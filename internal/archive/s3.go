// Package archive keeps a copy of exported reports in object storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/BruksfildServices01/termine-api/internal/config"
)

const keyPrefix = "reports"

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type ReportArchive struct {
	client putObjectAPI
	bucket string
}

// NewReportArchive returns nil when no bucket is configured. A nil archive
// accepts and discards every report.
func NewReportArchive(cfg *config.Config) *ReportArchive {
	if cfg.ReportBucket == "" {
		return nil
	}

	opts := s3.Options{
		Region: cfg.AWSRegion,
	}
	if cfg.AWSAccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)
	}
	if cfg.AWSEndpointOverride != "" {
		// MinIO and friends
		opts.BaseEndpoint = aws.String(cfg.AWSEndpointOverride)
		opts.UsePathStyle = true
	}

	return &ReportArchive{
		client: s3.New(opts),
		bucket: cfg.ReportBucket,
	}
}

// ReportKey names an export by requester, date range and creation time.
func ReportKey(userName string, startDate, endDate string, createdAt time.Time, ext string) string {
	name := fmt.Sprintf("%s_%s_%s_%s.%s",
		startDate,
		endDate,
		userName,
		createdAt.UTC().Format("20060102T150405Z"),
		ext,
	)
	return path.Join(keyPrefix, name)
}

func (a *ReportArchive) Store(
	ctx context.Context,
	key string,
	body []byte,
	contentType string,
) error {
	if a == nil {
		return nil
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	return nil
}
