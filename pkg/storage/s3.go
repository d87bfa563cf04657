// Package storage archives uploaded student lists in S3-compatible storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Provider represents the S3-compatible storage provider
type Provider string

const (
	ProviderAWS    Provider = "aws"
	ProviderWasabi Provider = "wasabi"
)

// Config holds configuration for S3-compatible storage
type Config struct {
	Provider        Provider
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	KeyPrefix       string // e.g. "student-imports/"
}

// putObjectAPI is the subset of *s3.Client used by the archive
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImportArchive stores raw import files
type ImportArchive struct {
	client    putObjectAPI
	bucket    string
	keyPrefix string
	now       func() time.Time
}

// NewS3Client creates an S3 client; Wasabi gets its regional endpoint and path-style addressing
func NewS3Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if cfg.Provider == ProviderWasabi {
		endpoint := fmt.Sprintf("https://s3.%s.wasabisys.com", cfg.Region)
		return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}), nil
	}
	return s3.NewFromConfig(awsCfg), nil
}

// NewImportArchive creates an archive writing to cfg.Bucket
func NewImportArchive(client putObjectAPI, cfg Config) *ImportArchive {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "student-imports/"
	}
	return &ImportArchive{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: prefix,
		now:       time.Now,
	}
}

// Store uploads data and returns the object key
func (a *ImportArchive) Store(ctx context.Context, filename string, data []byte) (string, error) {
	key := a.ObjectKey(filename)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(filename)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive import file: %w", err)
	}
	return key, nil
}

// ObjectKey builds "<prefix><yyyy/mm/dd>/<timestamp>_<basename>"
func (a *ImportArchive) ObjectKey(filename string) string {
	now := a.now().UTC()
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = "upload"
	}
	return fmt.Sprintf("%s%s/%s_%s", a.keyPrefix, now.Format("2006/01/02"), now.Format("150405"), base)
}

func contentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
