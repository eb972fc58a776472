// Package storage archives generated invoice documents in S3 compatible
// object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/facturasnap/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxDocumentSize caps the bytes read from a merchant portal download.
const MaxDocumentSize = 20 << 20

var (
	// ErrStorageDisabled is returned when no bucket is configured.
	ErrStorageDisabled = errors.New("document storage is not configured")
	// ErrDocumentTooLarge is returned when a download exceeds MaxDocumentSize.
	ErrDocumentTooLarge = errors.New("document exceeds maximum archive size")
)

var extensions = map[string]string{
	"application/pdf": ".pdf",
	"application/xml": ".xml",
	"text/xml":        ".xml",
	"application/zip": ".zip",
	"text/html":       ".html",
}

// S3DocumentArchive copies portal documents into a bucket and hands out
// presigned links to them.
type S3DocumentArchive struct {
	client  *s3.Client
	presign *s3.PresignClient
	http    *http.Client
	bucket  string
	prefix  string
	logger  *zap.Logger
}

// Option configures an S3DocumentArchive.
type Option func(*S3DocumentArchive)

// WithLogger sets the archive logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *S3DocumentArchive) { s.logger = logger }
}

// WithHTTPClient replaces the client used to download documents.
func WithHTTPClient(c *http.Client) Option {
	return func(s *S3DocumentArchive) { s.http = c }
}

// NewS3DocumentArchive builds an archive from cfg. Without static keys the
// default AWS credential chain is used.
func NewS3DocumentArchive(ctx context.Context, cfg *config.StorageConfig, opts ...Option) (*S3DocumentArchive, error) {
	if cfg == nil || cfg.Bucket == "" {
		return nil, ErrStorageDisabled
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := &S3DocumentArchive{
		client:  client,
		presign: s3.NewPresignClient(client),
		http:    &http.Client{Timeout: timeout},
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Bucket returns the configured bucket name.
func (s *S3DocumentArchive) Bucket() string { return s.bucket }

// EnsureBucket creates the bucket when it does not exist.
func (s *S3DocumentArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	s.logger.Info("Creating document bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive downloads documentURL and stores it under the invoice's key.
// It returns the object key.
func (s *S3DocumentArchive) Archive(ctx context.Context, userID, invoiceID uuid.UUID, documentURL string) (string, error) {
	data, contentType, err := s.fetch(ctx, documentURL)
	if err != nil {
		return "", err
	}

	key := s.ObjectKey(userID, invoiceID, contentType)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		Metadata:      map[string]string{"source-url": documentURL},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	s.logger.Debug("Document archived",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return key, nil
}

// ObjectKey returns the key used for an invoice document of contentType.
func (s *S3DocumentArchive) ObjectKey(userID, invoiceID uuid.UUID, contentType string) string {
	ext, ok := extensions[contentType]
	if !ok {
		ext = ".bin"
	}
	return s.prefix + userID.String() + "/" + invoiceID.String() + ext
}

// PresignDownload returns a time-limited GET link for key.
func (s *S3DocumentArchive) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, time.Now().Add(ttl), nil
}

// Delete removes an archived document.
func (s *S3DocumentArchive) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *S3DocumentArchive) fetch(ctx context.Context, documentURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, documentURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid document URL: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("document download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read document: %w", err)
	}
	if len(data) > MaxDocumentSize {
		return nil, "", ErrDocumentTooLarge
	}
	return data, contentType(resp.Header.Get("Content-Type"), data), nil
}

func contentType(header string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(header); err == nil && mt != "application/octet-stream" {
		return mt
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return strings.ToLower(mt)
}
