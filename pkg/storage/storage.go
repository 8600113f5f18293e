package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vsconnecto/vsconnecto-api/pkg/logger"
	"github.com/vsconnecto/vsconnecto-api/pkg/metrics"
)

// MaxDocumentSize is the largest accepted upload
const MaxDocumentSize = 5 * 1024 * 1024

// DocumentKind identifies which slot of the Documents step a file belongs to
type DocumentKind string

const (
	DocumentIDProof       DocumentKind = "idProof"
	DocumentAddressProof  DocumentKind = "addressProof"
	DocumentCertification DocumentKind = "certification"
)

// ParseDocumentKind validates a kind coming from a request
func ParseDocumentKind(raw string) (DocumentKind, bool) {
	switch k := DocumentKind(raw); k {
	case DocumentIDProof, DocumentAddressProof, DocumentCertification:
		return k, true
	}
	return "", false
}

var documentExtensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/jpg":       "jpg",
	"image/png":       "png",
	"application/pdf": "pdf",
}

// Config configures an S3-compatible bucket
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	PublicBaseURL   string
}

// Client uploads provider documents to S3-compatible object storage
type Client struct {
	s3Client   *s3.Client
	bucketName string
	publicBase string
}

// NewClient creates a storage client. Objects are addressed as {PublicBaseURL}/{key},
// falling back to {Endpoint}/{bucket}/{key}.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("storage bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = "ap-south-1"
	}

	opts := s3.Options{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	}
	publicBase := strings.TrimRight(cfg.PublicBaseURL, "/")
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
		if publicBase == "" {
			publicBase = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.BucketName
		}
	}
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.BucketName, cfg.Region)
	}

	logger.Info("Object storage client initialized",
		zap.String("bucket", cfg.BucketName),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("region", cfg.Region),
	)

	return &Client{
		s3Client:   s3.New(opts),
		bucketName: cfg.BucketName,
		publicBase: publicBase,
	}, nil
}

// UploadDocument stores a document and returns its public URL
func (c *Client) UploadDocument(ctx context.Context, userID string, kind DocumentKind, body io.Reader, size int64, contentType string) (string, error) {
	start := time.Now()
	operation := "uploadDocument"

	key, err := DocumentKey(userID, kind, contentType)
	if err != nil {
		return "", err
	}

	_, err = c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucketName),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(normalizeContentType(contentType)),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.StorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.StorageRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall(ctx, "object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	metrics.StorageRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall(ctx, "object_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int64("size_bytes", size),
	)

	return c.publicBase + "/" + key, nil
}

// DocumentKey builds documents/{userID}/{kind}-{uuid}.{ext}
func DocumentKey(userID string, kind DocumentKind, contentType string) (string, error) {
	ext, ok := documentExtensions[normalizeContentType(contentType)]
	if !ok {
		return "", fmt.Errorf("invalid file type: %s", contentType)
	}
	return fmt.Sprintf("documents/%s/%s-%s.%s", userID, kind, uuid.NewString(), ext), nil
}

// ValidateDocumentType accepts JPG, PNG and PDF
func ValidateDocumentType(contentType string) error {
	if _, ok := documentExtensions[normalizeContentType(contentType)]; !ok {
		return fmt.Errorf("invalid file type: %s. Allowed types: jpg, png, pdf", contentType)
	}
	return nil
}

// ValidateDocumentSize rejects empty files and files over MaxDocumentSize
func ValidateDocumentSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("file is empty")
	}
	if size > MaxDocumentSize {
		return fmt.Errorf("file too large: %d bytes (max %d bytes)", size, MaxDocumentSize)
	}
	return nil
}

func normalizeContentType(contentType string) string {
	ct, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}
