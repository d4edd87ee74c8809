package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prism-worklet/prism-api/pkg/logger"
	"github.com/prism-worklet/prism-api/pkg/metrics"
	"go.uber.org/zap"
)

// Client wraps an S3-compatible object store used for mentor profile photos.
type Client struct {
	s3Client *s3.Client
	bucket   string
	endpoint string
}

// NewClient creates a client for an S3-compatible object store.
func NewClient(accessKeyID, secretAccessKey, bucket, endpoint, region string) (*Client, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	if region == "" {
		region = "ap-south-1"
	}

	opts := s3.Options{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"",
		),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
	}

	logger.Info("Object storage client initialized",
		zap.String("bucket", bucket),
		zap.String("region", region),
	)

	return &Client{
		s3Client: s3.New(opts),
		bucket:   bucket,
		endpoint: endpoint,
	}, nil
}

// UploadPhoto uploads a base64-encoded image and returns its public URL.
// Accepts either raw base64 or a data URI (data:image/png;base64,...).
func (c *Client) UploadPhoto(ctx context.Context, imageData, key, contentType string) (string, error) {
	start := time.Now()
	operation := "uploadPhoto"

	imageBytes, err := decodeImage(imageData)
	if err != nil {
		metrics.StorageRequestDuration.WithLabelValues(operation, "error").Observe(metrics.MeasureDuration(start))
		metrics.StorageRequestTotal.WithLabelValues(operation, "error").Inc()
		return "", fmt.Errorf("failed to decode base64 image: %w", err)
	}

	_, err = c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(imageBytes),
		ContentType: aws.String(contentType),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.StorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.StorageRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall("object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	metrics.StorageRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall("object_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(imageBytes)),
	)

	if c.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key), nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", c.bucket, key), nil
}

// ValidateImageType checks that the content type is an allowed image format.
func (c *Client) ValidateImageType(contentType string) error {
	validTypes := map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
	}

	if !validTypes[strings.ToLower(contentType)] {
		return fmt.Errorf("invalid file type: %s. Allowed types: jpeg, jpg, png, webp", contentType)
	}

	return nil
}

// ValidateImageSize checks the decoded image against the 10MB limit.
func (c *Client) ValidateImageSize(imageData string) error {
	const maxSize = 10 * 1024 * 1024

	imageBytes, err := decodeImage(imageData)
	if err != nil {
		return fmt.Errorf("failed to decode image for size validation: %w", err)
	}

	if len(imageBytes) > maxSize {
		return fmt.Errorf("file too large: %d bytes (max %d bytes)", len(imageBytes), maxSize)
	}

	return nil
}

func decodeImage(imageData string) ([]byte, error) {
	if strings.HasPrefix(imageData, "data:") {
		parts := strings.SplitN(imageData, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid data URI format")
		}
		imageData = parts[1]
	}
	return base64.StdEncoding.DecodeString(imageData)
}
