package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appconfig "github.com/ikkim/hwawon-backend/config"
	"github.com/ikkim/hwawon-backend/pkg/logger"
)

// ReportStore 생성된 보고서 파일 보관소
type ReportStore interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (*UploadedObject, error)
}

type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// UploadedObject 업로드 결과
type UploadedObject struct {
	Key         string `json:"key"`
	FileURL     string `json:"file_url"`
	DownloadURL string `json:"download_url,omitempty"` // 15분 유효
}

func NewS3Storage(cfg appconfig.S3Config) *S3Storage {
	var awsCfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		// Use default credential chain (environment variables, ~/.aws/credentials, IAM role, etc.)
		awsCfg, err = config.LoadDefaultConfig(context.TODO(),
			config.WithRegion(cfg.Region),
		)
		if err != nil {
			// If default config fails, create a basic config with region only
			awsCfg = aws.Config{
				Region: cfg.Region,
			}
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Upload puts the object and returns its public URL plus a short-lived download link.
func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body []byte) (*UploadedObject, error) {
	logger.Debug("Uploading object to S3", map[string]interface{}{
		"bucket": s.bucket,
		"key":    key,
		"size":   len(body),
	})

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		logger.Error("Failed to upload object to S3", err, map[string]interface{}{
			"bucket": s.bucket,
			"key":    key,
		})
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	object := &UploadedObject{
		Key:     key,
		FileURL: s.fileURL(key),
	}

	presignClient := s3.NewPresignClient(s.client)
	presigned, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		// 업로드는 성공했으므로 링크 없이 반환
		logger.Warn("Failed to presign download URL", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return object, nil
	}
	object.DownloadURL = presigned.URL

	return object, nil
}

func (s *S3Storage) fileURL(key string) string {
	if s.baseURL != "" {
		// Use CloudFront or custom domain
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	// Use S3 direct URL
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
}
