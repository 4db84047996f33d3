package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const thumbnailPrefix = "books/thumbnails/"

// ThumbnailStore keeps cover images for catalog entries.
type ThumbnailStore interface {
	PutThumbnail(ctx context.Context, isbn string, image []byte, contentType string) (string, error)
	OpenThumbnail(ctx context.Context, key string) (io.ReadCloser, string, error)
	ThumbnailURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	DeleteThumbnail(ctx context.Context, key string) error
}

// S3Service stores thumbnails in an S3 bucket.
type S3Service struct {
	client *s3.Client
	bucket string
}

var _ ThumbnailStore = (*S3Service)(nil)

func NewS3Service(ctx context.Context, bucket, region, accessKeyID, secretAccessKey string) (*S3Service, error) {
	if bucket == "" {
		return nil, errors.New("AWS_S3_BUCKET is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Service{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// PutThumbnail uploads a cover image and returns its object key.
func (s *S3Service) PutThumbnail(ctx context.Context, isbn string, image []byte, contentType string) (string, error) {
	key := thumbnailKey(isbn, contentType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

func thumbnailKey(isbn, contentType string) string {
	ext := ".jpg"
	if strings.Contains(contentType, "png") {
		ext = ".png"
	}
	return thumbnailPrefix + isbn + "-" + uuid.New().String() + ext
}

// DeleteThumbnail removes an uploaded cover.
func (s *S3Service) DeleteThumbnail(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// OpenThumbnail returns the image body and content type. Caller must close the reader.
func (s *S3Service) OpenThumbnail(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", err
	}
	ct := "image/jpeg"
	if out.ContentType != nil && *out.ContentType != "" {
		ct = *out.ContentType
	}
	return out.Body, ct, nil
}

// ThumbnailURL returns a temporary direct link to the image.
func (s *S3Service) ThumbnailURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
