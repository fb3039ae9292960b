package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Service stores avatar objects in Amazon S3 (or compatible APIs).
// Each user owns a single avatar key, so re-uploads overwrite in place.
type S3Service struct {
	client     *s3.Client
	uploader   *manager.Uploader
	bucket     string
	keyPrefix  string
	publicBase string
	region     string
}

func NewS3Service(client *s3.Client, bucket, keyPrefix, publicBase, region string) *S3Service {
	return &S3Service{
		client:     client,
		uploader:   manager.NewUploader(client),
		bucket:     bucket,
		keyPrefix:  strings.Trim(keyPrefix, "/"),
		publicBase: strings.TrimRight(publicBase, "/"),
		region:     region,
	}
}

func (s *S3Service) UploadAvatar(ctx context.Context, userID, contentType string, body io.Reader) (string, error) {
	if s.bucket == "" {
		return "", fmt.Errorf("storage bucket is required")
	}

	key := s.avatarKey(userID)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return s.objectURL(key), nil
}

func (s *S3Service) DeleteAvatar(ctx context.Context, userID string) error {
	key := s.avatarKey(userID)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	return nil
}

func (s *S3Service) avatarKey(userID string) string {
	if s.keyPrefix == "" {
		return fmt.Sprintf("avatars/%s", userID)
	}
	return fmt.Sprintf("%s/avatars/%s", s.keyPrefix, userID)
}

func (s *S3Service) objectURL(key string) string {
	if s.publicBase != "" {
		return fmt.Sprintf("%s/%s", s.publicBase, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
