package storage

import (
	"bytes"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/quillpress/quillpress/internal/config"
)

// S3Store keeps assets in a single bucket, with the storage location mapped
// to a key prefix.
type S3Store struct {
	client *s3.S3
	bucket string
}

// NewS3Store connects to S3 (or an S3-compatible endpoint such as MinIO)
// using the configured credentials.
func NewS3Store(cfg config.StorageConfig) (*S3Store, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.S3Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		),
	}

	// Support MinIO for local development
	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Store{client: s3.New(sess), bucket: cfg.S3Bucket}, nil
}

// Write uploads the payload, overwriting any object at the same key.
func (s *S3Store) Write(location Location, filePath string, data io.Reader) error {
	key, err := s.keyFor(location, filePath)
	if err != nil {
		return err
	}

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, data); err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	_, err = s.client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return nil
}

// Read fetches the object body.
func (s *S3Store) Read(location Location, filePath string) (io.ReadCloser, error) {
	key, err := s.keyFor(location, filePath)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch object %s: %w", key, err)
	}
	return out.Body, nil
}

// Delete removes the object.
func (s *S3Store) Delete(location Location, filePath string) error {
	key, err := s.keyFor(location, filePath)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) keyFor(location Location, filePath string) (string, error) {
	switch location {
	case LocationPublic, LocationManaged:
		return path.Join(string(location), filePath), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLocation, string(location))
	}
}
