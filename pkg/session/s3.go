package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// expiresAtMeta is the object metadata key holding the RFC3339 expiry.
const expiresAtMeta = "expires-at"

// S3Store keeps snapshots as objects under bucket/prefix. Expiry is stored in
// object metadata and checked on Load; a bucket lifecycle rule should
// reclaim stale objects.
type S3Store struct {
	client S3API
	bucket string
	prefix string
	now    func() time.Time
}

// S3Config configures a client for NewS3Client.
type S3Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// NewS3Client builds an S3 client from static configuration. Endpoint and
// UsePathStyle allow S3-compatible services such as MinIO.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		creds := aws.Credentials{
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			Source:          "sputnik-config",
		}
		opts.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return creds, nil
		})
	}
	return s3.New(opts)
}

// NewS3Store creates a store writing objects to bucket under prefix.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

func (s *S3Store) key(sessionID string) *string {
	return aws.String(s.prefix + sessionID)
}

func (s *S3Store) Save(ctx context.Context, sessionID string, data []byte, expiresAt time.Time) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         s.key(sessionID),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			expiresAtMeta: expiresAt.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 put session %s: %w", sessionID, err)
	}
	return nil
}

func (s *S3Store) Load(ctx context.Context, sessionID string) ([]byte, error) {
	data, expiresAt, err := s.get(ctx, sessionID)
	if err != nil || data == nil {
		return nil, err
	}
	if s.now().After(expiresAt) {
		return nil, nil
	}
	return data, nil
}

func (s *S3Store) get(ctx context.Context, sessionID string) ([]byte, time.Time, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(sessionID),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, fmt.Errorf("s3 get session %s: %w", sessionID, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, time.Time{}, err
	}
	expiresAt, err := time.Parse(time.RFC3339, out.Metadata[expiresAtMeta])
	if err != nil {
		// Objects without a readable expiry are treated as expired.
		return data, time.Time{}, nil
	}
	return data, expiresAt, nil
}

func (s *S3Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(sessionID),
	})
	if err != nil {
		return fmt.Errorf("s3 delete session %s: %w", sessionID, err)
	}
	return nil
}

// Touch rewrites the object with the new expiry. S3 has no metadata-only update.
func (s *S3Store) Touch(ctx context.Context, sessionID string, expiresAt time.Time) error {
	data, _, err := s.get(ctx, sessionID)
	if err != nil || data == nil {
		return err
	}
	return s.Save(ctx, sessionID, data, expiresAt)
}

func (s *S3Store) SaveAll(ctx context.Context, sessions map[string]Data) error {
	var errs []error
	for id, d := range sessions {
		if err := s.Save(ctx, id, d.Bytes, d.ExpiresAt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *S3Store) Close() error { return nil }
