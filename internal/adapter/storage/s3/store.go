// Package s3 stores uploaded files in an S3 compatible bucket (AWS, R2, MinIO).
package s3

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

// ObjectAPI is the subset of *s3.Client the store uses.
type ObjectAPI interface {
	PutObject(ctx domain.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx domain.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Options configure the bucket client.
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Store puts objects into a single bucket.
type Store struct {
	api    ObjectAPI
	bucket string
}

// New wraps an existing client.
func New(api ObjectAPI, bucket string) *Store {
	return &Store{api: api, bucket: bucket}
}

// NewFromOptions loads AWS config and builds a client. Static credentials are
// used when both keys are set; otherwise the default provider chain applies.
func NewFromOptions(ctx domain.Context, o Options) (*Store, error) {
	if strings.TrimSpace(o.Bucket) == "" {
		return nil, fmt.Errorf("op=s3.new: %w: S3_BUCKET missing", domain.ErrInvalidArgument)
	}
	region := o.Region
	if region == "" {
		region = "auto"
	}
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if o.AccessKey != "" && o.SecretKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("op=s3.new: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
	})
	return New(client, o.Bucket), nil
}

func (s *Store) Put(ctx domain.Context, key string, data []byte, contentType string) error {
	tracer := otel.Tracer("storage.s3")
	ctx, span := tracer.Start(ctx, "s3.Put")
	defer span.End()
	span.SetAttributes(attribute.String("s3.bucket", s.bucket), attribute.Int("s3.size", len(data)))

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		span.RecordError(err)
		return fmt.Errorf("op=s3.put: %w: %w", domain.ErrDependency, err)
	}
	return nil
}

func (s *Store) Delete(ctx domain.Context, key string) error {
	tracer := otel.Tracer("storage.s3")
	ctx, span := tracer.Start(ctx, "s3.Delete")
	defer span.End()

	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("op=s3.delete: %w: %w", domain.ErrDependency, err)
	}
	return nil
}
