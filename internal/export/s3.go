package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the slice of the S3 client the sink needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads each table as CSV to s3://Bucket/Prefix/<name>.csv.
type S3Sink struct {
	Client ObjectPutter
	Bucket string
	Prefix string
}

// S3Options configures NewS3Sink. Endpoint points at LocalStack or MinIO.
type S3Options struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

// NewS3Sink builds a client from the default AWS credential chain.
func NewS3Sink(ctx context.Context, opts S3Options) (*S3Sink, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("export: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return &S3Sink{Client: client, Bucket: opts.Bucket, Prefix: opts.Prefix}, nil
}

// Key returns the object key for t.
func (s *S3Sink) Key(t Table) string {
	return path.Join(s.Prefix, t.Name+".csv")
}

func (s *S3Sink) Write(ctx context.Context, t Table) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return err
	}
	key := s.Key(t)
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("export: put s3://%s/%s: %w", s.Bucket, key, err)
	}
	slog.Info("table uploaded", "table", t.Name, "rows", len(t.Rows), "bucket", s.Bucket, "key", key)
	return nil
}
