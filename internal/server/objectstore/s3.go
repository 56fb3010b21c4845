package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/countdown/internal/common"
	sc "github.com/dmitrijs2005/countdown/internal/server/config"
)

// s3API is the subset of *s3.Client used here.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Store stores blobs in an S3-compatible bucket (AWS S3, MinIO).
//
// Version tokens are ETags. A PreviousVersion is sent as If-Match and
// IfAbsent as If-None-Match: *; AWS S3 enforces both, other S3-compatible
// services may ignore or reject them.
type S3Store struct {
	client       s3API
	bucket       string
	baseEndpoint string
	pathStyle    bool
}

// NewS3Store builds an S3 client from static credentials and an optional
// base endpoint override.
func NewS3Store(ctx context.Context, c *sc.Config) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		}
		o.UsePathStyle = c.S3UsePathStyle
	})

	return newS3Store(client, c.S3Bucket, c.S3BaseEndpoint, c.S3UsePathStyle), nil
}

func newS3Store(client s3API, bucket, baseEndpoint string, pathStyle bool) *S3Store {
	return &S3Store{
		client:       client,
		bucket:       bucket,
		baseEndpoint: baseEndpoint,
		pathStyle:    pathStyle,
	}
}

func (s *S3Store) Fetch(ctx context.Context, key string) (*Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyS3Error("get "+key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", common.ErrStoreUnavailable, key, err)
	}

	return &Object{Key: key, Data: data, Version: aws.ToString(out.ETag)}, nil
}

func (s *S3Store) Write(ctx context.Context, key string, data []byte, opts WriteOptions) (*WriteResult, error) {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	if opts.PublicRead {
		in.ACL = types.ObjectCannedACLPublicRead
	}
	if opts.PreviousVersion != "" {
		in.IfMatch = aws.String(opts.PreviousVersion)
	}
	if opts.IfAbsent {
		in.IfNoneMatch = aws.String("*")
	}

	out, err := s.client.PutObject(ctx, in)
	if err != nil {
		return nil, classifyS3Error("put "+key, err)
	}

	return &WriteResult{Location: s.location(key), Version: aws.ToString(out.ETag)}, nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	in := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if prefix != "" {
		in.Prefix = aws.String(prefix)
	}

	var keys []string
	p := s3.NewListObjectsV2Paginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, classifyS3Error("list "+prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (s *S3Store) location(key string) string {
	if s.baseEndpoint == "" || !s.pathStyle {
		return "s3://" + s.bucket + "/" + key
	}
	return strings.TrimRight(s.baseEndpoint, "/") + "/" + s.bucket + "/" + key
}

// classifyS3Error maps S3 API errors onto the common sentinels.
func classifyS3Error(op string, err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%s: %w", op, common.ErrNotFound)
		case "PreconditionFailed", "ConditionalRequestConflict":
			return fmt.Errorf("%s: %w", op, common.ErrVersionConflict)
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Errorf("%w: %s: %w", common.ErrStoreUnavailable, op, err)
}
