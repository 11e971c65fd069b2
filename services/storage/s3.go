package storagesvc

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

var _ core.FileStorage = (*S3Storage)(nil)

func NewS3Storage(ctx context.Context, conf core.StorageConfig) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(conf.S3Region)}
	if conf.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.S3AccessKeyID, conf.S3SecretAccessKey, ""),
		))
	}
	awsConf, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading aws config")
	}
	client := s3.NewFromConfig(awsConf, func(o *s3.Options) {
		if conf.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Storage{client: client, bucket: conf.S3Bucket, baseURL: s3BaseURL(conf)}, nil
}

// s3BaseURL is the public URL objects are served from: BaseURL if set,
// else the (path style) endpoint, else the virtual hosted bucket URL.
func s3BaseURL(conf core.StorageConfig) string {
	switch {
	case conf.BaseURL != "" && conf.Driver == "s3":
		return strings.TrimSuffix(conf.BaseURL, "/")
	case conf.S3Endpoint != "":
		return strings.TrimSuffix(conf.S3Endpoint, "/") + "/" + conf.S3Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", conf.S3Bucket, conf.S3Region)
	}
}

func (s *S3Storage) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", errors.Wrap(err, "uploading "+key)
	}
	return s.baseURL + "/" + key, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrap(err, "deleting "+key)
}

// New returns the storage selected by conf.Driver: "s3" or "fs" (default).
func New(ctx context.Context, conf core.StorageConfig) (core.FileStorage, error) {
	if conf.Driver == "s3" {
		return NewS3Storage(ctx, conf)
	}
	return NewFSStorage(conf.BaseDir, conf.BaseURL)
}
