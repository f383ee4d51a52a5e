// Package storage persists exported dataset artifacts to S3 compatible
// object stores. Deployments run against MinIO, so clients are configured
// with path style addressing and a fixed endpoint.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"hawkset.claimhawk.org/common"
)

const artifactContentType = "application/json"

// NewS3Client builds an S3 client for a MinIO style endpoint with static
// credentials.
func NewS3Client(endpoint, accessKey, secretKey string) (S3Client, error) {
	region := "us-east-1"
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               endpoint,
					SigningRegion:     region,
					HostnameImmutable: true, // important for MinIO
				}, nil
			})),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true // required for MinIO
		o.HTTPClient = &http.Client{}
	})
	return client, nil
}

// ArtifactStore uploads and retrieves export artifacts in a single bucket.
type ArtifactStore struct {
	client S3Client
	bucket string
}

// NewArtifactStore wraps an S3 client for a bucket.
func NewArtifactStore(client S3Client, bucket string) *ArtifactStore {
	return &ArtifactStore{client: client, bucket: bucket}
}

// ArtifactKey builds the object key for a dataset export. Timestamps keep
// successive exports of the same dataset from overwriting each other.
func ArtifactKey(dataset string, at time.Time) string {
	return fmt.Sprintf("exports/%s/%s.json", dataset, at.UTC().Format("20060102T150405Z"))
}

func (a *ArtifactStore) ensureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	common.Logger.Info("Created artifact bucket ", a.bucket)
	return nil
}

// Upload writes an artifact under key, creating the bucket on first use.
func (a *ArtifactStore) Upload(ctx context.Context, key string, data []byte) error {
	if err := a.ensureBucket(ctx); err != nil {
		return err
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(artifactContentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload artifact %s: %w", key, err)
	}

	common.Logger.WithField("bucket", a.bucket).WithField("key", key).Info("Uploaded export artifact")
	return nil
}

// Download retrieves an artifact by key.
func (a *ArtifactStore) Download(ctx context.Context, key string) ([]byte, error) {
	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("artifact %s not found in bucket %s", key, a.bucket)
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", key, err)
	}
	return data, nil
}

// ListExports returns the artifact keys stored for a dataset.
func (a *ArtifactStore) ListExports(ctx context.Context, dataset string) ([]string, error) {
	prefix := "exports/"
	if dataset != "" {
		prefix = fmt.Sprintf("exports/%s/", dataset)
	}

	output, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	keys := make([]string, 0, len(output.Contents))
	for _, item := range output.Contents {
		if item.Key == nil {
			continue
		}
		if !strings.HasSuffix(*item.Key, ".json") {
			continue
		}
		keys = append(keys, *item.Key)
	}
	return keys, nil
}
