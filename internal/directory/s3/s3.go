// Package s3 implements directory.Directory against an S3 bucket and
// prefix, for restoring from a dump staged in object storage rather than
// a local mount.
package s3

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/time/rate"

	"dumpreader/internal/directory"
	"dumpreader/internal/logging"
)

// client is the subset of *s3.Client this package calls, so tests can
// substitute a fake without pulling in the real SDK's network transport.
type client interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Directory lists and opens files under one bucket+prefix. Every call is
// throttled by a shared rate.Limiter, since cloud listing/get APIs
// typically bill (and throttle) per request.
type Directory struct {
	bucket  string
	prefix  string
	client  client
	limiter *rate.Limiter
	log     *slog.Logger
}

// New builds a Directory using the default AWS credential chain.
// requestsPerSecond bounds both ListObjectsV2 and GetObject calls.
func New(ctx context.Context, bucket, prefix string, requestsPerSecond float64, log *slog.Logger) (*Directory, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Directory{
		bucket:  bucket,
		prefix:  strings.TrimSuffix(prefix, "/"),
		client:  s3.NewFromConfig(cfg),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		log:     logging.Scoped(log, "directory.s3"),
	}, nil
}

func (d *Directory) key(name string) string {
	if d.prefix == "" {
		return name
	}
	return d.prefix + "/" + name
}

// ListFiles pages through every object under bucket+prefix.
func (d *Directory) ListFiles(ctx context.Context) ([]directory.FileInfo, error) {
	var out []directory.FileInfo
	var token *string
	for {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		prefix := d.prefix
		if prefix != "" {
			prefix += "/"
		}
		resp, err := d.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(d.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", d.bucket, prefix, err)
		}
		for _, obj := range resp.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			out = append(out, directory.FileInfo{Name: name, Size: aws.ToInt64(obj.Size)})
		}
		if !aws.ToBool(resp.IsTruncated) {
			break
		}
		token = resp.NextContinuationToken
	}
	return out, nil
}

// Open issues a GetObject and returns its body for sequential read.
func (d *Directory) Open(ctx context.Context, name string) (directory.File, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(name)),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", d.bucket, d.key(name), err)
	}
	return resp.Body, nil
}

// FullPath returns the bucket+prefix URI, diagnostic only.
func (d *Directory) FullPath() string {
	return fmt.Sprintf("s3://%s/%s", d.bucket, d.prefix)
}
