// Package gcs implements directory.Directory against a Google Cloud
// Storage bucket and prefix.
package gcs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/time/rate"
	"google.golang.org/api/iterator"

	"dumpreader/internal/directory"
	"dumpreader/internal/logging"
)

// Directory lists and opens objects under one bucket+prefix.
type Directory struct {
	bucket  *storage.BucketHandle
	name    string
	prefix  string
	limiter *rate.Limiter
	log     *slog.Logger
}

// New builds a Directory using application-default credentials.
func New(ctx context.Context, bucket, prefix string, requestsPerSecond float64, log *slog.Logger) (*Directory, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &Directory{
		bucket:  client.Bucket(bucket),
		name:    bucket,
		prefix:  strings.TrimSuffix(prefix, "/"),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		log:     logging.Scoped(log, "directory.gcs"),
	}, nil
}

// ListFiles iterates every object under the configured prefix.
func (d *Directory) ListFiles(ctx context.Context) ([]directory.FileInfo, error) {
	prefix := d.prefix
	if prefix != "" {
		prefix += "/"
	}

	var out []directory.FileInfo
	it := d.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gs://%s/%s: %w", d.name, prefix, err)
		}
		out = append(out, directory.FileInfo{
			Name: strings.TrimPrefix(attrs.Name, prefix),
			Size: attrs.Size,
		})
	}
	return out, nil
}

// Open opens an object reader for name.
func (d *Directory) Open(ctx context.Context, name string) (directory.File, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	r, err := d.bucket.Object(d.key(name)).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", d.name, d.key(name), err)
	}
	return r, nil
}

func (d *Directory) key(name string) string {
	if d.prefix == "" {
		return name
	}
	return d.prefix + "/" + name
}

// FullPath returns the bucket+prefix URI, diagnostic only.
func (d *Directory) FullPath() string {
	return fmt.Sprintf("gs://%s/%s", d.name, d.prefix)
}
