// Package azureblob implements directory.Directory against an Azure Blob
// Storage container and prefix.
package azureblob

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"golang.org/x/time/rate"

	"dumpreader/internal/directory"
	"dumpreader/internal/logging"
)

// Directory lists and opens blobs under one container+prefix.
type Directory struct {
	containerClient *container.Client
	prefix          string
	limiter         *rate.Limiter
	log             *slog.Logger
}

// New builds a Directory over serviceURL/containerName using cred.
func New(serviceURL, containerName, prefix string, cred azcore.TokenCredential, requestsPerSecond float64, log *slog.Logger) (*Directory, error) {
	client, err := azblob.NewClient(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create azure blob client: %w", err)
	}
	return &Directory{
		containerClient: client.ServiceClient().NewContainerClient(containerName),
		prefix:          strings.TrimSuffix(prefix, "/"),
		limiter:         rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		log:             logging.Scoped(log, "directory.azureblob"),
	}, nil
}

// ListFiles pages through every blob under the configured prefix.
func (d *Directory) ListFiles(ctx context.Context) ([]directory.FileInfo, error) {
	prefix := d.prefix
	if prefix != "" {
		prefix += "/"
	}

	var out []directory.FileInfo
	pager := d.containerClient.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{Prefix: &prefix})
	for pager.More() {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs under %s: %w", prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			name := strings.TrimPrefix(*item.Name, prefix)
			var size int64
			if item.Properties != nil && item.Properties.ContentLength != nil {
				size = *item.Properties.ContentLength
			}
			out = append(out, directory.FileInfo{Name: name, Size: size})
		}
	}
	return out, nil
}

// Open downloads name and returns its body for sequential read.
func (d *Directory) Open(ctx context.Context, name string) (directory.File, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	blobClient := d.containerClient.NewBlobClient(d.key(name))
	resp, err := blobClient.DownloadStream(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", d.key(name), err)
	}
	return resp.Body, nil
}

func (d *Directory) key(name string) string {
	if d.prefix == "" {
		return name
	}
	return d.prefix + "/" + name
}

// FullPath returns the container+prefix, diagnostic only.
func (d *Directory) FullPath() string {
	return fmt.Sprintf("azblob://%s/%s", d.containerClient.URL(), d.prefix)
}
