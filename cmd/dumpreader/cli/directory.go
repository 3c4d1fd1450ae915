package cli

import (
	"context"
	"fmt"
	"log/slog"

	"dumpreader/internal/config"
	"dumpreader/internal/directory"
	"dumpreader/internal/directory/azureblob"
	"dumpreader/internal/directory/gcs"
	"dumpreader/internal/directory/local"
	"dumpreader/internal/directory/s3"
)

// openDirectory constructs the Directory backend named by bc.Kind.
func openDirectory(ctx context.Context, bc config.BackendConfig, log *slog.Logger) (directory.Directory, error) {
	switch bc.Kind {
	case config.BackendLocal, "":
		return local.New(bc.Path, log), nil
	case config.BackendS3:
		return s3.New(ctx, bc.Bucket, bc.Prefix, requestsPerSecond(bc), log)
	case config.BackendAzure:
		cred, err := defaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("azure credential: %w", err)
		}
		return azureblob.New(bc.ServiceURL, bc.Container, bc.Prefix, cred, requestsPerSecond(bc), log)
	case config.BackendGCS:
		return gcs.New(ctx, bc.Bucket, bc.Prefix, requestsPerSecond(bc), log)
	default:
		return nil, fmt.Errorf("unknown directory backend %q", bc.Kind)
	}
}

func requestsPerSecond(bc config.BackendConfig) float64 {
	if bc.RequestsPerSecond > 0 {
		return bc.RequestsPerSecond
	}
	return 10
}
