package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kamal-hamza/px-cli/internal/adapters/library/immich"
	"github.com/kamal-hamza/px-cli/internal/adapters/library/local"
	"github.com/kamal-hamza/px-cli/internal/adapters/library/s3"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/pkg/config"
)

// newLibrary builds the backend selected in the config
func newLibrary(ctx context.Context, cfg *config.Config) (ports.PhotoLibrary, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.Library {
	case "local":
		info, err := os.Stat(cfg.Local.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open library %s: %w", cfg.Local.Path, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("library path %s is not a directory", cfg.Local.Path)
		}
		return local.NewOS(cfg.Local.Path), nil

	case "immich":
		return immich.New(immich.Options{
			URL:    cfg.Immich.URL,
			APIKey: cfg.Immich.APIKey,
		})

	case "s3":
		return s3.New(ctx, s3.Options{
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Workers:   cfg.MaxWorkers,
		})

	default:
		return nil, fmt.Errorf("unknown library %q", cfg.Library)
	}
}
