// Package services provides external service integrations and technical concerns like asset storage and tokens
package services

import (
	"context"
	"fmt"

	"github.com/eventdesk/eventdesk/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AssetProvisioner creates the public landing page asset for a new event and
// returns its object key and public URL.
type AssetProvisioner interface {
	ProvisionEventPage(ctx context.Context, slug string) (assetKey string, pageURL string, err error)
}

// MinIOAssetProvisioner copies a template page object into a per-event key
// inside the configured bucket.
type MinIOAssetProvisioner struct {
	client *minio.Client
	config *config.AssetConfig
}

// NewMinIOAssetProvisioner creates a provisioner backed by S3-compatible
// object storage. It verifies the bucket exists up front so provisioning
// failures at event-creation time mean a real storage problem.
func NewMinIOAssetProvisioner(cfg *config.AssetConfig) (*MinIOAssetProvisioner, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOAssetProvisioner{client: client, config: cfg}, nil
}

func (p *MinIOAssetProvisioner) ProvisionEventPage(ctx context.Context, slug string) (string, string, error) {
	assetKey := fmt.Sprintf("events/%s/index.html", slug)

	src := minio.CopySrcOptions{Bucket: p.config.Bucket, Object: p.config.TemplateObject}
	dst := minio.CopyDestOptions{Bucket: p.config.Bucket, Object: assetKey}
	if _, err := p.client.CopyObject(ctx, dst, src); err != nil {
		return "", "", fmt.Errorf("failed to copy page template: %w", err)
	}

	return assetKey, p.config.PublicBaseURL + "/" + assetKey, nil
}

// StaticAssetProvisioner serves deployments without object storage: it
// performs no copy and derives the page URL from the slug alone.
type StaticAssetProvisioner struct {
	PublicBaseURL string
}

func (p *StaticAssetProvisioner) ProvisionEventPage(_ context.Context, slug string) (string, string, error) {
	return "", p.PublicBaseURL + "/events/" + slug, nil
}
