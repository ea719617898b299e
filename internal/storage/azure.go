package storage

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	"github.com/fargo-family/openai-mcp/internal/config"
	"github.com/fargo-family/openai-mcp/internal/domain"
)

// Uploader writes one blob to object storage under the given key, setting
// the content type so the asset serves correctly without a download
// disposition.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// AzureUploader uploads blobs to an Azure Blob Storage container.
type AzureUploader struct {
	client    *azblob.Client
	container string
}

// NewAzureUploader builds an uploader from a storage connection string.
func NewAzureUploader(cfg config.StorageConfig) (*AzureUploader, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	return &AzureUploader{
		client:    client,
		container: cfg.Container,
	}, nil
}

// Upload writes the blob. Failures are surfaced once and never retried.
func (u *AzureUploader) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = domain.DefaultContentType
	}
	_, err := u.client.UploadBuffer(ctx, u.container, key, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", key, err)
	}
	return nil
}

// Store combines key generation, upload, and public URL mapping for one
// configured container.
type Store struct {
	cfg      config.StorageConfig
	keys     *KeyGenerator
	uploader Uploader
}

// NewStore creates a store over the given uploader.
func NewStore(cfg config.StorageConfig, uploader Uploader) *Store {
	return &Store{
		cfg:      cfg,
		keys:     NewKeyGenerator(cfg),
		uploader: uploader,
	}
}

// Persist uploads one media asset and returns its public reference. The
// returned URL is the configured public base URL joined with the blob key;
// it is not signed and does not expire.
func (s *Store) Persist(ctx context.Context, asset domain.MediaAsset) (domain.AssetRef, error) {
	key := s.keys.KeyFor(asset.Kind, asset.Extension)
	if err := s.uploader.Upload(ctx, key, asset.Data, asset.ContentType); err != nil {
		return domain.AssetRef{}, domain.ErrStorage(fmt.Sprintf("failed to upload %s asset", asset.Kind), err)
	}
	return domain.AssetRef{
		BlobURL:     s.cfg.PublicBaseURL + "/" + key,
		ContentType: asset.ContentType,
		MediaKind:   asset.Kind,
	}, nil
}
