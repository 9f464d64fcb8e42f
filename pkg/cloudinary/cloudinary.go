package cloudinary

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Client wraps Cloudinary uploads for notice attachments. Attachments are
// mixed media (images, PDFs, scanned documents), so uploads use automatic
// resource-type detection.
type Client interface {
	UploadAttachment(ctx context.Context, file io.Reader, folder, publicID string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

type UploadResult struct {
	URL      string
	PublicID string
	Bytes    int64
	Format   string
}

type clientImpl struct {
	uploader *uploader.API
}

func (c *clientImpl) UploadAttachment(ctx context.Context, file io.Reader, folder, publicID string) (*UploadResult, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, err
	}
	return &UploadResult{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Bytes:    int64(result.Bytes),
		Format:   result.Format,
	}, nil
}

func (c *clientImpl) Delete(ctx context.Context, publicID string) error {
	_, err := c.uploader.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}

// NewClientFromParams builds a Client from Cloudinary credentials.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{uploader: up}, nil
}
