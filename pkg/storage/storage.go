// Package storage provides blob storage operations with an Azure Blob Storage implementation.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/JaimeStill/proctor/pkg/lifecycle"
)

// Blob is a downloaded blob stream with its recorded properties.
// The caller must close Body.
type Blob struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that initializes the storage container.
	Start(lc *lifecycle.Coordinator) error
	// Ready reports whether the container has been initialized.
	Ready() bool
	// Upload streams data to a blob at the given key with the specified content type.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Download returns the blob at the given key. Returns ErrNotFound if it does not exist.
	Download(ctx context.Context, key string) (*Blob, error)
	// Delete removes the blob at the given key. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

type azure struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
	ready     atomic.Bool
}

// New creates a storage system from the given configuration.
// It validates the connection string and creates the Azure client
// but does not contact the service until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		logger:    logger.With("system", "storage"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			a.logger.Error("storage container initialization failed", "error", err)
			return
		}

		a.ready.Store(true)
		a.logger.Info("storage container ready", "container", a.container)
	})

	return nil
}

func (a *azure) Ready() bool {
	return a.ready.Load()
}

func (a *azure) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	if _, err := a.client.UploadStream(ctx, a.container, key, reader, opts); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	a.logger.Debug("blob uploaded", "key", key)
	return nil
}

func (a *azure) Download(ctx context.Context, key string) (*Blob, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}

	b := &Blob{Body: resp.Body, ContentType: "application/octet-stream"}
	if resp.ContentType != nil {
		b.ContentType = *resp.ContentType
	}
	if resp.ContentLength != nil {
		b.ContentLength = *resp.ContentLength
	}
	return b, nil
}

func (a *azure) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if _, err := a.client.DeleteBlob(ctx, a.container, key, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", key, err)
	}

	return nil
}

func (a *azure) Exists(ctx context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}

	blobClient := a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(key)

	if _, err := blobClient.GetProperties(ctx, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check blob existence %s: %w", key, err)
	}

	return true, nil
}

// ValidateKey rejects empty, absolute, and traversing blob keys.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for seg := range strings.SplitSeq(key, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return ErrInvalidKey
		}
	}
	return nil
}
