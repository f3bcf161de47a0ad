// Package storage provides blob storage operations with an Azure Blob Storage implementation.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/pjecz/portal-notarias/pkg/lifecycle"
)

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that initializes the storage container.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to a blob at the given key with the specified content type
	// and returns the blob's public URL.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
	// Download returns a stream for the blob at the given key. The caller must close the reader.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob at the given key. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, key string) error
	// BlobNameFromURL recovers the blob key from a URL previously returned by Upload.
	BlobNameFromURL(rawURL string) (string, error)
}

type azure struct {
	client    *azblob.Client
	container string
	baseURL   *url.URL
	logger    *slog.Logger
}

// New creates a storage system from the given configuration.
// A connection string takes precedence; otherwise ServiceURL is used with the
// default Azure credential chain. Without either, the returned system is
// unconfigured and reports ErrNotConfigured from every operation.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage")

	if !cfg.Configured() {
		logger.Warn("storage not configured, uploads will fail")
		return unconfigured{}, nil
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = client.URL()
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse storage base url: %w", err)
	}
	baseURL.RawQuery = ""

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		baseURL:   baseURL,
		logger:    logger,
	}, nil
}

func newClient(cfg *Config) (*azblob.Client, error) {
	if cfg.ConnectionString != "" {
		return azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	return azblob.NewClient(cfg.ServiceURL, cred, nil)
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup(func() error {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			a.logger.Error("storage container initialization failed", "error", err)
			return fmt.Errorf("create container %s: %w", a.container, err)
		}

		a.logger.Info("storage container ready", "container", a.container)
		return nil
	})

	return nil
}

func (a *azure) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	if _, err := a.client.UploadStream(ctx, a.container, key, reader, opts); err != nil {
		return "", fmt.Errorf("upload blob %s: %w", key, err)
	}

	return a.baseURL.JoinPath(a.container, key).String(), nil
}

func (a *azure) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}

	return resp.Body, nil
}

func (a *azure) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if _, err := a.client.DeleteBlob(ctx, a.container, key, nil); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", key, err)
	}

	return nil
}

func (a *azure) BlobNameFromURL(rawURL string) (string, error) {
	return BlobNameFromURL(rawURL, a.container)
}

// BlobNameFromURL extracts the blob key that follows the container segment of rawURL.
// Both virtual-host (account.blob.core.windows.net/container/key) and path-style
// (host/account/container/key) URLs are accepted.
func BlobNameFromURL(rawURL, container string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", ErrInvalidURL
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}

	marker := "/" + container + "/"
	_, key, found := strings.Cut(u.Path, marker)
	if !found || key == "" {
		return "", ErrInvalidURL
	}

	if err := validateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

func isNotFound(err error) bool {
	return bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound)
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

type unconfigured struct{}

func (unconfigured) Start(*lifecycle.Coordinator) error { return nil }

func (unconfigured) Upload(context.Context, string, io.Reader, string) (string, error) {
	return "", ErrNotConfigured
}

func (unconfigured) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, ErrNotConfigured
}

func (unconfigured) Delete(context.Context, string) error { return ErrNotConfigured }

func (unconfigured) BlobNameFromURL(string) (string, error) { return "", ErrNotConfigured }
