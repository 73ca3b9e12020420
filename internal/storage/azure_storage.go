package storage

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"go-shape-recognizer/internal/canvas"
)

// AzureCanvasStore reads canvases saved in Azure Blob Storage
type AzureCanvasStore struct {
	client     *azblob.Client
	accountURL string
	decoder    canvas.Decoder
}

// NewAzureCanvasStore creates a blob-backed canvas source for one storage
// account. Blobs are decoded within the limits of decoder.
func NewAzureCanvasStore(accountName, accountKey string, decoder canvas.Decoder) (*AzureCanvasStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	accountURL := fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential(accountURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	if decoder.MaxBytes <= 0 {
		decoder.MaxBytes = defaultMaxCanvasBytes
	}
	return &AzureCanvasStore{client: client, accountURL: accountURL, decoder: decoder}, nil
}

// Owns reports whether blobURL points into this store's account
func (s *AzureCanvasStore) Owns(blobURL string) bool {
	parsed, err := url.Parse(blobURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Scheme+"://"+parsed.Host, s.accountURL)
}

// FetchCanvas downloads and decodes the blob addressed by blobURL
func (s *AzureCanvasStore) FetchCanvas(ctx context.Context, blobURL string) (image.Image, error) {
	containerName, blobName, err := ParseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrCanvasNotFound, containerName, blobName)
	}
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	img, _, err := s.decoder.DecodeReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode canvas: %w", err)
	}
	if img == nil {
		return nil, fmt.Errorf("failed to decode canvas: empty blob")
	}
	return img, nil
}

// ParseBlobURL splits a blob URL into container and blob name. Both the path
// form (/container/dir/blob.png) and the query form (/container?blob=name)
// are accepted.
func ParseBlobURL(blobURL string) (containerName, blobName string, err error) {
	parsed, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}

	path := strings.TrimPrefix(parsed.Path, "/")
	containerName, blobName, _ = strings.Cut(path, "/")
	if q := parsed.Query().Get("blob"); q != "" && blobName == "" {
		blobName = q
	}
	if containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("invalid blob URL %q: expected /<container>/<blob>", blobURL)
	}
	return containerName, blobName, nil
}
