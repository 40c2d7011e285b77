package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureBlob is the Azure Blob Storage implementation of Store. URIs have the
// form https://<account>.blob.core.windows.net/<container>/<blob>.
type AzureBlob struct {
	client *azblob.Client
}

// NewAzureBlob creates a blob store for serviceURL using the default Azure
// credential chain (environment, managed identity, CLI login).
func NewAzureBlob(serviceURL string) (*AzureBlob, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("NewAzureBlob: default credential: %w", err)
	}
	client, err := azblob.NewClient(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("NewAzureBlob: creating client: %w", err)
	}
	return &AzureBlob{client: client}, nil
}

// Fetch downloads the blob at uri.
func (a *AzureBlob) Fetch(ctx context.Context, uri string) ([]byte, error) {
	container, blob, err := ParseBlobURI(uri)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("AzureBlob.Fetch: %s/%s: %w", container, blob, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("AzureBlob.Fetch: downloading %s/%s: %w", container, blob, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("AzureBlob.Fetch: reading bytes: %w", err)
	}
	return data, nil
}

// UploadFile uploads a local file to the blob at uri.
func (a *AzureBlob) UploadFile(ctx context.Context, uri, filePath string) error {
	container, blob, err := ParseBlobURI(uri)
	if err != nil {
		return err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	if _, err := a.client.UploadFile(ctx, container, blob, f, nil); err != nil {
		return fmt.Errorf("AzureBlob.UploadFile: uploading %s/%s: %w", container, blob, err)
	}
	return nil
}

// ParseBlobURI extracts the container and blob name from a blob URL.
func ParseBlobURI(uri string) (string, string, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("invalid blob URI: %s", uri)
	}

	container, blob, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if !ok || container == "" || blob == "" {
		return "", "", fmt.Errorf("invalid blob URI (no blob path): %s", uri)
	}
	return container, blob, nil
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}

var _ Store = (*AzureBlob)(nil)
