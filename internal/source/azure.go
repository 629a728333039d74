package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// blobStore is the slice of the blob service the Azure source relies on.
type blobStore interface {
	ListBlobs(ctx context.Context, container string) ([]string, error)
	DownloadFile(ctx context.Context, container, name string, f *os.File) error
	DeleteBlob(ctx context.Context, container, name string) error
}

// Azure reads fish images from a blob container.
type Azure struct {
	Container string
	store     blobStore
}

// NewAzure connects to the storage account described by connString.
func NewAzure(connString, container string) (*Azure, error) {
	client, err := azblob.NewClientFromConnectionString(connString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: azure client: %v", ErrUnavailable, err)
	}
	return &Azure{Container: container, store: azblobStore{client}}, nil
}

// Kind reports "azure".
func (a *Azure) Kind() string { return "azure" }

// List returns every blob name in the container.
func (a *Azure) List(ctx context.Context) ([]string, error) {
	names, err := a.store.ListBlobs(ctx, a.Container)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrUnavailable, a.Container, err)
	}
	return names, nil
}

// Fetch downloads each named blob into dest. Each download lands in a temp
// file first so a failed transfer leaves nothing half-written behind.
func (a *Azure) Fetch(ctx context.Context, names []string, dest string) ([]string, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("source: mkdir %s: %w", dest, err)
	}

	var fetched []string
	var errs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := a.download(ctx, name, dest); err != nil {
			logf("azure: skip %s: %v", name, err)
			errs = append(errs, fmt.Errorf("fetch %s: %w", name, err))
			continue
		}
		fetched = append(fetched, name)
	}
	return fetched, errors.Join(errs...)
}

func (a *Azure) download(ctx context.Context, name, dest string) error {
	f, err := os.CreateTemp(dest, ".download-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	err = a.store.DownloadFile(ctx, a.Container, name, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filepath.Join(dest, filepath.Base(name)))
}

// Purge deletes every blob in the container. Deletion continues past
// individual failures.
func (a *Azure) Purge(ctx context.Context) error {
	names, err := a.List(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, name := range names {
		if err := a.store.DeleteBlob(ctx, a.Container, name); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", name, err))
		}
	}
	if len(errs) == 0 {
		logf("azure: purged %d blobs from %s", len(names), a.Container)
	}
	return errors.Join(errs...)
}

// azblobStore adapts the SDK client to blobStore.
type azblobStore struct {
	client *azblob.Client
}

func (s azblobStore) ListBlobs(ctx context.Context, container string) ([]string, error) {
	var names []string
	pager := s.client.NewListBlobsFlatPager(container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	return names, nil
}

func (s azblobStore) DownloadFile(ctx context.Context, container, name string, f *os.File) error {
	_, err := s.client.DownloadFile(ctx, container, name, f, nil)
	return err
}

func (s azblobStore) DeleteBlob(ctx context.Context, container, name string) error {
	_, err := s.client.DeleteBlob(ctx, container, name, nil)
	return err
}
