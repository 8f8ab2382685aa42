// Package azblob stores graph units as blobs in an Azure Storage container.
//
// Units live under units/<cid>, roots under roots/<height>, and roots/last holds the highest
// recorded height.
package azblob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	azStorageBlob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store"
	"github.com/ipfs/go-cid"
)

const (
	unitsPrefix = "units/"
	rootsPrefix = "roots/"
	lastRoot    = rootsPrefix + "last"
)

type Store struct {
	blobs Blobs
	// serialises the roots/last read-modify-write
	mu sync.Mutex
}

func New(blobs Blobs) *Store {
	return &Store{blobs: blobs}
}

// Open connects with a storage connection string and creates the container when missing.
func Open(ctx context.Context, connectionString, container string) (*Store, error) {
	if connectionString == "" || container == "" {
		return nil, errors.New("azblob connection string and container are required")
	}
	client, err := azStorageBlob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create azblob client: %w", err)
	}
	if _, err := client.CreateContainer(ctx, container, nil); err != nil &&
		!bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("create container %s: %w", container, err)
	}
	return New(containerBlobs{client: client, container: container}), nil
}

func (s *Store) Put(ctx context.Context, c cid.Cid, data []byte) error {
	if err := s.blobs.Upload(ctx, unitName(c), data); err != nil {
		return fmt.Errorf("upload unit %s: %w", c, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, c cid.Cid) ([]byte, error) {
	data, err := s.download(ctx, unitName(c))
	if err != nil {
		return nil, fmt.Errorf("unit %s: %w", c, err)
	}
	return data, nil
}

func (s *Store) PutRoot(ctx context.Context, height uint64, root cid.Cid) error {
	if err := s.blobs.Upload(ctx, rootName(height), []byte(root.String())); err != nil {
		return fmt.Errorf("upload root at height %d: %w", height, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok, err := s.lastHeight(ctx)
	if err != nil {
		return err
	}
	if ok && last >= height {
		return nil
	}
	if err := s.blobs.Upload(ctx, lastRoot, []byte(strconv.FormatUint(height, 10))); err != nil {
		return fmt.Errorf("upload last height: %w", err)
	}
	return nil
}

func (s *Store) Root(ctx context.Context, height uint64) (cid.Cid, error) {
	data, err := s.download(ctx, rootName(height))
	if err != nil {
		return cid.Undef, fmt.Errorf("root at height %d: %w", height, err)
	}
	root, err := cid.Decode(string(data))
	if err != nil {
		return cid.Undef, fmt.Errorf("decode root at height %d: %w", height, err)
	}
	return root, nil
}

func (s *Store) LastHeight(ctx context.Context) (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHeight(ctx)
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) lastHeight(ctx context.Context) (uint64, bool, error) {
	data, err := s.download(ctx, lastRoot)
	if errors.Is(err, store.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("last height: %w", err)
	}
	height, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse last height %q: %w", data, err)
	}
	return height, true, nil
}

func (s *Store) download(ctx context.Context, name string) ([]byte, error) {
	data, err := s.blobs.Download(ctx, name)
	if IsBlobNotFound(err) {
		return nil, fmt.Errorf("blob %s: %w", name, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	return data, nil
}

// IsBlobNotFound reports whether err is the storage service's missing blob or container error.
func IsBlobNotFound(err error) bool {
	if err == nil {
		return false
	}
	return bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound)
}

func unitName(c cid.Cid) string {
	return unitsPrefix + c.String()
}

// rootName pads heights so blob listings sort numerically.
func rootName(height uint64) string {
	return fmt.Sprintf("%s%020d", rootsPrefix, height)
}

type containerBlobs struct {
	client    *azStorageBlob.Client
	container string
}

func (b containerBlobs) Upload(ctx context.Context, name string, data []byte) error {
	_, err := b.client.UploadBuffer(ctx, b.container, name, data, nil)
	return err
}

func (b containerBlobs) Download(ctx context.Context, name string) ([]byte, error) {
	resp, err := b.client.DownloadStream(ctx, b.container, name, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return io.ReadAll(resp.Body)
}
