// Package backends opens the configured unit store.
package backends

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store/azblob"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store/bolt"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store/clickhouse"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store/leveldb"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store/memory"
	"github.com/goodnatureofminers/btcgraph/internal/metrics"
	"go.uber.org/zap"
)

const (
	Memory     = "memory"
	Bolt       = "bolt"
	LevelDB    = "leveldb"
	ClickHouse = "clickhouse"
	AzBlob     = "azblob"
)

// Config is embedded as a flag group by the binaries.
type Config struct {
	Backend        string `long:"store" env:"GRAPH_STORE" description:"unit store backend" choice:"memory" choice:"bolt" choice:"leveldb" choice:"clickhouse" choice:"azblob" default:"bolt"`
	Path           string `long:"store-path" env:"GRAPH_STORE_PATH" description:"database path for the bolt and leveldb stores" default:"graph.db"`
	ClickhouseDSN  string `long:"clickhouse-dsn" env:"GRAPH_CLICKHOUSE_DSN" description:"ClickHouse DSN"`
	AzureConnStr   string `long:"azure-connection-string" env:"GRAPH_AZURE_CONNECTION_STRING" description:"Azure storage connection string"`
	AzureContainer string `long:"azure-container" env:"GRAPH_AZURE_CONTAINER" description:"Azure blob container" default:"btcgraph"`
	CacheSize      int    `long:"cache-size" env:"GRAPH_CACHE_SIZE" description:"number of units kept in the read cache, 0 disables it" default:"0"`
}

// Open returns the backend named by cfg with store metrics attached. ClickHouse records its
// own metrics; every other backend is wrapped in store.Observed.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (store.Backend, error) {
	var (
		backend store.Backend
		err     error
	)
	observe := true
	switch cfg.Backend {
	case Memory:
		backend = memory.New()
	case Bolt:
		backend, err = bolt.Open(cfg.Path)
	case LevelDB:
		backend, err = leveldb.Open(cfg.Path, logger)
	case ClickHouse:
		if cfg.ClickhouseDSN == "" {
			return nil, errors.New("clickhouse store requires a dsn")
		}
		backend, err = clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewStore(ClickHouse))
		observe = false
	case AzBlob:
		if cfg.AzureConnStr == "" {
			return nil, errors.New("azblob store requires a connection string")
		}
		backend, err = azblob.Open(ctx, cfg.AzureConnStr, cfg.AzureContainer)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	if observe {
		backend = store.NewObserved(backend, metrics.NewStore(cfg.Backend))
	}
	cached, err := withCache(backend, cfg.CacheSize)
	if err != nil {
		return nil, errors.Join(err, backend.Close())
	}
	logger.Info("opened unit store", zap.String("backend", cfg.Backend), zap.Int("cache_size", cfg.CacheSize))
	return cached, nil
}

// cachedBackend serves unit reads from a cache and everything else from the backend.
type cachedBackend struct {
	*store.Cached
	store.Roots
	io.Closer
	batch store.Store
}

func withCache(backend store.Backend, size int) (store.Backend, error) {
	if size <= 0 {
		return backend, nil
	}
	cached, err := store.NewCached(backend, size)
	if err != nil {
		return nil, err
	}
	return &cachedBackend{
		Cached: cached,
		Roots:  backend,
		Closer: backend,
		batch:  backend,
	}, nil
}

// PutUnits keeps the backend's batch path available behind the cache.
func (c *cachedBackend) PutUnits(ctx context.Context, units []codec.Unit) error {
	return store.PutUnits(ctx, c.batch, units)
}
