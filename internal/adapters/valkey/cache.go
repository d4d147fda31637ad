package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

const scanBatch = 500

// Cache implements ports.CacheService using Valkey (Redis-compatible).
// All keys are namespaced with a prefix so several deployments can share
// one server.
type Cache struct {
	client valkey.Client
	prefix string
}

// New creates a new Valkey cache client.
func New(addr, prefix string) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Cache{client: client, prefix: prefix}, nil
}

// Get retrieves a value by key. A missing key returns an error that
// satisfies valkey.IsValkeyNil.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := c.client.Do(ctx, c.client.B().Get().Key(c.key(key)).Build())
	return cmd.AsBytes()
}

// Set stores a value with a TTL in seconds.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	cmd := c.client.Do(ctx,
		c.client.B().Set().Key(c.key(key)).Value(valkey.BinaryString(value)).Ex(time.Duration(ttlSeconds)*time.Second).Build(),
	)
	return cmd.Error()
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	cmd := c.client.Do(ctx, c.client.B().Del().Key(c.key(key)).Build())
	return cmd.Error()
}

// DeletePrefix removes every key starting with prefix. It walks the
// keyspace with SCAN, so it does not block the server on large databases.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		entry, err := c.client.Do(ctx,
			c.client.B().Scan().Cursor(cursor).Match(c.key(prefix)+"*").Count(scanBatch).Build(),
		).AsScanEntry()
		if err != nil {
			return fmt.Errorf("scan %s: %w", prefix, err)
		}
		if len(entry.Elements) > 0 {
			if err := c.client.Do(ctx, c.client.B().Del().Key(entry.Elements...).Build()).Error(); err != nil {
				return fmt.Errorf("delete %s: %w", prefix, err)
			}
		}
		if entry.Cursor == 0 {
			return nil
		}
		cursor = entry.Cursor
	}
}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}

func (c *Cache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}
