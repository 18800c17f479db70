package valkey

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/fleetspot/internal/core/ports"
)

// Cache implements ports.PositionCache on Valkey. Values are stored as
// binary strings so JSON and raw payloads round-trip unchanged.
type Cache struct {
	client valkey.Client
}

// New connects to the Valkey server at addr.
func New(addr string) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:      []string{addr},
		ClientName:       "fleetspot",
		ConnWriteTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect %s: %w", addr, err)
	}
	return &Cache{client: client}, nil
}

// Get returns the value at key, or ports.ErrCacheMiss when it is absent.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return b, nil
}

// Set stores value at key. ttlSeconds <= 0 keeps the key until deleted.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	set := c.client.B().Set().Key(key).Value(valkey.BinaryString(value))
	var err error
	if ttlSeconds > 0 {
		err = c.client.Do(ctx, set.Ex(time.Duration(ttlSeconds)*time.Second).Build()).Error()
	} else {
		err = c.client.Do(ctx, set.Build()).Error()
	}
	if err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

// setIfNewer writes KEYS[1] and its version KEYS[2] unless the stored
// version sorts after ARGV[2]. Both keys share a hash tag.
var setIfNewer = valkey.NewLuaScript(`
local cur = redis.call('GET', KEYS[2])
if cur and cur > ARGV[2] then
	return 0
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'EX', ttl)
	redis.call('SET', KEYS[2], ARGV[2], 'EX', ttl)
else
	redis.call('SET', KEYS[1], ARGV[1])
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// SetIfNewer stores value at key unless a greater version is already
// recorded. The check and the write run as one script on the server.
func (c *Cache) SetIfNewer(ctx context.Context, key string, value []byte, version string, ttlSeconds int) (bool, error) {
	n, err := setIfNewer.Exec(ctx, c.client,
		[]string{key, key + ":version"},
		[]string{valkey.BinaryString(value), version, strconv.Itoa(ttlSeconds)},
	).AsInt64()
	if err != nil {
		return false, fmt.Errorf("valkey set-if-newer %s: %w", key, err)
	}
	return n == 1, nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Do(ctx, c.client.B().Del().Key(key).Build()).Error()
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

func (c *Cache) Close() {
	c.client.Close()
}
