// Package cache provides an optional Redis-backed cache for forecast
// responses. The service runs fine without it; every cache error is
// swallowed after logging so a sick Redis never fails a request.
package cache

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Salvero/ecopulse-dashboard/internal/data"
)

const forecastKeyPrefix = "forecast:"

// ForecastCache stores recent forecast responses keyed by sensor id
// plus a hash of the submitted window.
type ForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewForecastCache connects to Redis and verifies the connection.
func NewForecastCache(addr, password string, db int, ttl time.Duration) (*ForecastCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &ForecastCache{client: client, ttl: ttl}, nil
}

// Get looks up a cached response. ok is false on miss or any error.
func (c *ForecastCache) Get(ctx context.Context, req *data.PredictionRequest) (data.PredictionResponse, bool) {
	var resp data.PredictionResponse
	raw, err := c.client.Get(ctx, key(req)).Bytes()
	if err != nil {
		return resp, false
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return resp, false
	}
	return resp, true
}

// Set stores a response under the request's key with the cache TTL.
func (c *ForecastCache) Set(ctx context.Context, req *data.PredictionRequest, resp data.PredictionResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast: %w", err)
	}
	return c.client.Set(ctx, key(req), raw, c.ttl).Err()
}

// Ping reports whether Redis is reachable.
func (c *ForecastCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *ForecastCache) Close() error {
	return c.client.Close()
}

func key(req *data.PredictionRequest) string {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range req.RecentUsage {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return fmt.Sprintf("%s%s:%x", forecastKeyPrefix, req.SensorID, h.Sum64())
}
