package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"resty.dev/v3"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
)

// ErrUpstream marks failures of the remote sales API.
var ErrUpstream = errors.New("sales API request failed")

// Query selects the records the sales API returns.
type Query struct {
	// Region is the lower-case region name; empty means the whole country.
	Region string
	// Year is the purchase year; 0 means every year.
	Year int
}

func (q Query) params() map[string]string {
	year := ""
	if q.Year != 0 {
		year = strconv.Itoa(q.Year)
	}
	return map[string]string{
		"regiao": q.Region,
		"ano":    year,
	}
}

func (q Query) key() string {
	return q.Region + "|" + strconv.Itoa(q.Year)
}

type cacheEntry struct {
	sales     []models.Sale
	expiresAt time.Time
}

type Client struct {
	http   *resty.Client
	url    string
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group

	mu    sync.Mutex
	cache map[string]cacheEntry

	fetches      atomic.Int64
	cacheHits    atomic.Int64
	failures     atomic.Int64
	lastDuration atomic.Int64
	lastRecords  atomic.Int64
}

func NewClient(cfg config.SourceConfig, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		url:    cfg.URL,
		ttl:    cfg.CacheTTL,
		logger: logger,
		cache:  make(map[string]cacheEntry),
	}
}

// Fetch returns the sales matching q. Results are served from the cache while
// fresh, and concurrent calls for the same query share one request. A caller
// whose ctx ends returns early without failing the others.
func (c *Client) Fetch(ctx context.Context, q Query) ([]models.Sale, error) {
	key := q.key()

	if sales, ok := c.cached(key); ok {
		c.cacheHits.Add(1)
		return sales, nil
	}

	// The shared request outlives any single caller; the client timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		sales, err := c.fetch(fetchCtx, q)
		if err != nil {
			return nil, err
		}
		c.store(key, sales)
		return sales, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("shared in-flight sales request", "region", q.Region, "year", q.Year)
		}
		return res.Val.([]models.Sale), nil
	}
}

func (c *Client) fetch(ctx context.Context, q Query) ([]models.Sale, error) {
	start := time.Now()
	c.fetches.Add(1)

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(q.params()).
		Get(c.url)
	if err != nil {
		c.failures.Add(1)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if res.IsError() {
		c.failures.Add(1)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, res.StatusCode())
	}

	var sales []models.Sale
	if err := json.Unmarshal(res.Bytes(), &sales); err != nil {
		c.failures.Add(1)
		return nil, fmt.Errorf("%w: decode response: %w", ErrUpstream, err)
	}

	duration := time.Since(start)
	c.lastDuration.Store(int64(duration))
	c.lastRecords.Store(int64(len(sales)))

	c.logger.Info("fetched sales",
		"region", q.Region,
		"year", q.Year,
		"records", len(sales),
		"duration", duration,
	)

	return sales, nil
}

func (c *Client) cached(key string) ([]models.Sale, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.cache, key)
		return nil, false
	}
	return entry.sales, true
}

func (c *Client) store(key string, sales []models.Sale) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{sales: sales, expiresAt: time.Now().Add(c.ttl)}
}

func (c *Client) Close() error {
	return c.http.Close()
}

func (c *Client) Stats() map[string]any {
	c.mu.Lock()
	cached := len(c.cache)
	c.mu.Unlock()

	return map[string]any{
		"fetches":            c.fetches.Load(),
		"cache_hits":         c.cacheHits.Load(),
		"failures":           c.failures.Load(),
		"cached_queries":     cached,
		"last_fetch_records": c.lastRecords.Load(),
		"last_fetch_time":    time.Duration(c.lastDuration.Load()).String(),
	}
}
