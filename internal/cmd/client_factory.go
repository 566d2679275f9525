package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tweetlite/tweetlite/internal/api"
	"github.com/tweetlite/tweetlite/internal/cache"
	"github.com/tweetlite/tweetlite/internal/config"
)

type clientFactory struct {
	timeout   time.Duration
	userAgent string
	overrides config.Overrides
	settings  config.Settings
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout:   flags.Timeout,
		userAgent: fmt.Sprintf("tweetlite/%s", version),
		overrides: config.Overrides{
			Profile:   flags.Profile,
			Subdomain: flags.Subdomain,
			Version:   flags.APIVersion,
			BaseURL:   flags.BaseURL,
		},
		settings: settings,
	}
}

// getClient creates an API client from the resolved credentials
func getClient() (*api.Client, error) {
	client, _, err := newClientFactory().client()
	return client, err
}

func (f *clientFactory) client() (*api.Client, config.Resolved, error) {
	resolved, err := config.Resolve(f.overrides, f.settings)
	if err != nil {
		return nil, resolved, err
	}
	return f.newClient(resolved), resolved, nil
}

// offlineClient resolves the endpoint without requiring credentials. It is
// for commands that never send a request.
func (f *clientFactory) offlineClient() (*api.Client, error) {
	resolved, err := config.Resolve(f.overrides, f.settings)
	if err != nil && !errors.Is(err, config.ErrNotConfigured) {
		return nil, err
	}
	return f.newClient(resolved), nil
}

func (f *clientFactory) newClient(r config.Resolved) *api.Client {
	opts := []api.Option{api.WithUserAgent(f.userAgent)}
	timeout := f.timeout
	if timeout <= 0 {
		timeout = r.Timeout
	}
	if timeout > 0 {
		opts = append(opts, api.WithTimeout(timeout))
	}
	if r.BaseURL != "" {
		opts = append(opts, api.WithBaseURL(r.BaseURL))
	}
	return api.New(r.API, opts...)
}

// responseCache returns the store for --cache, or nil when caching is off.
// A redis address in the settings selects the shared store; otherwise
// bodies go to the file cache.
func responseCache(enabled bool) (cache.Store, func(), error) {
	noop := func() {}
	if !enabled || config.NoCache() {
		return nil, noop, nil
	}
	ttl := settings.Cache.TTL.Duration
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	if addr := settings.Cache.RedisAddr; addr != "" {
		store := cache.NewRedisStore(addr, settings.Cache.RedisPrefix, ttl)
		return store, func() { _ = store.Close() }, nil
	}
	dir, err := resolveCacheDir()
	if err != nil {
		return nil, noop, err
	}
	return cache.NewFileStore(dir, ttl), noop, nil
}

func resolveCacheDir() (string, error) {
	if dir := os.Getenv(cache.EnvDir); dir != "" {
		return dir, nil
	}
	if settings.Cache.Dir != "" {
		return settings.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// cachedGet serves a GET from store when possible and stores successful
// payloads. Rejections are never cached.
func cachedGet(ctx context.Context, client *api.Client, store cache.Store, path string, params api.Params) (*api.Result, error) {
	if store == nil {
		return client.Get(ctx, path, params)
	}
	endpoint, err := client.Endpoint(path, params)
	if err != nil {
		return client.Get(ctx, path, params)
	}
	key := cache.Key("GET", endpoint, client.Config().AccessTokenKey)
	if body, ok := store.Get(ctx, key); ok {
		if result, err := api.ResultFromCache(body); err == nil {
			return result, nil
		}
	}

	result, err := client.Get(ctx, path, params)
	if err != nil || !result.OK() {
		return result, err
	}
	if body, err := result.CacheBody(); err == nil {
		store.Put(ctx, key, body)
	}
	return result, nil
}
