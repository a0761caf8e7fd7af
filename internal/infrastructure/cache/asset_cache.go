package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"3tcapital/ms_service_documents/internal/core/document"
)

// AssetCache keeps prepared images in memory with a TTL.
type AssetCache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// NewAssetCache creates a cache whose entries live for ttl. A ttl of zero
// or less keeps entries for an hour.
func NewAssetCache(ttl time.Duration) *AssetCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AssetCache{store: gocache.New(ttl, 2*ttl), ttl: ttl}
}

// Get returns the cached image. Callers must not
// mutate the bytes.
func (c *AssetCache) Get(key string) (*document.Image, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	img, ok := v.(*document.Image)
	return img, ok
}

// Set stores the image under key with the default TTL.
func (c *AssetCache) Set(key string, img *document.Image) {
	c.store.Set(key, img, gocache.DefaultExpiration)
}

// Invalidate drops a single entry.
func (c *AssetCache) Invalidate(key string) {
	c.store.Delete(key)
}

// Len returns the number of live entries.
func (c *AssetCache) Len() int {
	return c.store.ItemCount()
}
