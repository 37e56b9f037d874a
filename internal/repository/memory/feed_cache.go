package memory

import (
	"time"

	"haley-companion-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

const publicFeedKey = "thumbnails:public"

// FeedCache keeps the public thumbnail feed for a short TTL. Any write that
// can change the feed calls Invalidate.
type FeedCache struct {
	cache *cache.Cache
}

func NewFeedCache(ttl time.Duration) *FeedCache {
	return &FeedCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *FeedCache) SavePublic(thumbnails []*entity.Thumbnail) {
	if c == nil {
		return
	}
	c.cache.Set(publicFeedKey, thumbnails, cache.DefaultExpiration)
}

func (c *FeedCache) GetPublic() ([]*entity.Thumbnail, bool) {
	if c == nil {
		return nil, false
	}
	if x, found := c.cache.Get(publicFeedKey); found {
		return x.([]*entity.Thumbnail), true
	}
	return nil, false
}

func (c *FeedCache) Invalidate() {
	if c == nil {
		return
	}
	c.cache.Delete(publicFeedKey)
}
