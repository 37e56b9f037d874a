package memory

import (
	"testing"
	"time"

	"haley-companion-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestFeedCache(t *testing.T) {
	c := NewFeedCache(time.Minute)

	_, found := c.GetPublic()
	assert.False(t, found)

	feed := []*entity.Thumbnail{{Id: 1}, {Id: 2}}
	c.SavePublic(feed)

	got, found := c.GetPublic()
	assert.True(t, found)
	assert.Len(t, got, 2)

	c.Invalidate()
	_, found = c.GetPublic()
	assert.False(t, found)
}

func TestFeedCacheExpires(t *testing.T) {
	c := NewFeedCache(20 * time.Millisecond)
	c.SavePublic([]*entity.Thumbnail{{Id: 1}})

	time.Sleep(40 * time.Millisecond)

	_, found := c.GetPublic()
	assert.False(t, found)
}

func TestNilFeedCacheIsDisabled(t *testing.T) {
	var c *FeedCache
	c.SavePublic([]*entity.Thumbnail{{Id: 1}})
	_, found := c.GetPublic()
	assert.False(t, found)
	c.Invalidate()
}
