package pubsite

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eringen/pubsite/posts"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = errors.New("pubsite: not found")

type cacheEntry struct {
	posts   []posts.Post
	tags    posts.TagSet
	fetched time.Time
}

// PostCache is an in-memory, per-locale cache of indexed posts and tags with TTL.
type PostCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	store   *Store
	now     func() time.Time
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl, entries: make(map[string]cacheEntry), now: time.Now}
}

func (c *PostCache) valid(e cacheEntry, ok bool) bool {
	return ok && c.now().Sub(e.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// ensureLoaded returns the cached entry of a locale after ensuring it is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded(ctx context.Context, locale string) (cacheEntry, error) {
	c.mu.RLock()
	e, ok := c.entries[locale]
	if c.valid(e, ok) {
		c.mu.RUnlock()
		return e, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[locale]; c.valid(e, ok) {
		return e, nil
	}
	list, err := c.store.ListPosts(ctx, locale, "")
	if err != nil {
		return cacheEntry{}, err
	}
	e = cacheEntry{posts: list, tags: posts.Vocabulary(list), fetched: c.now()}
	c.entries[locale] = e
	return e, nil
}

// ListPosts returns the posts of a locale carrying any of tags, at most limit
// of them. No tags means every post; posts.NoLimit means no limit.
func (c *PostCache) ListPosts(ctx context.Context, locale string, tags []string, limit int) ([]posts.Post, error) {
	e, err := c.ensureLoaded(ctx, locale)
	if err != nil {
		return nil, err
	}
	return posts.Filter(e.posts, tags, limit), nil
}

// ListTags returns the tag vocabulary of a locale.
func (c *PostCache) ListTags(ctx context.Context, locale string) (posts.TagSet, error) {
	e, err := c.ensureLoaded(ctx, locale)
	return e.tags, err
}

// GetPost returns a single post by URL from the cache.
func (c *PostCache) GetPost(ctx context.Context, locale, url string) (posts.Post, error) {
	e, err := c.ensureLoaded(ctx, locale)
	if err != nil {
		return posts.Post{}, err
	}
	for _, p := range e.posts {
		if p.URL == url {
			return p, nil
		}
	}
	return posts.Post{}, ErrNotFound
}
