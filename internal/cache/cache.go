// Package cache is the key-value cache boundary for derived strings
// (announcements, featured speakers). A Redis-backed implementation covers
// deployments; an in-process implementation covers development and tests.
package cache

import "context"

// Keys under which the derived cache builders publish.
const (
	AnnouncementsKey   = "RECENT_ANNOUNCEMENTS"
	FeaturedSpeakerKey = "FEATURED_SPEAKER"
)

// Cache is a minimal string key-value store. Get returns "" (no error) when
// the key is absent.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
