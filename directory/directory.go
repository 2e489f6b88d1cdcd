package directory

import (
	"context"
	"fmt"

	"coachtui/coachapi"
	"coachtui/config"
)

const coachesKey = "coaches"

// DirectoryLoadError means the coach list could not be fetched. The UI shows
// it in place of the whole panel.
type DirectoryLoadError struct {
	Err error
}

func (e *DirectoryLoadError) Error() string {
	return fmt.Sprintf("failed to load coaches: %v", e.Err)
}

func (e *DirectoryLoadError) Unwrap() error {
	return e.Err
}

type lister interface {
	ListCoaches(ctx context.Context) ([]coachapi.Coach, error)
}

// Directory serves the coach list once per session.
type Directory struct {
	api   lister
	cache *Cache[[]coachapi.Coach]
}

func New(api lister) *Directory {
	return &Directory{
		api:   api,
		cache: NewCache[[]coachapi.Coach](),
	}
}

// Coaches returns the full directory, or a DirectoryLoadError. It never
// returns a partial list.
func (d *Directory) Coaches(ctx context.Context) ([]coachapi.Coach, error) {
	coaches, err := d.cache.Get(ctx, coachesKey, d.api.ListCoaches)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Directory] load failed: %v", err)
		}
		return nil, &DirectoryLoadError{Err: err}
	}

	out := make([]coachapi.Coach, len(coaches))
	copy(out, coaches)
	return out, nil
}

// Refresh drops the cached list.
func (d *Directory) Refresh() {
	d.cache.Invalidate(coachesKey)
}

// Find returns the coach with id from coaches.
func Find(coaches []coachapi.Coach, id string) (coachapi.Coach, bool) {
	for _, c := range coaches {
		if c.ID == id {
			return c, true
		}
	}
	return coachapi.Coach{}, false
}
