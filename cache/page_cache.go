package page_cache

import (
	"sync"
	"time"

	"github.com/Emberline-Outdoor/emberline-search-backend/models"
)

const TTL = 5 * time.Minute

// ── Page context cache ───────────────────────────────────────────────────────
// Hot page handles resolve on every storefront request; this sits in front of
// Redis and Postgres so the common case is a map read.

type pageEntry struct {
	ctx       models.PageContext
	fetchedAt time.Time
}

var (
	pageMu    sync.RWMutex
	pageCache = map[string]pageEntry{}
)

func Get(handle string) (models.PageContext, bool) {
	pageMu.RLock()
	defer pageMu.RUnlock()
	if entry, ok := pageCache[handle]; ok && time.Since(entry.fetchedAt) < TTL {
		return entry.ctx, true
	}
	return models.PageContext{}, false
}

func Set(handle string, ctx models.PageContext) {
	pageMu.Lock()
	defer pageMu.Unlock()
	pageCache[handle] = pageEntry{ctx: ctx, fetchedAt: time.Now()}
}

// ── Invalidate everything (call on any page create/update/delete) ────────────

func Invalidate() {
	pageMu.Lock()
	pageCache = map[string]pageEntry{}
	pageMu.Unlock()
}
