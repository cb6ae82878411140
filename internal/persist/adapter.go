// Package persist stores JSON records for a single shopper session.
//
// Storage is best effort: when no store is configured every call is a no-op,
// and anything unreadable comes back as "absent" rather than as an error.
package persist

import (
	"context"
	"encoding/json"
	"log/slog"
)

const (
	OrderKey = "burger-order-state"
	CartKey  = "burger-cart"
)

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type Adapter struct {
	store Store
	scope string
	log   *slog.Logger
}

// New returns an adapter whose keys are prefixed with scope. store may be nil.
func New(store Store, scope string, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{store: store, scope: scope, log: log}
}

func (a *Adapter) Available() bool {
	return a != nil && a.store != nil
}

func (a *Adapter) key(k string) string {
	if a.scope == "" {
		return k
	}
	return a.scope + ":" + k
}

func (a *Adapter) Save(ctx context.Context, key string, v any) {
	if !a.Available() {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		a.log.WarnContext(ctx, "persist: encode failed", "key", key, "error", err)
		return
	}
	if err := a.store.Set(ctx, a.key(key), string(raw)); err != nil {
		a.log.WarnContext(ctx, "persist: write failed", "key", key, "error", err)
	}
}

// Load decodes the record under key into dst and reports whether it did.
func (a *Adapter) Load(ctx context.Context, key string, dst any) bool {
	if !a.Available() {
		return false
	}
	raw, ok, err := a.store.Get(ctx, a.key(key))
	if err != nil {
		a.log.WarnContext(ctx, "persist: read failed", "key", key, "error", err)
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		a.log.WarnContext(ctx, "persist: malformed record", "key", key, "error", err)
		return false
	}
	return true
}

func (a *Adapter) Clear(ctx context.Context, key string) {
	if !a.Available() {
		return
	}
	if err := a.store.Delete(ctx, a.key(key)); err != nil {
		a.log.WarnContext(ctx, "persist: delete failed", "key", key, "error", err)
	}
}
