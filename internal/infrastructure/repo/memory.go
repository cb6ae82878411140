package repo

import (
	"sort"
	"sync"

	"storefront-backend/internal/domain"
)

type MemoryCatalogRepo struct {
	mu       sync.RWMutex
	items    map[domain.ItemID]*domain.MenuItem
	order    []domain.ItemID
	settings *domain.Settings
}

func NewMemoryCatalogRepo() *MemoryCatalogRepo {
	return &MemoryCatalogRepo{items: make(map[domain.ItemID]*domain.MenuItem)}
}

func (r *MemoryCatalogRepo) ListMenu() ([]domain.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.MenuItem, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.items[id])
	}
	return out, nil
}

func (r *MemoryCatalogRepo) GetMenuItem(id domain.ItemID) (*domain.MenuItem, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	if !ok {
		return nil, false, nil
	}
	cp := *it
	return &cp, true, nil
}

func (r *MemoryCatalogRepo) PutMenuItem(it *domain.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[it.ID]; !ok {
		r.order = append(r.order, it.ID)
	}
	cp := *it
	r.items[it.ID] = &cp
	return nil
}

func (r *MemoryCatalogRepo) DeleteMenuItem(id domain.ItemID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (r *MemoryCatalogRepo) GetSettings() (*domain.Settings, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.settings == nil {
		return nil, false, nil
	}
	cp := *r.settings
	return &cp, true, nil
}

func (r *MemoryCatalogRepo) PutSettings(s *domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.settings = &cp
	return nil
}

type MemoryArchiveRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.ArchivedOrder
}

func NewMemoryArchiveRepo() *MemoryArchiveRepo {
	return &MemoryArchiveRepo{m: make(map[string]*domain.ArchivedOrder)}
}

func (r *MemoryArchiveRepo) PutArchived(o *domain.ArchivedOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.m[o.ID] = &cp
	return nil
}

// ListArchived pages through orders newest first.
func (r *MemoryArchiveRepo) ListArchived(page, pageSize int) ([]domain.ArchivedOrder, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]domain.ArchivedOrder, 0, len(r.m))
	for _, o := range r.m {
		all = append(all, *o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
	total := len(all)
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}
