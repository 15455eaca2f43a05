package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rdhub/rdhub/backend/go-services/internal/resource"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateDOI = errors.New("doi already assigned")
)

// MemoryRepo is the in-memory twin of the Mongo repository, used for unit
// tests and for running the service without a database. It enforces the
// same DOI uniqueness the Mongo index provides.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*resource.Resource
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*resource.Resource)}
}

func (m *MemoryRepo) Create(ctx context.Context, r *resource.Resource) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.State == "" {
		r.State = resource.StateDraft
	}
	if r.DOI != "" && m.holderOf(r.DOI, r.ID) != nil {
		return "", ErrDuplicateDOI
	}
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	m.store[r.ID] = r
	return r.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*resource.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.store[id]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) List(ctx context.Context) ([]*resource.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*resource.Resource, 0, len(m.store))
	for _, r := range m.store {
		out = append(out, r)
	}
	return out, nil
}

func (m *MemoryRepo) Update(ctx context.Context, r *resource.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[r.ID]
	if !ok {
		return ErrNotFound
	}
	// the Mongo repo only $sets doi/slug when non-empty; mirror that so an
	// update without them cannot strip the stored values
	if r.DOI == "" {
		r.DOI = cur.DOI
	}
	if r.Slug == "" {
		r.Slug = cur.Slug
	}
	if r.DOI != "" && m.holderOf(r.DOI, r.ID) != nil {
		return ErrDuplicateDOI
	}
	r.CreatedAt = cur.CreatedAt
	r.UpdatedAt = time.Now().UTC()
	m.store[r.ID] = r
	return nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// FindByDOI returns the resource holding the exact DOI string, skipping
// excludeID, or nil when the DOI is free.
func (m *MemoryRepo) FindByDOI(ctx context.Context, doi string, excludeID string) (*resource.Resource, error) {
	if doi == "" {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.holderOf(doi, excludeID), nil
}

// FindBySlug returns the resource with the given landing-page slug, or nil.
func (m *MemoryRepo) FindBySlug(ctx context.Context, slug string) (*resource.Resource, error) {
	if slug == "" {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.store {
		if r.Slug == slug {
			return r, nil
		}
	}
	return nil, nil
}

// MaxDOI returns the lexicographically highest assigned DOI, "" when no
// resource carries one. Mirrors the Mongo repo's descending string sort.
func (m *MemoryRepo) MaxDOI(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	max := ""
	for _, r := range m.store {
		if r.DOI != "" && r.DOI > max {
			max = r.DOI
		}
	}
	return max, nil
}

// holderOf must be called with the lock held.
func (m *MemoryRepo) holderOf(doi string, excludeID string) *resource.Resource {
	for _, r := range m.store {
		if r.DOI == doi && r.ID != excludeID {
			return r
		}
	}
	return nil
}
