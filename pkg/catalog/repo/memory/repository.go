package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tendant/storage-catalog/pkg/catalog"
)

// Repository is an in-memory implementation of catalog.Repository
type Repository struct {
	mu       sync.RWMutex
	services map[string]*catalog.StorageService
}

// New creates a new in-memory repository
func New() catalog.Repository {
	return &Repository{
		services: make(map[string]*catalog.StorageService),
	}
}

// CreateStorageService adds a new storage service to the repository
func (r *Repository) CreateStorageService(ctx context.Context, svc *catalog.StorageService) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[svc.ID]; exists {
		return catalog.ErrStorageServiceExists
	}

	// Check for duplicate name
	for _, s := range r.services {
		if s.Name == svc.Name {
			return catalog.ErrStorageServiceExists
		}
	}

	r.services[svc.ID] = svc.Clone()
	return nil
}

// GetStorageService retrieves a storage service by ID
func (r *Repository) GetStorageService(ctx context.Context, id string) (*catalog.StorageService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, exists := r.services[id]
	if !exists {
		return nil, catalog.ErrStorageServiceNotFound
	}

	return svc.Clone(), nil
}

// GetStorageServiceByName retrieves a storage service by name
func (r *Repository) GetStorageServiceByName(ctx context.Context, name string) (*catalog.StorageService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, svc := range r.services {
		if svc.Name == name {
			return svc.Clone(), nil
		}
	}

	return nil, catalog.ErrStorageServiceNotFound
}

// UpdateStorageService replaces an existing storage service if its stored
// version is still expectedVersion
func (r *Repository) UpdateStorageService(ctx context.Context, svc *catalog.StorageService, expectedVersion float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.services[svc.ID]
	if !exists {
		return catalog.ErrStorageServiceNotFound
	}
	if current.CurrentVersion() != expectedVersion {
		return catalog.ErrStorageServiceConflict
	}

	// Check for duplicate name
	for id, s := range r.services {
		if s.Name == svc.Name && id != svc.ID {
			return catalog.ErrStorageServiceExists
		}
	}

	r.services[svc.ID] = svc.Clone()
	return nil
}

// DeleteStorageService removes a storage service by ID
func (r *Repository) DeleteStorageService(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[id]; !exists {
		return catalog.ErrStorageServiceNotFound
	}

	delete(r.services, id)
	return nil
}

// ListStorageServices retrieves storage services ordered by name
func (r *Repository) ListStorageServices(ctx context.Context, name string) ([]*catalog.StorageService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*catalog.StorageService
	for _, svc := range r.services {
		if name != "" && svc.Name != name {
			continue
		}
		result = append(result, svc.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}
