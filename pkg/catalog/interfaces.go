package catalog

import "context"

// Repository defines the interface for storage service persistence
type Repository interface {
	// CreateStorageService stores a new entity. It returns ErrStorageServiceExists
	// when the id or the name is already taken.
	CreateStorageService(ctx context.Context, svc *StorageService) error

	// GetStorageService returns ErrStorageServiceNotFound for an unknown id.
	GetStorageService(ctx context.Context, id string) (*StorageService, error)

	// GetStorageServiceByName returns ErrStorageServiceNotFound for an unknown name.
	GetStorageServiceByName(ctx context.Context, name string) (*StorageService, error)

	// UpdateStorageService replaces the stored entity with the same id, but
	// only while its stored version still equals expectedVersion (an entity
	// without a version counts as 0). Otherwise it returns
	// ErrStorageServiceConflict and stores nothing.
	UpdateStorageService(ctx context.Context, svc *StorageService, expectedVersion float64) error

	// DeleteStorageService removes the entity with the given id.
	DeleteStorageService(ctx context.Context, id string) error

	// ListStorageServices returns entities ordered by name. A non-empty name
	// restricts the result to that name.
	ListStorageServices(ctx context.Context, name string) ([]*StorageService, error)
}

// Service defines the storage service registry operations
type Service interface {
	CreateStorageService(ctx context.Context, req CreateStorageServiceRequest) (*StorageService, error)
	GetStorageService(ctx context.Context, id string) (*StorageService, error)
	GetStorageServiceByName(ctx context.Context, name string) (*StorageService, error)
	ListStorageServices(ctx context.Context, name string) ([]*StorageService, error)
	UpdateStorageService(ctx context.Context, id string, req UpdateStorageServiceRequest) (*StorageService, error)
	DeleteStorageService(ctx context.Context, id string) error
}

// EventSink receives storage service lifecycle events
type EventSink interface {
	// StorageServiceCreated is fired when a storage service is registered
	StorageServiceCreated(ctx context.Context, svc *StorageService) error

	// StorageServiceUpdated is fired when a new version is stored
	StorageServiceUpdated(ctx context.Context, svc *StorageService) error

	// StorageServiceDeleted is fired when a storage service is removed
	StorageServiceDeleted(ctx context.Context, id string) error
}
