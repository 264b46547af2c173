package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultHrefPrefix is the collection path storage service links point into.
const DefaultHrefPrefix = "/api/v1/services/storageServices"

// HrefBuilder computes the canonical link of a storage service.
type HrefBuilder func(id string) string

// NewHrefBuilder returns a builder joining baseURL and id.
func NewHrefBuilder(baseURL string) HrefBuilder {
	base := strings.TrimRight(baseURL, "/")
	return func(id string) string {
		return base + "/" + id
	}
}

// service implements the Service interface
type service struct {
	repository Repository
	eventSink  EventSink
	href       HrefBuilder
	now        func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithHrefBuilder overrides how entity links are computed
func WithHrefBuilder(builder HrefBuilder) Option {
	return func(s *service) {
		s.href = builder
	}
}

// WithClock sets the time source used for updatedAt
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		href: NewHrefBuilder(DefaultHrefPrefix),
		now:  time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}

	return s, nil
}

func (s *service) CreateStorageService(ctx context.Context, req CreateStorageServiceRequest) (*StorageService, error) {
	if _, err := ParseStorageServiceType(string(req.ServiceType)); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	svc := &StorageService{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		DisplayName: nonEmpty(req.DisplayName),
		Description: nonEmpty(req.Description),
		ServiceType: req.ServiceType,
		Href:        s.href(id),
		Version:     ptr(InitialVersion),
		UpdatedAt:   ptr(s.now().UTC()),
		UpdatedBy:   nonEmpty(&req.UpdatedBy),
	}
	if err := svc.Validate(); err != nil {
		return nil, err
	}

	if err := s.repository.CreateStorageService(ctx, svc); err != nil {
		return nil, &StorageServiceError{ID: svc.Name, Op: "create", Err: err}
	}

	if err := s.eventSink.StorageServiceCreated(ctx, svc); err != nil {
		slog.Warn("Failed to publish storage service event", "id", svc.ID, "event", "created", "err", err)
	}

	return svc, nil
}

func (s *service) GetStorageService(ctx context.Context, id string) (*StorageService, error) {
	return s.repository.GetStorageService(ctx, id)
}

func (s *service) GetStorageServiceByName(ctx context.Context, name string) (*StorageService, error) {
	return s.repository.GetStorageServiceByName(ctx, name)
}

func (s *service) ListStorageServices(ctx context.Context, name string) ([]*StorageService, error) {
	return s.repository.ListStorageServices(ctx, name)
}

// UpdateStorageService applies the mutable fields of req. Only displayName
// and description can change; name, serviceType and href never do. The
// write is conditional on the version that was read, so a concurrent update
// fails with ErrStorageServiceConflict instead of being overwritten.
func (s *service) UpdateStorageService(ctx context.Context, id string, req UpdateStorageServiceRequest) (*StorageService, error) {
	current, err := s.repository.GetStorageService(ctx, id)
	if err != nil {
		return nil, err
	}

	base := current.CurrentVersion()

	updated := *current
	change := &ChangeDescription{PreviousVersion: ptr(base)}
	if updated.DisplayName, err = recordChange(change, "displayName", current.DisplayName, req.DisplayName); err != nil {
		return nil, err
	}
	if updated.Description, err = recordChange(change, "description", current.Description, req.Description); err != nil {
		return nil, err
	}

	if change.IsEmpty() {
		// Nothing to store; the returned representation describes a no-op.
		updated.Version = ptr(base)
		updated.ChangeDescription = change
		return &updated, nil
	}

	updated.Version = ptr(nextMinorVersion(base))
	updated.UpdatedAt = ptr(s.now().UTC())
	updated.UpdatedBy = nonEmpty(&req.UpdatedBy)
	updated.ChangeDescription = change
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.repository.UpdateStorageService(ctx, &updated, base); err != nil {
		return nil, &StorageServiceError{ID: id, Op: "update", Err: err}
	}

	if err := s.eventSink.StorageServiceUpdated(ctx, &updated); err != nil {
		slog.Warn("Failed to publish storage service event", "id", id, "event", "updated", "err", err)
	}

	return &updated, nil
}

func (s *service) DeleteStorageService(ctx context.Context, id string) error {
	if err := s.repository.DeleteStorageService(ctx, id); err != nil {
		return err
	}

	if err := s.eventSink.StorageServiceDeleted(ctx, id); err != nil {
		slog.Warn("Failed to publish storage service event", "id", id, "event", "deleted", "err", err)
	}
	return nil
}

// recordChange compares one optional string field and appends the result
// to the matching partition of change. It returns the field's new value.
func recordChange(change *ChangeDescription, field string, old, requested *string) (*string, error) {
	if requested == nil {
		return old, nil
	}
	next := nonEmpty(requested)

	var target *[]FieldChange
	switch {
	case old == nil && next == nil:
		return nil, nil
	case old == nil:
		target = &change.FieldsAdded
	case next == nil:
		target = &change.FieldsDeleted
	case *old != *next:
		target = &change.FieldsUpdated
	default:
		return old, nil
	}

	// Typed nil pointers encode as an absent side.
	fc, err := NewFieldChange(field, old, next)
	if err != nil {
		return nil, err
	}
	*target = append(*target, fc)
	return next, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return ptr(*s)
}
