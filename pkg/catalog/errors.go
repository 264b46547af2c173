package catalog

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrSchemaViolation indicates data that does not conform to the storage service contract
	ErrSchemaViolation = errors.New("schema violation")

	// ErrStorageServiceNotFound indicates a storage service was not found
	ErrStorageServiceNotFound = errors.New("storage service not found")

	// ErrStorageServiceExists indicates a storage service with the same id or name is already registered
	ErrStorageServiceExists = errors.New("storage service already exists")

	// ErrStorageServiceConflict indicates the stored version moved on since the entity was read
	ErrStorageServiceConflict = errors.New("storage service was modified concurrently")
)

// SchemaViolation reports which field broke the contract and why.
type SchemaViolation struct {
	Field  string
	Reason string
}

func (e *SchemaViolation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrSchemaViolation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrSchemaViolation, e.Field, e.Reason)
}

func (e *SchemaViolation) Unwrap() error {
	return ErrSchemaViolation
}

func violation(field, format string, args ...any) error {
	return &SchemaViolation{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// StorageServiceError represents an error related to storage service operations
type StorageServiceError struct {
	ID  string
	Op  string
	Err error
}

func (e *StorageServiceError) Error() string {
	return fmt.Sprintf("storage service operation %s failed for %s: %v", e.Op, e.ID, e.Err)
}

func (e *StorageServiceError) Unwrap() error {
	return e.Err
}
