package catalog

import (
	"encoding/json"
	"time"
)

// StorageServiceType is the closed set of supported storage technologies.
type StorageServiceType string

// Storage service type constants (typed).
const (
	StorageServiceTypeABFS StorageServiceType = "ABFS"
	StorageServiceTypeGCS  StorageServiceType = "GCS"
	StorageServiceTypeHDFS StorageServiceType = "HDFS"
	StorageServiceTypeS3   StorageServiceType = "S3"
)

// StorageService represents a registered storage system connection such as
// S3, GCS or HDFS.
type StorageService struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	DisplayName       *string            `json:"displayName,omitempty"`
	Description       *string            `json:"description,omitempty"`
	ServiceType       StorageServiceType `json:"serviceType"`
	Href              string             `json:"href"`
	Version           *float64           `json:"version,omitempty"`
	UpdatedAt         *time.Time         `json:"updatedAt,omitempty"`
	UpdatedBy         *string            `json:"updatedBy,omitempty"`
	ChangeDescription *ChangeDescription `json:"changeDescription,omitempty"`
}

// ChangeDescription describes the field level delta that produced a
// version of an entity. Absent and empty partitions mean the same thing.
type ChangeDescription struct {
	FieldsAdded     []FieldChange `json:"fieldsAdded,omitempty"`
	FieldsDeleted   []FieldChange `json:"fieldsDeleted,omitempty"`
	FieldsUpdated   []FieldChange `json:"fieldsUpdated,omitempty"`
	PreviousVersion *float64      `json:"previousVersion,omitempty"`
}

// FieldChange is one changed field. OldValue is nil for additions and
// NewValue is nil for deletions.
type FieldChange struct {
	Name     string          `json:"name,omitempty"`
	OldValue json.RawMessage `json:"oldValue,omitempty"`
	NewValue json.RawMessage `json:"newValue,omitempty"`
}

// CreateStorageServiceRequest contains parameters for registering a storage service.
type CreateStorageServiceRequest struct {
	Name        string
	DisplayName *string
	Description *string
	ServiceType StorageServiceType
	UpdatedBy   string
}

// UpdateStorageServiceRequest contains the mutable fields of a storage
// service. A nil field is left untouched; a pointer to the empty string
// clears the field.
type UpdateStorageServiceRequest struct {
	DisplayName *string
	Description *string
	UpdatedBy   string
}
