// Package catalog provides the storage service entity of the metadata
// catalog together with its change-tracking records and a small registry
// service with pluggable repositories.
//
// A StorageService describes one registered storage system connection
// (ABFS, GCS, HDFS or S3). Every update made through the Service bumps the
// entity version and attaches a ChangeDescription listing the fields that
// were added, deleted or updated.
//
// # Wire Contract
//
// Entities travel as JSON objects with camelCase keys. The required keys
// are id, name, serviceType and href; everything else is optional and a
// JSON null is read the same as an absent key. Payloads that break the
// contract are rejected with an error wrapping ErrSchemaViolation.
//
// Field change values (oldValue, newValue) are kept as raw JSON. The
// consumer decodes them using the field name to pick the target type.
package catalog
