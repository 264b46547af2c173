package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// requiredKeys lists the wire keys a storage service payload must carry.
var requiredKeys = []string{"id", "name", "serviceType", "href"}

// Decode parses a storage service payload and validates it. Every failure
// wraps ErrSchemaViolation.
func Decode(data []byte) (*StorageService, error) {
	var svc StorageService
	if err := json.Unmarshal(data, &svc); err != nil {
		return nil, asViolation(err)
	}
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	return &svc, nil
}

// UnmarshalJSON enforces the presence of the required keys and the closed
// service type set. Explicit nulls on optional fields read as absent.
func (s *StorageService) UnmarshalJSON(data []byte) error {
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return violation("", "storage service must be a JSON object")
	}
	for _, key := range requiredKeys {
		value := root.Get(key)
		if !value.Exists() || value.Type == gjson.Null {
			return violation(key, "required field is missing")
		}
	}

	type plain StorageService
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return asViolation(err)
	}

	*s = StorageService(decoded)
	return s.normalize()
}

// normalize folds the equivalent encodings of "no value" into one and
// compacts raw change values so they survive a serialize/decode cycle
// byte for byte.
func (s *StorageService) normalize() error {
	if s.ChangeDescription == nil {
		return nil
	}
	cd := s.ChangeDescription
	for _, p := range []struct {
		name    string
		changes *[]FieldChange
	}{
		{"fieldsAdded", &cd.FieldsAdded},
		{"fieldsDeleted", &cd.FieldsDeleted},
		{"fieldsUpdated", &cd.FieldsUpdated},
	} {
		normalized, err := normalizeFieldChanges(*p.changes)
		if err != nil {
			return violation("changeDescription."+p.name, "%v", err)
		}
		*p.changes = normalized
	}
	return nil
}

func normalizeFieldChanges(changes []FieldChange) ([]FieldChange, error) {
	if len(changes) == 0 {
		return nil, nil
	}
	var err error
	for i := range changes {
		if changes[i].OldValue, err = normalizeRaw(changes[i].OldValue); err != nil {
			return nil, err
		}
		if changes[i].NewValue, err = normalizeRaw(changes[i].NewValue); err != nil {
			return nil, err
		}
	}
	return changes, nil
}

// normalizeRaw returns raw in compact form, or nil for an empty or null
// value.
func normalizeRaw(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	if gjson.ParseBytes(buf.Bytes()).Type == gjson.Null {
		return nil, nil
	}
	return json.RawMessage(buf.Bytes()), nil
}

func asViolation(err error) error {
	var sv *SchemaViolation
	if errors.As(err, &sv) {
		return err
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return violation(typeErr.Field, "expected %s but got %s", typeErr.Type, typeErr.Value)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return violation("", "malformed JSON at offset %d: %v", syntaxErr.Offset, syntaxErr)
	}
	return &SchemaViolation{Reason: fmt.Sprintf("invalid payload: %v", err)}
}
