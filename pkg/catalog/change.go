package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

type partition struct {
	name    string
	changes []FieldChange
}

func (c *ChangeDescription) partitions() []partition {
	return []partition{
		{"fieldsAdded", c.FieldsAdded},
		{"fieldsDeleted", c.FieldsDeleted},
		{"fieldsUpdated", c.FieldsUpdated},
	}
}

// IsEmpty reports whether the change lists no field changes.
func (c *ChangeDescription) IsEmpty() bool {
	return c == nil || len(c.FieldsAdded)+len(c.FieldsDeleted)+len(c.FieldsUpdated) == 0
}

// FieldNames returns the changed field names in partition order: added,
// deleted, then updated.
func (c *ChangeDescription) FieldNames() []string {
	if c == nil {
		return nil
	}
	var names []string
	for _, p := range c.partitions() {
		for _, change := range p.changes {
			names = append(names, change.Name)
		}
	}
	return names
}

// NewFieldChange builds a FieldChange, encoding the values as raw JSON. A
// nil value leaves the corresponding side absent.
func NewFieldChange(name string, oldValue, newValue any) (FieldChange, error) {
	change := FieldChange{Name: name}
	var err error
	if change.OldValue, err = encodeValue(oldValue); err != nil {
		return FieldChange{}, fmt.Errorf("encode old value of %s: %w", name, err)
	}
	if change.NewValue, err = encodeValue(newValue); err != nil {
		return FieldChange{}, fmt.Errorf("encode new value of %s: %w", name, err)
	}
	return change, nil
}

// DecodeOld decodes the previous value into target. It returns false when
// the change has no previous value.
func (f FieldChange) DecodeOld(target any) (bool, error) {
	return decodeValue(f.OldValue, target)
}

// DecodeNew decodes the new value into target. It returns false when the
// change has no new value.
func (f FieldChange) DecodeNew(target any) (bool, error) {
	return decodeValue(f.NewValue, target)
}

func encodeValue(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return normalizeRaw(raw)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return normalizeRaw(b)
}

func decodeValue(raw json.RawMessage, target any) (bool, error) {
	if len(raw) == 0 || gjson.ParseBytes(raw).Type == gjson.Null {
		return false, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, err
	}
	return true, nil
}
