package catalog

import "slices"

// Clone returns a deep copy of s.
func (s *StorageService) Clone() *StorageService {
	if s == nil {
		return nil
	}
	out := *s
	out.DisplayName = clonePtr(s.DisplayName)
	out.Description = clonePtr(s.Description)
	out.Version = clonePtr(s.Version)
	out.UpdatedAt = clonePtr(s.UpdatedAt)
	out.UpdatedBy = clonePtr(s.UpdatedBy)
	out.ChangeDescription = s.ChangeDescription.Clone()
	return &out
}

// Clone returns a deep copy of c.
func (c *ChangeDescription) Clone() *ChangeDescription {
	if c == nil {
		return nil
	}
	return &ChangeDescription{
		FieldsAdded:     cloneFieldChanges(c.FieldsAdded),
		FieldsDeleted:   cloneFieldChanges(c.FieldsDeleted),
		FieldsUpdated:   cloneFieldChanges(c.FieldsUpdated),
		PreviousVersion: clonePtr(c.PreviousVersion),
	}
}

func cloneFieldChanges(in []FieldChange) []FieldChange {
	if in == nil {
		return nil
	}
	out := make([]FieldChange, len(in))
	for i, fc := range in {
		out[i] = FieldChange{
			Name:     fc.Name,
			OldValue: slices.Clone(fc.OldValue),
			NewValue: slices.Clone(fc.NewValue),
		}
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
