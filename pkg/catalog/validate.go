package catalog

import "strings"

// Validate checks the storage service against the wire contract.
func (s *StorageService) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return violation("id", "required field is missing")
	}
	if strings.TrimSpace(s.Name) == "" {
		return violation("name", "required field is missing")
	}
	if !s.ServiceType.IsValid() {
		if s.ServiceType == "" {
			return violation("serviceType", "required field is missing")
		}
		return violation("serviceType", "unsupported storage service type %q", s.ServiceType)
	}
	if strings.TrimSpace(s.Href) == "" {
		return violation("href", "required field is missing")
	}
	if s.Version != nil && *s.Version < 0 {
		return violation("version", "must not be negative")
	}

	if s.ChangeDescription == nil {
		return nil
	}
	if err := s.ChangeDescription.Validate(); err != nil {
		return err
	}
	// A no-op change may point at the current version.
	if prev := s.ChangeDescription.PreviousVersion; prev != nil && s.Version != nil && *prev > *s.Version {
		return violation("changeDescription.previousVersion", "%v is newer than entity version %v", *prev, *s.Version)
	}
	return nil
}

// Validate checks that no named field appears more than once across the
// three partitions. Unnamed changes are tolerated.
func (c *ChangeDescription) Validate() error {
	if c.PreviousVersion != nil && *c.PreviousVersion < 0 {
		return violation("changeDescription.previousVersion", "must not be negative")
	}

	seen := make(map[string]string)
	for _, p := range c.partitions() {
		for _, change := range p.changes {
			if change.Name == "" {
				continue
			}
			if other, ok := seen[change.Name]; ok {
				return violation("changeDescription."+p.name, "field %q already listed in %s", change.Name, other)
			}
			seen[change.Name] = p.name
		}
	}
	return nil
}
