package catalog

import "math"

// InitialVersion is the version stamped on a newly registered entity.
const InitialVersion = 0.1

// minorIncrement is applied for changes to descriptive fields.
const minorIncrement = 0.1

// nextMinorVersion returns v bumped by one minor step, rounded to one
// decimal place so repeated bumps do not drift.
func nextMinorVersion(v float64) float64 {
	return roundVersion(v + minorIncrement)
}

func roundVersion(v float64) float64 {
	return math.Round(v*10) / 10
}

func ptr[T any](v T) *T {
	return &v
}

// CurrentVersion returns the entity version, or 0 when none is set.
func (s *StorageService) CurrentVersion() float64 {
	if s == nil || s.Version == nil {
		return 0
	}
	return *s.Version
}
