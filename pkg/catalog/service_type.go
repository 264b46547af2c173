package catalog

import "encoding/json"

// StorageServiceTypes returns every supported storage service type.
func StorageServiceTypes() []StorageServiceType {
	return []StorageServiceType{
		StorageServiceTypeABFS,
		StorageServiceTypeGCS,
		StorageServiceTypeHDFS,
		StorageServiceTypeS3,
	}
}

// IsValid reports whether t is one of the supported storage service types.
func (t StorageServiceType) IsValid() bool {
	switch t {
	case StorageServiceTypeABFS, StorageServiceTypeGCS, StorageServiceTypeHDFS, StorageServiceTypeS3:
		return true
	default:
		return false
	}
}

func (t StorageServiceType) String() string {
	return string(t)
}

// ParseStorageServiceType converts a wire value into a StorageServiceType.
// Matching is exact; "s3" is not "S3".
func ParseStorageServiceType(s string) (StorageServiceType, error) {
	t := StorageServiceType(s)
	if !t.IsValid() {
		return "", violation("serviceType", "unsupported storage service type %q (expected one of ABFS, GCS, HDFS, S3)", s)
	}
	return t, nil
}

// UnmarshalJSON rejects any value outside the closed set.
func (t *StorageServiceType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return violation("serviceType", "must be a string")
	}
	parsed, err := ParseStorageServiceType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
