package plugin

import "fmt"

// DuplicateVersionError reports two registered descriptors sharing one
// (packageId, version) pair.
type DuplicateVersionError struct {
	PackageID string
	Version   string
}

// Error implements the error interface.
func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("plugin %s version %s registered twice", e.PackageID, e.Version)
}

// NotFoundError reports a registry miss for a resolution key.
type NotFoundError struct {
	Key string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no plugin registered for key %q", e.Key)
}
