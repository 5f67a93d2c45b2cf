package plugin

import (
	"fmt"
	"strings"
	"time"
)

// Capability is advisory metadata describing what a callsystem supports.
// Capabilities are used by selection and test tooling; the dispatcher does
// not enforce them at call time.
type Capability string

const (
	// CapabilityText marks text generation support.
	CapabilityText Capability = "text"
	// CapabilityVision marks image classification support.
	CapabilityVision Capability = "vision"
	// CapabilityImage marks image generation support.
	CapabilityImage Capability = "image"
	// CapabilityAudio marks audio generation support.
	CapabilityAudio Capability = "audio"
	// CapabilityTools marks tool / function calling support.
	CapabilityTools Capability = "tools"
	// CapabilityLegacy marks the all-capabilities fallback callsystem.
	CapabilityLegacy Capability = "legacy"
)

// NamespaceCallsystem and NamespaceIntegration are the package id root
// namespaces ("cs.x.y" / "in.x.y").
const (
	NamespaceCallsystem  = "cs."
	NamespaceIntegration = "in."
)

// Descriptor identifies one registered plugin release.
type Descriptor struct {
	// PackageID is the namespaced identifier, e.g. "cs.callwise.legacy".
	PackageID string
	// Version is a semver-like version string. Not parsed, only used as an
	// identity component.
	Version string
	// ReleaseDate orders releases of the same package. A zero value means
	// "undated"; see Registry for the resolution consequences.
	ReleaseDate time.Time
	// Capabilities is the advisory capability set.
	Capabilities []Capability
}

// Key returns the exact-version registry key ("id-version").
func (d Descriptor) Key() string { return d.PackageID + "-" + d.Version }

// LatestKey returns the latest-pointer registry key ("id-latest").
func (d Descriptor) LatestKey() string { return KeyLatest(d.PackageID) }

// KeyLatest builds the latest-pointer key for a package id.
func KeyLatest(packageID string) string { return packageID + "-latest" }

// KeyVersion builds the exact-version key for a package id and version.
func KeyVersion(packageID, version string) string { return packageID + "-" + version }

// HasCapability reports whether the descriptor declares cap.
func (d Descriptor) HasCapability(cap Capability) bool {
	for _, c := range d.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// Plugin is the minimal conformance contract every registered module must
// satisfy. Concrete plugin kinds (callsystems, integrations) extend it with
// their lifecycle method.
type Plugin interface {
	Descriptor() Descriptor
}

// validateDescriptor performs the load-time conformance check: a descriptive
// error is returned instead of silently skipping a malformed module.
func validateDescriptor(d Descriptor, namespace string) error {
	if d.PackageID == "" {
		return fmt.Errorf("plugin descriptor has empty package id")
	}
	if namespace != "" && !strings.HasPrefix(d.PackageID, namespace) {
		return fmt.Errorf("plugin %q does not use the required %q namespace", d.PackageID, namespace)
	}
	if d.Version == "" {
		return fmt.Errorf("plugin %q has empty version", d.PackageID)
	}
	if strings.Contains(d.Version, "-latest") || d.Version == "latest" {
		return fmt.Errorf("plugin %q uses reserved version %q", d.PackageID, d.Version)
	}
	return nil
}
