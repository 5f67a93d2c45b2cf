// Package plugin implements the versioned registry for callsystems and
// integrations. Plugins are discovered at process start, validated once for
// interface conformance, and indexed two ways: by exact (packageId, version)
// pair and by a per-package "latest" pointer resolved from release dates.
// The indices are immutable after registration; there is no hot-reload.
package plugin
