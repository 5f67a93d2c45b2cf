package plugin

import (
	"fmt"
	"time"

	"github.com/callwise/callwise/logging"
)

// RegistryOptions configure registry construction.
type RegistryOptions struct {
	// Namespace, when set, requires every package id to carry the prefix
	// (NamespaceCallsystem or NamespaceIntegration).
	Namespace string

	// RequireReleaseDate rejects undated descriptors instead of letting
	// them sort as "now". The permissive default preserves the historical
	// behavior where an undated plugin always wins latest resolution, which
	// is surprising enough that it is logged as a warning.
	RequireReleaseDate bool

	// Logger receives registration warnings. Defaults to NoOpLogger.
	Logger logging.Logger

	// now is swappable for tests.
	now func() time.Time
}

// Registry indexes plugins by exact (packageId, version) key and by a
// per-package latest pointer. Registration happens once at process start;
// Resolve performs no I/O and the indices are never mutated afterward.
//
// Latest resolution: for each package id the descriptor with the greatest
// ReleaseDate wins; a missing date is substituted with the registration-time
// clock, so undated plugins sort as newest. On equal dates the most recently
// registered descriptor wins.
type Registry[T Plugin] struct {
	opts     RegistryOptions
	byKey    map[string]T
	byLatest map[string]T
	releases map[string]time.Time // effective release date per latest key
	order    []string
}

// NewRegistry constructs an empty registry.
func NewRegistry[T Plugin](optFns ...func(o *RegistryOptions)) *Registry[T] {
	opts := RegistryOptions{Logger: logging.NoOpLogger{}, now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	return &Registry[T]{
		opts:     opts,
		byKey:    make(map[string]T),
		byLatest: make(map[string]T),
		releases: make(map[string]time.Time),
	}
}

// Register validates and indexes the given plugins. The operation is atomic:
// on any error the registry is left unchanged.
func (r *Registry[T]) Register(plugins ...T) error {
	type staged struct {
		plugin  T
		desc    Descriptor
		release time.Time
	}

	stagedByKey := make(map[string]staged, len(plugins))
	var stageOrder []string

	for _, p := range plugins {
		d := p.Descriptor()
		if err := validateDescriptor(d, r.opts.Namespace); err != nil {
			return err
		}
		key := d.Key()
		if _, ok := r.byKey[key]; ok {
			return &DuplicateVersionError{PackageID: d.PackageID, Version: d.Version}
		}
		if _, ok := stagedByKey[key]; ok {
			return &DuplicateVersionError{PackageID: d.PackageID, Version: d.Version}
		}

		release := d.ReleaseDate
		if release.IsZero() {
			if r.opts.RequireReleaseDate {
				return fmt.Errorf("plugin %s version %s has no release date", d.PackageID, d.Version)
			}
			release = r.opts.now()
			r.opts.Logger.Warn("plugin has no release date; it will sort as the newest release",
				"package_id", d.PackageID, "version", d.Version)
		}

		stagedByKey[key] = staged{plugin: p, desc: d, release: release}
		stageOrder = append(stageOrder, key)
	}

	// Commit: the staging pass found no conflicts.
	for _, key := range stageOrder {
		s := stagedByKey[key]
		r.byKey[key] = s.plugin
		r.order = append(r.order, key)

		latestKey := s.desc.LatestKey()
		// Strictly-newer incumbents stay; ties go to the newcomer.
		if incumbent, ok := r.releases[latestKey]; !ok || !incumbent.After(s.release) {
			r.byLatest[latestKey] = s.plugin
			r.releases[latestKey] = s.release
		}
	}
	return nil
}

// Resolve returns the plugin for a registry key, either "id-version" or
// "id-latest".
func (r *Registry[T]) Resolve(key string) (T, error) {
	if p, ok := r.byLatest[key]; ok {
		return p, nil
	}
	if p, ok := r.byKey[key]; ok {
		return p, nil
	}
	var zero T
	return zero, &NotFoundError{Key: key}
}

// Latest returns the latest release of a package id.
func (r *Registry[T]) Latest(packageID string) (T, error) {
	return r.Resolve(KeyLatest(packageID))
}

// Latests returns the latest release of every registered package, in first
// registration order of the package ids.
func (r *Registry[T]) Latests() []T {
	seen := make(map[string]bool, len(r.byLatest))
	out := make([]T, 0, len(r.byLatest))
	for _, key := range r.order {
		id := r.byKey[key].Descriptor().PackageID
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, r.byLatest[KeyLatest(id)])
	}
	return out
}

// Len returns the number of registered (packageId, version) pairs.
func (r *Registry[T]) Len() int { return len(r.byKey) }
