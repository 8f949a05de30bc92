package services

import "sync"

// volumeLockRegistry tracks volumes with an ingest in flight so two
// concurrent attempts on the same volume cannot interleave.
type volumeLockRegistry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

var (
	registry     *volumeLockRegistry
	registryOnce sync.Once
)

// volumeLocks returns the process-wide lock registry.
func volumeLocks() *volumeLockRegistry {
	registryOnce.Do(func() {
		registry = &volumeLockRegistry{active: make(map[string]struct{})}
	})
	return registry
}

// TryAcquire marks a volume as busy. It returns false when an ingest
// already holds the volume.
func (r *volumeLockRegistry) TryAcquire(volumeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.active[volumeID]; busy {
		return false
	}
	r.active[volumeID] = struct{}{}
	return true
}

// Release clears the busy mark for a volume.
func (r *volumeLockRegistry) Release(volumeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, volumeID)
}

// Busy reports whether a volume currently has an ingest in flight.
func (r *volumeLockRegistry) Busy(volumeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, busy := r.active[volumeID]
	return busy
}
