package metrics

import "sync/atomic"

// LifecycleMetrics counts listing mutations as the manager applies them
// locally and settles them against the remote store.
type LifecycleMetrics struct {
	CreatedCount   atomic.Int32
	ConfirmedCount atomic.Int32
	FailedCount    atomic.Int32
	RevertedCount  atomic.Int32
}
