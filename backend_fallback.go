//go:build !linux && !windows

package asyncsync

// newBackend selects the generic backing on platforms without a dedicated
// OS-assisted tier (spec.md §4.1: "the generic backing is the default and
// the only one guaranteed present").
func newBackend() queueBackend {
	activeBackend.Store(int32(BackendGeneric))
	return newGenericQueueBackend()
}
