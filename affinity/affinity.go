// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for pinning the event loop thread. Platform-specific
// implementations are located in separate files guarded by build tags.

package affinity

import "runtime"

// Pin locks the calling goroutine to its OS thread and restricts that
// thread to cpuID. The returned function restores the previous CPU set
// and unlocks the thread. On failure the thread is left unlocked.
func Pin(cpuID int) (unpin func(), err error) {
	runtime.LockOSThread()
	restore, err := setAffinityPlatform(cpuID)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	return func() {
		restore()
		runtime.UnlockOSThread()
	}, nil
}

// CPUs returns the CPUs the calling thread may run on.
func CPUs() ([]int, error) { return currentCPUs() }
