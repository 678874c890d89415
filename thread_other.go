//go:build !linux && !windows

package winloop

// currentThread reports zero where the thread id is not exposed, which
// disables the re-entrant Call check.
func currentThread() uint64 { return 0 }
