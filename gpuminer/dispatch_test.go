package gpuminer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDispatcherMatchesStayWithinBatch checks that every match a dispatch
// reports lies inside the dispatched nonce range. It only runs when an
// OpenCL platform with at least one device is present; most CI environments have no GPU driver, so
// this mirrors how the teacher's own rpctest/spvsvc integration tests skip
// when their external process dependency is unavailable.
func TestDispatcherMatchesStayWithinBatch(t *testing.T) {
	if !HasOpenCLDevice() {
		t.Skip("no opencl device available in this environment")
	}

	d, err := NewDispatcher()
	require.NoError(t, err)
	defer d.Close()

	prefix := []byte("dispatcher-test-prefix")
	suffix := []byte("dispatcher-test-suffix")

	matches, err := d.Dispatch(prefix, suffix, 4, 0, d.DefaultBatchSize(), 1)
	require.NoError(t, err)
	for _, m := range matches {
		require.True(t, m.Nonce < uint64(d.DefaultBatchSize()))
	}
}
