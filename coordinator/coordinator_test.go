package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeldhash/miner/hash"
	"github.com/zeldhash/miner/nonce"
	"github.com/zeldhash/miner/txplan"
)

func findTargetZeros(t *testing.T, prefix, suffix []byte, nonceLen int, span uint64) uint8 {
	t.Helper()
	var best uint8
	for n := uint64(0); n < span; n++ {
		b := nonce.EncodeRaw(n)
		padded := make([]byte, nonceLen)
		copy(padded[nonceLen-len(b):], b)
		full := append(append(append([]byte{}, prefix...), padded...), suffix...)
		zeros := hash.CountLeadingZeros(hash.Double(full))
		if zeros > best {
			best = zeros
		}
	}
	require.Greater(t, best, uint8(0))
	return best
}

func TestCoordinatorCPURunFindsMatch(t *testing.T) {
	prefix := []byte("coordinator-test-prefix")
	suffix := []byte("coordinator-test-suffix")
	nonceLen := 2
	span := uint64(1 << 14)

	zeros := findTargetZeros(t, prefix, suffix, nonceLen, span)

	tmpl := txplan.Template{Prefix: prefix, Suffix: suffix, NonceLen: nonceLen}
	c := New(Config{
		Backend:     BackendCPU,
		Workers:     2,
		BatchSize:   1024,
		TargetZeros: zeros,
	})

	result, err := c.Run(context.Background(), tmpl, 0, span)
	require.NoError(t, err)
	require.True(t, hash.MeetsTarget(result.Txid, zeros))
	require.Equal(t, Done, c.State())
}

func TestCoordinatorRejectsDoubleRun(t *testing.T) {
	tmpl := txplan.Template{Prefix: []byte("a"), Suffix: []byte("b"), NonceLen: 1}
	c := New(Config{Backend: BackendCPU, Workers: 1, BatchSize: 1, TargetZeros: 64})

	done := make(chan struct{})
	go func() {
		c.Run(context.Background(), tmpl, 0, 256)
		close(done)
	}()

	// Give the first Run a moment to flip `started` before trying a
	// second concurrent call.
	time.Sleep(10 * time.Millisecond)
	_, err := c.Run(context.Background(), tmpl, 0, 256)
	require.Error(t, err)

	<-done
}

func TestCoordinatorStopAborts(t *testing.T) {
	tmpl := txplan.Template{Prefix: []byte("a"), Suffix: []byte("b"), NonceLen: 8}
	c := New(Config{Backend: BackendCPU, Workers: 2, BatchSize: 1 << 20, TargetZeros: 64})

	resultCh := make(chan error, 1)
	go func() {
		_, err := c.Run(context.Background(), tmpl, 0, 1<<40)
		resultCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	c.Stop()

	select {
	case err := <-resultCh:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not stop in time")
	}
}
