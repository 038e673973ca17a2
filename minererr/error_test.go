package minererr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	plain := New(ErrInvalidInput, "target zeros out of range", nil)
	require.Equal(t, "target zeros out of range", plain.Error())

	wrapped := New(ErrGPUUnavailable, "no opencl platforms", errors.New("enumeration failed"))
	require.Equal(t, "no opencl platforms: enumeration failed", wrapped.Error())
	require.ErrorIs(t, wrapped, wrapped.Err)
}

func TestCodeString(t *testing.T) {
	require.Equal(t, "ErrDustOutput", ErrDustOutput.String())
	require.Contains(t, Code(999).String(), "Unknown Code")
}
