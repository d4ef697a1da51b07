package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind Kind
	}{
		{"UnknownModel", ErrUnknownModel, KindConfiguration},
		{"InvalidPercentage", ErrInvalidPercentage, KindConfiguration},
		{"BootstrapWithoutAlignment", ErrBootstrapWithoutAlignment, KindConfiguration},
		{"ConflictingStrategies", ErrConflictingStrategies, KindConfiguration},
		{"SequenceCountMismatch", ErrSequenceCountMismatch, KindInput},
		{"MalformedMatrix", ErrMalformedMatrix, KindInput},
		{"RowNotWritten", ErrRowNotWritten, KindInput},
		{"CacheDirUnusable", ErrCacheDirUnusable, KindStorage},
		{"RowCorrupted", ErrRowCorrupted, KindStorage},
		{"StoreClosed", ErrStoreClosed, KindStorage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.kind, KindOf(tc.err))
		})
	}
}

func TestKindOfWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("row 7: %w", ErrRowCorrupted)
	require.Equal(t, KindStorage, KindOf(wrapped))
	require.ErrorIs(t, wrapped, ErrRowCorrupted)

	doubly := fmt.Errorf("replicate 3: %w", wrapped)
	require.Equal(t, KindStorage, KindOf(doubly))
}

func TestKindOfForeignError(t *testing.T) {
	require.Equal(t, KindUnknown, KindOf(errors.New("not ours")))
	require.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "Configuration", KindConfiguration.String())
	require.Equal(t, "Input", KindInput.String())
	require.Equal(t, "Resource", KindResource.String())
	require.Equal(t, "Storage", KindStorage.String())
	require.Equal(t, "Unknown", KindUnknown.String())
}

func TestWarnf(t *testing.T) {
	w := Warnf(WarnPercentageOverBudget, "%d%% requested, %d available", 80, 40)
	require.Equal(t, WarnPercentageOverBudget, w.Code)
	require.Equal(t, "80% requested, 40 available", w.Message)
	require.Equal(t, "WARNING: 80% requested, 40 available", w.String())
}
