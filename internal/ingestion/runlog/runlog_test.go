package runlog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nepse-stock-scryper/internal/ingestion/dto"
)

func summary(i int) dto.RunSummary {
	return dto.RunSummary{ID: fmt.Sprintf("run-%d", i)}
}

func ids(entries []dto.RunSummary) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestMemory_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)

	got, err := m.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, m.Append(ctx, summary(1)))
	require.NoError(t, m.Append(ctx, summary(2)))

	got, err = m.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-2", "run-1"}, ids(got))
}

func TestMemory_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)
	for i := 1; i <= 5; i++ {
		require.NoError(t, m.Append(ctx, summary(i)))
	}

	got, err := m.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-5", "run-4", "run-3"}, ids(got))

	got, err = m.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-5", "run-4"}, ids(got))
}
