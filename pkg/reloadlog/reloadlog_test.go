package reloadlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorflow/vector/pkg/reload"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndListPreservesGenerationOrder(t *testing.T) {
	s := openTemp(t)

	require.NoError(t, s.Append(reload.Plan{Generation: 1, Added: []string{"a"}}, true, ""))
	require.NoError(t, s.Append(reload.Plan{Generation: 2, Removed: []string{"a"}}, true, ""))

	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(1), records[0].Plan.Generation)
	assert.Equal(t, uint64(2), records[1].Plan.Generation)
}

func TestLatestReturnsMostRecentGeneration(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Append(reload.Plan{Generation: 1}, true, ""))
	require.NoError(t, s.Append(reload.Plan{Generation: 2}, false, "rolled back"))

	record, ok, err := s.Latest()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(2), record.Plan.Generation)
	assert.False(t, record.Applied)
	assert.Equal(t, "rolled back", record.Error)
}

func TestLatestOnEmptyLogReportsNotFound(t *testing.T) {
	s := openTemp(t)
	_, ok, err := s.Latest()
	require.NoError(t, err)
	assert.False(t, ok)
}
