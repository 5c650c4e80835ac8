package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
sources:
  in:
    type: generator
    events_per_second: 10
    buffer:
      type: memory
      max_events: 100
      when_full: block
sinks:
  out:
    type: console
    inputs: [in]
    target: stdout
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vector.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesComponentsAndOpaqueFields(t *testing.T) {
	doc, err := Load(writeTemp(t, sample))
	require.NoError(t, err)

	src, ok := doc.Sources["in"]
	require.True(t, ok)
	assert.Equal(t, "generator", src.Type)
	assert.EqualValues(t, 10, src.Raw["events_per_second"])
	require.NotNil(t, src.Buffer)
	assert.Equal(t, 100, src.Buffer.MaxEvents)

	sink, ok := doc.Sinks["out"]
	require.True(t, ok)
	assert.Equal(t, []string{"in"}, sink.Inputs)
	assert.Equal(t, "stdout", sink.Raw["target"])
}

func TestHashIsStableAcrossKeyReordering(t *testing.T) {
	a := `sources:
  in:
    type: generator
    x: 1
    y: 2
`
	b := `sources:
  in:
    type: generator
    y: 2
    x: 1
`
	docA, err := Load(writeTemp(t, a))
	require.NoError(t, err)
	docB, err := Load(writeTemp(t, b))
	require.NoError(t, err)

	assert.Equal(t, docA.Hash(), docB.Hash())
}

func TestHashChangesWhenFieldValueChanges(t *testing.T) {
	docA, err := Load(writeTemp(t, "sources:\n  in:\n    type: generator\n    rate: 1\n"))
	require.NoError(t, err)
	docB, err := Load(writeTemp(t, "sources:\n  in:\n    type: generator\n    rate: 2\n"))
	require.NoError(t, err)

	assert.NotEqual(t, docA.Hash(), docB.Hash())
}
