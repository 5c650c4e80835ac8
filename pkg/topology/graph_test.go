package topology

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorflow/vector/pkg/config"

	_ "github.com/vectorflow/vector/internal/topotest"
)

func docFromYAML(t *testing.T, yamlText string) *config.Document {
	t.Helper()
	path := t.TempDir() + "/doc.yaml"
	require.NoError(t, os.WriteFile(path, []byte(yamlText), 0o644))
	doc, err := config.Load(path)
	require.NoError(t, err)
	return doc
}

func TestBuildWiresSourceToSink(t *testing.T) {
	doc := docFromYAML(t, `
sources:
  in:
    type: test_emit_n
    count: 3
sinks:
  out:
    type: test_outcome
    inputs: [in]
`)
	topo, err := Build(doc, t.TempDir())
	require.NoError(t, err)

	in, ok := topo.Node("in")
	require.True(t, ok)
	out, ok := topo.Node("out")
	require.True(t, ok)
	require.Len(t, in.downstream, 1)
	assert.Same(t, out, in.downstream[0])
}

func TestBuildRejectsUnknownComponentType(t *testing.T) {
	doc := docFromYAML(t, `
sources:
  in:
    type: does_not_exist
sinks:
  out:
    type: test_outcome
    inputs: [in]
`)
	_, err := Build(doc, t.TempDir())
	require.Error(t, err)
}

func TestBuildRejectsSinkWithNoUpstream(t *testing.T) {
	doc := docFromYAML(t, `
sinks:
  out:
    type: test_outcome
    inputs: [nonexistent]
`)
	_, err := Build(doc, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matches no component")
}

func TestBuildExpandsWildcardInputs(t *testing.T) {
	doc := docFromYAML(t, `
sources:
  a:
    type: test_emit_n
    count: 1
  b:
    type: test_emit_n
    count: 1
sinks:
  out:
    type: test_outcome
    inputs: ["*"]
`)
	topo, err := Build(doc, t.TempDir())
	require.NoError(t, err)
	a, _ := topo.Node("a")
	b, _ := topo.Node("b")
	assert.Len(t, a.downstream, 1)
	assert.Len(t, b.downstream, 1)
}

func TestBuildRejectsDuplicateKeyAcrossSections(t *testing.T) {
	doc := docFromYAML(t, `
sources:
  shared:
    type: test_emit_n
transforms:
  shared:
    type: test_passthrough
`)
	_, err := Build(doc, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate component key")
}
