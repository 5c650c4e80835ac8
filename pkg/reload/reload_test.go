package reload

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorflow/vector/pkg/config"
	"github.com/vectorflow/vector/pkg/topology"

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

func newReloader(t *testing.T) *Reloader {
	t.Helper()
	runner, _ := topology.NewErrgroupRunner()
	return New(context.Background(), runner, t.TempDir(), 100*time.Millisecond, nil, nil)
}

func TestBootstrapStartsTheInitialGeneration(t *testing.T) {
	r := newReloader(t)
	doc := docFromYAML(t, `
sources:
  in:
    type: test_emit_forever
sinks:
  out:
    type: test_outcome
    inputs: [in]
`)
	require.NoError(t, r.Bootstrap(doc))

	node, ok := r.Current().Node("out")
	require.True(t, ok)
	assert.Equal(t, "out", node.Key)
}

func TestApplyAddsAndWiresANewSink(t *testing.T) {
	r := newReloader(t)
	require.NoError(t, r.Bootstrap(docFromYAML(t, `
sources:
  in:
    type: test_emit_forever
sinks:
  out:
    type: test_outcome
    inputs: [in]
`)))

	plan, err := r.Apply(docFromYAML(t, `
sources:
  in:
    type: test_emit_forever
sinks:
  out:
    type: test_outcome
    inputs: [in]
  out2:
    type: test_outcome
    inputs: [in]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"out2"}, plan.Added)
	assert.ElementsMatch(t, []string{"in", "out"}, plan.Unchanged)

	in, ok := r.Current().Node("in")
	require.True(t, ok)
	assert.Len(t, in.Downstream(), 2)
}

func TestApplyKeepsUnchangedNodeInstanceAcrossReload(t *testing.T) {
	r := newReloader(t)
	require.NoError(t, r.Bootstrap(docFromYAML(t, `
sources:
  in:
    type: test_emit_forever
sinks:
  out:
    type: test_outcome
    inputs: [in]
`)))
	before, _ := r.Current().Node("out")

	_, err := r.Apply(docFromYAML(t, `
sources:
  in:
    type: test_emit_forever
sinks:
  out:
    type: test_outcome
    inputs: [in]
  out2:
    type: test_outcome
    inputs: [in]
`))
	require.NoError(t, err)

	after, _ := r.Current().Node("out")
	assert.Same(t, before, after)
}

func TestApplyRemovesDroppedComponent(t *testing.T) {
	r := newReloader(t)
	require.NoError(t, r.Bootstrap(docFromYAML(t, `
sources:
  in:
    type: test_emit_forever
sinks:
  out:
    type: test_outcome
    inputs: [in]
  doomed:
    type: test_outcome
    inputs: [in]
`)))

	plan, err := r.Apply(docFromYAML(t, `
sources:
  in:
    type: test_emit_forever
sinks:
  out:
    type: test_outcome
    inputs: [in]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"doomed"}, plan.Removed)

	_, ok := r.Current().Node("doomed")
	assert.False(t, ok)

	in, _ := r.Current().Node("in")
	require.Len(t, in.Downstream(), 1)
	assert.Equal(t, "out", in.Downstream()[0].Key)
}

func TestApplyDoesNotReopenAnUnchangedDiskBuffer(t *testing.T) {
	r := newReloader(t)
	require.NoError(t, r.Bootstrap(docFromYAML(t, `
sources:
  in:
    type: test_emit_forever
sinks:
  out:
    type: test_outcome
    buffer:
      type: disk
    inputs: [in]
`)))
	before, ok := r.Current().Node("out")
	require.True(t, ok)
	beforeBuf := before.Input

	_, err := r.Apply(docFromYAML(t, `
sources:
  in:
    type: test_emit_forever
sinks:
  out:
    type: test_outcome
    buffer:
      type: disk
    inputs: [in]
  out2:
    type: test_outcome
    inputs: [in]
`))
	require.NoError(t, err)

	after, ok := r.Current().Node("out")
	require.True(t, ok)
	// Same Node instance, and critically the same *buffer.Disk: Apply must never have
	// opened a second disk buffer at "out"'s segment directory alongside this live one.
	assert.Same(t, before, after)
	assert.Same(t, beforeBuf, after.Input)
}

func TestApplyRollsBackOnInvalidDocument(t *testing.T) {
	r := newReloader(t)
	doc := docFromYAML(t, `
sources:
  in:
    type: test_emit_forever
sinks:
  out:
    type: test_outcome
    inputs: [in]
`)
	require.NoError(t, r.Bootstrap(doc))
	live := r.Current()

	_, err := r.Apply(docFromYAML(t, `
sinks:
  out:
    type: test_outcome
    inputs: [nonexistent]
`))
	require.Error(t, err)
	assert.Same(t, live, r.Current())
}
