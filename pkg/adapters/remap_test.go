package adapters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorflow/vector/pkg/component"
	"github.com/vectorflow/vector/pkg/event"
)

func TestRemapSetsLiteralFields(t *testing.T) {
	tr, err := newRemap("remap.test", component.Raw{
		"set": map[string]any{"env": "prod"},
	})
	require.NoError(t, err)
	mapper := tr.(component.Mapper)

	in := event.Synthesize(&event.LogBody{Fields: map[string]any{"message": "hi"}}, time.Now())
	out, err := mapper.Apply(in)
	require.NoError(t, err)
	require.Len(t, out, 1)

	body := out[0].(*event.LogBody)
	assert.Equal(t, "prod", body.Fields["env"])
	assert.Equal(t, "hi", body.Fields["message"])
}

func TestRemapDropsMatchingEvents(t *testing.T) {
	tr, err := newRemap("remap.test", component.Raw{
		"drop_if": map[string]any{"level": "debug"},
	})
	require.NoError(t, err)
	mapper := tr.(component.Mapper)

	in := event.Synthesize(&event.LogBody{Fields: map[string]any{"level": "debug"}}, time.Now())
	out, err := mapper.Apply(in)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestRemapPassesThroughNonLogVariants(t *testing.T) {
	tr, err := newRemap("remap.test", component.Raw{
		"set": map[string]any{"env": "prod"},
	})
	require.NoError(t, err)
	mapper := tr.(component.Mapper)

	in := event.Synthesize(&event.MetricBody{Name: "requests"}, time.Now())
	out, err := mapper.Apply(in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Same(t, in.Body(), out[0])
}
