package verrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfUnwrapsWrappedError(t *testing.T) {
	base := New(KindAdapterPermanent, "sink.s3", errors.New("403 forbidden"))
	wrapped := fmt.Errorf("topology: start failed: %w", base)

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindAdapterPermanent, kind)
}

func TestConfigKindExitsWith78(t *testing.T) {
	assert.Equal(t, 78, KindConfig.ExitCode())
	assert.Equal(t, 1, KindBuffer.ExitCode())
}

func TestMultiErrorExitCodeIsConfigOnlyWhenAllConfig(t *testing.T) {
	var m MultiError
	m.Add(New(KindConfig, "source.a", errors.New("missing type")))
	m.Add(New(KindConfig, "sink.b", errors.New("unknown field")))
	assert.Equal(t, 78, m.ExitCode())

	m.Add(New(KindAdapterPermanent, "sink.c", errors.New("bad credentials")))
	assert.Equal(t, 1, m.ExitCode())
}

func TestMultiErrorOrNilReturnsNilWhenEmpty(t *testing.T) {
	var m MultiError
	assert.Nil(t, m.ErrOrNil())
	m.Add(errors.New("boom"))
	assert.NotNil(t, m.ErrOrNil())
}
