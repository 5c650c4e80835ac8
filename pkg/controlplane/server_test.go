package controlplane

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorflow/vector/pkg/config"
	"github.com/vectorflow/vector/pkg/events"
	"github.com/vectorflow/vector/pkg/reload"
	"github.com/vectorflow/vector/pkg/runtime"

	_ "github.com/vectorflow/vector/internal/topotest"
)

func startServer(t *testing.T) (*Client, *reload.Reloader) {
	t.Helper()
	dataDir := t.TempDir()
	rt := runtime.New(context.Background())
	tap := events.NewBroker()
	tap.Start()
	t.Cleanup(tap.Stop)

	reloader := reload.New(rt.Context(), rt, dataDir, 100*time.Millisecond, tap, nil)
	doc := docFromYAML(t, `
sources:
  in:
    type: test_emit_forever
sinks:
  out:
    type: test_outcome
    inputs: [in]
`)
	require.NoError(t, reloader.Bootstrap(doc))

	srv := New(reloader, rt, tap)
	socket := filepath.Join(dataDir, "control.sock")
	ctx, cancel := context.WithCancel(context.Background())
	go srv.ListenAndServe(ctx, socket)
	t.Cleanup(cancel)

	waitForSocket(t, socket)

	client, err := Dial(socket)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, reloader
}

func waitForSocket(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("control socket never appeared at %s", path)
}

func docFromYAML(t *testing.T, yamlText string) *config.Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlText), 0o644))
	doc, err := config.Load(path)
	require.NoError(t, err)
	return doc
}

func TestStatusReportsEveryComponent(t *testing.T) {
	client, _ := startServer(t)

	resp, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.Len(t, resp.Components, 2)
}

func TestReloadAddsAComponentOverTheWire(t *testing.T) {
	client, reloader := startServer(t)
	_ = reloader

	path := filepath.Join(t.TempDir(), "new.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
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
`), 0o644))

	resp, err := client.Reload(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.Equal(t, []string{"out2"}, resp.Added)
}

func TestTapStreamsSamplesFromTheRunningTopology(t *testing.T) {
	client, _ := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	samples, err := client.Tap(ctx, "")
	require.NoError(t, err)

	select {
	case sample := <-samples:
		require.NotNil(t, sample)
		assert.Equal(t, "in", sample.Component)
	case <-ctx.Done():
		t.Fatal("no tap sample received")
	}
}

func TestShutdownCancelsTheRuntime(t *testing.T) {
	// A zero-capacity topology still needs a live runtime to cancel.
	dataDir := t.TempDir()
	rt := runtime.New(context.Background())
	reloader := reload.New(rt.Context(), rt, dataDir, 100*time.Millisecond, nil, nil)
	require.NoError(t, reloader.Bootstrap(&config.Document{}))

	srv := New(reloader, rt, nil)
	socket := filepath.Join(dataDir, "control.sock")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.ListenAndServe(ctx, socket)
	waitForSocket(t, socket)

	client, err := Dial(socket)
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Shutdown(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, resp.Accepted)

	select {
	case <-rt.Done():
	case <-time.After(time.Second):
		t.Fatal("runtime never cancelled")
	}
}
