package hostsock

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/miketth/vrboard/pkg/keyboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordedTarget struct {
	calls []string
	hits  []keyboard.PointerHit
}

func (r *recordedTarget) OnPointer(hit keyboard.PointerHit, pressed bool) {
	r.calls = append(r.calls, "pointer")
	r.hits = append(r.hits, hit)
}

func (r *recordedTarget) OnHover(hit keyboard.PointerHit) bool {
	r.calls = append(r.calls, "hover")
	return true
}

func (r *recordedTarget) OnScroll(keyboard.PointerHit, float32) { r.calls = append(r.calls, "scroll") }
func (r *recordedTarget) OnLeft(int)                            { r.calls = append(r.calls, "left") }
func (r *recordedTarget) Pause()                                { r.calls = append(r.calls, "pause") }
func (r *recordedTarget) Resume()                               { r.calls = append(r.calls, "resume") }

func TestEventApply(t *testing.T) {
	target := &recordedTarget{}

	for _, typ := range []string{"pointer", "hover", "scroll", "left", "pause", "resume"} {
		assert.True(t, Event{Type: typ}.Apply(target))
	}
	assert.False(t, Event{Type: "teleport"}.Apply(target))

	assert.Equal(t, []string{"pointer", "hover", "scroll", "left", "pause", "resume"}, target.calls)
}

func TestEventButtons(t *testing.T) {
	assert.Equal(t, keyboard.ButtonLeft, Event{}.hit().Button)
	assert.Equal(t, keyboard.ButtonRight, Event{Button: "right"}.hit().Button)
	assert.Equal(t, keyboard.ButtonMiddle, Event{Button: "middle"}.hit().Button)
}

func startServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir, err := os.MkdirTemp("", "vrboard")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "host.sock")
	// stale file left behind by an earlier run
	require.NoError(t, os.WriteFile(path, nil, 0600))

	s, err := Listen(path, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})

	return s, path
}

func TestServerRoundTrip(t *testing.T) {
	s, path := startServer(t)

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("{\"type\":\"pointer\",\"pointer\":2,\"u\":0.5,\"v\":0.25,\"button\":\"middle\",\"pressed\":true}\nnot json\n{\"type\":\"left\",\"pointer\":2}\n"))
	require.NoError(t, err)

	var events []Event
	for len(events) < 2 {
		select {
		case ev := <-s.Events():
			events = append(events, ev)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for events")
		}
	}

	assert.Equal(t, Event{Type: "pointer", Pointer: 2, U: 0.5, V: 0.25, Button: "middle", Pressed: true}, events[0])
	assert.Equal(t, Event{Type: "left", Pointer: 2}, events[1])

	// the connection was accepted before its events arrived
	require.NoError(t, s.RenderFrame(keyboard.Frame{
		Keys:  []keyboard.KeyView{{Label: []string{"Q"}, W: 1, H: 1, Color: "#1e1e2eff"}},
		Clock: "3:04 PM",
	}))
	s.KeyboardChanged()

	reader := bufio.NewReader(conn)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var frame struct {
		Type  string             `json:"type"`
		Keys  []keyboard.KeyView `json:"keys"`
		Clock string             `json:"clock"`
	}
	line, err := reader.ReadBytes('\n')
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(line, &frame))
	assert.Equal(t, "frame", frame.Type)
	require.Len(t, frame.Keys, 1)
	assert.Equal(t, []string{"Q"}, frame.Keys[0].Label)
	assert.Equal(t, "3:04 PM", frame.Clock)

	line, err = reader.ReadBytes('\n')
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"layout_changed"}`, string(line))
}

func TestRenderWithoutClients(t *testing.T) {
	s, _ := startServer(t)
	assert.NoError(t, s.RenderFrame(keyboard.Frame{}))
}
