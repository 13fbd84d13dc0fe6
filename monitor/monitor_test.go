package monitor

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLog(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return buf
}

func appendLine(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(text)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestRelayStartsAtOffset(t *testing.T) {
	buf := captureLog(t)
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, os.WriteFile(path, []byte("old line\n"), 0o644))

	m, err := NewMonitor(path, int64(len("old line\n")))
	require.NoError(t, err)
	m.Relay("[renderer test]")
	defer m.Stop()

	appendLine(t, path, "new line\n")

	assert.Eventually(t, func() bool {
		return buf.String() == "[renderer test] new line\n"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestRelayDrainsToEOF(t *testing.T) {
	buf := captureLog(t)
	path := filepath.Join(t.TempDir(), "out.log")
	f, err := os.Create(path)
	require.NoError(t, err)

	m, err := NewMonitor(path, 0)
	require.NoError(t, err)
	m.Relay("[renderer test]")

	_, err = f.WriteString("first\n\nsecond\n")
	require.NoError(t, err)
	f.Close()

	m.Drain()
	assert.Equal(t, "[renderer test] first\n[renderer test] second\n", buf.String())
}

func TestDrainRelaysLinesWrittenAfterLastPoll(t *testing.T) {
	buf := captureLog(t)
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	m, err := NewMonitor(path, 0)
	require.NoError(t, err)
	m.Relay("[renderer test]")

	appendLine(t, path, "started\n")
	require.Eventually(t, func() bool {
		return buf.String() == "[renderer test] started\n"
	}, 5*time.Second, 20*time.Millisecond)

	// the writer's last words land between two polls
	time.Sleep(300 * time.Millisecond)
	appendLine(t, path, "highlight 1\nbye\n")
	m.Drain()

	assert.Equal(t, "[renderer test] started\n[renderer test] highlight 1\n[renderer test] bye\n", buf.String())
}

func TestDrainWithoutRelay(t *testing.T) {
	buf := captureLog(t)
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, os.WriteFile(path, []byte("line\n"), 0o644))

	m, err := NewMonitor(path, -1)
	require.NoError(t, err)
	m.Drain()

	assert.Empty(t, buf.String())
}
