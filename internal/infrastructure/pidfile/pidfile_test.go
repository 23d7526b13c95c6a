package pidfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_WritesCurrentPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	p := New(path)

	require.NoError(t, p.Acquire())

	pid, running := p.Running()
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, p.Release())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAcquire_FailsWhileOwnerAlive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644))

	err := New(path).Acquire()

	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestAcquire_ReplacesGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0644))

	require.NoError(t, New(path).Acquire())
}

func TestRelease_MissingFileIsNotAnError(t *testing.T) {
	assert.NoError(t, New(filepath.Join(t.TempDir(), "absent.pid")).Release())
}
