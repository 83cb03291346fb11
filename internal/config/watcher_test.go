package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchTriggersReloadOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reload := make(chan struct{}, 4)
	selfWrite := make(chan struct{}, 4)

	go Watch(ctx, path, reload, selfWrite, nil)
	time.Sleep(50 * time.Millisecond) // let the watcher register the directory

	require.NoError(t, os.WriteFile(path, []byte("device.serial = \"x\"\n"), 0o600))

	select {
	case <-reload:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a reload signal after external write")
	}
}

func TestWatchSuppressesReloadAfterSelfWriteToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reload := make(chan struct{}, 4)
	selfWrite := make(chan struct{}, 4)

	go Watch(ctx, path, reload, selfWrite, nil)
	time.Sleep(50 * time.Millisecond)

	selfWrite <- struct{}{}
	require.NoError(t, os.WriteFile(path, []byte("device.serial = \"y\"\n"), 0o600))

	select {
	case <-reload:
		t.Fatal("expected the self-write token to suppress this reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchIgnoresUnrelatedFilesInDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reload := make(chan struct{}, 4)
	selfWrite := make(chan struct{}, 4)

	go Watch(ctx, path, reload, selfWrite, nil)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o600))

	select {
	case <-reload:
		t.Fatal("expected unrelated file writes to be ignored")
	case <-time.After(300 * time.Millisecond):
	}
}
