//go:build integration

package audio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestClientRunConnectsToLiveServer exercises the real reconnect loop
// against a running PulseAudio/PipeWire-pulse server; it requires a user
// session bus and is excluded from the default test run.
func TestClientRunConnectsToLiveServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client := New(nil)
	go client.Run(ctx)

	select {
	case notif := <-client.Notifications:
		require.Equal(t, Connected, notif.Kind)
	case <-ctx.Done():
		t.Fatal("timed out waiting for Connected notification")
	}
}
