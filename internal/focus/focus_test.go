package focus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindowEmpty(t *testing.T) {
	require.True(t, Window{}.Empty())
	require.False(t, Window{ResourceName: "firefox"}.Empty())
	require.False(t, Window{PID: 42}.Empty())
}

func TestReceiverUpdatePublishesLatestWins(t *testing.T) {
	ch := make(chan Window, 1)
	r := &receiver{updates: ch}

	require.Nil(t, r.Update("org.mozilla.firefox", "firefox", "Firefox", 1234))

	select {
	case w := <-ch:
		require.Equal(t, Window{
			DesktopFile:   "org.mozilla.firefox",
			ResourceName:  "firefox",
			ResourceClass: "Firefox",
			PID:           1234,
		}, w)
	default:
		t.Fatal("expected a published window update")
	}
}

func TestReceiverUpdateZeroesNonPositivePID(t *testing.T) {
	ch := make(chan Window, 1)
	r := &receiver{updates: ch}

	require.Nil(t, r.Update("", "", "", 0))
	w := <-ch
	require.Equal(t, uint32(0), w.PID)
}

func TestSendLatestOverwritesPending(t *testing.T) {
	ch := make(chan Window, 1)
	sendLatest(ch, Window{ResourceName: "a"})
	sendLatest(ch, Window{ResourceName: "b"})

	w := <-ch
	require.Equal(t, "b", w.ResourceName)

	select {
	case <-ch:
		t.Fatal("expected channel to be empty after one receive")
	default:
	}
}

func TestKwinScriptContentReferencesBusIdentifiers(t *testing.T) {
	content := kwinScriptContent()
	require.Contains(t, content, busName)
	require.Contains(t, content, objectPath)
	require.Contains(t, content, "workspace.windowActivated.connect")
}
