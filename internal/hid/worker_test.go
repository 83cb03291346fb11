package hid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestWorker(mock *MockTransport) *Worker {
	return &Worker{
		ConfigSerial: "",
		Channels:     NewChannels(),
		open: func(string) (Transport, error) {
			return mock, nil
		},
	}
}

func TestWorkerSendsInitOnConnect(t *testing.T) {
	mock := NewMockTransport()
	mock.QueueTimeout() // drainStaleReports: nothing pending
	mock.QueueTimeout() // main read loop: no data yet

	w := newTestWorker(mock)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	writes := mock.GetWrites()
	require.NotEmpty(t, writes)
	require.Equal(t, byte(0x01), writes[0][0], "first write must be the Init command")
}

func TestWorkerEmitsPositionOnReport(t *testing.T) {
	mock := NewMockTransport()
	report := make([]byte, ReportSize)
	report[0] = 0x01
	report[1] = 3
	report[2] = 200
	mock.QueueTimeout() // drainStaleReports: nothing pending
	mock.QueueRead(report)

	w := newTestWorker(mock)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Run(ctx)

	select {
	case positions := <-w.Channels.Positions:
		require.Equal(t, uint8(200), positions[3])
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for position update")
	}
}

func TestWorkerEmitsButtonOnReport(t *testing.T) {
	mock := NewMockTransport()
	report := make([]byte, ReportSize)
	report[0] = 0x02
	report[1] = 2
	report[2] = 1
	mock.QueueTimeout() // drainStaleReports: nothing pending
	mock.QueueRead(report)

	w := newTestWorker(mock)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Run(ctx)

	select {
	case btn := <-w.Channels.Buttons:
		require.Equal(t, uint8(2), btn.ButtonID)
		require.True(t, btn.Pressed)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for button event")
	}
}

func TestWorkerIgnoresMalformedReportAndContinues(t *testing.T) {
	mock := NewMockTransport()
	mock.QueueTimeout() // drainStaleReports: nothing pending
	bad := make([]byte, ReportSize)
	bad[0] = 0x01
	bad[1] = 50 // out of range
	mock.QueueRead(bad)

	good := make([]byte, ReportSize)
	good[0] = 0x01
	good[1] = 1
	good[2] = 77
	mock.QueueRead(good)

	w := newTestWorker(mock)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Run(ctx)

	select {
	case positions := <-w.Channels.Positions:
		require.Equal(t, uint8(77), positions[1])
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for recovery after malformed report")
	}
}

func TestWorkerSignalsConnectedAfterInit(t *testing.T) {
	mock := NewMockTransport()
	mock.QueueTimeout()

	w := newTestWorker(mock)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Run(ctx)

	select {
	case connected := <-w.Channels.DeviceConnected:
		require.True(t, connected)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for connected=true")
	}
}

func TestWorkerSendsAllOffOnShutdown(t *testing.T) {
	mock := NewMockTransport()
	for i := 0; i < 20; i++ {
		mock.QueueTimeout()
	}

	w := newTestWorker(mock)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	require.True(t, mock.Closed())

	// Init, then the four all-off commands written on cancellation.
	writes := mock.GetWrites()
	require.Len(t, writes, 5)
	for i, cmd := range AllOffSequence() {
		enc := cmd.Encode()
		require.Equal(t, enc[:], writes[i+1])
	}
}
