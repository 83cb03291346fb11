package hid

import (
	"context"
	"log/slog"
	"time"
)

// ButtonEvent is sent from the device worker to the engine on button
// press/release.
type ButtonEvent struct {
	ButtonID uint8
	Pressed  bool
}

// DeviceEventKind discriminates a hotplug notification.
type DeviceEventKind int

const (
	DeviceAdded DeviceEventKind = iota
	DeviceRemoved
)

// Channels bundles the worker's cross-goroutine communication surface.
// Positions is a latest-wins (depth-1, overwrite-on-send) channel of the
// full 9-element snapshot; Buttons is a reliable depth-32 channel;
// Commands is a bounded depth-64 queue whose engine-side sends do not
// block (a command is dropped when the queue is full); DeviceConnected is a
// latest-wins boolean; DeviceEvents is the bounded depth-4 drop-newest
// hotplug channel (owned by the caller, fed by RunHotplugMonitor).
type Channels struct {
	Positions       chan [9]uint8
	Buttons         chan ButtonEvent
	Commands        chan Command
	DeviceConnected chan bool
	DeviceEvents    chan DeviceEventKind
}

// NewChannels allocates the channel set with the bounds spec.md §5
// mandates (positions/connected use depth 1 and are drained-then-sent to
// implement latest-wins; buttons and commands are bounded queues, and the
// engine drops a command rather than block when commands is full).
func NewChannels() Channels {
	return Channels{
		Positions:       make(chan [9]uint8, 1),
		Buttons:         make(chan ButtonEvent, 32),
		Commands:        make(chan Command, 64),
		DeviceConnected: make(chan bool, 1),
		DeviceEvents:    make(chan DeviceEventKind, 4),
	}
}

// sendLatest overwrites a depth-1 channel's pending value with v, never
// blocking: it drains a stale value first if the channel is full.
func sendLatest[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// openFunc opens a transport by serial; Worker.open is overridable for tests.
type openFunc func(serial string) (Transport, error)

// Worker runs the outer device lifecycle: open -> init -> read loop ->
// reconnect on disconnect, per spec.md §4.3.
type Worker struct {
	ConfigSerial string
	Channels     Channels
	Logger       *slog.Logger

	open openFunc // overridable in tests
}

// NewWorker builds a Worker using the real go-hid transport.
func NewWorker(configSerial string, ch Channels, logger *slog.Logger) *Worker {
	return &Worker{ConfigSerial: configSerial, Channels: ch, Logger: logger, open: Open}
}

// Run is the outer reconnection loop. It blocks until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	var positions [9]uint8

	for {
		if ctx.Err() != nil {
			return
		}

		transport, err := w.open(w.ConfigSerial)
		if err != nil {
			w.log("device not found", err)
			if !w.waitForDevice(ctx) {
				return
			}
			continue
		}
		w.log("HID device connected", nil, "serial", transport.Serial())

		w.runDeviceSession(ctx, transport)

		sendLatest(w.Channels.DeviceConnected, false)
		w.log("HID device disconnected", nil)
		positions = [9]uint8{}
		sendLatest(w.Channels.Positions, positions)
	}
}

// waitForDevice blocks for a hotplug Added event or a 5s timeout,
// whichever comes first. Returns false if ctx was canceled meanwhile.
func (w *Worker) waitForDevice(ctx context.Context) bool {
	timer := time.NewTimer(5 * time.Second)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case evt := <-w.Channels.DeviceEvents:
			if evt == DeviceAdded {
				return true
			}
		case <-timer.C:
			return true
		}
	}
}

func (w *Worker) runDeviceSession(ctx context.Context, transport Transport) {
	defer transport.Close()

	init := Command{Kind: CmdInit}.Encode()
	if err := transport.Write(init[:]); err != nil {
		w.log("failed to send init command", err)
		return
	}

	drainStaleReports(transport)
	sendLatest(w.Channels.DeviceConnected, true)

	var positions [9]uint8
	buf := make([]byte, ReportSize)

	for {
		if ctx.Err() != nil {
			sendAllOff(transport)
			return
		}

		// Drain outgoing commands, non-blocking.
	drainCommands:
		for {
			select {
			case cmd := <-w.Channels.Commands:
				enc := cmd.Encode()
				if err := transport.Write(enc[:]); err != nil {
					w.log("failed to write HID command", err)
					return
				}
			default:
				break drainCommands
			}
		}

		n, err := transport.ReadTimeout(buf, 100*time.Millisecond)
		if err != nil {
			w.log("HID read error", err)
			return
		}
		if n == 0 {
			continue
		}

		event, err := ParseEvent(buf[:n])
		if err != nil {
			w.log("ignoring malformed HID report", err)
			continue
		}

		switch event.Kind {
		case EventPosition:
			if int(event.ControlID) < len(positions) {
				positions[event.ControlID] = event.Value
				sendLatest(w.Channels.Positions, positions)
			}
		case EventButton:
			select {
			case w.Channels.Buttons <- ButtonEvent{ButtonID: event.ControlID, Pressed: event.Pressed}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// drainStaleReports discards the burst of position reports the device
// sends in response to Init, for up to 500ms (50ms per read attempt), so
// they don't register as false "changed" events in the engine.
func drainStaleReports(transport Transport) {
	deadline := time.Now().Add(500 * time.Millisecond)
	buf := make([]byte, ReportSize)
	for time.Now().Before(deadline) {
		n, err := transport.ReadTimeout(buf, 50*time.Millisecond)
		if err != nil || n == 0 {
			return
		}
	}
}

func sendAllOff(transport Transport) {
	for _, cmd := range AllOffSequence() {
		enc := cmd.Encode()
		_ = transport.Write(enc[:])
	}
}

func (w *Worker) log(msg string, err error, args ...any) {
	if w.Logger == nil {
		return
	}
	if err != nil {
		args = append(args, "error", err.Error())
		w.Logger.Debug(msg, args...)
		return
	}
	w.Logger.Debug(msg, args...)
}
