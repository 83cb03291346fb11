// Package audio owns the connection to the PulseAudio-compatible sound
// server: a live snapshot of sinks, sources, and application streams, and
// the commands that change their volume and mute state.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// NotificationKind discriminates an outgoing Notification.
type NotificationKind int

const (
	Connected NotificationKind = iota
	Disconnected
	StateSnapshot
)

// Notification is emitted by Client on its Notifications channel.
type Notification struct {
	Kind     NotificationKind
	Snapshot Snapshot // valid when Kind == StateSnapshot
}

// CommandKind discriminates an incoming Command.
type CommandKind int

const (
	CmdSetVolume CommandKind = iota
	CmdSetMute
	CmdToggleMute
)

// TargetKind identifies which kind of object a Command.TargetIndex refers to.
type TargetKind int

const (
	TargetSink TargetKind = iota
	TargetSource
	TargetSinkInput
)

// Command is a request to change a sink/source/sink-input's volume or
// mute state.
type Command struct {
	Kind        CommandKind
	TargetKind  TargetKind
	TargetIndex uint32
	Volume      Volume // valid when Kind == CmdSetVolume
	Mute        bool   // valid when Kind == CmdSetMute
}

const (
	connectBackoffInitial = time.Second
	connectBackoffCap     = 4 * time.Second
	resetAfterUptime      = 30 * time.Second
	coalesceTick          = 20 * time.Millisecond
)

// Client owns one PulseAudio mainloop goroutine: it connects with
// exponential backoff, subscribes to server-state changes, coalesces
// bursts of subscription events into a single Snapshot per 20ms tick, and
// executes SetVolume/SetMute commands handed to it on Commands.
type Client struct {
	Commands      chan Command
	Notifications chan Notification

	logger *slog.Logger
}

// New allocates a Client with the bounded depth-32 command and
// notification channels spec.md §4.4 mandates.
func New(logger *slog.Logger) *Client {
	return &Client{
		Commands:      make(chan Command, 32),
		Notifications: make(chan Notification, 32),
		logger:        logger,
	}
}

// Run drives the reconnect loop until ctx is canceled.
func (c *Client) Run(ctx context.Context) {
	backoff := connectBackoffInitial

	for ctx.Err() == nil {
		connectedAt := time.Now()
		err := c.runSession(ctx)
		uptime := time.Since(connectedAt)

		select {
		case c.Notifications <- Notification{Kind: Disconnected}:
		case <-ctx.Done():
			return
		}

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.logf("audio session ended", "error", err.Error())
		}

		if uptime > resetAfterUptime {
			backoff = connectBackoffInitial
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > connectBackoffCap {
			backoff = connectBackoffCap
		}
	}
}

// runSession connects once, runs until the connection drops or ctx is
// canceled, and returns the terminal error (nil on clean shutdown).
func (c *Client) runSession(ctx context.Context) error {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("pcpaneld"),
		pulse.ClientApplicationIconName("audio-card"),
	)
	if err != nil {
		return fmt.Errorf("connect audio server: %w", err)
	}
	defer client.Close()

	dirty := make(chan struct{}, 1)
	markDirty := func() {
		select {
		case dirty <- struct{}{}:
		default:
		}
	}

	// jfreymuth/pulse deliberately exposes no high-level subscription API;
	// RawRequest is its escape hatch for everything the wrapper doesn't
	// cover natively, same as the introspection calls below. Indications
	// (the asynchronous SubscribeEvent messages the server pushes outside
	// any reply) surface through the client's raw callback hook.
	client.Callback = func(msg interface{}) {
		if _, ok := msg.(*pulseproto.SubscribeEvent); ok {
			markDirty()
		}
	}

	mask := pulseproto.SubscriptionMaskSink |
		pulseproto.SubscriptionMaskSource |
		pulseproto.SubscriptionMaskSinkInput |
		pulseproto.SubscriptionMaskServer

	if err := client.RawRequest(&pulseproto.Subscribe{Mask: mask}, nil); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	select {
	case c.Notifications <- Notification{Kind: Connected}:
	case <-ctx.Done():
		return nil
	}
	markDirty() // publish one snapshot immediately on connect

	ticker := time.NewTicker(coalesceTick)
	defer ticker.Stop()

	errCh := make(chan error, 1)
	client.Callback = wrapCallback(client.Callback, func(err error) {
		select {
		case errCh <- err:
		default:
		}
	})

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case cmd := <-c.Commands:
			c.execute(client, cmd)
		case <-ticker.C:
			select {
			case <-dirty:
				snapshot, err := fetchSnapshot(client)
				if err != nil {
					return fmt.Errorf("fetch snapshot: %w", err)
				}
				select {
				case c.Notifications <- Notification{Kind: StateSnapshot, Snapshot: snapshot}:
				case <-ctx.Done():
					return nil
				}
			default:
			}
		}
	}
}

// wrapCallback composes the subscription-dirty callback with a
// connection-error observer: every message is passed to inner, and a
// message that is itself an error is additionally passed to onErr.
func wrapCallback(inner func(interface{}), onErr func(error)) func(interface{}) {
	return func(msg interface{}) {
		if inner != nil {
			inner(msg)
		}
		if err, ok := msg.(error); ok {
			onErr(err)
		}
	}
}

func (c *Client) execute(client *pulse.Client, cmd Command) {
	var err error
	switch cmd.Kind {
	case CmdSetVolume:
		err = setVolume(client, cmd.TargetKind, cmd.TargetIndex, cmd.Volume)
	case CmdSetMute:
		err = setMute(client, cmd.TargetKind, cmd.TargetIndex, cmd.Mute)
	case CmdToggleMute:
		err = toggleMute(client, cmd.TargetKind, cmd.TargetIndex)
	}
	if err != nil {
		c.logf("audio command failed", "error", err.Error())
	}
}

// volumeToServer converts a normalized Volume to the server's native
// per-channel volume unit using its perceptual (cube-law) scale, the
// inverse of volumeFromServer.
func volumeToServer(v Volume) uint32 {
	normalized := v.Get()
	cubed := normalized * normalized * normalized
	return uint32(cubed * float64(pulseproto.VolumeNorm))
}

func volumeFromServer(raw uint32) Volume {
	normalized := float64(raw) / float64(pulseproto.VolumeNorm)
	if normalized < 0 {
		normalized = 0
	}
	cubeRoot := cbrt(normalized)
	return NewVolume(cubeRoot)
}

func cbrt(x float64) float64 {
	return math.Cbrt(x)
}

func setVolume(client *pulse.Client, kind TargetKind, index uint32, v Volume) error {
	raw := volumeToServer(v)
	cvolume := pulseproto.ChannelVolumes{raw, raw}

	switch kind {
	case TargetSink:
		return client.RawRequest(&pulseproto.SetSinkVolume{SinkIndex: index, ChannelVolumes: cvolume}, nil)
	case TargetSource:
		return client.RawRequest(&pulseproto.SetSourceVolume{SourceIndex: index, ChannelVolumes: cvolume}, nil)
	case TargetSinkInput:
		return client.RawRequest(&pulseproto.SetSinkInputVolume{SinkInputIndex: index, ChannelVolumes: cvolume}, nil)
	default:
		return fmt.Errorf("unknown target kind %d", kind)
	}
}

func setMute(client *pulse.Client, kind TargetKind, index uint32, mute bool) error {
	switch kind {
	case TargetSink:
		return client.RawRequest(&pulseproto.SetSinkMute{SinkIndex: index, Mute: mute}, nil)
	case TargetSource:
		return client.RawRequest(&pulseproto.SetSourceMute{SourceIndex: index, Mute: mute}, nil)
	case TargetSinkInput:
		return client.RawRequest(&pulseproto.SetSinkInputMute{SinkInputIndex: index, Mute: mute}, nil)
	default:
		return fmt.Errorf("unknown target kind %d", kind)
	}
}

func toggleMute(client *pulse.Client, kind TargetKind, index uint32) error {
	snapshot, err := fetchSnapshot(client)
	if err != nil {
		return err
	}
	current := false
	switch kind {
	case TargetSink:
		for _, s := range snapshot.Sinks {
			if s.Index == index {
				current = s.Muted
			}
		}
	case TargetSource:
		for _, s := range snapshot.Sources {
			if s.Index == index {
				current = s.Muted
			}
		}
	case TargetSinkInput:
		for _, s := range snapshot.SinkInputs {
			if s.Index == index {
				current = s.Muted
			}
		}
	}
	return setMute(client, kind, index, !current)
}

// fetchSnapshot issues the four introspection queries and assembles a
// coherent Snapshot. Unlike the original's callback-driven pending-count
// barrier, Go's straight-line RawRequest calls already serialize on this
// goroutine, so no separate counter is needed to know when all four have
// landed.
func fetchSnapshot(client *pulse.Client) (Snapshot, error) {
	var serverInfo pulseproto.GetServerInfoReply
	if err := client.RawRequest(&pulseproto.GetServerInfo{}, &serverInfo); err != nil {
		return Snapshot{}, fmt.Errorf("server info: %w", err)
	}

	var sinks pulseproto.GetSinkInfoListReply
	if err := client.RawRequest(&pulseproto.GetSinkInfoList{}, &sinks); err != nil {
		return Snapshot{}, fmt.Errorf("sink list: %w", err)
	}

	var sources pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sources); err != nil {
		return Snapshot{}, fmt.Errorf("source list: %w", err)
	}

	var sinkInputs pulseproto.GetSinkInputInfoListReply
	if err := client.RawRequest(&pulseproto.GetSinkInputInfoList{}, &sinkInputs); err != nil {
		return Snapshot{}, fmt.Errorf("sink input list: %w", err)
	}

	snapshot := Snapshot{
		DefaultSinkName:   serverInfo.DefaultSinkName,
		DefaultSourceName: serverInfo.DefaultSourceName,
	}

	for _, s := range sinks {
		if s == nil {
			continue
		}
		snapshot.Sinks = append(snapshot.Sinks, SinkInfo{
			Index:       s.SinkIndex,
			Name:        s.SinkName,
			Description: s.Device,
			Volume:      volumeFromServer(avgVolume(s.ChannelVolumes)),
			Muted:       s.Mute,
			Channels:    uint8(len(s.ChannelVolumes)),
		})
	}

	for _, s := range sources {
		if s == nil {
			continue
		}
		snapshot.Sources = append(snapshot.Sources, SourceInfo{
			Index:       s.SourceIndex,
			Name:        s.SourceName,
			Description: s.Device,
			Volume:      volumeFromServer(avgVolume(s.ChannelVolumes)),
			Muted:       s.Mute,
			Channels:    uint8(len(s.ChannelVolumes)),
		})
	}

	for _, s := range sinkInputs {
		if s == nil {
			continue
		}
		binary := s.Properties["application.process.binary"].String()
		flatpak := s.Properties["application.flatpak.id"].String()
		var pid uint32
		if raw := s.Properties["application.process.id"].String(); raw != "" {
			pid = parseUint32(raw)
		}
		snapshot.SinkInputs = append(snapshot.SinkInputs, SinkInputInfo{
			Index:     s.SinkInputIndex,
			Name:      s.MediaName,
			Binary:    binary,
			FlatpakID: flatpak,
			PID:       pid,
			SinkIndex: s.SinkIndex,
			Volume:    volumeFromServer(avgVolume(s.ChannelVolumes)),
			Muted:     s.Muted,
			Channels:  uint8(len(s.ChannelVolumes)),
		})
	}

	return snapshot, nil
}

func avgVolume(cv pulseproto.ChannelVolumes) uint32 {
	if len(cv) == 0 {
		return 0
	}
	var sum uint64
	for _, v := range cv {
		sum += uint64(v)
	}
	return uint32(sum / uint64(len(cv)))
}

func parseUint32(s string) uint32 {
	var n uint32
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + uint32(r-'0')
	}
	return n
}

func (c *Client) logf(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, args...)
}
