// Package engine hosts the single cooperative event loop that owns all
// mutable runtime state: it fans in HID positions and button presses,
// audio-subsystem notifications, focus-tracker updates, control-plane
// requests, and configuration reloads, and dispatches Signal Pipeline +
// Volume Curve + target-resolution policy in response.
package engine

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/nikcident/pcpaneld/internal/audio"
	"github.com/nikcident/pcpaneld/internal/config"
	"github.com/nikcident/pcpaneld/internal/control"
	"github.com/nikcident/pcpaneld/internal/focus"
	"github.com/nikcident/pcpaneld/internal/hid"
	"github.com/nikcident/pcpaneld/internal/ipc"
	"github.com/nikcident/pcpaneld/internal/media"
	"github.com/nikcident/pcpaneld/internal/signal"
)

const (
	execConcurrencyLimit = 8
	execTimeout          = 30 * time.Second
)

// IPCMessage bundles an inbound control-plane request with its one-shot
// reply channel, mirroring the teacher's request/reply-channel pattern.
type IPCMessage struct {
	Request ipc.Request
	Reply   chan ipc.Response
}

// Channels bundles every cross-goroutine endpoint the engine multiplexes.
type Channels struct {
	HID             hid.Channels
	AudioCommands   chan audio.Command
	AudioNotify     chan audio.Notification
	Focus           chan focus.Window
	IPC             chan IPCMessage  // depth 8, block-on-full
	ConfigReload    chan struct{}    // depth 4, block-on-full
	ConfigSelfWrite chan struct{}    // depth 4, block-on-full; engine writes, watcher reads
	Shutdown        chan struct{}    // depth 1; the IPC handler writes on a shutdown request, Run reads
}

// NewChannels allocates the engine-owned channel set (IPC/reload/
// suppression) at the depths spec.md §5 mandates. HID and audio channels
// are allocated by their own packages and threaded in by the caller.
func NewChannels(hidCh hid.Channels, audioCmd chan audio.Command, audioNotify chan audio.Notification) Channels {
	return Channels{
		HID:             hidCh,
		AudioCommands:   audioCmd,
		AudioNotify:     audioNotify,
		Focus:           make(chan focus.Window, 1),
		IPC:             make(chan IPCMessage, 8),
		ConfigReload:    make(chan struct{}, 4),
		ConfigSelfWrite: make(chan struct{}, 4),
		Shutdown:        make(chan struct{}, 1),
	}
}

// state is the mutable data the engine owns exclusively; nothing outside
// the Run goroutine ever touches it.
type state struct {
	cfg        config.Config
	configPath string

	snapshot audio.Snapshot
	curve    audio.Curve

	deviceConnected bool
	audioConnected  bool

	pipelines          map[control.ID]*signal.Pipeline
	lastPositions      [9]uint8
	lastAppliedVolumes map[control.ID]audio.Volume

	focused focus.Window

	dbusConn *dbus.Conn // lazily connected, used for MPRIS
}

func newState(cfg config.Config, configPath string) *state {
	s := &state{
		cfg:                cfg,
		configPath:         configPath,
		curve:              audio.NewCurve(cfg.Signal.VolumeExponent),
		pipelines:          map[control.ID]*signal.Pipeline{},
		lastAppliedVolumes: map[control.ID]audio.Volume{},
	}
	rebuildPipelines(s)
	return s
}

func rebuildPipelines(s *state) {
	s.pipelines = map[control.ID]*signal.Pipeline{}
	for i := uint8(0); i < control.NumKnobs; i++ {
		id := control.ID{Kind: control.Knob, N: i}
		s.pipelines[id] = signal.New(familyParams(s.cfg.Signal.Knob))
	}
	for i := uint8(0); i < control.NumSliders; i++ {
		id := control.ID{Kind: control.Slider, N: i}
		s.pipelines[id] = signal.New(familyParams(s.cfg.Signal.Slider))
	}
}

func familyParams(f config.FamilySignalConfig) signal.Params {
	return signal.Params{
		RollingWindow:  f.RollingWindow,
		DeltaThreshold: uint8(f.DeltaThreshold),
		DebounceMS:     uint64(f.DebounceMS),
	}
}

// Engine drives the central loop.
type Engine struct {
	Channels Channels
	Logger   *slog.Logger
}

// New builds an Engine over the given channel set.
func New(ch Channels, logger *slog.Logger) *Engine {
	return &Engine{Channels: ch, Logger: logger}
}

// Run is the single cooperative multiplex; it blocks until ctx is
// canceled or a shutdown request arrives on Channels.Shutdown, processing
// exactly one branch to completion per iteration.
func (e *Engine) Run(ctx context.Context, cfg config.Config, configPath string) {
	s := newState(cfg, configPath)
	e.sendInitialLEDs(s)

	e.log("engine started")

	for {
		select {
		case <-ctx.Done():
			e.log("engine received shutdown signal")
			if s.dbusConn != nil {
				_ = s.dbusConn.Close()
			}
			e.log("engine stopped")
			return

		case <-e.Channels.Shutdown:
			e.log("engine received IPC shutdown request")
			if s.dbusConn != nil {
				_ = s.dbusConn.Close()
			}
			e.log("engine stopped")
			return

		case positions, ok := <-e.Channels.HID.Positions:
			if !ok {
				continue
			}
			e.handlePositions(s, positions)

		case evt, ok := <-e.Channels.HID.Buttons:
			if !ok {
				continue
			}
			if evt.Pressed {
				e.handleButtonPress(s, evt.ButtonID)
			}

		case n, ok := <-e.Channels.AudioNotify:
			if !ok {
				continue
			}
			e.handleAudioNotification(s, n)

		case msg, ok := <-e.Channels.IPC:
			if !ok {
				continue
			}
			e.handleIPC(s, msg)

		case w, ok := <-e.Channels.Focus:
			if !ok {
				continue
			}
			s.focused = w
			e.log("focused window changed", "resource_name", w.ResourceName, "desktop_file", w.DesktopFile)

		case connected, ok := <-e.Channels.HID.DeviceConnected:
			if !ok {
				continue
			}
			s.deviceConnected = connected
			if connected {
				e.log("device connected, sending LED config")
				for _, p := range s.pipelines {
					p.Reset()
				}
				e.sendInitialLEDs(s)
			} else {
				e.log("device disconnected")
			}

		case _, ok := <-e.Channels.ConfigReload:
			if !ok {
				continue
			}
			e.reloadConfig(s)
		}
	}
}

func (e *Engine) handlePositions(s *state, positions [9]uint8) {
	now := time.Now()
	for i := 0; i < 9; i++ {
		if positions[i] == s.lastPositions[i] {
			continue
		}
		raw := positions[i]
		id, ok := control.FromAnalogID(uint8(i))
		if !ok {
			continue
		}
		pipeline := s.pipelines[id]
		if pipeline == nil {
			pipeline = signal.New(signal.KnobDefaults())
			s.pipelines[id] = pipeline
		}
		processed, emitted := pipeline.Feed(raw, now)
		if !emitted {
			continue
		}
		if vol, ok := e.handlePositionChange(s, id, processed); ok {
			s.lastAppliedVolumes[id] = vol
		}
	}
	s.lastPositions = positions
}

func (e *Engine) handlePositionChange(s *state, id control.ID, processed uint8) (audio.Volume, bool) {
	binding, ok := s.cfg.Binding(id)
	if !ok || binding.Dial == nil {
		return 0, false
	}
	volume := s.curve.HwToVolume(processed)
	e.sendVolumeCommand(s, binding.Dial.Target, volume)
	return volume, true
}

func (e *Engine) handleButtonPress(s *state, buttonID uint8) {
	id, ok := control.FromButtonID(buttonID)
	if !ok {
		return
	}
	binding, ok := s.cfg.Binding(id)
	if !ok || binding.Button == nil {
		return
	}

	switch binding.Button.Type {
	case control.ButtonMute:
		e.sendMuteToggle(s, binding.Button.Target)
	case control.ButtonExec:
		executeCommand(e.Logger, binding.Button.Command)
	case control.ButtonMedia:
		e.dispatchMedia(s, control.MediaCommand(binding.Button.Command))
	}
}

func (e *Engine) dispatchMedia(s *state, cmd control.MediaCommand) {
	conn, err := e.dbusSession(s)
	if err != nil {
		e.logErr("failed to connect session bus for MPRIS command", err)
		return
	}
	if err := media.Send(conn, cmd); err != nil {
		e.logErr("MPRIS command failed", err)
	}
}

func (e *Engine) dbusSession(s *state) (*dbus.Conn, error) {
	if s.dbusConn != nil {
		return s.dbusConn, nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	s.dbusConn = conn
	return conn, nil
}

func (e *Engine) handleAudioNotification(s *state, n audio.Notification) {
	switch n.Kind {
	case audio.Connected:
		s.audioConnected = true
		e.log("audio server connected")
	case audio.Disconnected:
		s.audioConnected = false
		s.snapshot = audio.Snapshot{}
		e.log("audio server disconnected")
	case audio.StateSnapshot:
		oldIndices := make(map[uint32]bool, len(s.snapshot.SinkInputs))
		for _, si := range s.snapshot.SinkInputs {
			oldIndices[si.Index] = true
		}
		var newInputs []audio.SinkInputInfo
		for _, si := range n.Snapshot.SinkInputs {
			if !oldIndices[si.Index] {
				newInputs = append(newInputs, si)
			}
		}
		if len(newInputs) > 0 {
			e.reapplyVolumes(s, newInputs)
		}
		s.snapshot = n.Snapshot
	}
}

// reapplyVolumes re-sends each control's last-applied volume to any
// newly appeared sink-input that its target resolves to, so "slider set
// to 30%" survives the app restarting its audio stream.
func (e *Engine) reapplyVolumes(s *state, newInputs []audio.SinkInputInfo) {
	for id, volume := range s.lastAppliedVolumes {
		binding, ok := s.cfg.Binding(id)
		if !ok || binding.Dial == nil {
			continue
		}
		target := binding.Dial.Target

		switch target.Type {
		case control.TargetApp:
			for _, si := range newInputs {
				if target.Matcher.Matches(matcherProps(si)) {
					e.sendSinkInputVolume(si, volume)
				}
			}
		case control.TargetFocusedApp:
			if s.focused.Empty() {
				continue
			}
			for _, si := range dedupFocused(s.focused, newInputs) {
				e.sendSinkInputVolume(si, volume)
			}
		}
	}
}

func matcherProps(si audio.SinkInputInfo) control.AppProperties {
	return control.AppProperties{Binary: si.Binary, Name: si.Name, FlatpakID: si.FlatpakID}
}

func (e *Engine) sendSinkInputVolume(si audio.SinkInputInfo, volume audio.Volume) {
	select {
	case e.Channels.AudioCommands <- audio.Command{
		Kind: audio.CmdSetVolume, TargetKind: audio.TargetSinkInput,
		TargetIndex: si.Index, Volume: volume,
	}:
	default:
		e.log("audio command dropped: channel full")
	}
}

// resolvedTarget is the result of resolving an AudioTarget against the
// current snapshot.
type resolvedTarget struct {
	sink       *audio.SinkInfo
	source     *audio.SourceInfo
	sinkInputs []audio.SinkInputInfo
}

func (e *Engine) resolveTarget(s *state, target control.AudioTarget) (resolvedTarget, bool) {
	switch target.Type {
	case control.TargetDefaultOutput:
		for i := range s.snapshot.Sinks {
			if s.snapshot.Sinks[i].Name == s.snapshot.DefaultSinkName {
				return resolvedTarget{sink: &s.snapshot.Sinks[i]}, true
			}
		}
		return resolvedTarget{}, false
	case control.TargetDefaultInput:
		for i := range s.snapshot.Sources {
			if s.snapshot.Sources[i].Name == s.snapshot.DefaultSourceName {
				return resolvedTarget{source: &s.snapshot.Sources[i]}, true
			}
		}
		return resolvedTarget{}, false
	case control.TargetApp:
		var matches []audio.SinkInputInfo
		for _, si := range s.snapshot.SinkInputs {
			if target.Matcher.Matches(matcherProps(si)) {
				matches = append(matches, si)
			}
		}
		return resolvedTarget{sinkInputs: matches}, len(matches) > 0
	case control.TargetFocusedApp:
		if s.focused.Empty() {
			return resolvedTarget{}, false
		}
		matches := dedupFocused(s.focused, s.snapshot.SinkInputs)
		return resolvedTarget{sinkInputs: matches}, len(matches) > 0
	default:
		return resolvedTarget{}, false
	}
}

func (e *Engine) sendVolumeCommand(s *state, target control.AudioTarget, volume audio.Volume) {
	resolved, ok := e.resolveTarget(s, target)
	if !ok {
		return
	}
	switch {
	case resolved.sink != nil:
		e.sendAudio(audio.Command{Kind: audio.CmdSetVolume, TargetKind: audio.TargetSink, TargetIndex: resolved.sink.Index, Volume: volume})
	case resolved.source != nil:
		e.sendAudio(audio.Command{Kind: audio.CmdSetVolume, TargetKind: audio.TargetSource, TargetIndex: resolved.source.Index, Volume: volume})
	default:
		for _, si := range resolved.sinkInputs {
			e.sendAudio(audio.Command{Kind: audio.CmdSetVolume, TargetKind: audio.TargetSinkInput, TargetIndex: si.Index, Volume: volume})
		}
	}
}

func (e *Engine) sendMuteToggle(s *state, target control.AudioTarget) {
	resolved, ok := e.resolveTarget(s, target)
	if !ok {
		return
	}
	switch {
	case resolved.sink != nil:
		e.sendAudio(audio.Command{Kind: audio.CmdToggleMute, TargetKind: audio.TargetSink, TargetIndex: resolved.sink.Index})
	case resolved.source != nil:
		e.sendAudio(audio.Command{Kind: audio.CmdToggleMute, TargetKind: audio.TargetSource, TargetIndex: resolved.source.Index})
	default:
		for _, si := range resolved.sinkInputs {
			e.sendAudio(audio.Command{Kind: audio.CmdToggleMute, TargetKind: audio.TargetSinkInput, TargetIndex: si.Index})
		}
	}
}

func (e *Engine) sendAudio(cmd audio.Command) {
	select {
	case e.Channels.AudioCommands <- cmd:
	default:
		e.log("audio command dropped: channel full")
	}
}

func (e *Engine) sendHID(cmd hid.Command) {
	select {
	case e.Channels.HID.Commands <- cmd:
	default:
		e.log("HID command dropped: channel full")
	}
}

// desktopFileStem returns the substring after the last '.', matching
// reverse-DNS desktop file IDs like "org.mozilla.firefox" -> "firefox".
func desktopFileStem(s string) string {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

// binaryStem strips a trailing extension then a "-bin"/"-wrapped"
// wrapper suffix, matching distro/Nix packaging conventions.
func binaryStem(s string) string {
	withoutExt := s
	if i := strings.LastIndex(s, "."); i > 0 {
		withoutExt = s[:i]
	}
	if rest, ok := strings.CutSuffix(withoutExt, "-bin"); ok {
		return rest
	}
	if rest, ok := strings.CutSuffix(withoutExt, "-wrapped"); ok {
		return rest
	}
	return withoutExt
}

func eqCI(a, b string) bool { return a != "" && b != "" && strings.EqualFold(a, b) }

// sinkInputMatchesFocused implements the six OR'd predicates (desktop
// file vs flatpak id, resource name vs binary, stemmed desktop file vs
// binary, desktop file vs binary, resource class vs binary, direct PID
// equality) used to resolve FocusedApp targets.
func sinkInputMatchesFocused(si audio.SinkInputInfo, w focus.Window) bool {
	if eqCI(w.DesktopFile, si.FlatpakID) {
		return true
	}
	if eqCI(w.ResourceName, si.Binary) {
		return true
	}
	if w.DesktopFile != "" && si.Binary != "" && eqCI(desktopFileStem(w.DesktopFile), binaryStem(si.Binary)) {
		return true
	}
	if eqCI(w.DesktopFile, si.Binary) {
		return true
	}
	if eqCI(w.ResourceClass, si.Binary) {
		return true
	}
	if w.PID != 0 && si.PID != 0 && w.PID == si.PID {
		return true
	}
	return false
}

// dedupFocused returns the sink-inputs matching w, each at most once.
func dedupFocused(w focus.Window, inputs []audio.SinkInputInfo) []audio.SinkInputInfo {
	seen := make(map[uint32]bool, len(inputs))
	var out []audio.SinkInputInfo
	for _, si := range inputs {
		if seen[si.Index] {
			continue
		}
		if sinkInputMatchesFocused(si, w) {
			seen[si.Index] = true
			out = append(out, si)
		}
	}
	return out
}

// executeCommand fire-and-forgets a shell command, bounded by an
// 8-concurrent-command semaphore and a 30s timeout. The socket is
// user-only and the config file is user-owned, so `sh -c <command>` runs
// with the daemon's own permissions: no privilege escalation is possible
// beyond what the configuring user could already do from their shell.
var execSemaphore = make(chan struct{}, execConcurrencyLimit)

func executeCommand(logger *slog.Logger, command string) {
	select {
	case execSemaphore <- struct{}{}:
	default:
		if logger != nil {
			logger.Warn("exec command dropped: concurrency limit", "command", command)
		}
		return
	}

	go func() {
		defer func() { <-execSemaphore }()

		ctx, cancel := context.WithTimeout(context.Background(), execTimeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		err := cmd.Run()
		if ctx.Err() == context.DeadlineExceeded {
			if logger != nil {
				logger.Warn("exec command timed out, killed", "command", command)
			}
			return
		}
		if err != nil {
			if logger != nil {
				logger.Warn("exec command failed", "command", command, "error", err.Error())
			}
		}
	}()
}

func (e *Engine) sendInitialLEDs(s *state) {
	knobSlot := hid.LedSlot{Mode: hid.LedStatic, Color1: hid.RGB{R: 255, G: 255, B: 255}}
	if !s.cfg.Leds.Knobs {
		knobSlot = hid.Off()
	}
	var knobSlots [5]hid.LedSlot
	for i := range knobSlots {
		knobSlots[i] = knobSlot
	}
	e.sendHID(hid.Command{Kind: hid.CmdSetKnobLeds, KnobSlots: knobSlots})

	sliderSlot := hid.LedSlot{Mode: hid.LedStatic, Color1: hid.RGB{R: 0, G: 100, B: 255}}
	if !s.cfg.Leds.SliderLabels {
		sliderSlot = hid.Off()
	}
	var labelSlots [4]hid.LedSlot
	for i := range labelSlots {
		labelSlots[i] = sliderSlot
	}
	e.sendHID(hid.Command{Kind: hid.CmdSetSliderLabelLeds, SliderSlots: labelSlots})

	stripSlot := hid.LedSlot{Mode: hid.LedStatic, Color1: hid.RGB{R: 0, G: 100, B: 255}}
	if !s.cfg.Leds.Sliders {
		stripSlot = hid.Off()
	}
	var stripSlots [4]hid.LedSlot
	for i := range stripSlots {
		stripSlots[i] = stripSlot
	}
	e.sendHID(hid.Command{Kind: hid.CmdSetSliderLeds, SliderSlots: stripSlots})

	logoColor := hid.RGB{R: 255, G: 255, B: 255}
	if !s.cfg.Leds.Logo {
		logoColor = hid.Black
	}
	e.sendHID(hid.Command{Kind: hid.CmdSetLogo, LogoMode: hid.LogoStatic, LogoColor1: logoColor})
}

func (e *Engine) reloadConfig(s *state) {
	e.log("config reload triggered")
	loaded, err := config.Load(s.configPath)
	if err != nil {
		e.logErr("config reload failed, keeping previous config", err)
		return
	}
	s.cfg = loaded.Config
	s.curve = audio.NewCurve(s.cfg.Signal.VolumeExponent)
	rebuildPipelines(s)
	s.lastAppliedVolumes = map[control.ID]audio.Volume{}
	e.sendInitialLEDs(s)
	e.log("config reloaded successfully")
}

func (e *Engine) log(msg string, args ...any) {
	if e.Logger == nil {
		return
	}
	e.Logger.Info(msg, args...)
}

func (e *Engine) logErr(msg string, err error) {
	if e.Logger == nil {
		return
	}
	e.Logger.Warn(msg, "error", err.Error())
}

func (e *Engine) handleIPC(s *state, msg IPCMessage) {
	switch msg.Request.Type {
	case ipc.RequestGetStatus:
		msg.Reply <- ipc.Response{Type: ipc.ResponseStatus, Status: &ipc.StatusPayload{
			DeviceConnected: s.deviceConnected,
			AudioConnected:  s.audioConnected,
			ConfigPath:      s.configPath,
		}}
	case ipc.RequestListApps:
		msg.Reply <- ipc.Response{Type: ipc.ResponseApps, Apps: s.snapshot.SinkInputs}
	case ipc.RequestListDevices:
		msg.Reply <- ipc.Response{Type: ipc.ResponseDevices, Devices: audio.MergedDevices(s.snapshot)}
	case ipc.RequestListOutputs:
		msg.Reply <- ipc.Response{Type: ipc.ResponseOutputs, Outputs: s.snapshot.Sinks}
	case ipc.RequestListInputs:
		msg.Reply <- ipc.Response{Type: ipc.ResponseInputs, Inputs: s.snapshot.Sources}
	case ipc.RequestAssignDial:
		e.handleAssignDial(s, msg)
	case ipc.RequestAssignButton:
		e.handleAssignButton(s, msg)
	case ipc.RequestUnassign:
		e.handleUnassign(s, msg)
	case ipc.RequestGetConfig:
		cfgCopy := s.cfg
		msg.Reply <- ipc.Response{Type: ipc.ResponseConfig, Config: &cfgCopy}
	case ipc.RequestReloadConfig:
		e.reloadConfig(s)
		msg.Reply <- ipc.OKResponse()
	case ipc.RequestShutdown:
		msg.Reply <- ipc.OKResponse()
		select {
		case e.Channels.Shutdown <- struct{}{}:
		default:
		}
	default:
		msg.Reply <- ipc.ErrorResponse("unknown request type %q", msg.Request.Type)
	}
}

func (e *Engine) handleAssignDial(s *state, msg IPCMessage) {
	id, ok := control.FromConfigKey(msg.Request.Control)
	if !ok || msg.Request.Dial == nil {
		msg.Reply <- ipc.ErrorResponse("invalid dial assignment for control %q", msg.Request.Control)
		return
	}
	binding := s.cfg.Controls[id.ConfigKey()]
	binding.Dial = msg.Request.Dial
	e.applyBindingChange(s, id, binding, msg.Reply)
}

func (e *Engine) handleAssignButton(s *state, msg IPCMessage) {
	id, ok := control.FromConfigKey(msg.Request.Control)
	if !ok || msg.Request.Button == nil {
		msg.Reply <- ipc.ErrorResponse("invalid button assignment for control %q", msg.Request.Control)
		return
	}
	binding := s.cfg.Controls[id.ConfigKey()]
	binding.Button = msg.Request.Button
	e.applyBindingChange(s, id, binding, msg.Reply)
}

func (e *Engine) handleUnassign(s *state, msg IPCMessage) {
	id, ok := control.FromConfigKey(msg.Request.Control)
	if !ok {
		msg.Reply <- ipc.ErrorResponse("invalid control key %q", msg.Request.Control)
		return
	}
	if s.cfg.Controls != nil {
		delete(s.cfg.Controls, id.ConfigKey())
	}
	delete(s.lastAppliedVolumes, id)
	e.persistConfig(s, msg.Reply)
}

func (e *Engine) applyBindingChange(s *state, id control.ID, binding control.Binding, reply chan ipc.Response) {
	if s.cfg.Controls == nil {
		s.cfg.Controls = map[string]control.Binding{}
	}
	s.cfg.Controls[id.ConfigKey()] = binding
	delete(s.lastAppliedVolumes, id)
	e.persistConfig(s, reply)
}

// persistConfig pushes a self-write-suppression token before writing the
// config file, so the directory watcher that would otherwise treat this
// write as an external edit consumes the token and skips the reload.
//
// This order is the reverse of save-then-notify: queuing the token first
// means the watcher is guaranteed to see it before the filesystem event
// it's meant to suppress arrives, no matter how fast fsnotify fires.
func (e *Engine) persistConfig(s *state, reply chan ipc.Response) {
	select {
	case e.Channels.ConfigSelfWrite <- struct{}{}:
	default:
	}
	if err := config.Save(s.configPath, s.cfg); err != nil {
		reply <- ipc.ErrorResponse("save config: %v", err)
		return
	}
	reply <- ipc.OKResponse()
}
