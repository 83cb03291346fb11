package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/nikcident/pcpaneld/internal/audio"
	"github.com/nikcident/pcpaneld/internal/cli"
	"github.com/nikcident/pcpaneld/internal/config"
	"github.com/nikcident/pcpaneld/internal/control"
	"github.com/nikcident/pcpaneld/internal/doctor"
	"github.com/nikcident/pcpaneld/internal/engine"
	"github.com/nikcident/pcpaneld/internal/focus"
	"github.com/nikcident/pcpaneld/internal/hid"
	"github.com/nikcident/pcpaneld/internal/ipc"
	"github.com/nikcident/pcpaneld/internal/logging"
	"github.com/nikcident/pcpaneld/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("pcpaneld"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("pcpaneld"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandRun:
		return r.commandRun(ctx, cfgLoaded, logger)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandDevices:
		return r.forward(ctx, ipc.Request{Type: ipc.RequestListDevices}, r.printDevices)
	case cli.CommandApps:
		return r.forward(ctx, ipc.Request{Type: ipc.RequestListApps}, r.printApps)
	case cli.CommandOutputs:
		return r.forward(ctx, ipc.Request{Type: ipc.RequestListOutputs}, r.printOutputs)
	case cli.CommandInputs:
		return r.forward(ctx, ipc.Request{Type: ipc.RequestListInputs}, r.printInputs)
	case cli.CommandConfig:
		return r.forward(ctx, ipc.Request{Type: ipc.RequestGetConfig}, r.printConfig)
	case cli.CommandReload:
		return r.forward(ctx, ipc.Request{Type: ipc.RequestReloadConfig}, r.printOK)
	case cli.CommandShutdown:
		return r.forward(ctx, ipc.Request{Type: ipc.RequestShutdown}, r.printOK)
	case cli.CommandAssign:
		req, err := buildAssignRequest(parsed.Args)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 2
		}
		return r.forward(ctx, req, r.printOK)
	case cli.CommandUnassign:
		if len(parsed.Args) != 1 {
			fmt.Fprintf(r.Stderr, "error: unassign requires exactly one control\n")
			return 2
		}
		req := ipc.Request{Type: ipc.RequestUnassign, Control: parsed.Args[0]}
		return r.forward(ctx, req, r.printOK)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// forward sends req to the running daemon and renders the response with
// print, or reports that no daemon is reachable.
func (r Runner) forward(ctx context.Context, req ipc.Request, print func(ipc.Response) int) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, err := ipc.Send(ctx, socketPath, req, 500*time.Millisecond)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: pcpaneld is not running: %v\n", err)
		return 1
	}
	if resp.Type == ipc.ResponseError {
		fmt.Fprintf(r.Stderr, "error: %s\n", resp.Message)
		return 1
	}
	return print(resp)
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "not running")
		return 0
	}

	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Type: ipc.RequestGetStatus}, 500*time.Millisecond)
	if err != nil {
		fmt.Fprintln(r.Stdout, "not running")
		return 0
	}
	if resp.Type != ipc.ResponseStatus || resp.Status == nil {
		fmt.Fprintln(r.Stdout, "not running")
		return 0
	}

	fmt.Fprintf(r.Stdout, "device_connected=%t audio_connected=%t config=%s\n",
		resp.Status.DeviceConnected, resp.Status.AudioConnected, resp.Status.ConfigPath)
	return 0
}

func (r Runner) printOK(resp ipc.Response) int {
	fmt.Fprintln(r.Stdout, "ok")
	return 0
}

func (r Runner) printDevices(resp ipc.Response) int {
	if len(resp.Devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 0
	}
	for _, d := range resp.Devices {
		fmt.Fprintf(r.Stdout, "%s id=%d name=%q description=%q muted=%t\n",
			d.DeviceType, d.Index, d.Name, d.Description, d.Muted)
	}
	return 0
}

func (r Runner) printApps(resp ipc.Response) int {
	if len(resp.Apps) == 0 {
		fmt.Fprintln(r.Stdout, "no active audio streams")
		return 0
	}
	for _, a := range resp.Apps {
		fmt.Fprintf(r.Stdout, "index=%d name=%q binary=%q flatpak=%q muted=%t\n",
			a.Index, a.Name, a.Binary, a.FlatpakID, a.Muted)
	}
	return 0
}

func (r Runner) printOutputs(resp ipc.Response) int {
	for _, s := range resp.Outputs {
		fmt.Fprintf(r.Stdout, "index=%d name=%q description=%q muted=%t\n", s.Index, s.Name, s.Description, s.Muted)
	}
	return 0
}

func (r Runner) printInputs(resp ipc.Response) int {
	for _, s := range resp.Inputs {
		fmt.Fprintf(r.Stdout, "index=%d name=%q description=%q muted=%t\n", s.Index, s.Name, s.Description, s.Muted)
	}
	return 0
}

func (r Runner) printConfig(resp ipc.Response) int {
	if resp.Config == nil {
		fmt.Fprintln(r.Stdout, "no config")
		return 0
	}
	fmt.Fprintf(r.Stdout, "%+v\n", *resp.Config)
	return 0
}

// buildAssignRequest parses the CLI "assign" argument grammar:
//
//	assign <control> dial volume <target>
//	assign <control> button mute <target>
//	assign <control> button media <mpris-command>
//	assign <control> button exec <shell command...>
//
// where <target> is one of "default_output", "default_input", "focused",
// or "app:binary=<x>,name=<y>,flatpak=<z>" (comma-separated, any subset).
func buildAssignRequest(args []string) (ipc.Request, error) {
	if len(args) < 1 {
		return ipc.Request{}, errors.New("assign requires a control name")
	}
	controlKey := args[0]
	if _, ok := control.FromConfigKey(controlKey); !ok {
		return ipc.Request{}, fmt.Errorf("unknown control %q", controlKey)
	}
	if len(args) < 2 {
		return ipc.Request{}, errors.New("assign requires an action kind (dial or button)")
	}

	switch args[1] {
	case "dial":
		if len(args) != 4 || args[2] != "volume" {
			return ipc.Request{}, errors.New("usage: assign <control> dial volume <target>")
		}
		target, err := parseTarget(args[3])
		if err != nil {
			return ipc.Request{}, err
		}
		return ipc.Request{
			Type:    ipc.RequestAssignDial,
			Control: controlKey,
			Dial:    &control.DialAction{Type: control.DialVolume, Target: target},
		}, nil

	case "button":
		if len(args) < 4 {
			return ipc.Request{}, errors.New("usage: assign <control> button <mute|media|exec> <arg>")
		}
		switch args[2] {
		case "mute":
			target, err := parseTarget(args[3])
			if err != nil {
				return ipc.Request{}, err
			}
			return ipc.Request{
				Type:    ipc.RequestAssignButton,
				Control: controlKey,
				Button:  &control.ButtonAction{Type: control.ButtonMute, Target: target},
			}, nil
		case "media":
			return ipc.Request{
				Type:    ipc.RequestAssignButton,
				Control: controlKey,
				Button:  &control.ButtonAction{Type: control.ButtonMedia, Command: args[3]},
			}, nil
		case "exec":
			return ipc.Request{
				Type:    ipc.RequestAssignButton,
				Control: controlKey,
				Button:  &control.ButtonAction{Type: control.ButtonExec, Command: strings.Join(args[3:], " ")},
			}, nil
		default:
			return ipc.Request{}, fmt.Errorf("unknown button action %q", args[2])
		}

	default:
		return ipc.Request{}, fmt.Errorf("unknown action kind %q (expected dial or button)", args[1])
	}
}

func parseTarget(raw string) (control.AudioTarget, error) {
	switch {
	case raw == "default_output":
		return control.AudioTarget{Type: control.TargetDefaultOutput}, nil
	case raw == "default_input":
		return control.AudioTarget{Type: control.TargetDefaultInput}, nil
	case raw == "focused":
		return control.AudioTarget{Type: control.TargetFocusedApp}, nil
	case strings.HasPrefix(raw, "app:"):
		matcher, err := parseMatcher(strings.TrimPrefix(raw, "app:"))
		if err != nil {
			return control.AudioTarget{}, err
		}
		return control.AudioTarget{Type: control.TargetApp, Matcher: matcher}, nil
	default:
		return control.AudioTarget{}, fmt.Errorf("unknown target %q", raw)
	}
}

func parseMatcher(raw string) (control.AppMatcher, error) {
	var m control.AppMatcher
	for _, field := range strings.Split(raw, ",") {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			return control.AppMatcher{}, fmt.Errorf("invalid app matcher field %q", field)
		}
		switch kv[0] {
		case "binary":
			m.Binary = kv[1]
		case "name":
			m.Name = kv[1]
		case "flatpak":
			m.FlatpakID = kv[1]
		default:
			return control.AppMatcher{}, fmt.Errorf("unknown app matcher key %q", kv[0])
		}
	}
	if !m.IsValid() {
		return control.AppMatcher{}, errors.New("app matcher requires at least one of binary/name/flatpak")
	}
	return m, nil
}

// commandRun is the daemon entry point: acquire the control-plane socket,
// wire every subsystem's channels together, and run until ctx is
// canceled or the engine receives a shutdown request over IPC.
func (r Runner) commandRun(ctx context.Context, cfgLoaded config.Loaded, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 4, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintf(r.Stderr, "error: pcpaneld is already running\n")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	hidChannels := hid.NewChannels()
	hidWorker := hid.NewWorker(cfgLoaded.Config.Device.Serial, hidChannels, logger)
	audioClient := audio.New(logger)
	focusTracker := focus.NewTracker(logger)

	engineChannels := engine.NewChannels(hidChannels, audioClient.Commands, audioClient.Notifications)
	engineChannels.Focus = focusTracker.Updates
	eng := engine.New(engineChannels, logger)

	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = os.TempDir()
	}

	go hidWorker.Run(runCtx)
	go hid.RunHotplugMonitor(runCtx, hidChannels.DeviceEvents)
	go audioClient.Run(runCtx)
	go focusTracker.Run(runCtx, runtimeDir)
	go config.Watch(runCtx, cfgLoaded.Path, engineChannels.ConfigReload, engineChannels.ConfigSelfWrite, logger)

	handler := ipc.HandlerFunc(func(reqCtx context.Context, req ipc.Request) ipc.Response {
		reply := make(chan ipc.Response, 1)
		select {
		case engineChannels.IPC <- engine.IPCMessage{Request: req, Reply: reply}:
		case <-reqCtx.Done():
			return ipc.ErrorResponse("request canceled")
		}
		select {
		case resp := <-reply:
			return resp
		case <-reqCtx.Done():
			return ipc.ErrorResponse("request canceled")
		}
	})

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(runCtx, listener, handler)
	}()

	logger.Info("daemon started", "socket", socketPath, "config", cfgLoaded.Path)

	// The engine owns its own shutdown signal (an IPC "shutdown" request);
	// Run returns either when runCtx is canceled or that fires, so once it
	// returns we tear everything else down via cancel().
	eng.Run(runCtx, cfgLoaded.Config, cfgLoaded.Path)
	cancel()

	if serveErr := <-serverErrCh; serveErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serveErr)
		return 1
	}

	logger.Info("daemon stopped")
	return 0
}
