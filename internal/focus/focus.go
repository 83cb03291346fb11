// Package focus tracks the KDE Plasma / KWin compositor's currently
// focused window by registering a session-bus service and loading a
// small KWin script that calls back into it on every window activation.
package focus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	busName      = "com.pcpaneld.FocusedWindow"
	objectPath   = "/com/pcpaneld/FocusedWindow"
	ifaceName    = "com.pcpaneld.FocusedWindow"
	kwinScript   = "pcpaneld"
	scriptFile   = "pcpaneld-kwin.js"
	loadRetries  = 5
	retryBackoff = 500 * time.Millisecond
)

// Window is the most recently reported focused-window identity. A zero
// value means no window has been reported yet.
type Window struct {
	DesktopFile   string
	ResourceName  string
	ResourceClass string
	PID           uint32 // 0 means unknown
}

// Empty reports whether every field is unset.
func (w Window) Empty() bool {
	return w.DesktopFile == "" && w.ResourceName == "" && w.ResourceClass == "" && w.PID == 0
}

// Tracker owns the session-bus service and KWin script lifecycle.
type Tracker struct {
	Updates chan Window // latest-wins depth 1, owned by the caller

	logger *slog.Logger
}

// NewTracker allocates a Tracker with the latest-wins depth-1 channel
// spec.md §4.5/§5 mandates.
func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{Updates: make(chan Window, 1), logger: logger}
}

func sendLatest(ch chan Window, w Window) {
	select {
	case ch <- w:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- w:
		default:
		}
	}
}

// receiver is exported on the session bus as com.pcpaneld.FocusedWindow.
type receiver struct {
	updates chan Window
}

// Update is the D-Bus method the KWin script calls on every window
// activation. Empty strings/zero pid mean "unknown", matching the
// script's `|| ""`/`|| 0` fallbacks.
func (r *receiver) Update(desktopFile, resourceName, resourceClass string, pid int32) *dbus.Error {
	var uPID uint32
	if pid > 0 {
		uPID = uint32(pid)
	}
	sendLatest(r.updates, Window{
		DesktopFile:   desktopFile,
		ResourceName:  resourceName,
		ResourceClass: resourceClass,
		PID:           uPID,
	})
	return nil
}

// Run registers the D-Bus service, writes and loads the KWin script, and
// blocks until ctx is canceled. On any setup failure it logs once and
// idles until cancellation (FocusedApp targets then resolve to empty
// sets, per spec.md §4.5).
func (t *Tracker) Run(ctx context.Context, runtimeDir string) {
	conn, err := t.setupService()
	if err != nil {
		t.log("focus tracker disabled: register session bus service", err)
		<-ctx.Done()
		return
	}
	defer conn.Close()

	path := filepath.Join(runtimeDir, scriptFile)
	if err := os.WriteFile(path, []byte(kwinScriptContent()), 0o600); err != nil {
		t.log("focus tracker disabled: write KWin script", err)
		<-ctx.Done()
		return
	}
	defer os.Remove(path)

	if !t.loadWithRetry(conn, path) {
		os.Remove(path)
		<-ctx.Done()
		return
	}

	t.logger.Info("KWin focused window tracking active")
	<-ctx.Done()

	if err := unloadScript(conn); err != nil {
		t.log("failed to unload KWin script on shutdown", err)
	}
}

func (t *Tracker) setupService() (*dbus.Conn, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("bus name %s already owned", busName)
	}

	r := &receiver{updates: t.Updates}
	if err := conn.Export(r, dbus.ObjectPath(objectPath), ifaceName); err != nil {
		conn.Close()
		return nil, fmt.Errorf("export receiver object: %w", err)
	}

	return conn, nil
}

func (t *Tracker) loadWithRetry(conn *dbus.Conn, scriptPath string) bool {
	for attempt := 1; attempt <= loadRetries; attempt++ {
		if err := loadScript(conn, scriptPath); err == nil {
			return true
		} else if attempt < loadRetries {
			t.log(fmt.Sprintf("KWin script load failed (attempt %d/%d)", attempt, loadRetries), err)
			time.Sleep(time.Duration(attempt) * retryBackoff)
		} else {
			t.log(fmt.Sprintf("KWin script load failed after %d attempts, disabling focus tracking", attempt), err)
		}
	}
	return false
}

func loadScript(conn *dbus.Conn, scriptPath string) error {
	scripting := conn.Object("org.kde.KWin", "/Scripting")

	// Unload any stale script left behind by a previous SIGKILLed daemon.
	_ = scripting.Call("org.kde.kwin.Scripting.unloadScript", 0, kwinScript).Err

	call := scripting.Call("org.kde.kwin.Scripting.loadScript", 0, scriptPath, kwinScript)
	if call.Err != nil {
		return fmt.Errorf("loadScript: %w", call.Err)
	}

	if err := scripting.Call("org.kde.kwin.Scripting.start", 0).Err; err != nil {
		return fmt.Errorf("start scripting engine: %w", err)
	}
	return nil
}

func unloadScript(conn *dbus.Conn) error {
	scripting := conn.Object("org.kde.KWin", "/Scripting")
	return scripting.Call("org.kde.kwin.Scripting.unloadScript", 0, kwinScript).Err
}

func kwinScriptContent() string {
	return fmt.Sprintf(`function sendWindowInfo(window) {
    if (window) {
        callDBus(
            "%s", "%s", "%s", "Update",
            window.desktopFileName || "",
            window.resourceName || "",
            window.resourceClass || "",
            window.pid || 0
        );
    }
}
workspace.windowActivated.connect(sendWindowInfo);
sendWindowInfo(workspace.activeWindow);
`, busName, objectPath, ifaceName)
}

func (t *Tracker) log(msg string, err error) {
	if t.logger == nil {
		return
	}
	t.logger.Warn(msg, "error", err.Error())
}
