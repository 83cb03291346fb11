// Package doctor runs runtime readiness diagnostics for the panel device,
// the audio server connection, and the config/runtime directories.
package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jfreymuth/pulse"
	"github.com/nikcident/pcpaneld/internal/config"
	"github.com/nikcident/pcpaneld/internal/hid"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkConfigDirWritable(cfg.Path))
	checks = append(checks, checkRuntimeDir())
	checks = append(checks, checkHidDevice(cfg.Config.Device.Serial))
	checks = append(checks, checkAudioServer())

	return Report{Checks: checks}
}

// checkConfigDirWritable verifies the config directory exists (or can be
// created) and is writable, since Save performs an atomic temp-write +
// rename there.
func checkConfigDirWritable(path string) Check {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Check{Name: "config.dir", Pass: false, Message: fmt.Sprintf("cannot create %q: %v", dir, err)}
	}

	probe := filepath.Join(dir, ".doctor-write-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return Check{Name: "config.dir", Pass: false, Message: fmt.Sprintf("%q is not writable: %v", dir, err)}
	}
	os.Remove(probe)

	return Check{Name: "config.dir", Pass: true, Message: fmt.Sprintf("%q is writable", dir)}
}

// checkRuntimeDir verifies that the runtime directory for the control-plane
// socket exists and is a directory: XDG_RUNTIME_DIR, or /run/user/<uid>
// when it is unset.
func checkRuntimeDir() Check {
	dir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if dir == "" {
		dir = fmt.Sprintf("/run/user/%d", os.Getuid())
	}
	info, err := os.Stat(dir)
	if err != nil {
		return Check{Name: "runtime.dir", Pass: false, Message: fmt.Sprintf("%q: %v", dir, err)}
	}
	if !info.IsDir() {
		return Check{Name: "runtime.dir", Pass: false, Message: fmt.Sprintf("%q is not a directory", dir)}
	}
	return Check{Name: "runtime.dir", Pass: true, Message: fmt.Sprintf("%q is usable", dir)}
}

// checkHidDevice verifies the PCPanel Pro is enumerable (and, by
// implication, that the current user has hidraw read/write permission).
func checkHidDevice(serial string) Check {
	transport, err := hid.Open(serial)
	if err != nil {
		return Check{Name: "hid.device", Pass: false, Message: err.Error()}
	}
	defer transport.Close()
	return Check{Name: "hid.device", Pass: true, Message: fmt.Sprintf("connected to serial %q", transport.Serial())}
}

// checkAudioServer verifies a PulseAudio/PipeWire-pulse connection can be
// established within a short timeout.
func checkAudioServer() Check {
	done := make(chan error, 1)
	go func() {
		client, err := pulse.NewClient(pulse.ClientApplicationName("pcpaneld-doctor"))
		if err != nil {
			done <- err
			return
		}
		client.Close()
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil {
			return Check{Name: "audio.server", Pass: false, Message: err.Error()}
		}
		return Check{Name: "audio.server", Pass: true, Message: "connected"}
	case <-time.After(2 * time.Second):
		return Check{Name: "audio.server", Pass: false, Message: "timed out connecting to audio server"}
	}
}
