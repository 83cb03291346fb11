package doctor

import (
	"path/filepath"
	"testing"

	"github.com/nikcident/pcpaneld/internal/config"
	"github.com/stretchr/testify/require"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckConfigDirWritableCreatesMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	check := checkConfigDirWritable(path)
	require.True(t, check.Pass)
}

func TestCheckRuntimeDirMissingFails(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(t.TempDir(), "does-not-exist"))
	check := checkRuntimeDir()
	require.False(t, check.Pass)
}

func TestCheckRuntimeDirPresentPasses(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	check := checkRuntimeDir()
	require.True(t, check.Pass)
}

func TestCheckHidDeviceNotFoundFails(t *testing.T) {
	check := checkHidDevice("nonexistent-serial")
	require.False(t, check.Pass)
}

func TestRunProducesConfigAndRuntimeChecks(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")

	report := Run(config.Loaded{Path: path, Config: config.Default()})
	require.NotEmpty(t, report.Checks)

	var sawConfig, sawRuntime bool
	for _, check := range report.Checks {
		if check.Name == "config" {
			sawConfig = true
		}
		if check.Name == "runtime.dir" {
			sawRuntime = true
		}
	}
	require.True(t, sawConfig)
	require.True(t, sawRuntime)
}
