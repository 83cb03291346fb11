package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToRun(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, CommandRun, parsed.Command)
	require.False(t, parsed.ShowHelp)
}

func TestParseCommandWithConfig(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/pcpaneld.toml", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/pcpaneld.toml", parsed.ConfigPath)
	require.False(t, parsed.ShowHelp)
}

func TestParseAssignCapturesTrailingArgs(t *testing.T) {
	parsed, err := Parse([]string{"assign", "knob1", "output", "default"})
	require.NoError(t, err)
	require.Equal(t, CommandAssign, parsed.Command)
	require.Equal(t, []string{"knob1", "output", "default"}, parsed.Args)
}

func TestParseUnassignCapturesControlArg(t *testing.T) {
	parsed, err := Parse([]string{"unassign", "slider2"})
	require.NoError(t, err)
	require.Equal(t, CommandUnassign, parsed.Command)
	require.Equal(t, []string{"slider2"}, parsed.Args)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantHelp bool
		wantPath string
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help long flag",
			args:     []string{"--help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "version flag",
			args:     []string{"--version"},
			wantCmd:  CommandVersion,
			wantHelp: false,
		},
		{
			name:    "config after command",
			args:    []string{"status", "--config", "/tmp/cfg"},
			wantErr: "unexpected arguments after command",
		},
		{
			name:    "missing config path",
			args:    []string{"--config"},
			wantErr: "requires a path",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"bogus"},
			wantErr: "unknown command",
		},
		{
			name:    "extra args after command",
			args:    []string{"doctor", "extra"},
			wantErr: "unexpected arguments",
		},
		{
			name:     "valid status command",
			args:     []string{"status"},
			wantCmd:  CommandStatus,
			wantHelp: false,
		},
		{
			name:     "valid reload with config",
			args:     []string{"--config", "/tmp/cfg", "reload"},
			wantCmd:  CommandReload,
			wantHelp: false,
			wantPath: "/tmp/cfg",
		},
		{
			name:     "valid shutdown command",
			args:     []string{"shutdown"},
			wantCmd:  CommandShutdown,
			wantHelp: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
			require.Equal(t, tc.wantPath, parsed.ConfigPath)
		})
	}
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("pcpaneld")
	require.Contains(t, text, "assign")
	require.Contains(t, text, "unassign")
	require.Contains(t, text, "shutdown")
	require.Contains(t, text, "doctor")
	require.Contains(t, text, "--config PATH")
}
