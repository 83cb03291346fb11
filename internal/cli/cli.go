package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandStatus   Command = "status"
	CommandDevices  Command = "devices"
	CommandApps     Command = "apps"
	CommandOutputs  Command = "outputs"
	CommandInputs   Command = "inputs"
	CommandAssign   Command = "assign"
	CommandUnassign Command = "unassign"
	CommandConfig   Command = "config"
	CommandReload   Command = "reload"
	CommandShutdown Command = "shutdown"
	CommandDoctor   Command = "doctor"
	CommandVersion  Command = "version"
	CommandHelp     Command = "help"
	CommandRun      Command = "run"
)

var validCommands = map[Command]struct{}{
	CommandStatus:   {},
	CommandDevices:  {},
	CommandApps:     {},
	CommandOutputs:  {},
	CommandInputs:   {},
	CommandAssign:   {},
	CommandUnassign: {},
	CommandConfig:   {},
	CommandReload:   {},
	CommandShutdown: {},
	CommandDoctor:   {},
	CommandVersion:  {},
	CommandHelp:     {},
	CommandRun:      {},
}

// commandsTakingArgs lists commands that consume positional arguments
// beyond the command word itself (assign needs a control + action,
// unassign needs just a control).
var commandsTakingArgs = map[Command]struct{}{
	CommandAssign:   {},
	CommandUnassign: {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool
	Args       []string
}

// Parse splits args into a Parsed command invocation. The daemon itself
// is started with the bare "run" command (or no command at all); every
// other command is a one-shot control-plane client call.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandRun}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
			return parsed, nil
		case "--version":
			parsed.Command = CommandVersion
			return parsed, nil
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			if _, takesArgs := commandsTakingArgs[cmd]; takesArgs {
				parsed.Args = append([]string{}, args[i+1:]...)
				return parsed, nil
			}
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Commands:
  run                        Start the daemon (default if no command given)
  status                     Print connection and device status
  devices                    List audio outputs and inputs (sinks and sources)
  apps                       List active audio streams (sink inputs)
  outputs                    List audio outputs (sinks)
  inputs                     List audio inputs (sources)
  assign <control> <action>  Bind a knob or slider/button to a target or action
  unassign <control>         Remove a control's binding
  config                     Print the resolved configuration
  reload                     Re-read the configuration file
  shutdown                   Ask the running daemon to exit
  doctor                     Run configuration and environment checks
  version                    Print version information
  help                       Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/pcpaneld/config.toml)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
