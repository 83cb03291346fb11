// Package media dispatches MPRIS transport commands (play/pause/next/...)
// to the first session-bus media player that is currently playing, or to
// the first player listed when none is playing.
package media

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/nikcident/pcpaneld/internal/control"
)

const playerBusPrefix = "org.mpris.MediaPlayer2."

// Send dispatches cmd to the most appropriate MPRIS player on conn. If no
// player is found it returns nil: the user simply hasn't started one.
func Send(conn *dbus.Conn, cmd control.MediaCommand) error {
	method, ok := cmd.MethodName()
	if !ok {
		return fmt.Errorf("unknown media command %q", cmd)
	}

	players, err := listPlayers(conn)
	if err != nil {
		return fmt.Errorf("list MPRIS players: %w", err)
	}
	if len(players) == 0 {
		return nil
	}

	target := players[0]
	for _, p := range players {
		if isPlaying(conn, p) {
			target = p
			break
		}
	}

	obj := conn.Object(target, "/org/mpris/MediaPlayer2")
	call := obj.Call("org.mpris.MediaPlayer2.Player."+method, 0)
	if call.Err != nil {
		return fmt.Errorf("call %s on %s: %w", method, target, call.Err)
	}
	return nil
}

func listPlayers(conn *dbus.Conn) ([]string, error) {
	var names []string
	obj := conn.Object("org.freedesktop.DBus", "/org/freedesktop/DBus")
	if err := obj.Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, err
	}

	var players []string
	for _, n := range names {
		if strings.HasPrefix(n, playerBusPrefix) {
			players = append(players, n)
		}
	}
	return players, nil
}

func isPlaying(conn *dbus.Conn, player string) bool {
	obj := conn.Object(player, "/org/mpris/MediaPlayer2")
	var status dbus.Variant
	err := obj.Call("org.freedesktop.DBus.Properties.Get", 0, "org.mpris.MediaPlayer2.Player", "PlaybackStatus").Store(&status)
	if err != nil {
		return false
	}
	s, ok := status.Value().(string)
	return ok && s == "Playing"
}
