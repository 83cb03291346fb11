package media

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nikcident/pcpaneld/internal/control"
)

func TestSendRejectsUnknownCommand(t *testing.T) {
	err := Send(nil, control.MediaCommand("bogus"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown media command")
}
