// Package ipc implements pcpaneld's control-plane wire protocol: a
// length-prefixed JSON request/response exchange over a Unix domain
// socket, used by the CLI and other local clients to inspect and mutate
// a running daemon.
package ipc

import (
	"fmt"

	"github.com/nikcident/pcpaneld/internal/audio"
	"github.com/nikcident/pcpaneld/internal/config"
	"github.com/nikcident/pcpaneld/internal/control"
)

// RequestKind discriminates a control-plane Request.
type RequestKind string

const (
	RequestGetStatus     RequestKind = "get_status"
	RequestListApps      RequestKind = "list_apps"
	RequestListDevices   RequestKind = "list_devices"
	RequestListOutputs   RequestKind = "list_outputs"
	RequestListInputs    RequestKind = "list_inputs"
	RequestAssignDial    RequestKind = "assign_dial"
	RequestAssignButton  RequestKind = "assign_button"
	RequestUnassign      RequestKind = "unassign"
	RequestGetConfig     RequestKind = "get_config"
	RequestReloadConfig  RequestKind = "reload_config"
	RequestShutdown      RequestKind = "shutdown"
)

// ResponseKind discriminates a control-plane Response.
type ResponseKind string

const (
	ResponseStatus  ResponseKind = "status"
	ResponseApps    ResponseKind = "apps"
	ResponseDevices ResponseKind = "devices"
	ResponseOutputs ResponseKind = "outputs"
	ResponseInputs  ResponseKind = "inputs"
	ResponseConfig  ResponseKind = "config"
	ResponseOK      ResponseKind = "ok"
	ResponseError   ResponseKind = "error"
)

// Request is one control-plane request. Control selects the target
// control ("knob1".."knob5", "slider1".."slider4") for assign_dial,
// assign_button, and unassign.
type Request struct {
	Type    RequestKind          `json:"type"`
	Control string               `json:"control,omitempty"`
	Dial    *control.DialAction  `json:"dial,omitempty"`
	Button  *control.ButtonAction `json:"button,omitempty"`
}

// Response is one control-plane response.
type Response struct {
	Type    ResponseKind       `json:"type"`
	Message string             `json:"message,omitempty"`
	Status  *StatusPayload     `json:"status,omitempty"`
	Apps    []audio.SinkInputInfo `json:"apps,omitempty"`
	Devices []audio.DeviceInfo `json:"devices,omitempty"`
	Outputs []audio.SinkInfo   `json:"outputs,omitempty"`
	Inputs  []audio.SourceInfo `json:"inputs,omitempty"`
	Config  *config.Config     `json:"config,omitempty"`
}

// StatusPayload is the get_status response body: a coarse daemon health
// summary, not the full config or audio snapshot.
type StatusPayload struct {
	DeviceConnected bool   `json:"device_connected"`
	AudioConnected  bool   `json:"audio_connected"`
	ConfigPath      string `json:"config_path"`
}

// ErrorResponse builds a Response carrying a typed error message.
func ErrorResponse(format string, args ...any) Response {
	return Response{Type: ResponseError, Message: fmt.Sprintf(format, args...)}
}

// OKResponse builds a plain acknowledgement Response.
func OKResponse() Response {
	return Response{Type: ResponseOK}
}
