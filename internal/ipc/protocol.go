package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/tagtile/internal/wm"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing             CommandType = "PING"
	CommandGetStatus        CommandType = "GET_STATUS"
	CommandView             CommandType = "VIEW"
	CommandViewPrevious     CommandType = "VIEW_PREVIOUS"
	CommandToggleView       CommandType = "TOGGLE_VIEW"
	CommandTag              CommandType = "TAG"
	CommandToggleTag        CommandType = "TOGGLE_TAG"
	CommandFocusStack       CommandType = "FOCUS_STACK"
	CommandIncNmaster       CommandType = "INC_NMASTER"
	CommandSetMfact         CommandType = "SET_MFACT"
	CommandToggleFullscreen CommandType = "TOGGLE_FULLSCREEN"
	CommandToggleFloating   CommandType = "TOGGLE_FLOATING"
	CommandKill             CommandType = "KILL"
	CommandFocusMonitor     CommandType = "FOCUS_MONITOR"
	CommandTagMonitor       CommandType = "TAG_MONITOR"
	CommandDispatch         CommandType = "DISPATCH"
	CommandLock             CommandType = "LOCK"
	CommandUnlock           CommandType = "UNLOCK"
	CommandReload           CommandType = "RELOAD"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	wm.Status
	UptimeSeconds int64 `json:"uptime_seconds"`
	DaemonRunning bool  `json:"daemon_running"`
}

// TagsPayload carries a tag bit mask for VIEW, TAG and their toggles.
type TagsPayload struct {
	Tags uint32 `json:"tags"`
}

// StackPayload carries the FOCUS_STACK direction, +1 or -1.
type StackPayload struct {
	Dir int `json:"dir"`
}

// NmasterPayload carries the INC_NMASTER delta.
type NmasterPayload struct {
	Delta int `json:"delta"`
}

// MfactPayload carries the SET_MFACT value. Values below 1.0 are relative.
type MfactPayload struct {
	Value float64 `json:"value"`
}

// MonitorPayload carries a direction name for FOCUS_MONITOR and TAG_MONITOR.
type MonitorPayload struct {
	Dir string `json:"dir"`
}

// DispatchPayload carries a binding action string, e.g. "view 3".
type DispatchPayload struct {
	Action string `json:"action"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// commandFor maps a window-management request onto a core command.
func commandFor(req *Request) (wm.Command, error) {
	decode := func(v any) error {
		if len(req.Payload) == 0 {
			return fmt.Errorf("%s requires a payload", req.Command)
		}
		if err := json.Unmarshal(req.Payload, v); err != nil {
			return fmt.Errorf("invalid %s payload: %w", req.Command, err)
		}
		return nil
	}

	switch req.Command {
	case CommandView, CommandToggleView, CommandTag, CommandToggleTag:
		var p TagsPayload
		if err := decode(&p); err != nil {
			return wm.Command{}, err
		}
		kind := map[CommandType]wm.CommandKind{
			CommandView:       wm.CmdView,
			CommandToggleView: wm.CmdToggleView,
			CommandTag:        wm.CmdTag,
			CommandToggleTag:  wm.CmdToggleTag,
		}[req.Command]
		return wm.Command{Kind: kind, Tags: p.Tags}, nil
	case CommandViewPrevious:
		return wm.Command{Kind: wm.CmdViewPrevious}, nil
	case CommandFocusStack:
		var p StackPayload
		if err := decode(&p); err != nil {
			return wm.Command{}, err
		}
		return wm.Command{Kind: wm.CmdFocusStack, Int: p.Dir}, nil
	case CommandIncNmaster:
		var p NmasterPayload
		if err := decode(&p); err != nil {
			return wm.Command{}, err
		}
		return wm.Command{Kind: wm.CmdIncNmaster, Int: p.Delta}, nil
	case CommandSetMfact:
		var p MfactPayload
		if err := decode(&p); err != nil {
			return wm.Command{}, err
		}
		return wm.Command{Kind: wm.CmdSetMfact, Float: p.Value}, nil
	case CommandToggleFullscreen:
		return wm.Command{Kind: wm.CmdToggleFullscreen}, nil
	case CommandToggleFloating:
		return wm.Command{Kind: wm.CmdToggleFloating}, nil
	case CommandKill:
		return wm.Command{Kind: wm.CmdKill}, nil
	case CommandFocusMonitor, CommandTagMonitor:
		var p MonitorPayload
		if err := decode(&p); err != nil {
			return wm.Command{}, err
		}
		dir, err := wm.ParseDirection(p.Dir)
		if err != nil {
			return wm.Command{}, err
		}
		kind := wm.CmdFocusMonitor
		if req.Command == CommandTagMonitor {
			kind = wm.CmdTagMonitor
		}
		return wm.Command{Kind: kind, Dir: dir}, nil
	case CommandDispatch:
		var p DispatchPayload
		if err := decode(&p); err != nil {
			return wm.Command{}, err
		}
		return wm.ParseCommand(p.Action)
	default:
		return wm.Command{}, fmt.Errorf("%w: %s", wm.ErrUnknownCommand, req.Command)
	}
}
