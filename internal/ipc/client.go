package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/tagtile/internal/runtimepath"
	"github.com/1broseidon/tagtile/internal/wm"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithPath(socketPath)
}

// NewClientWithPath creates a client for the socket at path.
func NewClientWithPath(path string) *Client {
	return &Client{
		socketPath: path,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == StatusError {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) send(cmd CommandType, payload any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	_, err := c.sendRequest(req)
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	return c.send(CommandPing, nil)
}

// GetStatus retrieves the daemon's status snapshot.
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// View shows the tags in mask on the selected monitor.
func (c *Client) View(mask uint32) error {
	return c.send(CommandView, TagsPayload{Tags: mask})
}

// ViewPrevious restores the previously viewed tags.
func (c *Client) ViewPrevious() error {
	return c.send(CommandViewPrevious, nil)
}

func (c *Client) ToggleView(mask uint32) error {
	return c.send(CommandToggleView, TagsPayload{Tags: mask})
}

// Tag moves the focused client to the tags in mask.
func (c *Client) Tag(mask uint32) error {
	return c.send(CommandTag, TagsPayload{Tags: mask})
}

func (c *Client) ToggleTag(mask uint32) error {
	return c.send(CommandToggleTag, TagsPayload{Tags: mask})
}

// FocusStack moves focus to the next (dir > 0) or previous visible client.
func (c *Client) FocusStack(dir int) error {
	return c.send(CommandFocusStack, StackPayload{Dir: dir})
}

func (c *Client) IncNmaster(delta int) error {
	return c.send(CommandIncNmaster, NmasterPayload{Delta: delta})
}

func (c *Client) SetMfact(value float64) error {
	return c.send(CommandSetMfact, MfactPayload{Value: value})
}

func (c *Client) ToggleFullscreen() error {
	return c.send(CommandToggleFullscreen, nil)
}

func (c *Client) ToggleFloating() error {
	return c.send(CommandToggleFloating, nil)
}

// Kill asks the focused client to close.
func (c *Client) Kill() error {
	return c.send(CommandKill, nil)
}

func (c *Client) FocusMonitor(dir wm.Direction) error {
	return c.send(CommandFocusMonitor, MonitorPayload{Dir: dir.String()})
}

func (c *Client) TagMonitor(dir wm.Direction) error {
	return c.send(CommandTagMonitor, MonitorPayload{Dir: dir.String()})
}

// Dispatch runs a binding action such as "view 3" or "focus_stack next".
func (c *Client) Dispatch(action string) error {
	return c.send(CommandDispatch, DispatchPayload{Action: action})
}

// Lock locks the session.
func (c *Client) Lock() error {
	return c.send(CommandLock, nil)
}

// Unlock releases a lock taken with Lock.
func (c *Client) Unlock() error {
	return c.send(CommandUnlock, nil)
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.send(CommandReload, nil)
}
