package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/tagtile/internal/runtimepath"
	"github.com/1broseidon/tagtile/internal/wm"
)

const requestTimeout = 5 * time.Second

// Controller executes requests against the running daemon. Implementations
// serialise every call onto the daemon's event loop.
type Controller interface {
	Status(ctx context.Context) (wm.Status, error)
	Dispatch(ctx context.Context, cmd wm.Command) error
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
	Reload(ctx context.Context) error
}

// Server answers one request per connection on a unix socket.
type Server struct {
	socketPath string
	listener   net.Listener
	ctrl       Controller
	startTime  time.Time
	closing    atomic.Bool
	conns      sync.WaitGroup
}

// NewServer creates a new IPC server. An empty socketPath selects the
// default runtime location.
func NewServer(socketPath string, ctrl Controller) (*Server, error) {
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}

	// A stale socket from a crashed daemon blocks Listen.
	if err := os.Remove(socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove stale socket: %w", err)
	}

	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		startTime:  time.Now(),
	}, nil
}

func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start listens on the socket and serves connections in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}
	s.listener = listener

	log.Printf("IPC server listening on %s", s.socketPath)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closing.Load() {
				return
			}
			log.Printf("IPC accept error: %v", err)
			continue
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.serve(conn)
		}()
	}
}

// serve reads a single newline-terminated JSON request and writes the
// response.
func (s *Server) serve(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(requestTimeout))

	var resp *Response
	data, err := bufio.NewReader(conn).ReadBytes('\n')
	switch {
	case err != nil && err != io.EOF:
		log.Printf("IPC read error: %v", err)
		return
	default:
		req, perr := ParseRequest(data)
		if perr != nil {
			resp = NewErrorResponse(fmt.Sprintf("Invalid request: %v", perr))
			break
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		resp = s.handle(ctx, req)
		cancel()
	}

	out, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}
	if _, err := conn.Write(append(out, '\n')); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handle answers the daemon-level commands directly and turns everything
// else into a wm.Command for the event loop.
func (s *Server) handle(ctx context.Context, req *Request) *Response {
	switch req.Command {
	case CommandPing:
		return okResponse(nil)
	case CommandGetStatus:
		return s.status(ctx)
	case CommandLock:
		return result(s.ctrl.Lock(ctx))
	case CommandUnlock:
		return result(s.ctrl.Unlock(ctx))
	case CommandReload:
		if err := s.ctrl.Reload(ctx); err != nil {
			log.Printf("IPC: reload failed: %v", err)
			return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
		}
		log.Println("IPC: config reloaded")
		return okResponse(nil)
	}

	cmd, err := commandFor(req)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return result(s.ctrl.Dispatch(ctx, cmd))
}

func (s *Server) status(ctx context.Context) *Response {
	st, err := s.ctrl.Status(ctx)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return okResponse(StatusData{
		Status:        st,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	})
}

func result(err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return okResponse(nil)
}

func okResponse(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// Stop closes the listener, waits for in-flight requests and removes the
// socket file.
func (s *Server) Stop() {
	s.closing.Store(true)
	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
