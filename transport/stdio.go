package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/felixgeelhaar/toolrpc/protocol"
)

// ErrClosed is returned by Send after the transport has been closed.
// Sending on a closed transport is a lifecycle error, not a recoverable
// condition.
var ErrClosed = errors.New("toolrpc: transport closed")

// Stdio implements the line-oriented transport over stdin/stdout.
// Framing is exactly one JSON value per line; the JSON encoder escapes
// embedded newlines, so a serialized message never spans lines.
type Stdio struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// Concurrent completions share the one output channel; writes are
	// serialized so partial lines never interleave.
	writeMu sync.Mutex

	closed    atomic.Bool
	closeOnce sync.Once
	drain     *Drain
}

// StdioOption configures a Stdio transport.
type StdioOption func(*Stdio)

// WithStdin sets a custom stdin reader.
func WithStdin(r io.Reader) StdioOption {
	return func(s *Stdio) {
		s.in = r
	}
}

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.out = w
	}
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.errOut = w
	}
}

// NewStdio creates a new stdio transport.
func NewStdio(opts ...StdioOption) *Stdio {
	s := &Stdio{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		drain:  NewDrain(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Addr returns the transport address.
func (s *Stdio) Addr() string {
	return "stdio"
}

// IsConnected reports whether the transport is still open.
func (s *Stdio) IsConnected() bool {
	return !s.closed.Load()
}

// Close marks the transport closed and releases the input stream.
// It is idempotent.
func (s *Stdio) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if c, ok := s.in.(io.Closer); ok {
			_ = c.Close()
		}
	})
	return nil
}

// Serve reads one request per line and dispatches it. The read loop
// never blocks on a dispatch: each request runs on its own goroutine,
// so responses may be written out of arrival order and correlation is
// by identifier only. Serve returns nil once the input stream is
// exhausted and in-flight dispatches have drained, or ctx.Err() on
// cancellation.
func (s *Stdio) Serve(ctx context.Context, handler Handler) error {
	scanner := bufio.NewScanner(s.in)

	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			scanErr <- err
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-scanErr:
			return err
		case line, ok := <-lines:
			if !ok {
				// A read error is sent before lines closes, so it is
				// already buffered here if there was one.
				select {
				case err := <-scanErr:
					return err
				default:
				}
				// EOF: let in-flight dispatches finish.
				return s.drain.Wait(ctx)
			}
			s.handleLine(ctx, handler, line)
		}
	}
}

// handleLine decodes one line and starts its dispatch. Malformed input
// is converted to a PARSE_ERROR here and never reaches the handler.
func (s *Stdio) handleLine(ctx context.Context, handler Handler, line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	req, perr := decodeRequest(line)
	if perr != nil {
		// The request identity is unknowable, so the id is literal null.
		s.writeResponse(protocol.NewErrorResponse(json.RawMessage("null"), perr))
		return
	}

	if !s.drain.Track() {
		return
	}

	go func() {
		defer s.drain.Complete()

		if resp := handler.HandleRequest(ctx, req); resp != nil {
			_ = s.Send(resp)
		}
	}()
}

// decodeRequest parses a line into a request envelope. A line that is
// not valid JSON, lacks the protocol version tag, or has a missing or
// non-string method is a parse error.
func decodeRequest(line string) (*protocol.Request, *protocol.Error) {
	var req protocol.Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return nil, protocol.NewParseError(err.Error())
	}

	if req.JSONRPC != protocol.JSONRPCVersion {
		return nil, protocol.NewParseError(
			fmt.Sprintf("unrecognized protocol version tag: %q", req.JSONRPC))
	}

	if req.Method == "" {
		return nil, protocol.NewParseError("missing method")
	}

	return &req, nil
}

// Send serializes the response and writes it as a single
// newline-terminated line. It fails only once the transport has been
// closed.
func (s *Stdio) Send(resp *protocol.Response) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.writeResponse(resp)
	return nil
}

// SendNotification sends a server-initiated notification to the client.
func (s *Stdio) SendNotification(method string, params any) error {
	if s.closed.Load() {
		return ErrClosed
	}

	paramsData, err := json.Marshal(params)
	if err != nil {
		return err
	}

	notif := protocol.Notification{
		JSONRPC: protocol.JSONRPCVersion,
		Method:  method,
		Params:  paramsData,
	}

	data, err := json.Marshal(notif)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.out.Write(data); err != nil {
		return err
	}
	_, err = s.out.Write([]byte("\n"))
	return err
}

func (s *Stdio) writeResponse(resp *protocol.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, _ = s.out.Write(data)
	_, _ = s.out.Write([]byte("\n"))
}
