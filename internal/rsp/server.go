package rsp

// server.go accepts GDB connections over TCP (spec.md §5 Server Loop). Grounded on the
// single-connection accept loop in other_examples/963a481d_aykevl-emculator__gdb-rsp.go.go ("we
// intentionally don't handle the connection in a goroutine... only one GDB connection is
// supported") and on the socket options the original sets in gdbserver.c (SO_REUSEADDR so a
// restarted server can rebind immediately, TCP_NODELAY so single-byte stop replies are not
// Nagle-delayed), applied here through net.ListenConfig.Control since the standard library has no
// higher-level knob for either.

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"github.com/coreavr/coreavr/internal/core"
	"github.com/coreavr/coreavr/internal/log"
	"golang.org/x/sys/unix"
)

// Server serves one GDB client at a time against a shared core.
type Server struct {
	ops  CoreOps
	addr string
	log  *log.Logger

	// Trace, when true, logs every packet payload and reply at debug level (spec.md §6 "-G: dump
	// RSP traffic").
	Trace bool

	// Display, if set, receives PC/IO-name updates for the optional curses display coprocess
	// (spec.md §6). Nil by default; a nil feed is a no-op at the call sites that use it.
	Display *DisplayFeed
}

// NewServer returns a server that will listen on addr and drive c.
func NewServer(c *core.Core, addr string) *Server {
	return &Server{ops: NewCoreAdapter(c), addr: addr, log: log.DefaultLogger()}
}

// ListenAndServe binds addr and serves connections until ctx is canceled or a fatal accept error
// occurs. Only one client is served at a time (spec.md §5: "a second connection attempt blocks
// until the first disconnects"); the core is reset between sessions.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lc := net.ListenConfig{Control: controlReuseAddr}

	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()

	s.log.Info("listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}

		s.ops.Reset()

		if err := s.serveConn(ctx, conn); err != nil {
			s.log.Error("session ended", "error", err)
		}
	}
}

// controlReuseAddr sets SO_REUSEADDR and, for TCP connections accepted from this listener,
// TCP_NODELAY would be set per-connection in serveConn; SO_REUSEADDR belongs on the listening
// socket itself so a restarted server can rebind its port immediately.
func controlReuseAddr(network, address string, c syscall.RawConn) error {
	var sockErr error

	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}

	return sockErr
}

func setNoDelay(conn net.Conn) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}

	if err := tc.SetNoDelay(true); err != nil {
		log.DefaultLogger().Debug("set TCP_NODELAY failed", "error", err)
	}
}

// serveConn drives one client to completion: it reads packets and dispatches them until the
// client sends `k` or `D`, the connection closes, or ctx is canceled.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) error {
	defer conn.Close()

	setNoDelay(conn)

	s.log.Info("client connected", "remote", conn.RemoteAddr().String())
	defer s.log.Info("client disconnected", "remote", conn.RemoteAddr().String())

	codec := NewCodec(conn, conn)
	dispatcher := NewDispatcher(s.ops)

	if s.Display != nil {
		dispatcher.WithDisplay(s.Display)

		for n := 0; n < s.ops.IOCount(); n++ {
			_, name := s.ops.IOFetch(n)
			s.Display.IOName(n, name)
		}
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		payload, err := codec.ReadPacket()

		switch {
		case err == ErrResend:
			if err := codec.Resend(); err != nil {
				return err
			}

			continue
		case err == ErrBreak:
			continue // No continue/step in progress; an idle break is just noise.
		case err != nil:
			return err
		}

		if s.Trace {
			s.log.Debug("rsp recv", "payload", string(payload))
		}

		var cancel <-chan struct{}
		if isResumeCommand(payload) {
			cancel = codec.WatchBreak()
		}

		reply, exit := dispatcher.Dispatch(payload, cancel)

		if reply != nil {
			if s.Trace {
				s.log.Debug("rsp send", "reply", string(reply))
			}

			if err := codec.SendReply(reply); err != nil {
				return err
			}
		}

		if exit {
			return nil
		}
	}
}

// isResumeCommand reports whether payload starts a command that runs the core for more than one
// instruction boundary, during which the out-of-band break must be polled concurrently rather
// than awaited as the next packet.
func isResumeCommand(payload []byte) bool {
	if len(payload) == 0 {
		return false
	}

	switch payload[0] {
	case 'c', 'C':
		return true
	case 'v':
		return len(payload) >= 5 && string(payload[:5]) == "vCont" && payload[len(payload)-1] != '?'
	default:
		return false
	}
}
