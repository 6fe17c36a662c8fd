//go:build linux

package netlink

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// socketTransport owns a NETLINK_INET_DIAG socket. The socket is opened on
// the first Send so that building a transport can never fail.
type socketTransport struct {
	fd      int
	closed  bool
	timeout time.Duration
	buf     []byte
}

func newSocketTransport(c *Config) Transport {
	return &socketTransport{
		fd:      -1,
		timeout: time.Duration(c.ReceiveTimeout) * time.Millisecond,
		buf:     make([]byte, c.BufferSize),
	}
}

func (s *socketTransport) open() error {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, NETLINK_INET_DIAG)
	if err != nil {
		return &TransportError{Op: "socket", Err: err}
	}

	if s.timeout > 0 {
		tv := unix.NsecToTimeval(s.timeout.Nanoseconds())
		if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
			unix.Close(fd)
			return &TransportError{Op: "setsockopt", Err: err}
		}
	}

	// Bind to (pid, 0): the kernel addresses its answers to our port ID.
	if err := unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Pid: uint32(os.Getpid())}); err != nil {
		unix.Close(fd)
		return &TransportError{Op: "bind", Err: err}
	}

	s.fd = fd
	return nil
}

func (s *socketTransport) Send(b []byte) error {
	if s.closed {
		return &TransportError{Op: "sendto", Err: os.ErrClosed}
	}
	if s.fd < 0 {
		if err := s.open(); err != nil {
			return err
		}
	}

	// The kernel lives at port ID 0.
	if err := unix.Sendto(s.fd, b, 0, &unix.SockaddrNetlink{Family: unix.AF_NETLINK}); err != nil {
		return &TransportError{Op: "sendto", Err: err}
	}
	return nil
}

func (s *socketTransport) Receive() ([]byte, error) {
	if s.closed || s.fd < 0 {
		return nil, &TransportError{Op: "recvmsg", Err: os.ErrClosed}
	}

	for {
		n, _, recvflags, _, err := unix.Recvmsg(s.fd, s.buf, nil, 0)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return nil, &TransportError{Op: "recvmsg", Err: err}
		}
		return datagram(s.buf, n, recvflags)
	}
}

// datagram copies the n bytes received into buf. The kernel silently drops
// whatever doesn't fit in buf and flags it with MSG_TRUNC: the messages lost
// that way can't be told apart from the end of the datagram.
func datagram(buf []byte, n, recvflags int) ([]byte, error) {
	if recvflags&unix.MSG_TRUNC != 0 {
		return nil, fmt.Errorf("%w: datagram doesn't fit in a %d byte buffer", ErrTruncatedMessage, len(buf))
	}

	out := make([]byte, n)
	copy(out, buf[:n])
	return out, nil
}

func (s *socketTransport) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.fd < 0 {
		return nil
	}
	if err := unix.Close(s.fd); err != nil {
		return &TransportError{Op: "close", Err: err}
	}
	s.fd = -1
	return nil
}
