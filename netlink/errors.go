package netlink

import (
	"errors"
	"fmt"

	nl "github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"
)

// ErrTruncatedMessage is wrapped by every error caused by a buffer shorter
// than the structure being decoded.
var ErrTruncatedMessage = errors.New("netlink message truncated")

func shortRead(what string, got, want int) error {
	return fmt.Errorf("%w: %s short read (%d); want %d", ErrTruncatedMessage, what, got, want)
}

// ProtocolError is returned when the kernel answers with an NLMSG_ERROR
// message. It unwraps to the matching unix.Errno so callers can rely on
// errors.Is(err, unix.ECONNREFUSED) and the like.
type ProtocolError struct {
	// Code is the error field of struct nlmsgerr: a negated errno.
	Code int32

	// Header is the header of the request that caused the error.
	Header nl.Header
}

// Errno returns the positive errno carried by the error message. The
// negation is carried out on 64 bits so math.MinInt32 can't overflow.
func (e *ProtocolError) Errno() unix.Errno {
	c := int64(e.Code)
	if c < 0 {
		c = -c
	}
	return unix.Errno(c)
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("netlink error message: %s (%d)", e.Errno().Error(), e.Code)
}

func (e *ProtocolError) Unwrap() error {
	return e.Errno()
}

// TransportError wraps a failure of the underlying netlink socket.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("netlink %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
