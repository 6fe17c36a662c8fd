//go:build !linux

package netlink

import (
	"errors"
	"runtime"
)

var errUnsupported = errors.New("sock_diag is only available on linux, not on " + runtime.GOOS)

type socketTransport struct{}

func newSocketTransport(c *Config) Transport {
	return &socketTransport{}
}

func (s *socketTransport) Send(b []byte) error {
	return &TransportError{Op: "socket", Err: errUnsupported}
}

func (s *socketTransport) Receive() ([]byte, error) {
	return nil, &TransportError{Op: "recvmsg", Err: errUnsupported}
}

func (s *socketTransport) Close() error {
	return nil
}
