package netlink

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	nl "github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"

	"github.com/scitags/sockdiag-go/types"
)

func init() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     types.LevelError,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time.
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			// Remove the directory from the source's filename.
			if a.Key == slog.SourceKey {
				source := a.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return a
		},
	}))
	slog.SetDefault(logger)
}

// mockTransport replays canned datagrams and keeps track of how it's used.
type mockTransport struct {
	chunks [][]byte

	sendErr error

	sent     [][]byte
	receives int
	closes   int
}

func (m *mockTransport) Send(b []byte) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, b)
	return nil
}

func (m *mockTransport) Receive() ([]byte, error) {
	if m.receives >= len(m.chunks) {
		m.receives++
		return nil, &TransportError{Op: "recvmsg", Err: unix.EAGAIN}
	}
	c := m.chunks[m.receives]
	m.receives++
	return c, nil
}

func (m *mockTransport) Close() error {
	m.closes++
	return nil
}

func newMockClient(t *testing.T, conf *Config, mt *mockTransport) *Client {
	t.Helper()
	c, err := NewClient(conf)
	if err != nil {
		t.Fatalf("error creating the client: %v", err)
	}
	c.dial = func(*Config) Transport { return mt }
	return c
}

func ipv4Word(a, b, c, d byte) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

func response(ip uint32, port uint16) DiagResponse {
	return DiagResponse{
		Family: unix.AF_INET,
		State:  uint8(types.TCP_LISTEN),
		ID: SockID{
			SPort:  port,
			Src:    [4]uint32{ip},
			Cookie: [2]uint32{0xdead, 0xbeef},
		},
		UID:   1000,
		INode: 4242,
	}
}

// dataMsg frames r as a data message. Extra bytes are appended to the payload
// so that the message length is not necessarily aligned.
func dataMsg(t *testing.T, r DiagResponse, extra int) []byte {
	t.Helper()
	payload, err := r.MarshalBinary()
	if err != nil {
		t.Fatalf("error marshalling the response: %v", err)
	}
	payload = append(payload, make([]byte, extra)...)

	h := nl.Header{
		Length:   uint32(sizeofHeader + len(payload)),
		Type:     TCPDIAG_GETSOCK,
		Flags:    nl.Multi,
		Sequence: 1,
	}

	msg := append(EncodeHeader(h), payload...)
	return append(msg, make([]byte, Align(len(msg))-len(msg))...)
}

func doneMsg() []byte {
	h := nl.Header{Length: sizeofHeader + 4, Type: nl.Done, Flags: nl.Multi, Sequence: 1}
	return append(EncodeHeader(h), 0, 0, 0, 0)
}

func errorMsg(t *testing.T, code int32) []byte {
	t.Helper()
	ef := ErrorFrame{
		Code:   code,
		Header: nl.Header{Length: sizeofDiagRequest, Type: TCPDIAG_GETSOCK, Flags: nl.Request | nl.Dump, Sequence: 1},
	}
	payload, err := ef.MarshalBinary()
	if err != nil {
		t.Fatalf("error marshalling the error frame: %v", err)
	}
	h := nl.Header{Length: uint32(sizeofHeader + len(payload)), Type: nl.Error, Sequence: 1}
	return append(EncodeHeader(h), payload...)
}

func concat(msgs ...[]byte) []byte {
	out := []byte{}
	for _, m := range msgs {
		out = append(out, m...)
	}
	return out
}
