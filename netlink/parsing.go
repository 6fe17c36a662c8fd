package netlink

import (
	"encoding/binary"

	ne "github.com/josharian/native"
	nl "github.com/mdlayher/netlink"
)

var (
	native       = ne.Endian
	networkOrder = binary.BigEndian
)

// Align rounds size up to the netlink message alignment (NLMSG_ALIGN).
func Align(size int) int {
	return (size + alignTo - 1) &^ (alignTo - 1)
}

// Please note the readBuffer has been plundered from
// github.com/vishvananda/netlink/socket_linux.go. Callers must check the
// buffer is long enough before reading from it.
type readBuffer struct {
	Bytes []byte
	pos   int
}

func (b *readBuffer) Read() byte {
	c := b.Bytes[b.pos]
	b.pos++
	return c
}

func (b *readBuffer) Next(n int) []byte {
	s := b.Bytes[b.pos : b.pos+n]
	b.pos += n
	return s
}

// DecodeHeader decodes the struct nlmsghdr at the beginning of b.
func DecodeHeader(b []byte) (nl.Header, error) {
	if len(b) < sizeofHeader {
		return nl.Header{}, shortRead("netlink header", len(b), sizeofHeader)
	}
	rb := readBuffer{Bytes: b}
	return rb.header(), nil
}

func (b *readBuffer) header() nl.Header {
	return nl.Header{
		Length:   native.Uint32(b.Next(4)),
		Type:     nl.HeaderType(native.Uint16(b.Next(2))),
		Flags:    nl.HeaderFlags(native.Uint16(b.Next(2))),
		Sequence: native.Uint32(b.Next(4)),
		PID:      native.Uint32(b.Next(4)),
	}
}

func (b *readBuffer) sockID() SockID {
	id := SockID{}
	id.SPort = networkOrder.Uint16(b.Next(2))
	id.DPort = networkOrder.Uint16(b.Next(2))
	for i := range id.Src {
		id.Src[i] = networkOrder.Uint32(b.Next(4))
	}
	for i := range id.Dst {
		id.Dst[i] = networkOrder.Uint32(b.Next(4))
	}
	id.If = native.Uint32(b.Next(4))
	id.Cookie[0] = native.Uint32(b.Next(4))
	id.Cookie[1] = native.Uint32(b.Next(4))
	return id
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (id *SockID) UnmarshalBinary(b []byte) error {
	if len(b) < sizeofSocketID {
		return shortRead("socket id", len(b), sizeofSocketID)
	}
	rb := readBuffer{Bytes: b}
	*id = rb.sockID()
	return nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (e *ErrorFrame) UnmarshalBinary(b []byte) error {
	if len(b) < sizeofErrorFrame {
		return shortRead("netlink error", len(b), sizeofErrorFrame)
	}
	rb := readBuffer{Bytes: b}
	code := int32(native.Uint32(rb.Next(4)))
	*e = ErrorFrame{Code: code, Header: rb.header()}
	return nil
}

// DecodeErrorFrame decodes the struct nlmsgerr following an NLMSG_ERROR header.
func DecodeErrorFrame(b []byte) (ErrorFrame, error) {
	e := ErrorFrame{}
	err := e.UnmarshalBinary(b)
	return e, err
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *DiagRequest) UnmarshalBinary(b []byte) error {
	if len(b) < sizeofDiagRequest {
		return shortRead("diag request", len(b), sizeofDiagRequest)
	}
	rb := readBuffer{Bytes: b}
	req := DiagRequest{Header: rb.header()}
	req.Family = rb.Read()
	req.SrcLen = rb.Read()
	req.DstLen = rb.Read()
	req.Ext = rb.Read()
	req.ID = rb.sockID()
	req.States = native.Uint32(rb.Next(4))
	req.DBs = native.Uint32(rb.Next(4))
	*r = req
	return nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *DiagRequestV2) UnmarshalBinary(b []byte) error {
	if len(b) < sizeofDiagRequestV2 {
		return shortRead("diag request v2", len(b), sizeofDiagRequestV2)
	}
	rb := readBuffer{Bytes: b}
	req := DiagRequestV2{Header: rb.header()}
	req.Family = rb.Read()
	req.Protocol = rb.Read()
	req.Ext = rb.Read()
	req.Pad = rb.Read()
	req.States = native.Uint32(rb.Next(4))
	req.ID = rb.sockID()
	*r = req
	return nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Trailing bytes such
// as route attributes are ignored.
func (r *DiagResponse) UnmarshalBinary(b []byte) error {
	if len(b) < sizeofSocket {
		return shortRead("socket data", len(b), sizeofSocket)
	}
	rb := readBuffer{Bytes: b}
	s := DiagResponse{}
	s.Family = rb.Read()
	s.State = rb.Read()
	s.Timer = rb.Read()
	s.Retrans = rb.Read()
	s.ID = rb.sockID()
	s.Expires = native.Uint32(rb.Next(4))
	s.RQueue = native.Uint32(rb.Next(4))
	s.WQueue = native.Uint32(rb.Next(4))
	s.UID = native.Uint32(rb.Next(4))
	s.INode = native.Uint32(rb.Next(4))
	*r = s
	return nil
}

// DecodeRecord turns the payload of a data message into a SocketRecord.
// Only IPv4 source addresses are interpreted.
func DecodeRecord(payload []byte) (SocketRecord, error) {
	r := DiagResponse{}
	if err := r.UnmarshalBinary(payload); err != nil {
		return SocketRecord{}, err
	}
	return r.Record(), nil
}

// DecodeSocket turns the payload of a data message into a DiagResponse.
func DecodeSocket(payload []byte) (DiagResponse, error) {
	r := DiagResponse{}
	err := r.UnmarshalBinary(payload)
	return r, err
}
