package netlink

import (
	"fmt"
	"net"
	"strconv"

	nl "github.com/mdlayher/netlink"
	"github.com/scitags/sockdiag-go/types"
)

// SockID is the Golang counterpart of 'struct inet_diag_sockid' as found in
// linux/inet_diag.h. Ports are kept as host values even though they travel
// in network order. Address words hold the big-endian interpretation of each
// 4-byte group, so 127.0.0.1 becomes Src[0] == 0x7f000001. Only the first
// word is meaningful for IPv4.
type SockID struct {
	SPort  uint16
	DPort  uint16
	Src    [4]uint32
	Dst    [4]uint32
	If     uint32
	Cookie [2]uint32
}

// DiagRequest is the legacy request (struct inet_diag_req) together with its
// netlink header. Check sock_diag(7) for more information.
type DiagRequest struct {
	Header nl.Header

	Family uint8
	SrcLen uint8
	DstLen uint8
	Ext    uint8
	ID     SockID
	States uint32
	DBs    uint32
}

// DiagRequestV2 is the SOCK_DIAG_BY_FAMILY request (struct inet_diag_req_v2)
// together with its netlink header.
type DiagRequestV2 struct {
	Header nl.Header

	Family   uint8
	Protocol uint8
	Ext      uint8
	Pad      uint8
	States   uint32
	ID       SockID
}

// DiagResponse is struct inet_diag_msg: one is sent back by the kernel for
// every matching socket.
type DiagResponse struct {
	Family  uint8
	State   uint8
	Timer   uint8
	Retrans uint8
	ID      SockID
	Expires uint32
	RQueue  uint32
	WQueue  uint32
	UID     uint32
	INode   uint32
}

// TCPState returns the state reported by the kernel.
func (r DiagResponse) TCPState() types.State {
	return types.State(r.State)
}

// SourceIP interprets the first address word as an IPv4 address.
func (r DiagResponse) SourceIP() net.IP {
	return wordToIPv4(r.ID.Src[0])
}

// Record projects the response onto the local address and port.
func (r DiagResponse) Record() SocketRecord {
	return SocketRecord{
		IP:   r.SourceIP().String(),
		Port: r.ID.SPort,
	}
}

// ErrorFrame is struct nlmsgerr: the negated errno followed by the header of
// the message that triggered the error.
type ErrorFrame struct {
	Code   int32
	Header nl.Header
}

// SocketRecord is the local endpoint of a socket.
type SocketRecord struct {
	IP   string
	Port uint16
}

func (s SocketRecord) String() string {
	return net.JoinHostPort(s.IP, strconv.FormatUint(uint64(s.Port), 10))
}

func (r DiagResponse) String() string {
	return fmt.Sprintf("%s %s uid=%d inode=%d", r.Record(), r.TCPState(), r.UID, r.INode)
}

func wordToIPv4(w uint32) net.IP {
	return net.IPv4(byte(w>>24), byte(w>>16), byte(w>>8), byte(w))
}
