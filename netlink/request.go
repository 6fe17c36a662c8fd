package netlink

import (
	"encoding"
	"os"

	nl "github.com/mdlayher/netlink"
)

// Request is a fully framed diagnostic request ready to be written to the
// diagnostic socket.
type Request interface {
	encoding.BinaryMarshaler
}

// NewDiagRequest crafts a legacy TCPDIAG_GETSOCK dump request for every TCP
// socket of the given family whose state is set in the states bitmask.
func NewDiagRequest(family uint8, states uint32) DiagRequest {
	return DiagRequest{
		Header: nl.Header{
			Length: sizeofDiagRequest,
			Type:   TCPDIAG_GETSOCK,
			// Without nl.Dump we'd be asking for a single socket lookup.
			Flags:    nl.Request | nl.Dump,
			Sequence: 1,
			PID:      uint32(os.Getpid()),
		},
		Family: family,
		ID: SockID{
			Cookie: [2]uint32{NoCookie, NoCookie},
		},
		States: states,
	}
}

// NewDiagRequestV2 crafts a SOCK_DIAG_BY_FAMILY dump request. Unlike the
// legacy request the transport protocol has to be stated explicitly.
func NewDiagRequestV2(family uint8, protocol uint8, states uint32) DiagRequestV2 {
	return DiagRequestV2{
		Header: nl.Header{
			Length:   sizeofDiagRequestV2,
			Type:     SOCK_DIAG_BY_FAMILY,
			Flags:    nl.Request | nl.Dump,
			Sequence: 1,
			PID:      uint32(os.Getpid()),
		},
		Family:   family,
		Protocol: protocol,
		States:   states,
		ID: SockID{
			Cookie: [2]uint32{NoCookie, NoCookie},
		},
	}
}
