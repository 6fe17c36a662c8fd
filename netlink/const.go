package netlink

import (
	nl "github.com/mdlayher/netlink"
)

// All of these constants' names make the linter complain, but we inherited
// these names from external C code, so we will keep them.
const (
	// NETLINK_INET_DIAG is the netlink protocol the diagnostic socket is opened
	// with. It's also known as NETLINK_SOCK_DIAG.
	NETLINK_INET_DIAG = 4

	// TCPDIAG_GETSOCK is the message type of legacy inet_diag_req requests
	// as defined in linux/inet_diag.h.
	TCPDIAG_GETSOCK nl.HeaderType = 18

	// SOCK_DIAG_BY_FAMILY is the message type of inet_diag_req_v2 requests
	// as defined in linux/sock_diag.h.
	SOCK_DIAG_BY_FAMILY nl.HeaderType = 20
)

// NoCookie is INET_DIAG_NOCOOKIE: placed in both cookie words of a request it
// tells the kernel to match any socket instead of looking up a specific one.
const NoCookie uint32 = ^uint32(0)

// DefaultBufferSize is the size of the receive buffer. The size is borrowed
// from libnetlink and is large enough for the kernel never to truncate a
// message.
const DefaultBufferSize = 16384

const (
	alignTo = 4

	sizeofHeader        = 0x10
	sizeofErrorFrame    = 0x4 + sizeofHeader
	sizeofSocketID      = 0x30
	sizeofSocketRequest = sizeofSocketID + 0xc
	sizeofSocketReqV2   = sizeofSocketID + 0x8
	sizeofSocket        = sizeofSocketID + 0x18

	sizeofDiagRequest   = sizeofHeader + sizeofSocketRequest
	sizeofDiagRequestV2 = sizeofHeader + sizeofSocketReqV2
)
