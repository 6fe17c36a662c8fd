// Package netlink implements a small sock_diag(7) client talking to the
// kernel's NETLINK_INET_DIAG subsystem over a raw netlink socket. Be sure to
// check netlink(7) for further information on netlink as a whole.
//
// A query is a single request/response cycle: a diagnostic request carrying
// an address family and a TCP state bitmask is written as one datagram and
// the kernel answers with a multi-part stream of inet_diag_msg messages
// terminated by NLMSG_DONE. An NLMSG_ERROR message anywhere in the stream
// aborts the query. Every structure on the wire is encoded and decoded with
// explicit byte offsets: netlink itself uses host byte ordering whilst the
// ports and addresses within struct inet_diag_sockid are in network order.
//
// By default the legacy TCPDIAG_GETSOCK request (struct inet_diag_req) is
// issued. It is still honoured by current kernels through [0]. Setting the
// version to 2 issues a SOCK_DIAG_BY_FAMILY request (struct inet_diag_req_v2)
// instead, which is what ss(8) does nowadays. Either way the kernel walks the
// sockets through inet_diag_dump_icsk [1]. As seen on [1], there are no
// mentions to r->id.idiag_src or r->id.idiag_dst on dumps, so the cookie is
// set to INET_DIAG_NOCOOKIE and the identity is otherwise left zeroed.
//
// Only IPv4 source addresses are interpreted when turning a response into a
// SocketRecord. The full inet_diag_msg is nonetheless available through
// DumpSockets.
//
// Each datagram is expected to carry whole messages only: the receive buffer
// (16 KiB by default, as in libnetlink) is large enough for the kernel never
// to split a message across datagrams. A message whose declared length runs
// past the end of its datagram is reported as a truncated message rather
// than being stitched together with the next one. There is no timeout on
// receives unless one is configured, so a kernel that never sends
// NLMSG_DONE blocks the caller indefinitely.
//
// 0: https://elixir.bootlin.com/linux/v6.12.4/source/net/ipv4/inet_diag.c#L1343
//
// 1: https://elixir.bootlin.com/linux/v6.12.4/source/net/ipv4/inet_diag.c#L1019
package netlink
