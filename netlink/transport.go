package netlink

// Transport moves raw bytes to and from the kernel. A Transport serves a
// single query: it's used for one Send followed by as many Receive calls as
// needed to reach NLMSG_DONE and it's then closed.
type Transport interface {
	// Send writes b as a single datagram.
	Send(b []byte) error

	// Receive blocks until a datagram arrives and returns its contents.
	Receive() ([]byte, error)

	// Close releases the underlying socket. Calling it more than once is
	// a no-op.
	Close() error
}
