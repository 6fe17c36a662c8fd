package netlink

import (
	"fmt"
	"log/slog"

	nl "github.com/mdlayher/netlink"
)

// Client issues sock_diag queries. It holds no socket between queries:
// every call to Dump or DumpSockets opens and closes its own transport.
type Client struct {
	Config

	logger *slog.Logger

	// dial builds the transport of a single query.
	dial func(*Config) Transport
}

func (c *Client) String() string {
	return "sock_diag client"
}

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = &DefaultConfig
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c := Client{
		Config: *config,
		dial:   newSocketTransport,
	}

	if c.Log {
		c.logger = slog.Default().With("t", "netlink")
	} else {
		c.logger = slog.New(slog.DiscardHandler)
	}

	return &c, nil
}

func (c *Client) newRequest(family uint8, states uint32) Request {
	if c.Version == 2 {
		return NewDiagRequestV2(family, c.Protocol, states)
	}
	return NewDiagRequest(family, states)
}

// Dump returns the local address and port of every TCP socket of the given
// family whose state is set in states, in the order the kernel reported them.
func (c *Client) Dump(family uint8, states uint32) ([]SocketRecord, error) {
	return query(c, family, states, DecodeRecord)
}

// DumpSockets behaves like Dump but hands back the whole inet_diag_msg of
// every socket.
func (c *Client) DumpSockets(family uint8, states uint32) ([]DiagResponse, error) {
	return query(c, family, states, DecodeSocket)
}

func query[T any](c *Client, family uint8, states uint32, decode func([]byte) (T, error)) ([]T, error) {
	req := c.newRequest(family, states)
	c.logger.Debug("crafted request", "family", family, "states", states, "version", c.Version)

	raw, err := req.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("error serialising the request: %w", err)
	}

	t := c.dial(&c.Config)
	defer func() {
		if err := t.Close(); err != nil {
			c.logger.Warn("error closing the netlink transport", "err", err)
		}
	}()

	if err := t.Send(raw); err != nil {
		return nil, err
	}

	results := []T{}
	err = readStream(c.logger, t, func(h nl.Header, payload []byte) error {
		r, err := decode(payload)
		if err != nil {
			return err
		}
		results = append(results, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("query finished", "family", family, "n", len(results))
	return results, nil
}

// Dump runs a query with the DefaultConfig.
func Dump(family uint8, states uint32) ([]SocketRecord, error) {
	c, err := NewClient(nil)
	if err != nil {
		return nil, err
	}
	return c.Dump(family, states)
}
