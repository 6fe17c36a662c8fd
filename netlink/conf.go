package netlink

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"golang.org/x/sys/unix"
)

type Config struct {
	// Version selects the request flavour: 1 for TCPDIAG_GETSOCK and 2 for
	// SOCK_DIAG_BY_FAMILY.
	Version int `yaml:"version"`

	// Protocol is only sent on version 2 requests.
	Protocol uint8 `yaml:"protocol"`

	// BufferSize can only grow past DefaultBufferSize.
	BufferSize int `yaml:"bufferSize"`

	// ReceiveTimeout is expressed in milliseconds. 0 blocks forever.
	ReceiveTimeout int `yaml:"receiveTimeoutMs"`

	Log bool `yaml:"log"`
}

var DefaultConfig = Config{
	Version:        1,
	Protocol:       unix.IPPROTO_TCP,
	BufferSize:     DefaultBufferSize,
	ReceiveTimeout: 0,
	Log:            true,
}

func (c *Config) UnmarshalYAML(b []byte) error {
	// Needed to break recursive calls into UnmarshalYAML
	type config Config

	def := config(DefaultConfig)

	if err := yaml.Unmarshal(b, &def); err != nil {
		return err
	}

	*c = Config(def)

	return c.Validate()
}

func (c *Config) Validate() error {
	if c.Version != 1 && c.Version != 2 {
		return fmt.Errorf("unsupported diag request version %d", c.Version)
	}
	// The kernel fills datagrams up to 16 KiB at most.
	if c.BufferSize < DefaultBufferSize {
		return fmt.Errorf("buffer size %d is below the minimum of %d", c.BufferSize, DefaultBufferSize)
	}
	if c.ReceiveTimeout < 0 {
		return fmt.Errorf("negative receive timeout %d", c.ReceiveTimeout)
	}
	return nil
}
