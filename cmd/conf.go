package main

import (
	"fmt"
	"os"
	"reflect"

	"github.com/goccy/go-yaml"

	"github.com/scitags/sockdiag-go/enrichment"
	"github.com/scitags/sockdiag-go/metrics"
	"github.com/scitags/sockdiag-go/netlink"
)

// QueryConfig holds what to ask the kernel for and how to show it.
type QueryConfig struct {
	Family  string   `yaml:"family"`
	States  []string `yaml:"states"`
	Format  string   `yaml:"format"`
	Verbose bool     `yaml:"verbose"`
}

type Config struct {
	Query QueryConfig `yaml:"query"`

	Netlink    *netlink.Config    `yaml:"netlink"`
	Enrichment *enrichment.Config `yaml:"enrichment"`
	Metrics    *metrics.Config    `yaml:"metrics"`
}

func (c Config) String() string {
	m, err := yaml.MarshalWithOptions(c, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return "marshalling error..."
	}
	return string(m)
}

func (c *Config) UnmarshalYAML(b []byte) error {
	// Needed to break recursive calls into UnmarshalYAML
	type config Config

	def := config(*DefaultConf())

	if err := yaml.Unmarshal(b, &def); err != nil {
		return err
	}

	*c = Config(def)

	return nil
}

// DefaultConf is used when no configuration file is provided. The netlink,
// enrichment and metrics sections fall back to their packages' defaults.
func DefaultConf() *Config {
	return &Config{
		Query: QueryConfig{
			Family: "inet",
			States: []string{"LISTEN"},
			Format: "text",
		},
	}
}

func ReadConf(path string) (*Config, error) {
	r, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading the configuration file: %w", err)
	}

	conf := &Config{}
	if err := yaml.Unmarshal(r, conf); err != nil {
		return nil, fmt.Errorf("error unmarshaling the configuration: %w", err)
	}

	// Empty (or comment-only) documents never reach UnmarshalYAML and leave
	// conf zeroed.
	if reflect.ValueOf(*conf).IsZero() {
		return DefaultConf(), nil
	}

	return conf, nil
}
