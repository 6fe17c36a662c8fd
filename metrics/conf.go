package metrics

import (
	"github.com/goccy/go-yaml"
)

type Config struct {
	Log bool `yaml:"log"`

	// Enabled has the CLI dump the metrics to stderr once the query is over.
	Enabled bool `yaml:"enabled"`
}

var DefaultConfig = Config{
	Log:     true,
	Enabled: false,
}

func (c *Config) UnmarshalYAML(b []byte) error {
	// Needed to break recursive calls into UnmarshalYAML
	type config Config

	def := config(DefaultConfig)

	if err := yaml.Unmarshal(b, &def); err != nil {
		return err
	}

	*c = Config(def)

	return nil
}
