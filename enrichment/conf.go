package enrichment

import (
	"github.com/goccy/go-yaml"
)

type Config struct {
	// ProcRoot is where procfs is mounted.
	ProcRoot string `yaml:"procRoot"`

	// ResolveOwners enables the inode to process resolution.
	ResolveOwners bool `yaml:"resolveOwners"`

	// ResolveUsers enables the uid to user name resolution.
	ResolveUsers bool `yaml:"resolveUsers"`

	Log bool `yaml:"log"`
}

var DefaultConfig = Config{
	ProcRoot:      "/proc",
	ResolveOwners: false,
	ResolveUsers:  true,
	Log:           true,
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
