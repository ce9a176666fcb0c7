package ntt

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jonathanmweiss/go-ntt/kernel"
)

// DefaultMaxLgDomainSize caps the root tables of fields with a larger
// two-adicity.
const DefaultMaxLgDomainSize = 28

// Config describes the domains an Engine serves. Zero values select
// defaults.
type Config struct {
	// MaxLgDomainSize is the largest lg accepted by any entry point,
	// including lg+lgBlowup of an extension.
	MaxLgDomainSize uint32 `yaml:"max-lg-domain-size"`
	// LgWindowSize is log2 of the row length of the root tables.
	LgWindowSize int `yaml:"lg-window-size"`
	// LgPassSize is the number of butterfly stages fused per launch.
	LgPassSize int `yaml:"lg-pass-size"`
	// LgTileSize is log2 of the tile side of the bit reversal.
	LgTileSize int `yaml:"lg-tile-size"`
}

// LoadConfig decodes a YAML document. Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "failed to decode engine config")
	}

	return cfg, nil
}

func (c Config) withDefaults(twoAdicity, width int) (Config, kernel.Tuning, error) {
	if c.MaxLgDomainSize == 0 {
		c.MaxLgDomainSize = DefaultMaxLgDomainSize
		if twoAdicity < DefaultMaxLgDomainSize {
			c.MaxLgDomainSize = uint32(twoAdicity)
		}
	}

	if int(c.MaxLgDomainSize) > twoAdicity {
		return Config{}, kernel.Tuning{}, errors.Errorf("max domain 2^%d exceeds the two-adicity %d of the field",
			c.MaxLgDomainSize, twoAdicity)
	}

	if c.LgWindowSize < 0 || c.LgPassSize < 0 || c.LgTileSize < 0 {
		return Config{}, kernel.Tuning{}, errors.Errorf("negative size in config %+v", c)
	}

	tuning := kernel.DefaultTuning(width)
	if c.LgPassSize == 0 {
		c.LgPassSize = tuning.LgPass
	}

	if c.LgTileSize == 0 {
		c.LgTileSize = tuning.LgTile
	}

	return c, kernel.Tuning{LgPass: c.LgPassSize, LgTile: c.LgTileSize}, nil
}
