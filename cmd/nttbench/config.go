package main

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	ntt "github.com/jonathanmweiss/go-ntt"
	"github.com/jonathanmweiss/go-ntt/device"
)

// fileConfig is the layout of the --config file.
type fileConfig struct {
	Engine ntt.Config    `yaml:"engine"`
	Device device.Config `yaml:"device"`
}

func readConfig(r io.Reader) (fileConfig, error) {
	var cfg fileConfig

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return fileConfig{}, errors.Wrap(err, "invalid config file")
	}

	return cfg, nil
}

func loadConfig(path string) (fileConfig, error) {
	if path == "" {
		return fileConfig{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fileConfig{}, errors.Wrapf(err, "cannot open config file %s", path)
	}
	defer f.Close()

	return readConfig(f)
}

type environment struct {
	log      *zerolog.Logger
	dev      *device.Device
	registry *prometheus.Registry
	engine   ntt.Config

	lg         uint32
	lgBlowup   uint32
	order      ntt.Order
	shift      ntt.CosetShift
	iterations int
	seed       string
}

// settings are the command line values that override the config file.
type settings struct {
	units       int
	memoryLimit int64
	setUnits    bool
	setLimit    bool
}

func (s settings) apply(cfg *fileConfig) {
	if s.setUnits {
		cfg.Device.Units = s.units
	}

	if s.setLimit {
		cfg.Device.MemoryLimit = s.memoryLimit
	}
}

func newEnvironment(c *cli.Context, log *zerolog.Logger) (*environment, error) {
	cfg, err := loadConfig(c.String(configFlag))
	if err != nil {
		return nil, err
	}

	settings{
		units:       c.Int(unitsFlag),
		memoryLimit: c.Int64(memoryLimitFlag),
		setUnits:    c.IsSet(unitsFlag),
		setLimit:    c.IsSet(memoryLimitFlag),
	}.apply(&cfg)

	order, err := ntt.ParseOrder(c.String(orderFlag))
	if err != nil {
		return nil, err
	}

	shift := ntt.ShiftBase
	if c.IsSet(shiftFlag) {
		if shift, err = ntt.ParseCosetShift(c.String(shiftFlag)); err != nil {
			return nil, err
		}
	}

	iterations := c.Int(iterationsFlag)
	if iterations < 1 {
		return nil, errors.Errorf("--%s must be positive", iterationsFlag)
	}

	registry := prometheus.NewRegistry()
	cfg.Device.Logger = log
	cfg.Device.Registerer = registry

	dev, err := device.New(cfg.Device)
	if err != nil {
		return nil, err
	}

	return &environment{
		log:        log,
		dev:        dev,
		registry:   registry,
		engine:     cfg.Engine,
		lg:         uint32(c.Uint(lgFlag)),
		lgBlowup:   uint32(c.Uint(lgBlowupFlag)),
		order:      order,
		shift:      shift,
		iterations: iterations,
		seed:       c.String(seedFlag),
	}, nil
}

func (env *environment) dumpMetrics() {
	families, err := env.registry.Gather()
	if err != nil {
		env.log.Error().Err(err).Msg("failed to gather metrics")
		return
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			sort.Strings(labels)

			value := m.GetCounter().GetValue()
			if m.GetGauge() != nil {
				value = m.GetGauge().GetValue()
			}

			env.log.Info().Str("metric", mf.GetName()).Strs("labels", labels).Float64("value", value).Msg("metric")
		}
	}
}
