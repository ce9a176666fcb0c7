package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	Version   = "DEV"
	BuildTime = "unknown"
)

const (
	configFlag      = "config"
	fieldFlag       = "field"
	lgFlag          = "lg"
	lgBlowupFlag    = "lg-blowup"
	orderFlag       = "order"
	shiftFlag       = "shift"
	iterationsFlag  = "iterations"
	logLevelFlag    = "loglevel"
	seedFlag        = "seed"
	unitsFlag       = "units"
	memoryLimitFlag = "memory-limit"
	metricsFlag     = "metrics"
)

func main() {
	app := &cli.App{
		Name:      "nttbench",
		Usage:     "Benchmark and verify number-theoretic transforms and low-degree extensions",
		UsageText: "nttbench [global options] command [command options]",
		Version:   fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:     flags(),
		Commands:  commands(),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "bench",
			Usage:  "Time repeated transforms of one domain size",
			Action: action(func(r runner, env *environment) error { return r.bench(env) }),
		},
		{
			Name:   "lde",
			Usage:  "Time repeated low-degree extensions",
			Action: action(func(r runner, env *environment) error { return r.lde(env) }),
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  shiftFlag,
					Usage: "Coset shift of the extension: base, extended or none",
					Value: "base",
				},
			},
		},
		{
			Name:   "verify",
			Usage:  "Check every ordering and the extension against naive evaluation",
			Action: action(func(r runner, env *environment) error { return r.verify(env) }),
		},
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Usage:   "YAML file with engine and device settings",
			EnvVars: []string{"NTTBENCH_CONFIG"},
		},
		&cli.StringFlag{
			Name:  fieldFlag,
			Usage: "Field to run over: babybear, goldilocks, bls12-381 or prime:<p>",
			Value: "babybear",
		},
		&cli.UintFlag{
			Name:  lgFlag,
			Usage: "log2 of the domain size",
			Value: 16,
		},
		&cli.UintFlag{
			Name:  lgBlowupFlag,
			Usage: "log2 of the extension factor",
			Value: 1,
		},
		&cli.StringFlag{
			Name:  orderFlag,
			Usage: "Input/output ordering: NN, NR, RN or RR",
			Value: "NN",
		},
		&cli.IntFlag{
			Name:  iterationsFlag,
			Usage: "Number of timed runs",
			Value: 10,
		},
		&cli.StringFlag{
			Name:  seedFlag,
			Usage: "Key of the pseudo-random input vectors",
			Value: "nttbench",
		},
		&cli.IntFlag{
			Name:  unitsFlag,
			Usage: "Parallel units of the device, 0 for GOMAXPROCS",
		},
		&cli.Int64Flag{
			Name:  memoryLimitFlag,
			Usage: "Device memory limit in bytes, 0 for unlimited",
		},
		&cli.StringFlag{
			Name:    logLevelFlag,
			Usage:   "Application logging level {debug, info, warn, error, fatal}",
			Value:   "info",
			EnvVars: []string{"NTTBENCH_LOGLEVEL"},
		},
		&cli.BoolFlag{
			Name:  metricsFlag,
			Usage: "Print the device metrics when done",
		},
	}
}

func createLogger(c *cli.Context) (*zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.String(logLevelFlag))
	if err != nil {
		return nil, err
	}

	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(level).With().Timestamp().Logger()

	return &log, nil
}

func action(run func(runner, *environment) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		log, err := createLogger(c)
		if err != nil {
			return err
		}

		undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			log.Debug().Msgf(format, args...)
		}))
		if err != nil {
			log.Warn().Err(err).Msg("failed to set GOMAXPROCS")
		}
		defer undo()

		env, err := newEnvironment(c, log)
		if err != nil {
			return err
		}

		r, err := newRunner(c.String(fieldFlag))
		if err != nil {
			return err
		}

		err = run(r, env)
		if c.Bool(metricsFlag) {
			env.dumpMetrics()
		}

		return err
	}
}
