package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/zephyrtronium/ips/internal/patcher"
)

type checkConfig struct {
	*cli.Command
	env *env
}

// CheckCommand returns the check subcommand.
func CheckCommand(e *env) *cli.Command {
	cfg := &checkConfig{env: e}
	return cli.NewCommandAt(&cfg.Command, "check").
		WithSynopsis("check <patch>... - Validate patches").
		WithRun(cfg.run)
}

func (cfg *checkConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: check requires at least one patch", cli.ErrUsage)
	}
	bad := 0
	for _, name := range args {
		p, err := patcher.ReadPatch(name)
		if err != nil {
			bad++
			cfg.env.log.Error().Err(err).Str("patch", name).Msg("invalid patch")
			color.New(color.FgRed).Fprintf(cc.Out, "%s: %v\n", name, err)
			continue
		}
		color.New(color.FgGreen).Fprintf(cc.Out, "%s: ok, %d records, %d bytes\n", name, p.Len(), p.Size())
	}
	if bad > 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}
