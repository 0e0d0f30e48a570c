package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/zephyrtronium/ips/internal/batch"
)

type batchConfig struct {
	*cli.Command
	env     *env
	Backup  bool `cli:"name=backup desc='back up every source before patching'"`
	Verbose bool `cli:"name=v aliases=verbose desc='log every record'"`
}

// BatchCommand returns the batch subcommand.
func BatchCommand(e *env) *cli.Command {
	cfg := &batchConfig{env: e}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "batch").
		WithSynopsis("batch <manifest.yaml> - Apply the jobs of a manifest").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *batchConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: batch requires one argument, a manifest", cli.ErrUsage)
	}
	m, err := batch.ReadManifest(args[0])
	if err != nil {
		return err
	}
	runner := &batch.Runner{
		Patcher: cfg.env.patcher(cfg.Backup, cfg.Verbose),
		Log:     cfg.env.log,
		Workers: cfg.env.cfg.Workers,
	}
	results, err := runner.Run(context.Background(), m.Jobs)
	cfg.env.flush()
	if results == nil {
		return err
	}
	for i, res := range results {
		if res.Err != nil {
			color.New(color.FgRed).Fprintf(cc.Out, "%3d  FAILED   %s: %v\n", i, res.Job.Source, res.Err)
			continue
		}
		color.New(color.FgGreen).Fprintf(cc.Out, "%3d  patched  %s (%d records)\n", i, res.Job.Source, res.Records)
	}
	if err != nil {
		return cli.ExitCodeErr(1)
	}
	return nil
}
