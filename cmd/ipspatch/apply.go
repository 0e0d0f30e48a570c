package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/zephyrtronium/ips/internal/patcher"
)

type applyConfig struct {
	*cli.Command
	env     *env
	Out     string `cli:"name=o desc='write the patched file here instead of in place'"`
	Backup  bool   `cli:"name=backup desc='copy the file to <file><suffix> before patching'"`
	Verbose bool   `cli:"name=v aliases=verbose desc='log every record'"`
}

// ApplyCommand returns the apply subcommand.
func ApplyCommand(e *env) *cli.Command {
	cfg := &applyConfig{env: e}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "apply").
		WithSynopsis("apply [-o out] [-backup] [-v] <patch> <file> - Apply a patch").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *applyConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: apply requires 2 arguments, a patch and a file to which to apply it", cli.ErrUsage)
	}
	job := patcher.Job{Patch: args[0], Source: args[1], Dest: cfg.Out}
	res, err := cfg.env.patcher(cfg.Backup, cfg.Verbose).Apply(context.Background(), job)
	cfg.env.flush()
	if err != nil {
		color.New(color.FgRed).Fprintf(cc.Out, "ERROR applying %s to %s: %v\n", job.Patch, job.Source, err)
		return cli.ExitCodeErr(1)
	}
	dest := job.Dest
	if dest == "" {
		dest = job.Source
	}
	color.New(color.FgGreen).Fprintf(cc.Out, "Patched %s: %d records, %d -> %d bytes\n", dest, res.Records, res.InputSize, res.OutputSize)
	if res.Backup != "" {
		fmt.Fprintf(cc.Out, "Backup: %s\n", res.Backup)
	}
	return nil
}
