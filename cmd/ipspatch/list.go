package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/zephyrtronium/ips/internal/patcher"
)

type listConfig struct {
	*cli.Command
	env *env
}

// ListCommand returns the list subcommand.
func ListCommand(e *env) *cli.Command {
	cfg := &listConfig{env: e}
	return cli.NewCommandAt(&cfg.Command, "list").
		WithSynopsis("list <patch> - Print every record of a patch").
		WithRun(cfg.run)
}

func (cfg *listConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: list requires one argument, a patch", cli.ErrUsage)
	}
	p, err := patcher.ReadPatch(args[0])
	if err != nil {
		return err
	}
	plain := color.New(color.FgCyan)
	rle := color.New(color.FgYellow)
	for i, r := range p.All() {
		c := plain
		if r.RLE() {
			c = rle
		}
		c.Fprintf(cc.Out, "%5d  %s\n", i, r)
	}
	fmt.Fprintf(cc.Out, "%d total writes, output at least %d bytes\n", p.Len(), p.Size())
	return nil
}
