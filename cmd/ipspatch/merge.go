package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/zephyrtronium/ips"
	"github.com/zephyrtronium/ips/internal/patcher"
)

type mergeConfig struct {
	*cli.Command
	env *env
	Out string `cli:"name=o desc='write the merged patch to this file'"`
}

// MergeCommand returns the merge subcommand.
func MergeCommand(e *env) *cli.Command {
	cfg := &mergeConfig{env: e}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "merge").
		WithSynopsis("merge -o <out> <patch>... - Merge non-conflicting patches").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *mergeConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Out == "" {
		return fmt.Errorf("%w: merge requires -o", cli.ErrUsage)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: merge requires at least one patch", cli.ErrUsage)
	}
	var (
		patches []*ips.Patch
		names   []string
	)
	for _, name := range args {
		p, err := patcher.ReadPatch(name)
		if err != nil {
			cfg.env.log.Warn().Err(err).Str("patch", name).Msg("skipping unreadable patch")
			continue
		}
		patches = append(patches, p)
		names = append(names, name)
	}
	merged, skipped := mergeAll(cc.Out, patches, names)
	if merged == nil {
		return fmt.Errorf("no patches to merge")
	}
	for _, name := range skipped {
		color.New(color.FgYellow).Fprintf(cc.Out, "SKIPPING %s due to conflict\n", name)
	}
	if err := patcher.WritePatch(cfg.Out, merged); err != nil {
		return err
	}
	fmt.Fprintf(cc.Out, "Wrote %s: %d records\n", cfg.Out, merged.Len())
	return nil
}

// mergeAll reports every conflicting pair to w and merges the patches that
// conflict with no other.
func mergeAll(w io.Writer, patches []*ips.Patch, names []string) (*ips.Patch, []string) {
	conflicted := make([]bool, len(patches))
	red := color.New(color.FgRed)
	for i := range patches {
		for j := i + 1; j < len(patches); j++ {
			c1, c2 := ips.Conflict(patches[i], patches[j])
			if c1 == nil {
				continue
			}
			red.Fprintf(w, "CONFLICT between %s and %s:\n", names[i], names[j])
			for k := range c1 {
				fmt.Fprintf(w, "\t%s\n\t%s\n", c1[k], c2[k])
			}
			conflicted[i], conflicted[j] = true, true
		}
	}
	var (
		merged  *ips.Patch
		skipped []string
	)
	for i, p := range patches {
		if conflicted[i] {
			skipped = append(skipped, names[i])
			continue
		}
		if merged == nil {
			merged = p
			continue
		}
		m, ok := mergeInto(w, merged, p, names[i])
		if !ok {
			skipped = append(skipped, names[i])
			continue
		}
		merged = m
	}
	return merged, skipped
}

// mergeInto merges p into merged. If they overlap, it reports the failure to
// w and returns merged unchanged.
func mergeInto(w io.Writer, merged, p *ips.Patch, name string) (*ips.Patch, bool) {
	m, err := ips.Merge(merged, p)
	if err != nil {
		fmt.Fprintf(w, "error merging %s: %v\n", name, err)
		return merged, false
	}
	return m, true
}
