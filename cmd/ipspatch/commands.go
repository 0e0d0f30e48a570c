package main

import (
	"github.com/scott-cotton/cli"
)

const usageText = `ipspatch - apply and inspect IPS patches

Usage:
  ipspatch apply [-o out] [-backup] [-v] <patch> <file>   Apply a patch (in place unless -o)
  ipspatch list <patch>                                   Print every record of a patch
  ipspatch check <patch>...                               Validate patches
  ipspatch merge -o <out> <patch>...                      Merge non-conflicting patches
  ipspatch batch <manifest.yaml>                          Apply the jobs of a manifest

Environment:
  IPSPATCH_LOG_LEVEL, IPSPATCH_LOG_FORMAT, IPSPATCH_BACKUP, IPSPATCH_BACKUP_SUFFIX,
  IPSPATCH_WORKERS, IPSPATCH_METRICS_FILE (also read from ./.env)`

// Root returns the root command for ipspatch.
func Root(e *env) *cli.Command {
	return cli.NewCommand("ipspatch").
		WithSynopsis("ipspatch - apply and inspect IPS patches").
		WithDescription(usageText).
		WithSubs(
			ApplyCommand(e),
			ListCommand(e),
			CheckCommand(e),
			MergeCommand(e),
			BatchCommand(e),
		)
}
