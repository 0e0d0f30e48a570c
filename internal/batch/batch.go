// Package batch runs many patch jobs from a manifest.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/ips/internal/patcher"
)

var ErrSharedDest = errors.New("jobs share a destination")

// Manifest is the YAML document listing the jobs of a batch. Relative paths
// are resolved against the manifest's directory.
type Manifest struct {
	Jobs []patcher.Job `yaml:"jobs"`
}

func ReadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i := range m.Jobs {
		j := &m.Jobs[i]
		if j.Patch == "" || j.Source == "" {
			return nil, fmt.Errorf("%s: job %d needs both patch and source", path, i)
		}
		j.Patch = resolve(dir, j.Patch)
		j.Source = resolve(dir, j.Source)
		if j.Dest != "" {
			j.Dest = resolve(dir, j.Dest)
		}
	}
	return &m, nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

// Runner applies jobs concurrently with at most Workers in flight.
type Runner struct {
	Patcher *patcher.Patcher
	Log     zerolog.Logger
	Workers int
}

// Outcome is the result of one job; Err is nil if it succeeded.
type Outcome struct {
	patcher.Result
	Err error
}

// JobError is the failure of one job in a batch.
type JobError struct {
	Index int
	Job   patcher.Job
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %d (%s): %v", e.Index, e.Job.Patch, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// Run applies every job. A failing job does not stop the others; the
// returned error joins every job's error. Jobs writing the same destination
// are rejected before anything runs because concurrent applies to one file
// are unsafe.
func (r *Runner) Run(ctx context.Context, jobs []patcher.Job) ([]Outcome, error) {
	if err := checkDests(jobs); err != nil {
		return nil, err
	}
	outcomes := make([]Outcome, len(jobs))
	errs := make([]error, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Workers, 1))
	for i, job := range jobs {
		g.Go(func() error {
			res, err := r.Patcher.Apply(ctx, job)
			outcomes[i] = Outcome{Result: res}
			if err != nil {
				r.Log.Error().Err(err).Int("job", i).Str("patch", job.Patch).Msg("job failed")
				errs[i] = &JobError{Index: i, Job: job, Err: err}
				outcomes[i].Err = errs[i]
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes, errors.Join(errs...)
}

func checkDests(jobs []patcher.Job) error {
	seen := make(map[string]int, len(jobs))
	for i, j := range jobs {
		d := j.Dest
		if d == "" {
			d = j.Source
		}
		d = filepath.Clean(d)
		if k, ok := seen[d]; ok {
			return fmt.Errorf("%w: jobs %d and %d write %s", ErrSharedDest, k, i, d)
		}
		seen[d] = i
	}
	for i, j := range jobs {
		if k, ok := seen[filepath.Clean(j.Source)]; ok && k != i {
			return fmt.Errorf("%w: job %d reads %s while job %d writes it", ErrSharedDest, i, j.Source, k)
		}
	}
	return nil
}
