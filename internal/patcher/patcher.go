// Package patcher applies IPS patch files to files on disk.
//
// Output is written to a temporary file next to the destination and renamed
// over it only once every record has been applied, so a failed apply leaves
// the destination untouched.
package patcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio"
	"github.com/rs/zerolog"

	"github.com/zephyrtronium/ips"
	"github.com/zephyrtronium/ips/internal/metrics"
)

// Job names a patch, the file it applies to, and where the result goes. An
// empty Dest patches Source in place.
type Job struct {
	Patch  string `yaml:"patch"`
	Source string `yaml:"source"`
	Dest   string `yaml:"dest,omitempty"`
}

func (j Job) dest() string {
	if j.Dest == "" {
		return j.Source
	}
	return j.Dest
}

type Result struct {
	Job        Job
	Records    int
	InputSize  int64
	OutputSize int64
	Backup     string
}

type Patcher struct {
	Log zerolog.Logger
	// Metrics may be nil.
	Metrics *metrics.Metrics
	// Backup copies the source to Source+BackupSuffix before patching.
	Backup       bool
	BackupSuffix string
}

// ReadPatch decodes the IPS patch at path.
func ReadPatch(path string) (*ips.Patch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := ips.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return p, nil
}

// WritePatch encodes p and atomically replaces path with it.
func WritePatch(path string, p *ips.Patch) error {
	var buf bytes.Buffer
	if err := ips.Encode(&buf, p); err != nil {
		return fmt.Errorf("error encoding %s: %w", path, err)
	}
	return renameio.WriteFile(path, buf.Bytes(), 0o644)
}

func (pt *Patcher) fail(stage string) {
	if pt.Metrics != nil {
		pt.Metrics.PatchesFailed.WithLabelValues(stage).Inc()
	}
}

// Apply runs job. On failure the destination is left as it was.
func (pt *Patcher) Apply(ctx context.Context, job Job) (Result, error) {
	res := Result{Job: job}
	log := pt.Log.With().Str("patch", job.Patch).Str("source", job.Source).Str("dest", job.dest()).Logger()

	patch, err := ReadPatch(job.Patch)
	if err != nil {
		pt.fail("decode")
		return res, err
	}
	res.Records = patch.Len()
	log.Info().Int("records", patch.Len()).Msg("patch loaded")
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if pt.Backup {
		res.Backup = job.Source + pt.BackupSuffix
		if err := copyFile(res.Backup, job.Source); err != nil {
			pt.fail("backup")
			return res, fmt.Errorf("error backing up %s: %w", job.Source, err)
		}
		log.Info().Str("backup", res.Backup).Msg("source backed up")
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.InputSize, res.OutputSize, err = pt.applyFile(log, patch, job.Source, job.dest())
	if err != nil {
		return res, err
	}
	if pt.Metrics != nil {
		pt.Metrics.PatchesApplied.Inc()
		pt.Metrics.OutputSize.Observe(float64(res.OutputSize))
	}
	log.Info().Int64("input_size", res.InputSize).Int64("output_size", res.OutputSize).Msg("patching finished")
	return res, nil
}

func (pt *Patcher) applyFile(log zerolog.Logger, patch *ips.Patch, source, dest string) (in, out int64, err error) {
	src, err := os.Open(source)
	if err != nil {
		pt.fail("read")
		return 0, 0, err
	}
	defer src.Close()
	info, err := src.Stat()
	if err != nil {
		pt.fail("read")
		return 0, 0, err
	}
	t, err := renameio.TempFile("", dest)
	if err != nil {
		pt.fail("write")
		return 0, 0, err
	}
	defer t.Cleanup()
	if in, err = io.Copy(t, src); err != nil {
		pt.fail("read")
		return 0, 0, fmt.Errorf("error copying %s: %w", source, err)
	}

	if out, err = ips.ApplyAt(t, in, patch); err != nil {
		pt.fail("apply")
		return in, 0, fmt.Errorf("error patching %s: %w", dest, err)
	}
	pt.record(log, patch, in)

	if err := t.Chmod(info.Mode().Perm()); err != nil {
		pt.fail("write")
		return in, out, err
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		pt.fail("write")
		return in, out, fmt.Errorf("error replacing %s: %w", dest, err)
	}
	return in, out, nil
}

// record logs and counts the records of a patch that applied successfully to
// a file of the given size.
func (pt *Patcher) record(log zerolog.Logger, patch *ips.Patch, size int64) {
	for i, r := range patch.All() {
		// Bytes between the current end and the record were zero filled.
		filled := max(int64(r.Offset())-size, 0)
		size = max(size, r.End())
		log.Debug().
			Int("record", i).
			Uint32("offset", r.Offset()).
			Int("size", r.Len()).
			Bool("rle", r.RLE()).
			Int64("filled", filled).
			Msg("applied record")
		if pt.Metrics != nil {
			kind := "plain"
			if r.RLE() {
				kind = "rle"
			}
			pt.Metrics.RecordsApplied.WithLabelValues(kind).Inc()
			pt.Metrics.BytesWritten.Add(float64(r.Len()))
		}
	}
}

func copyFile(dst, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	t, err := renameio.TempFile("", dst)
	if err != nil {
		return err
	}
	defer t.Cleanup()
	if _, err := io.Copy(t, f); err != nil {
		return err
	}
	if err := t.Chmod(info.Mode().Perm()); err != nil {
		return err
	}
	return t.CloseAtomicallyReplace()
}
