package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/ips"
	"github.com/zephyrtronium/ips/internal/logging"
	"github.com/zephyrtronium/ips/internal/patcher"
)

const manifest = `
jobs:
  - patch: fix.ips
    source: a.bin
    dest: out/a.bin
  - patch: /abs/fix.ips
    source: b.bin
`

func TestReadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	m, err := ReadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Jobs, 2)
	assert.Equal(t, patcher.Job{
		Patch:  filepath.Join(dir, "fix.ips"),
		Source: filepath.Join(dir, "a.bin"),
		Dest:   filepath.Join(dir, "out", "a.bin"),
	}, m.Jobs[0])
	assert.Equal(t, "/abs/fix.ips", m.Jobs[1].Patch)
	assert.Empty(t, m.Jobs[1].Dest)
}

func TestReadManifestInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs:\n  - patch: x.ips\n"), 0o644))
	_, err := ReadManifest(path)
	assert.ErrorContains(t, err, "needs both patch and source")

	require.NoError(t, os.WriteFile(path, []byte("jobs: [\n"), 0o644))
	_, err = ReadManifest(path)
	assert.Error(t, err)
}

func TestCheckDests(t *testing.T) {
	cases := []struct {
		name string
		jobs []patcher.Job
		ok   bool
	}{
		{"distinct", []patcher.Job{{Source: "a"}, {Source: "b"}}, true},
		{"same dest", []patcher.Job{{Source: "a", Dest: "c"}, {Source: "b", Dest: "c"}}, false},
		{"in place vs dest", []patcher.Job{{Source: "a"}, {Source: "b", Dest: "./a"}}, false},
		{"reads other dest", []patcher.Job{{Source: "a", Dest: "b"}, {Source: "b", Dest: "c"}}, false},
		{"same source", []patcher.Job{{Source: "a", Dest: "x"}, {Source: "a", Dest: "y"}}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := checkDests(c.jobs)
			if c.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrSharedDest)
			}
		})
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	r, _ := ips.NewRLE(2, 2, '!')
	var p ips.Patch
	require.NoError(t, p.Insert(r))
	patch := filepath.Join(dir, "p.ips")
	require.NoError(t, patcher.WritePatch(patch, &p))

	var jobs []patcher.Job
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		src := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(src, []byte(name+name+name+name), 0o644))
		jobs = append(jobs, patcher.Job{Patch: patch, Source: src})
	}
	jobs = append(jobs, patcher.Job{Patch: patch, Source: filepath.Join(dir, "missing")})

	runner := &Runner{Patcher: &patcher.Patcher{Log: logging.Discard()}, Log: logging.Discard(), Workers: 2}
	results, err := runner.Run(context.Background(), jobs)
	require.Error(t, err)
	var je *JobError
	require.ErrorAs(t, err, &je)
	assert.Equal(t, 5, je.Index)
	assert.ErrorIs(t, err, os.ErrNotExist)
	require.Len(t, results, 6)
	assert.Error(t, results[5].Err)
	for _, res := range results[:5] {
		assert.NoError(t, res.Err)
		assert.Equal(t, 1, res.Records)
	}

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		got, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, name+name+"!!", string(got))
	}
}
