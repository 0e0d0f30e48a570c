package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/scott-cotton/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/ips"
	"github.com/zephyrtronium/ips/internal/config"
	"github.com/zephyrtronium/ips/internal/logging"
	"github.com/zephyrtronium/ips/internal/metrics"
	"github.com/zephyrtronium/ips/internal/patcher"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func testEnv() *env {
	return &env{
		cfg:     &config.Config{BackupSuffix: ".bak", Workers: 1},
		log:     logging.Discard(),
		metrics: metrics.New(),
	}
}

func testContext() (*cli.Context, *bytes.Buffer) {
	var out bytes.Buffer
	return &cli.Context{
		Out: nopCloser{&out},
		Err: nopCloser{&out},
		Env: []string{},
		Go:  context.Background(),
	}, &out
}

// fixture writes a 4-byte source and a patch overwriting its last two bytes.
func fixture(t *testing.T) (dir, patch, src string) {
	t.Helper()
	dir = t.TempDir()
	src = filepath.Join(dir, "game.rom")
	require.NoError(t, os.WriteFile(src, []byte("abcd"), 0o644))
	r, err := ips.NewRecord(2, []byte("XY"))
	require.NoError(t, err)
	var p ips.Patch
	require.NoError(t, p.Insert(r))
	patch = filepath.Join(dir, "fix.ips")
	require.NoError(t, patcher.WritePatch(patch, &p))
	return dir, patch, src
}

func TestApplyCommandOut(t *testing.T) {
	dir, patch, src := fixture(t)
	dest := filepath.Join(dir, "patched.rom")
	cc, out := testContext()
	err := ApplyCommand(testEnv()).Run(cc, []string{"-o", dest, patch, src})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Patched "+dest)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "abXY", string(got))
	orig, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(orig))
	assert.NoFileExists(t, src+".bak")
}

func TestApplyCommandBackup(t *testing.T) {
	_, patch, src := fixture(t)
	cc, out := testContext()
	err := ApplyCommand(testEnv()).Run(cc, []string{"-backup", patch, src})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Backup: "+src+".bak")

	got, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "abXY", string(got))
	bak, err := os.ReadFile(src + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(bak))
}

func TestApplyCommandErrors(t *testing.T) {
	_, patch, src := fixture(t)
	cc, out := testContext()
	err := ApplyCommand(testEnv()).Run(cc, []string{patch})
	assert.ErrorIs(t, err, cli.ErrUsage)

	err = ApplyCommand(testEnv()).Run(cc, []string{patch, src + ".missing"})
	var code cli.ExitCodeErr
	require.True(t, errors.As(err, &code))
	assert.Equal(t, cli.ExitCodeErr(1), code)
	assert.Contains(t, out.String(), "ERROR applying")
}

func TestListCommand(t *testing.T) {
	_, patch, _ := fixture(t)
	cc, out := testContext()
	require.NoError(t, ListCommand(testEnv()).Run(cc, []string{patch}))
	assert.Contains(t, out.String(), "IPS data: 2 bytes written to 0x000002")
	assert.Contains(t, out.String(), "1 total writes, output at least 4 bytes")
}

func TestCheckCommand(t *testing.T) {
	dir, patch, _ := fixture(t)
	bad := filepath.Join(dir, "bad.ips")
	require.NoError(t, os.WriteFile(bad, []byte("PATCH\x00\x00"), 0o644))

	cc, out := testContext()
	require.NoError(t, CheckCommand(testEnv()).Run(cc, []string{patch}))
	assert.Contains(t, out.String(), "ok, 1 records, 4 bytes")

	err := CheckCommand(testEnv()).Run(cc, []string{patch, bad})
	assert.Equal(t, cli.ExitCodeErr(1), err)
	assert.Contains(t, out.String(), "bad.ips: ")
}
