package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/coreman2200/treelights/internal/config"
)

func testApp(out *bytes.Buffer) *cli.App {
	a := newApp()
	a.Writer = out
	a.ErrWriter = out
	a.ExitErrHandler = func(*cli.Context, error) {}
	return a
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func exitCode(err error) int {
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}

func TestEffectsCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, testApp(&out).Run([]string{"treelights", "effects"}))
	for _, n := range []string{"height_gradient", "spiral", "index_sweep"} {
		assert.Contains(t, out.String(), n)
	}
}

func TestCoordsCommand(t *testing.T) {
	path := writeFile(t, "coords.csv", "x,y,z\n0,0,0\n1,0,1\n0,1,2\n-1,0,3\n")
	var out bytes.Buffer
	require.NoError(t, testApp(&out).Run([]string{"treelights", "coords", "--coords", path, "--count", "5"}))
	s := out.String()
	assert.Contains(t, s, "warning: 4 rows, expected 5")
	assert.Contains(t, s, "raw z")
	assert.Contains(t, s, "height")
}

func TestCoordsCommandBadRow(t *testing.T) {
	path := writeFile(t, "coords.csv", "0,0,0\n0,0,1\n0,x,2\n")
	var out bytes.Buffer
	err := testApp(&out).Run([]string{"treelights", "coords", path})
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, err.Error(), "row 3")
}

func TestConfigCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, testApp(&out).Run([]string{"treelights", "config", "leds.count"}))
	assert.Equal(t, "leds.count = 1610\n", out.String())

	out.Reset()
	err := testApp(&out).Run([]string{"treelights", "config", "leds.colour"})
	assert.Equal(t, 1, exitCode(err))

	path := filepath.Join(t.TempDir(), "config.yaml")
	out.Reset()
	require.NoError(t, testApp(&out).Run([]string{"treelights", "config", "--write-default", path}))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(config.Default(), cfg, cmpopts.EquateEmpty()))
}

func TestRunSingleFrame(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", "leds:\n  count: 5\noutput:\n  driver: sim\nlogging:\n  format: json\n")
	coords := writeFile(t, "coords.csv", "0,0,0\n0,0,1\n0,0,2\n0,0,3\n0,0,4\n")
	var out bytes.Buffer
	err := testApp(&out).Run([]string{"treelights", "run", "--config", cfgPath, "--coords", coords,
		"--effect", "rainbow", "--duration", "0"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"run_id"`)
	assert.Contains(t, out.String(), `"frames":1`)
}

func TestRunStartupFailures(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", "leds:\n  count: 5\noutput:\n  driver: sim\n")
	cases := map[string][]string{
		"missing config": {"--config", filepath.Join(t.TempDir(), "nope.yaml")},
		"unknown effect": {"--config", cfgPath, "--effect", "disco", "--duration", "0"},
		"bad level":      {"--config", cfgPath, "--log-level", "loud"},
		"bad coords":     {"--config", cfgPath, "--coords", writeFile(t, "c.csv", "0,0\n")},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			err := testApp(&out).Run(append([]string{"treelights", "run"}, args...))
			assert.Equal(t, 1, exitCode(err), strings.TrimSpace(out.String()))
		})
	}
}

func TestScheduleCommand(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", "leds:\n  fps: 10\neffects:\n  playlist: [rainbow, spiral]\n  auto_cycle_interval: 10\n  transition_duration: 2\n")
	var out bytes.Buffer
	require.NoError(t, testApp(&out).Run([]string{"treelights", "schedule", "--config", cfgPath, "--seconds", "15"}))
	lines := strings.Split(out.String(), "\n")
	var events []string
	for _, l := range lines {
		f := strings.Fields(strings.ReplaceAll(l, "|", " "))
		if len(f) == 3 && (f[1] == "switch" || f[1] == "crossfade" || f[1] == "promote") {
			events = append(events, f[1]+" "+f[2])
		}
	}
	assert.Equal(t, []string{"switch rainbow", "crossfade spiral", "promote spiral"}, events)
}
