package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	synapp "github.com/cosmichub/synastry/internal/application/synastry"
	"github.com/cosmichub/synastry/internal/domain/chart"
)

func writeChartFile(t *testing.T, dir, name string, base float64) string {
	t.Helper()

	planets := make(map[string]float64, chart.NumBodies)
	for i, b := range chart.Bodies {
		planets[string(b)] = base + float64(i)*20
	}
	cusps := make([]float64, chart.NumHouses)
	for i := range cusps {
		cusps[i] = float64(i) * 30
	}

	raw, err := json.Marshal(map[string]interface{}{
		"name":    name,
		"planets": planets,
		"cusps":   cusps,
	})
	require.NoError(t, err)

	path := filepath.Join(dir, name+".json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestComputeCmd_TextOutput(t *testing.T) {
	dir := t.TempDir()
	a := writeChartFile(t, dir, "alice", 0)
	b := writeChartFile(t, dir, "bob", 0)

	stdout, _, err := runCLI(t, "compute", "--chart-a", a, "--chart-b", b)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Synastry: alice x bob")
	assert.Contains(t, stdout, "Overall score:")
	assert.Contains(t, stdout, "Breakdown:")
	assert.Contains(t, stdout, "emotional")
}

func TestComputeCmd_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	a := writeChartFile(t, dir, "alice", 0)
	b := writeChartFile(t, dir, "bob", 0)

	stdout, _, err := runCLI(t, "compute", "-a", a, "-b", b, "-o", "json")
	require.NoError(t, err)

	var reading synapp.Reading
	require.NoError(t, json.Unmarshal([]byte(stdout), &reading))
	assert.Equal(t, 100, reading.AspectCount)
	assert.Equal(t, "vectorized", reading.Builder)
}

func TestComputeCmd_BuilderFlag(t *testing.T) {
	dir := t.TempDir()
	a := writeChartFile(t, dir, "alice", 0)
	b := writeChartFile(t, dir, "bob", 0)

	stdout, _, err := runCLI(t, "compute", "-a", a, "-b", b, "--builder", "scalar", "-o", "json")
	require.NoError(t, err)

	var reading synapp.Reading
	require.NoError(t, json.Unmarshal([]byte(stdout), &reading))
	assert.Equal(t, "scalar", reading.Builder)
}

func TestComputeCmd_AspectsOnly(t *testing.T) {
	dir := t.TempDir()
	a := writeChartFile(t, dir, "alice", 0)
	b := writeChartFile(t, dir, "bob", 0)

	stdout, _, err := runCLI(t, "compute", "-a", a, "-b", b, "--aspects-only", "-o", "json")
	require.NoError(t, err)

	var result synapp.MatrixResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, 100, result.AspectCount)
}

func TestComputeCmd_MissingFile(t *testing.T) {
	dir := t.TempDir()
	a := writeChartFile(t, dir, "alice", 0)

	_, _, err := runCLI(t, "compute", "-a", a, "-b", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestComputeCmd_InvalidChart(t *testing.T) {
	dir := t.TempDir()
	a := writeChartFile(t, dir, "alice", 0)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"planets":{"sun":10},"cusps":[]}`), 0o644))

	_, _, err := runCLI(t, "compute", "-a", a, "-b", bad)
	assert.Error(t, err)
}

func TestComputeCmd_RequiredFlags(t *testing.T) {
	_, _, err := runCLI(t, "compute")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "synastry")
}
