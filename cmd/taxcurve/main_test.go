package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rgehrsitz/taxcurve/internal/bundle"
	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rateTable = `Year,Single Filer (Rates/Brackets),,,Head of Household (Rates/Brackets),,,Notes:
2021,10.00%,>,$0,10.00%,>,$0,
2021,20.00%,>,$100,15.00%,>,$200,
2021,30.00%,>,$300,25.00%,>,$500,
`

// run executes the root command with args. Flags keep their values between
// runs, so every call passes the store flags it depends on.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	err := rootCmd.Execute()
	return out.String(), err
}

// ingested returns store flags for a filesystem store holding rateTable
func ingested(t *testing.T) []string {
	t.Helper()
	flags := []string{"--store-backend", "filesystem", "--store-path", filepath.Join(t.TempDir(), "store")}
	out, err := run(t, rateTable, append([]string{"ingest", "-"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 2 schedules: 2 written, 0 unchanged, 0 problems")
	return flags
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "taxcurve", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotNil(t, rootCmd.Flag("help"))
}

func TestCommandSubcommands(t *testing.T) {
	expectedCommands := []string{
		"ingest", "list", "show", "breakdown", "curve", "steps",
		"export", "import", "serve", "explore", "validate-config", "version",
	}
	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range expectedCommands {
		assert.True(t, registered[name], "expected command %q to be registered", name)
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	_, err := run(t, "", "invalid-command")
	assert.Error(t, err)
}

func TestIngestIsIdempotent(t *testing.T) {
	flags := ingested(t)
	out, err := run(t, rateTable, append([]string{"ingest", "-"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "0 written, 2 unchanged")
}

func TestListAndShow(t *testing.T) {
	flags := ingested(t)

	out, err := run(t, "", append([]string{"list", "-f", "csv"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "jurisdiction,fiscal_year,filing_status\n"+
		"United States,2021,Single Filer\n"+
		"United States,2021,Head of Household\n", out)

	out, err = run(t, "", append([]string{"show", "2021", "hoh", "-f", "csv"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "upper,rate\n200,0.1\n500,0.15\ninf,0.25\n", out)
}

func TestBreakdown(t *testing.T) {
	flags := ingested(t)

	out, err := run(t, "", append([]string{"breakdown", "2021", "single", "--income", "250", "-f", "csv"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "bracket_low,bracket_high,bracket_rate,bracket_owed,cum_owed_low,cum_owed_high\n"+
		"0,100,0.1,10,0,10\n"+
		"100,300,0.2,30,10,40\n", out)

	out, err = run(t, "", append([]string{"breakdown", "2021", "single", "--income", "250", "-f", "console"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Total Owed: $40.00 (16.00% effective, 20.00% marginal)")

	_, err = run(t, "", append([]string{"breakdown", "2021", "single", "--income", "-1", "-f", "csv"}, flags...)...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCurveAndSteps(t *testing.T) {
	flags := ingested(t)

	out, err := run(t, "", append([]string{"curve", "2021", "single", "--ceiling", "400", "--points", "1", "-f", "csv"}, flags...)...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "400,80,0.3", lines[6])

	// default ceiling: 300 * 1.2
	out, err = run(t, "", append([]string{"curve", "2021", "single", "--ceiling", "", "--points", "1", "-f", "csv"}, flags...)...)
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "360,68,0.3", lines[len(lines)-1])

	out, err = run(t, "", append([]string{"steps", "2021", "single", "-f", "csv"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "low,high,rate\n0,100,0.1\n100,300,0.2\n300,inf,0.3\n", out)
}

func TestMissingSelectionIsDataNotFound(t *testing.T) {
	flags := ingested(t)

	_, err := run(t, "", append([]string{"show", "1999", "single", "-f", "csv"}, flags...)...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataNotFound))
	assert.True(t, strings.HasPrefix(describeError(err), "no data for this selection"))
}

func TestExportImport(t *testing.T) {
	flags := ingested(t)
	bundlePath := filepath.Join(t.TempDir(), "schedules.txcb")

	_, err := run(t, "", append([]string{"export", bundlePath}, flags...)...)
	require.NoError(t, err)

	target := []string{"--store-backend", "sqlite", "--store-path", filepath.Join(t.TempDir(), "schedules.db")}
	out, err := run(t, "", append([]string{"import", bundlePath}, target...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 schedules: 2 written, 0 unchanged")

	out, err = run(t, "", append([]string{"breakdown", "2021", "hoh", "--income", "600", "-f", "csv"}, target...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "500,inf,0.25,25,65,90")

	data, err := os.ReadFile(bundlePath)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	corrupt := filepath.Join(t.TempDir(), "corrupt.txcb")
	require.NoError(t, os.WriteFile(corrupt, data, 0o644))
	_, err = run(t, "", append([]string{"import", corrupt}, target...)...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, bundle.ErrCorrupt))
	assert.True(t, strings.HasPrefix(describeError(err), "data is malformed"))
}

func TestValidateConfig(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "taxcurve.yaml")
	require.NoError(t, os.WriteFile(good, []byte("store:\n  backend: sqlite\n  path: ./brackets.db\n"), 0o644))
	out, err := run(t, "", "validate-config", good)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid: sqlite store")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sampling:\n  points_per_bracket: 0\n"), 0o644))
	_, err = run(t, "", "validate-config", bad)
	assert.ErrorContains(t, err, "points_per_bracket")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "taxcurve dev")
}

func TestDescribeError(t *testing.T) {
	assert.True(t, strings.HasPrefix(describeError(domain.NewError(domain.KindInvalidSchedule, "get", "bad")), "data is malformed"))
	assert.True(t, strings.HasPrefix(describeError(errors.New("boom")), "Error: "))
}
