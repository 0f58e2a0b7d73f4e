package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/importer"
)

const sampleFixture = "../../internal/fixtures/testdata/sample.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestOrder_UsesFixtureOptions(t *testing.T) {
	out, err := execute(t, "order", "--fixture", sampleFixture)
	require.NoError(t, err)

	assert.Contains(t, out, "seed=42 max_run=2 warmup=0 finale=0")
	assert.Contains(t, out, "order: [3 8 2 1 7 6 4 5]")
}

func TestOrder_FlagsOverrideFixture(t *testing.T) {
	out, err := execute(t, "order", "-f", sampleFixture, "--seed", "7", "--json")
	require.NoError(t, err)

	var plan struct {
		Options struct {
			Seed   int64 `json:"seed"`
			MaxRun int   `json:"max_run"`
		} `json:"options"`
		Orders []struct {
			ID uint `json:"id"`
		} `json:"orders"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, int64(7), plan.Options.Seed)
	assert.Equal(t, 2, plan.Options.MaxRun)
	assert.Len(t, plan.Orders, 8)
}

func TestOrder_WritesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ordering.xlsx")

	_, err := execute(t, "order", "-f", sampleFixture, "--xlsx", path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(importer.OrderingSheet)
	require.NoError(t, err)
	require.Len(t, rows, 9)
	assert.Equal(t, "3", rows[1][1])
}

func TestOrder_RequiresFixture(t *testing.T) {
	_, err := execute(t, "order")
	assert.Error(t, err)
}

func TestValidate_Pass(t *testing.T) {
	out, err := execute(t, "validate", "--fixture", sampleFixture)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS "+sampleFixture)
}

func TestValidate_FailureReportsMismatch(t *testing.T) {
	data, err := os.ReadFile(sampleFixture)
	require.NoError(t, err)

	broken := strings.Replace(string(data), "top_style: driver", "top_style: harmonizer", 1)
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o600))

	out, err := execute(t, "validate", sampleFixture, path)
	require.ErrorIs(t, err, errScenarioFailed)
	assert.Contains(t, out, "PASS "+sampleFixture)
	assert.Contains(t, out, "FAIL "+path)
	assert.Contains(t, out, "topStyle")
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := execute(t, "validate", "-f", "does-not-exist.yaml")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errScenarioFailed)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "quizctl version "))
}
