//go:build integration

package integration

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGlideWorkflow_RecordLifecycle inserts, reads, updates and deletes a record.
func TestGlideWorkflow_RecordLifecycle(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)
	description := GenerateTestName("glide-integration")

	stdout, stderr, err := runner.Run("insert", config.Table, "-o", "json",
		"--data", fmt.Sprintf(`{"short_description":%q}`, description))
	require.NoError(t, err, "Failed to insert record: %s", stderr)

	created := DecodeRecord(t, stdout)
	sysID, _ := created["sys_id"].(string)
	require.NotEmpty(t, sysID)

	defer runner.CleanupRecord(config.Table, sysID)

	stdout, stderr, err = runner.Run("get", config.Table, sysID, "-o", "json", "-f", "short_description")
	require.NoError(t, err, "Failed to get record: %s", stderr)
	assert.Equal(t, description, DecodeRecord(t, stdout)["short_description"])

	stdout, stderr, err = runner.Run("query", config.Table, "-o", "json", "-q", "short_description="+description)
	require.NoError(t, err, "Failed to query record: %s", stderr)
	assert.Contains(t, stdout, sysID)

	stdout, stderr, err = runner.RunWithInput("short_description: "+description+"-updated\n",
		"update", config.Table, sysID, "-o", "json", "--file", "-")
	require.NoError(t, err, "Failed to update record: %s", stderr)
	assert.Equal(t, description+"-updated", DecodeRecord(t, stdout)["short_description"])

	stdout, stderr, err = runner.Run("delete", config.Table, sysID)
	require.NoError(t, err, "Failed to delete record: %s", stderr)
	assert.Contains(t, stdout, "Deleted")

	_, _, err = runner.Run("get", config.Table, sysID)
	assert.Error(t, err, "Record should be gone after delete")
}

// TestGlideWorkflow_OutputFormats checks every output format of query.
func TestGlideWorkflow_OutputFormats(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	for _, format := range []string{"table", "json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			stdout, stderr, err := runner.Run("query", config.Table, "--limit", "3", "-f", "sys_id,number", "--output", format)
			require.NoError(t, err, "Failed to query with %s format: %s", format, stderr)

			switch format {
			case "json":
				AssertJSONOutput(t, stdout)
			case "yaml":
				AssertYAMLOutput(t, stdout)
			case "table":
				assert.Contains(t, strings.ToUpper(stdout), "SYS")
			}
		})
	}
}

// TestGlideWorkflow_Pagination reads more records than a single batch holds.
func TestGlideWorkflow_Pagination(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("export", config.Table, "--limit", "7", "--batch-size", "2")
	require.NoError(t, err, "Failed to export: %s", stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.LessOrEqual(t, len(lines), 7)

	for _, line := range lines {
		if line != "" {
			AssertJSONOutput(t, line)
		}
	}
}

// TestGlideWorkflow_ErrorScenarios checks failures surface as errors.
func TestGlideWorkflow_ErrorScenarios(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	testCases := []struct {
		name      string
		args      []string
		errorText string
	}{
		{name: "missing record", args: []string{"get", config.Table, "00000000000000000000000000000000"}, errorText: "404"},
		{name: "bad credentials", args: []string{"query", config.Table, "--token", "invalid", "--limit", "1"}, errorText: "401"},
		{name: "malformed reference", args: []string{"ref", "nonsense"}, errorText: "malformed"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, stderr, err := runner.Run(tc.args...)
			require.Error(t, err)
			assert.Contains(t, stderr, tc.errorText)
		})
	}
}
