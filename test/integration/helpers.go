//go:build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	Instance  string
	Token     string
	User      string
	Password  string
	Table     string
	GlidePath string
	Verbose   bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	table := os.Getenv("GLIDE_TEST_TABLE")
	if table == "" {
		table = "incident"
	}

	return &TestConfig{
		Instance:  os.Getenv("SNOW_API_INSTANCE"),
		Token:     os.Getenv("SNOW_API_TOKEN"),
		User:      os.Getenv("SNOW_API_USER"),
		Password:  os.Getenv("SNOW_API_PASSWD"),
		Table:     table,
		GlidePath: getGlidePath(),
		Verbose:   os.Getenv("GLIDE_VERBOSE") == "true",
	}
}

// getGlidePath determines the path to the glide binary.
func getGlidePath() string {
	if path := os.Getenv("GLIDE_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../glide", "./glide", "../glide"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "glide"
}

// SkipIfMissingConfig skips the test unless an instance and credentials are set.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Instance == "" {
		t.Skip("SNOW_API_INSTANCE not set, skipping integration test")
	}

	if config.Token == "" && (config.User == "" || config.Password == "") {
		t.Skip("SNOW_API_TOKEN or SNOW_API_USER/SNOW_API_PASSWD not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.GlidePath); err != nil {
		t.Skipf("glide binary not found at %s, skipping integration test", config.GlidePath)
	}
}

// CommandRunner runs glide commands against the configured instance.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{config: config, t: t}
}

// Run executes a glide command and returns its output.
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a glide command with stdin input.
func (runner *CommandRunner) RunWithInput(input string, args ...string) (string, string, error) {
	cmd := exec.Command(runner.config.GlidePath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.GlidePath, strings.Join(args, " "))
	}

	err := cmd.Run()
	stdout, stderr := stdoutBuf.String(), stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// CleanupRecord attempts to delete a test record.
func (runner *CommandRunner) CleanupRecord(table, sysID string) {
	if sysID == "" {
		return
	}

	_, stderr, err := runner.Run("delete", table, sysID)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s/%s: %s", table, sysID, stderr)
	}
}

// GenerateTestName creates a unique test value.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// DecodeRecord parses a single JSON record printed by the CLI.
func DecodeRecord(t *testing.T, output string) map[string]interface{} {
	t.Helper()

	var rec map[string]interface{}

	err := json.Unmarshal([]byte(output), &rec)
	if err != nil {
		t.Fatalf("Output is not a JSON record: %v\n%s", err, output)
	}

	return rec
}

// AssertJSONOutput verifies command output looks like JSON.
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, "{") && !strings.HasPrefix(output, "[") {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}

// AssertYAMLOutput verifies command output looks like YAML.
func AssertYAMLOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if strings.Contains(output, "---") || strings.Contains(output, ":") {
		return
	}

	t.Errorf("Output does not appear to be YAML: %s", output)
}
