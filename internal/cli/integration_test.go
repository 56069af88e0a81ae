package cli_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userSample   = "../../testdata/samples/user.json"
	userSchema   = "../../testdata/samples/user.schema.yml"
	brokenSample = "../../testdata/samples/broken.json"
)

// treekit runs the CLI through go run and returns stdout, stderr and the run error
func treekit(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../.."}, args...)...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestCLI_FileInputOutput tests the CLI with file input and output
func TestCLI_FileInputOutput(t *testing.T) {
	tempDir := t.TempDir()
	outputFile := filepath.Join(tempDir, "flat.json")

	_, stderr, err := treekit(t, "", "--compact", "-o", outputFile, "flatten", userSample)
	require.NoError(t, err, "CLI command failed: %s", stderr)

	written, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	out := string(written)
	assert.Contains(t, out, `"user.id":1042`)
	assert.Contains(t, out, `"user.roles[0]":"admin"`)
	assert.Contains(t, out, `"user.profile.avatarUrl":null`)
	assert.Contains(t, out, `"user.preferences.notifications.push":false`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

// TestCLI_StdinInput tests reading the document from stdin
func TestCLI_StdinInput(t *testing.T) {
	stdout, stderr, err := treekit(t, `{"b": [3, 1], "a": {"d": 1, "c": 2}}`, "--compact", "sort-keys")
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, `{"a":{"c":2,"d":1},"b":[3,1]}`+"\n", stdout)
}

// TestCLI_Query tests path expressions against a sample document
func TestCLI_Query(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"query", "user.roles[1]", userSample}, `["editor"]`},
		{[]string{"query", "user.preferences.*", userSample}, `["dark","Europe/London",{"email":true,"push":false}]`},
		{[]string{"query", "--first", "user.missing", userSample}, `null`},
		{[]string{"query", "-L", "user.stats.*", userSample}, `{"user.stats.logins":42,"user.stats.last_seen":1684594583}`},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args[:2], " "), func(t *testing.T) {
			stdout, stderr, err := treekit(t, "", append([]string{"--compact"}, tt.args...)...)
			require.NoError(t, err, "CLI command failed: %s", stderr)
			assert.Equal(t, tt.want+"\n", stdout)
		})
	}
}

// TestCLI_YAMLOutput tests converting a JSON sample to YAML
func TestCLI_YAMLOutput(t *testing.T) {
	stdout, stderr, err := treekit(t, "", "--to", "yaml", "format", userSample)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Contains(t, stdout, "user:\n")
	assert.Contains(t, stdout, "name: Ada Lovelace")
	assert.Contains(t, stdout, "avatarUrl: null")
}

// TestCLI_RenameKeys tests rewriting key case
func TestCLI_RenameKeys(t *testing.T) {
	stdout, stderr, err := treekit(t, "", "--compact", "rename-keys", "--case", "snake", userSample)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Contains(t, stdout, `"first_name":"Ada"`)
	assert.Contains(t, stdout, `"avatar_url":null`)
	assert.NotContains(t, stdout, "firstName")
}

// TestCLI_Repair tests the repair command on a hand-edited file
func TestCLI_Repair(t *testing.T) {
	stdout, stderr, err := treekit(t, "", "--compact", "repair", brokenSample)
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.Equal(t, `{"name":"Ada","tags":["a","b"],"score":null,"ok":true,"rank":3}`+"\n", stdout)
	assert.Contains(t, stderr, "fixed: removed trailing commas")
	assert.Contains(t, stderr, "fixed: inserted missing commas between elements")
	assert.Contains(t, stderr, "fixed: removed comments")
}

// TestCLI_Lenient tests that --lenient repairs input for any command
func TestCLI_Lenient(t *testing.T) {
	stdout, stderr, err := treekit(t, "", "--compact", "--lenient", "query", "tags[1]", brokenSample)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, `["b"]`+"\n", stdout)
	assert.Contains(t, stderr, `msg="repaired input"`)
}

// TestCLI_Validate tests schema validation against the sample
func TestCLI_Validate(t *testing.T) {
	stdout, stderr, err := treekit(t, "", "validate", "--schema", userSchema, userSample)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Equal(t, "valid\n", stdout)

	stdout, stderr, err = treekit(t, `{"user": {"id": "1042", "active": "yes"}}`, "validate", "--schema", userSchema)
	assert.Error(t, err, "CLI should fail when the document violates the schema")
	assert.Equal(t, "user.id: expected integer, got string\nuser.active: expected boolean, got string\n", stdout)
	assert.Contains(t, stderr, "2 schema violation(s)")
}

// TestCLI_InferStats tests schema inference and statistics
func TestCLI_InferStats(t *testing.T) {
	stdout, stderr, err := treekit(t, "", "infer", "--title", "UserData", userSample)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Contains(t, stdout, `"title": "UserData"`)
	assert.Contains(t, stdout, `"format": "date-time"`)
	assert.Contains(t, stdout, `"format": "email"`)

	stdout, stderr, err = treekit(t, "", "--compact", "stats", userSample)
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Contains(t, stdout, `"max_depth":4`)
	assert.Contains(t, stdout, `"longest_array":3`)
}

// TestCLI_InvalidJSON tests the CLI with invalid JSON input
func TestCLI_InvalidJSON(t *testing.T) {
	_, stderr, err := treekit(t, `{"name": "Invalid JSON, "age": 30}`, "format")
	assert.Error(t, err, "CLI should fail with invalid JSON")
	assert.Contains(t, stderr, "Parse error: invalid document")
}

// TestCLI_EmptyInput tests the CLI with empty input
func TestCLI_EmptyInput(t *testing.T) {
	_, stderr, err := treekit(t, " \n", "format")
	assert.Error(t, err, "CLI should fail with empty input")
	assert.Contains(t, stderr, "empty input")
}

// TestCLI_Version tests the version flag
func TestCLI_Version(t *testing.T) {
	stdout, _, err := treekit(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "treekit version")
}

// TestCLI_Help tests the help output
func TestCLI_Help(t *testing.T) {
	stdout, _, err := treekit(t, "", "--help")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "-o, --output")
	assert.Contains(t, stdout, "-l, --lenient")
	assert.Contains(t, stdout, "sort-keys")
	assert.Contains(t, stdout, "repair")
}
