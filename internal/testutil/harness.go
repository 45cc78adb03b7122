// Package testutil provides shared test fixtures.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// DefaultTestConfig is a minimal config with one manager ("fake", whose
// commands are no-ops) and two tools: "present" resolves to a binary every
// POSIX system has, "missing" does not exist.
const DefaultTestConfig = `
[[managers]]
name = "fake"
install_command = "true install {{packages}}"
update_command = "true update"

[[tools]]
package = "present"
binary = "sh"
manager = "fake"

[[tools]]
package = "missing"
binary = "stm-test-definitely-not-a-binary"
manager = "fake"
`

// Harness provides an isolated config file and history database for one test.
type Harness struct {
	t *testing.T

	// Dir is the temp workspace root.
	Dir string
	// ConfigPath is the written config file.
	ConfigPath string
	// DBPath is the history database path (not created until first open).
	DBPath string
}

// NewHarness creates a temp workspace with DefaultTestConfig.
func NewHarness(t *testing.T) *Harness {
	t.Helper()
	return NewHarnessWithConfig(t, DefaultTestConfig)
}

// NewHarnessWithConfig creates a temp workspace with the given config body.
func NewHarnessWithConfig(t *testing.T, configBody string) *Harness {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte(configBody), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	return &Harness{
		t:          t,
		Dir:        dir,
		ConfigPath: cfgPath,
		DBPath:     filepath.Join(dir, "history.db"),
	}
}

// ExecuteCommand runs a cobra command with args, capturing stdout and stderr.
func ExecuteCommand(root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}
