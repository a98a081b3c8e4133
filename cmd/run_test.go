package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jstestctl/internal/config"
)

// writeShell writes a fake shell that ignores its arguments and exits with code.
func writeShell(t *testing.T, dir, code string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake shell is a POSIX script")
	}
	path := filepath.Join(dir, "mongo-"+code)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit "+code+"\n"), 0755))
	return path
}

func writeScript(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("assert(true);\n"), 0644))
	return path
}

// isolateConfig points the config loader at an empty home and an empty
// explicit config file.
func isolateConfig(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NO_COLOR", "1")

	path := filepath.Join(home, "jstestctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

	original := configFile
	configFile = path
	t.Cleanup(func() { configFile = original })
}

func executeRun(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRunCmd()
	cmd.SilenceUsage = true
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRunCmd(t *testing.T) {
	cmd := newRunCmd()

	assert.Equal(t, "run", cmd.Name())
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.RunE)

	for _, name := range []string{
		"suite", "num-clients", "jobs", "timeout", "fail-fast", "fail-on-nonzero-exit",
		"connection-string", "shell", "mongod", "mongos", "dbpath-prefix",
		"base-port", "max-port", "verbose", "quiet", "report-path", "clean",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestApplyRunFlagsOnlyOverridesChangedFlags(t *testing.T) {
	opts := &runOptions{}
	cmd := &cobra.Command{Use: "run"}
	opts.bindFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--jobs", "3", "--shell", "/opt/mongo/bin/mongo", "--fail-on-nonzero-exit"}))

	cfg := config.GetDefaultConfig()
	cfg.DbpathPrefix = "/from/config"
	cfg.NumClients = 2
	applyRunFlags(cmd, opts, &cfg)

	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, "/opt/mongo/bin/mongo", cfg.Shell.Executable)
	assert.True(t, cfg.FailOnNonZero())
	assert.Equal(t, "/from/config", cfg.DbpathPrefix)
	assert.Equal(t, 2, cfg.NumClients)
}

func TestApplyRunFlagsCanDisableFailOnNonZeroExit(t *testing.T) {
	opts := &runOptions{}
	cmd := &cobra.Command{Use: "run"}
	opts.bindFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--fail-on-nonzero-exit=false"}))

	enabled := true
	cfg := config.GetDefaultConfig()
	cfg.FailOnNonZeroExit = &enabled
	applyRunFlags(cmd, opts, &cfg)

	assert.False(t, cfg.FailOnNonZero())
}

func TestBuildRunConfiguration(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Jobs = 4
	cfg.Shell.Executable = "/opt/mongo/bin/mongo"
	cfg.Mongod.Executable = "/opt/mongo/bin/mongod"
	cfg.DbpathPrefix = "/tmp/db"

	opts := &runOptions{
		suitePath:        "suites/core.yml",
		timeout:          time.Minute,
		failFast:         true,
		connectionString: "mongodb://localhost:27017",
		clean:            true,
	}

	rc := buildRunConfiguration(cfg, opts)

	assert.Equal(t, "suites/core.yml", rc.SuitePath)
	assert.Equal(t, 4, rc.Jobs)
	assert.Zero(t, rc.NumClients, "client count is left to the suite")
	assert.Equal(t, time.Minute, rc.Timeout)
	assert.True(t, rc.FailFast)
	assert.False(t, rc.FailOnNonZeroExit)
	assert.True(t, rc.CleanupOnSuccess)
	assert.Equal(t, "/opt/mongo/bin/mongo", rc.Environment.ShellExecutable)
	assert.Equal(t, "/opt/mongo/bin/mongod", rc.Environment.MongodExecutable)
	assert.Equal(t, "mongodb://localhost:27017", rc.Environment.ConnectionString)
	assert.Equal(t, "/tmp/db", rc.Environment.DbpathPrefix)
	assert.Equal(t, "mongorunner", rc.Environment.RunnerSubdir)
	assert.Equal(t, 20000, rc.Environment.BasePort)
}

func TestRunPassingScripts(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	shell := writeShell(t, dir, "0")
	a := writeScript(t, dir, "a.js")
	b := writeScript(t, dir, "b.js")

	out, err := executeRun(t,
		"--shell", shell,
		"--dbpath-prefix", filepath.Join(dir, "db"),
		"--num-clients", "3",
		"--quiet",
		a, b,
	)
	require.NoError(t, err)
	assert.Equal(t, "All 2 tests passed\n", out)
}

func TestRunFailingScriptReturnsError(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	shell := writeShell(t, dir, "3")
	a := writeScript(t, dir, "a.js")

	out, err := executeRun(t,
		"--shell", shell,
		"--dbpath-prefix", filepath.Join(dir, "db"),
		"--quiet",
		a,
	)
	require.ErrorIs(t, err, errTestsFailed)
	assert.Contains(t, out, "FAILED "+a)
	assert.Contains(t, out, "exited with code 3")
	assert.Contains(t, out, "1/1 tests failed")
}

func TestRunWithSuiteFile(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	shell := writeShell(t, dir, "0")
	writeScript(t, dir, "one.js")
	writeScript(t, dir, "two.js")
	writeScript(t, dir, "skip.js")

	suitePath := filepath.Join(dir, "suite.yml")
	suite := "executable: " + shell + "\n" +
		"num_clients: 2\n" +
		"roots:\n  - " + filepath.Join(dir, "*.js") + "\n" +
		"exclude_files:\n  - " + filepath.Join(dir, "skip.js") + "\n"
	require.NoError(t, os.WriteFile(suitePath, []byte(suite), 0644))

	out, err := executeRun(t,
		"--suite", suitePath,
		"--dbpath-prefix", filepath.Join(dir, "db"),
		"--quiet",
	)
	require.NoError(t, err)
	assert.Equal(t, "All 2 tests passed\n", out)
}

func TestRunWithoutScripts(t *testing.T) {
	isolateConfig(t)

	_, err := executeRun(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no test scripts to run")
}

func TestRunRejectsInvalidConfiguration(t *testing.T) {
	isolateConfig(t)

	_, err := executeRun(t, "--jobs", "0", "a.js")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRunRejectsUnknownLogLevel(t *testing.T) {
	isolateConfig(t)
	original := logLevel
	logLevel = "chatty"
	t.Cleanup(func() { logLevel = original })

	_, err := executeRun(t, "a.js")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging.level")
}

func TestRunMissingSuite(t *testing.T) {
	isolateConfig(t)

	_, err := executeRun(t, "--suite", filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read suite")
}
