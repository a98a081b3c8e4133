package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadSuite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yml")
	writeFile(t, path, `
executable: /opt/mongodb/bin/mongo
connection_string: mongodb://localhost:27017
num_clients: 4
fail_on_nonzero_exit: true
roots:
  - jstests/core/*.js
shell_options:
  global_vars:
    TestData:
      enableMajorityReadConcern: true
      auth:
        user: admin
  process_env:
    KRB5_CONFIG: /etc/krb5.conf
  flags:
    nodb: ""
  eval: load('jstests/libs/check_uuids.js')
`)

	suite, err := LoadSuite(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/mongodb/bin/mongo", suite.Executable)
	assert.Equal(t, "mongodb://localhost:27017", suite.ConnectionString)
	assert.Equal(t, 4, suite.NumClients)
	assert.True(t, suite.FailOnNonZeroExit)
	assert.Equal(t, []string{"jstests/core/*.js"}, suite.Roots)
	assert.Equal(t, "/etc/krb5.conf", suite.ShellOptions.ProcessEnv["KRB5_CONFIG"])
	assert.Equal(t, map[string]string{"nodb": ""}, suite.ShellOptions.Flags)
	assert.Equal(t, "load('jstests/libs/check_uuids.js')", suite.ShellOptions.Eval)

	td := suite.ShellOptions.TestData()
	require.NotNil(t, td)
	assert.Equal(t, true, td["enableMajorityReadConcern"])
	assert.Equal(t, map[string]interface{}{"user": "admin"}, td["auth"])
}

func TestLoadSuiteErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSuite(filepath.Join(dir, "missing.yml"))
	assert.ErrorContains(t, err, "failed to read suite")

	bad := filepath.Join(dir, "bad.yml")
	writeFile(t, bad, "roots: [unterminated")
	_, err = LoadSuite(bad)
	assert.ErrorContains(t, err, "failed to parse suite")

	negative := filepath.Join(dir, "negative.yml")
	writeFile(t, negative, "num_clients: -1")
	_, err = LoadSuite(negative)
	assert.ErrorContains(t, err, "num_clients")
}

func TestSuiteScripts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.js", "a.js", "c.js", "skip.js"} {
		writeFile(t, filepath.Join(dir, "core", name), "")
	}

	suite := Suite{
		Roots:        []string{filepath.Join(dir, "core", "*.js"), filepath.Join(dir, "core", "a.js")},
		ExcludeFiles: []string{filepath.Join(dir, "core", "skip.js")},
	}

	scripts, err := suite.Scripts([]string{"extra.js", filepath.Join(dir, "core", "b.js")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "core", "a.js"),
		filepath.Join(dir, "core", "b.js"),
		filepath.Join(dir, "core", "c.js"),
		"extra.js",
	}, scripts)
}

func TestSuiteScriptsInvalidPattern(t *testing.T) {
	_, err := Suite{Roots: []string{"[bad"}}.Scripts(nil)
	assert.ErrorContains(t, err, "invalid root pattern")
}

func TestNormalizeYAML(t *testing.T) {
	in := map[string]interface{}{
		"TestData": map[interface{}]interface{}{
			"nested": []interface{}{map[interface{}]interface{}{1: "one"}},
		},
	}

	out := normalizeYAML(in)
	td, ok := out["TestData"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{map[string]interface{}{"1": "one"}}, td["nested"])
	assert.Nil(t, normalizeYAML(nil))
}
