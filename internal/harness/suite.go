package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"jstestctl/internal/launcher"

	"gopkg.in/yaml.v3"
)

// Suite is a suite file: which scripts to run and how to invoke the shell.
//
//	executable: /opt/mongodb/bin/mongo
//	connection_string: mongodb://localhost:27017
//	num_clients: 4
//	fail_on_nonzero_exit: true
//	roots:
//	  - jstests/core/*.js
//	exclude_files:
//	  - jstests/core/dbhash.js
//	shell_options:
//	  global_vars:
//	    TestData:
//	      enableMajorityReadConcern: true
//	  process_env:
//	    KRB5_CONFIG: /etc/krb5.conf
//	  flags:
//	    nodb: ""
//	  eval: load('jstests/libs/override_methods/check_uuids.js')
type Suite struct {
	Executable        string                `yaml:"executable,omitempty"`
	ConnectionString  string                `yaml:"connection_string,omitempty"`
	NumClients        int                   `yaml:"num_clients,omitempty"`
	FailOnNonZeroExit bool                  `yaml:"fail_on_nonzero_exit,omitempty"`
	Roots             []string              `yaml:"roots,omitempty"`
	ExcludeFiles      []string              `yaml:"exclude_files,omitempty"`
	ShellOptions      launcher.ShellOptions `yaml:"shell_options,omitempty"`
}

// LoadSuite reads a suite file.
func LoadSuite(path string) (Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Suite{}, fmt.Errorf("failed to read suite %s: %w", path, err)
	}

	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return Suite{}, fmt.Errorf("failed to parse suite %s: %w", path, err)
	}
	if suite.NumClients < 0 {
		return Suite{}, fmt.Errorf("suite %s: num_clients must not be negative, got %d", path, suite.NumClients)
	}
	suite.ShellOptions.GlobalVars = normalizeYAML(suite.ShellOptions.GlobalVars)
	return suite, nil
}

// Scripts expands the suite's roots, drops excluded files and appends
// extra, which is never filtered. Every glob's matches are sorted; a script
// listed twice runs once.
func (s Suite) Scripts(extra []string) ([]string, error) {
	excluded := make(map[string]bool)
	for _, pattern := range s.ExcludeFiles {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			excluded[filepath.Clean(m)] = true
		}
		excluded[filepath.Clean(pattern)] = true
	}

	seen := make(map[string]bool)
	var scripts []string
	add := func(path string) {
		path = filepath.Clean(path)
		if seen[path] {
			return
		}
		seen[path] = true
		scripts = append(scripts, path)
	}

	for _, pattern := range s.Roots {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid root pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !excluded[filepath.Clean(m)] {
				add(m)
			}
		}
	}
	for _, path := range extra {
		add(path)
	}
	return scripts, nil
}

// normalizeYAML turns the map[interface{}]interface{} values some YAML
// documents decode into map[string]interface{}, so nested objects can be
// rendered for the shell.
func normalizeYAML(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return normalizeYAML(val)
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return val
	}
}
