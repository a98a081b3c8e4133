package config

// JstestctlConfig is the top-level configuration structure for jstestctl.
type JstestctlConfig struct {
	Shell  ExecutableConfig `yaml:"shell"`
	Mongod ExecutableConfig `yaml:"mongod"`
	Mongos ExecutableConfig `yaml:"mongos"`

	DbpathPrefix string      `yaml:"dbpathPrefix,omitempty"` // Root of the per-job data directories
	RunnerSubdir string      `yaml:"runnerSubdir,omitempty"` // Directory below <dbpathPrefix>/job<N>
	Ports        PortsConfig `yaml:"ports"`

	Jobs              int   `yaml:"jobs,omitempty"`              // Test cases run in parallel
	NumClients        int   `yaml:"numClients,omitempty"`        // Clients per test case; zero defers to the suite
	FailOnNonZeroExit *bool `yaml:"failOnNonZeroExit,omitempty"` // Treat a non-zero shell exit as a test failure

	Logging LoggingConfig `yaml:"logging"`
}

// ExecutableConfig points at a binary. An empty path means "not configured".
type ExecutableConfig struct {
	Executable string `yaml:"executable,omitempty"`
}

// PortsConfig bounds the ports handed out to jobs.
type PortsConfig struct {
	Base int `yaml:"base,omitempty"`
	Max  int `yaml:"max,omitempty"`
}

// LoggingConfig selects the level and output format of the harness log.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
}

// FailOnNonZero returns the effective failOnNonZeroExit setting.
func (c JstestctlConfig) FailOnNonZero() bool {
	return c.FailOnNonZeroExit != nil && *c.FailOnNonZeroExit
}
