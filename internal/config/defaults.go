package config

import (
	"jstestctl/internal/network"
	"jstestctl/internal/workdir"
	"jstestctl/pkg/logging"
)

// GetDefaultConfig returns the configuration used when no file overrides it.
// The shell executable and the dbpath prefix stay empty so a suite file can
// still supply them; the harness falls back to "mongo" and /data/db.
func GetDefaultConfig() JstestctlConfig {
	failOnNonZeroExit := false
	return JstestctlConfig{
		RunnerSubdir: workdir.DefaultRunnerSubdir,
		Ports: PortsConfig{
			Base: network.DefaultBasePort,
			Max:  network.MaxPort,
		},
		Jobs:              1,
		FailOnNonZeroExit: &failOnNonZeroExit,
		Logging: LoggingConfig{
			Level:  "info",
			Format: string(logging.FormatText),
		},
	}
}
