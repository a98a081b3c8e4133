// Package config provides configuration management for jstestctl.
//
// This package implements a layered configuration system that allows users to
// customize jstestctl's behavior through YAML files. Configuration is loaded from
// multiple sources and merged in a specific order, with later sources overriding
// earlier ones.
//
// # Configuration Layers
//
// Configuration is loaded and merged in the following order:
//
//  1. Default Configuration (embedded in binary)
//     - Ports 20000-65535, one job, one client per test case
//     - No shell executable or dbpath prefix, so a suite file may set them
//
//  2. User Configuration (~/.config/jstestctl/config.yaml)
//     - User-specific settings that apply to all projects
//
//  3. Project Configuration (./.jstestctl/config.yaml)
//     - Project-specific settings in the current directory
//     - Allows teams to share configuration via version control
//
//  4. An explicit file passed with --config, if any
//
// Command line flags are applied on top by the cmd package.
//
// # Configuration Structure
//
//	shell:
//	  executable: "${HOME}/mongo/bin/mongo"
//	mongod:
//	  executable: "/opt/mongodb/bin/mongod"
//	mongos:
//	  executable: "/opt/mongodb/bin/mongos"
//	dbpathPrefix: "/data/db"
//	runnerSubdir: "mongorunner"
//	ports:
//	  base: 20000
//	  max: 65535
//	jobs: 4
//	numClients: 2      # unset defers to the suite's num_clients, then 1
//	failOnNonZeroExit: false
//	logging:
//	  level: "info"    # debug, info, warn, error
//	  format: "text"   # text or json
//
// Zero values in a layer leave the value of the previous layer in place.
// failOnNonZeroExit is only overridden when a layer sets it explicitly.
//
// # Environment Variable Expansion
//
// Executable paths and dbpathPrefix support ${VAR} expansion.
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Shell.Executable, cfg.Jobs)
package config
