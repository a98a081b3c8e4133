package harness

import (
	"fmt"

	"jstestctl/internal/jstest"
	"jstestctl/internal/launcher"
	"jstestctl/internal/network"
	"jstestctl/internal/workdir"
	"jstestctl/pkg/logging"
)

// DefaultShellExecutable is used when neither the environment nor the suite
// names a shell.
const DefaultShellExecutable = "mongo"

// Global variables set in the shell by PrepareBaseConfig.
const (
	varDataDir        = "MongoRunner.dataDir"
	varDataPath       = "MongoRunner.dataPath"
	varMongodPath     = "MongoRunner.mongodPath"
	varMongosPath     = "MongoRunner.mongosPath"
	varMongoShellPath = "MongoRunner.mongoShellPath"

	testDataMinPort = "minPort"
	testDataMaxPort = "maxPort"

	envKrb5Config = "KRB5_CONFIG"
	envKrb5CCName = "KRB5CCNAME"
)

// Preparer builds the base configuration of a test case for a job: its data
// directory, its port range and the executable paths.
type Preparer struct {
	env   Environment
	ports *network.PortAllocator
}

// NewPreparer creates a preparer for numJobs jobs.
func NewPreparer(env Environment, numJobs int) (*Preparer, error) {
	basePort, maxPort := env.BasePort, env.MaxPort
	if basePort == 0 {
		basePort = network.DefaultBasePort
	}
	if maxPort == 0 {
		maxPort = network.MaxPort
	}
	ports, err := network.NewPortAllocator(basePort, maxPort, numJobs)
	if err != nil {
		return nil, fmt.Errorf("failed to create port allocator: %w", err)
	}
	return &Preparer{env: env, ports: ports}, nil
}

// ShellExecutable resolves the shell binary: environment, then suite, then
// DefaultShellExecutable.
func (p *Preparer) ShellExecutable(suite Suite) string {
	if p.env.ShellExecutable != "" {
		return p.env.ShellExecutable
	}
	if suite.Executable != "" {
		return suite.Executable
	}
	return DefaultShellExecutable
}

// PrepareBaseConfig returns the configuration every client of a test case run
// by jobNum starts from. The job's data directory is emptied on the way.
func (p *Preparer) PrepareBaseConfig(suite Suite, jobNum int) (jstest.BaseConfig, error) {
	opts := suite.ShellOptions.Clone()
	if opts.GlobalVars == nil {
		opts.GlobalVars = make(map[string]interface{})
	}
	globalVars := opts.GlobalVars

	dirs := workdir.NewProvisioner(p.prefix(globalVars), p.env.RunnerSubdir)
	dataDir := dirs.DataDir(jobNum)

	// The data path from the suite survives unless the command line moved
	// the data directory.
	dataPath, explicit := globalVars[varDataPath].(string)
	if p.env.DbpathPrefix != "" || !explicit {
		dataPath = workdir.DataPath(dataDir)
	}
	globalVars[varDataDir] = dataDir
	globalVars[varDataPath] = dataPath

	// Without explicit paths the shell's own lookup picks the binaries.
	if p.env.MongodExecutable != "" {
		globalVars[varMongodPath] = p.env.MongodExecutable
	}
	if p.env.MongosExecutable != "" {
		globalVars[varMongosPath] = p.env.MongosExecutable
	}
	shell := p.ShellExecutable(suite)
	if p.env.ShellExecutable != "" || suite.Executable != "" {
		globalVars[varMongoShellPath] = shell
	}

	minPort, maxPort, err := p.ports.ReserveRange(jobNum)
	if err != nil {
		return jstest.BaseConfig{}, err
	}
	testData, _ := globalVars[launcher.TestDataKey].(map[string]interface{})
	if testData == nil {
		testData = make(map[string]interface{})
		globalVars[launcher.TestDataKey] = testData
	}
	testData[testDataMinPort] = minPort
	testData[testDataMaxPort] = maxPort
	warnIfPortsBusy(jobNum, minPort, maxPort)

	if _, err := dirs.Prepare(jobNum); err != nil {
		return jstest.BaseConfig{}, err
	}

	// Kerberos tests get a credential cache of their own per job.
	if _, hasConfig := opts.ProcessEnv[envKrb5Config]; hasConfig {
		if _, hasCache := opts.ProcessEnv[envKrb5CCName]; !hasCache {
			ccname, err := workdir.KerberosCache(dataDir)
			if err != nil {
				return jstest.BaseConfig{}, err
			}
			opts.ProcessEnv[envKrb5CCName] = ccname
		}
	}

	connectionString := p.env.ConnectionString
	if connectionString == "" {
		connectionString = suite.ConnectionString
	}

	return jstest.BaseConfig{
		Executable:       shell,
		ConnectionString: connectionString,
		Shell:            opts,
	}, nil
}

// warnIfPortsBusy logs when something outside the harness already holds the
// start of a job's port range; servers the test starts there would fail to bind.
func warnIfPortsBusy(jobNum, minPort, maxPort int) {
	free, err := network.FirstFreePort(minPort, maxPort)
	if err != nil {
		logging.Warn("Harness", "Job %d: %v", jobNum, err)
		return
	}
	if free != minPort {
		logging.Warn("Harness", "Job %d: port %d is already in use, first free port is %d", jobNum, minPort, free)
	}
}

// prefix resolves the dbpath prefix: environment, then the suite's
// MongoRunner.dataDir, then workdir.DefaultPrefix.
func (p *Preparer) prefix(globalVars map[string]interface{}) string {
	if p.env.DbpathPrefix != "" {
		return p.env.DbpathPrefix
	}
	if dir, ok := globalVars[varDataDir].(string); ok && dir != "" {
		return dir
	}
	return workdir.DefaultPrefix
}

// Cleanup removes the data directories of jobs 0 to numJobs-1.
func (p *Preparer) Cleanup(suite Suite, numJobs int) error {
	dirs := workdir.NewProvisioner(p.prefix(suite.ShellOptions.GlobalVars), p.env.RunnerSubdir)
	for job := 0; job < numJobs; job++ {
		if err := dirs.Clear(job); err != nil {
			return err
		}
	}
	return nil
}
