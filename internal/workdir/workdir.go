// Package workdir provisions the per-job data directory handed to the shell
// as MongoRunner.dataDir, plus the job-specific Kerberos credential cache.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultPrefix is used when neither the command line nor the suite sets one.
	DefaultPrefix = "/data/db"
	// DefaultRunnerSubdir is the directory below the job directory.
	DefaultRunnerSubdir = "mongorunner"

	krb5Subdir = "krb5"
)

// Provisioner hands out <prefix>/job<N>/<subdir> directories.
type Provisioner struct {
	prefix string
	subdir string
}

// NewProvisioner returns a provisioner rooted at prefix. Empty arguments
// fall back to the defaults.
func NewProvisioner(prefix, subdir string) *Provisioner {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if subdir == "" {
		subdir = DefaultRunnerSubdir
	}
	return &Provisioner{prefix: prefix, subdir: subdir}
}

// DataDir is the data directory of jobNum. It does not touch the disk.
func (p *Provisioner) DataDir(jobNum int) string {
	return filepath.Join(p.prefix, fmt.Sprintf("job%d", jobNum), p.subdir)
}

// DataPath is DataDir with a trailing separator, the form the shell expects
// for MongoRunner.dataPath.
func DataPath(dataDir string) string {
	if strings.HasSuffix(dataDir, string(filepath.Separator)) {
		return dataDir
	}
	return dataDir + string(filepath.Separator)
}

// Prepare removes anything left in the job's data directory by a previous
// test and recreates it empty.
func (p *Provisioner) Prepare(jobNum int) (string, error) {
	dir := p.DataDir(jobNum)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("failed to clear data directory %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return dir, nil
}

// KerberosCache creates the credential cache directory below dataDir and
// returns the KRB5CCNAME value pointing at it.
func KerberosCache(dataDir string) (string, error) {
	dir := filepath.Join(dataDir, krb5Subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create kerberos cache %s: %w", dir, err)
	}
	return "DIR:" + DataPath(dir) + ".", nil
}

// Clear removes the job's data directory.
func (p *Provisioner) Clear(jobNum int) error {
	dir := p.DataDir(jobNum)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove data directory %s: %w", dir, err)
	}
	return nil
}
