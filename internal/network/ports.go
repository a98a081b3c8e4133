// Package network assigns non-overlapping port ranges to concurrently running
// jobs so test clusters started by different jobs never collide.
package network

import (
	"errors"
	"fmt"
	"net"
)

const (
	// DefaultBasePort is the first port handed out to job 0.
	DefaultBasePort = 20000
	// MaxPort is the highest usable TCP port.
	MaxPort = 65535
)

var ErrNoFreePort = errors.New("no free port in range")

// For mocking in tests
var netListen = net.Listen

// PortAllocator splits [BasePort, MaxPort] evenly between NumJobs jobs.
type PortAllocator struct {
	BasePort int
	MaxPort  int
	NumJobs  int
}

// NewPortAllocator validates the bounds and returns an allocator.
func NewPortAllocator(basePort, maxPort, numJobs int) (*PortAllocator, error) {
	if basePort < 1024 || basePort > MaxPort {
		return nil, fmt.Errorf("base port must be between 1024 and %d, got %d", MaxPort, basePort)
	}
	if maxPort <= basePort || maxPort > MaxPort {
		return nil, fmt.Errorf("max port must be between %d and %d, got %d", basePort+1, MaxPort, maxPort)
	}
	if numJobs < 1 {
		return nil, fmt.Errorf("number of jobs must be at least 1, got %d", numJobs)
	}
	if (maxPort-basePort)/numJobs < 1 {
		return nil, fmt.Errorf("port range %d-%d is too small for %d jobs", basePort, maxPort, numJobs)
	}
	return &PortAllocator{BasePort: basePort, MaxPort: maxPort, NumJobs: numJobs}, nil
}

// PortsPerJob is the size of every job's range.
func (a *PortAllocator) PortsPerJob() int {
	return (a.MaxPort - a.BasePort) / a.NumJobs
}

// ReserveRange returns the inclusive port range owned by jobNum.
func (a *PortAllocator) ReserveRange(jobNum int) (minPort, maxPort int, err error) {
	if jobNum < 0 || jobNum >= a.NumJobs {
		return 0, 0, fmt.Errorf("job number %d out of range [0, %d)", jobNum, a.NumJobs)
	}
	perJob := a.PortsPerJob()
	minPort = a.BasePort + jobNum*perJob
	return minPort, minPort + perJob - 1, nil
}

// FirstFreePort returns the first port in [minPort, maxPort] that can be
// bound on this machine right now.
func FirstFreePort(minPort, maxPort int) (int, error) {
	for port := minPort; port <= maxPort; port++ {
		ln, err := netListen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			ln.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("%w %d-%d", ErrNoFreePort, minPort, maxPort)
}
