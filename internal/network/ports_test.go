package network

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPortAllocatorValidation(t *testing.T) {
	tests := []struct {
		name     string
		base     int
		max      int
		jobs     int
		errorMsg string
	}{
		{"privileged base", 80, MaxPort, 1, "base port"},
		{"max below base", 20000, 19000, 1, "max port"},
		{"max above limit", 20000, 70000, 1, "max port"},
		{"no jobs", 20000, MaxPort, 0, "at least 1"},
		{"too many jobs", 20000, 20003, 4, "too small"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPortAllocator(tt.base, tt.max, tt.jobs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestReserveRangeIsDisjointPerJob(t *testing.T) {
	alloc, err := NewPortAllocator(DefaultBasePort, MaxPort, 4)
	require.NoError(t, err)

	perJob := alloc.PortsPerJob()
	assert.Equal(t, (MaxPort-DefaultBasePort)/4, perJob)

	prevMax := DefaultBasePort - 1
	for job := 0; job < 4; job++ {
		minPort, maxPort, err := alloc.ReserveRange(job)
		require.NoError(t, err)
		assert.Equal(t, prevMax+1, minPort, "job %d should start right after job %d", job, job-1)
		assert.Equal(t, perJob-1, maxPort-minPort)
		assert.LessOrEqual(t, maxPort, MaxPort)
		prevMax = maxPort
	}
}

func TestReserveRangeRejectsUnknownJobs(t *testing.T) {
	alloc, err := NewPortAllocator(DefaultBasePort, MaxPort, 2)
	require.NoError(t, err)

	for _, job := range []int{-1, 2} {
		_, _, err := alloc.ReserveRange(job)
		assert.Error(t, err, "job %d", job)
	}
}

func TestFirstFreePortSkipsBusyPorts(t *testing.T) {
	original := netListen
	defer func() { netListen = original }()

	busy := map[string]bool{":30000": true, ":30001": true}
	netListen = func(network, address string) (net.Listener, error) {
		if busy[address] {
			return nil, errors.New("address already in use")
		}
		return original("tcp", "127.0.0.1:0")
	}

	port, err := FirstFreePort(30000, 30005)
	require.NoError(t, err)
	assert.Equal(t, 30002, port)
}

func TestFirstFreePortExhausted(t *testing.T) {
	original := netListen
	defer func() { netListen = original }()

	netListen = func(network, address string) (net.Listener, error) {
		return nil, fmt.Errorf("address %s already in use", address)
	}

	_, err := FirstFreePort(30000, 30002)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoFreePort)
}
