package jstest

import (
	"fmt"

	"jstestctl/internal/launcher"
)

// Keys injected into every client's TestData.
const (
	TestDataIsMainTest = "isMainTest"
	TestDataNumClients = "numTestClients"
	TestDataThreadID   = "threadID"
)

// DeriveClientContext returns the context of client index out of total. The
// base is only read, so calls for different indices may run concurrently.
//
// It panics unless 0 <= index < total.
func DeriveClientContext(base BaseConfig, index, total int) ClientContext {
	if total < 1 || index < 0 || index >= total {
		panic(fmt.Sprintf("jstest: client index %d out of range for %d clients", index, total))
	}

	cfg := base.Clone()
	if cfg.Shell.GlobalVars == nil {
		cfg.Shell.GlobalVars = make(map[string]interface{})
	}
	testData := cfg.Shell.TestData()
	if testData == nil {
		testData = make(map[string]interface{})
		cfg.Shell.GlobalVars[launcher.TestDataKey] = testData
	}

	testData[TestDataIsMainTest] = index == 0
	testData[TestDataNumClients] = total
	testData[TestDataThreadID] = index

	return ClientContext{
		ThreadID:   index,
		NumClients: total,
		Config:     cfg,
	}
}
