package contract

import (
	"fmt"

	domainPlugin "github.com/felixgeelhaar/architect/pkg/domain/plugin"
	infraPlugin "github.com/felixgeelhaar/architect/pkg/plugin"
)

// ContractSuite runs all contract assertions against a plugin binary.
type ContractSuite struct {
	loader *infraPlugin.Loader
}

// NewContractSuite creates a new contract suite.
func NewContractSuite() *ContractSuite {
	return &ContractSuite{
		loader: infraPlugin.NewLoader(),
	}
}

// SuiteResult aggregates results from running the full contract suite.
type SuiteResult struct {
	Results []Result
	Passed  int
	Failed  int
}

// RunWithBackend runs the contract suite against an already-loaded backend instance.
func (s *ContractSuite) RunWithBackend(backend domainPlugin.Backend) *SuiteResult {
	assertions := []func(domainPlugin.Backend) Result{
		AssertInitSuccess,
		AssertInitWithBadConfig,
		AssertFetchState,
		AssertGetMissingTask,
		AssertCreateAndGet,
		AssertApplyUnknownTarget,
	}

	sr := &SuiteResult{}
	for _, assert := range assertions {
		result := assert(backend)
		sr.Results = append(sr.Results, result)
		if result.Passed {
			sr.Passed++
		} else {
			sr.Failed++
		}
	}
	return sr
}

// RunBinary loads a plugin binary and runs the full contract suite.
func (s *ContractSuite) RunBinary(path string) (*SuiteResult, error) {
	defer s.loader.Cleanup()

	backend, err := s.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load plugin: %w", err)
	}

	return s.RunWithBackend(backend), nil
}
